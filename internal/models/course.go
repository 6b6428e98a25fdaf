package models

import "time"

// Course represents a course section demand that must receive a timetable slot.
type Course struct {
	ID               string    `db:"id" json:"id"`
	Code             string    `db:"code" json:"code"`
	Name             string    `db:"name" json:"name"`
	Subject          string    `db:"subject" json:"subject"`
	TeacherID        *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	RoomID           *string   `db:"room_id" json:"room_id,omitempty"`
	RequiredRoomType string    `db:"required_room_type" json:"required_room_type"`
	EnrolledCount    int       `db:"enrolled_count" json:"enrolled_count"`
	Sections         int       `db:"sections" json:"sections"`
	Active           bool      `db:"active" json:"active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
