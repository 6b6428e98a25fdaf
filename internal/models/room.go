package models

import "time"

// Room represents a teaching space.
type Room struct {
	ID            string    `db:"id" json:"id"`
	RoomNumber    string    `db:"room_number" json:"room_number"`
	RoomType      string    `db:"room_type" json:"room_type"`
	Capacity      int       `db:"capacity" json:"capacity"`
	AllowSharing  bool      `db:"allow_sharing" json:"allow_sharing"`
	MaxConcurrent int       `db:"max_concurrent" json:"max_concurrent"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
