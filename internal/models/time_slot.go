package models

import "time"

// TimeSlot is a bookable teaching period within the weekly grid.
type TimeSlot struct {
	ID          string    `db:"id" json:"id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	PeriodIndex int       `db:"period_index" json:"period_index"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ScheduleSlot is a persisted, accepted course/teacher/room/time assignment.
type ScheduleSlot struct {
	ID            string    `db:"id" json:"id"`
	RunID         string    `db:"run_id" json:"run_id"`
	CourseID      string    `db:"course_id" json:"course_id"`
	SectionIndex  int       `db:"section_index" json:"section_index"`
	TeacherID     *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	RoomID        *string   `db:"room_id" json:"room_id,omitempty"`
	TimeSlotID    string    `db:"time_slot_id" json:"time_slot_id"`
	EnrolledCount int       `db:"enrolled_count" json:"enrolled_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
