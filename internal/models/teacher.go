package models

import "time"

// Teacher represents an instructor record.
type Teacher struct {
	ID                string    `db:"id" json:"id"`
	Email             string    `db:"email" json:"email"`
	FullName          string    `db:"full_name" json:"full_name"`
	QualifiedSubjects string    `db:"qualified_subjects" json:"qualified_subjects"`
	MaxPeriodsPerDay  int       `db:"max_periods_per_day" json:"max_periods_per_day"`
	MaxPeriodsPerWeek int       `db:"max_periods_per_week" json:"max_periods_per_week"`
	Active            bool      `db:"active" json:"active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Pagination describes page metadata returned alongside list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
