package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/sma-schedule-optimizer/internal/engine"
	"github.com/noah-isme/sma-schedule-optimizer/internal/models"
)

type courseLister interface {
	ListActive(ctx context.Context) ([]models.Course, error)
}

type teacherLister interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type roomLister interface {
	ListActive(ctx context.Context) ([]models.Room, error)
}

type timeSlotLister interface {
	ListAll(ctx context.Context) ([]models.TimeSlot, error)
}

// SnapshotService assembles the immutable domain view the analyzer and the
// engine operate on.
type SnapshotService struct {
	courses   courseLister
	teachers  teacherLister
	rooms     roomLister
	timeSlots timeSlotLister
}

// NewSnapshotService wires the snapshot loader.
func NewSnapshotService(courses courseLister, teachers teacherLister, rooms roomLister, timeSlots timeSlotLister) *SnapshotService {
	return &SnapshotService{courses: courses, teachers: teachers, rooms: rooms, timeSlots: timeSlots}
}

// Load reads the current domain data and builds a snapshot.
func (s *SnapshotService) Load(ctx context.Context) (*engine.Snapshot, error) {
	courses, err := s.courses.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load teachers: %w", err)
	}
	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	timeSlots, err := s.timeSlots.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load time slots: %w", err)
	}
	return engine.NewSnapshot(courses, teachers, rooms, timeSlots), nil
}
