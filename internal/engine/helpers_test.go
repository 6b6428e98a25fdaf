package engine

import (
	"github.com/noah-isme/sma-schedule-optimizer/internal/models"
)

func strPtr(s string) *string { return &s }

func testTeacher(id, name, subjects string) models.Teacher {
	return models.Teacher{
		ID:                id,
		Email:             name + "@school.test",
		FullName:          name,
		QualifiedSubjects: subjects,
		MaxPeriodsPerDay:  6,
		MaxPeriodsPerWeek: 30,
		Active:            true,
	}
}

func testRoom(id, number, roomType string, capacity int) models.Room {
	return models.Room{
		ID:         id,
		RoomNumber: number,
		RoomType:   roomType,
		Capacity:   capacity,
		Active:     true,
	}
}

func testCourse(id, code, subject string, teacherID *string, enrolled int) models.Course {
	return models.Course{
		ID:            id,
		Code:          code,
		Name:          code,
		Subject:       subject,
		TeacherID:     teacherID,
		EnrolledCount: enrolled,
		Sections:      1,
		Active:        true,
	}
}

func testTimeSlots(days, periods int) []models.TimeSlot {
	var slots []models.TimeSlot
	for d := 1; d <= days; d++ {
		for p := 1; p <= periods; p++ {
			slots = append(slots, models.TimeSlot{
				ID:          string(rune('a'+d)) + "-" + string(rune('0'+p)),
				DayOfWeek:   d,
				PeriodIndex: p,
			})
		}
	}
	return slots
}

// smallSnapshot has two qualified teachers, two rooms and ten slots, enough
// for the engine to reach a conflict-free timetable quickly.
func smallSnapshot() *Snapshot {
	teachers := []models.Teacher{
		testTeacher("t1", "Alice Mahler", "math,physics"),
		testTeacher("t2", "Bob Chen", "math,chemistry"),
	}
	rooms := []models.Room{
		testRoom("r1", "101", "CLASSROOM", 40),
		testRoom("r2", "102", "CLASSROOM", 40),
	}
	courses := []models.Course{
		testCourse("c1", "MATH-10", "math", strPtr("t1"), 30),
		testCourse("c2", "MATH-11", "math", strPtr("t2"), 28),
		testCourse("c3", "PHYS-10", "physics", strPtr("t1"), 25),
	}
	return NewSnapshot(courses, teachers, rooms, testTimeSlots(2, 5))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PopulationSize = 30
	cfg.MaxGenerations = 60
	cfg.EliteSize = 3
	cfg.TournamentSize = 3
	cfg.StagnationLimit = 40
	cfg.ThreadCount = 2
	cfg.Seed = 42
	return cfg
}
