package engine

import (
	"math/rand"

	"github.com/noah-isme/sma-schedule-optimizer/internal/models"
)

// SlotAssignment is one gene of a candidate: a course section bound to a
// teacher, room and time slot. Empty teacher or room ids mean unassigned.
type SlotAssignment struct {
	CourseID     string
	SectionIndex int
	TeacherID    string
	RoomID       string
	TimeSlotID   string
	Enrolled     int
}

// Candidate is one complete attempted timetable. Candidates are treated as
// immutable once evaluated: crossover and mutation always produce fresh
// copies, and elites are carried between generations by pointer.
type Candidate struct {
	Slots []SlotAssignment
}

// Clone returns a deep copy of the candidate.
func (c *Candidate) Clone() *Candidate {
	slots := make([]SlotAssignment, len(c.Slots))
	copy(slots, c.Slots)
	return &Candidate{Slots: slots}
}

// sectionTemplate enumerates the required sections of a snapshot in a stable
// order, pre-resolving the choice sets each gene can draw from.
type sectionTemplate struct {
	course           *models.Course
	sectionIndex     int
	eligibleTeachers []string
	eligibleRooms    []string
}

func buildSectionTemplates(s *Snapshot) []sectionTemplate {
	templates := make([]sectionTemplate, 0, s.SectionCount())
	for i := range s.Courses {
		course := &s.Courses[i]
		teachers := s.QualifiedTeachers(course.Subject)
		if len(teachers) == 0 && course.TeacherID != nil {
			teachers = []string{*course.TeacherID}
		}
		rooms := s.CompatibleRooms(course)
		if len(rooms) == 0 {
			// fall back to every room so the gene stays assignable; the
			// capacity and type constraints penalise the choice instead
			for j := range s.Rooms {
				rooms = append(rooms, s.Rooms[j].ID)
			}
		}
		for section := 0; section < sectionsOf(course); section++ {
			templates = append(templates, sectionTemplate{
				course:           course,
				sectionIndex:     section,
				eligibleTeachers: teachers,
				eligibleRooms:    rooms,
			})
		}
	}
	return templates
}

// randomCandidate builds a candidate covering every required section exactly
// once. It may be infeasible on constraints but always satisfies cardinality.
func randomCandidate(s *Snapshot, templates []sectionTemplate, rng *rand.Rand) *Candidate {
	slots := make([]SlotAssignment, len(templates))
	for i, tpl := range templates {
		slots[i] = SlotAssignment{
			CourseID:     tpl.course.ID,
			SectionIndex: tpl.sectionIndex,
			TeacherID:    pickString(tpl.eligibleTeachers, rng),
			RoomID:       pickString(tpl.eligibleRooms, rng),
			TimeSlotID:   pickTimeSlot(s, rng),
			Enrolled:     tpl.course.EnrolledCount,
		}
	}
	return &Candidate{Slots: slots}
}

// crossover combines two parents with per-section uniform crossover: each
// offspring gene inherits the whole teacher/room/slot sub-assignment from one
// parent chosen by coin flip, so cardinality is preserved by construction.
func crossover(a, b *Candidate, rng *rand.Rand) *Candidate {
	slots := make([]SlotAssignment, len(a.Slots))
	for i := range a.Slots {
		if rng.Intn(2) == 0 {
			slots[i] = a.Slots[i]
		} else {
			slots[i] = b.Slots[i]
		}
	}
	return &Candidate{Slots: slots}
}

// mutate perturbs between one and three genes of a fresh copy, reassigning a
// single attribute (teacher, room or time slot) per touched gene. Sections
// are never added or removed.
func mutate(c *Candidate, s *Snapshot, templates []sectionTemplate, rng *rand.Rand) *Candidate {
	out := c.Clone()
	if len(out.Slots) == 0 {
		return out
	}
	touches := 1 + rng.Intn(3)
	for i := 0; i < touches; i++ {
		idx := rng.Intn(len(out.Slots))
		tpl := templates[idx]
		switch rng.Intn(3) {
		case 0:
			out.Slots[idx].TeacherID = pickString(tpl.eligibleTeachers, rng)
		case 1:
			out.Slots[idx].RoomID = pickString(tpl.eligibleRooms, rng)
		default:
			out.Slots[idx].TimeSlotID = pickTimeSlot(s, rng)
		}
	}
	return out
}

func pickString(choices []string, rng *rand.Rand) string {
	if len(choices) == 0 {
		return ""
	}
	return choices[rng.Intn(len(choices))]
}

func pickTimeSlot(s *Snapshot, rng *rand.Rand) string {
	if len(s.TimeSlots) == 0 {
		return ""
	}
	return s.TimeSlots[rng.Intn(len(s.TimeSlots))].ID
}
