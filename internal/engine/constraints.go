package engine

import (
	"sort"
	"strings"
)

// Category separates rules that define feasibility from preferences.
type Category string

const (
	CategoryHard Category = "HARD"
	CategorySoft Category = "SOFT"
)

// Default per-violation weights per category, overridable per constraint
// through Config.ConstraintWeights.
const (
	DefaultHardWeight = 1000.0
	DefaultSoftWeight = 100.0
)

// Constraint ids. Stable strings because they key weight overrides and the
// per-constraint entries of a fitness breakdown.
const (
	ConstraintNoTeacherOverlap     = "NO_TEACHER_OVERLAP"
	ConstraintNoRoomOverlap        = "NO_ROOM_OVERLAP"
	ConstraintRoomCapacity         = "ROOM_CAPACITY"
	ConstraintTeacherQualification = "TEACHER_QUALIFICATION"
	ConstraintAllSectionsScheduled = "ALL_SECTIONS_SCHEDULED"

	ConstraintMinimizeTeacherGaps = "MINIMIZE_TEACHER_GAPS"
	ConstraintBalanceTeacherLoad  = "BALANCE_TEACHER_LOAD"
	ConstraintRoomTypeMatch       = "ROOM_TYPE_MATCH"
	ConstraintSpreadSections      = "SPREAD_SECTIONS"
)

// ConstraintType is one rule of the catalog. Evaluate must be pure: it reads
// only the snapshot and the candidate and returns a violation count.
type ConstraintType struct {
	ID            string
	Name          string
	Description   string
	Category      Category
	DefaultWeight float64
	Evaluate      func(s *Snapshot, c *Candidate) int
}

// IsHard reports whether violations of this constraint break feasibility.
func (ct ConstraintType) IsHard() bool { return ct.Category == CategoryHard }

// DefaultCatalog returns the process-wide constraint set. The slice is
// rebuilt per call so a caller can safely tweak weights on its own copy.
func DefaultCatalog() []ConstraintType {
	return []ConstraintType{
		{
			ID:            ConstraintNoTeacherOverlap,
			Name:          "No Teacher Overlap",
			Description:   "teachers cannot be double-booked",
			Category:      CategoryHard,
			DefaultWeight: DefaultHardWeight,
			Evaluate:      evalTeacherOverlap,
		},
		{
			ID:            ConstraintNoRoomOverlap,
			Name:          "No Room Overlap",
			Description:   "rooms cannot host more concurrent sections than they allow",
			Category:      CategoryHard,
			DefaultWeight: DefaultHardWeight,
			Evaluate:      evalRoomOverlap,
		},
		{
			ID:            ConstraintRoomCapacity,
			Name:          "Room Capacity",
			Description:   "assigned room must fit the enrolled students",
			Category:      CategoryHard,
			DefaultWeight: DefaultHardWeight,
			Evaluate:      evalRoomCapacity,
		},
		{
			ID:            ConstraintTeacherQualification,
			Name:          "Teacher Qualification",
			Description:   "assigned teacher must be qualified for the course subject",
			Category:      CategoryHard,
			DefaultWeight: DefaultHardWeight,
			Evaluate:      evalTeacherQualification,
		},
		{
			ID:            ConstraintAllSectionsScheduled,
			Name:          "All Sections Scheduled",
			Description:   "every section needs a teacher, a room and a time slot",
			Category:      CategoryHard,
			DefaultWeight: DefaultHardWeight,
			Evaluate:      evalAllSectionsScheduled,
		},
		{
			ID:            ConstraintMinimizeTeacherGaps,
			Name:          "Minimize Teacher Gaps",
			Description:   "reduce idle periods between a teacher's classes",
			Category:      CategorySoft,
			DefaultWeight: DefaultSoftWeight,
			Evaluate:      evalTeacherGaps,
		},
		{
			ID:            ConstraintBalanceTeacherLoad,
			Name:          "Balance Teacher Load",
			Description:   "respect per-day and per-week teaching limits",
			Category:      CategorySoft,
			DefaultWeight: DefaultSoftWeight,
			Evaluate:      evalTeacherLoad,
		},
		{
			ID:            ConstraintRoomTypeMatch,
			Name:          "Room Type Match",
			Description:   "use a room of the course's required type when one exists",
			Category:      CategorySoft,
			DefaultWeight: DefaultSoftWeight,
			Evaluate:      evalRoomTypeMatch,
		},
		{
			ID:            ConstraintSpreadSections,
			Name:          "Spread Sections",
			Description:   "spread sections of one course across different days",
			Category:      CategorySoft,
			DefaultWeight: DefaultSoftWeight,
			Evaluate:      evalSpreadSections,
		},
	}
}

type booking struct {
	owner string
	slot  string
}

func evalTeacherOverlap(s *Snapshot, c *Candidate) int {
	counts := make(map[booking]int)
	for i := range c.Slots {
		a := &c.Slots[i]
		if a.TeacherID == "" || a.TimeSlotID == "" {
			continue
		}
		counts[booking{a.TeacherID, a.TimeSlotID}]++
	}
	violations := 0
	for _, n := range counts {
		if n > 1 {
			violations += n - 1
		}
	}
	return violations
}

func evalRoomOverlap(s *Snapshot, c *Candidate) int {
	counts := make(map[booking]int)
	for i := range c.Slots {
		a := &c.Slots[i]
		if a.RoomID == "" || a.TimeSlotID == "" {
			continue
		}
		counts[booking{a.RoomID, a.TimeSlotID}]++
	}
	violations := 0
	for key, n := range counts {
		allowed := 1
		if room := s.Room(key.owner); room != nil && room.AllowSharing && room.MaxConcurrent > 1 {
			allowed = room.MaxConcurrent
		}
		if n > allowed {
			violations += n - allowed
		}
	}
	return violations
}

func evalRoomCapacity(s *Snapshot, c *Candidate) int {
	violations := 0
	for i := range c.Slots {
		a := &c.Slots[i]
		if a.RoomID == "" {
			continue
		}
		if room := s.Room(a.RoomID); room != nil && room.Capacity < a.Enrolled {
			violations++
		}
	}
	return violations
}

func evalTeacherQualification(s *Snapshot, c *Candidate) int {
	violations := 0
	for i := range c.Slots {
		a := &c.Slots[i]
		if a.TeacherID == "" {
			continue
		}
		course := s.Course(a.CourseID)
		if course == nil {
			continue
		}
		qualified := false
		for _, id := range s.QualifiedTeachers(course.Subject) {
			if id == a.TeacherID {
				qualified = true
				break
			}
		}
		if !qualified {
			violations++
		}
	}
	return violations
}

func evalAllSectionsScheduled(s *Snapshot, c *Candidate) int {
	violations := 0
	for i := range c.Slots {
		a := &c.Slots[i]
		if a.TeacherID == "" {
			violations++
		}
		if a.RoomID == "" {
			violations++
		}
		if a.TimeSlotID == "" {
			violations++
		}
	}
	return violations
}

func evalTeacherGaps(s *Snapshot, c *Candidate) int {
	periods := make(map[string]map[int][]int)
	for i := range c.Slots {
		a := &c.Slots[i]
		if a.TeacherID == "" {
			continue
		}
		ts := s.TimeSlot(a.TimeSlotID)
		if ts == nil {
			continue
		}
		if periods[a.TeacherID] == nil {
			periods[a.TeacherID] = make(map[int][]int)
		}
		periods[a.TeacherID][ts.DayOfWeek] = append(periods[a.TeacherID][ts.DayOfWeek], ts.PeriodIndex)
	}
	gaps := 0
	for _, days := range periods {
		for _, indexes := range days {
			sort.Ints(indexes)
			for i := 0; i < len(indexes)-1; i++ {
				if diff := indexes[i+1] - indexes[i]; diff > 1 {
					gaps += diff - 1
				}
			}
		}
	}
	return gaps
}

func evalTeacherLoad(s *Snapshot, c *Candidate) int {
	perDay := make(map[booking]int)
	weekly := make(map[string]int)
	for i := range c.Slots {
		a := &c.Slots[i]
		if a.TeacherID == "" {
			continue
		}
		weekly[a.TeacherID]++
		if ts := s.TimeSlot(a.TimeSlotID); ts != nil {
			perDay[booking{a.TeacherID, dayKey(ts.DayOfWeek)}]++
		}
	}
	violations := 0
	for id, load := range weekly {
		teacher := s.Teacher(id)
		if teacher == nil {
			continue
		}
		if teacher.MaxPeriodsPerWeek > 0 && load > teacher.MaxPeriodsPerWeek {
			violations += load - teacher.MaxPeriodsPerWeek
		}
	}
	for key, load := range perDay {
		teacher := s.Teacher(key.owner)
		if teacher == nil {
			continue
		}
		if teacher.MaxPeriodsPerDay > 0 && load > teacher.MaxPeriodsPerDay {
			violations += load - teacher.MaxPeriodsPerDay
		}
	}
	return violations
}

func evalRoomTypeMatch(s *Snapshot, c *Candidate) int {
	violations := 0
	for i := range c.Slots {
		a := &c.Slots[i]
		if a.RoomID == "" {
			continue
		}
		course := s.Course(a.CourseID)
		if course == nil || course.RequiredRoomType == "" {
			continue
		}
		if len(s.RoomsOfType(course.RequiredRoomType)) == 0 {
			continue
		}
		room := s.Room(a.RoomID)
		if room == nil || !strings.EqualFold(room.RoomType, course.RequiredRoomType) {
			violations++
		}
	}
	return violations
}

func evalSpreadSections(s *Snapshot, c *Candidate) int {
	counts := make(map[booking]int)
	for i := range c.Slots {
		a := &c.Slots[i]
		ts := s.TimeSlot(a.TimeSlotID)
		if ts == nil {
			continue
		}
		counts[booking{a.CourseID, dayKey(ts.DayOfWeek)}]++
	}
	violations := 0
	for _, n := range counts {
		if n > 1 {
			violations += n - 1
		}
	}
	return violations
}

func dayKey(day int) string {
	return string(rune('0' + day))
}
