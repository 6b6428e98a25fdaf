package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/sma-schedule-optimizer/internal/models"
)

// Snapshot is a read-only view of the domain data an optimization run needs.
// It is built once per run and never mutated afterwards, which is what makes
// parallel fitness evaluation safe without locking.
type Snapshot struct {
	Courses   []models.Course
	Teachers  []models.Teacher
	Rooms     []models.Room
	TimeSlots []models.TimeSlot

	coursesByID  map[string]*models.Course
	teachersByID map[string]*models.Teacher
	roomsByID    map[string]*models.Room
	slotsByID    map[string]*models.TimeSlot

	qualifiedBySubject map[string][]string
}

// NewSnapshot copies and indexes the given records. Inactive courses,
// teachers and rooms are excluded up front so every consumer sees the same
// eligible universe. Input order does not matter; everything is sorted by ID
// for deterministic iteration.
func NewSnapshot(courses []models.Course, teachers []models.Teacher, rooms []models.Room, timeSlots []models.TimeSlot) *Snapshot {
	s := &Snapshot{
		coursesByID:        make(map[string]*models.Course),
		teachersByID:       make(map[string]*models.Teacher),
		roomsByID:          make(map[string]*models.Room),
		slotsByID:          make(map[string]*models.TimeSlot),
		qualifiedBySubject: make(map[string][]string),
	}

	for _, c := range courses {
		if c.Active {
			s.Courses = append(s.Courses, c)
		}
	}
	for _, t := range teachers {
		if t.Active {
			s.Teachers = append(s.Teachers, t)
		}
	}
	for _, r := range rooms {
		if r.Active {
			s.Rooms = append(s.Rooms, r)
		}
	}
	s.TimeSlots = append(s.TimeSlots, timeSlots...)

	sort.Slice(s.Courses, func(i, j int) bool { return s.Courses[i].ID < s.Courses[j].ID })
	sort.Slice(s.Teachers, func(i, j int) bool { return s.Teachers[i].ID < s.Teachers[j].ID })
	sort.Slice(s.Rooms, func(i, j int) bool { return s.Rooms[i].ID < s.Rooms[j].ID })
	sort.Slice(s.TimeSlots, func(i, j int) bool {
		if s.TimeSlots[i].DayOfWeek == s.TimeSlots[j].DayOfWeek {
			return s.TimeSlots[i].PeriodIndex < s.TimeSlots[j].PeriodIndex
		}
		return s.TimeSlots[i].DayOfWeek < s.TimeSlots[j].DayOfWeek
	})

	for i := range s.Courses {
		s.coursesByID[s.Courses[i].ID] = &s.Courses[i]
	}
	for i := range s.Teachers {
		s.teachersByID[s.Teachers[i].ID] = &s.Teachers[i]
	}
	for i := range s.Rooms {
		s.roomsByID[s.Rooms[i].ID] = &s.Rooms[i]
	}
	for i := range s.TimeSlots {
		s.slotsByID[s.TimeSlots[i].ID] = &s.TimeSlots[i]
	}

	for i := range s.Teachers {
		for _, subject := range splitSubjects(s.Teachers[i].QualifiedSubjects) {
			s.qualifiedBySubject[subject] = append(s.qualifiedBySubject[subject], s.Teachers[i].ID)
		}
	}
	for subject := range s.qualifiedBySubject {
		sort.Strings(s.qualifiedBySubject[subject])
	}

	return s
}

// Course returns the course with the given id, or nil.
func (s *Snapshot) Course(id string) *models.Course { return s.coursesByID[id] }

// Teacher returns the teacher with the given id, or nil.
func (s *Snapshot) Teacher(id string) *models.Teacher { return s.teachersByID[id] }

// Room returns the room with the given id, or nil.
func (s *Snapshot) Room(id string) *models.Room { return s.roomsByID[id] }

// TimeSlot returns the time slot with the given id, or nil.
func (s *Snapshot) TimeSlot(id string) *models.TimeSlot { return s.slotsByID[id] }

// QualifiedTeachers returns ids of active teachers qualified for a subject,
// sorted ascending.
func (s *Snapshot) QualifiedTeachers(subject string) []string {
	return s.qualifiedBySubject[normalizeSubject(subject)]
}

// CompatibleRooms returns ids of rooms matching the course's required room
// type (any type when the requirement is empty) with room capacity of at
// least the enrolled count.
func (s *Snapshot) CompatibleRooms(course *models.Course) []string {
	var ids []string
	for i := range s.Rooms {
		room := &s.Rooms[i]
		if course.RequiredRoomType != "" && !strings.EqualFold(room.RoomType, course.RequiredRoomType) {
			continue
		}
		if room.Capacity < course.EnrolledCount {
			continue
		}
		ids = append(ids, room.ID)
	}
	return ids
}

// RoomsOfType returns ids of rooms of the given type, sorted ascending.
func (s *Snapshot) RoomsOfType(roomType string) []string {
	var ids []string
	for i := range s.Rooms {
		if strings.EqualFold(s.Rooms[i].RoomType, roomType) {
			ids = append(ids, s.Rooms[i].ID)
		}
	}
	return ids
}

// SectionCount is the number of timetable slots the snapshot demands: one
// per section of every active course.
func (s *Snapshot) SectionCount() int {
	total := 0
	for i := range s.Courses {
		total += sectionsOf(&s.Courses[i])
	}
	return total
}

// Fingerprint produces a stable digest of the snapshot contents. Two
// snapshots built from identical domain data share a fingerprint, which the
// service layer uses to key cached analysis results.
func (s *Snapshot) Fingerprint() string {
	h := sha256.New()
	for i := range s.Courses {
		c := &s.Courses[i]
		fmt.Fprintf(h, "c|%s|%s|%s|%s|%s|%d|%d\n",
			c.ID, c.Subject, deref(c.TeacherID), deref(c.RoomID), c.RequiredRoomType, c.EnrolledCount, sectionsOf(c))
	}
	for i := range s.Teachers {
		t := &s.Teachers[i]
		fmt.Fprintf(h, "t|%s|%s|%d|%d\n", t.ID, t.QualifiedSubjects, t.MaxPeriodsPerDay, t.MaxPeriodsPerWeek)
	}
	for i := range s.Rooms {
		r := &s.Rooms[i]
		fmt.Fprintf(h, "r|%s|%s|%d|%t|%d\n", r.ID, r.RoomType, r.Capacity, r.AllowSharing, r.MaxConcurrent)
	}
	for i := range s.TimeSlots {
		ts := &s.TimeSlots[i]
		fmt.Fprintf(h, "s|%s|%d|%d\n", ts.ID, ts.DayOfWeek, ts.PeriodIndex)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sectionsOf(c *models.Course) int {
	if c.Sections < 1 {
		return 1
	}
	return c.Sections
}

func splitSubjects(raw string) []string {
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := normalizeSubject(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func normalizeSubject(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
