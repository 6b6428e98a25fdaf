package engine

import (
	"fmt"
	"time"

	"github.com/noah-isme/sma-schedule-optimizer/internal/models"
)

// Violation severities, ordered by urgency.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Structural violation types.
const (
	ViolationNoTimeSlots           = "NO_TIME_SLOTS"
	ViolationNoTeacherAssigned     = "NO_TEACHER_ASSIGNED"
	ViolationNoRoomOfType          = "NO_ROOM_OF_TYPE"
	ViolationRoomCapacityShortfall = "ROOM_CAPACITY_SHORTFALL"
	ViolationTeacherOverloaded     = "TEACHER_OVERLOADED"
	ViolationNoEnrollment          = "NO_ENROLLMENT"
)

// Suggested action types.
const (
	ActionAssignTeacher  = "ASSIGN_TEACHER"
	ActionEnableSharing  = "ENABLE_SHARING"
	ActionAssignRoom     = "ASSIGN_ROOM"
	ActionReassignCourse = "REASSIGN_COURSE"
)

// SuggestedAction is one concrete fix for a violation. Parameters carry the
// entity ids the executor needs to apply it.
type SuggestedAction struct {
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
}

// Violation is one structural problem found in the snapshot.
type Violation struct {
	Type        string            `json:"type"`
	Severity    Severity          `json:"severity"`
	Description string            `json:"description"`
	CourseID    string            `json:"course_id,omitempty"`
	TeacherID   string            `json:"teacher_id,omitempty"`
	Suggestions []SuggestedAction `json:"suggestions,omitempty"`
}

// AnalysisResult is the full outcome of one analysis pass over a snapshot.
type AnalysisResult struct {
	Fingerprint   string      `json:"fingerprint"`
	Violations    []Violation `json:"violations"`
	CriticalCount int         `json:"critical_count"`
	WarningCount  int         `json:"warning_count"`
	InfoCount     int         `json:"info_count"`
	AnalyzedAt    time.Time   `json:"analyzed_at"`
}

// Blocking reports whether the snapshot has violations that must be fixed
// before an optimization run can start.
func (r *AnalysisResult) Blocking() bool { return r.CriticalCount > 0 }

// Analyze inspects the snapshot for structural problems no search could fix.
// It is deterministic: the same snapshot yields the same violations in the
// same order, because the snapshot's entity slices are sorted at build time.
func Analyze(s *Snapshot) *AnalysisResult {
	result := &AnalysisResult{
		Fingerprint: s.Fingerprint(),
		Violations:  []Violation{},
		AnalyzedAt:  time.Now().UTC(),
	}

	if len(s.TimeSlots) == 0 {
		result.add(Violation{
			Type:        ViolationNoTimeSlots,
			Severity:    SeverityCritical,
			Description: "no time slots are defined, nothing can be scheduled",
		})
	}

	for i := range s.Courses {
		course := &s.Courses[i]
		checkTeacherAssignment(s, course, result)
		checkRoomAvailability(s, course, result)
		if course.EnrolledCount == 0 {
			result.add(Violation{
				Type:        ViolationNoEnrollment,
				Severity:    SeverityInfo,
				CourseID:    course.ID,
				Description: fmt.Sprintf("course %s has no enrolled students", course.Code),
			})
		}
	}

	checkTeacherWorkload(s, result)
	return result
}

func (r *AnalysisResult) add(v Violation) {
	r.Violations = append(r.Violations, v)
	switch v.Severity {
	case SeverityCritical:
		r.CriticalCount++
	case SeverityWarning:
		r.WarningCount++
	default:
		r.InfoCount++
	}
}

func checkTeacherAssignment(s *Snapshot, course *models.Course, result *AnalysisResult) {
	if course.TeacherID != nil && *course.TeacherID != "" {
		return
	}
	qualified := s.QualifiedTeachers(course.Subject)
	if len(qualified) > 0 {
		suggestions := make([]SuggestedAction, 0, len(qualified))
		for _, teacherID := range qualified {
			teacher := s.Teacher(teacherID)
			suggestions = append(suggestions, SuggestedAction{
				Type:        ActionAssignTeacher,
				Description: fmt.Sprintf("assign %s to course %s", teacher.FullName, course.Code),
				Parameters: map[string]string{
					"course_id":  course.ID,
					"teacher_id": teacherID,
				},
			})
		}
		result.add(Violation{
			Type:        ViolationNoTeacherAssigned,
			Severity:    SeverityCritical,
			CourseID:    course.ID,
			Description: fmt.Sprintf("course %s has no assigned teacher", course.Code),
			Suggestions: suggestions,
		})
		return
	}
	result.add(Violation{
		Type:        ViolationNoTeacherAssigned,
		Severity:    SeverityCritical,
		CourseID:    course.ID,
		Description: fmt.Sprintf("course %s has no assigned teacher and no teacher is qualified for %s", course.Code, course.Subject),
	})
}

func checkRoomAvailability(s *Snapshot, course *models.Course, result *AnalysisResult) {
	if course.RequiredRoomType != "" && len(s.RoomsOfType(course.RequiredRoomType)) == 0 {
		result.add(Violation{
			Type:        ViolationNoRoomOfType,
			Severity:    SeverityCritical,
			CourseID:    course.ID,
			Description: fmt.Sprintf("course %s requires a %s room but none exists", course.Code, course.RequiredRoomType),
		})
		return
	}
	if course.EnrolledCount == 0 {
		return
	}

	assignedTooSmall := false
	if course.RoomID != nil && *course.RoomID != "" {
		if room := s.Room(*course.RoomID); room != nil && room.Capacity < course.EnrolledCount {
			assignedTooSmall = true
		}
	}
	compatible := s.CompatibleRooms(course)
	if len(compatible) > 0 && !assignedTooSmall {
		return
	}

	if len(compatible) > 0 {
		// The assigned room is too small but another eligible room fits, so
		// this is repairable by reassignment.
		suggestions := make([]SuggestedAction, 0, len(compatible))
		for _, id := range compatible {
			room := s.Room(id)
			suggestions = append(suggestions, SuggestedAction{
				Type:        ActionAssignRoom,
				Description: fmt.Sprintf("assign room %s to course %s", room.RoomNumber, course.Code),
				Parameters: map[string]string{
					"course_id": course.ID,
					"room_id":   room.ID,
				},
			})
		}
		result.add(Violation{
			Type:        ViolationRoomCapacityShortfall,
			Severity:    SeverityWarning,
			CourseID:    course.ID,
			Description: fmt.Sprintf("course %s (%d students) does not fit its assigned room", course.Code, course.EnrolledCount),
			Suggestions: suggestions,
		})
		return
	}

	// No single room can hold the course. Sharing a room between concurrent
	// sections is the only structural fix left.
	candidates := s.Rooms
	if course.RequiredRoomType != "" {
		candidates = roomsByType(s, course.RequiredRoomType)
	}
	suggestions := make([]SuggestedAction, 0, len(candidates))
	for i := range candidates {
		room := &candidates[i]
		if room.AllowSharing {
			continue
		}
		suggestions = append(suggestions, SuggestedAction{
			Type:        ActionEnableSharing,
			Description: fmt.Sprintf("enable sharing on room %s", room.RoomNumber),
			Parameters: map[string]string{
				"room_id": room.ID,
			},
		})
	}
	result.add(Violation{
		Type:        ViolationRoomCapacityShortfall,
		Severity:    SeverityCritical,
		CourseID:    course.ID,
		Description: fmt.Sprintf("no room can hold course %s (%d students)", course.Code, course.EnrolledCount),
		Suggestions: suggestions,
	})
}

func checkTeacherWorkload(s *Snapshot, result *AnalysisResult) {
	load := make(map[string]int)
	assigned := make(map[string][]*models.Course)
	for i := range s.Courses {
		course := &s.Courses[i]
		if course.TeacherID == nil || *course.TeacherID == "" {
			continue
		}
		id := *course.TeacherID
		load[id] += sectionsOf(course)
		assigned[id] = append(assigned[id], course)
	}
	for i := range s.Teachers {
		teacher := &s.Teachers[i]
		if teacher.MaxPeriodsPerWeek <= 0 {
			continue
		}
		total := load[teacher.ID]
		if total <= teacher.MaxPeriodsPerWeek {
			continue
		}
		suggestions := make([]SuggestedAction, 0, len(assigned[teacher.ID]))
		for _, course := range assigned[teacher.ID] {
			suggestions = append(suggestions, SuggestedAction{
				Type:        ActionReassignCourse,
				Description: fmt.Sprintf("reassign course %s to another qualified teacher", course.Code),
				Parameters: map[string]string{
					"course_id":  course.ID,
					"teacher_id": teacher.ID,
				},
			})
		}
		result.add(Violation{
			Type:      ViolationTeacherOverloaded,
			Severity:  SeverityWarning,
			TeacherID: teacher.ID,
			Description: fmt.Sprintf("teacher %s is assigned %d sections but can teach at most %d periods per week",
				teacher.FullName, total, teacher.MaxPeriodsPerWeek),
			Suggestions: suggestions,
		})
	}
}

func roomsByType(s *Snapshot, roomType string) []models.Room {
	ids := s.RoomsOfType(roomType)
	out := make([]models.Room, 0, len(ids))
	for _, id := range ids {
		if room := s.Room(id); room != nil {
			out = append(out, *room)
		}
	}
	return out
}
