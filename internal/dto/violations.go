package dto

import "time"

// SuggestedActionResponse is one executable fix attached to a violation.
type SuggestedActionResponse struct {
	Type        string            `json:"type"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
}

// ViolationResponse describes one structural problem in the current data.
type ViolationResponse struct {
	Type        string                    `json:"type"`
	Severity    string                    `json:"severity"`
	Description string                    `json:"description"`
	CourseID    string                    `json:"courseId,omitempty"`
	TeacherID   string                    `json:"teacherId,omitempty"`
	Suggestions []SuggestedActionResponse `json:"suggestions,omitempty"`
}

// AnalysisResponse is the full structural analysis payload.
type AnalysisResponse struct {
	Fingerprint   string              `json:"fingerprint"`
	CriticalCount int                 `json:"criticalCount"`
	WarningCount  int                 `json:"warningCount"`
	InfoCount     int                 `json:"infoCount"`
	Blocking      bool                `json:"blocking"`
	Violations    []ViolationResponse `json:"violations"`
	AnalyzedAt    time.Time           `json:"analyzedAt"`
	FromCache     bool                `json:"fromCache"`
}

// ViolationQuery filters the analysis endpoint.
type ViolationQuery struct {
	Refresh  bool   `form:"refresh" json:"refresh"`
	Severity string `form:"severity" json:"severity" validate:"omitempty,oneof=INFO WARNING CRITICAL"`
}

// ApplyActionRequest executes one suggested corrective action.
type ApplyActionRequest struct {
	Type       string            `json:"type" validate:"required,oneof=ASSIGN_TEACHER ENABLE_SHARING ASSIGN_ROOM REASSIGN_COURSE"`
	Parameters map[string]string `json:"parameters" validate:"required"`
}

// ApplyActionResponse reports the outcome of one corrective action.
type ApplyActionResponse struct {
	Applied bool   `json:"applied"`
	Message string `json:"message,omitempty"`
}
