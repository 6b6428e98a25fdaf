package dto

import "time"

// StartOptimizationRequest launches a run. ConfigID selects a stored
// configuration; Overrides tweaks individual tunables for this run only.
type StartOptimizationRequest struct {
	ConfigID  string               `json:"configId" validate:"omitempty,uuid4"`
	Overrides *ConfigOverrides     `json:"overrides"`
	Force     bool                 `json:"force"`
}

// ConfigOverrides carries per-run adjustments to a stored configuration.
// Pointers distinguish "not set" from zero.
type ConfigOverrides struct {
	PopulationSize    *int               `json:"populationSize" validate:"omitempty,min=2,max=10000"`
	MaxGenerations    *int               `json:"maxGenerations" validate:"omitempty,min=1,max=1000000"`
	MutationRate      *float64           `json:"mutationRate" validate:"omitempty,min=0,max=1"`
	CrossoverRate     *float64           `json:"crossoverRate" validate:"omitempty,min=0,max=1"`
	EliteSize         *int               `json:"eliteSize" validate:"omitempty,min=0"`
	TournamentSize    *int               `json:"tournamentSize" validate:"omitempty,min=1"`
	MaxRuntimeSeconds *int               `json:"maxRuntimeSeconds" validate:"omitempty,min=1,max=86400"`
	StagnationLimit   *int               `json:"stagnationLimit" validate:"omitempty,min=1"`
	ThreadCount       *int               `json:"threadCount" validate:"omitempty,min=0,max=256"`
	TargetFitness     *float64           `json:"targetFitness"`
	ConstraintWeights map[string]float64 `json:"constraintWeights"`
}

// StartOptimizationResponse acknowledges an accepted run.
type StartOptimizationResponse struct {
	RunID     string    `json:"runId"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"startedAt"`
}

// ProgressResponse is the polling payload for an active or finished run.
type ProgressResponse struct {
	RunID           string  `json:"runId"`
	Status          string  `json:"status"`
	Generation      int     `json:"generation"`
	MaxGenerations  int     `json:"maxGenerations"`
	Percent         float64 `json:"percent"`
	BestFitness     float64 `json:"bestFitness"`
	AverageFitness  float64 `json:"averageFitness"`
	HardViolations  int     `json:"hardViolations"`
	StagnationCount int     `json:"stagnationCount"`
	ElapsedSeconds  float64 `json:"elapsedSeconds"`
	Message         string  `json:"message,omitempty"`
}

// ResultResponse is the terminal summary of a run.
type ResultResponse struct {
	RunID               string             `json:"runId"`
	Status              string             `json:"status"`
	Reason              string             `json:"reason"`
	Algorithm           string             `json:"algorithm"`
	InitialFitness      float64            `json:"initialFitness"`
	BestFitness         float64            `json:"bestFitness"`
	InitialConflicts    int                `json:"initialConflicts"`
	FinalConflicts      int                `json:"finalConflicts"`
	GenerationsExecuted int                `json:"generationsExecuted"`
	BestGeneration      int                `json:"bestGeneration"`
	RuntimeSeconds      float64            `json:"runtimeSeconds"`
	ConstraintScores    map[string]float64 `json:"constraintScores,omitempty"`
	ViolationCounts     map[string]int     `json:"violationCounts,omitempty"`
	StartedAt           time.Time          `json:"startedAt"`
	CompletedAt         *time.Time         `json:"completedAt,omitempty"`
}

// ScheduleSlotResponse is one cell of the optimized timetable.
type ScheduleSlotResponse struct {
	CourseID     string  `json:"courseId"`
	CourseCode   string  `json:"courseCode"`
	SectionIndex int     `json:"sectionIndex"`
	TeacherID    *string `json:"teacherId,omitempty"`
	TeacherName  string  `json:"teacherName,omitempty"`
	RoomID       *string `json:"roomId,omitempty"`
	RoomNumber   string  `json:"roomNumber,omitempty"`
	TimeSlotID   string  `json:"timeSlotId"`
	DayOfWeek    int     `json:"dayOfWeek"`
	PeriodIndex  int     `json:"periodIndex"`
	Enrolled     int     `json:"enrolled"`
}

// SaveOptimizationConfigRequest creates or replaces a stored configuration.
type SaveOptimizationConfigRequest struct {
	Name              string             `json:"name" validate:"required,min=1,max=120"`
	PopulationSize    int                `json:"populationSize" validate:"required,min=2,max=10000"`
	MaxGenerations    int                `json:"maxGenerations" validate:"required,min=1,max=1000000"`
	MutationRate      float64            `json:"mutationRate" validate:"min=0,max=1"`
	CrossoverRate     float64            `json:"crossoverRate" validate:"min=0,max=1"`
	EliteSize         int                `json:"eliteSize" validate:"min=0"`
	TournamentSize    int                `json:"tournamentSize" validate:"required,min=1"`
	MaxRuntimeSeconds int                `json:"maxRuntimeSeconds" validate:"required,min=1,max=86400"`
	StagnationLimit   int                `json:"stagnationLimit" validate:"required,min=1"`
	ThreadCount       int                `json:"threadCount" validate:"min=0,max=256"`
	LogFrequency      int                `json:"logFrequency" validate:"min=0"`
	TargetFitness     *float64           `json:"targetFitness"`
	ConstraintWeights map[string]float64 `json:"constraintWeights"`
	IsDefault         bool               `json:"isDefault"`
}

// OptimizationConfigResponse mirrors a stored configuration.
type OptimizationConfigResponse struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	PopulationSize    int                `json:"populationSize"`
	MaxGenerations    int                `json:"maxGenerations"`
	MutationRate      float64            `json:"mutationRate"`
	CrossoverRate     float64            `json:"crossoverRate"`
	EliteSize         int                `json:"eliteSize"`
	TournamentSize    int                `json:"tournamentSize"`
	MaxRuntimeSeconds int                `json:"maxRuntimeSeconds"`
	StagnationLimit   int                `json:"stagnationLimit"`
	ThreadCount       int                `json:"threadCount"`
	LogFrequency      int                `json:"logFrequency"`
	TargetFitness     *float64           `json:"targetFitness,omitempty"`
	ConstraintWeights map[string]float64 `json:"constraintWeights,omitempty"`
	IsDefault         bool               `json:"isDefault"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// ResultListQuery pages through finished runs.
type ResultListQuery struct {
	Limit int `form:"limit" json:"limit"`
}

// HealthResponse summarises engine availability for dashboards.
type HealthResponse struct {
	ActiveRunID        string          `json:"activeRunId,omitempty"`
	ActiveRunStatus    string          `json:"activeRunStatus,omitempty"`
	LastResult         *ResultResponse `json:"lastResult,omitempty"`
	CriticalViolations int             `json:"criticalViolations"`
	Healthy            bool            `json:"healthy"`
}
