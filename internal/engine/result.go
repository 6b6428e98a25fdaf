package engine

import "time"

// Terminal run statuses.
const (
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusFailed    = "FAILED"
)

// Termination reasons recorded on the result.
const (
	ReasonMaxGenerations = "MAX_GENERATIONS"
	ReasonMaxRuntime     = "MAX_RUNTIME"
	ReasonStagnation     = "STAGNATION"
	ReasonTargetFitness  = "TARGET_FITNESS"
	ReasonCancelled      = "CANCELLED"
	ReasonFailed         = "FAILED"
)

// Result is the outcome of one engine run. Best carries the best candidate
// ever observed, even when the run was cancelled or failed mid-flight.
type Result struct {
	Status            string
	Reason            string
	Best              *Candidate
	BestBreakdown     FitnessBreakdown
	InitialBreakdown  FitnessBreakdown
	BestGeneration    int
	GenerationsExecuted int
	Runtime           time.Duration
	Err               error
}
