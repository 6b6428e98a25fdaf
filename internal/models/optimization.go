package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// OptimizationConfigRecord is a persisted, named optimization profile.
type OptimizationConfigRecord struct {
	ID                string         `db:"id" json:"id"`
	Name              string         `db:"name" json:"name"`
	Description       string         `db:"description" json:"description"`
	Algorithm         string         `db:"algorithm" json:"algorithm"`
	PopulationSize    int            `db:"population_size" json:"population_size"`
	MaxGenerations    int            `db:"max_generations" json:"max_generations"`
	MutationRate      float64        `db:"mutation_rate" json:"mutation_rate"`
	CrossoverRate     float64        `db:"crossover_rate" json:"crossover_rate"`
	EliteSize         int            `db:"elite_size" json:"elite_size"`
	TournamentSize    int            `db:"tournament_size" json:"tournament_size"`
	MaxRuntimeSeconds int            `db:"max_runtime_seconds" json:"max_runtime_seconds"`
	StagnationLimit   int            `db:"stagnation_limit" json:"stagnation_limit"`
	TargetFitness     *float64       `db:"target_fitness" json:"target_fitness,omitempty"`
	ThreadCount       int            `db:"thread_count" json:"thread_count"`
	LogFrequency      int            `db:"log_frequency" json:"log_frequency"`
	ConstraintWeights types.JSONText `db:"constraint_weights" json:"constraint_weights,omitempty"`
	IsDefault         bool           `db:"is_default" json:"is_default"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// OptimizationResultRecord is a persisted terminal run outcome.
type OptimizationResultRecord struct {
	ID                  string         `db:"id" json:"id"`
	RunID               string         `db:"run_id" json:"run_id"`
	Status              string         `db:"status" json:"status"`
	Reason              string         `db:"reason" json:"reason"`
	Algorithm           string         `db:"algorithm" json:"algorithm"`
	InitialFitness      float64        `db:"initial_fitness" json:"initial_fitness"`
	FinalFitness        float64        `db:"final_fitness" json:"final_fitness"`
	BestFitness         float64        `db:"best_fitness" json:"best_fitness"`
	InitialConflicts    int            `db:"initial_conflicts" json:"initial_conflicts"`
	FinalConflicts      int            `db:"final_conflicts" json:"final_conflicts"`
	CriticalConflicts   int            `db:"critical_conflicts" json:"critical_conflicts"`
	GenerationsExecuted int            `db:"generations_executed" json:"generations_executed"`
	BestGeneration      int            `db:"best_generation" json:"best_generation"`
	RuntimeSeconds      float64        `db:"runtime_seconds" json:"runtime_seconds"`
	Breakdown           types.JSONText `db:"breakdown" json:"breakdown,omitempty"`
	StartedAt           time.Time      `db:"started_at" json:"started_at"`
	CompletedAt         time.Time      `db:"completed_at" json:"completed_at"`
}
