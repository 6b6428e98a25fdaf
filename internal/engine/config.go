package engine

import (
	"fmt"
	"runtime"
	"time"
)

// AlgorithmGenetic is the only search strategy currently implemented.
const AlgorithmGenetic = "GENETIC_ALGORITHM"

// Config carries the tunables of one optimization run. Validate before
// handing it to NewEngine.
type Config struct {
	Algorithm       string
	PopulationSize  int
	MaxGenerations  int
	MutationRate    float64
	CrossoverRate   float64
	EliteSize       int
	TournamentSize  int
	MaxRuntime      time.Duration
	StagnationLimit int
	ThreadCount     int
	LogFrequency    int

	// TargetFitness stops the run early once the best candidate reaches it.
	// Nil means run until another criterion fires.
	TargetFitness *float64

	// ConstraintWeights overrides DefaultWeight per constraint id. Ids not
	// present keep their catalog default.
	ConstraintWeights map[string]float64

	// Seed fixes the random source when non-zero. Zero seeds from the clock.
	Seed int64
}

// DefaultConfig mirrors the tunables a fresh installation starts with.
func DefaultConfig() Config {
	return Config{
		Algorithm:       AlgorithmGenetic,
		PopulationSize:  100,
		MaxGenerations:  1000,
		MutationRate:    0.1,
		CrossoverRate:   0.8,
		EliteSize:       5,
		TournamentSize:  5,
		MaxRuntime:      300 * time.Second,
		StagnationLimit: 100,
		ThreadCount:     4,
		LogFrequency:    10,
	}
}

// Validate reports the first invalid field. ThreadCount is normalised rather
// than rejected: values below one mean "use every CPU".
func (c *Config) Validate() error {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmGenetic
	}
	if c.Algorithm != AlgorithmGenetic {
		return fmt.Errorf("unsupported algorithm %q", c.Algorithm)
	}
	if c.PopulationSize < 2 {
		return fmt.Errorf("population size must be at least 2, got %d", c.PopulationSize)
	}
	if c.MaxGenerations < 1 {
		return fmt.Errorf("max generations must be positive, got %d", c.MaxGenerations)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be within [0,1], got %g", c.MutationRate)
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf("crossover rate must be within [0,1], got %g", c.CrossoverRate)
	}
	if c.EliteSize < 0 || c.EliteSize >= c.PopulationSize {
		return fmt.Errorf("elite size must be within [0,%d), got %d", c.PopulationSize, c.EliteSize)
	}
	if c.TournamentSize < 1 || c.TournamentSize > c.PopulationSize {
		return fmt.Errorf("tournament size must be within [1,%d], got %d", c.PopulationSize, c.TournamentSize)
	}
	if c.MaxRuntime <= 0 {
		return fmt.Errorf("max runtime must be positive, got %s", c.MaxRuntime)
	}
	if c.StagnationLimit < 1 {
		return fmt.Errorf("stagnation limit must be positive, got %d", c.StagnationLimit)
	}
	for id, weight := range c.ConstraintWeights {
		if weight < 0 {
			return fmt.Errorf("constraint weight for %s must not be negative, got %g", id, weight)
		}
	}
	if c.ThreadCount < 1 {
		c.ThreadCount = runtime.NumCPU()
	}
	if c.LogFrequency < 1 {
		c.LogFrequency = 10
	}
	return nil
}
