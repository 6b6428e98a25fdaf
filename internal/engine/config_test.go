package engine

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaultsAreValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, AlgorithmGenetic, cfg.Algorithm)
	assert.Equal(t, 100, cfg.PopulationSize)
	assert.Equal(t, 1000, cfg.MaxGenerations)
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown algorithm", func(c *Config) { c.Algorithm = "SIMULATED_ANNEALING" }},
		{"population too small", func(c *Config) { c.PopulationSize = 1 }},
		{"zero generations", func(c *Config) { c.MaxGenerations = 0 }},
		{"mutation rate above one", func(c *Config) { c.MutationRate = 1.01 }},
		{"negative crossover rate", func(c *Config) { c.CrossoverRate = -0.1 }},
		{"elite not below population", func(c *Config) { c.EliteSize = c.PopulationSize }},
		{"tournament above population", func(c *Config) { c.TournamentSize = c.PopulationSize + 1 }},
		{"zero runtime", func(c *Config) { c.MaxRuntime = 0 }},
		{"zero stagnation limit", func(c *Config) { c.StagnationLimit = 0 }},
		{"negative weight", func(c *Config) { c.ConstraintWeights = map[string]float64{ConstraintRoomCapacity: -1} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfigValidateNormalisesThreadCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ThreadCount = 0
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, runtime.NumCPU(), cfg.ThreadCount)
}

func TestConfigValidateDefaultsAlgorithm(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Algorithm = ""
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, AlgorithmGenetic, cfg.Algorithm)
}
