package engine

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCompletes(t *testing.T) {
	eng, err := NewEngine(testConfig(), smallSnapshot(), nil, nil)
	require.NoError(t, err)

	result := eng.Run(context.Background())
	require.NotNil(t, result)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.NotNil(t, result.Best)
	assert.Len(t, result.Best.Slots, 3)
	assert.GreaterOrEqual(t, result.BestBreakdown.TotalFitness, result.InitialBreakdown.TotalFitness)
	assert.Positive(t, result.GenerationsExecuted)
}

func TestRunBestFitnessMonotone(t *testing.T) {
	cfg := testConfig()
	cfg.LogFrequency = 1

	var history []float64
	reporter := ReporterFunc(func(u ProgressUpdate) {
		history = append(history, u.BestFitness)
	})

	eng, err := NewEngine(cfg, smallSnapshot(), reporter, nil)
	require.NoError(t, err)
	eng.Run(context.Background())

	require.NotEmpty(t, history)
	for i := 1; i < len(history); i++ {
		assert.GreaterOrEqual(t, history[i], history[i-1],
			"best fitness regressed at generation %d", i)
	}
}

func TestRunDeterministicWithSeed(t *testing.T) {
	run := func() *Result {
		cfg := testConfig()
		cfg.ThreadCount = 1
		eng, err := NewEngine(cfg, smallSnapshot(), nil, nil)
		require.NoError(t, err)
		return eng.Run(context.Background())
	}

	a := run()
	b := run()
	assert.Equal(t, a.BestBreakdown.TotalFitness, b.BestBreakdown.TotalFitness)
	assert.Equal(t, a.GenerationsExecuted, b.GenerationsExecuted)
	assert.Equal(t, a.Best.Slots, b.Best.Slots)
}

func TestRunStopsOnTargetFitness(t *testing.T) {
	cfg := testConfig()
	target := -10000.0
	cfg.TargetFitness = &target

	eng, err := NewEngine(cfg, smallSnapshot(), nil, nil)
	require.NoError(t, err)

	result := eng.Run(context.Background())
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, ReasonTargetFitness, result.Reason)
	assert.Equal(t, 0, result.GenerationsExecuted)
}

func TestRunStopsOnStagnation(t *testing.T) {
	cfg := testConfig()
	cfg.MaxGenerations = 100000
	cfg.MaxRuntime = time.Hour
	cfg.StagnationLimit = 15

	eng, err := NewEngine(cfg, smallSnapshot(), nil, nil)
	require.NoError(t, err)

	result := eng.Run(context.Background())
	assert.Equal(t, StatusCompleted, result.Status)
	require.Equal(t, ReasonStagnation, result.Reason)
	assert.Equal(t, result.BestGeneration+cfg.StagnationLimit, result.GenerationsExecuted)
}

func TestRunElitesSurviveUnchanged(t *testing.T) {
	cfg := testConfig()
	eng, err := NewEngine(cfg, smallSnapshot(), nil, nil)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	population := make([]scored, cfg.PopulationSize)
	for i := range population {
		population[i].candidate = randomCandidate(eng.snapshot, eng.templates, rng)
	}
	eng.evaluateAll(population)
	sortByFitness(population)

	elites := make([]*Candidate, cfg.EliteSize)
	snapshots := make([]*Candidate, cfg.EliteSize)
	for i := 0; i < cfg.EliteSize; i++ {
		elites[i] = population[i].candidate
		snapshots[i] = population[i].candidate.Clone()
	}

	next := eng.nextGeneration(population, rng)
	require.Len(t, next, cfg.PopulationSize)

	for i, elite := range elites {
		found := false
		for _, entry := range next {
			if entry.candidate == elite {
				found = true
				break
			}
		}
		require.True(t, found, "elite %d missing from next generation", i)
		assert.Equal(t, snapshots[i].Slots, elite.Slots, "elite %d was mutated", i)
	}
}

func TestRunReportsEveryGeneration(t *testing.T) {
	cfg := testConfig()
	cfg.LogFrequency = 25

	var history []ProgressUpdate
	reporter := ReporterFunc(func(u ProgressUpdate) {
		history = append(history, u)
	})

	eng, err := NewEngine(cfg, smallSnapshot(), reporter, nil)
	require.NoError(t, err)
	result := eng.Run(context.Background())

	// One update per completed generation plus the terminal snapshot.
	require.Len(t, history, result.GenerationsExecuted+1)
	for i := 0; i < result.GenerationsExecuted; i++ {
		assert.Equal(t, i+1, history[i].Generation)
	}
	assert.Equal(t, result.GenerationsExecuted, history[len(history)-1].Generation)
}

func TestRunCancelPreservesBest(t *testing.T) {
	cfg := testConfig()
	cfg.MaxGenerations = 100000
	cfg.StagnationLimit = 100000
	cfg.LogFrequency = 1

	var eng *Engine
	reporter := ReporterFunc(func(u ProgressUpdate) {
		if u.Generation >= 5 {
			eng.Cancel()
		}
	})

	var err error
	eng, err = NewEngine(cfg, smallSnapshot(), reporter, nil)
	require.NoError(t, err)

	result := eng.Run(context.Background())
	assert.Equal(t, StatusCancelled, result.Status)
	assert.Equal(t, ReasonCancelled, result.Reason)
	assert.NotNil(t, result.Best)
	assert.GreaterOrEqual(t, result.BestBreakdown.TotalFitness, result.InitialBreakdown.TotalFitness)
}

func TestRunContextCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.MaxGenerations = 100000
	cfg.StagnationLimit = 100000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng, err := NewEngine(cfg, smallSnapshot(), nil, nil)
	require.NoError(t, err)

	result := eng.Run(ctx)
	assert.Equal(t, StatusCancelled, result.Status)
	assert.NotNil(t, result.Best)
}

func TestRunStopsOnRuntime(t *testing.T) {
	cfg := testConfig()
	cfg.MaxGenerations = 100000
	cfg.StagnationLimit = 100000
	cfg.MaxRuntime = time.Millisecond

	eng, err := NewEngine(cfg, smallSnapshot(), nil, nil)
	require.NoError(t, err)

	result := eng.Run(context.Background())
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, ReasonMaxRuntime, result.Reason)
}

func TestNewEngineRejectsEmptySnapshot(t *testing.T) {
	empty := NewSnapshot(nil, nil, nil, nil)
	_, err := NewEngine(testConfig(), empty, nil, nil)
	assert.Error(t, err)
}

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MutationRate = 1.5
	_, err := NewEngine(cfg, smallSnapshot(), nil, nil)
	assert.Error(t, err)
}
