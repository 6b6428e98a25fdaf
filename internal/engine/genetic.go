package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Engine runs a genetic search over schedule candidates. One engine serves
// exactly one run; build a fresh engine per run.
type Engine struct {
	cfg       Config
	snapshot  *Snapshot
	catalog   []ConstraintType
	evaluator *Evaluator
	templates []sectionTemplate
	reporter  ProgressReporter
	logger    *zap.Logger
	cancelled atomic.Bool
}

// NewEngine validates the config and prepares a run. The snapshot must hold
// at least one course and one time slot.
func NewEngine(cfg Config, s *Snapshot, reporter ProgressReporter, logger *zap.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s == nil || s.SectionCount() == 0 {
		return nil, fmt.Errorf("snapshot has no schedulable sections")
	}
	if len(s.TimeSlots) == 0 {
		return nil, fmt.Errorf("snapshot has no time slots")
	}
	if reporter == nil {
		reporter = NopReporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog := DefaultCatalog()
	return &Engine{
		cfg:       cfg,
		snapshot:  s,
		catalog:   catalog,
		evaluator: NewEvaluator(s, catalog, cfg.ConstraintWeights),
		templates: buildSectionTemplates(s),
		reporter:  reporter,
		logger:    logger,
	}, nil
}

// Cancel requests a cooperative stop. The run finishes its current
// generation and returns the best candidate found so far.
func (e *Engine) Cancel() { e.cancelled.Store(true) }

type scored struct {
	candidate *Candidate
	breakdown FitnessBreakdown
}

// Run executes the search until a termination criterion fires. It never
// returns a nil result; a panic inside the loop yields StatusFailed with the
// best candidate seen before the failure.
func (e *Engine) Run(ctx context.Context) (result *Result) {
	started := time.Now()
	result = &Result{Status: StatusFailed, Reason: ReasonFailed}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("optimization run panicked", zap.Any("panic", r))
			result.Status = StatusFailed
			result.Reason = ReasonFailed
			result.Err = fmt.Errorf("optimization run panicked: %v", r)
		}
		result.Runtime = time.Since(started)
	}()

	seed := e.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	population := make([]scored, e.cfg.PopulationSize)
	for i := range population {
		population[i].candidate = randomCandidate(e.snapshot, e.templates, rng)
	}
	e.evaluateAll(population)
	sortByFitness(population)

	best := population[0]
	result.InitialBreakdown = best.breakdown
	result.Best = best.candidate
	result.BestBreakdown = best.breakdown
	result.BestGeneration = 0

	deadline := started.Add(e.cfg.MaxRuntime)
	stagnation := 0
	generation := 0

	for {
		if reason := e.terminationReason(ctx, generation, stagnation, deadline, best.breakdown.TotalFitness); reason != "" {
			result.Status = statusForReason(reason)
			result.Reason = reason
			result.GenerationsExecuted = generation
			e.report(generation, stagnation, started, population)
			e.logger.Info("optimization run finished",
				zap.String("reason", reason),
				zap.Int("generations", generation),
				zap.Float64("best_fitness", best.breakdown.TotalFitness))
			return result
		}

		population = e.nextGeneration(population, rng)
		generation++

		if population[0].breakdown.TotalFitness > best.breakdown.TotalFitness {
			best = population[0]
			result.Best = best.candidate
			result.BestBreakdown = best.breakdown
			result.BestGeneration = generation
			stagnation = 0
		} else {
			stagnation++
		}

		e.report(generation, stagnation, started, population)
		if generation%e.cfg.LogFrequency == 0 {
			e.logger.Debug("generation complete",
				zap.Int("generation", generation),
				zap.Float64("best_fitness", best.breakdown.TotalFitness),
				zap.Int("stagnation", stagnation))
		}
	}
}

// nextGeneration breeds a full replacement population. The EliteSize best
// entries survive untouched; the pointer is carried, not a copy.
func (e *Engine) nextGeneration(population []scored, rng *rand.Rand) []scored {
	next := make([]scored, 0, e.cfg.PopulationSize)
	for i := 0; i < e.cfg.EliteSize; i++ {
		next = append(next, population[i])
	}
	for len(next) < e.cfg.PopulationSize {
		parentA := e.tournament(population, rng)
		parentB := e.tournament(population, rng)
		var child *Candidate
		if rng.Float64() < e.cfg.CrossoverRate {
			child = crossover(parentA.candidate, parentB.candidate, rng)
		} else {
			child = parentA.candidate.Clone()
		}
		if rng.Float64() < e.cfg.MutationRate {
			child = mutate(child, e.snapshot, e.templates, rng)
		}
		next = append(next, scored{candidate: child})
	}
	e.evaluateAll(next[e.cfg.EliteSize:])
	sortByFitness(next)
	return next
}

// terminationReason checks the stop criteria in a fixed order so a run that
// hits several at once reports deterministically.
func (e *Engine) terminationReason(ctx context.Context, generation, stagnation int, deadline time.Time, bestFitness float64) string {
	if generation >= e.cfg.MaxGenerations {
		return ReasonMaxGenerations
	}
	if !time.Now().Before(deadline) {
		return ReasonMaxRuntime
	}
	if stagnation >= e.cfg.StagnationLimit {
		return ReasonStagnation
	}
	if e.cfg.TargetFitness != nil && *e.cfg.TargetFitness != 0 && bestFitness >= *e.cfg.TargetFitness {
		return ReasonTargetFitness
	}
	if e.cancelled.Load() || ctx.Err() != nil {
		return ReasonCancelled
	}
	return ""
}

func statusForReason(reason string) string {
	if reason == ReasonCancelled {
		return StatusCancelled
	}
	return StatusCompleted
}

// evaluateAll scores every entry in place, splitting the work across
// ThreadCount goroutines. Evaluation is pure, so no locks are needed.
func (e *Engine) evaluateAll(entries []scored) {
	workers := e.cfg.ThreadCount
	if workers > len(entries) {
		workers = len(entries)
	}
	if workers <= 1 {
		for i := range entries {
			entries[i].breakdown = e.evaluator.Evaluate(entries[i].candidate)
		}
		return
	}
	var wg sync.WaitGroup
	chunk := (len(entries) + workers - 1) / workers
	for start := 0; start < len(entries); start += chunk {
		end := start + chunk
		if end > len(entries) {
			end = len(entries)
		}
		wg.Add(1)
		go func(batch []scored) {
			defer wg.Done()
			for i := range batch {
				batch[i].breakdown = e.evaluator.Evaluate(batch[i].candidate)
			}
		}(entries[start:end])
	}
	wg.Wait()
}

func (e *Engine) tournament(population []scored, rng *rand.Rand) scored {
	best := population[rng.Intn(len(population))]
	for i := 1; i < e.cfg.TournamentSize; i++ {
		contender := population[rng.Intn(len(population))]
		if contender.breakdown.TotalFitness > best.breakdown.TotalFitness {
			best = contender
		}
	}
	return best
}

func (e *Engine) report(generation, stagnation int, started time.Time, population []scored) {
	sum := 0.0
	for i := range population {
		sum += population[i].breakdown.TotalFitness
	}
	percent := 0.0
	if e.cfg.MaxGenerations > 0 {
		percent = float64(generation) / float64(e.cfg.MaxGenerations) * 100
	}
	e.reporter.Report(ProgressUpdate{
		Generation:      generation,
		MaxGenerations:  e.cfg.MaxGenerations,
		Percent:         percent,
		BestFitness:     population[0].breakdown.TotalFitness,
		AverageFitness:  sum / float64(len(population)),
		HardViolations:  population[0].breakdown.HardViolations(e.catalog),
		StagnationCount: stagnation,
		Elapsed:         time.Since(started),
		Message:         fmt.Sprintf("generation %d/%d", generation, e.cfg.MaxGenerations),
	})
}

func sortByFitness(population []scored) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].breakdown.TotalFitness > population[j].breakdown.TotalFitness
	})
}
