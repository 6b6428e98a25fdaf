package engine

import "time"

// ProgressUpdate is emitted at every generation boundary and once more when
// the run terminates.
type ProgressUpdate struct {
	Generation      int           `json:"generation"`
	MaxGenerations  int           `json:"max_generations"`
	Percent         float64       `json:"percent"`
	BestFitness     float64       `json:"best_fitness"`
	AverageFitness  float64       `json:"average_fitness"`
	HardViolations  int           `json:"hard_violations"`
	StagnationCount int           `json:"stagnation_count"`
	Elapsed         time.Duration `json:"elapsed"`
	Message         string        `json:"message,omitempty"`
}

// ProgressReporter receives run progress. Implementations must be fast; the
// engine calls Report from its main loop.
type ProgressReporter interface {
	Report(update ProgressUpdate)
}

// ReporterFunc adapts a function to the ProgressReporter interface.
type ReporterFunc func(update ProgressUpdate)

func (f ReporterFunc) Report(update ProgressUpdate) { f(update) }

type nopReporter struct{}

func (nopReporter) Report(ProgressUpdate) {}

// NopReporter discards all progress updates.
func NopReporter() ProgressReporter { return nopReporter{} }
