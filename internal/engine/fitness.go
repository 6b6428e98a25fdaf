package engine

// BaseFitness is the score of a candidate with zero violations.
const BaseFitness = 1000.0

// FitnessBreakdown explains how a candidate's score was reached. Higher
// TotalFitness is better; a candidate with HardScore zero is feasible.
type FitnessBreakdown struct {
	TotalFitness     float64            `json:"total_fitness"`
	HardScore        float64            `json:"hard_score"`
	SoftScore        float64            `json:"soft_score"`
	ViolationCounts  map[string]int     `json:"violation_counts"`
	ConstraintScores map[string]float64 `json:"constraint_scores"`
}

// Feasible reports whether the candidate violates no hard constraint.
func (b FitnessBreakdown) Feasible() bool { return b.HardScore == 0 }

// Evaluator scores candidates against a fixed snapshot and catalog. It holds
// no mutable state, so one evaluator is shared by all worker goroutines.
type Evaluator struct {
	snapshot *Snapshot
	catalog  []ConstraintType
	weights  map[string]float64
}

// NewEvaluator binds a snapshot to the constraint catalog. Weight overrides
// replace the catalog defaults for the ids they name.
func NewEvaluator(s *Snapshot, catalog []ConstraintType, overrides map[string]float64) *Evaluator {
	weights := make(map[string]float64, len(catalog))
	for _, ct := range catalog {
		weights[ct.ID] = ct.DefaultWeight
	}
	for id, w := range overrides {
		if _, known := weights[id]; known {
			weights[id] = w
		}
	}
	return &Evaluator{snapshot: s, catalog: catalog, weights: weights}
}

// Evaluate scores one candidate. The call is pure and safe to run
// concurrently with other Evaluate calls.
func (e *Evaluator) Evaluate(c *Candidate) FitnessBreakdown {
	breakdown := FitnessBreakdown{
		ViolationCounts:  make(map[string]int, len(e.catalog)),
		ConstraintScores: make(map[string]float64, len(e.catalog)),
	}
	for _, ct := range e.catalog {
		count := ct.Evaluate(e.snapshot, c)
		penalty := float64(count) * e.weights[ct.ID]
		breakdown.ViolationCounts[ct.ID] = count
		breakdown.ConstraintScores[ct.ID] = penalty
		if ct.IsHard() {
			breakdown.HardScore += penalty
		} else {
			breakdown.SoftScore += penalty
		}
	}
	breakdown.TotalFitness = BaseFitness - breakdown.HardScore - breakdown.SoftScore
	return breakdown
}

// HardViolations counts violations of hard constraints only.
func (b FitnessBreakdown) HardViolations(catalog []ConstraintType) int {
	total := 0
	for _, ct := range catalog {
		if ct.IsHard() {
			total += b.ViolationCounts[ct.ID]
		}
	}
	return total
}
