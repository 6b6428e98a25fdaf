package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-schedule-optimizer/internal/models"
)

const optimizationResultColumns = `id, run_id, status, reason, algorithm, initial_fitness, final_fitness, best_fitness,
initial_conflicts, final_conflicts, critical_conflicts, generations_executed, best_generation, runtime_seconds,
breakdown, started_at, completed_at`

// OptimizationResultRepository persists terminal run outcomes.
type OptimizationResultRepository struct {
	db *sqlx.DB
}

// NewOptimizationResultRepository constructs the repository.
func NewOptimizationResultRepository(db *sqlx.DB) *OptimizationResultRepository {
	return &OptimizationResultRepository{db: db}
}

// Create writes a run outcome within the given executor.
func (r *OptimizationResultRepository) Create(ctx context.Context, exec sqlx.ExtContext, result *models.OptimizationResultRecord) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now().UTC()
	}
	const query = `INSERT INTO optimization_results (id, run_id, status, reason, algorithm, initial_fitness, final_fitness, best_fitness,
initial_conflicts, final_conflicts, critical_conflicts, generations_executed, best_generation, runtime_seconds, breakdown, started_at, completed_at)
VALUES (:id, :run_id, :status, :reason, :algorithm, :initial_fitness, :final_fitness, :best_fitness,
:initial_conflicts, :final_conflicts, :critical_conflicts, :generations_executed, :best_generation, :runtime_seconds, :breakdown, :started_at, :completed_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, result); err != nil {
		return fmt.Errorf("create optimization result: %w", err)
	}
	return nil
}

// FindByRunID fetches the outcome of one run.
func (r *OptimizationResultRepository) FindByRunID(ctx context.Context, runID string) (*models.OptimizationResultRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM optimization_results WHERE run_id = $1`, optimizationResultColumns)
	var result models.OptimizationResultRecord
	if err := r.db.GetContext(ctx, &result, query, runID); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListRecent returns the most recently completed runs, newest first.
func (r *OptimizationResultRepository) ListRecent(ctx context.Context, limit int) ([]models.OptimizationResultRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM optimization_results ORDER BY completed_at DESC LIMIT %d`, optimizationResultColumns, limit)
	var results []models.OptimizationResultRecord
	if err := r.db.SelectContext(ctx, &results, query); err != nil {
		return nil, fmt.Errorf("list recent optimization results: %w", err)
	}
	return results, nil
}

// DeleteOlderThan purges results completed before the cutoff, returning the
// number of rows removed.
func (r *OptimizationResultRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM optimization_results WHERE completed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge optimization results: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// DeleteByRunID removes the stored outcome of one run.
func (r *OptimizationResultRepository) DeleteByRunID(ctx context.Context, runID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM optimization_results WHERE run_id = $1`, runID)
	if err != nil {
		return false, fmt.Errorf("delete optimization result: %w", err)
	}
	return rowChanged(res)
}
