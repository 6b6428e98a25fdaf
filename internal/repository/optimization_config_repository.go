package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-schedule-optimizer/internal/models"
)

const optimizationConfigColumns = `id, name, description, algorithm, population_size, max_generations, mutation_rate, crossover_rate,
elite_size, tournament_size, max_runtime_seconds, stagnation_limit, target_fitness, thread_count, log_frequency, constraint_weights,
is_default, created_at, updated_at`

// OptimizationConfigRepository persists named optimization profiles. Exactly
// one profile can carry the default flag at a time.
type OptimizationConfigRepository struct {
	db *sqlx.DB
}

// NewOptimizationConfigRepository constructs the repository.
func NewOptimizationConfigRepository(db *sqlx.DB) *OptimizationConfigRepository {
	return &OptimizationConfigRepository{db: db}
}

// ListAll returns every stored profile, default first.
func (r *OptimizationConfigRepository) ListAll(ctx context.Context) ([]models.OptimizationConfigRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM optimization_configs ORDER BY is_default DESC, name ASC`, optimizationConfigColumns)
	var configs []models.OptimizationConfigRecord
	if err := r.db.SelectContext(ctx, &configs, query); err != nil {
		return nil, fmt.Errorf("list optimization configs: %w", err)
	}
	return configs, nil
}

// FindByID fetches a profile by ID.
func (r *OptimizationConfigRepository) FindByID(ctx context.Context, id string) (*models.OptimizationConfigRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM optimization_configs WHERE id = $1`, optimizationConfigColumns)
	var cfg models.OptimizationConfigRecord
	if err := r.db.GetContext(ctx, &cfg, query, id); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindDefault returns the profile flagged as default, or sql.ErrNoRows when
// none exists yet.
func (r *OptimizationConfigRepository) FindDefault(ctx context.Context) (*models.OptimizationConfigRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM optimization_configs WHERE is_default = TRUE LIMIT 1`, optimizationConfigColumns)
	var cfg models.OptimizationConfigRecord
	if err := r.db.GetContext(ctx, &cfg, query); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save inserts or updates a profile inside a transaction. When the profile
// claims the default flag, the previous default loses it in the same
// transaction so the invariant holds.
func (r *OptimizationConfigRepository) Save(ctx context.Context, cfg *models.OptimizationConfigRecord) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save config tx: %w", err)
	}
	if cfg.IsDefault {
		if _, err := tx.ExecContext(ctx, `UPDATE optimization_configs SET is_default = FALSE, updated_at = $2 WHERE is_default = TRUE AND id <> $1`, cfg.ID, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("clear previous default config: %w", err)
		}
	}
	const query = `INSERT INTO optimization_configs (id, name, description, algorithm, population_size, max_generations, mutation_rate, crossover_rate,
elite_size, tournament_size, max_runtime_seconds, stagnation_limit, target_fitness, thread_count, log_frequency, constraint_weights, is_default, created_at, updated_at)
VALUES (:id, :name, :description, :algorithm, :population_size, :max_generations, :mutation_rate, :crossover_rate,
:elite_size, :tournament_size, :max_runtime_seconds, :stagnation_limit, :target_fitness, :thread_count, :log_frequency, :constraint_weights, :is_default, :created_at, :updated_at)
ON CONFLICT (id)
DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, algorithm = EXCLUDED.algorithm,
              population_size = EXCLUDED.population_size, max_generations = EXCLUDED.max_generations,
              mutation_rate = EXCLUDED.mutation_rate, crossover_rate = EXCLUDED.crossover_rate,
              elite_size = EXCLUDED.elite_size, tournament_size = EXCLUDED.tournament_size,
              max_runtime_seconds = EXCLUDED.max_runtime_seconds, stagnation_limit = EXCLUDED.stagnation_limit,
              target_fitness = EXCLUDED.target_fitness, thread_count = EXCLUDED.thread_count,
              log_frequency = EXCLUDED.log_frequency, constraint_weights = EXCLUDED.constraint_weights, is_default = EXCLUDED.is_default,
              updated_at = EXCLUDED.updated_at`
	if _, err := tx.NamedExecContext(ctx, query, cfg); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("save optimization config: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save config tx: %w", err)
	}
	return nil
}

// Delete removes a profile. The default profile cannot be deleted; it
// reports whether a row was removed.
func (r *OptimizationConfigRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM optimization_configs WHERE id = $1 AND is_default = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("delete optimization config: %w", err)
	}
	return rowChanged(res)
}

// IsDefault reports whether the given profile currently holds the default
// flag.
func (r *OptimizationConfigRepository) IsDefault(ctx context.Context, id string) (bool, error) {
	var isDefault bool
	if err := r.db.GetContext(ctx, &isDefault, `SELECT is_default FROM optimization_configs WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check default config: %w", err)
	}
	return isDefault, nil
}
