package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-schedule-optimizer/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func configRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "description", "algorithm", "population_size", "max_generations", "mutation_rate", "crossover_rate",
		"elite_size", "tournament_size", "max_runtime_seconds", "stagnation_limit", "target_fitness", "thread_count",
		"log_frequency", "constraint_weights", "is_default", "created_at", "updated_at",
	})
}

func TestOptimizationConfigRepositoryFindDefault(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewOptimizationConfigRepository(db)
	rows := configRows().
		AddRow("cfg-1", "Standard", "", "GENETIC_ALGORITHM", 100, 1000, 0.1, 0.8,
			5, 5, 300, 100, nil, 4, 10, nil, true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM optimization_configs WHERE is_default = TRUE").
		WillReturnRows(rows)

	cfg, err := repo.FindDefault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cfg-1", cfg.ID)
	assert.True(t, cfg.IsDefault)
	assert.Equal(t, 100, cfg.PopulationSize)
}

func TestOptimizationConfigRepositorySaveDefaultClearsPrevious(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewOptimizationConfigRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE optimization_configs SET is_default = FALSE").
		WithArgs("cfg-2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO optimization_configs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	cfg := &models.OptimizationConfigRecord{
		ID:                "cfg-2",
		Name:              "Aggressive",
		Algorithm:         "GENETIC_ALGORITHM",
		PopulationSize:    200,
		MaxGenerations:    2000,
		MutationRate:      0.15,
		CrossoverRate:     0.85,
		EliteSize:         10,
		TournamentSize:    7,
		MaxRuntimeSeconds: 600,
		StagnationLimit:   150,
		ThreadCount:       8,
		IsDefault:         true,
	}
	require.NoError(t, repo.Save(context.Background(), cfg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOptimizationConfigRepositoryDeleteRefusesDefault(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewOptimizationConfigRepository(db)
	mock.ExpectExec("DELETE FROM optimization_configs WHERE id = (.+) AND is_default = FALSE").
		WithArgs("cfg-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.Delete(context.Background(), "cfg-1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestOptimizationResultRepositoryListRecent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewOptimizationResultRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "run_id", "status", "reason", "algorithm", "initial_fitness", "final_fitness", "best_fitness",
		"initial_conflicts", "final_conflicts", "critical_conflicts", "generations_executed", "best_generation",
		"runtime_seconds", "breakdown", "started_at", "completed_at",
	}).AddRow("res-1", "run-1", "COMPLETED", "MAX_GENERATIONS", "GENETIC_ALGORITHM", -2000.0, 900.0, 900.0,
		3, 0, 0, 412, 377, 41.5, nil, time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM optimization_results ORDER BY completed_at DESC").
		WillReturnRows(rows)

	results, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "run-1", results[0].RunID)
	assert.Equal(t, 900.0, results[0].BestFitness)
}

func TestOptimizationResultRepositoryDeleteOlderThan(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewOptimizationResultRepository(db)
	cutoff := time.Now().AddDate(0, 0, -30)
	mock.ExpectExec("DELETE FROM optimization_results WHERE completed_at").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	removed, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 4, removed)
}
