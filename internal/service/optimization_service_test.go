package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-schedule-optimizer/internal/dto"
	"github.com/noah-isme/sma-schedule-optimizer/internal/engine"
	"github.com/noah-isme/sma-schedule-optimizer/internal/models"
	"github.com/noah-isme/sma-schedule-optimizer/pkg/config"
	appErrors "github.com/noah-isme/sma-schedule-optimizer/pkg/errors"
	"github.com/noah-isme/sma-schedule-optimizer/pkg/jobs"
)

type configRepoStub struct {
	mu      sync.Mutex
	configs map[string]models.OptimizationConfigRecord
}

func (s *configRepoStub) ListAll(ctx context.Context) ([]models.OptimizationConfigRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.OptimizationConfigRecord, 0, len(s.configs))
	for _, cfg := range s.configs {
		out = append(out, cfg)
	}
	return out, nil
}

func (s *configRepoStub) FindByID(ctx context.Context, id string) (*models.OptimizationConfigRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg, ok := s.configs[id]; ok {
		return &cfg, nil
	}
	return nil, sql.ErrNoRows
}

func (s *configRepoStub) FindDefault(ctx context.Context) (*models.OptimizationConfigRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cfg := range s.configs {
		if cfg.IsDefault {
			found := cfg
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *configRepoStub) Save(ctx context.Context, cfg *models.OptimizationConfigRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configs == nil {
		s.configs = make(map[string]models.OptimizationConfigRecord)
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.IsDefault {
		for id, existing := range s.configs {
			existing.IsDefault = false
			s.configs[id] = existing
		}
	}
	s.configs[cfg.ID] = *cfg
	return nil
}

func (s *configRepoStub) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configs[id]
	if !ok || cfg.IsDefault {
		return false, nil
	}
	delete(s.configs, id)
	return true, nil
}

type resultRepoStub struct {
	mu      sync.Mutex
	records map[string]models.OptimizationResultRecord
}

func (s *resultRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, result *models.OptimizationResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		s.records = make(map[string]models.OptimizationResultRecord)
	}
	s.records[result.RunID] = *result
	return nil
}

func (s *resultRepoStub) FindByRunID(ctx context.Context, runID string) (*models.OptimizationResultRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[runID]; ok {
		return &record, nil
	}
	return nil, sql.ErrNoRows
}

func (s *resultRepoStub) ListRecent(ctx context.Context, limit int) ([]models.OptimizationResultRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.OptimizationResultRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out, nil
}

func (s *resultRepoStub) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, record := range s.records {
		if record.CompletedAt.Before(cutoff) {
			delete(s.records, id)
			removed++
		}
	}
	return removed, nil
}

func (s *resultRepoStub) DeleteByRunID(ctx context.Context, runID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[runID]; !ok {
		return false, nil
	}
	delete(s.records, runID)
	return true, nil
}

type slotRepoStub struct {
	mu    sync.Mutex
	slots map[string][]models.ScheduleSlot
}

func (s *slotRepoStub) ReplaceForRun(ctx context.Context, exec sqlx.ExtContext, runID string, slots []models.ScheduleSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slots == nil {
		s.slots = make(map[string][]models.ScheduleSlot)
	}
	s.slots[runID] = slots
	return nil
}

func (s *slotRepoStub) ListByRun(ctx context.Context, runID string) ([]models.ScheduleSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[runID], nil
}

func (s *slotRepoStub) DeleteByRun(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, runID)
	return nil
}

type blockingStub struct {
	critical int
	err      error
}

func (s *blockingStub) CheckBlocking(ctx context.Context, snapshot *engine.Snapshot) (int, error) {
	return s.critical, s.err
}

type optimizationFixture struct {
	svc     *OptimizationService
	queue   *jobs.Queue
	results *resultRepoStub
	slots   *slotRepoStub
	mock    sqlmock.Sqlmock
	cleanup func()
}

func newOptimizationFixture(t *testing.T, critical int, optimizer config.OptimizerConfig) *optimizationFixture {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	mock.MatchExpectationsInOrder(false)

	results := &resultRepoStub{}
	slots := &slotRepoStub{}
	svc := NewOptimizationService(
		&snapshotLoaderStub{snapshot: cleanTestSnapshot()},
		&configRepoStub{},
		results,
		slots,
		nil,
		&blockingStub{critical: critical},
		sqlxDB,
		nil,
		nil,
		optimizer,
		config.ExportsConfig{Enabled: true, SchoolName: "SMA 1"},
	)

	queue := jobs.NewQueue("optimizer-test", svc.HandleJob, jobs.QueueConfig{Workers: 1})
	queue.Start(context.Background())
	svc.BindQueue(queue)

	return &optimizationFixture{
		svc:     svc,
		queue:   queue,
		results: results,
		slots:   slots,
		mock:    mock,
		cleanup: func() {
			queue.Stop()
			sqlxDB.Close()
			db.Close()
		},
	}
}

func fastOptimizerConfig() config.OptimizerConfig {
	return config.OptimizerConfig{
		PopulationSize:    20,
		MaxGenerations:    40,
		MutationRate:      0.1,
		CrossoverRate:     0.8,
		EliteSize:         2,
		TournamentSize:    3,
		MaxRuntimeSeconds: 10,
		StagnationLimit:   30,
		ThreadCount:       2,
		LogFrequency:      5,
	}
}

func TestOptimizationServiceStartAndComplete(t *testing.T) {
	fx := newOptimizationFixture(t, 0, fastOptimizerConfig())
	defer fx.cleanup()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	resp, err := fx.svc.Start(context.Background(), dto.StartOptimizationRequest{})
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, resp.Status)
	require.NotEmpty(t, resp.RunID)

	require.Eventually(t, func() bool {
		record, err := fx.results.FindByRunID(context.Background(), resp.RunID)
		return err == nil && record.Status == engine.StatusCompleted
	}, 15*time.Second, 50*time.Millisecond)

	result, err := fx.svc.Result(context.Background(), resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusCompleted, result.Status)
	assert.NotEmpty(t, result.Reason)
	assert.GreaterOrEqual(t, result.BestFitness, result.InitialFitness)

	rows, err := fx.svc.Timetable(context.Background(), resp.RunID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "MATH-10", rows[0].CourseCode)
}

func TestOptimizationServiceRejectsCriticalViolations(t *testing.T) {
	fx := newOptimizationFixture(t, 2, fastOptimizerConfig())
	defer fx.cleanup()

	_, err := fx.svc.Start(context.Background(), dto.StartOptimizationRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrCriticalViolations.Code, appErr.Code)
}

func TestOptimizationServiceForceBypassesGate(t *testing.T) {
	fx := newOptimizationFixture(t, 2, fastOptimizerConfig())
	defer fx.cleanup()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	resp, err := fx.svc.Start(context.Background(), dto.StartOptimizationRequest{Force: true})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := fx.results.FindByRunID(context.Background(), resp.RunID)
		return err == nil
	}, 15*time.Second, 50*time.Millisecond)
}

func TestOptimizationServiceSingleActiveRun(t *testing.T) {
	cfg := fastOptimizerConfig()
	cfg.MaxGenerations = 100000000
	cfg.StagnationLimit = 100000000
	cfg.MaxRuntimeSeconds = 60

	fx := newOptimizationFixture(t, 0, cfg)
	defer fx.cleanup()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	resp, err := fx.svc.Start(context.Background(), dto.StartOptimizationRequest{})
	require.NoError(t, err)

	_, err = fx.svc.Start(context.Background(), dto.StartOptimizationRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRunActive.Code, appErrors.FromError(err).Code)

	require.NoError(t, fx.svc.Cancel(context.Background(), resp.RunID))

	require.Eventually(t, func() bool {
		record, err := fx.results.FindByRunID(context.Background(), resp.RunID)
		return err == nil && record.Status == engine.StatusCancelled
	}, 15*time.Second, 50*time.Millisecond)

	// A finished run frees the slot for the next one.
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	second, err := fx.svc.Start(context.Background(), dto.StartOptimizationRequest{})
	require.NoError(t, err)
	require.NoError(t, fx.svc.Cancel(context.Background(), second.RunID))
}

func TestOptimizationServiceCancelUnknownRun(t *testing.T) {
	fx := newOptimizationFixture(t, 0, fastOptimizerConfig())
	defer fx.cleanup()

	err := fx.svc.Cancel(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestOptimizationServiceResultNotFinished(t *testing.T) {
	cfg := fastOptimizerConfig()
	cfg.MaxGenerations = 100000000
	cfg.StagnationLimit = 100000000
	cfg.MaxRuntimeSeconds = 60

	fx := newOptimizationFixture(t, 0, cfg)
	defer fx.cleanup()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	resp, err := fx.svc.Start(context.Background(), dto.StartOptimizationRequest{})
	require.NoError(t, err)

	_, err = fx.svc.Result(context.Background(), resp.RunID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRunNotFinished.Code, appErrors.FromError(err).Code)

	require.NoError(t, fx.svc.Cancel(context.Background(), resp.RunID))
}

func TestOptimizationServiceDefaultConfigCreatedOnce(t *testing.T) {
	fx := newOptimizationFixture(t, 0, fastOptimizerConfig())
	defer fx.cleanup()

	first, err := fx.svc.GetOrCreateDefaultConfig(context.Background())
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.Equal(t, 20, first.PopulationSize)

	second, err := fx.svc.GetOrCreateDefaultConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestOptimizationServiceSaveConfigRejectsNegativeWeights(t *testing.T) {
	fx := newOptimizationFixture(t, 0, fastOptimizerConfig())
	defer fx.cleanup()

	_, err := fx.svc.SaveConfig(context.Background(), "", dto.SaveOptimizationConfigRequest{
		Name:              "Broken",
		PopulationSize:    50,
		MaxGenerations:    100,
		MutationRate:      0.1,
		CrossoverRate:     0.8,
		EliteSize:         2,
		TournamentSize:    3,
		MaxRuntimeSeconds: 60,
		StagnationLimit:   20,
		ConstraintWeights: map[string]float64{engine.ConstraintRoomCapacity: -5},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErrors.FromError(err).Code)
}

func TestOptimizationServiceExportCSV(t *testing.T) {
	fx := newOptimizationFixture(t, 0, fastOptimizerConfig())
	defer fx.cleanup()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	resp, err := fx.svc.Start(context.Background(), dto.StartOptimizationRequest{})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		record, err := fx.results.FindByRunID(context.Background(), resp.RunID)
		return err == nil && record.Status == engine.StatusCompleted
	}, 15*time.Second, 50*time.Millisecond)

	payload, contentType, err := fx.svc.Export(context.Background(), resp.RunID, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(payload), "MATH-10")
}

func TestOptimizationServicePurgeOldResults(t *testing.T) {
	fx := newOptimizationFixture(t, 0, fastOptimizerConfig())
	defer fx.cleanup()
	fx.svc.cfg.ResultRetentionDays = 30

	old := models.OptimizationResultRecord{RunID: "old-run", Status: engine.StatusCompleted, CompletedAt: time.Now().AddDate(0, 0, -60)}
	fresh := models.OptimizationResultRecord{RunID: "fresh-run", Status: engine.StatusCompleted, CompletedAt: time.Now()}
	require.NoError(t, fx.results.Create(context.Background(), nil, &old))
	require.NoError(t, fx.results.Create(context.Background(), nil, &fresh))

	removed, err := fx.svc.PurgeOldResults(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = fx.results.FindByRunID(context.Background(), "old-run")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}
