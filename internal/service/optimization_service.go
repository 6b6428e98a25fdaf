package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-optimizer/internal/dto"
	"github.com/noah-isme/sma-schedule-optimizer/internal/engine"
	"github.com/noah-isme/sma-schedule-optimizer/internal/models"
	"github.com/noah-isme/sma-schedule-optimizer/pkg/config"
	appErrors "github.com/noah-isme/sma-schedule-optimizer/pkg/errors"
	"github.com/noah-isme/sma-schedule-optimizer/pkg/export"
	"github.com/noah-isme/sma-schedule-optimizer/pkg/jobs"
)

// StatusRunning marks a run that has been accepted but not yet finished.
const StatusRunning = "RUNNING"

type configRepository interface {
	ListAll(ctx context.Context) ([]models.OptimizationConfigRecord, error)
	FindByID(ctx context.Context, id string) (*models.OptimizationConfigRecord, error)
	FindDefault(ctx context.Context) (*models.OptimizationConfigRecord, error)
	Save(ctx context.Context, cfg *models.OptimizationConfigRecord) error
	Delete(ctx context.Context, id string) (bool, error)
}

type resultRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, result *models.OptimizationResultRecord) error
	FindByRunID(ctx context.Context, runID string) (*models.OptimizationResultRecord, error)
	ListRecent(ctx context.Context, limit int) ([]models.OptimizationResultRecord, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteByRunID(ctx context.Context, runID string) (bool, error)
}

type slotRepository interface {
	ReplaceForRun(ctx context.Context, exec sqlx.ExtContext, runID string, slots []models.ScheduleSlot) error
	ListByRun(ctx context.Context, runID string) ([]models.ScheduleSlot, error)
	DeleteByRun(ctx context.Context, runID string) error
}

type progressCache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
}

type blockingChecker interface {
	CheckBlocking(ctx context.Context, snapshot *engine.Snapshot) (int, error)
}

type activeRun struct {
	id        string
	engine    *engine.Engine
	snapshot  *engine.Snapshot
	algorithm string
	startedAt time.Time

	mu       sync.Mutex
	status   string
	progress engine.ProgressUpdate
	result   *engine.Result
}

// OptimizationService orchestrates run lifecycle: start, progress, cancel,
// result retrieval, persistence and export. At most one run is active.
type OptimizationService struct {
	snapshots  snapshotLoader
	configs    configRepository
	results    resultRepository
	slots      slotRepository
	cache      progressCache
	violations blockingChecker
	tx         txProvider
	queue      *jobs.Queue
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        config.OptimizerConfig
	exports    config.ExportsConfig
	csv        *export.CSVExporter
	pdf        *export.PDFExporter

	mu      sync.Mutex
	current *activeRun
	history map[string]*activeRun
}

// NewOptimizationService wires the run orchestrator. Call BindQueue before
// starting runs.
func NewOptimizationService(
	snapshots snapshotLoader,
	configs configRepository,
	results resultRepository,
	slots slotRepository,
	cache progressCache,
	violations blockingChecker,
	tx txProvider,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg config.OptimizerConfig,
	exports config.ExportsConfig,
) *OptimizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OptimizationService{
		snapshots:  snapshots,
		configs:    configs,
		results:    results,
		slots:      slots,
		cache:      cache,
		violations: violations,
		tx:         tx,
		metrics:    metrics,
		validator:  validator.New(),
		logger:     logger,
		cfg:        cfg,
		exports:    exports,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		history:    make(map[string]*activeRun),
	}
}

// BindQueue attaches the background queue that executes runs.
func (s *OptimizationService) BindQueue(queue *jobs.Queue) {
	s.queue = queue
}

// HandleJob is the queue handler executing one optimization run.
func (s *OptimizationService) HandleJob(ctx context.Context, job jobs.Job) error {
	run, ok := job.Payload.(*activeRun)
	if !ok {
		return fmt.Errorf("unexpected job payload for %s", job.ID)
	}
	s.execute(ctx, run)
	return nil
}

// Start validates preconditions and launches a run in the background. The
// returned run ID is used for all follow-up calls.
func (s *OptimizationService) Start(ctx context.Context, req dto.StartOptimizationRequest) (*dto.StartOptimizationResponse, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "run queue not started")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start payload")
	}

	s.mu.Lock()
	if s.current != nil && s.current.Status() == StatusRunning {
		s.mu.Unlock()
		return nil, appErrors.ErrRunActive
	}
	s.mu.Unlock()

	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load domain data")
	}

	if !req.Force {
		critical, err := s.violations.CheckBlocking(ctx, snapshot)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to analyze domain data")
		}
		if critical > 0 {
			return nil, appErrors.Clone(appErrors.ErrCriticalViolations,
				fmt.Sprintf("%d critical structural violations block optimization", critical))
		}
	}

	engineCfg, algorithm, err := s.resolveConfig(ctx, req)
	if err != nil {
		return nil, err
	}

	reporterTarget := &activeRun{
		id:        uuid.NewString(),
		snapshot:  snapshot,
		algorithm: algorithm,
		startedAt: time.Now().UTC(),
		status:    StatusRunning,
	}

	eng, err := engine.NewEngine(engineCfg, snapshot, engine.ReporterFunc(func(u engine.ProgressUpdate) {
		s.recordProgress(reporterTarget, u)
	}), s.logger)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	reporterTarget.engine = eng

	s.mu.Lock()
	if s.current != nil && s.current.Status() == StatusRunning {
		s.mu.Unlock()
		return nil, appErrors.ErrRunActive
	}
	s.current = reporterTarget
	s.history[reporterTarget.id] = reporterTarget
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{
		ID:      reporterTarget.id,
		Type:    "optimization_run",
		Payload: reporterTarget,
	}); err != nil {
		s.mu.Lock()
		reporterTarget.setStatus(engine.StatusFailed)
		s.current = nil
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue run")
	}

	s.logger.Info("optimization run accepted",
		zap.String("run_id", reporterTarget.id),
		zap.String("algorithm", algorithm))

	return &dto.StartOptimizationResponse{
		RunID:     reporterTarget.id,
		Status:    StatusRunning,
		StartedAt: reporterTarget.startedAt,
	}, nil
}

// Cancel requests a cooperative stop of the given run.
func (s *OptimizationService) Cancel(ctx context.Context, runID string) error {
	s.mu.Lock()
	run, ok := s.history[runID]
	s.mu.Unlock()
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "run not found")
	}
	if run.Status() != StatusRunning {
		return appErrors.Clone(appErrors.ErrConflict, "run already finished")
	}
	run.engine.Cancel()
	s.logger.Info("optimization run cancellation requested", zap.String("run_id", runID))
	return nil
}

// Progress returns the latest progress of a run. Finished runs answer from
// their persisted outcome.
func (s *OptimizationService) Progress(ctx context.Context, runID string) (*dto.ProgressResponse, error) {
	s.mu.Lock()
	run, ok := s.history[runID]
	s.mu.Unlock()
	if ok {
		return run.progressResponse(), nil
	}

	// Unknown in memory, e.g. after a restart. Try the progress mirror,
	// then the persisted result.
	if s.cache != nil {
		var cached dto.ProgressResponse
		if err := s.cache.Get(ctx, progressKey(runID), &cached); err == nil {
			return &cached, nil
		}
	}

	record, err := s.results.FindByRunID(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "run not found")
		}
		return nil, fmt.Errorf("load result: %w", err)
	}
	return &dto.ProgressResponse{
		RunID:          runID,
		Status:         record.Status,
		Generation:     record.GenerationsExecuted,
		Percent:        100,
		BestFitness:    record.BestFitness,
		HardViolations: record.FinalConflicts,
		ElapsedSeconds: record.RuntimeSeconds,
	}, nil
}

// Result returns the terminal outcome of a run.
func (s *OptimizationService) Result(ctx context.Context, runID string) (*dto.ResultResponse, error) {
	s.mu.Lock()
	run, ok := s.history[runID]
	s.mu.Unlock()
	if ok && run.Status() == StatusRunning {
		return nil, appErrors.ErrRunNotFinished
	}

	record, err := s.results.FindByRunID(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "run result not found")
		}
		return nil, fmt.Errorf("load result: %w", err)
	}
	return resultResponse(record), nil
}

// ListResults returns recent terminal runs, newest first.
func (s *OptimizationService) ListResults(ctx context.Context, query dto.ResultListQuery) ([]dto.ResultResponse, error) {
	records, err := s.results.ListRecent(ctx, query.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ResultResponse, 0, len(records))
	for i := range records {
		out = append(out, *resultResponse(&records[i]))
	}
	return out, nil
}

// DeleteResult removes a stored run outcome and its timetable.
func (s *OptimizationService) DeleteResult(ctx context.Context, runID string) error {
	removed, err := s.results.DeleteByRunID(ctx, runID)
	if err != nil {
		return err
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "run result not found")
	}
	if err := s.slots.DeleteByRun(ctx, runID); err != nil {
		return err
	}
	return nil
}

// PurgeOldResults drops results past the retention window. A retention of
// zero disables purging.
func (s *OptimizationService) PurgeOldResults(ctx context.Context) (int64, error) {
	if s.cfg.ResultRetentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.ResultRetentionDays)
	removed, err := s.results.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("purged old optimization results", zap.Int64("removed", removed))
	}
	return removed, nil
}

// Health reports engine availability: the active run if any, the most
// recent outcome, and the current critical violation count.
func (s *OptimizationService) Health(ctx context.Context) (*dto.HealthResponse, error) {
	out := &dto.HealthResponse{Healthy: true}

	s.mu.Lock()
	if s.current != nil && s.current.Status() == StatusRunning {
		out.ActiveRunID = s.current.id
		out.ActiveRunStatus = StatusRunning
	}
	s.mu.Unlock()

	records, err := s.results.ListRecent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		out.LastResult = resultResponse(&records[0])
	}

	critical, err := s.violations.CheckBlocking(ctx, nil)
	if err != nil {
		return nil, err
	}
	out.CriticalViolations = critical
	out.Healthy = critical == 0

	return out, nil
}

// Timetable returns the persisted schedule of a finished run, enriched with
// display names resolved from the current domain data.
func (s *OptimizationService) Timetable(ctx context.Context, runID string) ([]dto.ScheduleSlotResponse, error) {
	slots, err := s.slots.ListByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable stored for run")
	}
	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load domain data: %w", err)
	}
	return enrichSlots(slots, snapshot), nil
}

// Export renders the timetable of a run as CSV or PDF.
func (s *OptimizationService) Export(ctx context.Context, runID, format string) ([]byte, string, error) {
	if !s.exports.Enabled {
		return nil, "", appErrors.Clone(appErrors.ErrPreconditionFailed, "exports are disabled")
	}
	rows, err := s.Timetable(ctx, runID)
	if err != nil {
		return nil, "", err
	}

	tt := export.Timetable{SchoolName: s.exports.SchoolName, RunID: runID}
	for _, row := range rows {
		tt.Rows = append(tt.Rows, export.TimetableRow{
			CourseCode: row.CourseCode,
			Section:    row.SectionIndex + 1,
			Teacher:    row.TeacherName,
			Room:       row.RoomNumber,
			Day:        row.DayOfWeek,
			Period:     row.PeriodIndex,
			Enrolled:   row.Enrolled,
		})
	}

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(tt)
		return payload, "text/csv", err
	case "pdf":
		payload, err := s.pdf.Render(tt)
		return payload, "application/pdf", err
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// execute runs the engine to completion and persists the outcome.
func (s *OptimizationService) execute(ctx context.Context, run *activeRun) {
	result := run.engine.Run(ctx)

	run.mu.Lock()
	run.result = result
	run.status = result.Status
	run.mu.Unlock()

	s.metrics.ObserveRunFinished(result.Status, result.GenerationsExecuted, result.BestBreakdown.TotalFitness, result.Runtime)

	if err := s.persist(ctx, run, result); err != nil {
		s.logger.Error("failed to persist optimization outcome",
			zap.String("run_id", run.id),
			zap.Error(err))
	}

	s.logger.Info("optimization run finished",
		zap.String("run_id", run.id),
		zap.String("status", result.Status),
		zap.String("reason", result.Reason),
		zap.Float64("best_fitness", result.BestBreakdown.TotalFitness),
		zap.Int("generations", result.GenerationsExecuted))
}

func (s *OptimizationService) persist(ctx context.Context, run *activeRun, result *engine.Result) error {
	breakdown, err := json.Marshal(result.BestBreakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	catalog := engine.DefaultCatalog()

	record := &models.OptimizationResultRecord{
		RunID:               run.id,
		Status:              result.Status,
		Reason:              result.Reason,
		Algorithm:           run.algorithm,
		InitialFitness:      result.InitialBreakdown.TotalFitness,
		FinalFitness:        result.BestBreakdown.TotalFitness,
		BestFitness:         result.BestBreakdown.TotalFitness,
		InitialConflicts:    result.InitialBreakdown.HardViolations(catalog),
		FinalConflicts:      result.BestBreakdown.HardViolations(catalog),
		CriticalConflicts:   engine.Analyze(run.snapshot).CriticalCount,
		GenerationsExecuted: result.GenerationsExecuted,
		BestGeneration:      result.BestGeneration,
		RuntimeSeconds:      result.Runtime.Seconds(),
		Breakdown:           types.JSONText(breakdown),
		StartedAt:           run.startedAt,
		CompletedAt:         time.Now().UTC(),
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin persist tx: %w", err)
	}
	if err := s.results.Create(ctx, tx, record); err != nil {
		_ = tx.Rollback()
		return err
	}
	if result.Best != nil {
		if err := s.slots.ReplaceForRun(ctx, tx, run.id, toScheduleSlots(run.id, result.Best)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit persist tx: %w", err)
	}
	return nil
}

func (s *OptimizationService) recordProgress(run *activeRun, u engine.ProgressUpdate) {
	run.mu.Lock()
	run.progress = u
	run.mu.Unlock()

	if s.cache == nil {
		return
	}
	payload := run.progressResponse()
	ttl := s.cfg.ProgressTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	if err := s.cache.Set(context.Background(), progressKey(run.id), payload, ttl); err != nil {
		s.logger.Debug("progress mirror write failed", zap.Error(err))
	}
}

// resolveConfig builds the engine config from the stored profile plus the
// request overrides.
func (s *OptimizationService) resolveConfig(ctx context.Context, req dto.StartOptimizationRequest) (engine.Config, string, error) {
	var record *models.OptimizationConfigRecord
	var err error
	if req.ConfigID != "" {
		record, err = s.configs.FindByID(ctx, req.ConfigID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return engine.Config{}, "", appErrors.Clone(appErrors.ErrNotFound, "optimization config not found")
			}
			return engine.Config{}, "", fmt.Errorf("load config: %w", err)
		}
	} else {
		record, err = s.GetOrCreateDefaultConfig(ctx)
		if err != nil {
			return engine.Config{}, "", err
		}
	}

	cfg := engineConfigFromRecord(record)
	applyOverrides(&cfg, req.Overrides)

	if err := cfg.Validate(); err != nil {
		return engine.Config{}, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return cfg, record.Algorithm, nil
}

// GetOrCreateDefaultConfig returns the default profile, creating one from
// server configuration on first use.
func (s *OptimizationService) GetOrCreateDefaultConfig(ctx context.Context) (*models.OptimizationConfigRecord, error) {
	record, err := s.configs.FindDefault(ctx)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load default config: %w", err)
	}

	created := &models.OptimizationConfigRecord{
		Name:              "Standard",
		Description:       "server default profile",
		Algorithm:         engine.AlgorithmGenetic,
		PopulationSize:    s.cfg.PopulationSize,
		MaxGenerations:    s.cfg.MaxGenerations,
		MutationRate:      s.cfg.MutationRate,
		CrossoverRate:     s.cfg.CrossoverRate,
		EliteSize:         s.cfg.EliteSize,
		TournamentSize:    s.cfg.TournamentSize,
		MaxRuntimeSeconds: s.cfg.MaxRuntimeSeconds,
		StagnationLimit:   s.cfg.StagnationLimit,
		ThreadCount:       s.cfg.ThreadCount,
		LogFrequency:      s.cfg.LogFrequency,
		IsDefault:         true,
	}
	if err := s.configs.Save(ctx, created); err != nil {
		return nil, fmt.Errorf("create default config: %w", err)
	}
	return created, nil
}

// ListConfigs returns every stored profile.
func (s *OptimizationService) ListConfigs(ctx context.Context) ([]dto.OptimizationConfigResponse, error) {
	if _, err := s.GetOrCreateDefaultConfig(ctx); err != nil {
		return nil, err
	}
	records, err := s.configs.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OptimizationConfigResponse, 0, len(records))
	for i := range records {
		out = append(out, *configResponse(&records[i]))
	}
	return out, nil
}

// SaveConfig creates or replaces a stored profile.
func (s *OptimizationService) SaveConfig(ctx context.Context, id string, req dto.SaveOptimizationConfigRequest) (*dto.OptimizationConfigResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid config payload")
	}
	for constraintID, weight := range req.ConstraintWeights {
		if weight < 0 {
			return nil, appErrors.Clone(appErrors.ErrInvalidWeights,
				fmt.Sprintf("constraint weight for %s must not be negative", constraintID))
		}
	}

	record := &models.OptimizationConfigRecord{
		ID:                id,
		Name:              req.Name,
		Algorithm:         engine.AlgorithmGenetic,
		PopulationSize:    req.PopulationSize,
		MaxGenerations:    req.MaxGenerations,
		MutationRate:      req.MutationRate,
		CrossoverRate:     req.CrossoverRate,
		EliteSize:         req.EliteSize,
		TournamentSize:    req.TournamentSize,
		MaxRuntimeSeconds: req.MaxRuntimeSeconds,
		StagnationLimit:   req.StagnationLimit,
		ThreadCount:       req.ThreadCount,
		LogFrequency:      req.LogFrequency,
		TargetFitness:     req.TargetFitness,
		IsDefault:         req.IsDefault,
	}
	if len(req.ConstraintWeights) > 0 {
		payload, err := json.Marshal(req.ConstraintWeights)
		if err != nil {
			return nil, fmt.Errorf("marshal constraint weights: %w", err)
		}
		record.ConstraintWeights = types.JSONText(payload)
	}

	cfg := engineConfigFromRecord(record)
	if err := cfg.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	if err := s.configs.Save(ctx, record); err != nil {
		return nil, err
	}
	return configResponse(record), nil
}

// DeleteConfig removes a stored profile. The default profile is protected.
func (s *OptimizationService) DeleteConfig(ctx context.Context, id string) error {
	removed, err := s.configs.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		record, findErr := s.configs.FindByID(ctx, id)
		if findErr == nil && record.IsDefault {
			return appErrors.Clone(appErrors.ErrConflict, "the default config cannot be deleted")
		}
		return appErrors.Clone(appErrors.ErrNotFound, "optimization config not found")
	}
	return nil
}

func (r *activeRun) Status() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *activeRun) setStatus(status string) {
	r.mu.Lock()
	r.status = status
	r.mu.Unlock()
}

func (r *activeRun) progressResponse() *dto.ProgressResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &dto.ProgressResponse{
		RunID:           r.id,
		Status:          r.status,
		Generation:      r.progress.Generation,
		MaxGenerations:  r.progress.MaxGenerations,
		Percent:         r.progress.Percent,
		BestFitness:     r.progress.BestFitness,
		AverageFitness:  r.progress.AverageFitness,
		HardViolations:  r.progress.HardViolations,
		StagnationCount: r.progress.StagnationCount,
		ElapsedSeconds:  r.progress.Elapsed.Seconds(),
		Message:         r.progress.Message,
	}
}

func progressKey(runID string) string {
	return "progress:" + runID
}

func engineConfigFromRecord(record *models.OptimizationConfigRecord) engine.Config {
	cfg := engine.Config{
		Algorithm:       record.Algorithm,
		PopulationSize:  record.PopulationSize,
		MaxGenerations:  record.MaxGenerations,
		MutationRate:    record.MutationRate,
		CrossoverRate:   record.CrossoverRate,
		EliteSize:       record.EliteSize,
		TournamentSize:  record.TournamentSize,
		MaxRuntime:      time.Duration(record.MaxRuntimeSeconds) * time.Second,
		StagnationLimit: record.StagnationLimit,
		ThreadCount:     record.ThreadCount,
		LogFrequency:    record.LogFrequency,
		TargetFitness:   record.TargetFitness,
	}
	if len(record.ConstraintWeights) > 0 {
		weights := make(map[string]float64)
		if err := json.Unmarshal(record.ConstraintWeights, &weights); err == nil {
			cfg.ConstraintWeights = weights
		}
	}
	return cfg
}

func applyOverrides(cfg *engine.Config, o *dto.ConfigOverrides) {
	if o == nil {
		return
	}
	if o.PopulationSize != nil {
		cfg.PopulationSize = *o.PopulationSize
	}
	if o.MaxGenerations != nil {
		cfg.MaxGenerations = *o.MaxGenerations
	}
	if o.MutationRate != nil {
		cfg.MutationRate = *o.MutationRate
	}
	if o.CrossoverRate != nil {
		cfg.CrossoverRate = *o.CrossoverRate
	}
	if o.EliteSize != nil {
		cfg.EliteSize = *o.EliteSize
	}
	if o.TournamentSize != nil {
		cfg.TournamentSize = *o.TournamentSize
	}
	if o.MaxRuntimeSeconds != nil {
		cfg.MaxRuntime = time.Duration(*o.MaxRuntimeSeconds) * time.Second
	}
	if o.StagnationLimit != nil {
		cfg.StagnationLimit = *o.StagnationLimit
	}
	if o.ThreadCount != nil {
		cfg.ThreadCount = *o.ThreadCount
	}
	if o.TargetFitness != nil {
		cfg.TargetFitness = o.TargetFitness
	}
	if len(o.ConstraintWeights) > 0 {
		if cfg.ConstraintWeights == nil {
			cfg.ConstraintWeights = make(map[string]float64)
		}
		for id, w := range o.ConstraintWeights {
			cfg.ConstraintWeights[id] = w
		}
	}
}

func toScheduleSlots(runID string, best *engine.Candidate) []models.ScheduleSlot {
	slots := make([]models.ScheduleSlot, 0, len(best.Slots))
	for _, a := range best.Slots {
		slot := models.ScheduleSlot{
			RunID:         runID,
			CourseID:      a.CourseID,
			SectionIndex:  a.SectionIndex,
			TimeSlotID:    a.TimeSlotID,
			EnrolledCount: a.Enrolled,
		}
		if a.TeacherID != "" {
			teacherID := a.TeacherID
			slot.TeacherID = &teacherID
		}
		if a.RoomID != "" {
			roomID := a.RoomID
			slot.RoomID = &roomID
		}
		slots = append(slots, slot)
	}
	return slots
}

func enrichSlots(slots []models.ScheduleSlot, snapshot *engine.Snapshot) []dto.ScheduleSlotResponse {
	out := make([]dto.ScheduleSlotResponse, 0, len(slots))
	for i := range slots {
		slot := &slots[i]
		row := dto.ScheduleSlotResponse{
			CourseID:     slot.CourseID,
			SectionIndex: slot.SectionIndex,
			TeacherID:    slot.TeacherID,
			RoomID:       slot.RoomID,
			TimeSlotID:   slot.TimeSlotID,
			Enrolled:     slot.EnrolledCount,
		}
		if course := snapshot.Course(slot.CourseID); course != nil {
			row.CourseCode = course.Code
		}
		if slot.TeacherID != nil {
			if teacher := snapshot.Teacher(*slot.TeacherID); teacher != nil {
				row.TeacherName = teacher.FullName
			}
		}
		if slot.RoomID != nil {
			if room := snapshot.Room(*slot.RoomID); room != nil {
				row.RoomNumber = room.RoomNumber
			}
		}
		if ts := snapshot.TimeSlot(slot.TimeSlotID); ts != nil {
			row.DayOfWeek = ts.DayOfWeek
			row.PeriodIndex = ts.PeriodIndex
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		if out[i].PeriodIndex != out[j].PeriodIndex {
			return out[i].PeriodIndex < out[j].PeriodIndex
		}
		return out[i].CourseCode < out[j].CourseCode
	})
	return out
}

func resultResponse(record *models.OptimizationResultRecord) *dto.ResultResponse {
	resp := &dto.ResultResponse{
		RunID:               record.RunID,
		Status:              record.Status,
		Reason:              record.Reason,
		Algorithm:           record.Algorithm,
		InitialFitness:      record.InitialFitness,
		BestFitness:         record.BestFitness,
		InitialConflicts:    record.InitialConflicts,
		FinalConflicts:      record.FinalConflicts,
		GenerationsExecuted: record.GenerationsExecuted,
		BestGeneration:      record.BestGeneration,
		RuntimeSeconds:      record.RuntimeSeconds,
		StartedAt:           record.StartedAt,
	}
	if !record.CompletedAt.IsZero() {
		completed := record.CompletedAt
		resp.CompletedAt = &completed
	}
	if len(record.Breakdown) > 0 {
		var breakdown engine.FitnessBreakdown
		if err := json.Unmarshal(record.Breakdown, &breakdown); err == nil {
			resp.ConstraintScores = breakdown.ConstraintScores
			resp.ViolationCounts = breakdown.ViolationCounts
		}
	}
	return resp
}

func configResponse(record *models.OptimizationConfigRecord) *dto.OptimizationConfigResponse {
	resp := &dto.OptimizationConfigResponse{
		ID:                record.ID,
		Name:              record.Name,
		PopulationSize:    record.PopulationSize,
		MaxGenerations:    record.MaxGenerations,
		MutationRate:      record.MutationRate,
		CrossoverRate:     record.CrossoverRate,
		EliteSize:         record.EliteSize,
		TournamentSize:    record.TournamentSize,
		MaxRuntimeSeconds: record.MaxRuntimeSeconds,
		StagnationLimit:   record.StagnationLimit,
		ThreadCount:       record.ThreadCount,
		LogFrequency:      record.LogFrequency,
		TargetFitness:     record.TargetFitness,
		IsDefault:         record.IsDefault,
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
	if len(record.ConstraintWeights) > 0 {
		weights := make(map[string]float64)
		if err := json.Unmarshal(record.ConstraintWeights, &weights); err == nil {
			resp.ConstraintWeights = weights
		}
	}
	return resp
}
