package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-optimizer/internal/dto"
	"github.com/noah-isme/sma-schedule-optimizer/internal/engine"
	appErrors "github.com/noah-isme/sma-schedule-optimizer/pkg/errors"
)

type snapshotLoader interface {
	Load(ctx context.Context) (*engine.Snapshot, error)
}

type analysisCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ViolationService runs structural analysis over the current domain data and
// caches the outcome keyed by the snapshot fingerprint.
type ViolationService struct {
	snapshots snapshotLoader
	cache     analysisCache
	metrics   *MetricsService
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewViolationService wires the analyzer dependencies.
func NewViolationService(snapshots snapshotLoader, cache analysisCache, metrics *MetricsService, logger *zap.Logger, cacheTTL time.Duration) *ViolationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ViolationService{
		snapshots: snapshots,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// Analyze returns the structural analysis of the current data. Identical
// data reuses the cached result unless the caller forces a refresh.
func (s *ViolationService) Analyze(ctx context.Context, query dto.ViolationQuery) (*dto.AnalysisResponse, error) {
	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load domain data")
	}

	key := analysisCacheKey(snapshot.Fingerprint())
	if !query.Refresh && s.cache != nil {
		var cached dto.AnalysisResponse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			cached.FromCache = true
			return filterAnalysis(&cached, query.Severity), nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("analysis cache lookup failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	result := engine.Analyze(snapshot)
	payload := toAnalysisResponse(result)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
			s.logger.Warn("analysis cache write failed", zap.Error(err))
		}
	}
	return filterAnalysis(payload, query.Severity), nil
}

// CheckBlocking reports the critical violation count of the current data.
// Run starts are refused while it is positive.
func (s *ViolationService) CheckBlocking(ctx context.Context, snapshot *engine.Snapshot) (int, error) {
	if snapshot == nil {
		var err error
		snapshot, err = s.snapshots.Load(ctx)
		if err != nil {
			return 0, fmt.Errorf("load snapshot: %w", err)
		}
	}
	result := engine.Analyze(snapshot)
	return result.CriticalCount, nil
}

// Invalidate drops any cached analysis. Called after a corrective action
// mutates the underlying data.
func (s *ViolationService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "analysis:*"); err != nil {
		s.logger.Warn("analysis cache invalidation failed", zap.Error(err))
	}
}

func analysisCacheKey(fingerprint string) string {
	return "analysis:" + fingerprint
}

func toAnalysisResponse(result *engine.AnalysisResult) *dto.AnalysisResponse {
	violations := make([]dto.ViolationResponse, 0, len(result.Violations))
	for _, v := range result.Violations {
		suggestions := make([]dto.SuggestedActionResponse, 0, len(v.Suggestions))
		for _, a := range v.Suggestions {
			suggestions = append(suggestions, dto.SuggestedActionResponse{
				Type:        a.Type,
				Description: a.Description,
				Parameters:  a.Parameters,
			})
		}
		violations = append(violations, dto.ViolationResponse{
			Type:        v.Type,
			Severity:    string(v.Severity),
			Description: v.Description,
			CourseID:    v.CourseID,
			TeacherID:   v.TeacherID,
			Suggestions: suggestions,
		})
	}
	return &dto.AnalysisResponse{
		Fingerprint:   result.Fingerprint,
		CriticalCount: result.CriticalCount,
		WarningCount:  result.WarningCount,
		InfoCount:     result.InfoCount,
		Blocking:      result.Blocking(),
		Violations:    violations,
		AnalyzedAt:    result.AnalyzedAt,
	}
}

func filterAnalysis(payload *dto.AnalysisResponse, severity string) *dto.AnalysisResponse {
	if severity == "" {
		return payload
	}
	filtered := *payload
	filtered.Violations = nil
	for _, v := range payload.Violations {
		if v.Severity == severity {
			filtered.Violations = append(filtered.Violations, v)
		}
	}
	return &filtered
}
