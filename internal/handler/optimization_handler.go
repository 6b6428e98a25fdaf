package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-schedule-optimizer/internal/dto"
	"github.com/noah-isme/sma-schedule-optimizer/internal/service"
	appErrors "github.com/noah-isme/sma-schedule-optimizer/pkg/errors"
	"github.com/noah-isme/sma-schedule-optimizer/pkg/response"
)

type optimizationRunner interface {
	Start(ctx context.Context, req dto.StartOptimizationRequest) (*dto.StartOptimizationResponse, error)
	Cancel(ctx context.Context, runID string) error
	Progress(ctx context.Context, runID string) (*dto.ProgressResponse, error)
	Result(ctx context.Context, runID string) (*dto.ResultResponse, error)
	ListResults(ctx context.Context, query dto.ResultListQuery) ([]dto.ResultResponse, error)
	DeleteResult(ctx context.Context, runID string) error
	Timetable(ctx context.Context, runID string) ([]dto.ScheduleSlotResponse, error)
	Export(ctx context.Context, runID, format string) ([]byte, string, error)
	Health(ctx context.Context) (*dto.HealthResponse, error)
	ListConfigs(ctx context.Context) ([]dto.OptimizationConfigResponse, error)
	SaveConfig(ctx context.Context, id string, req dto.SaveOptimizationConfigRequest) (*dto.OptimizationConfigResponse, error)
	DeleteConfig(ctx context.Context, id string) error
}

// OptimizationHandler exposes the run lifecycle and config profile endpoints.
type OptimizationHandler struct {
	service optimizationRunner
}

// NewOptimizationHandler constructs the handler.
func NewOptimizationHandler(svc *service.OptimizationService) *OptimizationHandler {
	return &OptimizationHandler{service: svc}
}

// Start godoc
// @Summary Start an optimization run
// @Description Accepts the run and executes it in the background. At most one run is active at a time.
// @Tags Optimization
// @Accept json
// @Produce json
// @Param payload body dto.StartOptimizationRequest true "Start payload"
// @Success 202 {object} response.Envelope
// @Router /optimizations [post]
func (h *OptimizationHandler) Start(c *gin.Context) {
	var req dto.StartOptimizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid start payload"))
		return
	}
	result, err := h.service.Start(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, result)
}

// Cancel godoc
// @Summary Request cancellation of a running optimization
// @Tags Optimization
// @Produce json
// @Param runId path string true "Run ID"
// @Success 202 {object} response.Envelope
// @Router /optimizations/{runId} [delete]
func (h *OptimizationHandler) Cancel(c *gin.Context) {
	runID := c.Param("runId")
	if err := h.service.Cancel(c.Request.Context(), runID); err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, gin.H{"runId": runID})
}

// Progress godoc
// @Summary Get live progress of a run
// @Tags Optimization
// @Produce json
// @Param runId path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /optimizations/{runId}/progress [get]
func (h *OptimizationHandler) Progress(c *gin.Context) {
	progress, err := h.service.Progress(c.Request.Context(), c.Param("runId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// Result godoc
// @Summary Get the outcome of a finished run
// @Tags Optimization
// @Produce json
// @Param runId path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /optimizations/{runId} [get]
func (h *OptimizationHandler) Result(c *gin.Context) {
	result, err := h.service.Result(c.Request.Context(), c.Param("runId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListResults godoc
// @Summary List recent run outcomes
// @Tags Optimization
// @Produce json
// @Param limit query int false "Maximum number of results"
// @Success 200 {object} response.Envelope
// @Router /optimizations/results [get]
func (h *OptimizationHandler) ListResults(c *gin.Context) {
	var query dto.ResultListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid result query"))
		return
	}
	results, err := h.service.ListResults(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// DeleteResult godoc
// @Summary Delete a stored run outcome and its timetable
// @Tags Optimization
// @Param runId path string true "Run ID"
// @Success 204
// @Router /optimizations/results/{runId} [delete]
func (h *OptimizationHandler) DeleteResult(c *gin.Context) {
	if err := h.service.DeleteResult(c.Request.Context(), c.Param("runId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Timetable godoc
// @Summary Get the stored timetable of a finished run
// @Tags Optimization
// @Produce json
// @Param runId path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /optimizations/{runId}/timetable [get]
func (h *OptimizationHandler) Timetable(c *gin.Context) {
	slots, err := h.service.Timetable(c.Request.Context(), c.Param("runId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Export godoc
// @Summary Export the timetable of a run as CSV or PDF
// @Tags Optimization
// @Produce text/csv
// @Produce application/pdf
// @Param runId path string true "Run ID"
// @Param format query string false "Export format (csv or pdf)"
// @Success 200 {file} file
// @Router /optimizations/{runId}/export [get]
func (h *OptimizationHandler) Export(c *gin.Context) {
	runID := c.Param("runId")
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.service.Export(c.Request.Context(), runID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("timetable-%s.%s", runID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

// Health godoc
// @Summary Engine health summary
// @Description Reports the active run, the most recent outcome, and the current critical violation count.
// @Tags Optimization
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /optimizations/health [get]
func (h *OptimizationHandler) Health(c *gin.Context) {
	health, err := h.service.Health(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, health, nil)
}

// ListConfigs godoc
// @Summary List stored optimization profiles
// @Tags Optimization
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /optimizations/configs [get]
func (h *OptimizationHandler) ListConfigs(c *gin.Context) {
	configs, err := h.service.ListConfigs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, configs, nil)
}

// CreateConfig godoc
// @Summary Create an optimization profile
// @Tags Optimization
// @Accept json
// @Produce json
// @Param payload body dto.SaveOptimizationConfigRequest true "Profile payload"
// @Success 201 {object} response.Envelope
// @Router /optimizations/configs [post]
func (h *OptimizationHandler) CreateConfig(c *gin.Context) {
	var req dto.SaveOptimizationConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid config payload"))
		return
	}
	cfg, err := h.service.SaveConfig(c.Request.Context(), "", req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cfg)
}

// UpdateConfig godoc
// @Summary Update an optimization profile
// @Tags Optimization
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param payload body dto.SaveOptimizationConfigRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /optimizations/configs/{id} [put]
func (h *OptimizationHandler) UpdateConfig(c *gin.Context) {
	var req dto.SaveOptimizationConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid config payload"))
		return
	}
	cfg, err := h.service.SaveConfig(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}

// DeleteConfig godoc
// @Summary Delete an optimization profile
// @Description The default profile cannot be deleted.
// @Tags Optimization
// @Param id path string true "Profile ID"
// @Success 204
// @Router /optimizations/configs/{id} [delete]
func (h *OptimizationHandler) DeleteConfig(c *gin.Context) {
	if err := h.service.DeleteConfig(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
