package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-schedule-optimizer/internal/dto"
	"github.com/noah-isme/sma-schedule-optimizer/internal/service"
	appErrors "github.com/noah-isme/sma-schedule-optimizer/pkg/errors"
	"github.com/noah-isme/sma-schedule-optimizer/pkg/response"
)

type violationAnalyzer interface {
	Analyze(ctx context.Context, query dto.ViolationQuery) (*dto.AnalysisResponse, error)
}

type actionApplier interface {
	Apply(ctx context.Context, req dto.ApplyActionRequest) (*dto.ApplyActionResponse, error)
}

// ViolationHandler exposes structural analysis and corrective action endpoints.
type ViolationHandler struct {
	violations violationAnalyzer
	actions    actionApplier
}

// NewViolationHandler constructs the handler.
func NewViolationHandler(violations *service.ViolationService, actions *service.ActionService) *ViolationHandler {
	return &ViolationHandler{violations: violations, actions: actions}
}

// Analyze godoc
// @Summary Analyze domain data for structural violations
// @Description Returns blocking and advisory findings with suggested corrective actions. Results are cached per data fingerprint.
// @Tags Violations
// @Produce json
// @Param refresh query bool false "Bypass the cached analysis"
// @Param severity query string false "Filter by severity (INFO, WARNING, CRITICAL)"
// @Success 200 {object} response.Envelope
// @Router /violations [get]
func (h *ViolationHandler) Analyze(c *gin.Context) {
	var query dto.ViolationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid violation query"))
		return
	}
	result, err := h.violations.Analyze(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ApplyAction godoc
// @Summary Apply a suggested corrective action
// @Description Executes one corrective action atomically. Stale actions are reported as skipped, not failed.
// @Tags Violations
// @Accept json
// @Produce json
// @Param payload body dto.ApplyActionRequest true "Action payload"
// @Success 200 {object} response.Envelope
// @Router /violations/actions [post]
func (h *ViolationHandler) ApplyAction(c *gin.Context) {
	var req dto.ApplyActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid action payload"))
		return
	}
	result, err := h.actions.Apply(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
