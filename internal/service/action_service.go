package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-optimizer/internal/dto"
	"github.com/noah-isme/sma-schedule-optimizer/internal/engine"
	appErrors "github.com/noah-isme/sma-schedule-optimizer/pkg/errors"
)

type courseMutator interface {
	AssignTeacher(ctx context.Context, exec sqlx.ExtContext, courseID, teacherID string) (bool, error)
	AssignRoom(ctx context.Context, exec sqlx.ExtContext, courseID, roomID string) (bool, error)
	ClearTeacher(ctx context.Context, exec sqlx.ExtContext, courseID, teacherID string) (bool, error)
}

type teacherLookup interface {
	ExistsActive(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error)
}

type roomMutator interface {
	EnableSharing(ctx context.Context, exec sqlx.ExtContext, roomID string) (bool, error)
	ExistsActive(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type analysisInvalidator interface {
	Invalidate(ctx context.Context)
}

// ActionService applies suggested corrective actions. Each apply touches
// exactly one relationship and runs in its own transaction.
type ActionService struct {
	courses    courseMutator
	teachers   teacherLookup
	rooms      roomMutator
	tx         txProvider
	violations analysisInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewActionService wires the action executor.
func NewActionService(courses courseMutator, teachers teacherLookup, rooms roomMutator, tx txProvider, violations analysisInvalidator, logger *zap.Logger) *ActionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActionService{
		courses:    courses,
		teachers:   teachers,
		rooms:      rooms,
		tx:         tx,
		violations: violations,
		validator:  validator.New(),
		logger:     logger,
	}
}

// Apply executes one suggested action. It reports false without error when
// the referenced entity no longer exists, so a stale suggestion is a no-op
// rather than a failure.
func (s *ActionService) Apply(ctx context.Context, req dto.ApplyActionRequest) (*dto.ApplyActionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid action payload")
	}
	actionType := strings.ToUpper(strings.TrimSpace(req.Type))

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}

	applied, err := s.applyInTx(ctx, tx, actionType, req.Parameters)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit action")
	}

	if applied && s.violations != nil {
		s.violations.Invalidate(ctx)
	}

	resp := &dto.ApplyActionResponse{Applied: applied}
	if !applied {
		resp.Message = "target entity not found, action skipped"
	}
	s.logger.Info("corrective action processed",
		zap.String("type", actionType),
		zap.Bool("applied", applied))
	return resp, nil
}

func (s *ActionService) applyInTx(ctx context.Context, tx *sqlx.Tx, actionType string, params map[string]string) (bool, error) {
	switch actionType {
	case engine.ActionAssignTeacher:
		courseID, teacherID, err := requireParams(params, "course_id", "teacher_id")
		if err != nil {
			return false, err
		}
		exists, err := s.teachers.ExistsActive(ctx, tx, teacherID)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, nil
		}
		return s.courses.AssignTeacher(ctx, tx, courseID, teacherID)

	case engine.ActionAssignRoom:
		courseID, roomID, err := requireParams(params, "course_id", "room_id")
		if err != nil {
			return false, err
		}
		exists, err := s.rooms.ExistsActive(ctx, tx, roomID)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, nil
		}
		return s.courses.AssignRoom(ctx, tx, courseID, roomID)

	case engine.ActionEnableSharing:
		roomID, ok := params["room_id"]
		if !ok || roomID == "" {
			return false, missingParam("room_id")
		}
		return s.rooms.EnableSharing(ctx, tx, roomID)

	case engine.ActionReassignCourse:
		courseID, teacherID, err := requireParams(params, "course_id", "teacher_id")
		if err != nil {
			return false, err
		}
		return s.courses.ClearTeacher(ctx, tx, courseID, teacherID)

	default:
		return false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown action type %q", actionType))
	}
}

func requireParams(params map[string]string, first, second string) (string, string, error) {
	a, ok := params[first]
	if !ok || a == "" {
		return "", "", missingParam(first)
	}
	b, ok := params[second]
	if !ok || b == "" {
		return "", "", missingParam(second)
	}
	return a, b, nil
}

func missingParam(name string) error {
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing action parameter %q", name))
}
