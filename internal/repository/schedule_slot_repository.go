package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-schedule-optimizer/internal/models"
)

// ScheduleSlotRepository persists the accepted timetable of a run.
type ScheduleSlotRepository struct {
	db *sqlx.DB
}

// NewScheduleSlotRepository constructs a ScheduleSlotRepository.
func NewScheduleSlotRepository(db *sqlx.DB) *ScheduleSlotRepository {
	return &ScheduleSlotRepository{db: db}
}

// ReplaceForRun writes the full slot set of a run inside the given
// transaction, dropping any earlier slots of the same run first.
func (r *ScheduleSlotRepository) ReplaceForRun(ctx context.Context, exec sqlx.ExtContext, runID string, slots []models.ScheduleSlot) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM schedule_slots WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("clear schedule slots: %w", err)
	}
	now := time.Now().UTC()
	const query = `INSERT INTO schedule_slots (id, run_id, course_id, section_index, teacher_id, room_id, time_slot_id, enrolled_count, created_at)
		VALUES (:id, :run_id, :course_id, :section_index, :teacher_id, :room_id, :time_slot_id, :enrolled_count, :created_at)`
	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		slot.RunID = runID
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, exec, query, slot); err != nil {
			return fmt.Errorf("insert schedule slot: %w", err)
		}
	}
	return nil
}

// ListByRun returns the persisted timetable of one run, ordered for stable
// presentation.
func (r *ScheduleSlotRepository) ListByRun(ctx context.Context, runID string) ([]models.ScheduleSlot, error) {
	const query = `SELECT id, run_id, course_id, section_index, teacher_id, room_id, time_slot_id, enrolled_count, created_at
		FROM schedule_slots WHERE run_id = $1 ORDER BY course_id, section_index`
	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, runID); err != nil {
		return nil, fmt.Errorf("list schedule slots: %w", err)
	}
	return slots, nil
}

// DeleteByRun removes the persisted timetable of one run.
func (r *ScheduleSlotRepository) DeleteByRun(ctx context.Context, runID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_slots WHERE run_id = $1`, runID); err != nil {
		return fmt.Errorf("delete schedule slots: %w", err)
	}
	return nil
}
