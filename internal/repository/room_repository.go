package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-schedule-optimizer/internal/models"
)

const roomColumns = "id, room_number, room_type, capacity, allow_sharing, max_concurrent, active, created_at, updated_at"

// RoomRepository manages persistence for rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// ListActive returns every active room, ordered by room number.
func (r *RoomRepository) ListActive(ctx context.Context) ([]models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE active = TRUE ORDER BY room_number", roomColumns)
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list active rooms: %w", err)
	}
	return rooms, nil
}

// FindByID fetches a room by ID.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE id = $1", roomColumns)
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ExistsActive reports whether an active room with the given ID exists,
// using the provided executor so the check can join a transaction.
func (r *RoomRepository) ExistsActive(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1 AND active = TRUE)`
	var exists bool
	if err := sqlx.GetContext(ctx, exec, &exists, query, id); err != nil {
		return false, fmt.Errorf("check room exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new room record.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now

	const query = `INSERT INTO rooms (id, room_number, room_type, capacity, allow_sharing, max_concurrent, active, created_at, updated_at)
		VALUES (:id, :room_number, :room_type, :capacity, :allow_sharing, :max_concurrent, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update modifies an existing room record.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rooms SET room_number = :room_number, room_type = :room_type, capacity = :capacity, allow_sharing = :allow_sharing, max_concurrent = :max_concurrent, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// EnableSharing switches a room to shared occupancy within the given
// executor. MaxConcurrent below two is lifted to two so the flag has effect.
func (r *RoomRepository) EnableSharing(ctx context.Context, exec sqlx.ExtContext, roomID string) (bool, error) {
	const query = `UPDATE rooms SET allow_sharing = TRUE, max_concurrent = GREATEST(max_concurrent, 2), updated_at = $2 WHERE id = $1`
	res, err := exec.ExecContext(ctx, query, roomID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("enable room sharing: %w", err)
	}
	return rowChanged(res)
}
