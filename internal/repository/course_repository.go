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

const courseColumns = "id, code, name, subject, teacher_id, room_id, required_room_type, enrolled_count, sections, active, created_at, updated_at"

// CourseRepository manages persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListActive returns every active course, ordered by code.
func (r *CourseRepository) ListActive(ctx context.Context) ([]models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE active = TRUE ORDER BY code", courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	return courses, nil
}

// FindByID fetches a course by ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create inserts a new course record.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, code, name, subject, teacher_id, room_id, required_room_type, enrolled_count, sections, active, created_at, updated_at)
		VALUES (:id, :code, :name, :subject, :teacher_id, :room_id, :required_room_type, :enrolled_count, :sections, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies an existing course record.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET code = :code, name = :name, subject = :subject, teacher_id = :teacher_id, room_id = :room_id, required_room_type = :required_room_type, enrolled_count = :enrolled_count, sections = :sections, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// AssignTeacher sets a course's teacher within the given executor. It
// reports whether a row changed.
func (r *CourseRepository) AssignTeacher(ctx context.Context, exec sqlx.ExtContext, courseID, teacherID string) (bool, error) {
	const query = `UPDATE courses SET teacher_id = $2, updated_at = $3 WHERE id = $1`
	res, err := exec.ExecContext(ctx, query, courseID, teacherID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("assign teacher: %w", err)
	}
	return rowChanged(res)
}

// AssignRoom sets a course's room within the given executor.
func (r *CourseRepository) AssignRoom(ctx context.Context, exec sqlx.ExtContext, courseID, roomID string) (bool, error) {
	const query = `UPDATE courses SET room_id = $2, updated_at = $3 WHERE id = $1`
	res, err := exec.ExecContext(ctx, query, courseID, roomID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("assign room: %w", err)
	}
	return rowChanged(res)
}

// ClearTeacher removes a course's teacher assignment, but only while the
// named teacher still holds it.
func (r *CourseRepository) ClearTeacher(ctx context.Context, exec sqlx.ExtContext, courseID, teacherID string) (bool, error) {
	const query = `UPDATE courses SET teacher_id = NULL, updated_at = $3 WHERE id = $1 AND teacher_id = $2`
	res, err := exec.ExecContext(ctx, query, courseID, teacherID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("clear teacher: %w", err)
	}
	return rowChanged(res)
}

func rowChanged(res sql.Result) (bool, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
