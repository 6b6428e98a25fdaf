package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-schedule-optimizer/internal/dto"
	"github.com/noah-isme/sma-schedule-optimizer/internal/repository"
	appErrors "github.com/noah-isme/sma-schedule-optimizer/pkg/errors"
)

type courseMutatorStub struct {
	assignedTeacher map[string]string
	assignedRoom    map[string]string
	cleared         []string
	missing         bool
}

func (s *courseMutatorStub) AssignTeacher(ctx context.Context, exec sqlx.ExtContext, courseID, teacherID string) (bool, error) {
	if s.missing {
		return false, nil
	}
	if s.assignedTeacher == nil {
		s.assignedTeacher = make(map[string]string)
	}
	s.assignedTeacher[courseID] = teacherID
	return true, nil
}

func (s *courseMutatorStub) AssignRoom(ctx context.Context, exec sqlx.ExtContext, courseID, roomID string) (bool, error) {
	if s.missing {
		return false, nil
	}
	if s.assignedRoom == nil {
		s.assignedRoom = make(map[string]string)
	}
	s.assignedRoom[courseID] = roomID
	return true, nil
}

func (s *courseMutatorStub) ClearTeacher(ctx context.Context, exec sqlx.ExtContext, courseID, teacherID string) (bool, error) {
	if s.missing {
		return false, nil
	}
	s.cleared = append(s.cleared, courseID)
	return true, nil
}

type teacherLookupStub struct {
	missing bool
}

func (s *teacherLookupStub) ExistsActive(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	return !s.missing, nil
}

type roomMutatorStub struct {
	shared  []string
	missing bool
}

func (s *roomMutatorStub) EnableSharing(ctx context.Context, exec sqlx.ExtContext, roomID string) (bool, error) {
	if s.missing {
		return false, nil
	}
	s.shared = append(s.shared, roomID)
	return true, nil
}

func (s *roomMutatorStub) ExistsActive(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error) {
	return !s.missing, nil
}

type invalidatorStub struct {
	calls int
}

func (s *invalidatorStub) Invalidate(ctx context.Context) { s.calls++ }

func newActionTx(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestActionServiceAssignTeacher(t *testing.T) {
	db, mock, cleanup := newActionTx(t)
	defer cleanup()
	mock.ExpectBegin()
	mock.ExpectCommit()

	courses := &courseMutatorStub{}
	invalidator := &invalidatorStub{}
	svc := NewActionService(courses, &teacherLookupStub{}, &roomMutatorStub{}, db, invalidator, nil)

	resp, err := svc.Apply(context.Background(), dto.ApplyActionRequest{
		Type:       "ASSIGN_TEACHER",
		Parameters: map[string]string{"course_id": "c1", "teacher_id": "t1"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.Equal(t, "t1", courses.assignedTeacher["c1"])
	assert.Equal(t, 1, invalidator.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActionServiceEnableSharing(t *testing.T) {
	db, mock, cleanup := newActionTx(t)
	defer cleanup()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rooms := &roomMutatorStub{}
	svc := NewActionService(&courseMutatorStub{}, &teacherLookupStub{}, rooms, db, &invalidatorStub{}, nil)

	resp, err := svc.Apply(context.Background(), dto.ApplyActionRequest{
		Type:       "ENABLE_SHARING",
		Parameters: map[string]string{"room_id": "r1"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.Equal(t, []string{"r1"}, rooms.shared)
}

func TestActionServiceReassignCourse(t *testing.T) {
	db, mock, cleanup := newActionTx(t)
	defer cleanup()
	mock.ExpectBegin()
	mock.ExpectCommit()

	courses := &courseMutatorStub{}
	svc := NewActionService(courses, &teacherLookupStub{}, &roomMutatorStub{}, db, &invalidatorStub{}, nil)

	resp, err := svc.Apply(context.Background(), dto.ApplyActionRequest{
		Type:       "REASSIGN_COURSE",
		Parameters: map[string]string{"course_id": "c1", "teacher_id": "t1"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.Equal(t, []string{"c1"}, courses.cleared)
}

func TestActionServiceMissingEntityIsNoop(t *testing.T) {
	db, mock, cleanup := newActionTx(t)
	defer cleanup()
	mock.ExpectBegin()
	mock.ExpectCommit()

	invalidator := &invalidatorStub{}
	svc := NewActionService(&courseMutatorStub{missing: true}, &teacherLookupStub{}, &roomMutatorStub{}, db, invalidator, nil)

	resp, err := svc.Apply(context.Background(), dto.ApplyActionRequest{
		Type:       "ASSIGN_TEACHER",
		Parameters: map[string]string{"course_id": "gone", "teacher_id": "t1"},
	})
	require.NoError(t, err)
	assert.False(t, resp.Applied)
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, 0, invalidator.calls)
}

func TestActionServiceAssignTeacherUnknownTeacher(t *testing.T) {
	db, mock, cleanup := newActionTx(t)
	defer cleanup()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM teachers`).
		WithArgs("no-such-teacher").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectCommit()

	invalidator := &invalidatorStub{}
	svc := NewActionService(
		repository.NewCourseRepository(db),
		repository.NewTeacherRepository(db),
		repository.NewRoomRepository(db),
		db, invalidator, nil)

	resp, err := svc.Apply(context.Background(), dto.ApplyActionRequest{
		Type:       "ASSIGN_TEACHER",
		Parameters: map[string]string{"course_id": "c1", "teacher_id": "no-such-teacher"},
	})
	require.NoError(t, err)
	assert.False(t, resp.Applied)
	assert.Equal(t, 0, invalidator.calls)
	// No UPDATE may reach the database for a dangling teacher id.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActionServiceAssignRoomUnknownRoom(t *testing.T) {
	db, mock, cleanup := newActionTx(t)
	defer cleanup()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM rooms`).
		WithArgs("no-such-room").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectCommit()

	svc := NewActionService(
		repository.NewCourseRepository(db),
		repository.NewTeacherRepository(db),
		repository.NewRoomRepository(db),
		db, &invalidatorStub{}, nil)

	resp, err := svc.Apply(context.Background(), dto.ApplyActionRequest{
		Type:       "ASSIGN_ROOM",
		Parameters: map[string]string{"course_id": "c1", "room_id": "no-such-room"},
	})
	require.NoError(t, err)
	assert.False(t, resp.Applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActionServiceAssignTeacherChecksThenUpdates(t *testing.T) {
	db, mock, cleanup := newActionTx(t)
	defer cleanup()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM teachers`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("UPDATE courses SET teacher_id").
		WithArgs("c1", "t1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := NewActionService(
		repository.NewCourseRepository(db),
		repository.NewTeacherRepository(db),
		repository.NewRoomRepository(db),
		db, &invalidatorStub{}, nil)

	resp, err := svc.Apply(context.Background(), dto.ApplyActionRequest{
		Type:       "ASSIGN_TEACHER",
		Parameters: map[string]string{"course_id": "c1", "teacher_id": "t1"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActionServiceMissingParameter(t *testing.T) {
	db, mock, cleanup := newActionTx(t)
	defer cleanup()
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := NewActionService(&courseMutatorStub{}, &teacherLookupStub{}, &roomMutatorStub{}, db, nil, nil)

	_, err := svc.Apply(context.Background(), dto.ApplyActionRequest{
		Type:       "ASSIGN_TEACHER",
		Parameters: map[string]string{"course_id": "c1"},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestActionServiceUnknownType(t *testing.T) {
	db, _, cleanup := newActionTx(t)
	defer cleanup()

	svc := NewActionService(&courseMutatorStub{}, &teacherLookupStub{}, &roomMutatorStub{}, db, nil, nil)

	_, err := svc.Apply(context.Background(), dto.ApplyActionRequest{
		Type:       "DROP_COURSE",
		Parameters: map[string]string{"course_id": "c1"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
