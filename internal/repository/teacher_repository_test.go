package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-schedule-optimizer/internal/models"
)

func teacherRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "full_name", "qualified_subjects",
		"max_periods_per_day", "max_periods_per_week", "active", "created_at", "updated_at",
	})
}

func TestTeacherRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTeacherRepository(db)
	rows := teacherRows().
		AddRow("t1", "andi@sma.sch.id", "Andi Wijaya", "math,physics", 6, 24, true, time.Now(), time.Now()).
		AddRow("t2", "budi@sma.sch.id", "Budi Santoso", "biology", 6, 24, true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM teachers WHERE active = TRUE ORDER BY full_name").
		WillReturnRows(rows)

	teachers, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 2)
	assert.Equal(t, "Andi Wijaya", teachers[0].FullName)
	assert.Equal(t, 24, teachers[0].MaxPeriodsPerWeek)
}

func TestTeacherRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTeacherRepository(db)
	rows := teacherRows().
		AddRow("t1", "andi@sma.sch.id", "Andi Wijaya", "math", 6, 24, true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM teachers WHERE id = ").
		WithArgs("t1").
		WillReturnRows(rows)

	teacher, err := repo.FindByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "andi@sma.sch.id", teacher.Email)
	assert.Equal(t, "math", teacher.QualifiedSubjects)
}

func TestTeacherRepositoryCreateGeneratesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTeacherRepository(db)
	mock.ExpectExec("INSERT INTO teachers").
		WillReturnResult(sqlmock.NewResult(1, 1))

	teacher := &models.Teacher{
		Email:             "citra@sma.sch.id",
		FullName:          "Citra Lestari",
		QualifiedSubjects: "chemistry",
		MaxPeriodsPerDay:  6,
		MaxPeriodsPerWeek: 24,
		Active:            true,
	}
	require.NoError(t, repo.Create(context.Background(), teacher))
	assert.NotEmpty(t, teacher.ID)
	assert.False(t, teacher.CreatedAt.IsZero())
}

func TestTeacherRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTeacherRepository(db)
	mock.ExpectExec("UPDATE teachers SET email").
		WillReturnResult(sqlmock.NewResult(0, 1))

	teacher := &models.Teacher{ID: "t1", Email: "andi@sma.sch.id", FullName: "Andi Wijaya", Active: true}
	before := teacher.UpdatedAt
	require.NoError(t, repo.Update(context.Background(), teacher))
	assert.True(t, teacher.UpdatedAt.After(before))
}
