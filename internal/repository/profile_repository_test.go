package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/daprotis-api/internal/models"
)

var profileRowColumns = []string{"id", "first_name", "last_name", "phone", "date_of_birth", "address", "role", "last_payment_date", "cant_por_semana", "created_at", "updated_at"}

func TestProfileFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	now := time.Now()
	paid := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(profileRowColumns).
		AddRow("u1", "Ana", "Pérez", "1155550000", "1995-06-01", nil, "user", paid, 2, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = $1 LIMIT 1")).
		WithArgs("u1").
		WillReturnRows(rows)

	profile, err := repo.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, profile.LastPaymentDate)
	assert.Equal(t, "2025-03-02", profile.LastPaymentDate.String())
	require.NotNil(t, profile.WeeklyAllowance)
	assert.Equal(t, 2, *profile.WeeklyAllowance)
	assert.Nil(t, profile.Address)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileSetWeeklyAllowanceClears(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET cant_por_semana = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("u1", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetWeeklyAllowance(context.Background(), "u1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileSetLastPaymentDateMissingProfile(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	date, _ := models.ParseDate("2025-03-10")
	mock.ExpectExec("UPDATE profiles SET last_payment_date").
		WithArgs("ghost", "2025-03-10", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetLastPaymentDate(context.Background(), "ghost", &date)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileListNewestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(append(append([]string{}, profileRowColumns...), "email")).
		AddRow("u2", "Juan", "Gómez", "1155550001", nil, nil, "user", nil, nil, now, now, "juan@example.com")
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles p JOIN users u ON u.id = p.id WHERE 1=1 AND p.role = $1 ORDER BY p.created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.RoleUser).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM profiles p JOIN users u ON u.id = p.id WHERE 1=1 AND p.role = $1")).
		WithArgs(models.RoleUser).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	role := models.RoleUser
	profiles, total, err := repo.List(context.Background(), models.ProfileFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "juan@example.com", profiles[0].Email)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
