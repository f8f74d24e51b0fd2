package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusfees/fee-management-api/internal/models"
)

func newReceiptJobMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReceiptJobRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newReceiptJobMock(t)
	defer cleanup()
	repo := NewReceiptJobRepository(db)

	mock.ExpectExec("INSERT INTO receipt_jobs").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ReceiptJob{
		Type:      models.ReceiptTypePayment,
		Params:    models.ReceiptJobParams{StudentID: "1", Format: models.ReceiptFormatPDF},
		CreatedBy: "admin-1",
	}
	err := repo.Create(context.Background(), job)
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.ReceiptStatusQueued, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptJobRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newReceiptJobMock(t)
	defer cleanup()
	repo := NewReceiptJobRepository(db)

	status := models.ReceiptStatusFinished
	progress := 100
	now := time.Now().UTC()
	mock.ExpectExec("UPDATE receipt_jobs SET").
		WithArgs(status, progress, now, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateReceiptJobParams{
		Status:     &status,
		Progress:   &progress,
		FinishedAt: &now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptJobRepositoryUpdateNoFields(t *testing.T) {
	db, mock, cleanup := newReceiptJobMock(t)
	defer cleanup()
	repo := NewReceiptJobRepository(db)

	err := repo.Update(context.Background(), "job-1", UpdateReceiptJobParams{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
