package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campusfees/fee-management-api/internal/models"
)

// ReceiptJobRepository persists receipt export job metadata.
type ReceiptJobRepository struct {
	db *sqlx.DB
}

// NewReceiptJobRepository constructs the repository.
func NewReceiptJobRepository(db *sqlx.DB) *ReceiptJobRepository {
	return &ReceiptJobRepository{db: db}
}

// Create inserts a new job row with generated defaults.
func (r *ReceiptJobRepository) Create(ctx context.Context, job *models.ReceiptJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ReceiptStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO receipt_jobs (id, type, params, status, progress, result_url, created_by, created_at, finished_at, error_message)
VALUES (:id, :type, :params, :status, :progress, :result_url, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create receipt job: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier.
func (r *ReceiptJobRepository) GetByID(ctx context.Context, id string) (*models.ReceiptJob, error) {
	const query = `SELECT id, type, params, status, progress, result_url, created_by, created_at, finished_at, error_message
FROM receipt_jobs WHERE id = $1`
	var job models.ReceiptJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("get receipt job: %w", err)
	}
	return &job, nil
}

// UpdateReceiptJobParams defines the mutable fields.
type UpdateReceiptJobParams struct {
	Status       *models.ReceiptStatus
	Progress     *int
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update persists the provided changes for a job row.
func (r *ReceiptJobRepository) Update(ctx context.Context, id string, params UpdateReceiptJobParams) error {
	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	argPos := 1

	if params.Status != nil {
		set = append(set, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *params.Status)
		argPos++
	}
	if params.Progress != nil {
		set = append(set, fmt.Sprintf("progress = $%d", argPos))
		args = append(args, *params.Progress)
		argPos++
	}
	if params.ResultURL != nil {
		set = append(set, fmt.Sprintf("result_url = $%d", argPos))
		args = append(args, *params.ResultURL)
		argPos++
	}
	if params.ErrorMessage != nil {
		set = append(set, fmt.Sprintf("error_message = $%d", argPos))
		args = append(args, *params.ErrorMessage)
		argPos++
	}
	if params.FinishedAt != nil {
		set = append(set, fmt.Sprintf("finished_at = $%d", argPos))
		args = append(args, *params.FinishedAt)
		argPos++
	}

	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE receipt_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update receipt job: %w", err)
	}
	return nil
}

// ListQueued returns jobs still waiting for a worker, oldest first.
func (r *ReceiptJobRepository) ListQueued(ctx context.Context, limit int) ([]models.ReceiptJob, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT id, type, params, status, progress, result_url, created_by, created_at, finished_at, error_message
FROM receipt_jobs WHERE status = $1 ORDER BY created_at ASC LIMIT %d`, limit)
	var jobs []models.ReceiptJob
	if err := r.db.SelectContext(ctx, &jobs, query, models.ReceiptStatusQueued); err != nil {
		return nil, fmt.Errorf("list queued receipt jobs: %w", err)
	}
	return jobs, nil
}

// ListFinishedBefore returns finished jobs older than the cutoff.
func (r *ReceiptJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReceiptJob, error) {
	if limit <= 0 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT id, type, params, status, progress, result_url, created_by, created_at, finished_at, error_message
FROM receipt_jobs WHERE status = $1 AND finished_at < $2 ORDER BY finished_at ASC LIMIT %d`, limit)
	var jobs []models.ReceiptJob
	if err := r.db.SelectContext(ctx, &jobs, query, models.ReceiptStatusFinished, cutoff); err != nil {
		return nil, fmt.Errorf("list finished receipt jobs: %w", err)
	}
	return jobs, nil
}
