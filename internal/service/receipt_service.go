package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campusfees/fee-management-api/internal/models"
	"github.com/campusfees/fee-management-api/internal/repository"
	appErrors "github.com/campusfees/fee-management-api/pkg/errors"
	"github.com/campusfees/fee-management-api/pkg/jobs"
)

type receiptJobStore interface {
	Create(ctx context.Context, job *models.ReceiptJob) error
	GetByID(ctx context.Context, id string) (*models.ReceiptJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReceiptJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.ReceiptJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReceiptJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ReceiptJob) (*ExportResult, error)
}

// ReceiptRequest describes a queued receipt export.
type ReceiptRequest struct {
	Type      models.ReceiptType   `json:"type"`
	StudentID string               `json:"studentId"`
	Format    models.ReceiptFormat `json:"format"`
}

// ReceiptJobResponse is returned on job creation.
type ReceiptJobResponse struct {
	ID       string               `json:"id"`
	Status   models.ReceiptStatus `json:"status"`
	Progress int                  `json:"progress"`
}

// ReceiptStatusResponse reports job state to polling clients.
type ReceiptStatusResponse struct {
	ID        string               `json:"id"`
	Status    models.ReceiptStatus `json:"status"`
	Progress  int                  `json:"progress"`
	ResultURL *string              `json:"result_url,omitempty"`
	Error     *string              `json:"error,omitempty"`
}

// ReceiptDownload aggregates resolved download data.
type ReceiptDownload struct {
	File      *os.File
	Filename  string
	Format    models.ReceiptFormat
	ExpiresAt time.Time
}

// ReceiptServiceConfig governs queue recovery and cleanup.
type ReceiptServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	MaxRetries      int
}

// ReceiptService orchestrates receipt export job lifecycle management.
type ReceiptService struct {
	repo     receiptJobStore
	queue    jobDispatcher
	exporter *ExportService
	logger   *zap.Logger
	cfg      ReceiptServiceConfig
}

// NewReceiptService constructs the receipt service.
func NewReceiptService(repo receiptJobStore, queue jobDispatcher, exporter *ExportService, logger *zap.Logger, cfg ReceiptServiceConfig) *ReceiptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &ReceiptService{repo: repo, queue: queue, exporter: exporter, logger: logger, cfg: cfg}
}

// CreateJob validates the request, persists the job, and enqueues processing.
// Students may only request their own payment receipts.
func (s *ReceiptService) CreateJob(ctx context.Context, req ReceiptRequest, actorID string, role models.UserRole) (*ReceiptJobResponse, error) {
	if err := s.validateRequest(&req, actorID, role); err != nil {
		return nil, err
	}
	job := &models.ReceiptJob{
		Type:      req.Type,
		Params:    models.ReceiptJobParams{StudentID: req.StudentID, Format: req.Format},
		Status:    models.ReceiptStatusQueued,
		Progress:  0,
		CreatedBy: actorID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create receipt job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		status := models.ReceiptStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		progress := 100
		_ = s.repo.Update(ctx, job.ID, repository.UpdateReceiptJobParams{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue receipt job")
	}
	return &ReceiptJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus exposes job metadata to clients, enforcing ownership for students.
func (s *ReceiptService) GetStatus(ctx context.Context, id string, actorID string, role models.UserRole) (*ReceiptStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load receipt job")
	}
	if role == models.RoleStudent && job.CreatedBy != actorID {
		return nil, appErrors.ErrForbidden
	}
	resp := &ReceiptStatusResponse{
		ID:       job.ID,
		Status:   job.Status,
		Progress: job.Progress,
	}
	if job.ResultURL != nil {
		resp.ResultURL = job.ResultURL
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload validates the token and opens the stored export file.
func (s *ReceiptService) ResolveDownload(ctx context.Context, token string) (*ReceiptDownload, error) {
	jobID, relPath, expiresAt, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load receipt job")
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ReceiptStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "receipt not ready")
	}
	file, err := s.exporter.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ReceiptDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    job.Params.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// RecoverPendingJobs replays queued jobs (e.g. after process restart).
func (s *ReceiptService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover queued receipt jobs", "error", err)
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue pending job", "job_id", job.ID, "error", err)
		}
	}
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ReceiptService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ReceiptService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	for {
		batch, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
		if err != nil {
			s.logger.Sugar().Warnw("cleanup list failed", "error", err)
			return
		}
		if len(batch) == 0 {
			break
		}
		for _, job := range batch {
			if job.ResultURL == nil {
				continue
			}
			token := extractToken(*job.ResultURL)
			if token == "" {
				continue
			}
			_, relPath, _, err := s.exporter.ParseToken(token, true)
			if err != nil {
				continue
			}
			if err := s.exporter.Delete(relPath); err != nil {
				s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "error", err)
			}
		}
		if len(batch) < 100 {
			break
		}
	}
	if _, err := s.exporter.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func (s *ReceiptService) validateRequest(req *ReceiptRequest, actorID string, role models.UserRole) error {
	if req.Type != models.ReceiptTypePayment && req.Type != models.ReceiptTypeLedger {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported receipt type")
	}
	if req.Format != models.ReceiptFormatCSV && req.Format != models.ReceiptFormatPDF {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported receipt format")
	}
	if role == models.RoleStudent {
		if req.Type == models.ReceiptTypeLedger {
			return appErrors.ErrForbidden
		}
		req.StudentID = actorID
	}
	if req.Type == models.ReceiptTypePayment && req.StudentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "studentId is required for payment receipts")
	}
	return nil
}

func extractToken(url string) string {
	if url == "" {
		return ""
	}
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

// ReceiptWorker bridges queue jobs to the ExportService.
type ReceiptWorker struct {
	repo       receiptJobStore
	exporter   exportGenerator
	logger     *zap.Logger
	maxRetries int
}

// NewReceiptWorker constructs a worker.
func NewReceiptWorker(repo receiptJobStore, exporter exportGenerator, maxRetries int, logger *zap.Logger) *ReceiptWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ReceiptWorker{repo: repo, exporter: exporter, logger: logger, maxRetries: maxRetries}
}

// Handle processes a queue job.
func (w *ReceiptWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ReceiptStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReceiptJobParams{
		Status:   &processing,
		Progress: &progress,
	}); err != nil {
		return err
	}
	result, err := w.exporter.Generate(ctx, record)
	if err != nil {
		msg := err.Error()
		if job.Attempt >= w.maxRetries {
			failed := models.ReceiptStatusFailed
			progress = 100
			now := time.Now().UTC()
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateReceiptJobParams{
				Status:       &failed,
				Progress:     &progress,
				ErrorMessage: &msg,
				FinishedAt:   &now,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark job failed", "job_id", job.ID, "error", updateErr)
			}
		} else {
			queued := models.ReceiptStatusQueued
			reset := 0
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateReceiptJobParams{
				Status:       &queued,
				Progress:     &reset,
				ErrorMessage: &msg,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark job queued", "job_id", job.ID, "error", updateErr)
			}
		}
		return err
	}
	finished := models.ReceiptStatusFinished
	progress = 100
	now := time.Now().UTC()
	url := result.URL
	clear := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReceiptJobParams{
		Status:       &finished,
		Progress:     &progress,
		ResultURL:    &url,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark job finished", "job_id", job.ID, "error", err)
		return err
	}
	return nil
}
