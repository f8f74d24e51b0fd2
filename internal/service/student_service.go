package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campusfees/fee-management-api/internal/models"
	"github.com/campusfees/fee-management-api/internal/store"
	appErrors "github.com/campusfees/fee-management-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByRegNo(ctx context.Context, regNo string) (*models.Student, error)
	ExistsByRegNo(ctx context.Context, regNo string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	FeeStatus(ctx context.Context, studentID string) ([]models.FeeStatusEntry, error)
}

// StudentService serves roster reads and seeding. The Postgres repository is
// the system of record; the state store carries a copy for session lookups.
type StudentService struct {
	repo    studentRepository
	store   *store.Store
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, st *store.Store, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, store: st, cache: cache, metrics: metrics, logger: logger}
}

type studentListPayload struct {
	Students   []models.Student  `json:"students"`
	Pagination models.Pagination `json:"pagination"`
}

// List returns a page of the roster. When no repository is configured (file
// backend deployments) the store roster is served directly.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, models.Pagination, error) {
	if s.repo == nil {
		roster := s.store.Roster()
		return roster, models.Pagination{Page: 1, PageSize: len(roster), TotalCount: len(roster)}, nil
	}

	cacheKey := fmt.Sprintf("students:list:%s:%s:%v:%d:%d:%s:%s",
		filter.Search, filter.Department, filter.Semester, filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder)
	if s.cache != nil && s.cache.Enabled() {
		var cached studentListPayload
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached.Students, cached.Pagination, nil
		}
	}

	start := time.Now()
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("students_list", time.Since(start))
	}

	pagination := models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	if s.cache != nil && s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, studentListPayload{Students: students, Pagination: pagination}, 0); err != nil {
			s.logger.Warn("failed to cache student list", zap.Error(err))
		}
	}
	return students, pagination, nil
}

// GetByRegNo looks a student up by registration number.
func (s *StudentService) GetByRegNo(ctx context.Context, regNo string) (*models.Student, error) {
	if s.repo == nil {
		for _, st := range s.store.Roster() {
			if st.RegNo == regNo {
				st := st
				return &st, nil
			}
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	student, err := s.repo.FindByRegNo(ctx, regNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	return student, nil
}

// FeeStatus returns the per-semester fee ledger for a student.
func (s *StudentService) FeeStatus(ctx context.Context, studentID string) ([]models.FeeStatusEntry, error) {
	if s.repo == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "fee status unavailable without database")
	}
	entries, err := s.repo.FeeStatus(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch fee status")
	}
	return entries, nil
}

// Seed inserts the default roster, skipping registration numbers that already
// exist, and refreshes the store roster. Returns how many rows were inserted.
func (s *StudentService) Seed(ctx context.Context) (int, error) {
	roster := store.SeedRoster()
	inserted := 0
	if s.repo != nil {
		for i := range roster {
			exists, err := s.repo.ExistsByRegNo(ctx, roster[i].RegNo)
			if err != nil {
				return inserted, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing student")
			}
			if exists {
				continue
			}
			if err := s.repo.Create(ctx, &roster[i]); err != nil {
				return inserted, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert student")
			}
			inserted++
		}
	} else {
		inserted = len(roster)
	}

	s.store.SetRoster(roster)
	if s.cache != nil && s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, "students:*"); err != nil {
			s.logger.Warn("failed to invalidate student cache after seed", zap.Error(err))
		}
	}
	s.logger.Info("roster seeded", zap.Int("inserted", inserted), zap.Int("roster_size", len(roster)))
	return inserted, nil
}
