package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campusfees/fee-management-api/internal/models"
	"github.com/campusfees/fee-management-api/internal/store"
	appErrors "github.com/campusfees/fee-management-api/pkg/errors"
)

// CreateFeeCategoryRequest holds payload for creating fee categories.
type CreateFeeCategoryRequest struct {
	Name   string  `json:"name" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// UpdateFeeCategoryRequest holds payload for updating fee categories.
type UpdateFeeCategoryRequest struct {
	Name   string  `json:"name" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// FeeService handles fee category use-cases on top of the state store.
// The store keeps the silent duplicate no-op contract; this layer surfaces
// duplicates as conflicts so API callers get an actionable error.
type FeeService struct {
	store     *store.Store
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewFeeService constructs the fee service.
func NewFeeService(st *store.Store, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{store: st, validator: validate, metrics: metrics, logger: logger}
}

// List returns all fee categories.
func (s *FeeService) List() []models.FeeCategory {
	return s.store.FeeCategories()
}

// Create validates and appends a new fee category.
func (s *FeeService) Create(req CreateFeeCategoryRequest) (*models.FeeCategory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee category payload")
	}
	category, added := s.store.AddFeeCategory(models.FeeCategory{Name: req.Name, Amount: req.Amount})
	if !added {
		return nil, appErrors.Clone(appErrors.ErrConflict, "fee category name already exists")
	}
	if s.metrics != nil {
		s.metrics.RecordStoreMutation(store.KeyFeeCategories, "add")
	}
	return &category, nil
}

// Update replaces the category with the matching id.
func (s *FeeService) Update(id string, req UpdateFeeCategoryRequest) (*models.FeeCategory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee category payload")
	}
	category := models.FeeCategory{ID: id, Name: req.Name, Amount: req.Amount}
	if !s.store.UpdateFeeCategory(category) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "fee category not found")
	}
	if s.metrics != nil {
		s.metrics.RecordStoreMutation(store.KeyFeeCategories, "update")
	}
	return &category, nil
}

// Delete removes the category with the given id. Removal is idempotent.
func (s *FeeService) Delete(id string) {
	s.store.RemoveFeeCategory(id)
	if s.metrics != nil {
		s.metrics.RecordStoreMutation(store.KeyFeeCategories, "remove")
	}
}
