package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusfees/fee-management-api/internal/store"
	appErrors "github.com/campusfees/fee-management-api/pkg/errors"
	"github.com/campusfees/fee-management-api/pkg/storage"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	kv, err := storage.NewFileKV(t.TempDir())
	require.NoError(t, err)
	return store.New(context.Background(), kv, store.SeedRoster(), zap.NewNop())
}

func TestFeeServiceCreateAndList(t *testing.T) {
	svc := NewFeeService(newTestStore(t), nil, nil, zap.NewNop())

	created, err := svc.Create(CreateFeeCategoryRequest{Name: "Tuition", Amount: 54000})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Tuition", created.Name)

	categories := svc.List()
	require.Len(t, categories, 1)
	assert.Equal(t, created.ID, categories[0].ID)
}

func TestFeeServiceCreateDuplicateNameConflicts(t *testing.T) {
	svc := NewFeeService(newTestStore(t), nil, nil, zap.NewNop())

	_, err := svc.Create(CreateFeeCategoryRequest{Name: "Hostel", Amount: 12000})
	require.NoError(t, err)

	_, err = svc.Create(CreateFeeCategoryRequest{Name: "Hostel", Amount: 8000})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)

	categories := svc.List()
	require.Len(t, categories, 1)
	assert.Equal(t, float64(12000), categories[0].Amount)
}

func TestFeeServiceCreateValidation(t *testing.T) {
	svc := NewFeeService(newTestStore(t), nil, nil, zap.NewNop())

	_, err := svc.Create(CreateFeeCategoryRequest{Name: "", Amount: 100})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(CreateFeeCategoryRequest{Name: "Library", Amount: 0})
	require.Error(t, err)
}

func TestFeeServiceUpdate(t *testing.T) {
	svc := NewFeeService(newTestStore(t), nil, nil, zap.NewNop())

	created, err := svc.Create(CreateFeeCategoryRequest{Name: "Exam", Amount: 1500})
	require.NoError(t, err)

	updated, err := svc.Update(created.ID, UpdateFeeCategoryRequest{Name: "Exam Fee", Amount: 1750})
	require.NoError(t, err)
	assert.Equal(t, "Exam Fee", updated.Name)
	assert.Equal(t, float64(1750), updated.Amount)

	_, err = svc.Update("missing", UpdateFeeCategoryRequest{Name: "X", Amount: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFeeServiceDeleteIdempotent(t *testing.T) {
	svc := NewFeeService(newTestStore(t), nil, nil, zap.NewNop())

	created, err := svc.Create(CreateFeeCategoryRequest{Name: "Bus", Amount: 6000})
	require.NoError(t, err)

	svc.Delete(created.ID)
	svc.Delete(created.ID)
	assert.Empty(t, svc.List())
}
