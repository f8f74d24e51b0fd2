package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusfees/fee-management-api/internal/models"
	appErrors "github.com/campusfees/fee-management-api/pkg/errors"
)

type mockStudentRepo struct {
	students   map[string]models.Student
	feeStatus  map[string][]models.FeeStatusEntry
	lastFilter models.StudentFilter
	listTotal  int
	err        error
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: map[string]models.Student{}, feeStatus: map[string][]models.FeeStatusEntry{}}
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, m.listTotal, nil
}

func (m *mockStudentRepo) FindByRegNo(ctx context.Context, regNo string) (*models.Student, error) {
	for _, s := range m.students {
		if s.RegNo == regNo {
			s := s
			return &s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByRegNo(ctx context.Context, regNo string) (bool, error) {
	_, err := m.FindByRegNo(ctx, regNo)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) FeeStatus(ctx context.Context, studentID string) ([]models.FeeStatusEntry, error) {
	return m.feeStatus[studentID], nil
}

func TestStudentServiceSeedSkipsExisting(t *testing.T) {
	repo := newMockStudentRepo()
	repo.students["1"] = models.Student{ID: "1", RegNo: "21A21A05D3", Name: "Abhilash"}
	st := newTestStore(t)
	svc := NewStudentService(repo, st, nil, nil, zap.NewNop())

	inserted, err := svc.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, inserted)
	assert.Len(t, repo.students, 9)
	assert.Len(t, st.Roster(), 9)
}

func TestStudentServiceSeedWithoutDatabase(t *testing.T) {
	st := newTestStore(t)
	svc := NewStudentService(nil, st, nil, nil, zap.NewNop())

	inserted, err := svc.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, inserted)
	assert.Len(t, st.Roster(), 9)
}

func TestStudentServiceGetByRegNo(t *testing.T) {
	repo := newMockStudentRepo()
	repo.students["7"] = models.Student{ID: "7", RegNo: "21A21A05D9", Name: "P Mohan Kumar"}
	svc := NewStudentService(repo, newTestStore(t), nil, nil, zap.NewNop())

	student, err := svc.GetByRegNo(context.Background(), "21A21A05D9")
	require.NoError(t, err)
	assert.Equal(t, "P Mohan Kumar", student.Name)

	_, err = svc.GetByRegNo(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceGetByRegNoFallsBackToRoster(t *testing.T) {
	svc := NewStudentService(nil, newTestStore(t), nil, nil, zap.NewNop())

	student, err := svc.GetByRegNo(context.Background(), "21A21A05E1")
	require.NoError(t, err)
	assert.Equal(t, "P Hemani", student.Name)
}

func TestStudentServiceListPassesFilter(t *testing.T) {
	repo := newMockStudentRepo()
	repo.students["1"] = models.Student{ID: "1", RegNo: "21A21A05D3", Name: "Abhilash"}
	repo.listTotal = 1
	svc := NewStudentService(repo, newTestStore(t), nil, nil, zap.NewNop())

	filter := models.StudentFilter{Search: "abhi", Department: "CSE", Page: 2, PageSize: 5}
	students, pagination, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, "abhi", repo.lastFilter.Search)
}

func TestStudentServiceListWithoutDatabaseServesRoster(t *testing.T) {
	svc := NewStudentService(nil, newTestStore(t), nil, nil, zap.NewNop())

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, students, 9)
	assert.Equal(t, 9, pagination.TotalCount)
}
