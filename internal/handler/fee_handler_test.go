package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusfees/fee-management-api/internal/models"
	"github.com/campusfees/fee-management-api/internal/service"
	"github.com/campusfees/fee-management-api/internal/store"
	"github.com/campusfees/fee-management-api/pkg/storage"
)

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type responseEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *envelopeError  `json:"error"`
}

func newHandlerTestStore(t *testing.T) *store.Store {
	t.Helper()
	kv, err := storage.NewFileKV(t.TempDir())
	require.NoError(t, err)
	return store.New(context.Background(), kv, store.SeedRoster(), zap.NewNop())
}

func newFeeHandlerForTest(t *testing.T) (*FeeHandler, *store.Store) {
	t.Helper()
	st := newHandlerTestStore(t)
	svc := service.NewFeeService(st, nil, nil, zap.NewNop())
	return NewFeeHandler(svc), st
}

func TestFeeHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newFeeHandlerForTest(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.CreateFeeCategoryRequest{Name: "Tuition", Amount: 54000})
	req, _ := http.NewRequest(http.MethodPost, "/fees", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	var category models.FeeCategory
	require.NoError(t, json.Unmarshal(envelope.Data, &category))
	assert.Equal(t, "Tuition", category.Name)
	assert.NotEmpty(t, category.ID)
}

func TestFeeHandlerCreateDuplicateConflicts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newFeeHandlerForTest(t)

	for i, wantStatus := range []int{http.StatusCreated, http.StatusConflict} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		body, _ := json.Marshal(service.CreateFeeCategoryRequest{Name: "Hostel", Amount: 12000})
		req, _ := http.NewRequest(http.MethodPost, "/fees", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		c.Request = req

		handler.Create(c)
		assert.Equal(t, wantStatus, w.Code, "attempt %d", i+1)
	}
}

func TestFeeHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newFeeHandlerForTest(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/fees", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeeHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, st := newFeeHandlerForTest(t)
	st.AddFeeCategory(models.FeeCategory{Name: "Exam", Amount: 1500})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/fees", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	var categories []models.FeeCategory
	require.NoError(t, json.Unmarshal(envelope.Data, &categories))
	require.Len(t, categories, 1)
	assert.Equal(t, "Exam", categories[0].Name)
}

func TestFeeHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, st := newFeeHandlerForTest(t)
	category, _ := st.AddFeeCategory(models.FeeCategory{Name: "Bus", Amount: 6000})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/fees/"+category.ID, nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: category.ID}}

	handler.Delete(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, st.FeeCategories())
}
