package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusfees/fee-management-api/internal/models"
)

func TestMetricsHandlerHealthReportsCollections(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := newHandlerTestStore(t)
	st.AddFeeCategory(models.FeeCategory{ID: "f1", Name: "Tuition", Amount: 54000})
	handler := NewMetricsHandler(nil, st, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	c.Request = req
	handler.Health(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status      string         `json:"status"`
		Collections map[string]int `json:"collections"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Collections["feeCategories"])
}

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewMetricsHandler(nil, newHandlerTestStore(t), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/ready", nil)
	c.Request = req
	handler.Ready(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "ok", body.Checks["store"])
}
