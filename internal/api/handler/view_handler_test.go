package handler

import (
	"Atheneum/internal/model"
	"Atheneum/internal/pkg/counter"
	"Atheneum/internal/service"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubViewCountRepo struct {
	totals map[string]int64
}

func (s *stubViewCountRepo) IncrTotal(_ context.Context, key string, n int64) error {
	s.totals[key] += n
	return nil
}

func (s *stubViewCountRepo) IncrDaily(context.Context, time.Time, string, int64) error { return nil }

func (s *stubViewCountRepo) GetTotal(_ context.Context, key string) (int64, error) {
	return s.totals[key], nil
}

func (s *stubViewCountRepo) GetDailyRange(context.Context, string, time.Time, time.Time) ([]*model.ViewDailyCount, error) {
	return nil, nil
}

func newViewTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewViewService(counter.NewMemoryStore(), &stubViewCountRepo{totals: map[string]int64{}}, 60)
	h := NewViewHandler(svc)

	r := gin.New()
	r.GET("/views/increment", h.Increment)
	r.GET("/views/count", h.GetCount)
	return r
}

func TestIncrementEndpoint(t *testing.T) {
	r := newViewTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/views/increment?ns=resource&id=r1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Key   string `json:"key"`
			Count int64  `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "views:resource:r1", body.Data.Key)
	assert.Equal(t, int64(1), body.Data.Count)

	// 完整 key 形式
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/views/increment?key=views:resource:r1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.Data.Count)
}

func TestIncrementRejectsBadKey(t *testing.T) {
	r := newViewTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/views/increment?ns=bad%20ns&id=r1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/views/increment?key=not-a-view-key", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCountEndpoint(t *testing.T) {
	r := newViewTestRouter()

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/views/increment?ns=resource&id=r1", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/views/count?ns=resource&id=r1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Count int64 `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.Data.Count)
}
