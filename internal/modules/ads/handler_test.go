package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trustmrr/internal/domain"
	"trustmrr/internal/pkg/clock"
	"trustmrr/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type handlerFixture struct {
	router *gin.Engine
	userID int64
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:ads_handler_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: dsn}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	users := repository.NewUserRepository(db)
	owner := &domain.User{Username: "jane", Email: "jane@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(context.Background(), owner))

	svc := NewService(Deps{
		Ads:       repository.NewAdRepository(db),
		Users:     users,
		Companies: repository.NewCompanyRepository(db),
		Clock:     clock.NewFixed(fixedNow),
		Hub:       NewHub(nil),
	})
	h := NewHandler(svc, nil, zerolog.Nop())

	r := gin.New()
	v1 := r.Group("/api/v1")
	protected := v1.Group("/")
	protected.Use(func(c *gin.Context) {
		c.Set("user_id", owner.ID)
		c.Next()
	})
	h.RegisterRoutes(v1, protected)

	return &handlerFixture{router: r, userID: owner.ID}
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func bookBody(start, end string) map[string]any {
	return map[string]any{
		"slot_id":     "left_1",
		"start_date":  start,
		"end_date":    end,
		"title":       "Ship faster",
		"description": "Deploy previews for every PR",
		"target_url":  "https://example.com",
		"payment_id":  "pay_abc",
		"amount_paid": 5000,
	}
}

func TestHandler_BookOverlapAndAdjacent(t *testing.T) {
	f := newHandlerFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/ads/book", bookBody("2025-06-01", "2025-06-07"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)

	var view AdView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, domain.SlotLeft1, view.SlotID)
	assert.Equal(t, domain.AdLive, view.Status)

	w, env = f.do(t, http.MethodPost, "/api/v1/ads/book", bookBody("2025-06-05", "2025-06-10"))
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SLOT_CONFLICT", env.Error.Code)

	w, _ = f.do(t, http.MethodPost, "/api/v1/ads/book", bookBody("2025-06-08", "2025-06-10"))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestHandler_BookValidation(t *testing.T) {
	f := newHandlerFixture(t)

	body := bookBody("2025-06-01", "2025-06-07")
	body["title"] = strings.Repeat("t", 101)
	w, env := f.do(t, http.MethodPost, "/api/v1/ads/book", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "title")

	w, env = f.do(t, http.MethodPost, "/api/v1/ads/book", bookBody("2025-05-20", "2025-05-25"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestHandler_BookMultipart(t *testing.T) {
	f := newHandlerFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range bookBody("2025-06-10", "2025-06-12") {
		require.NoError(t, mw.WriteField(k, fmt.Sprint(v)))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ads/book", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestHandler_CancelAndMyAds(t *testing.T) {
	f := newHandlerFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/ads/book", bookBody("2025-06-11", "2025-06-17"))
	require.Equal(t, http.StatusCreated, w.Code)
	var booked AdView
	require.NoError(t, json.Unmarshal(env.Data, &booked))

	w, env = f.do(t, http.MethodGet, "/api/v1/ads/my", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine MyAds
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Len(t, mine.Scheduled, 1)
	assert.Equal(t, 5000.0, mine.TotalSpent)

	w, env = f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/ads/%d/cancel", booked.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res CancelResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.RefundEligible)
	assert.Equal(t, 5000.0, res.RefundAmount)

	w, env = f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/ads/%d/cancel", booked.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ALREADY_CANCELLED", env.Error.Code)

	w, env = f.do(t, http.MethodDelete, "/api/v1/ads/999/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestHandler_CancelStartedAd(t *testing.T) {
	f := newHandlerFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/ads/book", bookBody("2025-06-01", "2025-06-03"))
	require.Equal(t, http.StatusCreated, w.Code)
	var booked AdView
	require.NoError(t, json.Unmarshal(env.Data, &booked))

	w, env = f.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/ads/%d/cancel", booked.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ALREADY_STARTED", env.Error.Code)
}

func TestHandler_Counters(t *testing.T) {
	f := newHandlerFixture(t)

	_, env := f.do(t, http.MethodPost, "/api/v1/ads/book", bookBody("2025-06-01", "2025-06-07"))
	var booked AdView
	require.NoError(t, json.Unmarshal(env.Data, &booked))

	w, env := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/ads/%d/click", booked.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_clicks":1}`, string(env.Data))

	w, _ = f.do(t, http.MethodPost, "/api/v1/ads/12345/click", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = f.do(t, http.MethodPost, "/api/v1/ads/impressions", map[string]any{"ad_ids": []int64{booked.ID, 777}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tracked":2}`, string(env.Data))

	w, _ = f.do(t, http.MethodPost, "/api/v1/ads/abc/click", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_PriceAndCalendar(t *testing.T) {
	f := newHandlerFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/ads/price", map[string]any{"slot_id": "left_1", "duration_weeks": 8})
	require.Equal(t, http.StatusOK, w.Code)
	var q PriceQuote
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.Equal(t, int64(32000), q.TotalPrice)

	w, _ = f.do(t, http.MethodPost, "/api/v1/ads/price", map[string]any{"slot_id": "left_1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = f.do(t, http.MethodGet, "/api/v1/ads/calendar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cal map[domain.SlotID]Availability
	require.NoError(t, json.Unmarshal(env.Data, &cal))
	assert.Len(t, cal, len(domain.AllSlots))
	assert.Equal(t, 100.0, cal[domain.SlotLeft1].AvailabilityPercent)
}

func TestHandler_ExportMyAds(t *testing.T) {
	f := newHandlerFixture(t)
	_, _ = f.do(t, http.MethodPost, "/api/v1/ads/book", bookBody("2025-06-01", "2025-06-07"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ads/my/export", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "my-ads.csv")
	assert.Contains(t, w.Body.String(), "Ship faster")
}
