package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trustmrr/internal/middleware"
	"trustmrr/internal/pkg/jwt"
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

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: "file:auth_handler_" + t.Name() + "?mode=memory&cache=shared"}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	jwtSvc := jwt.New("test-secret", time.Hour)
	h := NewHandler(NewService(repository.NewUserRepository(db), jwtSvc, jwtSvc.TTL(), zerolog.Nop()))

	r := gin.New()
	v1 := r.Group("/api/v1")
	h.RegisterPublicRoutes(v1)
	protected := v1.Group("/")
	protected.Use(middleware.JWTAuth(jwtSvc))
	h.RegisterProtectedRoutes(protected)
	return r
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_SignupLoginProfile(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/signup", "", gin.H{"username": "jane", "email": "jane@example.com", "password": "pw123456"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"user_id":1`)

	w = doJSON(r, http.MethodPost, "/api/v1/signup", "", gin.H{"username": "jane", "email": "other@example.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username already exists")

	w = doJSON(r, http.MethodPost, "/api/v1/signup", "", gin.H{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "All fields are required")

	w = doJSON(r, http.MethodPost, "/api/v1/login", "", gin.H{"username": "jane", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/login", "", gin.H{"email": "jane@example.com", "password": "pw123456"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Data LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Data.AccessToken)
	assert.Equal(t, int64(3600), login.Data.ExpiresIn)

	w = doJSON(r, http.MethodGet, "/api/v1/profile", login.Data.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Data UserResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, UserResponse{ID: 1, Username: "jane", Email: "jane@example.com"}, profile.Data)

	w = doJSON(r, http.MethodGet, "/api/v1/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Health(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
