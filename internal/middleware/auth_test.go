package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trustmrr/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := jwt.New("test-secret-123", time.Hour)

	valid, err := svc.GenerateToken(42, "jane")
	require.NoError(t, err)
	expired, err := jwt.New("test-secret-123", -time.Minute).GenerateToken(42, "jane")
	require.NoError(t, err)
	foreign, err := jwt.New("other-secret", time.Hour).GenerateToken(42, "jane")
	require.NoError(t, err)

	router := gin.New()
	router.Use(JWTAuth(svc))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetInt64(ContextUserID),
			"username": c.GetString(ContextUsername),
		})
	})

	cases := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, `"username":"jane"`},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, `"user_id":42`},
		{"missing header", "", http.StatusUnauthorized, "AUTH_HEADER_MISSING"},
		{"basic auth", "Basic dGVzdA==", http.StatusUnauthorized, "INVALID_AUTH_FORMAT"},
		{"empty bearer", "Bearer   ", http.StatusUnauthorized, "INVALID_AUTH_FORMAT"},
		{"garbage", "Bearer invalid-jwt-here", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"signed elsewhere", "Bearer " + foreign, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantBody)
		})
	}
}

func TestOptionalJWTAuth(t *testing.T) {
	jwtService := jwt.New("secret", 1*time.Hour)
	token, _ := jwtService.GenerateToken(7, "bob")

	router := gin.New()
	router.Use(OptionalJWTAuth(jwtService))
	router.GET("/public", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64("user_id")})
	})

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"anonymous", "", `{"user_id":0}`},
		{"garbage token", "Bearer nope", `{"user_id":0}`},
		{"valid token", "Bearer " + token, `{"user_id":7}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/public", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tc.want, w.Body.String())
		})
	}
}
