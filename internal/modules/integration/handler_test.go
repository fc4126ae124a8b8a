package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"trustmrr/internal/domain"
	"trustmrr/internal/integrations"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(f *fixture, as Viewer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	protected := r.Group("/api/v1")
	protected.Use(func(c *gin.Context) {
		c.Set("user_id", as.UserID)
		c.Set("username", as.Username)
		c.Next()
	})
	NewHandler(f.svc, zerolog.Nop()).RegisterRoutes(protected)
	return r
}

func post(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Link(t *testing.T) {
	f := newFixture(t)
	r := newRouter(f, f.jane)

	w := post(r, "/api/v1/integrations/stripe", gin.H{"api_key": "sk_test", "company_name": "Acme"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"is_verified":true`)

	w = post(r, "/api/v1/integrations/stripe", gin.H{"company_name": "Acme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")

	w = post(r, "/api/v1/integrations/bitcoin", gin.H{"api_key": "x", "company_name": "Acme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.razorpay.err = integrations.ErrAuthFailed
	w = post(r, "/api/v1/integrations/razorpay", gin.H{"api_key": "k", "api_secret": "s", "company_name": "Acme"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "PROVIDER_AUTH_FAILED")

	f.razorpay.err = &integrations.ProviderError{Provider: domain.ProviderRazorpay, Message: "The api server is down"}
	w = post(r, "/api/v1/integrations/razorpay", gin.H{"api_key": "k", "api_secret": "s", "company_name": "Acme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "The api server is down")
}

func TestHandler_RefreshForbidden(t *testing.T) {
	f := newFixture(t)
	c := f.ownedCompany(t, f.jane)

	w := post(newRouter(f, f.bob), fmt.Sprintf("/api/v1/companies/%d/refresh", c.ID), gin.H{"provider": "stripe"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = post(newRouter(f, f.jane), "/api/v1/companies/999/refresh", gin.H{"provider": "stripe"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
