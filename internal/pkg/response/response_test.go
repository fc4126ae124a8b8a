package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/ok", func(c *gin.Context) { Success(c, http.StatusOK, []int{}) })
	r.GET("/bad", func(c *gin.Context) {
		c.Set("request_id", "req-1")
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", map[string]string{"title": "required"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "req-1", env.Error.RequestID)
	assert.Equal(t, map[string]any{"title": "required"}, env.Error.Details)
}
