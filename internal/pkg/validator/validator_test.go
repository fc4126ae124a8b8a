package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Title string `json:"title" validate:"required,max=5"`
	Link  string `json:"target_url" validate:"required,httpurl"`
}

func TestValidate_ReportsJSONNames(t *testing.T) {
	assert.Nil(t, Validate(sample{Title: "ok", Link: "https://example.com"}))

	errs := Validate(sample{Title: "too long", Link: "ftp://example.com"})
	assert.Equal(t, map[string]string{"title": "max", "target_url": "httpurl"}, errs)
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("http://a.io/path?q=1"))
	assert.False(t, IsHTTPURL("example.com"))
	assert.False(t, IsHTTPURL("javascript:alert(1)"))
}
