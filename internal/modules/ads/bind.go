package ads

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// bindBooking reads a booking from JSON or from a multipart form. The
// returned file header is nil unless an "image" part was sent.
func (h *Handler) bindBooking(c *gin.Context, req *BookRequest) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, c.ShouldBindJSON(req)
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBookBody)
	if err := c.ShouldBindWith(req, binding.FormMultipart); err != nil {
		return nil, err
	}

	image, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return image, nil
}
