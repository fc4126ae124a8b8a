package integration

import (
	"errors"
	"net/http"
	"strconv"

	"trustmrr/internal/integrations"
	"trustmrr/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	service *Service
	log     zerolog.Logger
}

func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.POST("/integrations/:provider", h.Link)
	protected.POST("/companies/:id/refresh", h.Refresh)
	protected.GET("/companies/:id/integrations", h.Linked)
}

func viewer(c *gin.Context) Viewer {
	return Viewer{UserID: c.GetInt64("user_id"), Username: c.GetString("username")}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var pe *integrations.ProviderError
	switch {
	case errors.As(err, &pe):
		response.Error(c, http.StatusBadRequest, "PROVIDER_ERROR", pe.Message)
	case errors.Is(err, ErrProviderAuth):
		response.Error(c, http.StatusUnauthorized, "PROVIDER_AUTH_FAILED", "The provider rejected these credentials")
	case errors.Is(err, ErrUnknownProvider):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown provider")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNoCredentials):
		response.Error(c, http.StatusBadRequest, "NO_CREDENTIALS", "No stored credentials for this provider")
	case errors.Is(err, ErrCompanyNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Company not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You can only modify your own company")
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("integration request failed")
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// Link verifies provider credentials and stores them with the company.
// @Summary		Link a payment provider
// @Tags		Integrations
// @Security	BearerAuth
// @Param		provider	path	string		true	"stripe, razorpay or paypal"
// @Param		request		body	LinkRequest	true	"Credentials and company"
// @Success		200	{object}	VerificationResult
// @Failure		400	{object}	map[string]interface{}	"Missing fields or provider error"
// @Failure		401	{object}	map[string]interface{}	"Provider rejected the credentials"
// @Failure		403	{object}	map[string]interface{}	"Not the company owner"
// @Router		/integrations/{provider} [POST]
func (h *Handler) Link(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Link(c.Request.Context(), viewer(c), c.Param("provider"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Refresh re-fetches revenue for a company.
// @Summary		Re-verify a company
// @Tags		Integrations
// @Security	BearerAuth
// @Param		id		path	int				true	"Company ID"
// @Param		request	body	RefreshRequest	true	"Provider and optional new credentials"
// @Success		200	{object}	VerificationResult
// @Router		/companies/{id}/refresh [POST]
func (h *Handler) Refresh(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid company id")
		return
	}
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Refresh(c.Request.Context(), viewer(c), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) Linked(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid company id")
		return
	}

	list, err := h.service.Linked(c.Request.Context(), viewer(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}
