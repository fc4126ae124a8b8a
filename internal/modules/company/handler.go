package company

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"trustmrr/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog"
)

const maxUpdateBody = 12 << 20

type Handler struct {
	service *Service
	log     zerolog.Logger
}

func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterRoutes mounts the read routes on optional, which should resolve
// the user when a token is sent, and the owner routes on protected.
func (h *Handler) RegisterRoutes(optional, protected *gin.RouterGroup) {
	optional.GET("/companies", h.List)
	optional.GET("/companies/:id", h.Get)

	companies := protected.Group("/companies")
	{
		companies.POST("", h.Create)
		companies.PUT("/:id/update", h.Update)
		companies.DELETE("/:id/delete", h.Delete)
	}
}

// ViewerFrom reads the authenticated user, if any, from the gin context.
func ViewerFrom(c *gin.Context) Viewer {
	return Viewer{UserID: c.GetInt64("user_id"), Username: c.GetString("username")}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var fields FieldErrors
	switch {
	case errors.As(err, &fields):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", map[string]string(fields))
	case errors.Is(err, ErrInvalidCategory):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid category")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrCompanyNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Company not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You can only modify your own company")
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("company request failed")
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid company id")
		return 0, false
	}
	return id, true
}

// List returns the public leaderboard.
// @Summary		Leaderboard
// @Tags		Companies
// @Param		category	query	string	false	"Category filter, e.g. saas"
// @Success		200	{array}		CompanyResponse
// @Failure		400	{object}	map[string]interface{}	"Unknown category"
// @Router		/companies [GET]
func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), c.Query("category"), ViewerFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// Get returns one company with its rank.
// @Summary		Company detail
// @Tags		Companies
// @Param		id	path	int	true	"Company ID"
// @Success		200	{object}	CompanyResponse
// @Failure		404	{object}	map[string]interface{}
// @Router		/companies/{id} [GET]
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	company, err := h.service.Get(c.Request.Context(), id, ViewerFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, company)
}

// Create adds a manual leaderboard entry owned by the caller.
// @Summary		Add a company
// @Tags		Companies
// @Security	BearerAuth
// @Param		request	body	CreateRequest	true	"Company"
// @Success		201	{object}	CompanyResponse
// @Failure		400	{object}	map[string]interface{}
// @Router		/companies [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	company, err := h.service.Create(c.Request.Context(), ViewerFrom(c), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, company)
}

// Update edits a company the caller owns.
// @Summary		Update a company
// @Tags		Companies
// @Security	BearerAuth
// @Accept		json,mpfd
// @Param		id	path	int	true	"Company ID"
// @Param		logo	formData	file	false	"Logo image"
// @Param		founder_photo	formData	file	false	"Founder photo"
// @Success		200	{object}	CompanyResponse
// @Failure		403	{object}	map[string]interface{}	"Not the owner"
// @Router		/companies/{id}/update [PUT]
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateRequest
	files, err := bindUpdate(c, &req)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	company, err := h.service.Update(c.Request.Context(), id, ViewerFrom(c), req, files)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, company)
}

// Delete removes a company the caller owns.
// @Summary		Delete a company
// @Tags		Companies
// @Security	BearerAuth
// @Param		id	path	int	true	"Company ID"
// @Success		204
// @Failure		403	{object}	map[string]interface{}	"Not the owner"
// @Router		/companies/{id}/delete [DELETE]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, ViewerFrom(c)); err != nil {
		h.writeError(c, err)
		return
	}
	response.NoContent(c)
}

func bindUpdate(c *gin.Context, req *UpdateRequest) (Uploads, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return Uploads{}, c.ShouldBindJSON(req)
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpdateBody)
	if err := c.ShouldBindWith(req, binding.FormMultipart); err != nil {
		return Uploads{}, err
	}

	var files Uploads
	var err error
	if files.Logo, err = optionalFile(c, "logo"); err != nil {
		return Uploads{}, err
	}
	if files.FounderPhoto, err = optionalFile(c, "founder_photo"); err != nil {
		return Uploads{}, err
	}
	return files, nil
}

func optionalFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	return fh, err
}
