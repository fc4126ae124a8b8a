package ads

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"trustmrr/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxBookBody bounds a multipart booking request, image included.
const maxBookBody = 8 << 20

type Handler struct {
	service *Service
	ws      *WSHandler
	log     zerolog.Logger
}

func NewHandler(service *Service, ws *WSHandler, log zerolog.Logger) *Handler {
	return &Handler{service: service, ws: ws, log: log}
}

// RegisterRoutes mounts the public ads routes on public and the
// authenticated ones on protected.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	ads := public.Group("/ads")
	{
		ads.GET("/slots", h.Slots)
		ads.POST("/price", h.Price)
		ads.POST("/:id/click", h.Click)
		ads.POST("/impressions", h.Impressions)
		ads.GET("/calendar", h.Calendar)
		if h.ws != nil {
			ads.GET("/ws", h.ws.HandleWebSocket)
		}
	}

	mine := protected.Group("/ads")
	{
		mine.POST("/book", h.Book)
		mine.GET("/my", h.MyAds)
		mine.GET("/my/export", h.ExportMyAds)
		mine.DELETE("/:id/cancel", h.Cancel)
	}
}

// writeError maps service errors onto the response envelope.
func (h *Handler) writeError(c *gin.Context, err error) {
	var fields FieldErrors
	switch {
	case errors.As(err, &fields):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", map[string]string(fields))
	case errors.Is(err, ErrInvalidSlot):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid slot_id")
	case errors.Is(err, ErrInvalidDateRange), errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrSlotConflict):
		response.Error(c, http.StatusConflict, "SLOT_CONFLICT", "Slot is already booked for the selected dates")
	case errors.Is(err, ErrAdNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Ad not found")
	case errors.Is(err, ErrAlreadyStarted):
		response.Error(c, http.StatusBadRequest, "ALREADY_STARTED", "Cannot cancel ad that has already started")
	case errors.Is(err, ErrAlreadyCancelled):
		response.Error(c, http.StatusBadRequest, "ALREADY_CANCELLED", "Ad is already cancelled")
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("ads request failed")
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid ad id")
		return 0, false
	}
	return id, true
}

func (h *Handler) Slots(c *gin.Context) {
	slots, err := h.service.Slots(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, slots)
}

// Price quotes a booking without creating it.
// @Summary		Quote an ad slot
// @Tags		Ads
// @Param		request	body	PriceRequest	true	"Slot, weeks and optional start date"
// @Success		200	{object}	PriceQuote
// @Router		/ads/price [POST]
func (h *Handler) Price(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	quote, err := h.service.Price(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, quote)
}

// Book reserves a slot for the caller. Accepts JSON or multipart with an
// optional "image" file.
// @Summary		Book an ad slot
// @Tags		Ads
// @Security	BearerAuth
// @Accept		json,mpfd
// @Param		request	body	BookRequest	true	"Booking"
// @Success		201	{object}	AdView
// @Failure		400	{object}	map[string]interface{}	"Validation error"
// @Failure		409	{object}	map[string]interface{}	"Slot already booked for these dates"
// @Router		/ads/book [POST]
func (h *Handler) Book(c *gin.Context) {
	var req BookRequest
	image, err := h.bindBooking(c, &req)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	ad, err := h.service.Book(c.Request.Context(), c.GetInt64("user_id"), req, image)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, h.service.View(ad))
}

func (h *Handler) MyAds(c *gin.Context) {
	out, err := h.service.MyAds(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) ExportMyAds(c *gin.Context) {
	data, err := h.service.ExportMyAds(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="my-ads.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// @Summary		Cancel an ad before it starts
// @Tags		Ads
// @Security	BearerAuth
// @Param		id	path	int	true	"Ad ID"
// @Success		200	{object}	CancelResult
// @Router		/ads/{id}/cancel [DELETE]
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	res, err := h.service.Cancel(c.Request.Context(), id, c.GetInt64("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) Click(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	total, err := h.service.RecordClick(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"total_clicks": total})
}

func (h *Handler) Impressions(c *gin.Context) {
	var req ImpressionsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	tracked, err := h.service.RecordImpressions(c.Request.Context(), req.AdIDs)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tracked": tracked})
}

// Calendar returns per-slot availability for the next 90 days.
// @Summary		Slot availability calendar
// @Tags		Ads
// @Router		/ads/calendar [GET]
func (h *Handler) Calendar(c *gin.Context) {
	cal, err := h.service.Calendar(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, cal)
}
