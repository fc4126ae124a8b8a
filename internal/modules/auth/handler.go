package auth

import (
	"errors"
	"net/http"

	"trustmrr/internal/domain"
	"trustmrr/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

// NewHandler creates a new auth handler with injected service
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.GET("/health", h.Health)
	v1.POST("/signup", h.Signup)
	v1.POST("/login", h.Login)
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/profile", h.Profile)
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Health reports that the API is up.
// @Summary		Health check
// @Tags		System
// @Success		200	{object}	map[string]interface{}
// @Router		/health [GET]
func (h *Handler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "ok", "message": "API is working"})
}

// Signup registers a new user.
// @Summary		Register a user
// @Tags		Auth
// @Param		request	body	SignupRequest	true	"username, email, password"
// @Success		200	{object}	map[string]interface{}	"user_id of the new user"
// @Failure		400	{object}	map[string]interface{}	"Missing fields, or username/email already taken"
// @Router		/signup [POST]
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "All fields are required")
		case errors.Is(err, ErrUsernameExists):
			response.Error(c, http.StatusBadRequest, "USERNAME_EXISTS", "Username already exists")
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Error(c, http.StatusBadRequest, "EMAIL_EXISTS", "Email already exists")
		default:
			response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to create user")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "User created successfully",
		"user_id": user.ID,
	})
}

// Login exchanges a username (or email) and password for an access token.
// @Summary		Log in
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"username or email, password"
// @Success		200	{object}	LoginResponse
// @Failure		401	{object}	map[string]interface{}	"Wrong username or password"
// @Router		/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Username or password is incorrect")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.service.TokenTTL().Seconds()),
		User:        toUserResponse(user),
	})
}

// Profile returns the current user.
// @Summary		Current user
// @Tags		Auth
// @Security	BearerAuth
// @Success		200	{object}	UserResponse
// @Failure		401	{object}	map[string]interface{}
// @Router		/profile [GET]
func (h *Handler) Profile(c *gin.Context) {
	userID := c.GetInt64("user_id")

	user, err := h.service.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profile")
		return
	}

	response.Success(c, http.StatusOK, toUserResponse(user))
}
