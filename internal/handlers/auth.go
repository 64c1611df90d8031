package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rsawada/project-management-api/internal/dto"
	apierrors "github.com/rsawada/project-management-api/internal/errors"
	"github.com/rsawada/project-management-api/internal/middleware"
	"github.com/rsawada/project-management-api/internal/services"
)

// AuthHandler coordinates the registration and two-step login endpoints.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username    string `json:"username" binding:"required,min=3,max=150"`
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required"`
		PhoneNumber string `json:"phone_number"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailTaken):
			apierrors.Conflict(c, err.Error())
		case errors.Is(err, services.ErrFailedToCreateUser), errors.Is(err, services.ErrFailedToHashPassword):
			apierrors.InternalError(c, err.Error())
		default:
			apierrors.BadRequest(c, err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToRegisteredUserDTO(*user))
}

// Login is the first step of the two-factor flow: it checks the password and
// emails a one-time code. No tokens are issued here.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.authService.Login(services.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid username or password."})
			return
		}
		if errors.Is(err, services.ErrOTPDeliveryFailed) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to send OTP"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": result.UserID,
		"message": result.Message,
	})
}

// VerifyOTP is the second step: it exchanges a valid code for a token pair.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	type VerifyRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
		Code   string `json:"code" binding:"required"`
	}

	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	pair, err := h.authService.VerifyOTP(req.UserID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOTPExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "OTP expired"})
		case errors.Is(err, services.ErrOTPNotFound), errors.Is(err, services.ErrInvalidOTP):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid OTP"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// RefreshToken exchanges a refresh token for a new pair.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	type RefreshRequest struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	pair, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	c.JSON(http.StatusOK, dto.ToRegisteredUserDTO(*user))
}
