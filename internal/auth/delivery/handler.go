package delivery

import (
	"errors"
	"io"
	"net/http"

	authdomain "focusmeet-backend/internal/auth/domain"
	authdto "focusmeet-backend/internal/auth/dto"
	"focusmeet-backend/internal/auth/usecase"
	"focusmeet-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves the profile and device registration endpoints
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
}

func NewAuthHandler(authUsecase usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

// EnsureUser upserts the caller's profile
// POST /api/users/ensure
func (h *AuthHandler) EnsureUser(c *gin.Context) {
	var req authdto.EnsureUserRequest
	// the body is optional
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apperror.Respond(c, apperror.Validation("invalid request body"))
		return
	}

	identity := &authdomain.Identity{
		UID:   c.GetString(ContextUserID),
		Email: c.GetString(ContextUserEmail),
	}
	resp, err := h.authUsecase.EnsureUser(c.Request.Context(), identity, &req)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterFCMToken stores the caller's device token
// POST /api/fcm/register
func (h *AuthHandler) RegisterFCMToken(c *gin.Context) {
	var req authdto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation("token is required"))
		return
	}
	if err := h.authUsecase.RegisterDevice(c.Request.Context(), c.GetString(ContextUserID), &req); err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UnregisterFCMToken removes one of the caller's device tokens
// DELETE /api/fcm/:token
func (h *AuthHandler) UnregisterFCMToken(c *gin.Context) {
	if err := h.authUsecase.UnregisterDevice(c.Request.Context(), c.GetString(ContextUserID), c.Param("token")); err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
