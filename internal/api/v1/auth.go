package v1

import (
	"net/http"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler exposes sign up, login and password recovery.
type AuthHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewAuthHandler(service service.UserService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{service: service, log: log}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SignUp(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to sign up", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) RequestPasswordRecovery(c *gin.Context) {
	var req dto.PasswordRecoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.RequestPasswordRecovery(c.Request.Context(), &req); err != nil {
		h.log.Error("Failed to start password recovery", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
