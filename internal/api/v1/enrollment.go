package v1

import (
	"net/http"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/service"
	"github.com/gin-gonic/gin"
)

// EnrollmentHandler drives the enrollment wizard. The session is the
// unit of state; every endpoint below mutates it and returns the fresh
// view so the client never has to guess the server's idea of progress.
type EnrollmentHandler struct {
	service service.EnrollmentService
	log     *logger.Logger
}

func NewEnrollmentHandler(service service.EnrollmentService, log *logger.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{service: service, log: log}
}

func (h *EnrollmentHandler) StartEnrollment(c *gin.Context) {
	var req dto.StartEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.StartEnrollment(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to start enrollment", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *EnrollmentHandler) GetSession(c *gin.Context) {
	resp, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EnrollmentHandler) RecordScroll(c *gin.Context) {
	var req dto.RecordScrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.RecordScroll(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EnrollmentHandler) SetReadConfirmation(c *gin.Context) {
	var req dto.SetReadConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SetReadConfirmation(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EnrollmentHandler) SetAcknowledgment(c *gin.Context) {
	var req dto.SetAcknowledgmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SetAcknowledgment(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EnrollmentHandler) SubmitBrokerCredentials(c *gin.Context) {
	var req dto.BrokerCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.SubmitBrokerCredentials(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EnrollmentHandler) AdvanceStep(c *gin.Context) {
	var req dto.AdvanceStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.AdvanceStep(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EnrollmentHandler) ConfirmEnrollment(c *gin.Context) {
	var req dto.ConfirmEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ConfirmEnrollment(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.log.Error("Failed to confirm enrollment", "error", err, "session_id", c.Param("id"))
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
