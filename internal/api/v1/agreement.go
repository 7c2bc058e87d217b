package v1

import (
	"net/http"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/service"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/gin-gonic/gin"
)

// AgreementHandler exposes lifecycle operations on signed agreements.
type AgreementHandler struct {
	service service.LifecycleService
	log     *logger.Logger
}

func NewAgreementHandler(service service.LifecycleService, log *logger.Logger) *AgreementHandler {
	return &AgreementHandler{service: service, log: log}
}

func (h *AgreementHandler) GetAgreement(c *gin.Context) {
	resp, err := h.service.GetAgreement(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AgreementHandler) ListAgreements(c *gin.Context) {
	filter := types.NewAgreementFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListAgreements(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AgreementHandler) PauseAgreement(c *gin.Context) {
	var req dto.PauseAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Pause(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.log.Error("Failed to pause agreement", "error", err, "agreement_id", c.Param("id"))
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AgreementHandler) ReactivateAgreement(c *gin.Context) {
	var req dto.ReactivateAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Reactivate(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.log.Error("Failed to reactivate agreement", "error", err, "agreement_id", c.Param("id"))
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AgreementHandler) RemoveAgreement(c *gin.Context) {
	var req dto.RemoveAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.Remove(c.Request.Context(), c.Param("id"), &req); err != nil {
		h.log.Error("Failed to remove agreement", "error", err, "agreement_id", c.Param("id"))
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "agreement removed successfully"})
}
