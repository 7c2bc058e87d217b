package v1

import (
	"net/http"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/service"
	"github.com/gin-gonic/gin"
)

// BrokerAccountHandler serves masked broker accounts plus the step-up
// challenge/reveal pair for the plaintext credentials.
type BrokerAccountHandler struct {
	service service.StepUpService
	log     *logger.Logger
}

func NewBrokerAccountHandler(service service.StepUpService, log *logger.Logger) *BrokerAccountHandler {
	return &BrokerAccountHandler{service: service, log: log}
}

func (h *BrokerAccountHandler) ListBrokerAccounts(c *gin.Context) {
	resp, err := h.service.ListBrokerAccounts(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": resp})
}

func (h *BrokerAccountHandler) GetBrokerAccount(c *gin.Context) {
	resp, err := h.service.GetBrokerAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Challenge re-verifies the caller's password and mints a short-lived
// grant scoped to one purpose and one resource.
func (h *BrokerAccountHandler) Challenge(c *gin.Context) {
	var req dto.StepUpChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Challenge(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed step-up challenge", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BrokerAccountHandler) RevealCredentials(c *gin.Context) {
	resp, err := h.service.RevealCredentials(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
