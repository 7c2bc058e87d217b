package v1

import (
	"net/http"
	"strconv"

	"github.com/brokerdesk/brokerdesk/internal/api/dto"
	ierr "github.com/brokerdesk/brokerdesk/internal/errors"
	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/service"
	"github.com/gin-gonic/gin"
)

// BillingHandler proxies the hosted Stripe surfaces.
type BillingHandler struct {
	service service.BillingService
	log     *logger.Logger
}

func NewBillingHandler(service service.BillingService, log *logger.Logger) *BillingHandler {
	return &BillingHandler{service: service, log: log}
}

func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateCheckout(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create checkout session", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BillingHandler) ListInvoices(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	resp, err := h.service.ListInvoices(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BillingHandler) OpenBillingPortal(c *gin.Context) {
	resp, err := h.service.OpenBillingPortal(c.Request.Context(), c.Query("return_url"))
	if err != nil {
		h.log.Error("Failed to open billing portal", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
