package v1

import (
	"net/http"

	"github.com/brokerdesk/brokerdesk/internal/logger"
	"github.com/brokerdesk/brokerdesk/internal/service"
	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/gin-gonic/gin"
)

// EntitlementHandler serves the resolved catalog page: per-service
// state and the action the UI should render for the caller.
type EntitlementHandler struct {
	service service.EntitlementService
	log     *logger.Logger
}

func NewEntitlementHandler(service service.EntitlementService, log *logger.Logger) *EntitlementHandler {
	return &EntitlementHandler{service: service, log: log}
}

func (h *EntitlementHandler) ListEntitlements(c *gin.Context) {
	resp, err := h.service.ListEntitlements(c.Request.Context(), types.GetUserID(c.Request.Context()))
	if err != nil {
		h.log.Error("Failed to list entitlements", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": resp})
}

func (h *EntitlementHandler) GetEntitlement(c *gin.Context) {
	resp, err := h.service.ComputeStatus(c.Request.Context(), types.GetUserID(c.Request.Context()), c.Param("service_name"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
