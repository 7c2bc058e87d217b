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

// CatalogHandler manages the service definition catalog. Reads are open
// to any authenticated user; writes are routed through staff groups.
type CatalogHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewCatalogHandler(service service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, log: log}
}

func (h *CatalogHandler) CreateServiceDefinition(c *gin.Context) {
	var req dto.CreateServiceDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateServiceDefinition(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create service definition", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHandler) GetServiceDefinition(c *gin.Context) {
	resp, err := h.service.GetServiceDefinition(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) ListServiceDefinitions(c *gin.Context) {
	filter := types.NewServiceDefinitionFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListServiceDefinitions(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) UpdateServiceDefinition(c *gin.Context) {
	var req dto.UpdateServiceDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateServiceDefinition(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.log.Error("Failed to update service definition", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) DeleteServiceDefinition(c *gin.Context) {
	if err := h.service.DeleteServiceDefinition(c.Request.Context(), c.Param("id")); err != nil {
		h.log.Error("Failed to delete service definition", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "service definition deleted successfully"})
}
