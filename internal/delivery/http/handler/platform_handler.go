package handler

import (
	"net/http"

	"fleet-tracker/internal/usecase/platform"
	"fleet-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type PlatformHandler struct {
	service *platform.Service
}

func NewPlatformHandler(service *platform.Service) *PlatformHandler {
	return &PlatformHandler{service: service}
}

func (h *PlatformHandler) RegisterRoutes(router *gin.RouterGroup) {
	p := router.Group("/platform")
	{
		p.GET("/calculators", h.ListCalculators)
		p.POST("/calculators", h.ProvisionCalculator)
		p.DELETE("/calculators/:id", h.DeleteCalculator)

		p.GET("/streams", h.ListStreams)
		p.POST("/streams", h.ProvisionStream)
		p.DELETE("/streams/:id", h.DeleteStream)
	}
}

func (h *PlatformHandler) ListCalculators(c *gin.Context) {
	calcs, err := h.service.ListCalculators(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Calculators retrieved successfully", calcs)
}

type provisionCalculatorRequest struct {
	Name string `json:"name"`
}

func (h *PlatformHandler) ProvisionCalculator(c *gin.Context) {
	var req provisionCalculatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	calcID, err := h.service.ProvisionTripCalculator(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Calculator provisioned", gin.H{"calc_id": calcID})
}

func (h *PlatformHandler) DeleteCalculator(c *gin.Context) {
	calcID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteCalculator(c.Request.Context(), calcID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Calculator deleted successfully", nil)
}

func (h *PlatformHandler) ListStreams(c *gin.Context) {
	streams, err := h.service.ListStreams(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Streams retrieved successfully", streams)
}

type provisionStreamRequest struct {
	Name       string `json:"name"`
	WebhookURL string `json:"webhook_url" binding:"required"`
}

func (h *PlatformHandler) ProvisionStream(c *gin.Context) {
	var req provisionStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	streamID, err := h.service.ProvisionWebhookStream(c.Request.Context(), req.Name, req.WebhookURL)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Stream provisioned", gin.H{"stream_id": streamID})
}

func (h *PlatformHandler) DeleteStream(c *gin.Context) {
	streamID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteStream(c.Request.Context(), streamID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Stream deleted successfully", nil)
}
