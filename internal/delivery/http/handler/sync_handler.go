package handler

import (
	"net/http"

	"fleet-tracker/internal/usecase/syncer"
	"fleet-tracker/internal/usecase/webhook"
	"fleet-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncer  *syncer.Service
	webhook *webhook.Service
}

func NewSyncHandler(syncService *syncer.Service, webhookService *webhook.Service) *SyncHandler {
	return &SyncHandler{
		syncer:  syncService,
		webhook: webhookService,
	}
}

func (h *SyncHandler) RegisterRoutes(router *gin.RouterGroup) {
	sync := router.Group("/sync")
	{
		sync.POST("/devices", h.SyncDevices)
		sync.POST("/trips", h.SyncTrips)
		sync.POST("/geofences", h.SyncGeofences)
	}
}

// RegisterWebhookRoute mounts the push endpoint the upstream stream POSTs to.
func (h *SyncHandler) RegisterWebhookRoute(router *gin.RouterGroup) {
	router.POST("/webhook/telematics", h.Webhook)
}

func (h *SyncHandler) SyncDevices(c *gin.Context) {
	summary, err := h.syncer.SyncDevices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device sync completed", summary)
}

func (h *SyncHandler) SyncTrips(c *gin.Context) {
	deviceID := queryInt64(c, "device_id")
	from := queryInt64(c, "from")
	to := queryInt64(c, "to")

	summary, err := h.syncer.SyncTrips(c.Request.Context(), deviceID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip sync completed", summary)
}

func (h *SyncHandler) SyncGeofences(c *gin.Context) {
	summary, err := h.syncer.SyncGeofences(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Geofence sync completed", summary)
}

// Webhook accepts pushed platform data. Bad records are reported in the
// summary; the endpoint itself answers 200 so the platform does not retry a
// payload that will never apply cleanly.
func (h *SyncHandler) Webhook(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	summary := h.webhook.Process(c.Request.Context(), payload)
	utils.SuccessResponse(c, http.StatusOK, "Webhook processed", summary)
}
