package handler

import (
	"net/http"
	"strconv"

	"fleet-tracker/internal/usecase/geofence"
	"fleet-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type GeofenceHandler struct {
	service *geofence.Service
}

func NewGeofenceHandler(service *geofence.Service) *GeofenceHandler {
	return &GeofenceHandler{service: service}
}

func (h *GeofenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	geofences := router.Group("/geofences")
	{
		geofences.POST("", h.CreateGeofence)
		geofences.GET("", h.ListGeofences)
		geofences.GET("/hit-test", h.HitTest)
		geofences.GET("/:id", h.GetGeofence)
		geofences.PUT("/:id", h.UpdateGeofence)
		geofences.DELETE("/:id", h.DeleteGeofence)
	}
}

func (h *GeofenceHandler) CreateGeofence(c *gin.Context) {
	var req geofence.CreateGeofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	g, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Geofence created successfully", g)
}

func (h *GeofenceHandler) ListGeofences(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	geofences, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Geofences retrieved successfully", geofences)
}

func (h *GeofenceHandler) HitTest(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lon, lonErr := strconv.ParseFloat(c.Query("lon"), 64)
	if latErr != nil || lonErr != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "lat and lon query parameters are required")
		return
	}

	resp, err := h.service.HitTest(c.Request.Context(), lat, lon)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Hit test completed", resp)
}

func (h *GeofenceHandler) GetGeofence(c *gin.Context) {
	geofenceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	g, err := h.service.Get(c.Request.Context(), geofenceID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Geofence retrieved successfully", g)
}

func (h *GeofenceHandler) UpdateGeofence(c *gin.Context) {
	geofenceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req geofence.UpdateGeofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	g, err := h.service.Update(c.Request.Context(), geofenceID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Geofence updated successfully", g)
}

func (h *GeofenceHandler) DeleteGeofence(c *gin.Context) {
	geofenceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), geofenceID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Geofence deleted successfully", nil)
}
