package handler

import (
	"net/http"
	"strconv"
	"strings"

	"fleet-tracker/internal/usecase/device"
	"fleet-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	service *device.Service
}

func NewDeviceHandler(service *device.Service) *DeviceHandler {
	return &DeviceHandler{service: service}
}

func (h *DeviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices")
	{
		devices.GET("", h.ListDevices)
		devices.GET("/positions", h.Positions)
		devices.GET("/:id", h.GetDevice)
		devices.GET("/:id/telemetry", h.Telemetry)
		devices.GET("/:id/messages", h.Messages)
		devices.POST("/:id/assign-driver", h.AssignDriver)
		devices.POST("/:id/unassign-driver", h.UnassignDriver)
		devices.DELETE("/:id", h.DeleteDevice)
	}
}

func (h *DeviceHandler) ListDevices(c *gin.Context) {
	devices, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Devices retrieved successfully", devices)
}

func (h *DeviceHandler) Positions(c *gin.Context) {
	positions, err := h.service.Positions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Positions retrieved successfully", positions)
}

func (h *DeviceHandler) GetDevice(c *gin.Context) {
	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	d, err := h.service.Get(c.Request.Context(), deviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device retrieved successfully", d)
}

func (h *DeviceHandler) Telemetry(c *gin.Context) {
	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var fields []string
	if raw := c.Query("fields"); raw != "" {
		fields = strings.Split(raw, ",")
	}

	doc, err := h.service.Telemetry(c.Request.Context(), deviceID, fields)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Telemetry retrieved successfully", doc)
}

func (h *DeviceHandler) Messages(c *gin.Context) {
	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	from := queryInt64(c, "from")
	to := queryInt64(c, "to")
	limit, _ := strconv.Atoi(c.Query("limit"))

	docs, err := h.service.Messages(c.Request.Context(), deviceID, from, to, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Messages retrieved successfully", docs)
}

func (h *DeviceHandler) AssignDriver(c *gin.Context) {
	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req device.AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.AssignDriver(c.Request.Context(), deviceID, req.DriverID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Driver assigned successfully", nil)
}

func (h *DeviceHandler) UnassignDriver(c *gin.Context) {
	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.UnassignDriver(c.Request.Context(), deviceID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Driver unassigned successfully", nil)
}

func (h *DeviceHandler) DeleteDevice(c *gin.Context) {
	deviceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), deviceID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device deleted successfully", nil)
}

// pathID parses a numeric path parameter, responding with 400 on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// queryInt64 parses an optional numeric query parameter.
func queryInt64(c *gin.Context, name string) *int64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
