package handler

import (
	"net/http"

	"fleet-tracker/internal/usecase/driver"
	"fleet-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DriverHandler struct {
	service *driver.Service
}

func NewDriverHandler(service *driver.Service) *DriverHandler {
	return &DriverHandler{service: service}
}

func (h *DriverHandler) RegisterRoutes(router *gin.RouterGroup) {
	drivers := router.Group("/drivers")
	{
		drivers.POST("", h.CreateDriver)
		drivers.GET("", h.ListDrivers)
		drivers.GET("/:id", h.GetDriver)
		drivers.PUT("/:id", h.UpdateDriver)
		drivers.DELETE("/:id", h.DeleteDriver)
		drivers.GET("/:id/assignments", h.Assignments)
	}
}

func (h *DriverHandler) CreateDriver(c *gin.Context) {
	var req driver.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	d, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Driver created successfully", d)
}

func (h *DriverHandler) ListDrivers(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	drivers, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Drivers retrieved successfully", drivers)
}

func (h *DriverHandler) GetDriver(c *gin.Context) {
	driverID, ok := pathID(c, "id")
	if !ok {
		return
	}

	d, err := h.service.Get(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Driver retrieved successfully", d)
}

func (h *DriverHandler) UpdateDriver(c *gin.Context) {
	driverID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req driver.UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	d, err := h.service.Update(c.Request.Context(), driverID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Driver updated successfully", d)
}

func (h *DriverHandler) DeleteDriver(c *gin.Context) {
	driverID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), driverID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Driver deleted successfully", nil)
}

func (h *DriverHandler) Assignments(c *gin.Context) {
	driverID, ok := pathID(c, "id")
	if !ok {
		return
	}

	assignments, err := h.service.Assignments(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Assignments retrieved successfully", assignments)
}
