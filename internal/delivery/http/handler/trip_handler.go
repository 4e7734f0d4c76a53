package handler

import (
	"net/http"
	"strconv"
	"time"

	domainTrip "fleet-tracker/internal/domain/trip"
	"fleet-tracker/internal/usecase/trip"
	"fleet-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

type TripHandler struct {
	service *trip.Service
}

func NewTripHandler(service *trip.Service) *TripHandler {
	return &TripHandler{service: service}
}

func (h *TripHandler) RegisterRoutes(router *gin.RouterGroup) {
	trips := router.Group("/trips")
	{
		trips.GET("", h.ListTrips)
		trips.GET("/stats", h.Stats)
		trips.GET("/:id", h.GetTrip)
		trips.GET("/:id/route", h.Route)
	}
}

func (h *TripHandler) ListTrips(c *gin.Context) {
	filter := tripFilter(c)

	resp, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trips retrieved successfully", resp)
}

func (h *TripHandler) Stats(c *gin.Context) {
	filter := tripFilter(c)

	resp, err := h.service.Stats(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip statistics retrieved successfully", resp)
}

func (h *TripHandler) GetTrip(c *gin.Context) {
	tripID, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.Get(c.Request.Context(), tripID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip retrieved successfully", resp)
}

func (h *TripHandler) Route(c *gin.Context) {
	tripID, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.Route(c.Request.Context(), tripID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip route retrieved successfully", resp)
}

// tripFilter builds a trip filter from query parameters. Time bounds are Unix
// timestamps in seconds.
func tripFilter(c *gin.Context) *domainTrip.Filter {
	filter := &domainTrip.Filter{
		DeviceID: queryInt64(c, "device_id"),
		DriverID: queryInt64(c, "driver_id"),
	}
	if from := queryInt64(c, "from"); from != nil {
		t := time.Unix(*from, 0)
		filter.From = &t
	}
	if to := queryInt64(c, "to"); to != nil {
		t := time.Unix(*to, 0)
		filter.To = &t
	}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.PageSize, _ = strconv.Atoi(c.Query("page_size"))
	return filter
}
