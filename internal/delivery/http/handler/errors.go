package handler

import (
	"errors"
	"net/http"

	domainDevice "fleet-tracker/internal/domain/device"
	domainDriver "fleet-tracker/internal/domain/driver"
	domainGeofence "fleet-tracker/internal/domain/geofence"
	domainTrip "fleet-tracker/internal/domain/trip"
	"fleet-tracker/internal/telematics"
	pkgerrors "fleet-tracker/pkg/errors"
	"fleet-tracker/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps domain and upstream errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) && appErr.Code == "VALIDATION_ERROR" {
		utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
		return
	}

	switch {
	case errors.Is(err, domainDevice.ErrDeviceNotFound),
		errors.Is(err, domainDriver.ErrDriverNotFound),
		errors.Is(err, domainTrip.ErrTripNotFound),
		errors.Is(err, domainGeofence.ErrGeofenceNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())

	case errors.Is(err, domainDriver.ErrRFIDCardInUse):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())

	case errors.Is(err, domainDriver.ErrNoOpenAssignment),
		errors.Is(err, domainTrip.ErrNoExternalID),
		errors.Is(err, pkgerrors.ErrDriverInactive),
		errors.Is(err, pkgerrors.ErrInvalidInput):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, pkgerrors.ErrCalculatorNotConfigured):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())

	case errors.Is(err, telematics.ErrAuthentication),
		errors.Is(err, telematics.ErrForbidden):
		utils.ErrorResponse(c, http.StatusBadGateway, "upstream platform rejected our credentials")

	case errors.Is(err, telematics.ErrRateLimited):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "upstream platform is rate limiting requests")

	case errors.Is(err, telematics.ErrServer), errors.Is(err, telematics.ErrUpstream):
		utils.ErrorResponse(c, http.StatusBadGateway, "upstream platform error")

	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}
