package device

import (
	"context"
	"fmt"
	"time"

	domainDevice "fleet-tracker/internal/domain/device"
	domainDriver "fleet-tracker/internal/domain/driver"
	"fleet-tracker/internal/telematics"
	"fleet-tracker/pkg/errors"
)

// Upstream is the slice of the platform client the device service needs for
// proxy reads.
type Upstream interface {
	DeviceTelemetry(ctx context.Context, deviceID int64, fields []string, useCache bool) (telematics.Document, error)
	DeviceMessages(ctx context.Context, deviceID int64, from, to *int64, limit int) ([]telematics.Document, error)
}

// Service exposes locally mirrored devices and proxies live reads upstream.
type Service struct {
	deviceRepo     domainDevice.Repository
	driverRepo     domainDriver.Repository
	assignmentRepo domainDriver.AssignmentRepository
	upstream       Upstream
}

// NewService creates a device service.
func NewService(
	deviceRepo domainDevice.Repository,
	driverRepo domainDriver.Repository,
	assignmentRepo domainDriver.AssignmentRepository,
	upstream Upstream,
) *Service {
	return &Service{
		deviceRepo:     deviceRepo,
		driverRepo:     driverRepo,
		assignmentRepo: assignmentRepo,
		upstream:       upstream,
	}
}

// List returns every mirrored device with status re-derived at read time.
func (s *Service) List(ctx context.Context) ([]*DeviceResponse, error) {
	devices, err := s.deviceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]*DeviceResponse, len(devices))
	for i, d := range devices {
		responses[i] = toDeviceResponse(d, now)
	}
	return responses, nil
}

// Get returns one device by local id.
func (s *Service) Get(ctx context.Context, deviceID int64) (*DeviceResponse, error) {
	d, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return toDeviceResponse(d, time.Now()), nil
}

// Positions returns the devices that have reported a position, shaped for a
// live map view.
func (s *Service) Positions(ctx context.Context) ([]*PositionResponse, error) {
	devices, err := s.deviceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	positions := make([]*PositionResponse, 0, len(devices))
	for _, d := range devices {
		if !d.HasLocation() {
			continue
		}
		positions = append(positions, &PositionResponse{
			ID:              d.ID,
			Name:            d.Name,
			Latitude:        *d.LastLatitude,
			Longitude:       *d.LastLongitude,
			Speed:           d.LastSpeed,
			Status:          string(d.StatusAt(now)),
			CurrentDriverID: d.CurrentDriverID,
			LastMessageAt:   d.LastMessageAt,
		})
	}
	return positions, nil
}

// AssignDriver opens an assignment between the device and an active driver,
// closing any previous one.
func (s *Service) AssignDriver(ctx context.Context, deviceID, driverID int64) error {
	if _, err := s.deviceRepo.GetByID(ctx, deviceID); err != nil {
		return err
	}

	d, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}
	if !d.IsActive {
		return errors.ErrDriverInactive
	}

	return s.assignmentRepo.Assign(ctx, deviceID, driverID, time.Now())
}

// UnassignDriver closes the device's open assignment.
func (s *Service) UnassignDriver(ctx context.Context, deviceID int64) error {
	if _, err := s.deviceRepo.GetByID(ctx, deviceID); err != nil {
		return err
	}
	return s.assignmentRepo.Unassign(ctx, deviceID, time.Now())
}

// Telemetry proxies a live telemetry read for the device's upstream twin.
func (s *Service) Telemetry(ctx context.Context, deviceID int64, fields []string) (telematics.Document, error) {
	d, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	doc, err := s.upstream.DeviceTelemetry(ctx, d.ExternalID, fields, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch telemetry: %w", err)
	}
	return doc, nil
}

// Messages proxies a historical message read for the device's upstream twin.
func (s *Service) Messages(ctx context.Context, deviceID int64, from, to *int64, limit int) ([]telematics.Document, error) {
	d, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	docs, err := s.upstream.DeviceMessages(ctx, d.ExternalID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return docs, nil
}

// Delete soft-deletes the local mirror. The upstream device is untouched; a
// later sync pass will recreate the mirror if it still exists upstream.
func (s *Service) Delete(ctx context.Context, deviceID int64) error {
	return s.deviceRepo.Delete(ctx, deviceID)
}
