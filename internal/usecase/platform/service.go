package platform

import (
	"context"
	"fmt"

	domainDevice "fleet-tracker/internal/domain/device"
	"fleet-tracker/internal/logger"
	"fleet-tracker/internal/telematics"

	"go.uber.org/zap"
)

// Upstream is the slice of the platform client used for provisioning.
type Upstream interface {
	ListCalculators(ctx context.Context) ([]telematics.Document, error)
	CreateTripCalculator(ctx context.Context, name string) (telematics.Document, error)
	AssignDevicesToCalculator(ctx context.Context, calcID int64, deviceIDs []int64) error
	DeleteCalculator(ctx context.Context, calcID int64) error

	CreateWebhookStream(ctx context.Context, name, webhookURL string) (telematics.Document, error)
	AssignDevicesToStream(ctx context.Context, streamID int64, deviceIDs []int64) error
	ListStreams(ctx context.Context) ([]telematics.Document, error)
	DeleteStream(ctx context.Context, streamID int64) error
}

// Service provisions the upstream resources the tracker depends on: the trip
// calculator that segments position streams into trips, and the webhook
// stream that pushes device data back to us.
type Service struct {
	upstream   Upstream
	deviceRepo domainDevice.Repository
}

// NewService creates a provisioning service.
func NewService(upstream Upstream, deviceRepo domainDevice.Repository) *Service {
	return &Service{
		upstream:   upstream,
		deviceRepo: deviceRepo,
	}
}

// ListCalculators returns the calculators configured upstream.
func (s *Service) ListCalculators(ctx context.Context) ([]telematics.Document, error) {
	return s.upstream.ListCalculators(ctx)
}

// ProvisionTripCalculator creates a trip calculator upstream and attaches
// every known device to it. Returns the new calculator id for the operator
// to put into the configuration.
func (s *Service) ProvisionTripCalculator(ctx context.Context, name string) (int64, error) {
	doc, err := s.upstream.CreateTripCalculator(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create calculator: %w", err)
	}

	calcID, ok := doc.Int64("id")
	if !ok {
		return 0, fmt.Errorf("calculator created without an id")
	}

	if err := s.assignAllDevices(ctx, func(ids []int64) error {
		return s.upstream.AssignDevicesToCalculator(ctx, calcID, ids)
	}); err != nil {
		logger.Warn("calculator created but device assignment failed",
			zap.Int64("calc_id", calcID),
			zap.Error(err),
		)
	}

	return calcID, nil
}

// DeleteCalculator removes an upstream calculator.
func (s *Service) DeleteCalculator(ctx context.Context, calcID int64) error {
	return s.upstream.DeleteCalculator(ctx, calcID)
}

// ListStreams returns the streams configured upstream.
func (s *Service) ListStreams(ctx context.Context) ([]telematics.Document, error) {
	return s.upstream.ListStreams(ctx)
}

// ProvisionWebhookStream creates an HTTP stream pointed at the given webhook
// URL and subscribes every known device to it.
func (s *Service) ProvisionWebhookStream(ctx context.Context, name, webhookURL string) (int64, error) {
	if webhookURL == "" {
		return 0, fmt.Errorf("webhook url is required")
	}

	doc, err := s.upstream.CreateWebhookStream(ctx, name, webhookURL)
	if err != nil {
		return 0, fmt.Errorf("failed to create stream: %w", err)
	}

	streamID, ok := doc.Int64("id")
	if !ok {
		return 0, fmt.Errorf("stream created without an id")
	}

	if err := s.assignAllDevices(ctx, func(ids []int64) error {
		return s.upstream.AssignDevicesToStream(ctx, streamID, ids)
	}); err != nil {
		logger.Warn("stream created but device subscription failed",
			zap.Int64("stream_id", streamID),
			zap.Error(err),
		)
	}

	return streamID, nil
}

// DeleteStream removes an upstream stream.
func (s *Service) DeleteStream(ctx context.Context, streamID int64) error {
	return s.upstream.DeleteStream(ctx, streamID)
}

func (s *Service) assignAllDevices(ctx context.Context, assign func([]int64) error) error {
	devices, err := s.deviceRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return nil
	}

	ids := make([]int64, len(devices))
	for i, d := range devices {
		ids[i] = d.ExternalID
	}
	return assign(ids)
}
