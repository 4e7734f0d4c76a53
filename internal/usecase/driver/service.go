package driver

import (
	"context"
	"errors"

	domainDriver "fleet-tracker/internal/domain/driver"
	pkgerrors "fleet-tracker/pkg/errors"
	"fleet-tracker/pkg/utils"
)

// Service manages operator-created drivers and their assignment history.
type Service struct {
	driverRepo     domainDriver.Repository
	assignmentRepo domainDriver.AssignmentRepository
}

// NewService creates a driver service.
func NewService(driverRepo domainDriver.Repository, assignmentRepo domainDriver.AssignmentRepository) *Service {
	return &Service{
		driverRepo:     driverRepo,
		assignmentRepo: assignmentRepo,
	}
}

// Create registers a new driver. The RFID card, when given, must not belong
// to another driver.
func (s *Service) Create(ctx context.Context, req *CreateDriverRequest) (*DriverResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, pkgerrors.NewAppError("VALIDATION_ERROR", "invalid driver data", err)
	}

	if req.RFIDCard != nil && *req.RFIDCard != "" {
		if err := s.checkRFIDCardFree(ctx, *req.RFIDCard, 0); err != nil {
			return nil, err
		}
	}

	d := &domainDriver.Driver{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		LicenseNumber: req.LicenseNumber,
		RFIDCard:      req.RFIDCard,
		Notes:         req.Notes,
		IsActive:      true,
	}
	if err := s.driverRepo.Create(ctx, d); err != nil {
		return nil, err
	}
	return toDriverResponse(d), nil
}

// Get returns one driver.
func (s *Service) Get(ctx context.Context, driverID int64) (*DriverResponse, error) {
	d, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	return toDriverResponse(d), nil
}

// List returns drivers, optionally active ones only.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]*DriverResponse, error) {
	drivers, err := s.driverRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	responses := make([]*DriverResponse, len(drivers))
	for i, d := range drivers {
		responses[i] = toDriverResponse(d)
	}
	return responses, nil
}

// Update applies a partial update to a driver.
func (s *Service) Update(ctx context.Context, driverID int64, req *UpdateDriverRequest) (*DriverResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, pkgerrors.NewAppError("VALIDATION_ERROR", "invalid driver data", err)
	}

	d, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Phone != nil {
		d.Phone = req.Phone
	}
	if req.Email != nil {
		d.Email = req.Email
	}
	if req.LicenseNumber != nil {
		d.LicenseNumber = req.LicenseNumber
	}
	if req.RFIDCard != nil {
		if *req.RFIDCard != "" {
			if err := s.checkRFIDCardFree(ctx, *req.RFIDCard, driverID); err != nil {
				return nil, err
			}
			d.RFIDCard = req.RFIDCard
		} else {
			d.RFIDCard = nil
		}
	}
	if req.Notes != nil {
		d.Notes = req.Notes
	}
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}

	if err := s.driverRepo.Update(ctx, d); err != nil {
		return nil, err
	}
	return toDriverResponse(d), nil
}

// Delete soft-deletes a driver. Assignment history is kept.
func (s *Service) Delete(ctx context.Context, driverID int64) error {
	return s.driverRepo.Delete(ctx, driverID)
}

// Assignments returns a driver's assignment history, newest first.
func (s *Service) Assignments(ctx context.Context, driverID int64) ([]*AssignmentResponse, error) {
	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	responses := make([]*AssignmentResponse, len(assignments))
	for i, a := range assignments {
		responses[i] = toAssignmentResponse(a)
	}
	return responses, nil
}

func (s *Service) checkRFIDCardFree(ctx context.Context, card string, selfID int64) error {
	existing, err := s.driverRepo.GetByRFIDCard(ctx, card)
	if errors.Is(err, domainDriver.ErrDriverNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return domainDriver.ErrRFIDCardInUse
	}
	return nil
}
