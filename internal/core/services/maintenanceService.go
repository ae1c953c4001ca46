package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/voltride/rental-service/internal/core/domain"
	"github.com/voltride/rental-service/internal/core/ports"
)

// MaintenanceService moves vehicles in and out of maintenance and balances
// issue reports across technicians.
type MaintenanceService struct {
	maintRepo   ports.MaintenanceRepository
	vehicleRepo ports.VehicleRepository
	tripRepo    ports.TripRepository
	tx          ports.Transactor
	logger      ports.LoggerPort
	validate    *validator.Validate
}

func NewMaintenanceService(
	maintRepo ports.MaintenanceRepository,
	vehicleRepo ports.VehicleRepository,
	tripRepo ports.TripRepository,
	tx ports.Transactor,
	logger ports.LoggerPort,
	validate *validator.Validate,
) *MaintenanceService {
	return &MaintenanceService{
		maintRepo:   maintRepo,
		vehicleRepo: vehicleRepo,
		tripRepo:    tripRepo,
		tx:          tx,
		logger:      logger,
		validate:    validate,
	}
}

// ReportIssue opens a maintenance log, pulls the vehicle out of service and
// assigns the least-loaded eligible technician, all in one transaction.
// Non-admin reporters must hold an Ongoing trip on the exact vehicle.
func (s *MaintenanceService) ReportIssue(ctx context.Context, vehicleID uuid.UUID, issue string, reporter *domain.TokenPayload) (*domain.MaintenanceLog, error) {
	if issue == "" {
		return nil, fmt.Errorf("%w: issue description required", domain.ErrInvalidArgument)
	}

	var log *domain.MaintenanceLog
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if reporter.Role != domain.RoleAdmin {
			if _, err := s.tripRepo.GetOngoingByUserAndVehicle(ctx, reporter.UserID, vehicleID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("%w: no ongoing trip on this vehicle", domain.ErrForbidden)
				}
				return err
			}
		}

		vehicle, err := s.vehicleRepo.GetVehicleForUpdate(ctx, vehicleID)
		if err != nil {
			return fmt.Errorf("vehicle: %w", err)
		}
		if vehicle.Status == domain.VehicleMaintenance || vehicle.Status == domain.VehicleDecommissioned {
			return fmt.Errorf("%w: vehicle is %s", domain.ErrConflict, vehicle.Status)
		}
		if err := s.vehicleRepo.TransitionStatus(ctx, vehicleID, vehicle.Status, domain.VehicleMaintenance); err != nil {
			return fmt.Errorf("vehicle to maintenance: %w", err)
		}

		created, err := s.maintRepo.CreateLog(ctx, &domain.MaintenanceLog{
			ID:         uuid.New(),
			VehicleID:  vehicleID,
			Issue:      issue,
			Status:     domain.MaintenanceOpen,
			ReportedAt: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("create log: %w", err)
		}

		tech, err := s.maintRepo.PickTechnician(ctx, vehicle.Type)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: no technician available", domain.ErrConflict)
			}
			return fmt.Errorf("pick technician: %w", err)
		}
		if err := s.maintRepo.CreateAssignment(ctx, &domain.TechnicianAssignment{
			ID:           uuid.New(),
			LogID:        created.ID,
			TechnicianID: tech.ID,
			AssignedAt:   time.Now(),
		}); err != nil {
			return fmt.Errorf("create assignment: %w", err)
		}
		if err := s.maintRepo.IncrementAssignments(ctx, tech.ID); err != nil {
			return fmt.Errorf("increment assignments: %w", err)
		}

		log = created
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to report issue", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicleID,
		})
		return nil, err
	}

	s.logger.Info("Issue reported and technician assigned", map[string]interface{}{
		"log_id":     log.ID,
		"vehicle_id": vehicleID,
	})
	return log, nil
}

// CompleteMaintenance closes an open log, releases the technician capacity
// and restores the vehicle unless it was decommissioned meanwhile.
func (s *MaintenanceService) CompleteMaintenance(ctx context.Context, logID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		log, err := s.maintRepo.GetLogByID(ctx, logID)
		if err != nil {
			return fmt.Errorf("log: %w", err)
		}

		vehicle, err := s.vehicleRepo.GetVehicleForUpdate(ctx, log.VehicleID)
		if err != nil {
			return fmt.Errorf("vehicle: %w", err)
		}
		if vehicle.Status == domain.VehicleMaintenance {
			if err := s.vehicleRepo.TransitionStatus(ctx, log.VehicleID, domain.VehicleMaintenance, domain.VehicleAvailable); err != nil {
				return fmt.Errorf("restore vehicle: %w", err)
			}
		}

		if err := s.maintRepo.CompleteLog(ctx, logID); err != nil {
			return fmt.Errorf("complete log: %w", err)
		}

		assignment, err := s.maintRepo.GetAssignmentByLog(ctx, logID)
		if err != nil {
			return fmt.Errorf("assignment: %w", err)
		}
		if err := s.maintRepo.DecrementAssignments(ctx, assignment.TechnicianID); err != nil {
			return fmt.Errorf("decrement assignments: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to complete maintenance", map[string]interface{}{
			"error":  err.Error(),
			"log_id": logID,
		})
		return err
	}

	s.logger.Info("Maintenance completed", map[string]interface{}{
		"log_id": logID,
	})
	return nil
}

func (s *MaintenanceService) AddTechnician(ctx context.Context, tech *domain.Technician) (*domain.Technician, error) {
	if err := s.validate.Struct(tech); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if tech.ID == uuid.Nil {
		tech.ID = uuid.New()
	}
	tech.IsAvailable = true
	tech.ActiveAssignments = 0

	created, err := s.maintRepo.CreateTechnician(ctx, tech)
	if err != nil {
		s.logger.Error("Failed to add technician", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	return created, nil
}

func (s *MaintenanceService) ListTechnicians(ctx context.Context) ([]*domain.Technician, error) {
	return s.maintRepo.ListTechnicians(ctx)
}

func (s *MaintenanceService) UpdateTechnician(ctx context.Context, technicianID uuid.UUID, name, specialization *string, isAvailable *bool) error {
	if name == nil && specialization == nil && isAvailable == nil {
		return fmt.Errorf("%w: no fields to update", domain.ErrInvalidArgument)
	}
	return s.maintRepo.UpdateTechnician(ctx, technicianID, name, specialization, isAvailable)
}

// DeleteTechnician removes a technician; one with active assignments is
// kept and the call fails with a conflict.
func (s *MaintenanceService) DeleteTechnician(ctx context.Context, technicianID uuid.UUID) error {
	if err := s.maintRepo.DeleteTechnician(ctx, technicianID); err != nil {
		s.logger.Error("Failed to delete technician", map[string]interface{}{
			"error":         err.Error(),
			"technician_id": technicianID,
		})
		return err
	}
	return nil
}

func (s *MaintenanceService) ListAssignments(ctx context.Context) ([]*domain.AssignmentDetail, error) {
	return s.maintRepo.ListAssignments(ctx)
}
