package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/voltride/rental-service/internal/core/domain"
)

type MaintenanceRepository interface {
	CreateLog(ctx context.Context, log *domain.MaintenanceLog) (*domain.MaintenanceLog, error)
	GetLogByID(ctx context.Context, logID uuid.UUID) (*domain.MaintenanceLog, error)

	// CompleteLog flips Open -> Completed as a conditional update.
	CompleteLog(ctx context.Context, logID uuid.UUID) error

	// PickTechnician locks and returns the best candidate: available,
	// preferring a matching specialization, lowest active assignment count,
	// ties broken by lowest id. No candidate yields domain.ErrNotFound.
	PickTechnician(ctx context.Context, specialization string) (*domain.Technician, error)

	CreateAssignment(ctx context.Context, assignment *domain.TechnicianAssignment) error
	GetAssignmentByLog(ctx context.Context, logID uuid.UUID) (*domain.TechnicianAssignment, error)
	ListAssignments(ctx context.Context) ([]*domain.AssignmentDetail, error)

	IncrementAssignments(ctx context.Context, technicianID uuid.UUID) error
	// DecrementAssignments floors the count at zero.
	DecrementAssignments(ctx context.Context, technicianID uuid.UUID) error

	CreateTechnician(ctx context.Context, technician *domain.Technician) (*domain.Technician, error)
	GetTechnicianByID(ctx context.Context, technicianID uuid.UUID) (*domain.Technician, error)
	ListTechnicians(ctx context.Context) ([]*domain.Technician, error)
	UpdateTechnician(ctx context.Context, technicianID uuid.UUID, name, specialization *string, isAvailable *bool) error

	// DeleteTechnician removes a technician with zero active assignments;
	// otherwise domain.ErrConflict.
	DeleteTechnician(ctx context.Context, technicianID uuid.UUID) error
}
