package domain

import (
	"time"

	"github.com/google/uuid"
)

type MaintenanceStatus string

const (
	MaintenanceOpen      MaintenanceStatus = "Open"
	MaintenanceCompleted MaintenanceStatus = "Completed"
)

type MaintenanceLog struct {
	ID         uuid.UUID         `json:"id"`
	VehicleID  uuid.UUID         `json:"vehicle_id"`
	Issue      string            `json:"issue" validate:"required,max=500"`
	Status     MaintenanceStatus `json:"status"`
	ReportedAt time.Time         `json:"reported_at"`
}

type Technician struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name" validate:"required,max=100"`
	Specialization    string    `json:"specialization" validate:"required,max=100"`
	IsAvailable       bool      `json:"is_available"`
	ActiveAssignments int       `json:"active_assignments"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TechnicianAssignment links an open maintenance log to the technician
// working it.
type TechnicianAssignment struct {
	ID           uuid.UUID `json:"id"`
	LogID        uuid.UUID `json:"log_id"`
	TechnicianID uuid.UUID `json:"technician_id"`
	AssignedAt   time.Time `json:"assigned_at"`
}

// AssignmentDetail is the admin listing shape joining assignments with
// their log and technician.
type AssignmentDetail struct {
	LogID          uuid.UUID         `json:"log_id"`
	VehicleID      uuid.UUID         `json:"vehicle_id"`
	Issue          string            `json:"issue"`
	LogStatus      MaintenanceStatus `json:"log_status"`
	ReportedAt     time.Time         `json:"reported_at"`
	TechnicianID   uuid.UUID         `json:"technician_id"`
	TechnicianName string            `json:"technician_name"`
}
