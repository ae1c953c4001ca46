package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/voltride/rental-service/internal/core/domain"
)

type MaintenanceRepository struct {
	db *sql.DB
}

func NewMaintenanceRepository(db *sql.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) CreateLog(ctx context.Context, log *domain.MaintenanceLog) (*domain.MaintenanceLog, error) {
	query := `INSERT INTO maintenance_logs (id, vehicle_id, issue, status, reported_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		log.ID,
		log.VehicleID,
		log.Issue,
		log.Status,
		log.ReportedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return log, nil
}

func (r *MaintenanceRepository) GetLogByID(ctx context.Context, logID uuid.UUID) (*domain.MaintenanceLog, error) {
	query := `SELECT id, vehicle_id, issue, status, reported_at FROM maintenance_logs WHERE id = $1`

	log := &domain.MaintenanceLog{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, logID).Scan(
		&log.ID,
		&log.VehicleID,
		&log.Issue,
		&log.Status,
		&log.ReportedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: maintenance log", domain.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return log, nil
}

func (r *MaintenanceRepository) CompleteLog(ctx context.Context, logID uuid.UUID) error {
	query := `UPDATE maintenance_logs SET status = 'Completed' WHERE id = $1 AND status = 'Open'`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, logID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := conn(ctx, r.db).QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM maintenance_logs WHERE id = $1)`, logID).Scan(&exists); err != nil {
			return mapError(err)
		}
		if !exists {
			return fmt.Errorf("%w: maintenance log", domain.ErrNotFound)
		}
		return fmt.Errorf("%w: maintenance log already completed", domain.ErrConflict)
	}
	return nil
}

// PickTechnician locks and returns the least-loaded available technician,
// preferring one whose specialization matches. SKIP LOCKED is deliberately
// not used: two concurrent reports should queue on the same best candidate
// and see its updated count, not both pick it.
func (r *MaintenanceRepository) PickTechnician(ctx context.Context, specialization string) (*domain.Technician, error) {
	query := `SELECT id, name, specialization, is_available, active_assignments, created_at, updated_at
		FROM technicians
		WHERE is_available
		ORDER BY (specialization = $1) DESC, active_assignments ASC, id ASC
		LIMIT 1
		FOR UPDATE`

	tech := &domain.Technician{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, specialization).Scan(
		&tech.ID,
		&tech.Name,
		&tech.Specialization,
		&tech.IsAvailable,
		&tech.ActiveAssignments,
		&tech.CreatedAt,
		&tech.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: technician", domain.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return tech, nil
}

func (r *MaintenanceRepository) CreateAssignment(ctx context.Context, assignment *domain.TechnicianAssignment) error {
	query := `INSERT INTO technician_assignments (id, log_id, technician_id, assigned_at)
		VALUES ($1, $2, $3, $4)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		assignment.ID,
		assignment.LogID,
		assignment.TechnicianID,
		assignment.AssignedAt,
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

func (r *MaintenanceRepository) GetAssignmentByLog(ctx context.Context, logID uuid.UUID) (*domain.TechnicianAssignment, error) {
	query := `SELECT id, log_id, technician_id, assigned_at FROM technician_assignments WHERE log_id = $1`

	assignment := &domain.TechnicianAssignment{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, logID).Scan(
		&assignment.ID,
		&assignment.LogID,
		&assignment.TechnicianID,
		&assignment.AssignedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: assignment", domain.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return assignment, nil
}

func (r *MaintenanceRepository) ListAssignments(ctx context.Context) ([]*domain.AssignmentDetail, error) {
	query := `SELECT ml.id, ml.vehicle_id, ml.issue, ml.status, ml.reported_at, t.id, t.name
		FROM technician_assignments ta
		JOIN maintenance_logs ml ON ta.log_id = ml.id
		JOIN technicians t ON ta.technician_id = t.id
		ORDER BY ml.reported_at DESC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var details []*domain.AssignmentDetail
	for rows.Next() {
		d := &domain.AssignmentDetail{}
		err := rows.Scan(
			&d.LogID,
			&d.VehicleID,
			&d.Issue,
			&d.LogStatus,
			&d.ReportedAt,
			&d.TechnicianID,
			&d.TechnicianName,
		)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

func (r *MaintenanceRepository) IncrementAssignments(ctx context.Context, technicianID uuid.UUID) error {
	query := `UPDATE technicians
		SET active_assignments = active_assignments + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, technicianID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: technician", domain.ErrNotFound)
	}
	return nil
}

func (r *MaintenanceRepository) DecrementAssignments(ctx context.Context, technicianID uuid.UUID) error {
	query := `UPDATE technicians
		SET active_assignments = active_assignments - 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND active_assignments > 0`

	// Floors at zero: decrementing an idle technician is a no-op.
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, technicianID); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *MaintenanceRepository) CreateTechnician(ctx context.Context, technician *domain.Technician) (*domain.Technician, error) {
	query := `INSERT INTO technicians (id, name, specialization, is_available, active_assignments)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := conn(ctx, r.db).QueryRowContext(ctx, query,
		technician.ID,
		technician.Name,
		technician.Specialization,
		technician.IsAvailable,
		technician.ActiveAssignments,
	).Scan(&technician.CreatedAt, &technician.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return technician, nil
}

func (r *MaintenanceRepository) GetTechnicianByID(ctx context.Context, technicianID uuid.UUID) (*domain.Technician, error) {
	query := `SELECT id, name, specialization, is_available, active_assignments, created_at, updated_at
		FROM technicians WHERE id = $1`

	tech := &domain.Technician{}
	err := conn(ctx, r.db).QueryRowContext(ctx, query, technicianID).Scan(
		&tech.ID,
		&tech.Name,
		&tech.Specialization,
		&tech.IsAvailable,
		&tech.ActiveAssignments,
		&tech.CreatedAt,
		&tech.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: technician", domain.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return tech, nil
}

func (r *MaintenanceRepository) ListTechnicians(ctx context.Context) ([]*domain.Technician, error) {
	query := `SELECT id, name, specialization, is_available, active_assignments, created_at, updated_at
		FROM technicians ORDER BY name`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var technicians []*domain.Technician
	for rows.Next() {
		tech := &domain.Technician{}
		err := rows.Scan(
			&tech.ID,
			&tech.Name,
			&tech.Specialization,
			&tech.IsAvailable,
			&tech.ActiveAssignments,
			&tech.CreatedAt,
			&tech.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		technicians = append(technicians, tech)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return technicians, nil
}

func (r *MaintenanceRepository) UpdateTechnician(ctx context.Context, technicianID uuid.UUID, name, specialization *string, isAvailable *bool) error {
	query := `UPDATE technicians
		SET name = COALESCE($1, name),
			specialization = COALESCE($2, specialization),
			is_available = COALESCE($3, is_available),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $4`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, name, specialization, isAvailable, technicianID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: technician", domain.ErrNotFound)
	}
	return nil
}

// DeleteTechnician only removes a technician with no active assignments;
// the guard lives in the statement itself.
func (r *MaintenanceRepository) DeleteTechnician(ctx context.Context, technicianID uuid.UUID) error {
	query := `DELETE FROM technicians WHERE id = $1 AND active_assignments = 0`

	result, err := conn(ctx, r.db).ExecContext(ctx, query, technicianID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists bool
		if err := conn(ctx, r.db).QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM technicians WHERE id = $1)`, technicianID).Scan(&exists); err != nil {
			return mapError(err)
		}
		if !exists {
			return fmt.Errorf("%w: technician", domain.ErrNotFound)
		}
		return fmt.Errorf("%w: technician has active assignments", domain.ErrConflict)
	}
	return nil
}
