package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/voltride/rental-service/internal/core/domain"
)

// In-memory repositories for service tests. Conditional updates are guarded
// by a mutex so they behave like the single-statement SQL they stand in for.

type nopLogger struct{}

func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*domain.User
	discounts map[uuid.UUID]decimal.Decimal
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:     make(map[uuid.UUID]*domain.User),
		discounts: make(map[uuid.UUID]decimal.Decimal),
	}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return &cp, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: user", domain.ErrNotFound)
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, userID uuid.UUID, name, passwordHash *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	if name != nil {
		u.Name = *name
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	return nil
}

func (r *fakeUserRepo) LockUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return r.GetUserByID(ctx, userID)
}

func (r *fakeUserRepo) CreditWallet(_ context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	u.WalletBalance = u.WalletBalance.Add(amount)
	return nil
}

func (r *fakeUserRepo) DebitWallet(_ context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	if u.WalletBalance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s below %s", domain.ErrInsufficientFunds, u.WalletBalance, amount)
	}
	u.WalletBalance = u.WalletBalance.Sub(amount)
	return nil
}

func (r *fakeUserRepo) SetPlan(_ context.Context, userID, planID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("%w: user", domain.ErrNotFound)
	}
	id := planID
	u.PlanID = &id
	return nil
}

func (r *fakeUserRepo) GetDiscountRate(_ context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.discounts[userID]; ok {
		return d, nil
	}
	return decimal.Zero, nil
}

type fakeVehicleRepo struct {
	mu       sync.Mutex
	vehicles map[uuid.UUID]*domain.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[uuid.UUID]*domain.Vehicle)}
}

func (r *fakeVehicleRepo) CreateVehicle(_ context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *vehicle
	r.vehicles[vehicle.ID] = &cp
	return &cp, nil
}

func (r *fakeVehicleRepo) GetVehicleByID(_ context.Context, vehicleID uuid.UUID) (*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[vehicleID]
	if !ok {
		return nil, fmt.Errorf("%w: vehicle", domain.ErrNotFound)
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVehicleRepo) GetVehicleForUpdate(ctx context.Context, vehicleID uuid.UUID) (*domain.Vehicle, error) {
	return r.GetVehicleByID(ctx, vehicleID)
}

func (r *fakeVehicleRepo) ListVehicles(_ context.Context) ([]*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Vehicle, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeVehicleRepo) ListAvailableAtStation(_ context.Context, stationID uuid.UUID) ([]*domain.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Vehicle
	for _, v := range r.vehicles {
		if v.Status == domain.VehicleAvailable && v.CurrentStationID != nil && *v.CurrentStationID == stationID {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeVehicleRepo) TransitionStatus(_ context.Context, vehicleID uuid.UUID, from, to domain.VehicleStatus) error {
	if !domain.CanTransitionVehicle(from, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidArgument, from, to)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[vehicleID]
	if !ok {
		return fmt.Errorf("%w: vehicle", domain.ErrNotFound)
	}
	if v.Status != from {
		return fmt.Errorf("%w: vehicle is %s", domain.ErrConflict, v.Status)
	}
	v.Status = to
	return nil
}

func (r *fakeVehicleRepo) ReturnToStation(ctx context.Context, vehicleID uuid.UUID, from, to domain.VehicleStatus, stationID uuid.UUID) error {
	if err := r.TransitionStatus(ctx, vehicleID, from, to); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := stationID
	r.vehicles[vehicleID].CurrentStationID = &id
	return nil
}

func (r *fakeVehicleRepo) Decommission(_ context.Context, vehicleID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[vehicleID]
	if !ok {
		return fmt.Errorf("%w: vehicle", domain.ErrNotFound)
	}
	if v.Status == domain.VehicleDecommissioned {
		return fmt.Errorf("%w: vehicle is decommissioned", domain.ErrConflict)
	}
	v.Status = domain.VehicleDecommissioned
	return nil
}

type fakeTripRepo struct {
	mu    sync.Mutex
	trips map[uuid.UUID]*domain.Trip
}

func newFakeTripRepo() *fakeTripRepo {
	return &fakeTripRepo{trips: make(map[uuid.UUID]*domain.Trip)}
}

func (r *fakeTripRepo) CreateTrip(_ context.Context, trip *domain.Trip) (*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *trip
	r.trips[trip.ID] = &cp
	return &cp, nil
}

func (r *fakeTripRepo) GetTripByID(_ context.Context, tripID uuid.UUID) (*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[tripID]
	if !ok {
		return nil, fmt.Errorf("%w: trip", domain.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTripRepo) GetOngoingByUserAndVehicle(_ context.Context, userID, vehicleID uuid.UUID) (*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.trips {
		if t.UserID == userID && t.VehicleID == vehicleID && t.Status == domain.TripOngoing {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: ongoing trip", domain.ErrNotFound)
}

func (r *fakeTripRepo) ListUserTrips(_ context.Context, userID uuid.UUID, status domain.TripStatus) ([]*domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Trip
	for _, t := range r.trips {
		if t.UserID != userID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (r *fakeTripRepo) CompleteTrip(_ context.Context, tripID, endStationID uuid.UUID, endTime time.Time, fare decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[tripID]
	if !ok {
		return fmt.Errorf("%w: trip", domain.ErrNotFound)
	}
	if t.Status != domain.TripOngoing {
		return fmt.Errorf("%w: trip is not ongoing", domain.ErrConflict)
	}
	station := endStationID
	end := endTime
	t.Status = domain.TripCompleted
	t.EndStationID = &station
	t.EndTime = &end
	t.Fare = fare
	return nil
}

func (r *fakeTripRepo) CancelTrip(_ context.Context, tripID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trips[tripID]
	if !ok {
		return fmt.Errorf("%w: trip", domain.ErrNotFound)
	}
	if t.Status != domain.TripOngoing {
		return fmt.Errorf("%w: trip is not ongoing", domain.ErrConflict)
	}
	t.Status = domain.TripCancelled
	return nil
}

type fakeMembershipRepo struct {
	mu    sync.Mutex
	plans map[uuid.UUID]*domain.MembershipPlan
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{plans: make(map[uuid.UUID]*domain.MembershipPlan)}
}

func (r *fakeMembershipRepo) ListPlans(_ context.Context) ([]*domain.MembershipPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.MembershipPlan, 0, len(r.plans))
	for _, p := range r.plans {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeMembershipRepo) GetPlanByID(_ context.Context, planID uuid.UUID) (*domain.MembershipPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[planID]
	if !ok {
		return nil, fmt.Errorf("%w: plan", domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]*domain.Review // keyed by trip id
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[uuid.UUID]*domain.Review)}
}

func (r *fakeReviewRepo) CreateReview(_ context.Context, review *domain.Review) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[review.TripID]; ok {
		return nil, fmt.Errorf("%w: a review for this trip already exists", domain.ErrConflict)
	}
	cp := *review
	r.reviews[review.TripID] = &cp
	return &cp, nil
}

type fakeMaintenanceRepo struct {
	mu          sync.Mutex
	logs        map[uuid.UUID]*domain.MaintenanceLog
	assignments map[uuid.UUID]*domain.TechnicianAssignment // keyed by log id
	technicians map[uuid.UUID]*domain.Technician
}

func newFakeMaintenanceRepo() *fakeMaintenanceRepo {
	return &fakeMaintenanceRepo{
		logs:        make(map[uuid.UUID]*domain.MaintenanceLog),
		assignments: make(map[uuid.UUID]*domain.TechnicianAssignment),
		technicians: make(map[uuid.UUID]*domain.Technician),
	}
}

func (r *fakeMaintenanceRepo) CreateLog(_ context.Context, log *domain.MaintenanceLog) (*domain.MaintenanceLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *log
	r.logs[log.ID] = &cp
	return &cp, nil
}

func (r *fakeMaintenanceRepo) GetLogByID(_ context.Context, logID uuid.UUID) (*domain.MaintenanceLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[logID]
	if !ok {
		return nil, fmt.Errorf("%w: maintenance log", domain.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (r *fakeMaintenanceRepo) CompleteLog(_ context.Context, logID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[logID]
	if !ok {
		return fmt.Errorf("%w: maintenance log", domain.ErrNotFound)
	}
	if l.Status != domain.MaintenanceOpen {
		return fmt.Errorf("%w: log is not open", domain.ErrConflict)
	}
	l.Status = domain.MaintenanceCompleted
	return nil
}

func (r *fakeMaintenanceRepo) PickTechnician(_ context.Context, specialization string) (*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var candidates []*domain.Technician
	for _, t := range r.technicians {
		if t.IsAvailable {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: technician", domain.ErrNotFound)
	}
	sort.Slice(candidates, func(i, j int) bool {
		mi := candidates[i].Specialization == specialization
		mj := candidates[j].Specialization == specialization
		if mi != mj {
			return mi
		}
		if candidates[i].ActiveAssignments != candidates[j].ActiveAssignments {
			return candidates[i].ActiveAssignments < candidates[j].ActiveAssignments
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
	cp := *candidates[0]
	return &cp, nil
}

func (r *fakeMaintenanceRepo) CreateAssignment(_ context.Context, assignment *domain.TechnicianAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[assignment.LogID]; ok {
		return fmt.Errorf("%w: assignment for log exists", domain.ErrConflict)
	}
	cp := *assignment
	r.assignments[assignment.LogID] = &cp
	return nil
}

func (r *fakeMaintenanceRepo) GetAssignmentByLog(_ context.Context, logID uuid.UUID) (*domain.TechnicianAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assignments[logID]
	if !ok {
		return nil, fmt.Errorf("%w: assignment", domain.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (r *fakeMaintenanceRepo) ListAssignments(_ context.Context) ([]*domain.AssignmentDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AssignmentDetail
	for logID, a := range r.assignments {
		l := r.logs[logID]
		t := r.technicians[a.TechnicianID]
		out = append(out, &domain.AssignmentDetail{
			LogID:          logID,
			VehicleID:      l.VehicleID,
			Issue:          l.Issue,
			LogStatus:      l.Status,
			ReportedAt:     l.ReportedAt,
			TechnicianID:   a.TechnicianID,
			TechnicianName: t.Name,
		})
	}
	return out, nil
}

func (r *fakeMaintenanceRepo) IncrementAssignments(_ context.Context, technicianID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.technicians[technicianID]
	if !ok {
		return fmt.Errorf("%w: technician", domain.ErrNotFound)
	}
	t.ActiveAssignments++
	return nil
}

func (r *fakeMaintenanceRepo) DecrementAssignments(_ context.Context, technicianID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.technicians[technicianID]
	if !ok {
		return fmt.Errorf("%w: technician", domain.ErrNotFound)
	}
	if t.ActiveAssignments > 0 {
		t.ActiveAssignments--
	}
	return nil
}

func (r *fakeMaintenanceRepo) CreateTechnician(_ context.Context, technician *domain.Technician) (*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *technician
	r.technicians[technician.ID] = &cp
	return &cp, nil
}

func (r *fakeMaintenanceRepo) GetTechnicianByID(_ context.Context, technicianID uuid.UUID) (*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.technicians[technicianID]
	if !ok {
		return nil, fmt.Errorf("%w: technician", domain.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (r *fakeMaintenanceRepo) ListTechnicians(_ context.Context) ([]*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Technician, 0, len(r.technicians))
	for _, t := range r.technicians {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeMaintenanceRepo) UpdateTechnician(_ context.Context, technicianID uuid.UUID, name, specialization *string, isAvailable *bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.technicians[technicianID]
	if !ok {
		return fmt.Errorf("%w: technician", domain.ErrNotFound)
	}
	if name != nil {
		t.Name = *name
	}
	if specialization != nil {
		t.Specialization = *specialization
	}
	if isAvailable != nil {
		t.IsAvailable = *isAvailable
	}
	return nil
}

func (r *fakeMaintenanceRepo) DeleteTechnician(_ context.Context, technicianID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.technicians[technicianID]
	if !ok {
		return fmt.Errorf("%w: technician", domain.ErrNotFound)
	}
	if t.ActiveAssignments > 0 {
		return fmt.Errorf("%w: technician has active assignments", domain.ErrConflict)
	}
	delete(r.technicians, technicianID)
	return nil
}
