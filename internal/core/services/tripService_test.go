package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/voltride/rental-service/internal/core/domain"
)

type tripFixture struct {
	svc      *TripService
	users    *fakeUserRepo
	vehicles *fakeVehicleRepo
	trips    *fakeTripRepo

	userID    uuid.UUID
	vehicleID uuid.UUID
	stationID uuid.UUID
}

func newTripFixture(t *testing.T, balance string) *tripFixture {
	t.Helper()

	users := newFakeUserRepo()
	vehicles := newFakeVehicleRepo()
	trips := newFakeTripRepo()

	f := &tripFixture{
		svc:       NewTripService(trips, vehicles, users, fakeTx{}, nopLogger{}),
		users:     users,
		vehicles:  vehicles,
		trips:     trips,
		userID:    uuid.New(),
		vehicleID: uuid.New(),
		stationID: uuid.New(),
	}

	users.users[f.userID] = &domain.User{
		ID:            f.userID,
		Name:          "Rider",
		Email:         "rider@example.com",
		WalletBalance: decimal.RequireFromString(balance),
		Role:          domain.RoleUser,
	}
	station := f.stationID
	vehicles.vehicles[f.vehicleID] = &domain.Vehicle{
		ID:               f.vehicleID,
		Type:             "scooter",
		RatePerHour:      decimal.RequireFromString("10"),
		Status:           domain.VehicleAvailable,
		CurrentStationID: &station,
	}
	return f
}

func (f *tripFixture) caller() *domain.TokenPayload {
	return &domain.TokenPayload{UserID: f.userID, Role: domain.RoleUser}
}

func TestBookReservesVehicle(t *testing.T) {
	f := newTripFixture(t, "100")
	ctx := context.Background()

	trip, err := f.svc.Book(ctx, f.userID, f.vehicleID, f.stationID, 2)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if trip.Status != domain.TripOngoing {
		t.Fatalf("expected Ongoing trip, got %s", trip.Status)
	}
	if !trip.Fare.IsZero() {
		t.Fatalf("expected zero fare at booking, got %s", trip.Fare)
	}

	vehicle, _ := f.vehicles.GetVehicleByID(ctx, f.vehicleID)
	if vehicle.Status != domain.VehicleInUse {
		t.Fatalf("expected vehicle in_use, got %s", vehicle.Status)
	}

	user, _ := f.users.GetUserByID(ctx, f.userID)
	if !user.WalletBalance.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("booking must not charge the wallet, balance is %s", user.WalletBalance)
	}
}

func TestBookRejectsNonPositiveDuration(t *testing.T) {
	f := newTripFixture(t, "100")

	_, err := f.svc.Book(context.Background(), f.userID, f.vehicleID, f.stationID, 0)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestBookConcurrentExactlyOneWins(t *testing.T) {
	f := newTripFixture(t, "100")
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Book(ctx, f.userID, f.vehicleID, f.stationID, 1)
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("loser got unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one booking to win, got %d", won)
	}
}

func TestBookVehicleInMaintenance(t *testing.T) {
	f := newTripFixture(t, "100")
	f.vehicles.vehicles[f.vehicleID].Status = domain.VehicleMaintenance

	_, err := f.svc.Book(context.Background(), f.userID, f.vehicleID, f.stationID, 1)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestBookDecommissionedVehicle(t *testing.T) {
	f := newTripFixture(t, "100")
	f.vehicles.vehicles[f.vehicleID].Status = domain.VehicleDecommissioned

	_, err := f.svc.Book(context.Background(), f.userID, f.vehicleID, f.stationID, 1)
	if err == nil {
		t.Fatalf("expected booking a decommissioned vehicle to fail")
	}
}

func TestEndRideChargesDiscountedFare(t *testing.T) {
	f := newTripFixture(t, "100")
	f.users.discounts[f.userID] = decimal.RequireFromString("0.10")
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return start }
	trip, err := f.svc.Book(ctx, f.userID, f.vehicleID, f.stationID, 2)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	endStation := uuid.New()
	f.svc.now = func() time.Time { return start.Add(2 * time.Hour) }
	completed, err := f.svc.EndRide(ctx, trip.ID, endStation, f.caller())
	if err != nil {
		t.Fatalf("EndRide: %v", err)
	}

	// 2h at 10/hr with 10% off
	if want := decimal.RequireFromString("18"); !completed.Fare.Equal(want) {
		t.Fatalf("fare = %s, want %s", completed.Fare, want)
	}
	if completed.Status != domain.TripCompleted {
		t.Fatalf("expected Completed, got %s", completed.Status)
	}

	user, _ := f.users.GetUserByID(ctx, f.userID)
	if want := decimal.RequireFromString("82"); !user.WalletBalance.Equal(want) {
		t.Fatalf("balance = %s, want %s", user.WalletBalance, want)
	}

	vehicle, _ := f.vehicles.GetVehicleByID(ctx, f.vehicleID)
	if vehicle.Status != domain.VehicleAvailable {
		t.Fatalf("expected vehicle available, got %s", vehicle.Status)
	}
	if vehicle.CurrentStationID == nil || *vehicle.CurrentStationID != endStation {
		t.Fatalf("vehicle not parked at end station")
	}
}

func TestEndRideInsufficientFunds(t *testing.T) {
	f := newTripFixture(t, "1")
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return start }
	trip, err := f.svc.Book(ctx, f.userID, f.vehicleID, f.stationID, 2)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	f.svc.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = f.svc.EndRide(ctx, trip.ID, f.stationID, f.caller())
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// The whole operation aborts: trip still Ongoing, vehicle still out.
	kept, _ := f.trips.GetTripByID(ctx, trip.ID)
	if kept.Status != domain.TripOngoing {
		t.Fatalf("expected trip to stay Ongoing, got %s", kept.Status)
	}
	vehicle, _ := f.vehicles.GetVehicleByID(ctx, f.vehicleID)
	if vehicle.Status != domain.VehicleInUse {
		t.Fatalf("expected vehicle to stay in_use, got %s", vehicle.Status)
	}
}

func TestEndRideTwiceConflicts(t *testing.T) {
	f := newTripFixture(t, "100")
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return start }
	trip, err := f.svc.Book(ctx, f.userID, f.vehicleID, f.stationID, 1)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	f.svc.now = func() time.Time { return start.Add(time.Hour) }
	if _, err := f.svc.EndRide(ctx, trip.ID, f.stationID, f.caller()); err != nil {
		t.Fatalf("first EndRide: %v", err)
	}

	balanceAfterFirst, _ := f.users.GetUserByID(ctx, f.userID)

	if _, err := f.svc.EndRide(ctx, trip.ID, f.stationID, f.caller()); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict on second end, got %v", err)
	}

	user, _ := f.users.GetUserByID(ctx, f.userID)
	if !user.WalletBalance.Equal(balanceAfterFirst.WalletBalance) {
		t.Fatalf("second end must not charge again")
	}
}

func TestEndRideForbiddenForOtherRider(t *testing.T) {
	f := newTripFixture(t, "100")
	ctx := context.Background()

	trip, err := f.svc.Book(ctx, f.userID, f.vehicleID, f.stationID, 1)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	other := &domain.TokenPayload{UserID: uuid.New(), Role: domain.RoleUser}
	if _, err := f.svc.EndRide(ctx, trip.ID, f.stationID, other); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestEndRideAdminCanEndAnyTrip(t *testing.T) {
	f := newTripFixture(t, "100")
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return start }
	trip, err := f.svc.Book(ctx, f.userID, f.vehicleID, f.stationID, 1)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	admin := &domain.TokenPayload{UserID: uuid.New(), Role: domain.RoleAdmin}
	f.svc.now = func() time.Time { return start.Add(time.Hour) }
	completed, err := f.svc.EndRide(ctx, trip.ID, f.stationID, admin)
	if err != nil {
		t.Fatalf("EndRide as admin: %v", err)
	}
	// The rider pays, not the admin.
	if completed.UserID != f.userID {
		t.Fatalf("trip owner changed")
	}
	user, _ := f.users.GetUserByID(ctx, f.userID)
	if want := decimal.RequireFromString("90"); !user.WalletBalance.Equal(want) {
		t.Fatalf("balance = %s, want %s", user.WalletBalance, want)
	}
}

func TestEndRideVehicleInMaintenanceStaysThere(t *testing.T) {
	f := newTripFixture(t, "100")
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return start }
	trip, err := f.svc.Book(ctx, f.userID, f.vehicleID, f.stationID, 1)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	// Vehicle pulled out of service mid-trip.
	f.vehicles.vehicles[f.vehicleID].Status = domain.VehicleMaintenance

	f.svc.now = func() time.Time { return start.Add(time.Hour) }
	completed, err := f.svc.EndRide(ctx, trip.ID, f.stationID, f.caller())
	if err != nil {
		t.Fatalf("EndRide: %v", err)
	}
	if completed.Status != domain.TripCompleted {
		t.Fatalf("expected Completed, got %s", completed.Status)
	}

	vehicle, _ := f.vehicles.GetVehicleByID(ctx, f.vehicleID)
	if vehicle.Status != domain.VehicleMaintenance {
		t.Fatalf("expected vehicle to stay in maintenance, got %s", vehicle.Status)
	}
}

func TestCancelTripFreesVehicleWithoutCharge(t *testing.T) {
	f := newTripFixture(t, "100")
	ctx := context.Background()

	trip, err := f.svc.Book(ctx, f.userID, f.vehicleID, f.stationID, 1)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	if err := f.svc.CancelTrip(ctx, trip.ID, f.caller()); err != nil {
		t.Fatalf("CancelTrip: %v", err)
	}

	kept, _ := f.trips.GetTripByID(ctx, trip.ID)
	if kept.Status != domain.TripCancelled {
		t.Fatalf("expected Cancelled, got %s", kept.Status)
	}
	vehicle, _ := f.vehicles.GetVehicleByID(ctx, f.vehicleID)
	if vehicle.Status != domain.VehicleAvailable {
		t.Fatalf("expected vehicle available, got %s", vehicle.Status)
	}
	user, _ := f.users.GetUserByID(ctx, f.userID)
	if !user.WalletBalance.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("cancel must not move money, balance is %s", user.WalletBalance)
	}

	if err := f.svc.CancelTrip(ctx, trip.ID, f.caller()); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict on second cancel, got %v", err)
	}
}

func TestUserHistoryFiltersByStatus(t *testing.T) {
	f := newTripFixture(t, "100")
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return start }
	first, err := f.svc.Book(ctx, f.userID, f.vehicleID, f.stationID, 1)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	f.svc.now = func() time.Time { return start.Add(time.Hour) }
	if _, err := f.svc.EndRide(ctx, first.ID, f.stationID, f.caller()); err != nil {
		t.Fatalf("EndRide: %v", err)
	}

	f.svc.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, err := f.svc.Book(ctx, f.userID, f.vehicleID, f.stationID, 1); err != nil {
		t.Fatalf("second Book: %v", err)
	}

	completed, err := f.svc.UserHistory(ctx, f.userID, domain.TripCompleted)
	if err != nil {
		t.Fatalf("UserHistory: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != first.ID {
		t.Fatalf("expected only the completed trip")
	}

	all, err := f.svc.UserHistory(ctx, f.userID, "")
	if err != nil {
		t.Fatalf("UserHistory all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 trips, got %d", len(all))
	}

	if _, err := f.svc.UserHistory(ctx, f.userID, "Rolling"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for unknown status, got %v", err)
	}
}
