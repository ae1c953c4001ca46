package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/voltride/rental-service/internal/core/domain"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return data, nil
}

func (c *fakeCache) Set(key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func newVehicleFixture(t *testing.T) (*VehicleService, *fakeVehicleRepo, *fakeCache) {
	t.Helper()

	vehicles := newFakeVehicleRepo()
	cache := newFakeCache()
	return NewVehicleService(vehicles, nopLogger{}, validator.New(), cache), vehicles, cache
}

func validVehicle(stationID *uuid.UUID) *domain.Vehicle {
	return &domain.Vehicle{
		RegistrationNumber: "VR-1042",
		Type:               "scooter",
		Model:              "Zip 300",
		Manufacturer:       "VoltWorks",
		RatePerHour:        decimal.RequireFromString("6.50"),
		CurrentStationID:   stationID,
	}
}

func TestAddVehicleStartsAvailable(t *testing.T) {
	svc, _, _ := newVehicleFixture(t)

	created, err := svc.AddVehicle(context.Background(), validVehicle(nil))
	if err != nil {
		t.Fatalf("AddVehicle: %v", err)
	}
	if created.Status != domain.VehicleAvailable {
		t.Fatalf("expected available, got %s", created.Status)
	}
	if created.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
}

func TestAddVehicleRejectsNonPositiveRate(t *testing.T) {
	svc, _, _ := newVehicleFixture(t)

	vehicle := validVehicle(nil)
	vehicle.RatePerHour = decimal.Zero
	if _, err := svc.AddVehicle(context.Background(), vehicle); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAddVehicleRejectsMissingFields(t *testing.T) {
	svc, _, _ := newVehicleFixture(t)

	vehicle := validVehicle(nil)
	vehicle.RegistrationNumber = ""
	if _, err := svc.AddVehicle(context.Background(), vehicle); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestListVehiclesServesFromCache(t *testing.T) {
	svc, vehicles, _ := newVehicleFixture(t)
	ctx := context.Background()

	if _, err := svc.AddVehicle(ctx, validVehicle(nil)); err != nil {
		t.Fatalf("AddVehicle: %v", err)
	}

	first, err := svc.ListVehicles(ctx)
	if err != nil {
		t.Fatalf("ListVehicles: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 vehicle, got %d", len(first))
	}

	// A write bypassing the service is invisible until the cache expires
	// or is invalidated.
	extra := uuid.New()
	vehicles.vehicles[extra] = &domain.Vehicle{ID: extra, Status: domain.VehicleAvailable}

	second, err := svc.ListVehicles(ctx)
	if err != nil {
		t.Fatalf("ListVehicles cached: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("expected cached listing of 1, got %d", len(second))
	}
}

func TestAddVehicleInvalidatesStationListing(t *testing.T) {
	svc, _, cache := newVehicleFixture(t)
	ctx := context.Background()
	stationID := uuid.New()

	if _, err := svc.ListAvailableAtStation(ctx, stationID); err != nil {
		t.Fatalf("ListAvailableAtStation: %v", err)
	}
	if _, err := cache.Get(fmt.Sprintf("station_vehicles:%s", stationID)); err != nil {
		t.Fatalf("expected station listing cached")
	}

	station := stationID
	if _, err := svc.AddVehicle(ctx, validVehicle(&station)); err != nil {
		t.Fatalf("AddVehicle: %v", err)
	}

	if _, err := cache.Get(fmt.Sprintf("station_vehicles:%s", stationID)); err == nil {
		t.Fatalf("expected station listing invalidated")
	}

	listed, err := svc.ListAvailableAtStation(ctx, stationID)
	if err != nil {
		t.Fatalf("ListAvailableAtStation after add: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected the new vehicle at the station, got %d", len(listed))
	}
}

func TestDecommissionIsTerminal(t *testing.T) {
	svc, vehicles, _ := newVehicleFixture(t)
	ctx := context.Background()

	created, err := svc.AddVehicle(ctx, validVehicle(nil))
	if err != nil {
		t.Fatalf("AddVehicle: %v", err)
	}

	if err := svc.Decommission(ctx, created.ID); err != nil {
		t.Fatalf("Decommission: %v", err)
	}

	vehicle, _ := vehicles.GetVehicleByID(ctx, created.ID)
	if vehicle.Status != domain.VehicleDecommissioned {
		t.Fatalf("expected decommissioned, got %s", vehicle.Status)
	}

	if err := svc.Decommission(ctx, created.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict on double decommission, got %v", err)
	}
}
