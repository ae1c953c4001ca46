package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/voltride/rental-service/internal/core/domain"
)

type TripRepository interface {
	CreateTrip(ctx context.Context, trip *domain.Trip) (*domain.Trip, error)
	GetTripByID(ctx context.Context, tripID uuid.UUID) (*domain.Trip, error)
	GetOngoingByUserAndVehicle(ctx context.Context, userID, vehicleID uuid.UUID) (*domain.Trip, error)
	ListUserTrips(ctx context.Context, userID uuid.UUID, status domain.TripStatus) ([]*domain.Trip, error)

	// CompleteTrip flips Ongoing -> Completed and records the end leg as a
	// single conditional update; a trip not Ongoing yields domain.ErrConflict.
	CompleteTrip(ctx context.Context, tripID, endStationID uuid.UUID, endTime time.Time, fare decimal.Decimal) error

	// CancelTrip flips Ongoing -> Cancelled under the same guard.
	CancelTrip(ctx context.Context, tripID uuid.UUID) error
}

type MembershipRepository interface {
	ListPlans(ctx context.Context) ([]*domain.MembershipPlan, error)
	GetPlanByID(ctx context.Context, planID uuid.UUID) (*domain.MembershipPlan, error)
}

type ReviewRepository interface {
	// CreateReview relies on the store's unique constraint on trip_id;
	// a duplicate surfaces as domain.ErrConflict.
	CreateReview(ctx context.Context, review *domain.Review) (*domain.Review, error)
}
