package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voltride/rental-service/internal/core/domain"
	"github.com/voltride/rental-service/internal/core/ports"
)

type ReviewService struct {
	reviewRepo ports.ReviewRepository
	tripRepo   ports.TripRepository
	logger     ports.LoggerPort
}

func NewReviewService(reviewRepo ports.ReviewRepository, tripRepo ports.TripRepository, logger ports.LoggerPort) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		tripRepo:   tripRepo,
		logger:     logger,
	}
}

// AddReview attaches the single review a rider may leave on a completed
// trip. The one-per-trip rule rides on the store's unique constraint, so
// two concurrent submissions cannot both land.
func (s *ReviewService) AddReview(ctx context.Context, tripID uuid.UUID, caller *domain.TokenPayload, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidArgument)
	}

	trip, err := s.tripRepo.GetTripByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("trip: %w", err)
	}
	if caller.Role != domain.RoleAdmin && caller.UserID != trip.UserID {
		return nil, fmt.Errorf("%w: trip belongs to another user", domain.ErrForbidden)
	}
	if trip.Status != domain.TripCompleted {
		return nil, fmt.Errorf("%w: can only review completed trips", domain.ErrConflict)
	}

	review, err := s.reviewRepo.CreateReview(ctx, &domain.Review{
		ID:        uuid.New(),
		TripID:    tripID,
		UserID:    trip.UserID,
		VehicleID: trip.VehicleID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	})
	if err != nil {
		s.logger.Error("Failed to add review", map[string]interface{}{
			"error":   err.Error(),
			"trip_id": tripID,
		})
		return nil, err
	}

	s.logger.Info("Review added", map[string]interface{}{
		"review_id": review.ID,
		"trip_id":   tripID,
	})
	return review, nil
}
