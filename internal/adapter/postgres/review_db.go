package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/voltride/rental-service/internal/core/domain"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CreateReview leans on the unique index on trip_id: a concurrent or
// repeated submission loses at the constraint, not at a read-check.
func (r *ReviewRepository) CreateReview(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	query := `INSERT INTO reviews (id, trip_id, user_id, vehicle_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		review.ID,
		review.TripID,
		review.UserID,
		review.VehicleID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("%w: a review for this trip already exists", domain.ErrConflict)
		}
		return nil, mapError(err)
	}
	return review, nil
}
