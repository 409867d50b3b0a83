package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"backend-ecomap/internal/db"
)

var (
	ErrInvalid     = errors.New("invalid review")
	ErrUnavailable = errors.New("review storage unavailable")
)

// Invalidator drops cached catalog data that embeds review photos.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Service struct {
	db    db.Querier
	cache Invalidator
}

func NewService(db db.Querier, cache Invalidator) *Service {
	return &Service{db: db, cache: cache}
}

func (s *Service) Create(ctx context.Context, input Review) (Review, error) {
	if err := validate(input); err != nil {
		return Review{}, err
	}
	if s.db == nil {
		return Review{}, ErrUnavailable
	}

	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO location_reviews (id, location_id, user_id, rating, body)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, input.ID, input.LocationID, input.UserID, input.Rating, input.Body)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Review{}, err
	}

	for i := range input.Photos {
		p := &input.Photos[i]
		p.ReviewID = input.ID
		p.Position = i + 1
		_, err := s.db.Exec(ctx, `
			INSERT INTO location_review_photos (review_id, location_id, position, photo_url, caption)
			VALUES ($1,$2,$3,$4,$5)
		`, p.ReviewID, input.LocationID, p.Position, p.URL, p.Caption)
		if err != nil {
			return Review{}, fmt.Errorf("review photo %d: %w", p.Position, err)
		}
	}

	if len(input.Photos) > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Printf("review: catalog cache invalidate failed: %v", err)
		}
	}
	return input, nil
}

// List returns a location's reviews oldest first with their photos.
func (s *Service) List(ctx context.Context, locationID string) ([]Review, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, location_id, COALESCE(user_id,''), COALESCE(rating,0), COALESCE(body,''), created_at
		FROM location_reviews
		WHERE location_id=$1
		ORDER BY created_at
	`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []Review{}
	var ids []string
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.LocationID, &r.UserID, &r.Rating, &r.Body, &r.CreatedAt); err != nil {
			return nil, err
		}
		ids = append(ids, r.ID)
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	photos, err := s.loadPhotos(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range reviews {
		reviews[i].Photos = photos[reviews[i].ID]
	}
	return reviews, nil
}

func (s *Service) loadPhotos(ctx context.Context, reviewIDs []string) (map[string][]Photo, error) {
	if len(reviewIDs) == 0 {
		return map[string][]Photo{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT review_id, position, photo_url, COALESCE(caption,'')
		FROM location_review_photos WHERE review_id = ANY($1)
		ORDER BY position
	`, reviewIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	photos := map[string][]Photo{}
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ReviewID, &p.Position, &p.URL, &p.Caption); err != nil {
			return nil, err
		}
		photos[p.ReviewID] = append(photos[p.ReviewID], p)
	}
	return photos, rows.Err()
}

func validate(r Review) error {
	if r.LocationID == "" {
		return fmt.Errorf("%w: location required", ErrInvalid)
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalid)
	}
	for _, p := range r.Photos {
		if strings.TrimSpace(p.URL) == "" {
			return fmt.Errorf("%w: photo url required", ErrInvalid)
		}
	}
	return nil
}
