package trip

import (
	"context"
	"errors"
	"fmt"

	"backend-ecomap/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound    = errors.New("itinerary not found")
	ErrUnavailable = errors.New("itinerary storage unavailable")
)

// Service stores planner itineraries so a trip map can be reopened by id.
type Service struct {
	db    db.Querier
	table Table
}

func NewService(db db.Querier) *Service {
	return &Service{db: db, table: Places}
}

func (s *Service) SaveItinerary(ctx context.Context, input Itinerary) (Itinerary, error) {
	if input.Destination == "" {
		return Itinerary{}, fmt.Errorf("%w: destination required", ErrBadItinerary)
	}
	if s.db == nil {
		return Itinerary{}, ErrUnavailable
	}
	input.ID = uuid.NewString()
	row := s.db.QueryRow(ctx, `
		INSERT INTO itineraries (id, destination, created_by)
		VALUES ($1,$2,$3)
		RETURNING created_at
	`, input.ID, input.Destination, input.CreatedBy)
	if err := row.Scan(&input.CreatedAt); err != nil {
		return Itinerary{}, err
	}

	for i, wp := range input.Waypoints {
		_, err := s.db.Exec(ctx, `
			INSERT INTO itinerary_stops (itinerary_id, position, waypoint_id, name, type, description, distance)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, input.ID, i+1, wp.ID, wp.Name, wp.Type, wp.Description, wp.Distance)
		if err != nil {
			return Itinerary{}, err
		}
	}
	return input, nil
}

func (s *Service) GetItinerary(ctx context.Context, id string) (Itinerary, error) {
	if s.db == nil {
		return Itinerary{}, ErrUnavailable
	}
	var it Itinerary
	row := s.db.QueryRow(ctx, `
		SELECT id, destination, COALESCE(created_by,''), created_at
		FROM itineraries WHERE id=$1
	`, id)
	if err := row.Scan(&it.ID, &it.Destination, &it.CreatedBy, &it.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Itinerary{}, ErrNotFound
		}
		return Itinerary{}, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT COALESCE(waypoint_id,''), name, COALESCE(type,''), COALESCE(description,''), COALESCE(distance,'')
		FROM itinerary_stops WHERE itinerary_id=$1
		ORDER BY position
	`, id)
	if err != nil {
		return Itinerary{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var wp Waypoint
		if err := rows.Scan(&wp.ID, &wp.Name, &wp.Type, &wp.Description, &wp.Distance); err != nil {
			return Itinerary{}, err
		}
		it.Waypoints = append(it.Waypoints, wp)
	}
	return it, rows.Err()
}

// Stops resolves an itinerary against the service's coordinate table.
func (s *Service) Stops(it Itinerary) []Stop {
	return s.table.Resolve(it.Waypoints)
}
