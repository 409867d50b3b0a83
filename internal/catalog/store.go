package catalog

import (
	"context"
	"errors"
	"fmt"

	"backend-ecomap/internal/category"
	"backend-ecomap/internal/db"
	"backend-ecomap/internal/shared/geo"

	"github.com/jackc/pgx/v5"
)

// Store reads eco-locations from Postgres. It satisfies Client and Finder.
type Store struct {
	db db.Querier
}

func NewStore(db db.Querier) *Store {
	return &Store{db: db}
}

const selectLocation = `
		SELECT id, name, category, ST_Y(location::geometry), ST_X(location::geometry),
		       COALESCE(address,''), COALESCE(description,''), COALESCE(eco_rating,0), COALESCE(image_ref,'')
		FROM eco_locations`

func (s *Store) Fetch(ctx context.Context, q Query) (Response, error) {
	locations, err := s.Search(ctx, q)
	if err != nil {
		return Response{}, err
	}
	return Response{Success: true, Data: locations}, nil
}

// Search matches text case-insensitively against name, address and
// category, optionally restricted to one category.
func (s *Store) Search(ctx context.Context, q Query) ([]Location, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	rows, err := s.db.Query(ctx, selectLocation+`
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR address ILIKE '%' || $2 || '%' OR category ILIKE '%' || $2 || '%')
		ORDER BY name
	`, string(q.Category), q.Text)
	if err != nil {
		return nil, fmt.Errorf("search locations: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return locations, nil
	}
	if err := s.attachImages(ctx, locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (s *Store) Get(ctx context.Context, id string) (Location, error) {
	if s.db == nil {
		return Location{}, ErrUnavailable
	}
	row := s.db.QueryRow(ctx, selectLocation+` WHERE id=$1`, id)
	l, err := scanLocation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Location{}, ErrNotFound
	}
	if err != nil {
		return Location{}, err
	}
	one := []Location{l}
	if err := s.attachImages(ctx, one); err != nil {
		return Location{}, err
	}
	return one[0], nil
}

// Nearby returns locations within radiusKm of p, closest first.
func (s *Store) Nearby(ctx context.Context, p geo.Point, radiusKm float64) ([]Location, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	rows, err := s.db.Query(ctx, selectLocation+`
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1,$2), 4326)::geography, $3)
		ORDER BY location <-> ST_SetSRID(ST_MakePoint($1,$2), 4326)::geography
	`, p.Lng, p.Lat, radiusKm*1000)
	if err != nil {
		return nil, fmt.Errorf("nearby locations: %w", err)
	}
	defer rows.Close()

	locations := []Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return locations, nil
	}
	if err := s.attachImages(ctx, locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// attachImages fills Images in review order. It writes into the slice it is
// given; callers pass freshly scanned values only.
func (s *Store) attachImages(ctx context.Context, locations []Location) error {
	ids := make([]string, len(locations))
	index := make(map[string]int, len(locations))
	for i, l := range locations {
		ids[i] = l.ID
		index[l.ID] = i
	}

	rows, err := s.db.Query(ctx, `
		SELECT p.location_id, p.photo_url, COALESCE(p.caption,''), p.review_id
		FROM location_review_photos p
		JOIN location_reviews r ON r.id = p.review_id
		WHERE p.location_id = ANY($1)
		ORDER BY r.created_at, p.position
	`, ids)
	if err != nil {
		return fmt.Errorf("review images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var locationID string
		var img Image
		if err := rows.Scan(&locationID, &img.URL, &img.Caption, &img.ReviewID); err != nil {
			return err
		}
		if i, ok := index[locationID]; ok {
			locations[i].Images = append(locations[i].Images, img)
		}
	}
	return rows.Err()
}

func scanLocation(row pgx.Row) (Location, error) {
	var l Location
	var cat string
	if err := row.Scan(&l.ID, &l.Name, &cat, &l.Coordinates.Lat, &l.Coordinates.Lng, &l.Address, &l.Description, &l.Rating, &l.ImageRef); err != nil {
		return Location{}, err
	}
	l.Category = category.Category(cat)
	l.Rating = RoundRating(l.Rating)
	return l, nil
}
