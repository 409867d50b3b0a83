package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

var errQuery = errors.New("query failed")

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return c.err
}

func TestCreateWithPhotos(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	mock.ExpectQuery(`INSERT INTO location_reviews`).
		WithArgs(pgxmock.AnyArg(), "loc-1", "user-1", 5, "clean refill").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))
	mock.ExpectExec(`INSERT INTO location_review_photos`).
		WithArgs(pgxmock.AnyArg(), "loc-1", 1, "https://img/1.jpg", "tap").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO location_review_photos`).
		WithArgs(pgxmock.AnyArg(), "loc-1", 2, "https://img/2.jpg", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	cache := &countingInvalidator{err: errQuery}
	svc := NewService(mock, cache)
	r, err := svc.Create(context.Background(), Review{
		LocationID: "loc-1",
		UserID:     "user-1",
		Rating:     5,
		Body:       "clean refill",
		Photos:     []Photo{{URL: "https://img/1.jpg", Caption: "tap"}, {URL: "https://img/2.jpg"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.ID == "" || !r.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected review %+v", r)
	}
	if r.Photos[1].Position != 2 || r.Photos[1].ReviewID != r.ID {
		t.Fatalf("unexpected photo %+v", r.Photos[1])
	}
	if cache.calls != 1 {
		t.Fatalf("expected cache invalidated once, got %d", cache.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateWithoutPhotosKeepsCache(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO location_reviews`).
		WithArgs(pgxmock.AnyArg(), "loc-1", "", 3, "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	cache := &countingInvalidator{}
	if _, err := NewService(mock, cache).Create(context.Background(), Review{LocationID: "loc-1", Rating: 3}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if cache.calls != 0 {
		t.Fatalf("expected no invalidation")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(nil, nil)
	tests := []Review{
		{Rating: 4},
		{LocationID: "loc-1", Rating: 0},
		{LocationID: "loc-1", Rating: 6},
		{LocationID: "loc-1", Rating: 4, Photos: []Photo{{URL: " "}}},
	}
	for _, tt := range tests {
		if _, err := svc.Create(context.Background(), tt); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid for %+v, got %v", tt, err)
		}
	}
	if _, err := svc.Create(context.Background(), Review{LocationID: "loc-1", Rating: 4}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCreatePhotoError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO location_reviews`).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`INSERT INTO location_review_photos`).
		WillReturnError(errQuery)

	_, err = NewService(mock, nil).Create(context.Background(), Review{LocationID: "loc-1", Rating: 4, Photos: []Photo{{URL: "https://img"}}})
	if !errors.Is(err, errQuery) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
}

func TestList(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	createdAt := time.Now()
	mock.ExpectQuery(`FROM location_reviews`).
		WithArgs("loc-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "location_id", "user_id", "rating", "body", "created_at"}).
			AddRow("rev-1", "loc-1", "user-1", 5, "great", createdAt).
			AddRow("rev-2", "loc-1", "", 4, "", createdAt.Add(time.Minute)))
	mock.ExpectQuery(`FROM location_review_photos WHERE review_id = ANY\(\$1\)`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"review_id", "position", "photo_url", "caption"}).
			AddRow("rev-1", 1, "https://img/1.jpg", "").
			AddRow("rev-1", 2, "https://img/2.jpg", "view"))

	reviews, err := NewService(mock, nil).List(context.Background(), "loc-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reviews) != 2 || len(reviews[0].Photos) != 2 || len(reviews[1].Photos) != 0 {
		t.Fatalf("unexpected reviews %+v", reviews)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListEmptySkipsPhotoQuery(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM location_reviews`).
		WithArgs("loc-9").
		WillReturnRows(pgxmock.NewRows([]string{"id", "location_id", "user_id", "rating", "body", "created_at"}))

	reviews, err := NewService(mock, nil).List(context.Background(), "loc-9")
	if err != nil || len(reviews) != 0 || reviews == nil {
		t.Fatalf("expected empty non-nil list, got %v (%v)", reviews, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
