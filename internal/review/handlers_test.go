package review

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func withUser(c *fiber.Ctx) error {
	c.Locals("user_id", "user-7")
	return c.Next()
}

func TestReviewHandlersCreateAndList(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO location_reviews`).
		WithArgs(pgxmock.AnyArg(), "loc-1", "user-7", 4, "nice").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	app := fiber.New()
	RegisterRoutes(app.Group("/locations"), NewService(mock, nil), withUser)

	body, _ := json.Marshal(Review{Rating: 4, Body: "nice", UserID: "spoofed"})
	req := httptest.NewRequest(http.MethodPost, "/locations/loc-1/reviews", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %v %d", err, resp.StatusCode)
	}

	mock.ExpectQuery(`FROM location_reviews`).
		WithArgs("loc-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "location_id", "user_id", "rating", "body", "created_at"}).
			AddRow("rev-1", "loc-1", "user-7", 4, "nice", time.Now()))
	mock.ExpectQuery(`FROM location_review_photos`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"review_id", "position", "photo_url", "caption"}).
			AddRow("rev-1", 1, "https://img/1.jpg", ""))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/locations/loc-1/reviews", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %v", err)
	}
	var out struct {
		Reviews []Review `json:"reviews"`
		Photos  int      `json:"photos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Reviews) != 1 || out.Photos != 1 {
		t.Fatalf("unexpected list %+v", out)
	}
}

func TestReviewHandlersErrors(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/locations"), NewService(nil, nil), withUser)

	req := httptest.NewRequest(http.MethodPost, "/locations/loc-1/reviews", bytes.NewBufferString(`{"rating":9}`))
	req.Header.Set("Content-Type", "application/json")
	if resp, _ := app.Test(req); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/locations/loc-1/reviews", bytes.NewBufferString(`{`))
	req.Header.Set("Content-Type", "application/json")
	if resp, _ := app.Test(req); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.StatusCode)
	}

	if resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/locations/loc-1/reviews", nil)); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}
