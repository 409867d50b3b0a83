package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend-ecomap/internal/auth"
	"backend-ecomap/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "secret",
		ServerPort:     ":0",
		SearchDebounce: 10,
		GeoTimeout:     1000,
		GeoMaxAge:      60000,
	}
}

func TestHealthRoute(t *testing.T) {
	s := NewServer(testConfig(), nil, nil)
	defer s.Close()

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 status")
	}
}

func TestLocationsWithoutDatabase(t *testing.T) {
	s := NewServer(testConfig(), nil, nil)
	defer s.Close()

	resp, err := s.App.Test(httptest.NewRequest("GET", "/locations", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a database, got %d", resp.StatusCode)
	}
	var body struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Success {
		t.Fatalf("expected success false, got %+v (%v)", body, err)
	}
}

func TestMapSessionRequiresToken(t *testing.T) {
	s := NewServer(testConfig(), nil, nil)
	defer s.Close()

	resp, err := s.App.Test(httptest.NewRequest("POST", "/map/sessions", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	token, _ := auth.NewService("secret").Issue("user-1", time.Minute)
	req := httptest.NewRequest("POST", "/map/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var snap struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil || snap.SessionID == "" {
		t.Fatalf("expected session id, got %+v (%v)", snap, err)
	}
	if s.Sessions.Len() != 1 {
		t.Fatalf("expected one live session")
	}

	req = httptest.NewRequest("POST", "/map/sessions/"+snap.SessionID+"/events", bytes.NewBufferString(`{"type":"recenter"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = s.App.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("event status: %v", err)
	}
}

func TestReviewRoutesWithoutDatabase(t *testing.T) {
	s := NewServer(testConfig(), nil, nil)
	defer s.Close()

	resp, err := s.App.Test(httptest.NewRequest("GET", "/locations/loc-1/reviews", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a database, got %d", resp.StatusCode)
	}

	req := httptest.NewRequest("POST", "/locations/loc-1/reviews", bytes.NewBufferString(`{"rating":5}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = s.App.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", resp.StatusCode)
	}

	resp, err = s.App.Test(httptest.NewRequest("GET", "/locations/nearby?lat=31.1&lng=77.17", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected nearby 503 without a database, got %d", resp.StatusCode)
	}
}
