package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gym-service/internal/domain"
	"gym-service/internal/geofence"
	"gym-service/internal/service"

	"github.com/labstack/echo/v4"
)

type stubEventStore struct {
	attemptCount int
	inserted     []domain.AccessEvent
}

func (s *stubEventStore) Insert(_ context.Context, event *domain.AccessEvent) error {
	s.inserted = append(s.inserted, *event)
	return nil
}

func (s *stubEventStore) CountAttemptsSince(_ context.Context, _, _ string, _ time.Time) (int, error) {
	return s.attemptCount, nil
}

func (s *stubEventStore) LatestSuccessSince(_ context.Context, _, _ string, _ time.Time) (*domain.AccessEvent, error) {
	return nil, nil
}

func (s *stubEventStore) ListSuccessSince(_ context.Context, _ string, _ time.Time, _ string) ([]domain.AccessEvent, error) {
	return nil, nil
}

func (s *stubEventStore) ListByUser(_ context.Context, _ string, _, _ int) ([]domain.AccessEvent, error) {
	return nil, nil
}

func (s *stubEventStore) CountByUser(_ context.Context, _ string) (int, error) {
	return 0, nil
}

func newTestServer(t *testing.T, store *stubEventStore) *Server {
	t.Helper()

	catalog, err := geofence.Load("")
	if err != nil {
		t.Fatalf("failed to load geofence catalog: %v", err)
	}

	accessService := service.NewAccessService(store, catalog, service.NewAuditService(nil))

	return NewServer(Dependencies{AccessService: accessService})
}

func doRequest(t *testing.T, handler echo.HandlerFunc, userID, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != "" {
		req.Header.Set(userIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := RequireUser(handler)(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func TestRequireUserRejectsAnonymous(t *testing.T) {
	srv := newTestServer(t, &stubEventStore{})

	rec := doRequest(t, srv.CheckAccess, "", `{}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestCheckAccessHandlerAuthorized(t *testing.T) {
	srv := newTestServer(t, &stubEventStore{})

	body := `{"locationId": "1", "userLocation": {"latitude": 45.5240, "longitude": -73.5897}}`
	rec := doRequest(t, srv.CheckAccess, "user-1", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["success"] != true {
		t.Errorf("expected success true, got %v", resp["success"])
	}
}

func TestCheckAccessHandlerStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		store      *stubEventStore
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing location id",
			store:      &stubEventStore{},
			body:       `{"userLocation": {"latitude": 45.5240, "longitude": -73.5897}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.CodeLocationRequired,
		},
		{
			name:       "missing coordinates",
			store:      &stubEventStore{},
			body:       `{"locationId": "1"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.CodeLocationRequired,
		},
		{
			name:       "unknown location",
			store:      &stubEventStore{},
			body:       `{"locationId": "999", "userLocation": {"latitude": 45.5240, "longitude": -73.5897}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.CodeInvalidLocation,
		},
		{
			name:       "rate limited",
			store:      &stubEventStore{attemptCount: 3},
			body:       `{"locationId": "1", "userLocation": {"latitude": 45.5240, "longitude": -73.5897}}`,
			wantStatus: http.StatusTooManyRequests,
			wantCode:   domain.CodeRateLimited,
		},
		{
			name:       "too far",
			store:      &stubEventStore{},
			body:       `{"locationId": "1", "userLocation": {"latitude": 45.6000, "longitude": -73.5897}}`,
			wantStatus: http.StatusForbidden,
			wantCode:   domain.CodeTooFar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.store)
			rec := doRequest(t, srv.CheckAccess, "user-1", tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			resp := decodeBody(t, rec)
			if resp["code"] != tt.wantCode {
				t.Errorf("expected code %s, got %v", tt.wantCode, resp["code"])
			}
		})
	}
}

func TestLogAccessHandler(t *testing.T) {
	store := &stubEventStore{}
	srv := newTestServer(t, store)

	body := `{"location": {"id": "1", "name": "Main Gym Door", "ip": "192.168.1.100"}}`
	rec := doRequest(t, srv.LogAccess, "user-1", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(store.inserted))
	}
	if store.inserted[0].Status != domain.AccessStatusSuccess {
		t.Errorf("expected default status success, got %s", store.inserted[0].Status)
	}
}

func TestLogAccessHandlerRejectsIncompleteLocation(t *testing.T) {
	srv := newTestServer(t, &stubEventStore{})

	rec := doRequest(t, srv.LogAccess, "user-1", `{"location": {"id": "1"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUnlockLogsSuccess(t *testing.T) {
	store := &stubEventStore{}
	srv := newTestServer(t, store)

	body := `{
		"location": {"id": "1", "name": "Main Gym Door", "ip": "192.168.1.100"},
		"userLocation": {"latitude": 45.5240, "longitude": -73.5897}
	}`
	rec := doRequest(t, srv.Unlock, "user-1", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["success"] != true {
		t.Errorf("expected success true, got %v", resp["success"])
	}
	if len(store.inserted) != 1 || store.inserted[0].Status != domain.AccessStatusSuccess {
		t.Errorf("expected one success event, got %+v", store.inserted)
	}
}

func TestUnlockLogsDenialWhenTooFar(t *testing.T) {
	store := &stubEventStore{}
	srv := newTestServer(t, store)

	body := `{
		"location": {"id": "1", "name": "Main Gym Door", "ip": "192.168.1.100"},
		"userLocation": {"latitude": 45.6000, "longitude": -73.5897}
	}`
	rec := doRequest(t, srv.Unlock, "user-1", body)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.inserted) != 1 || store.inserted[0].Status != domain.AccessStatusDenied {
		t.Errorf("expected one denied event, got %+v", store.inserted)
	}
}

func TestUnlockSkipsLogOnInputFault(t *testing.T) {
	store := &stubEventStore{}
	srv := newTestServer(t, store)

	// No coordinates at all: a caller fault, not a policy denial.
	body := `{"location": {"id": "1", "name": "Main Gym Door", "ip": "192.168.1.100"}}`
	rec := doRequest(t, srv.Unlock, "user-1", body)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.inserted) != 0 {
		t.Errorf("input faults must not be logged, got %+v", store.inserted)
	}
}
