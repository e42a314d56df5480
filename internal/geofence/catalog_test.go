package geofence

import (
	"errors"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	catalog, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}

	if catalog.Len() != 6 {
		t.Errorf("expected 6 built-in locations, got %d", catalog.Len())
	}

	loc, err := catalog.Lookup("1")
	if err != nil {
		t.Fatalf("Lookup(\"1\") returned error: %v", err)
	}
	if loc.Address != "2308 av mont-royal E, Montreal" {
		t.Errorf("unexpected address for location 1: %q", loc.Address)
	}
	if loc.Radius != 50 {
		t.Errorf("expected radius 50, got %v", loc.Radius)
	}
}

func TestLookupUnknownLocation(t *testing.T) {
	catalog, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}

	if _, err := catalog.Lookup("999"); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("expected ErrUnknownLocation, got %v", err)
	}
	if _, err := catalog.Lookup(""); !errors.Is(err, ErrUnknownLocation) {
		t.Errorf("expected ErrUnknownLocation for empty id, got %v", err)
	}
}

func TestNewCatalogValidation(t *testing.T) {
	tests := []struct {
		name      string
		locations []Location
	}{
		{"empty table", nil},
		{"missing id", []Location{{Latitude: 1, Longitude: 1, Radius: 50}}},
		{"zero radius", []Location{{ID: "1", Latitude: 1, Longitude: 1, Radius: 0}}},
		{"negative radius", []Location{{ID: "1", Latitude: 1, Longitude: 1, Radius: -5}}},
		{"duplicate id", []Location{
			{ID: "1", Latitude: 1, Longitude: 1, Radius: 50},
			{ID: "1", Latitude: 2, Longitude: 2, Radius: 50},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCatalog(tt.locations); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
