package geofence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

var (
	ErrUnknownLocation = errors.New("unknown location")
)

// Location is a gym site's geofence: a center coordinate plus an allowed
// radius in meters. Loaded once at startup and read-only afterwards.
type Location struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	Radius    float64 `json:"radius"`
}

type Catalog struct {
	locations map[string]Location
}

// defaultLocations is the reference deployment: six Montreal gyms,
// 50 meter radius each.
func defaultLocations() []Location {
	return []Location{
		{ID: "1", Latitude: 45.5240, Longitude: -73.5897, Address: "2308 av mont-royal E, Montreal", Radius: 50},
		{ID: "2", Latitude: 45.5017, Longitude: -73.5673, Address: "Sainte-Catherine Street, Montreal", Radius: 50},
		{ID: "3", Latitude: 45.5600, Longitude: -73.5400, Address: "Saint-Laurent Boulevard, Montreal", Radius: 50},
		{ID: "4", Latitude: 45.5080, Longitude: -73.5600, Address: "China Town, Montreal", Radius: 50},
		{ID: "5", Latitude: 45.5030, Longitude: -73.5780, Address: "Mansfield Street, Montreal", Radius: 50},
		{ID: "6", Latitude: 45.5250, Longitude: -73.6050, Address: "Mile End, Montreal", Radius: 50},
	}
}

// NewCatalog builds a catalog from the given locations.
func NewCatalog(locations []Location) (*Catalog, error) {
	if len(locations) == 0 {
		return nil, errors.New("geofence catalog requires at least one location")
	}

	byID := make(map[string]Location, len(locations))
	for _, loc := range locations {
		if loc.ID == "" {
			return nil, errors.New("geofence location is missing an id")
		}
		if loc.Radius <= 0 {
			return nil, fmt.Errorf("geofence location %s has non-positive radius %v", loc.ID, loc.Radius)
		}
		if _, exists := byID[loc.ID]; exists {
			return nil, fmt.Errorf("duplicate geofence location id %s", loc.ID)
		}
		byID[loc.ID] = loc
	}

	return &Catalog{locations: byID}, nil
}

// Load builds the catalog from a JSON file when path is non-empty,
// otherwise from the built-in reference table.
func Load(path string) (*Catalog, error) {
	if path == "" {
		log.Info("Using built-in geofence location table")
		return NewCatalog(defaultLocations())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read geofence config: %w", err)
	}

	var locations []Location
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, fmt.Errorf("failed to parse geofence config: %w", err)
	}

	log.WithFields(log.Fields{
		"path":      path,
		"locations": len(locations),
	}).Info("Loaded geofence locations from config file")

	return NewCatalog(locations)
}

// Lookup resolves a location id. Unknown ids fail with ErrUnknownLocation;
// callers must treat that as a hard deny, never a default-allow.
func (c *Catalog) Lookup(locationID string) (*Location, error) {
	loc, ok := c.locations[locationID]
	if !ok {
		return nil, ErrUnknownLocation
	}
	return &loc, nil
}

// Len returns the number of registered locations.
func (c *Catalog) Len() int {
	return len(c.locations)
}
