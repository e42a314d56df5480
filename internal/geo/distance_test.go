package geo

import (
	"math"
	"testing"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	d := Distance(45.5240, -73.5897, 45.5240, -73.5897)
	if d != 0 {
		t.Errorf("expected 0 for identical coordinates, got %v", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	ab := Distance(45.5240, -73.5897, 45.5017, -73.5673)
	ba := Distance(45.5017, -73.5673, 45.5240, -73.5897)
	if math.Abs(ab-ba) > 1e-6 {
		t.Errorf("distance not symmetric: %v vs %v", ab, ba)
	}
}

func TestDistanceKnownValues(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lon1      float64
		lat2      float64
		lon2      float64
		want      float64
		tolerance float64
	}{
		{
			// 0.006 degrees of latitude is about 668 meters.
			name: "north along a meridian",
			lat1: 45.5240, lon1: -73.5897,
			lat2: 45.5300, lon2: -73.5897,
			want: 668, tolerance: 5,
		},
		{
			name: "across downtown Montreal",
			lat1: 45.5240, lon1: -73.5897,
			lat2: 45.5017, lon2: -73.5673,
			want: 3030, tolerance: 60,
		},
		{
			name: "a few meters apart",
			lat1: 45.5240, lon1: -73.5897,
			lat2: 45.52401, lon2: -73.5897,
			want: 1.1, tolerance: 0.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Distance() = %v, want %v (+/- %v)", got, tt.want, tt.tolerance)
			}
		})
	}
}
