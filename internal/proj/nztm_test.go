package proj

import (
	"math"
	"testing"
)

func TestNZTMToWGS(t *testing.T) {
	// the first three points are LINZ's published NZTM2000 test coordinates
	tests := []struct {
		easting  float64
		northing float64
		lat      float64
		lng      float64
	}{
		{1576041.15, 6188574.24, -34.44406191348699, 172.73919397641492},
		{1576542.01, 5515331.05, -40.5124032038241, 172.72310597842494},
		{1307103.22, 4826464.86, -46.65000401626757, 169.17208906930503},
		{1825556, 5946643, -36.598645304758335, 175.52159408134605},
	}

	const tolerance = 1e-9

	for _, tt := range tests {
		lng, lat := NZTMToWGS(tt.easting, tt.northing)
		if math.Abs(lat-tt.lat) > tolerance {
			t.Errorf("NZTMToWGS(%v, %v) lat = %v, want %v", tt.easting, tt.northing, lat, tt.lat)
		}
		if math.Abs(lng-tt.lng) > tolerance {
			t.Errorf("NZTMToWGS(%v, %v) lng = %v, want %v", tt.easting, tt.northing, lng, tt.lng)
		}
	}
}
