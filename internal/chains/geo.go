package chains

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// IsZero reports whether p is the zero coordinate, used as "unset".
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}

// Haversine is the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)
	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Pow(math.Sin(dLng/2), 2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// FormatDistance renders km as metres below one kilometre, with one decimal
// below ten, and as whole kilometres beyond that.
func FormatDistance(km float64) string {
	switch {
	case math.IsNaN(km) || km < 0:
		return ""
	case km < 1:
		return fmt.Sprintf("%d m", int(math.Round(km*1000)))
	case km < 10:
		return fmt.Sprintf("%.1f km", km)
	}
	return fmt.Sprintf("%d km", int(math.Round(km)))
}

// FormatCoords renders p like "52.3791°N, 4.8981°E".
func FormatCoords(p Point) string {
	latDir, lngDir := "N", "E"
	if p.Lat < 0 {
		latDir = "S"
	}
	if p.Lng < 0 {
		lngDir = "W"
	}
	return fmt.Sprintf("%.4f°%s, %.4f°%s", math.Abs(p.Lat), latDir, math.Abs(p.Lng), lngDir)
}
