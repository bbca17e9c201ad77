package domain

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

// Coordinate is a WGS84 point selected on the map, in decimal degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

func NewCoordinate(lat, lng float64) (Coordinate, error) {
	if !isFinite(lat) || !isFinite(lng) {
		return Coordinate{}, NewDomainError(ErrCodeValidation, "coordinate must be a finite number", nil)
	}
	if !s2.LatLngFromDegrees(lat, lng).IsValid() {
		return Coordinate{}, NewDomainError(ErrCodeValidation, fmt.Sprintf("coordinate out of range: %.6f, %.6f", lat, lng), nil)
	}
	return Coordinate{Lat: lat, Lng: lng}, nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// DMS renders the coordinate in degrees-minutes-seconds form,
// e.g. 25°11′50″N, 55°16′28″E. Seconds are rounded to the nearest
// integer and a 60-second result carries into the minute.
func (c Coordinate) DMS() string {
	return formatAxis(c.Lat, "N", "S") + ", " + formatAxis(c.Lng, "E", "W")
}

func formatAxis(deg float64, positive, negative string) string {
	hemisphere := positive
	if deg < 0 {
		hemisphere = negative
	}
	abs := math.Abs(deg)
	d := int(abs)
	rem := (abs - float64(d)) * 60
	m := int(rem)
	s := int(math.Round((rem - float64(m)) * 60))
	if s == 60 {
		s = 0
		m++
	}
	if m == 60 {
		m = 0
		d++
	}
	return fmt.Sprintf("%d°%d′%d″%s", d, m, s, hemisphere)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
