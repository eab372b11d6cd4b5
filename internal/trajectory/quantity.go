package trajectory

import (
	"fmt"
	"strings"
)

// Quantity names a scalar channel of a state vector.
type Quantity string

// Known quantities, named after the state-vector columns they are decoded from.
const (
	Lat          Quantity = "lat"
	Lon          Quantity = "lon"
	BaroAltitude Quantity = "baroaltitude"
	GeoAltitude  Quantity = "geoaltitude"
	Heading      Quantity = "heading"
	Velocity     Quantity = "velocity"
)

// TimeColumn is the column holding sample times (seconds).
const TimeColumn = "time"

// KnownQuantities lists every quantity with a display name.
var KnownQuantities = []Quantity{Lat, Lon, BaroAltitude, GeoAltitude, Heading, Velocity}

var quantityUnits = map[Quantity]string{
	Lat:          "deg",
	Lon:          "deg",
	BaroAltitude: "m",
	GeoAltitude:  "m",
	Heading:      "deg",
	Velocity:     "m/s",
}

var quantityNames = map[Quantity]string{
	Lat:          "Latitude",
	Lon:          "Longitude",
	BaroAltitude: "Barometric Altitude",
	GeoAltitude:  "Geometric Altitude",
	Heading:      "Heading",
	Velocity:     "Velocity",
}

// Circular reports whether the quantity wraps modulo 360.
func (q Quantity) Circular() bool {
	return q == Lon || q == Heading
}

// Known reports whether q is one of KnownQuantities.
func (q Quantity) Known() bool {
	_, ok := quantityNames[q]
	return ok
}

// Name returns the display name without units, e.g. "Barometric Altitude".
// Unknown quantities are returned verbatim.
func (q Quantity) Name() string {
	if n, ok := quantityNames[q]; ok {
		return n
	}
	return string(q)
}

// Unit returns the SI unit the quantity is decoded in, or "" if unknown.
func (q Quantity) Unit() string {
	return quantityUnits[q]
}

// Label returns the display name with units, e.g. "Velocity (m/s)".
func (q Quantity) Label() string {
	u := q.Unit()
	if u == "" {
		return q.Name()
	}
	return fmt.Sprintf("%s (%s)", q.Name(), u)
}

// ParseQuantity validates a quantity name. Names are case-insensitive.
func ParseQuantity(s string) (Quantity, error) {
	q := Quantity(strings.ToLower(strings.TrimSpace(s)))
	if !q.Known() {
		return "", fmt.Errorf("%w: unknown quantity %q", ErrInvalidInput, s)
	}
	return q, nil
}
