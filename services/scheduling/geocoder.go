package scheduling

import (
	"math"
	"strings"
	"sync"
)

// Geocoder resolves the distance in kilometers between two free-form
// addresses. The second return is false when either address cannot be
// resolved, in which case the engine falls back to the fixed travel buffer.
type Geocoder interface {
	Distance(fromAddress, toAddress string) (float64, bool)
}

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// StaticGeocoder resolves addresses from a fixed lookup table. It backs
// development setups and tests where no external geocoding service exists.
type StaticGeocoder struct {
	mu     sync.RWMutex
	coords map[string]Coordinates
}

func NewStaticGeocoder() *StaticGeocoder {
	return &StaticGeocoder{coords: make(map[string]Coordinates)}
}

// Add registers a known address.
func (g *StaticGeocoder) Add(address string, coords Coordinates) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.coords[normalizeAddressKey(address)] = coords
}

func (g *StaticGeocoder) Distance(fromAddress, toAddress string) (float64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	from, okFrom := g.coords[normalizeAddressKey(fromAddress)]
	to, okTo := g.coords[normalizeAddressKey(toAddress)]
	if !okFrom || !okTo {
		return 0, false
	}
	return haversineKm(from, to), true
}

func normalizeAddressKey(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}

const earthRadiusKm = 6371.0

func haversineKm(a, b Coordinates) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
