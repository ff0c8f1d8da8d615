package mobsquid

import (
	"math"
	"sync/atomic"
	"time"
)

// LocationCache holds the most recent location reading supplied by the
// host. Readings also go to an optional diagnostic history which is
// never attached to events.
type LocationCache struct {
	latest  atomic.Pointer[Location]
	history *Ring[Location]
}

// NewLocationCache creates a cache. historySize <= 0 disables the history.
func NewLocationCache(historySize int) *LocationCache {
	c := &LocationCache{}
	if historySize > 0 {
		c.history = NewRing[Location](historySize)
	}
	return c
}

// Receive overwrites the cached reading. No validation is performed.
func (c *LocationCache) Receive(location Location) {
	c.latest.Store(&location)
	if c.history != nil {
		c.history.Add(location)
	}
}

// Snapshot returns a copy of the latest reading, or nil if none.
func (c *LocationCache) Snapshot() *Location {
	latest := c.latest.Load()
	if latest == nil {
		return nil
	}
	snapshot := *latest
	return &snapshot
}

// History returns the recorded readings, oldest first.
func (c *LocationCache) History() []Location {
	if c.history == nil {
		return nil
	}
	return c.history.Items()
}

const (
	staleLocationAge      = 2 * time.Minute
	minLocationInterval   = 10 * time.Second
	poorAccuracyDelta     = 200
	significantMoveMeters = 10.0
	earthRadiusMeters     = 6371000.0
)

// IsBetterLocation reports whether candidate should replace current. It
// weighs freshness, accuracy and provider the way mobile location
// listeners usually do; hosts can use it to filter readings before
// handing them to ReceiveLocation.
func IsBetterLocation(candidate Location, current *Location) bool {
	if current == nil {
		return true
	}

	age := candidate.CapturedAt.Sub(current.CapturedAt)
	switch {
	case age > staleLocationAge:
		// the user has likely moved since
		return true
	case age < -staleLocationAge:
		return false
	case age < minLocationInterval:
		return false
	}

	// whole meters: sub-meter differences count as equal accuracy
	accuracyDelta := int(candidate.Accuracy - current.Accuracy)
	switch {
	case accuracyDelta < 0:
		return true
	case accuracyDelta <= 0 && DistanceMeters(candidate, *current) > significantMoveMeters:
		return true
	case accuracyDelta <= poorAccuracyDelta && candidate.Provider == current.Provider:
		return true
	}
	return false
}

// DistanceMeters returns the great-circle distance between two readings.
func DistanceMeters(a, b Location) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}
