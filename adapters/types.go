package adapters

import "time"

// Event represents a tracked event as it travels through the pipeline and
// over the wire.
type Event struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
	Timestamp  time.Time      `json:"timestamp"`
	Location   *Location      `json:"location,omitempty"`
	SessionID  string         `json:"sessionId,omitempty"`
	SDKVersion string         `json:"sdkVersion,omitempty"`
	Platform   *Platform      `json:"platform,omitempty"`
}

// Location is a single position reading supplied by the host application.
type Location struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy"`
	CapturedAt time.Time `json:"capturedAt"`
	Provider   string    `json:"provider,omitempty"`
}

// Platform describes the runtime the SDK is embedded in.
type Platform struct {
	Type string `json:"type"`
}

// IsPrimitive reports whether v is one of the value kinds allowed in
// event properties and context maps: string, bool, integers and floats.
func IsPrimitive(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
