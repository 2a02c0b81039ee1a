package eeg

const (
	EventSpindle  EventType = "sleep_spindle"
	EventKComplex EventType = "k_complex"
	EventREMBurst EventType = "rem_burst"
)

// EventType identifies a detected transient pattern.
type EventType string

// Valid reports whether t is a member of the event type enumeration.
func (t EventType) Valid() bool {
	switch t {
	case EventSpindle, EventKComplex, EventREMBurst:
		return true
	}
	return false
}

// Event is one detected transient attributed to a point in time on a single
// channel. Confidence is an opaque detector output in [0,1]. Frequency is
// populated for spindles, Amplitude for K-complexes, Duration for spindles
// and REM bursts; the remaining fields are zero.
type Event struct {
	Time       float64   `json:"time"` // seconds from recording start
	Channel    string    `json:"channel"`
	Type       EventType `json:"type"`
	Confidence float64   `json:"confidence"`
	Frequency  float64   `json:"frequency,omitempty"` // Hz
	Amplitude  float64   `json:"amplitude,omitempty"` // µV
	Duration   float64   `json:"duration,omitempty"`  // seconds
}
