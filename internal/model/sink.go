package model

// Sink persists evaluated flows. Implementations must be safe for
// concurrent Write calls.
type Sink interface {
	Write(event *DetectionEvent) error
	Close() error
}
