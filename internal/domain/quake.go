package domain

import (
	"time"

	"github.com/google/uuid"
)

// Quake is one earthquake observation from the feed. Fields are carried
// verbatim from the source feature; Depth keeps the raw (possibly negative)
// kilometers value, clamping happens only when the color scale is built.
type Quake struct {
	ID        string    `json:"id"`
	EventType string    `json:"type"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Depth     float64   `json:"depth"`
	Magnitude float64   `json:"magnitude"`
	Place     string    `json:"place"`
	Time      time.Time `json:"time"`
}

// FeedSnapshot is one decoded fetch of the feed. Raw holds the upstream bytes
// so they can be served back unmodified and cached without re-encoding.
type FeedSnapshot struct {
	ID        string
	FetchedAt time.Time
	Quakes    []Quake
	Raw       []byte
}

// NewFeedSnapshot stamps a decoded feed with an identity and a fetch time.
func NewFeedSnapshot(quakes []Quake, raw []byte) FeedSnapshot {
	return FeedSnapshot{
		ID:        uuid.NewString(),
		FetchedAt: clock.Now().UTC(),
		Quakes:    quakes,
		Raw:       raw,
	}
}
