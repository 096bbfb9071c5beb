package models

import (
	"github.com/uptrace/bun"
)

type Venue struct {
	bun.BaseModel `bun:"table:venues"`

	VenueID  int64  `bun:"venue_id,pk,autoincrement" json:"venueId"`
	Name     string `bun:"venue_name,notnull" json:"venueName"`
	Address  string `bun:"venue_address,nullzero" json:"venueAddress,omitempty"`
	Capacity int    `bun:"capacity,nullzero" json:"capacity,omitempty"`
}

// EventVenue links an event to the venue hosting it. One row per event in
// practice.
type EventVenue struct {
	bun.BaseModel `bun:"table:event_venues"`

	EventID int64 `bun:"event_id,pk" json:"eventId"`
	VenueID int64 `bun:"venue_id,pk" json:"venueId"`
}
