package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	EventID     int64     `bun:"event_id,pk,autoincrement" json:"eventId"`
	Title       string    `bun:"title,notnull" json:"title"`
	Category    string    `bun:"category,notnull" json:"category"`
	Description string    `bun:"event_description,nullzero" json:"eventDescription,omitempty"`
	StartDate   time.Time `bun:"start_date,notnull" json:"startDate"`
	Duration    int       `bun:"duration,notnull" json:"duration"`
	OrganizerID int64     `bun:"organizer_id,notnull" json:"organizerId"`
}

// EventSummary is the catalogue listing row: event joined with its venue
// plus the average feedback rating.
type EventSummary struct {
	EventID      int64     `bun:"event_id" json:"eventId"`
	Title        string    `bun:"title" json:"title"`
	Category     string    `bun:"category" json:"category"`
	Description  string    `bun:"event_description" json:"eventDescription,omitempty"`
	StartDate    time.Time `bun:"start_date" json:"startDate"`
	Duration     int       `bun:"duration" json:"duration"`
	OrganizerID  int64     `bun:"organizer_id" json:"organizerId"`
	VenueName    string    `bun:"venue_name" json:"venueName,omitempty"`
	VenueAddress string    `bun:"venue_address" json:"venueAddress,omitempty"`
	AvgRating    float64   `bun:"avg_rating" json:"avgRating"`
}

type EventDetail struct {
	EventSummary
	Tickets []Ticket `json:"tickets"`
}

type CreateEventRequest struct {
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"eventDescription"`
	StartDate   time.Time `json:"startDate"`
	Duration    int       `json:"duration"`
	OrganizerID int64     `json:"organizerId"`
	VenueID     int64     `json:"venueId"`
}
