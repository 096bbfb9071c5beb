package models

import (
	"github.com/uptrace/bun"
)

// Ticket is a purchasable allotment under an event. Availability is the
// contended resource: it only ever moves down, by exactly one per booking,
// and never below zero.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	TicketID     int64   `bun:"ticket_id,pk,autoincrement" json:"ticketId"`
	EventID      int64   `bun:"event_id,notnull" json:"eventId"`
	Category     string  `bun:"t_category,notnull" json:"tCategory"`
	Price        float64 `bun:"price,notnull" json:"price"`
	Availability int     `bun:"availability,notnull" json:"availability"`
}

type CreateTicketRequest struct {
	Category     string   `json:"tCategory"`
	Price        *float64 `json:"price"`
	Availability *int     `json:"availability"`
}
