package models

import (
	"time"

	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
)

// Booking records one user claiming one ticket. Created together with its
// payment inside a single transaction and immutable afterwards except for
// the one-way Confirmed -> Cancelled transition.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	BookingID   string        `bun:"booking_id,pk" json:"bookingId"`
	UserID      int64         `bun:"user_id,notnull" json:"userId"`
	TicketID    int64         `bun:"ticket_id,notnull" json:"ticketId"`
	BookingDate time.Time     `bun:"booking_date,notnull" json:"bookingDate"`
	Status      BookingStatus `bun:"booking_status,notnull" json:"bookingStatus"`
}

type BookingRequest struct {
	TicketID int64 `json:"ticketId"`
}

// BookingConfirmation is what a successful POST /api/bookings returns.
type BookingConfirmation struct {
	BookingID      string  `json:"bookingId"`
	Title          string  `json:"title"`
	TicketCategory string  `json:"ticketCategory"`
	Price          float64 `json:"price"`
	QR             []byte  `json:"qr,omitempty"`
}

// UnpaidBooking is a booking row missing its payment, as found by the
// repair pass.
type UnpaidBooking struct {
	BookingID   string    `bun:"booking_id"`
	Price       float64   `bun:"price"`
	BookingDate time.Time `bun:"booking_date"`
}

// BookingWithEvent is a row of GET /api/bookings/me.
type BookingWithEvent struct {
	BookingID      string        `bun:"booking_id" json:"bookingId"`
	BookingDate    time.Time     `bun:"booking_date" json:"bookingDate"`
	Status         BookingStatus `bun:"booking_status" json:"bookingStatus"`
	Title          string        `bun:"title" json:"title"`
	StartDate      time.Time     `bun:"start_date" json:"startDate"`
	TicketCategory string        `bun:"t_category" json:"ticketCategory"`
	Price          float64       `bun:"price" json:"price"`
}
