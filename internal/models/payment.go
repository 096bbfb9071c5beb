package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaymentStatus string

const (
	PaymentSuccessful PaymentStatus = "Successful"
	PaymentFailed     PaymentStatus = "Failed"
)

// DefaultPaymentMethod is recorded on every demo settlement.
const DefaultPaymentMethod = "UPI"

// Payment is the settlement record attached 1:1 to a booking. Amount is
// the ticket price captured at booking time, never recomputed.
type Payment struct {
	bun.BaseModel `bun:"table:payments"`

	PaymentID   string        `bun:"payment_id,pk" json:"paymentId"`
	BookingID   string        `bun:"booking_id,unique,notnull" json:"bookingId"`
	Amount      float64       `bun:"amount,notnull" json:"amount"`
	PaymentDate time.Time     `bun:"payment_date,notnull" json:"paymentDate"`
	Method      string        `bun:"method,notnull" json:"method"`
	Status      PaymentStatus `bun:"payment_status,notnull" json:"paymentStatus"`
}
