package models

import (
	"github.com/uptrace/bun"
)

// Feedback is unique per (user, event); repeated submissions replace the
// previous rating and comments.
type Feedback struct {
	bun.BaseModel `bun:"table:feedback"`

	UserID   int64  `bun:"user_id,pk" json:"userId"`
	EventID  int64  `bun:"event_id,pk" json:"eventId"`
	Rating   int    `bun:"rating,notnull" json:"rating"`
	Comments string `bun:"comments,nullzero" json:"comments,omitempty"`
}

type FeedbackRequest struct {
	EventID  int64  `json:"eventId"`
	Rating   int    `json:"rating"`
	Comments string `json:"comments"`
}

type FeedbackWithEvent struct {
	EventID    int64  `bun:"event_id" json:"eventId"`
	EventTitle string `bun:"title" json:"eventTitle"`
	Rating     int    `bun:"rating" json:"rating"`
	Comments   string `bun:"comments" json:"comments,omitempty"`
}
