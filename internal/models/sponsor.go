package models

import (
	"github.com/uptrace/bun"
)

type Sponsor struct {
	bun.BaseModel `bun:"table:sponsors"`

	SponsorID int64  `bun:"sponsor_id,pk,autoincrement" json:"sponsorId"`
	Name      string `bun:"sponsor_name,notnull" json:"sponsorName"`
	Contact   string `bun:"contact,nullzero" json:"contact,omitempty"`
}

type EventSponsor struct {
	bun.BaseModel `bun:"table:event_sponsors"`

	EventID   int64 `bun:"event_id,pk" json:"eventId"`
	SponsorID int64 `bun:"sponsor_id,pk" json:"sponsorId"`
}
