package models

import (
	"github.com/uptrace/bun"
)

type Staff struct {
	bun.BaseModel `bun:"table:staff"`

	StaffID int64  `bun:"staff_id,pk,autoincrement" json:"staffId"`
	Name    string `bun:"staff_name,notnull" json:"staffName"`
	Duty    string `bun:"duty,nullzero" json:"duty,omitempty"`
}

type EventStaff struct {
	bun.BaseModel `bun:"table:event_staff"`

	EventID int64 `bun:"event_id,pk" json:"eventId"`
	StaffID int64 `bun:"staff_id,pk" json:"staffId"`
}
