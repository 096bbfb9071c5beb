package db

import (
	"context"
	"fmt"

	"ms-booking/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// HasBookingForEvent reports whether the user holds at least one booking
// for a ticket of the event. This is the attendee gate for feedback.
func (d *DB) HasBookingForEvent(ctx context.Context, userID, eventID int64) (bool, error) {
	exists, err := d.Bun.NewSelect().
		TableExpr("bookings AS b").
		Join("JOIN tickets AS t ON t.ticket_id = b.ticket_id").
		Where("b.user_id = ? AND t.event_id = ?", userID, eventID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check attendance: %w", err)
	}
	return exists, nil
}

// UpsertFeedback inserts the feedback row or, when one already exists for
// (user, event), replaces its rating and comments. Idempotent under
// identical resubmission.
func (d *DB) UpsertFeedback(ctx context.Context, fb models.Feedback) error {
	_, err := d.Bun.NewInsert().
		Model(&fb).
		On("CONFLICT (user_id, event_id) DO UPDATE").
		Set("rating = EXCLUDED.rating").
		Set("comments = EXCLUDED.comments").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert feedback: %w", err)
	}
	return nil
}

// ListFeedbackByUser returns the user's feedback with event titles.
func (d *DB) ListFeedbackByUser(ctx context.Context, userID int64) ([]models.FeedbackWithEvent, error) {
	var rows []models.FeedbackWithEvent
	err := d.Bun.NewSelect().
		ColumnExpr("f.event_id").
		ColumnExpr("e.title").
		ColumnExpr("f.rating").
		ColumnExpr("f.comments").
		TableExpr("feedback AS f").
		Join("JOIN events AS e ON e.event_id = f.event_id").
		Where("f.user_id = ?", userID).
		OrderExpr("f.event_id DESC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	if rows == nil {
		rows = []models.FeedbackWithEvent{}
	}
	return rows, nil
}
