package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ms-booking/internal/apperr"
	"ms-booking/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- USERS (admin) ----------------

// CreateUser inserts a user and returns the store-generated id.
func (d *DB) CreateUser(ctx context.Context, user models.User) (int64, error) {
	_, err := d.Bun.NewInsert().
		Model(&user).
		ExcludeColumn("user_id").
		Returning("user_id").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return user.UserID, nil
}

func (d *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := d.Bun.NewSelect().
		Model(&users).
		OrderExpr("user_id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (d *DB) UpdateUser(ctx context.Context, user models.User) error {
	res, err := d.Bun.NewUpdate().
		Model(&user).
		Column("user_name", "user_email", "user_phone", "user_role", "user_password").
		Where("user_id = ?", user.UserID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (d *DB) DeleteUser(ctx context.Context, userID int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.User)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ---------------- EVENTS (organizer/admin) ----------------

// CreateEvent inserts the event and its venue link in one transaction.
func (d *DB) CreateEvent(ctx context.Context, event models.Event, venueID int64) (int64, error) {
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(&event).
			ExcludeColumn("event_id").
			Returning("event_id").
			Exec(ctx); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}

		link := models.EventVenue{EventID: event.EventID, VenueID: venueID}
		if _, err := tx.NewInsert().Model(&link).Exec(ctx); err != nil {
			return fmt.Errorf("insert event venue: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return event.EventID, nil
}

func (d *DB) UpdateEvent(ctx context.Context, event models.Event, venueID int64) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(&event).
			Column("title", "category", "event_description", "start_date", "duration").
			Where("event_id = ?", event.EventID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return apperr.ErrNotFound
		}

		if venueID != 0 {
			if _, err := tx.NewUpdate().
				Model((*models.EventVenue)(nil)).
				Set("venue_id = ?", venueID).
				Where("event_id = ?", event.EventID).
				Exec(ctx); err != nil {
				return fmt.Errorf("update event venue: %w", err)
			}
		}
		return nil
	})
}

// DeleteEvent removes the event and its dependent rows. Bookings and
// payments are kept: they are settlement history, not event metadata.
func (d *DB) DeleteEvent(ctx context.Context, eventID int64) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dependents := []interface{}{
			(*models.EventVenue)(nil),
			(*models.Ticket)(nil),
			(*models.EventSponsor)(nil),
			(*models.EventStaff)(nil),
			(*models.Feedback)(nil),
		}
		for _, model := range dependents {
			if _, err := tx.NewDelete().Model(model).Where("event_id = ?", eventID).Exec(ctx); err != nil {
				return fmt.Errorf("delete event dependents: %w", err)
			}
		}
		if _, err := tx.NewDelete().
			Model((*models.Event)(nil)).
			Where("event_id = ?", eventID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	})
}

func (d *DB) GetEvent(ctx context.Context, eventID int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("event_id = ?", eventID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &event, nil
}

// ---------------- TICKETS (organizer/admin) ----------------

func (d *DB) CreateTicket(ctx context.Context, ticket models.Ticket) (int64, error) {
	_, err := d.Bun.NewInsert().
		Model(&ticket).
		ExcludeColumn("ticket_id").
		Returning("ticket_id").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("insert ticket: %w", err)
	}
	return ticket.TicketID, nil
}

func (d *DB) UpdateTicket(ctx context.Context, ticket models.Ticket) error {
	res, err := d.Bun.NewUpdate().
		Model(&ticket).
		Column("t_category", "price", "availability").
		Where("ticket_id = ?", ticket.TicketID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (d *DB) DeleteTicket(ctx context.Context, ticketID int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Ticket)(nil)).
		Where("ticket_id = ?", ticketID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	return nil
}
