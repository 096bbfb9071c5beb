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

// GetTicket fetches one ticket row or apperr.ErrNotFound.
func (d *DB) GetTicket(ctx context.Context, ticketID int64) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("ticket_id = ?", ticketID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &ticket, nil
}

// CreateBookingWithPayment runs the booking write as one all-or-nothing
// transaction:
//
//  1. conditionally decrement availability, refusing to go below zero
//  2. insert the Confirmed booking
//  3. insert its Successful payment
//
// The conditional UPDATE is what serializes concurrent bookings: when two
// requests race for the last ticket, exactly one sees a row affected and
// the other gets apperr.ErrSoldOut with nothing written.
func (d *DB) CreateBookingWithPayment(ctx context.Context, booking models.Booking, payment models.Payment) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Ticket)(nil)).
			Set("availability = availability - 1").
			Where("ticket_id = ? AND availability > 0", booking.TicketID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("decrement availability: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("decrement availability: %w", err)
		}
		if affected == 0 {
			return apperr.ErrSoldOut
		}

		if _, err := tx.NewInsert().Model(&booking).Exec(ctx); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		if _, err := tx.NewInsert().Model(&payment).Exec(ctx); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		return nil
	})
}

// GetConfirmation builds the booking confirmation from the committed
// rows. Price comes from the payment amount captured at booking time, not
// from the current ticket price.
func (d *DB) GetConfirmation(ctx context.Context, bookingID string) (*models.BookingConfirmation, error) {
	var conf models.BookingConfirmation
	err := d.Bun.NewSelect().
		ColumnExpr("b.booking_id").
		ColumnExpr("e.title").
		ColumnExpr("t.t_category AS ticket_category").
		ColumnExpr("p.amount AS price").
		TableExpr("bookings AS b").
		Join("JOIN tickets AS t ON t.ticket_id = b.ticket_id").
		Join("JOIN events AS e ON e.event_id = t.event_id").
		Join("JOIN payments AS p ON p.booking_id = b.booking_id").
		Where("b.booking_id = ?", bookingID).
		Limit(1).
		Scan(ctx, &conf.BookingID, &conf.Title, &conf.TicketCategory, &conf.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get confirmation: %w", err)
	}
	return &conf, nil
}

func (d *DB) GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("booking_id = ?", bookingID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &booking, nil
}

// UpdateBookingStatus writes the status transition. Availability is not
// touched here: cancellation does not restore inventory.
func (d *DB) UpdateBookingStatus(ctx context.Context, bookingID string, status models.BookingStatus) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("booking_status = ?", status).
		Where("booking_id = ?", bookingID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return nil
}

// ListBookingsByUser returns the user's bookings joined with event and
// ticket details, newest first.
func (d *DB) ListBookingsByUser(ctx context.Context, userID int64) ([]models.BookingWithEvent, error) {
	var rows []models.BookingWithEvent
	err := d.Bun.NewSelect().
		ColumnExpr("b.booking_id").
		ColumnExpr("b.booking_date").
		ColumnExpr("b.booking_status").
		ColumnExpr("e.title").
		ColumnExpr("e.start_date").
		ColumnExpr("t.t_category").
		ColumnExpr("t.price").
		TableExpr("bookings AS b").
		Join("JOIN tickets AS t ON t.ticket_id = b.ticket_id").
		Join("JOIN events AS e ON e.event_id = t.event_id").
		Where("b.user_id = ?", userID).
		OrderExpr("b.booking_date DESC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if rows == nil {
		rows = []models.BookingWithEvent{}
	}
	return rows, nil
}

// BookingsWithoutPayment finds bookings the payment invariant does not
// hold for, with the price each payment should have carried.
func (d *DB) BookingsWithoutPayment(ctx context.Context) ([]models.UnpaidBooking, error) {
	var rows []models.UnpaidBooking
	err := d.Bun.NewSelect().
		ColumnExpr("b.booking_id").
		ColumnExpr("t.price").
		ColumnExpr("b.booking_date").
		TableExpr("bookings AS b").
		Join("JOIN tickets AS t ON t.ticket_id = b.ticket_id").
		Where("b.booking_id NOT IN (SELECT booking_id FROM payments)").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("bookings without payment: %w", err)
	}
	return rows, nil
}

// CreatePayments bulk-inserts backfilled payments in a single statement.
func (d *DB) CreatePayments(ctx context.Context, payments []models.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	if _, err := d.Bun.NewInsert().Model(&payments).Exec(ctx); err != nil {
		return fmt.Errorf("insert payments: %w", err)
	}
	return nil
}
