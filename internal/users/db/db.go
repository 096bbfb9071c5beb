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

// GetUserByID fetches the authoritative user record. The auth gates call
// this on every privileged request rather than trusting the session.
func (d *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("user_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetUserByCredentials matches the demo login: plain email/password
// equality against seed data. Returns ErrNotFound on no match.
func (d *DB) GetUserByCredentials(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("user_email = ? AND user_password = ?", email, password).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("get user by credentials: %w", err)
	}
	return &user, nil
}

// TotalPaid sums the user's successful payments.
func (d *DB) TotalPaid(ctx context.Context, userID int64) (float64, error) {
	var total float64
	err := d.Bun.NewSelect().
		ColumnExpr("COALESCE(SUM(p.amount), 0)").
		TableExpr("payments AS p").
		Join("JOIN bookings AS b ON b.booking_id = p.booking_id").
		Where("b.user_id = ? AND p.payment_status = ?", userID, models.PaymentSuccessful).
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("total paid: %w", err)
	}
	return total, nil
}
