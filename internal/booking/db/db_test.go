package db_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"ms-booking/internal/apperr"
	"ms-booking/internal/booking/db"
	"ms-booking/internal/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T, tables ...interface{}) *db.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	// A single connection keeps the in-memory database alive and
	// serializes concurrent transactions.
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	for _, table := range tables {
		if err := bunDB.ResetModel(context.Background(), table); err != nil {
			t.Fatalf("Failed to create table for %T: %v", table, err)
		}
	}
	t.Cleanup(func() { bunDB.Close() })

	return &db.DB{Bun: bunDB}
}

func allTables() []interface{} {
	return []interface{}{
		(*models.User)(nil),
		(*models.Event)(nil),
		(*models.Ticket)(nil),
		(*models.Booking)(nil),
		(*models.Payment)(nil),
	}
}

func seedEventAndTicket(t *testing.T, d *db.DB, availability int) models.Ticket {
	t.Helper()
	ctx := context.Background()

	event := models.Event{
		EventID:     101,
		Title:       "Indie Music Night",
		Category:    "Music",
		StartDate:   time.Now().Add(14 * 24 * time.Hour),
		Duration:    3,
		OrganizerID: 2,
	}
	if _, err := d.Bun.NewInsert().Model(&event).Exec(ctx); err != nil {
		t.Fatalf("Failed to seed event: %v", err)
	}

	ticket := models.Ticket{
		TicketID:     301,
		EventID:      event.EventID,
		Category:     "General",
		Price:        500.0,
		Availability: availability,
	}
	if _, err := d.Bun.NewInsert().Model(&ticket).Exec(ctx); err != nil {
		t.Fatalf("Failed to seed ticket: %v", err)
	}
	return ticket
}

func newBookingAndPayment(bookingID string, userID int64, ticket models.Ticket) (models.Booking, models.Payment) {
	now := time.Now().UTC().Round(time.Second)
	booking := models.Booking{
		BookingID:   bookingID,
		UserID:      userID,
		TicketID:    ticket.TicketID,
		BookingDate: now,
		Status:      models.BookingConfirmed,
	}
	payment := models.Payment{
		PaymentID:   "pay-" + bookingID,
		BookingID:   bookingID,
		Amount:      ticket.Price,
		PaymentDate: now,
		Method:      models.DefaultPaymentMethod,
		Status:      models.PaymentSuccessful,
	}
	return booking, payment
}

func TestGetTicketNotFound(t *testing.T) {
	d := setupTestDB(t, allTables()...)

	_, err := d.GetTicket(context.Background(), 999)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCreateBookingWithPaymentDecrementsAvailability(t *testing.T) {
	d := setupTestDB(t, allTables()...)
	ticket := seedEventAndTicket(t, d, 5)
	ctx := context.Background()

	booking, payment := newBookingAndPayment("booking-1", 3, ticket)
	if err := d.CreateBookingWithPayment(ctx, booking, payment); err != nil {
		t.Fatalf("Failed to create booking: %v", err)
	}

	after, err := d.GetTicket(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("Failed to reload ticket: %v", err)
	}
	if after.Availability != 4 {
		t.Errorf("Expected availability 4, got %d", after.Availability)
	}

	stored, err := d.GetBookingByID(ctx, "booking-1")
	if err != nil {
		t.Fatalf("Failed to load booking: %v", err)
	}
	if stored.Status != models.BookingConfirmed {
		t.Errorf("Expected status Confirmed, got %s", stored.Status)
	}

	var paymentCount int
	paymentCount, err = d.Bun.NewSelect().Model((*models.Payment)(nil)).Where("booking_id = ?", "booking-1").Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count payments: %v", err)
	}
	if paymentCount != 1 {
		t.Errorf("Expected 1 payment, got %d", paymentCount)
	}
}

func TestCreateBookingWithPaymentSoldOut(t *testing.T) {
	d := setupTestDB(t, allTables()...)
	ticket := seedEventAndTicket(t, d, 0)
	ctx := context.Background()

	booking, payment := newBookingAndPayment("booking-1", 3, ticket)
	err := d.CreateBookingWithPayment(ctx, booking, payment)
	if !errors.Is(err, apperr.ErrSoldOut) {
		t.Fatalf("Expected ErrSoldOut, got %v", err)
	}

	// Nothing may be written when the decrement is refused.
	bookingCount, err := d.Bun.NewSelect().Model((*models.Booking)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count bookings: %v", err)
	}
	if bookingCount != 0 {
		t.Errorf("Expected 0 bookings, got %d", bookingCount)
	}
	paymentCount, err := d.Bun.NewSelect().Model((*models.Payment)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count payments: %v", err)
	}
	if paymentCount != 0 {
		t.Errorf("Expected 0 payments, got %d", paymentCount)
	}
}

func TestCreateBookingWithPaymentRollsBackOnFailure(t *testing.T) {
	// No payments table: the third statement of the transaction fails and
	// everything before it must roll back.
	d := setupTestDB(t,
		(*models.Event)(nil),
		(*models.Ticket)(nil),
		(*models.Booking)(nil),
	)
	ticket := seedEventAndTicket(t, d, 5)
	ctx := context.Background()

	booking, payment := newBookingAndPayment("booking-1", 3, ticket)
	if err := d.CreateBookingWithPayment(ctx, booking, payment); err == nil {
		t.Fatal("Expected error from missing payments table, got nil")
	}

	after, err := d.GetTicket(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("Failed to reload ticket: %v", err)
	}
	if after.Availability != 5 {
		t.Errorf("Expected availability unchanged at 5, got %d", after.Availability)
	}
	count, err := d.Bun.NewSelect().Model((*models.Booking)(nil)).Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count bookings: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 bookings after rollback, got %d", count)
	}
}

func TestConcurrentBookingsLastTicket(t *testing.T) {
	d := setupTestDB(t, allTables()...)
	ticket := seedEventAndTicket(t, d, 1)
	ctx := context.Background()

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			booking, payment := newBookingAndPayment(
				"booking-"+string(rune('a'+n)), int64(n+1), ticket)
			results <- d.CreateBookingWithPayment(ctx, booking, payment)
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded, soldOut := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperr.ErrSoldOut):
			soldOut++
		default:
			t.Errorf("Unexpected error: %v", err)
		}
	}

	if succeeded != 1 {
		t.Errorf("Expected exactly 1 successful booking, got %d", succeeded)
	}
	if soldOut != attempts-1 {
		t.Errorf("Expected %d sold-out errors, got %d", attempts-1, soldOut)
	}

	after, err := d.GetTicket(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("Failed to reload ticket: %v", err)
	}
	if after.Availability != 0 {
		t.Errorf("Expected availability 0, got %d", after.Availability)
	}
}

func TestGetConfirmationUsesCapturedPrice(t *testing.T) {
	d := setupTestDB(t, allTables()...)
	ticket := seedEventAndTicket(t, d, 5)
	ctx := context.Background()

	booking, payment := newBookingAndPayment("booking-1", 3, ticket)
	if err := d.CreateBookingWithPayment(ctx, booking, payment); err != nil {
		t.Fatalf("Failed to create booking: %v", err)
	}

	// Raise the ticket price after booking; the confirmation must keep
	// reporting what was actually paid.
	if _, err := d.Bun.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("price = ?", 900.0).
		Where("ticket_id = ?", ticket.TicketID).
		Exec(ctx); err != nil {
		t.Fatalf("Failed to update price: %v", err)
	}

	conf, err := d.GetConfirmation(ctx, "booking-1")
	if err != nil {
		t.Fatalf("Failed to get confirmation: %v", err)
	}
	if conf.BookingID != "booking-1" {
		t.Errorf("Expected booking id booking-1, got %s", conf.BookingID)
	}
	if conf.Title != "Indie Music Night" {
		t.Errorf("Expected event title, got %s", conf.Title)
	}
	if conf.TicketCategory != "General" {
		t.Errorf("Expected ticket category General, got %s", conf.TicketCategory)
	}
	if conf.Price != 500.0 {
		t.Errorf("Expected captured price 500, got %f", conf.Price)
	}
}

func TestUpdateBookingStatusDoesNotRestoreAvailability(t *testing.T) {
	d := setupTestDB(t, allTables()...)
	ticket := seedEventAndTicket(t, d, 5)
	ctx := context.Background()

	booking, payment := newBookingAndPayment("booking-1", 3, ticket)
	if err := d.CreateBookingWithPayment(ctx, booking, payment); err != nil {
		t.Fatalf("Failed to create booking: %v", err)
	}

	if err := d.UpdateBookingStatus(ctx, "booking-1", models.BookingCancelled); err != nil {
		t.Fatalf("Failed to cancel booking: %v", err)
	}

	stored, err := d.GetBookingByID(ctx, "booking-1")
	if err != nil {
		t.Fatalf("Failed to load booking: %v", err)
	}
	if stored.Status != models.BookingCancelled {
		t.Errorf("Expected status Cancelled, got %s", stored.Status)
	}

	after, err := d.GetTicket(ctx, ticket.TicketID)
	if err != nil {
		t.Fatalf("Failed to reload ticket: %v", err)
	}
	if after.Availability != 4 {
		t.Errorf("Expected availability to stay at 4 after cancel, got %d", after.Availability)
	}
}

func TestBookingsWithoutPaymentAndBackfill(t *testing.T) {
	d := setupTestDB(t, allTables()...)
	ticket := seedEventAndTicket(t, d, 5)
	ctx := context.Background()

	// One booking with a payment, one without.
	paid, payment := newBookingAndPayment("booking-paid", 3, ticket)
	if err := d.CreateBookingWithPayment(ctx, paid, payment); err != nil {
		t.Fatalf("Failed to create booking: %v", err)
	}
	orphan := models.Booking{
		BookingID:   "booking-orphan",
		UserID:      4,
		TicketID:    ticket.TicketID,
		BookingDate: time.Now().UTC().Round(time.Second),
		Status:      models.BookingConfirmed,
	}
	if _, err := d.Bun.NewInsert().Model(&orphan).Exec(ctx); err != nil {
		t.Fatalf("Failed to insert orphan booking: %v", err)
	}

	missing, err := d.BookingsWithoutPayment(ctx)
	if err != nil {
		t.Fatalf("Failed to list unpaid bookings: %v", err)
	}
	if len(missing) != 1 {
		t.Fatalf("Expected 1 unpaid booking, got %d", len(missing))
	}
	if missing[0].BookingID != "booking-orphan" {
		t.Errorf("Expected booking-orphan, got %s", missing[0].BookingID)
	}
	if missing[0].Price != ticket.Price {
		t.Errorf("Expected price %f, got %f", ticket.Price, missing[0].Price)
	}

	backfill := models.Payment{
		PaymentID:   "pay-backfill",
		BookingID:   "booking-orphan",
		Amount:      missing[0].Price,
		PaymentDate: missing[0].BookingDate,
		Method:      models.DefaultPaymentMethod,
		Status:      models.PaymentSuccessful,
	}
	if err := d.CreatePayments(ctx, []models.Payment{backfill}); err != nil {
		t.Fatalf("Failed to backfill payment: %v", err)
	}

	missing, err = d.BookingsWithoutPayment(ctx)
	if err != nil {
		t.Fatalf("Failed to list unpaid bookings: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("Expected no unpaid bookings after backfill, got %d", len(missing))
	}
}

func TestListBookingsByUser(t *testing.T) {
	d := setupTestDB(t, allTables()...)
	ticket := seedEventAndTicket(t, d, 5)
	ctx := context.Background()

	first, firstPay := newBookingAndPayment("booking-1", 3, ticket)
	first.BookingDate = time.Now().UTC().Add(-time.Hour).Round(time.Second)
	if err := d.CreateBookingWithPayment(ctx, first, firstPay); err != nil {
		t.Fatalf("Failed to create booking: %v", err)
	}
	second, secondPay := newBookingAndPayment("booking-2", 3, ticket)
	if err := d.CreateBookingWithPayment(ctx, second, secondPay); err != nil {
		t.Fatalf("Failed to create booking: %v", err)
	}
	other, otherPay := newBookingAndPayment("booking-other", 9, ticket)
	if err := d.CreateBookingWithPayment(ctx, other, otherPay); err != nil {
		t.Fatalf("Failed to create booking: %v", err)
	}

	rows, err := d.ListBookingsByUser(ctx, 3)
	if err != nil {
		t.Fatalf("Failed to list bookings: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 bookings for user 3, got %d", len(rows))
	}
	// Newest first.
	if rows[0].BookingID != "booking-2" {
		t.Errorf("Expected booking-2 first, got %s", rows[0].BookingID)
	}
	if rows[0].Title != "Indie Music Night" {
		t.Errorf("Expected joined event title, got %s", rows[0].Title)
	}

	empty, err := d.ListBookingsByUser(ctx, 42)
	if err != nil {
		t.Fatalf("Failed to list bookings: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("Expected empty non-nil slice for unknown user, got %v", empty)
	}
}
