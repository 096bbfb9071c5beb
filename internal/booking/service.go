package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-booking/internal/apperr"
	"ms-booking/internal/booking/qr"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"

	"github.com/google/uuid"
)

// DBLayer is the slice of the data store the booking service needs. The
// implementation in booking/db wraps everything mutation-side in a single
// transaction.
type DBLayer interface {
	GetTicket(ctx context.Context, ticketID int64) (*models.Ticket, error)
	CreateBookingWithPayment(ctx context.Context, booking models.Booking, payment models.Payment) error
	GetConfirmation(ctx context.Context, bookingID string) (*models.BookingConfirmation, error)
	GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, status models.BookingStatus) error
	ListBookingsByUser(ctx context.Context, userID int64) ([]models.BookingWithEvent, error)
	BookingsWithoutPayment(ctx context.Context) ([]models.UnpaidBooking, error)
	CreatePayments(ctx context.Context, payments []models.Payment) error
}

// Publisher streams booking lifecycle events. Failures are logged, never
// surfaced to the caller.
type Publisher interface {
	PublishBookingCreated(booking models.Booking, payment models.Payment) error
	PublishBookingCancelled(booking models.Booking) error
	PublishPaymentRecorded(payment models.Payment) error
}

// Cache invalidation hook for the availability snapshot.
type Cache interface {
	Invalidate(ctx context.Context, ticketIDs ...int64) error
}

type Service struct {
	DB     DBLayer
	Kafka  Publisher
	Cache  Cache
	QR     *qr.Generator
	Logger *logger.Logger
}

func NewService(db DBLayer, kafka Publisher, cache Cache, qrGen *qr.Generator, log *logger.Logger) *Service {
	return &Service{DB: db, Kafka: kafka, Cache: cache, QR: qrGen, Logger: log}
}

// PlaceBooking reserves one ticket for the user: decrement availability,
// insert the Confirmed booking and its Successful payment, all inside one
// transaction. Failure modes in order: ErrNotFound (unknown ticket),
// ErrSoldOut (no availability, including losing a race for the last one).
func (s *Service) PlaceBooking(ctx context.Context, userID, ticketID int64) (*models.BookingConfirmation, error) {
	ticket, err := s.DB.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Availability <= 0 {
		return nil, apperr.ErrSoldOut
	}

	now := time.Now().UTC()
	booking := models.Booking{
		BookingID:   uuid.NewString(),
		UserID:      userID,
		TicketID:    ticketID,
		BookingDate: now,
		Status:      models.BookingConfirmed,
	}
	// Amount is the price at booking time; later price edits must not
	// change what was settled.
	payment := models.Payment{
		PaymentID:   uuid.NewString(),
		BookingID:   booking.BookingID,
		Amount:      ticket.Price,
		PaymentDate: now,
		Method:      models.DefaultPaymentMethod,
		Status:      models.PaymentSuccessful,
	}

	if err := s.DB.CreateBookingWithPayment(ctx, booking, payment); err != nil {
		if errors.Is(err, apperr.ErrSoldOut) {
			return nil, apperr.ErrSoldOut
		}
		return nil, fmt.Errorf("booking transaction: %w", err)
	}

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, ticketID); err != nil && s.Logger != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("failed to invalidate availability for ticket %d: %v", ticketID, err))
		}
	}
	if s.Kafka != nil {
		if err := s.Kafka.PublishBookingCreated(booking, payment); err != nil && s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish booking.created for %s: %v", booking.BookingID, err))
		}
	}

	conf, err := s.DB.GetConfirmation(ctx, booking.BookingID)
	if err != nil {
		return nil, fmt.Errorf("load confirmation: %w", err)
	}
	if s.QR != nil {
		if code, err := s.QR.GenerateConfirmationQR(*conf); err == nil {
			conf.QR = code
		} else if s.Logger != nil {
			s.Logger.Warn("QR", fmt.Sprintf("failed to generate confirmation QR for %s: %v", booking.BookingID, err))
		}
	}
	return conf, nil
}

// CancelBooking transitions the caller's booking Confirmed -> Cancelled.
// Ownership is enforced; a booking that is not the caller's (or does not
// exist) is ErrForbidden, matching the booking-by-owner lookup. Ticket
// availability is not restored.
func (s *Service) CancelBooking(ctx context.Context, userID int64, bookingID string) error {
	booking, err := s.DB.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrForbidden
		}
		return err
	}
	if booking.UserID != userID {
		return apperr.ErrForbidden
	}

	if err := s.DB.UpdateBookingStatus(ctx, bookingID, models.BookingCancelled); err != nil {
		return err
	}

	booking.Status = models.BookingCancelled
	if s.Kafka != nil {
		if err := s.Kafka.PublishBookingCancelled(*booking); err != nil && s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish booking.cancelled for %s: %v", bookingID, err))
		}
	}
	return nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]models.BookingWithEvent, error) {
	return s.DB.ListBookingsByUser(ctx, userID)
}

// RepairPayments backfills a Successful payment for every booking missing
// one, restoring the one-payment-per-booking invariant for historical
// rows. Returns how many payments were created.
func (s *Service) RepairPayments(ctx context.Context) (int, error) {
	missing, err := s.DB.BookingsWithoutPayment(ctx)
	if err != nil {
		return 0, err
	}
	if len(missing) == 0 {
		return 0, nil
	}

	payments := make([]models.Payment, len(missing))
	for i, b := range missing {
		payments[i] = models.Payment{
			PaymentID:   uuid.NewString(),
			BookingID:   b.BookingID,
			Amount:      b.Price,
			PaymentDate: b.BookingDate,
			Method:      models.DefaultPaymentMethod,
			Status:      models.PaymentSuccessful,
		}
	}
	if err := s.DB.CreatePayments(ctx, payments); err != nil {
		return 0, err
	}

	if s.Kafka != nil {
		for _, p := range payments {
			if err := s.Kafka.PublishPaymentRecorded(p); err != nil && s.Logger != nil {
				s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish payment.recorded for %s: %v", p.PaymentID, err))
			}
		}
	}
	return len(payments), nil
}
