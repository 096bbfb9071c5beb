package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ms-booking/internal/apperr"
	"ms-booking/internal/auth"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"

	"github.com/go-chi/chi/v5"
)

// BookingService is what the handler needs from the service layer.
type BookingService interface {
	PlaceBooking(ctx context.Context, userID, ticketID int64) (*models.BookingConfirmation, error)
	CancelBooking(ctx context.Context, userID int64, bookingID string) error
	ListByUser(ctx context.Context, userID int64) ([]models.BookingWithEvent, error)
	RepairPayments(ctx context.Context) (int, error)
}

type Handler struct {
	BookingService BookingService
	Logger         *logger.Logger
}

// CreateBooking handles POST /api/bookings.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TicketID == 0 {
		utils.WriteError(w, http.StatusBadRequest, "ticketId required")
		return
	}

	conf, err := h.BookingService.PlaceBooking(r.Context(), uid, req.TicketID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateBooking: user=%d ticket=%d: %v", uid, req.TicketID, err))
		h.respondError(w, err, "Failed to create booking", map[int]string{
			http.StatusNotFound: "Ticket not found",
			http.StatusConflict: "Sold out",
		})
		return
	}

	h.Logger.LogBooking("CREATE", conf.BookingID, fmt.Sprintf("user %d booked ticket %d", uid, req.TicketID))
	utils.WriteJSON(w, http.StatusCreated, conf)
}

// ListMyBookings handles GET /api/bookings/me.
func (h *Handler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	bookings, err := h.BookingService.ListByUser(r.Context(), uid)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListMyBookings: user=%d: %v", uid, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	utils.WriteJSON(w, http.StatusOK, bookings)
}

// CancelBooking handles POST /api/bookings/{bookingId}/cancel.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	bookingID := chi.URLParam(r, "bookingId")
	if err := h.BookingService.CancelBooking(r.Context(), uid, bookingID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelBooking: user=%d booking=%s: %v", uid, bookingID, err))
		h.respondError(w, err, "Failed to cancel booking", map[int]string{
			http.StatusForbidden: "Not your booking",
		})
		return
	}

	h.Logger.LogBooking("CANCEL", bookingID, fmt.Sprintf("cancelled by user %d", uid))
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// FixPayments handles POST /api/bookings/fix-payments, the repair pass
// that backfills missing payment rows.
func (h *Handler) FixPayments(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserID(r.Context()); !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	count, err := h.BookingService.RepairPayments(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("FixPayments: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fix payments")
		return
	}

	message := "Payments created successfully"
	if count == 0 {
		message = "All bookings already have payments"
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"count":   count,
	})
}

// respondError maps a service error to its status, using the override
// message for known statuses and the fallback for internal failures.
func (h *Handler) respondError(w http.ResponseWriter, err error, fallback string, messages map[int]string) {
	status := apperr.Status(err)
	msg, ok := messages[status]
	if !ok {
		if status == http.StatusInternalServerError {
			msg = fallback
		} else {
			msg = err.Error()
		}
	}
	utils.WriteError(w, status, msg)
}
