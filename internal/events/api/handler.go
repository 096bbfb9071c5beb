package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ms-booking/internal/apperr"
	"ms-booking/internal/cache"
	"ms-booking/internal/events/db"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Catalogue is the read-only event listing slice of the data store.
type Catalogue interface {
	ListEvents(ctx context.Context, filter db.ListFilter) ([]models.EventSummary, error)
	GetEventSummary(ctx context.Context, eventID int64) (*models.EventSummary, error)
	ListTicketsByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error)
	ListVenues(ctx context.Context) ([]models.Venue, error)
}

type Handler struct {
	Store  Catalogue
	Cache  *cache.AvailabilityCache
	Logger *logger.Logger
}

// ListEvents handles GET /api/events with q, category, sort, order, page
// and limit query parameters.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	events, err := h.Store.ListEvents(r.Context(), db.ListFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
		Order:    q.Get("order"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	utils.WriteJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /api/events/{eventId}: event, venue, rating and
// ticket tiers. Ticket availability is served through the Redis snapshot
// when present, falling back to the database row.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	summary, err := h.Store.GetEventSummary(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetEvent: id=%d: %v", eventID, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load event")
		return
	}

	tickets, err := h.Store.ListTicketsByEvent(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEvent: tickets for id=%d: %v", eventID, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load event")
		return
	}

	for i := range tickets {
		tickets[i].Availability = h.availability(r.Context(), tickets[i])
	}

	utils.WriteJSON(w, http.StatusOK, models.EventDetail{
		EventSummary: *summary,
		Tickets:      tickets,
	})
}

// availability reads through the cache: hit wins, miss seeds the snapshot
// from the database row. Cache trouble degrades to the database value.
func (h *Handler) availability(ctx context.Context, ticket models.Ticket) int {
	cached, ok, err := h.Cache.Get(ctx, ticket.TicketID)
	if err != nil {
		h.Logger.Warn("CACHE", fmt.Sprintf("availability get: ticket=%d: %v", ticket.TicketID, err))
		return ticket.Availability
	}
	if ok {
		return cached
	}
	if err := h.Cache.Set(ctx, ticket.TicketID, ticket.Availability); err != nil {
		h.Logger.Warn("CACHE", fmt.Sprintf("availability set: ticket=%d: %v", ticket.TicketID, err))
	}
	return ticket.Availability
}

// ListVenues handles GET /api/venues.
func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.Store.ListVenues(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListVenues: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list venues")
		return
	}
	utils.WriteJSON(w, http.StatusOK, venues)
}
