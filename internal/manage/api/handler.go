package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ms-booking/internal/apperr"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Store is the management slice of the data store. Every route reaching
// these handlers has already passed a RequireRole gate.
type Store interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, userID int64) error

	CreateEvent(ctx context.Context, event models.Event, venueID int64) (int64, error)
	UpdateEvent(ctx context.Context, event models.Event, venueID int64) error
	DeleteEvent(ctx context.Context, eventID int64) error
	GetEvent(ctx context.Context, eventID int64) (*models.Event, error)

	CreateTicket(ctx context.Context, ticket models.Ticket) (int64, error)
	UpdateTicket(ctx context.Context, ticket models.Ticket) error
	DeleteTicket(ctx context.Context, ticketID int64) error
}

type Handler struct {
	Store  Store
	Logger *logger.Logger
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// ---------------- USERS ----------------

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Role == "" || req.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	userID, err := h.Store.CreateUser(r.Context(), models.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateUser: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]int64{"userId": userID})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListUsers: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	utils.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.Store.UpdateUser(r.Context(), models.User{
		UserID:   userID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("UpdateUser: id=%d: %v", userID, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if err := h.Store.DeleteUser(r.Context(), userID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteUser: id=%d: %v", userID, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ---------------- EVENTS ----------------

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.Category == "" || req.StartDate.IsZero() || req.Duration == 0 || req.OrganizerID == 0 || req.VenueID == 0 {
		utils.WriteError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	eventID, err := h.Store.CreateEvent(r.Context(), models.Event{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		StartDate:   req.StartDate,
		Duration:    req.Duration,
		OrganizerID: req.OrganizerID,
	}, req.VenueID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]int64{"eventId": eventID})
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := idParam(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.Store.UpdateEvent(r.Context(), models.Event{
		EventID:     eventID,
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		StartDate:   req.StartDate,
		Duration:    req.Duration,
	}, req.VenueID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("UpdateEvent: id=%d: %v", eventID, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update event")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := idParam(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid event id")
		return
	}
	if err := h.Store.DeleteEvent(r.Context(), eventID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteEvent: id=%d: %v", eventID, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete event")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ---------------- TICKETS ----------------

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	eventID, ok := idParam(r, "id")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	var req models.CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Category == "" || req.Price == nil || req.Availability == nil {
		utils.WriteError(w, http.StatusBadRequest, "Missing fields")
		return
	}
	if *req.Availability < 0 {
		utils.WriteError(w, http.StatusBadRequest, "availability must be non-negative")
		return
	}

	if _, err := h.Store.GetEvent(r.Context(), eventID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("CreateTicket: event=%d: %v", eventID, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to add ticket")
		return
	}

	ticketID, err := h.Store.CreateTicket(r.Context(), models.Ticket{
		EventID:      eventID,
		Category:     req.Category,
		Price:        *req.Price,
		Availability: *req.Availability,
	})
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateTicket: event=%d: %v", eventID, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to add ticket")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]int64{"ticketId": ticketID})
}

func (h *Handler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := idParam(r, "ticketId")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	var req models.CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Category == "" || req.Price == nil || req.Availability == nil {
		utils.WriteError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	err := h.Store.UpdateTicket(r.Context(), models.Ticket{
		TicketID:     ticketID,
		Category:     req.Category,
		Price:        *req.Price,
		Availability: *req.Availability,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Ticket not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("UpdateTicket: id=%d: %v", ticketID, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update ticket")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := idParam(r, "ticketId")
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "Invalid ticket id")
		return
	}
	if err := h.Store.DeleteTicket(r.Context(), ticketID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteTicket: id=%d: %v", ticketID, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete ticket")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// RegisterRoutes mounts the management surface on the given router. The
// caller wraps it in the appropriate role gates.
func (h *Handler) RegisterUserRoutes(r chi.Router) {
	r.Post("/users", h.CreateUser)
	r.Get("/users", h.ListUsers)
	r.Put("/users/{id}", h.UpdateUser)
	r.Delete("/users/{id}", h.DeleteUser)
}

func (h *Handler) RegisterEventRoutes(r chi.Router) {
	r.Post("/events", h.CreateEvent)
	r.Put("/events/{id}", h.UpdateEvent)
	r.Delete("/events/{id}", h.DeleteEvent)
	r.Post("/events/{id}/tickets", h.CreateTicket)
	r.Put("/tickets/{ticketId}", h.UpdateTicket)
	r.Delete("/tickets/{ticketId}", h.DeleteTicket)
}
