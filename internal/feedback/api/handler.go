package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-booking/internal/apperr"
	"ms-booking/internal/auth"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
	"ms-booking/internal/utils"
)

type FeedbackService interface {
	Submit(ctx context.Context, userID int64, req models.FeedbackRequest) error
	ListByUser(ctx context.Context, userID int64) ([]models.FeedbackWithEvent, error)
}

type Handler struct {
	FeedbackService FeedbackService
	Logger          *logger.Logger
}

// Submit handles POST /api/feedback.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.FeedbackService.Submit(r.Context(), uid, req); err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidArgument):
			utils.WriteError(w, http.StatusBadRequest, "eventId and rating (1-5) required")
		case errors.Is(err, apperr.ErrForbidden):
			utils.WriteError(w, http.StatusForbidden, "Feedback allowed for attendees only")
		default:
			h.Logger.Error("API", fmt.Sprintf("Submit feedback: user=%d event=%d: %v", uid, req.EventID, err))
			utils.WriteError(w, http.StatusInternalServerError, "Failed to submit feedback")
		}
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

// ListMine handles GET /api/feedback/me.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	rows, err := h.FeedbackService.ListByUser(r.Context(), uid)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListMine feedback: user=%d: %v", uid, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to fetch feedback")
		return
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}
