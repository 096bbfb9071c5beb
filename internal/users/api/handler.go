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

type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByCredentials(ctx context.Context, email, password string) (*models.User, error)
	TotalPaid(ctx context.Context, userID int64) (float64, error)
}

type Handler struct {
	Store      UserStore
	CookieName string
	Logger     *logger.Logger
}

func (h *Handler) cookieName() string {
	if h.CookieName == "" {
		return auth.DefaultCookieName
	}
	return h.CookieName
}

// Login handles POST /api/login. Demo-grade: matches the seeded plain
// credentials and hands back the numeric user id in an HttpOnly cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "Email and password required")
		return
	}

	user, err := h.Store.GetUserByCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			h.Logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("invalid credentials for %s", req.Email))
			utils.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Login: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    fmt.Sprintf("%d", user.UserID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, map[string]*models.User{"user": user})
}

// Logout handles POST /api/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me handles GET /api/me. The user row is re-read from storage so the
// response reflects the current role, not a stale session claim.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := h.Store.GetUserByID(r.Context(), uid)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			utils.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Me: user=%d: %v", uid, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]*models.User{"user": user})
}

// TotalPaid handles GET /api/me/total-paid.
func (h *Handler) TotalPaid(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserID(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	total, err := h.Store.TotalPaid(r.Context(), uid)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("TotalPaid: user=%d: %v", uid, err))
		utils.WriteError(w, http.StatusInternalServerError, "Failed to get total paid")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]float64{"totalPaid": total})
}
