// Package account exposes account creation through the auth provider.
package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"resumekit/internal/auth"
	"resumekit/pkg/logger"
)

// Creator creates provider accounts. *auth.AdminClient implements it.
type Creator interface {
	CreateUser(ctx context.Context, in auth.SignupRequest) (json.RawMessage, error)
}

type SignupResponse struct {
	User json.RawMessage `json:"user"`
}

type Handler struct {
	Accounts Creator
}

func NewHandler(accounts Creator) *Handler {
	return &Handler{Accounts: accounts}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.Accounts == nil {
		http.Error(w, "Signup is not configured", http.StatusServiceUnavailable)
		return
	}

	var req auth.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Signup failed: email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.Accounts.CreateUser(r.Context(), req)
	if err != nil {
		logger.Sugar.Errorf("Signup error: %v", err)
		var perr *auth.ProviderError
		if errors.As(err, &perr) {
			http.Error(w, "Signup failed: "+perr.Message, http.StatusBadRequest)
			return
		}
		http.Error(w, "Internal server error during signup", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SignupResponse{User: user})
}
