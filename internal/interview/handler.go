package interview

import (
	"encoding/json"
	"net/http"
	"strings"

	"resumekit/pkg/logger"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Position) == "" {
		http.Error(w, "Position is required", http.StatusBadRequest)
		return
	}

	questions := Generate(req)
	logger.Sugar.Debugf("Generated %d interview questions for %q", len(questions), req.Position)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{Questions: questions})
}
