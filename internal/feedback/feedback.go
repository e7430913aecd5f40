// Package feedback stores product feedback submitted from the app.
package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"resumekit/pkg/logger"
	"resumekit/store"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("invalid feedback")

type Category string

const (
	CategoryGeneral        Category = "general"
	CategoryFeatureRequest Category = "feature-request"
	CategoryBugReport      Category = "bug-report"
	CategoryImprovement    Category = "improvement"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryFeatureRequest, CategoryBugReport, CategoryImprovement:
		return true
	}
	return false
}

const keyPrefix = "feedback:"

func Key(id string) string { return keyPrefix + id }

// Entry is the stored record. Timestamp is the client's submit time,
// ReceivedAt is stamped by the server.
type Entry struct {
	ID         string   `json:"id"`
	Rating     int      `json:"rating"`
	Category   Category `json:"category"`
	Feedback   string   `json:"feedback"`
	Email      string   `json:"email,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
	ReceivedAt string   `json:"receivedAt"`
}

type SubmitRequest struct {
	Rating    int      `json:"rating"`
	Category  Category `json:"category"`
	Feedback  string   `json:"feedback"`
	Email     string   `json:"email"`
	Timestamp string   `json:"timestamp"`
}

type SubmitResponse struct {
	Success    bool   `json:"success"`
	FeedbackID string `json:"feedbackId"`
}

type Repository struct {
	Store store.Store
	Now   func() time.Time
}

func NewRepository(s store.Store) *Repository {
	return &Repository{Store: s, Now: time.Now}
}

// Submit validates req and stores it under a new id.
func (r *Repository) Submit(ctx context.Context, req SubmitRequest) (*Entry, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:         uuid.NewString(),
		Rating:     req.Rating,
		Category:   req.Category,
		Feedback:   req.Feedback,
		Email:      req.Email,
		Timestamp:  req.Timestamp,
		ReceivedAt: r.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode feedback: %w", err)
	}
	if err := r.Store.Set(ctx, Key(entry.ID), string(data)); err != nil {
		logger.Sugar.Errorf("Failed to store feedback %s: %v", entry.ID, err)
		return nil, fmt.Errorf("write feedback %s: %w", entry.ID, err)
	}
	return entry, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Entry, error) {
	raw, err := r.Store.Get(ctx, Key(id))
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("decode feedback %s: %w", id, err)
	}
	return &entry, nil
}

func validate(req *SubmitRequest) error {
	req.Feedback = strings.TrimSpace(req.Feedback)
	req.Email = strings.TrimSpace(req.Email)

	if req.Rating < 1 || req.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	if !req.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, req.Category)
	}
	if req.Feedback == "" {
		return fmt.Errorf("%w: feedback is required", ErrValidation)
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return fmt.Errorf("%w: invalid email", ErrValidation)
		}
	}
	return nil
}
