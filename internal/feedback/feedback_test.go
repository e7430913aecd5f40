package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumekit/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ store.Store }

func (failingStore) Set(context.Context, string, string) error { return errors.New("disk full") }

func TestSubmitStoresEntry(t *testing.T) {
	repo := NewRepository(store.NewMemoryStore())
	repo.Now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	entry, err := repo.Submit(context.Background(), SubmitRequest{
		Rating:    5,
		Category:  CategoryBugReport,
		Feedback:  "  Export crashes  ",
		Email:     "jane@example.com",
		Timestamp: "2025-03-01T11:59:58.000Z",
	})
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Export crashes", got.Feedback)
	assert.Equal(t, "2025-03-01T11:59:58.000Z", got.Timestamp)
	assert.Equal(t, "2025-03-01T12:00:00Z", got.ReceivedAt)
}

func TestSubmitValidation(t *testing.T) {
	valid := SubmitRequest{Rating: 3, Category: CategoryGeneral, Feedback: "ok"}
	tests := []struct {
		name   string
		mutate func(*SubmitRequest)
	}{
		{"rating zero", func(r *SubmitRequest) { r.Rating = 0 }},
		{"rating six", func(r *SubmitRequest) { r.Rating = 6 }},
		{"unknown category", func(r *SubmitRequest) { r.Category = "praise" }},
		{"blank feedback", func(r *SubmitRequest) { r.Feedback = "   " }},
		{"bad email", func(r *SubmitRequest) { r.Email = "not-an-email" }},
	}
	repo := NewRepository(store.NewMemoryStore())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := repo.Submit(context.Background(), req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestHandler(t *testing.T) {
	mem := store.NewMemoryStore()
	h := NewHandler(NewRepository(mem))

	rec := httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/feedback",
		strings.NewReader(`{"rating":4,"category":"feature-request","feedback":"Dark mode","email":"","timestamp":"2025-01-01T00:00:00Z"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.FeedbackID)
	assert.Equal(t, 1, mem.Len())

	rec = httptest.NewRecorder()
	h.Submit(rec, httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(`{"rating":4,"category":"general"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	NewHandler(NewRepository(failingStore{mem})).Submit(rec, httptest.NewRequest(http.MethodPost, "/feedback",
		strings.NewReader(`{"rating":1,"category":"general","feedback":"x"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
