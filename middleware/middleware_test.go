package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resumekit/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]string

func (s stubVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	if id, ok := s[token]; ok {
		return &auth.Identity{ID: id}, nil
	}
	return nil, auth.ErrUnauthenticated
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	w.Write([]byte(userID))
}

func TestAuthMiddleware(t *testing.T) {
	h := AuthMiddleware(stubVerifier{"good": "user-1"})(http.HandlerFunc(echoUser))

	tests := []struct {
		name   string
		header string
		query  string
		status int
		body   string
	}{
		{"bearer header", "Bearer good", "", http.StatusOK, "user-1"},
		{"lowercase scheme", "bearer good", "", http.StatusOK, "user-1"},
		{"query token", "", "good", http.StatusOK, "user-1"},
		{"missing", "", "", http.StatusUnauthorized, "Unauthorized\n"},
		{"wrong scheme", "Basic good", "", http.StatusUnauthorized, "Unauthorized\n"},
		{"invalid token", "Bearer bad", "", http.StatusUnauthorized, "Unauthorized\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/get-documents"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	t.Run("wildcard preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/save-document", nil)
		req.Header.Set("Origin", "https://app.example")
		CORSMiddleware([]string{"*"})(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, corsAllowHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, corsAllowMethods, rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("listed origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://app.example")
		CORSMiddleware([]string{"https://app.example"})(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://evil.example")
		CORSMiddleware([]string{"https://app.example"})(next).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestMaxBodySize(t *testing.T) {
	var readErr error
	h := MaxBodySize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.NoError(t, readErr)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too large")))
	var maxErr *http.MaxBytesError
	require.True(t, errors.As(readErr, &maxErr))
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var rec *statusRecorder
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec = w.(*statusRecorder)
		http.Error(w, "nope", http.StatusNotFound)
	}))

	out := httptest.NewRecorder()
	h.ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, out.Code)
	assert.Equal(t, http.StatusNotFound, rec.status)
	assert.Equal(t, len("nope\n"), rec.bytes)
}
