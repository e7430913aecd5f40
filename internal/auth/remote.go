package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resumekit/pkg/logger"
)

// RemoteVerifier asks the provider to resolve the token (GET /auth/v1/user).
// It is used when no signing secret is configured.
type RemoteVerifier struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewRemoteVerifier(baseURL, apiKey string) *RemoteVerifier {
	return &RemoteVerifier{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: no token provided", ErrUnauthenticated)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.APIKey)

	resp, err := v.Client.Do(req)
	if err != nil {
		logger.Sugar.Warnf("Auth provider unreachable: %v", err)
		return nil, fmt.Errorf("%w: provider unreachable: %v", ErrUnauthenticated, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider rejected token (status %d)", ErrUnauthenticated, resp.StatusCode)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil || id.ID == "" {
		return nil, fmt.Errorf("%w: unreadable user response", ErrUnauthenticated)
	}
	return &id, nil
}
