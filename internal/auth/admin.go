package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SignupRequest is the account creation input.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// ProviderError is a non-2xx answer from the provider's admin API.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider: %s (status %d)", e.Message, e.Status)
}

// AdminClient calls the provider admin API with the service role key.
type AdminClient struct {
	BaseURL    string
	ServiceKey string
	Client     *http.Client
}

func NewAdminClient(baseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ServiceKey: serviceKey,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type createUserBody struct {
	Email        string            `json:"email"`
	Password     string            `json:"password"`
	UserMetadata map[string]string `json:"user_metadata"`
	EmailConfirm bool              `json:"email_confirm"`
}

// CreateUser creates a confirmed account and returns the provider's user object verbatim.
func (c *AdminClient) CreateUser(ctx context.Context, in SignupRequest) (json.RawMessage, error) {
	body, err := json.Marshal(createUserBody{
		Email:        in.Email,
		Password:     in.Password,
		UserMetadata: map[string]string{"name": in.FullName},
		// Auto-confirm since no email server is wired up.
		EmailConfirm: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/auth/v1/admin/users", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)
	req.Header.Set("apikey", c.ServiceKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read create user response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{Status: resp.StatusCode, Message: providerMessage(data)}
	}
	return json.RawMessage(data), nil
}

func providerMessage(data []byte) string {
	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		for _, m := range []string{body.Msg, body.Message, body.ErrorDescription, body.Error} {
			if m != "" {
				return m
			}
		}
	}
	if s := strings.TrimSpace(string(data)); s != "" {
		return s
	}
	return "unknown error"
}
