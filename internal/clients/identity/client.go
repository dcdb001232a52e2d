package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
)

// SessionTokenCookieName is the HTTP-only cookie carrying the identity
// service's session token.
const SessionTokenCookieName = "moodlens_session_token"

// ErrUnauthenticated is returned when the identity service cannot resolve
// the presented session token to a caller.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the caller object issued by the external identity service.
type Identity struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Client talks to the external OAuth/session identity service. Token minting
// and validation live entirely on the remote side; this client only shuttles.
type Client interface {
	RedirectURL(ctx context.Context) (string, error)
	ExchangeCode(ctx context.Context, code string) (string, error)
	CurrentUser(ctx context.Context, sessionToken string) (*Identity, error)
	DeleteSession(ctx context.Context, sessionToken string) error
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	baseURL := strings.TrimSpace(os.Getenv("IDENTITY_SERVICE_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("missing IDENTITY_SERVICE_URL")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	apiKey := strings.TrimSpace(os.Getenv("IDENTITY_SERVICE_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing IDENTITY_SERVICE_API_KEY")
	}

	return &client{
		log:        log.With("client", "IdentityClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type identityHTTPError struct {
	StatusCode int
	Body       string
}

func (e *identityHTTPError) Error() string {
	return fmt.Sprintf("identity service http %d: %s", e.StatusCode, e.Body)
}

func (c *client) do(ctx context.Context, method, path, sessionToken string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
		reqBody = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.apiKey)
	if sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &identityHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if uErr := json.Unmarshal(raw, out); uErr != nil {
		return fmt.Errorf("identity service decode error: %w; raw=%s", uErr, string(raw))
	}
	return nil
}

func (c *client) RedirectURL(ctx context.Context) (string, error) {
	var resp struct {
		RedirectURL string `json:"redirect_url"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/oauth/google/redirect_url", "", nil, &resp); err != nil {
		return "", err
	}
	if resp.RedirectURL == "" {
		return "", fmt.Errorf("identity service returned empty redirect url")
	}
	return resp.RedirectURL, nil
}

func (c *client) ExchangeCode(ctx context.Context, code string) (string, error) {
	reqBody := map[string]string{"code": code}
	var resp struct {
		SessionToken string `json:"session_token"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/sessions", "", reqBody, &resp); err != nil {
		return "", err
	}
	if resp.SessionToken == "" {
		return "", fmt.Errorf("identity service returned empty session token")
	}
	return resp.SessionToken, nil
}

func (c *client) CurrentUser(ctx context.Context, sessionToken string) (*Identity, error) {
	var resp Identity
	if err := c.do(ctx, http.MethodGet, "/v1/users/me", sessionToken, nil, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, ErrUnauthenticated
	}
	return &resp, nil
}

func (c *client) DeleteSession(ctx context.Context, sessionToken string) error {
	return c.do(ctx, http.MethodDelete, "/v1/sessions/current", sessionToken, nil, nil)
}
