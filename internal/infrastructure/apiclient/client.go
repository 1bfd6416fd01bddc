// Package apiclient implements ports.APIClient over the DiploMatch REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/diplomatch/portal/internal/core/domain"
	"github.com/diplomatch/portal/internal/core/ports"
	"github.com/diplomatch/portal/internal/pkg/metrics"
)

const (
	// DefaultBaseURL is the local development API.
	DefaultBaseURL = "http://127.0.0.1:8000"
	defaultTimeout = 15 * time.Second

	// maxBody caps how much of a response is read.
	maxBody = 1 << 20

	requestIDHeader = "X-Request-ID"
)

// Config captures the settings for reaching the remote API.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport is the base round tripper; nil means http.DefaultTransport.
	Transport http.RoundTripper
}

// Client is a stateless HTTP client for the remote API. The bearer token is
// passed per call and never retained.
type Client struct {
	baseURL string
	timeout time.Duration
	base    http.RoundTripper
	anon    *http.Client
	log     zerolog.Logger
}

var _ ports.APIClient = (*Client)(nil)

func New(cfg Config, log zerolog.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rt := cfg.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	return &Client{
		baseURL: base,
		timeout: timeout,
		base:    rt,
		anon:    &http.Client{Transport: rt, Timeout: timeout},
		log:     log,
	}
}

// httpClient returns a client that signs requests with token, or the
// anonymous client when token is empty.
func (c *Client) httpClient(token string) *http.Client {
	if token == "" {
		return c.anon
	}
	return &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.base,
		},
	}
}

func (c *Client) Register(ctx context.Context, req ports.RegisterRequest) (*ports.RegisterResponse, error) {
	var out ports.RegisterResponse
	if err := c.do(ctx, "register", http.MethodPost, "/api/users/register/", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out ports.LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/users/login/", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, "me", http.MethodGet, "/api/users/me/", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, "logout", http.MethodPost, "/api/users/logout/", token, struct{}{}, nil)
}

func (c *Client) GetProfile(ctx context.Context, token string) (domain.Profile, error) {
	var out domain.Profile
	if err := c.do(ctx, "get_profile", http.MethodGet, "/api/profiles/complete-profile/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, profile domain.Profile) (domain.Profile, error) {
	var out domain.Profile
	if err := c.do(ctx, "update_profile", http.MethodPut, "/api/profiles/complete-profile/", token, profile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, "forgot_password", http.MethodPost, "/api/users/forgot-password/", "", body, nil)
}

func (c *Client) ResetPassword(ctx context.Context, uid, resetToken string, req ports.ResetPasswordRequest) error {
	path := fmt.Sprintf("/api/users/reset-password/%s/%s/", url.PathEscape(uid), url.PathEscape(resetToken))
	return c.do(ctx, "reset_password", http.MethodPut, path, "", req, nil)
}

func (c *Client) MyTeam(ctx context.Context, token string) (domain.TeamMembership, error) {
	var out json.RawMessage
	if err := c.do(ctx, "my_team", http.MethodGet, "/api/teams/my/", token, nil, &out); err != nil {
		return nil, err
	}
	return domain.TeamMembership(out), nil
}

func (c *Client) MyJoinRequest(ctx context.Context, token string) (*domain.JoinRequest, error) {
	var out *domain.JoinRequest
	if err := c.do(ctx, "my_join_request", http.MethodGet, "/api/teams/my-join-request/", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping reports whether the API answers at all. Any HTTP response counts as
// reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	resp, err := c.anon.Do(req)
	if err != nil {
		return &domain.RemoteError{Err: err}
	}
	_ = resp.Body.Close()
	return nil
}

// do performs one JSON round trip. Non-2xx responses and transport failures
// come back as *domain.RemoteError.
func (c *Client) do(ctx context.Context, endpoint, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set(requestIDHeader, reqID)

	log := c.log.With().Str("endpoint", endpoint).Str("request_id", reqID).Logger()

	start := time.Now()
	resp, err := c.httpClient(token).Do(req)
	if err != nil {
		metrics.APIRequestDuration.WithLabelValues(endpoint, "error").Observe(time.Since(start).Seconds())
		log.Debug().Err(err).Msg("api request failed")
		return &domain.RemoteError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	elapsed := time.Since(start)
	metrics.APIRequestDuration.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Observe(elapsed.Seconds())
	if err != nil {
		return &domain.RemoteError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	log.Debug().Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(endpoint, resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.RemoteError{
			StatusCode: resp.StatusCode,
			Message:    "invalid response body",
			Err:        fmt.Errorf("decode %s response: %w", endpoint, err),
		}
	}
	return nil
}
