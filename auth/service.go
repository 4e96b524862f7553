package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/secure/precis"
)

// Service performs the login/logout exchanges with the platform.
type Service struct {
	baseURL  *url.URL
	client   *http.Client
	logger   *slog.Logger
	validate *validator.Validate
}

// NewService constructs a Service for the given API base URL. When client is
// nil a default client with its own cookie jar is used; a supplied client
// without a jar gets one so logout can expire application cookies.
func NewService(baseURL string, client *http.Client, logger *slog.Logger) (*Service, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("auth: parse base url: %w", err)
	}
	if client == nil {
		client = &http.Client{}
	}
	if client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("auth: cookie jar: %w", err)
		}
		client.Jar = jar
	}
	return &Service{
		baseURL:  parsed,
		client:   client,
		logger:   logger,
		validate: validator.New(),
	}, nil
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a normalized user and an access token. One
// network attempt, no retry. The username is case-folded with the PRECIS
// UsernameCaseMapped profile before it goes on the wire.
func (s *Service) Login(ctx context.Context, username, password string) (*Login, error) {
	req := loginRequest{Username: normalizeUsername(username), Password: password}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("auth: login request: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("auth: encode login request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL.String()+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("auth: build login request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("auth: login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		if s.logger != nil {
			s.logger.Debug("login rejected", slog.String("username", req.Username), slog.Int("status", resp.StatusCode))
		}
		return nil, ErrInvalidCredentials
	}

	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("auth: decode login response: %w", err)
	}
	if payload.User == nil {
		return nil, ErrMalformedResponse
	}

	user := normalizeUser(payload.User, time.Now())
	if s.logger != nil {
		s.logger.Debug("login normalized",
			slog.String("username", user.Username),
			slog.String("user_type", string(user.UserType)),
			slog.Bool("is_active", user.IsActive),
			slog.Int("roles", len(user.Roles)))
	}
	return &Login{User: user, Token: payload.AccessToken}, nil
}

// Logout notifies the server that the bearer token should be revoked. The
// response body is ignored; a non-2xx status is reported as an error so the
// caller can log it, but callers are expected to proceed with local teardown
// regardless.
func (s *Service) Logout(ctx context.Context, token string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL.String()+"/api/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("auth: build logout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("auth: logout request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("auth: logout status %d", resp.StatusCode)
	}
	return nil
}

// ClearCookies expires every cookie the client holds for the application
// origin: empty value, root path, expiry in the past.
func (s *Service) ClearCookies() {
	if s.client.Jar == nil {
		return
	}
	current := s.client.Jar.Cookies(s.baseURL)
	if len(current) == 0 {
		return
	}
	expired := make([]*http.Cookie, 0, len(current))
	past := time.Unix(0, 0)
	for _, c := range current {
		expired = append(expired, &http.Cookie{
			Name:    c.Name,
			Value:   "",
			Path:    "/",
			MaxAge:  -1,
			Expires: past,
		})
	}
	s.client.Jar.SetCookies(s.baseURL, expired)
}

var usernameProfile = precis.UsernameCaseMapped

func normalizeUsername(username string) string {
	normalized, err := usernameProfile.String(strings.TrimSpace(username))
	if err != nil {
		// Keep the trimmed input when it is outside the PRECIS repertoire;
		// the server performs its own normalization.
		return strings.TrimSpace(username)
	}
	return normalized
}
