// Package authtest runs an in-process identity endpoint speaking the same
// login/logout contract as the platform, for exercising the client against
// realistic traffic in tests. Accounts are held in memory with bcrypt-hashed
// passwords; tokens are opaque UUIDs.
package authtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/unrolled/secure"
	"golang.org/x/crypto/bcrypt"

	"github.com/finora-app/finora-client/auth"
	"github.com/finora-app/finora-client/rbac"
)

// Server is the fake identity endpoint.
type Server struct {
	httpServer *httptest.Server
	validate   *validator.Validate

	mu       sync.Mutex
	accounts map[string]account
	tokens   map[string]string // token -> username
}

type account struct {
	user         auth.User
	passwordHash []byte
}

// New starts a Server seeded with the default principals. Callers own the
// returned server and must Close it.
func New() *Server {
	s := &Server{
		validate: validator.New(),
		accounts: make(map[string]account),
		tokens:   make(map[string]string),
	}
	for _, seed := range DefaultAccounts() {
		s.Seed(seed.User, seed.Password)
	}

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})

	r := chi.NewRouter()
	r.Use(secureMiddleware.Handler)
	r.With(httprate.LimitByIP(30, time.Minute)).Post("/auth/login", s.handleLogin)
	r.Post("/api/auth/logout", s.handleLogout)

	s.httpServer = httptest.NewServer(r)
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string { return s.httpServer.URL }

// Close shuts the server down.
func (s *Server) Close() { s.httpServer.Close() }

// Account pairs a user with its clear-text password for seeding.
type Account struct {
	User     auth.User
	Password string
}

// Seed registers an account, hashing the password.
func (s *Server) Seed(user auth.User, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic("authtest: hash password: " + err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[strings.ToLower(user.Username)] = account{user: user, passwordHash: hash}
}

// TokenActive reports whether the token has been issued and not revoked.
func (s *Server) TokenActive(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[token]
	return ok
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	User        auth.User `json:"user"`
	AccessToken string    `json:"access_token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed request body"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "username and password are required"})
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(req.Username)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}

	// Inactive accounts still authenticate here; rejecting them is the
	// client's business rule, mirroring the platform's behaviour.
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = acct.user.Username
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, loginResponse{User: acct.user, AccessToken: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "missing bearer token"})
		return
	}

	s.mu.Lock()
	_, known := s.tokens[token]
	delete(s.tokens, token)
	s.mu.Unlock()

	if !known {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unknown token"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// DefaultAccounts returns the standard demo principals, one per user type,
// with roles drawn from the built-in catalog.
func DefaultAccounts() []Account {
	mk := func(id, username, email, name string, t rbac.UserType, active bool) auth.User {
		u := auth.User{
			ID:       id,
			Username: username,
			Email:    email,
			Name:     name,
			UserType: t,
			Roles:    rbac.RolesForUserType(t),
			IsActive: active,
		}
		if at, ok := rbac.AdminTypeFor(t); ok {
			u.AdminType = &at
		}
		return u
	}
	return []Account{
		{User: mk("1", "admin", "admin@example.com", "System Admin", rbac.UserTypeAdmin, true), Password: "password1"},
		{User: mk("2", "finance_manager", "manager@example.com", "Finance Manager", rbac.UserTypeFinanceManager, true), Password: "password2"},
		{User: mk("3", "accountant", "accountant@example.com", "John Accountant", rbac.UserTypeAccountant, true), Password: "password3"},
		{User: mk("4", "employee", "employee@example.com", "Jane Employee", rbac.UserTypeEmployee, true), Password: "password4"},
	}
}
