// Package auth talks to the platform's authentication endpoints and
// normalizes their payloads into the canonical session identity. It performs
// no storage writes; persisting the session is the session manager's job.
package auth

import (
	"strings"
	"time"

	"github.com/finora-app/finora-client/rbac"
)

// User is the canonical identity shape the client operates on for the
// lifetime of a session.
type User struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email,omitempty"`
	FirstName   string          `json:"firstName,omitempty"`
	LastName    string          `json:"lastName,omitempty"`
	Name        string          `json:"name"`
	UserType    rbac.UserType   `json:"userType"`
	AdminType   *rbac.AdminType `json:"adminType,omitempty"`
	Roles       []rbac.Role     `json:"roles"`
	IsActive    bool            `json:"isActive"`
	LastLoginAt *time.Time      `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// HasRole reports whether the user holds a role with the given name.
// Comparison is case-insensitive; role names are stored lowercase but older
// payloads carried them uppercased.
func (u *User) HasRole(name string) bool {
	if u == nil {
		return false
	}
	for _, role := range u.Roles {
		if strings.EqualFold(role.Name, name) {
			return true
		}
	}
	return false
}

// Login is the outcome of a successful credential exchange.
type Login struct {
	User  User
	Token string
}

type wireUser struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	UserType    rbac.UserType   `json:"userType"`
	AdminType   *rbac.AdminType `json:"adminType"`
	IsActive    *bool           `json:"isActive"`
	LastLoginAt *time.Time      `json:"lastLoginAt"`
	CreatedAt   *time.Time      `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt"`
	Roles       []rbac.Role     `json:"roles"`
}

type loginResponse struct {
	User        *wireUser `json:"user"`
	AccessToken string    `json:"access_token"`
}

// normalizeUser maps the raw login payload into the canonical User shape,
// substituting defaults for absent optional fields.
//
// Admin subtype precedence: the server-supplied value always wins when
// present; the subtype is derived from the user type only when the server
// omits it.
func normalizeUser(w *wireUser, now time.Time) User {
	name := strings.TrimSpace(strings.TrimSpace(w.FirstName) + " " + strings.TrimSpace(w.LastName))
	if name == "" {
		name = w.Username
	}

	adminType := w.AdminType
	if adminType == nil {
		if derived, ok := rbac.AdminTypeFor(w.UserType); ok {
			adminType = &derived
		}
	}

	roles := w.Roles
	if roles == nil {
		roles = []rbac.Role{}
	}

	isActive := true
	if w.IsActive != nil {
		isActive = *w.IsActive
	}

	createdAt := now
	if w.CreatedAt != nil {
		createdAt = *w.CreatedAt
	}
	updatedAt := now
	if w.UpdatedAt != nil {
		updatedAt = *w.UpdatedAt
	}

	return User{
		ID:          w.ID,
		Username:    w.Username,
		Email:       w.Email,
		FirstName:   strings.TrimSpace(w.FirstName),
		LastName:    strings.TrimSpace(w.LastName),
		Name:        name,
		UserType:    w.UserType,
		AdminType:   adminType,
		Roles:       roles,
		IsActive:    isActive,
		LastLoginAt: w.LastLoginAt,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}
