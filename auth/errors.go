package auth

import (
	"errors"
	"fmt"

	"github.com/finora-app/finora-client/rbac"
)

var (
	// ErrInvalidCredentials indicates the server rejected the credentials.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrMalformedResponse indicates the server answered but the payload is
	// missing the user object.
	ErrMalformedResponse = errors.New("auth: unexpected response from server: user data is missing")
)

// InactiveAccountError reports a login rejected by the local active-account
// rule. The remote authentication itself succeeded.
type InactiveAccountError struct {
	Username  string
	UserType  rbac.UserType
	AdminType *rbac.AdminType
}

func (e *InactiveAccountError) Error() string {
	msg := fmt.Sprintf("account %q is inactive, contact your system administrator (type: %s", e.Username, e.UserType)
	if e.AdminType != nil {
		msg += fmt.Sprintf(", admin type: %s", *e.AdminType)
	}
	return msg + ")"
}
