package identity

import "github.com/catalogdash/backend/internal/domain/identity"

// SignInInput carries the submitted sign-in credentials.
type SignInInput struct {
	Email    string
	Password string
}

// SignUpInput carries the sign-up form fields.
type SignUpInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// AuthState is a consistent snapshot of the session store, taken under the
// store's lock so user and flags never disagree.
type AuthState struct {
	User            identity.User
	IsAuthenticated bool
	IsLoading       bool
}
