package identity

import "time"

// User is the profile document mirrored into the remote document store on
// sign-up. It is keyed by AccountID so the current principal can be resolved
// with a single equality query.
type User struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
}

// EmptyUser returns the sentinel value used for the signed-out state.
func EmptyUser() User {
	return User{}
}

// IsEmpty reports whether the user is the signed-out sentinel.
func (u User) IsEmpty() bool {
	return u.ID == "" && u.AccountID == ""
}

// Account is the authentication principal held by the remote platform.
// It is distinct from User: the account carries credentials, the user
// document carries the profile.
type Account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session describes an authenticated session held by the remote platform.
// Locally only its existence matters; the secret lives in the remote client.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
