package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	appidentity "github.com/catalogdash/backend/internal/application/identity"
	"github.com/catalogdash/backend/internal/domain/identity"
	"github.com/catalogdash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// sessionResponse is the platform's session representation.
type sessionResponse struct {
	ID     string `json:"$id"`
	UserID string `json:"userId"`
	Expire string `json:"expire"`
	Secret string `json:"secret"`
}

// accountResponse is the platform's account representation.
type accountResponse struct {
	ID    string `json:"$id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// userDocument is a document in the users collection mirroring an account.
type userDocument struct {
	ID        string `json:"$id"`
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	ImageURL  string `json:"imageUrl"`
	Bio       string `json:"bio"`
}

func (d *userDocument) toUser() *identity.User {
	return &identity.User{
		ID:        d.ID,
		AccountID: d.AccountID,
		Name:      d.Name,
		Username:  d.Username,
		Email:     d.Email,
		AvatarURL: d.ImageURL,
		Bio:       d.Bio,
	}
}

// CreateSession establishes an email/password session and persists its secret
// as the local session hint.
func (c *Client) CreateSession(ctx context.Context, email, password string) (*identity.Session, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, "/account/sessions/email", nil, body)
	if err != nil {
		return nil, err
	}

	var resp sessionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("remote: failed to parse session response: %w", err)
	}

	c.storeSession(resp.Secret)

	session := &identity.Session{
		ID:     resp.ID,
		UserID: resp.UserID,
	}
	if resp.Expire != "" {
		if t, err := time.Parse(time.RFC3339, resp.Expire); err == nil {
			session.ExpiresAt = t
		}
	}

	c.logger.Info("Session created", zap.String("session_id", resp.ID))
	return session, nil
}

// DeleteSession invalidates the current session and clears the local hint.
func (c *Client) DeleteSession(ctx context.Context) error {
	if _, err := c.doRequest(ctx, http.MethodDelete, "/account/sessions/current", nil, nil); err != nil {
		return err
	}
	c.clearSession()
	c.logger.Info("Session deleted")
	return nil
}

// CreateAccount registers a platform account and mirrors it into the users
// collection. A created account is not rolled back when the mirror document
// cannot be written; the error propagates and the caller decides.
func (c *Client) CreateAccount(ctx context.Context, input appidentity.SignUpInput) (*identity.User, error) {
	body := map[string]string{
		"userId":   "unique()",
		"email":    input.Email,
		"password": input.Password,
		"name":     input.Name,
	}

	respBody, err := c.doRequest(ctx, http.MethodPost, "/account", nil, body)
	if err != nil {
		return nil, err
	}

	var account accountResponse
	if err := json.Unmarshal(respBody, &account); err != nil {
		return nil, fmt.Errorf("remote: failed to parse account response: %w", err)
	}

	doc := map[string]any{
		"documentId": "unique()",
		"data": map[string]string{
			"accountId": account.ID,
			"name":      input.Name,
			"username":  input.Username,
			"email":     input.Email,
			"imageUrl":  c.initialsAvatarURL(input.Name),
		},
	}

	path := c.collectionPath(c.config.UsersCollectionID) + "/documents"
	docBody, err := c.doRequest(ctx, http.MethodPost, path, nil, doc)
	if err != nil {
		c.logger.Error("Account created but user document write failed",
			zap.String("account_id", account.ID), zap.Error(err))
		return nil, err
	}

	var user userDocument
	if err := json.Unmarshal(docBody, &user); err != nil {
		return nil, fmt.Errorf("remote: failed to parse user document: %w", err)
	}

	c.logger.Info("Account created", zap.String("account_id", account.ID))
	return user.toUser(), nil
}

// Account fetches the authentication principal behind the current session.
func (c *Client) Account(ctx context.Context) (*identity.Account, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, "/account", nil, nil)
	if err != nil {
		return nil, err
	}

	var resp accountResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("remote: failed to parse account response: %w", err)
	}

	return &identity.Account{
		ID:    resp.ID,
		Name:  resp.Name,
		Email: resp.Email,
	}, nil
}

// CurrentUser resolves the session's account to its mirrored user document.
// Returns shared.ErrNotFound when no matching document exists.
func (c *Client) CurrentUser(ctx context.Context) (*identity.User, error) {
	account, err := c.Account(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Add("queries[]", queryEqual("accountId", account.ID))

	path := c.collectionPath(c.config.UsersCollectionID) + "/documents"
	listBody, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var list struct {
		Total     int            `json:"total"`
		Documents []userDocument `json:"documents"`
	}
	if err := json.Unmarshal(listBody, &list); err != nil {
		return nil, fmt.Errorf("remote: failed to parse user document list: %w", err)
	}

	if len(list.Documents) == 0 {
		return nil, shared.ErrNotFound
	}

	return list.Documents[0].toUser(), nil
}

// initialsAvatarURL builds the platform's generated-initials avatar URL.
func (c *Client) initialsAvatarURL(name string) string {
	q := url.Values{}
	q.Set("name", name)
	return strings.TrimRight(c.config.Endpoint, "/") + "/avatars/initials?" + q.Encode()
}

var _ appidentity.AccountGateway = (*Client)(nil)
