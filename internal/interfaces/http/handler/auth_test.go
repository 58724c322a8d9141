package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appidentity "github.com/catalogdash/backend/internal/application/identity"
	"github.com/catalogdash/backend/internal/domain/identity"
	"github.com/catalogdash/backend/internal/domain/shared"
	"github.com/catalogdash/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubGateway is a canned-response AccountGateway for handler tests
type stubGateway struct {
	user       *identity.User
	sessionErr error
	deleteErr  error
	hint       bool
}

func (s *stubGateway) CreateSession(ctx context.Context, email, password string) (*identity.Session, error) {
	if s.sessionErr != nil {
		return nil, s.sessionErr
	}
	return &identity.Session{ID: "sess-1"}, nil
}

func (s *stubGateway) CreateAccount(ctx context.Context, input appidentity.SignUpInput) (*identity.User, error) {
	if s.user == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Account already exists")
	}
	return s.user, nil
}

func (s *stubGateway) CurrentUser(ctx context.Context) (*identity.User, error) {
	if s.user == nil {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubGateway) DeleteSession(ctx context.Context) error { return s.deleteErr }
func (s *stubGateway) HasSessionHint() bool                    { return s.hint }

func setupAuthRouter(gateway *stubGateway) (*gin.Engine, *appidentity.AuthService) {
	gin.SetMode(gin.TestMode)
	auth := appidentity.NewAuthService(gateway, zap.NewNop())
	engine := gin.New()
	api := engine.Group("/api/v1")
	NewAuthHandler(auth).RegisterRoutes(api)
	return engine, auth
}

func doJSON(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestSignInEndpoint(t *testing.T) {
	t.Run("valid credentials return session state", func(t *testing.T) {
		engine, _ := setupAuthRouter(&stubGateway{
			user: &identity.User{ID: "doc-1", AccountID: "acct-1", Email: "a@b.com"},
		})

		w := doJSON(engine, http.MethodPost, "/api/v1/auth/sign-in",
			`{"email":"a@b.com","password":"password123"}`)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]any)
		assert.Equal(t, true, data["is_authenticated"])
		user := data["user"].(map[string]any)
		assert.Equal(t, "a@b.com", user["email"])
	})

	t.Run("rejected credentials return 401", func(t *testing.T) {
		engine, _ := setupAuthRouter(&stubGateway{
			sessionErr: shared.ErrUnauthorized,
		})

		w := doJSON(engine, http.MethodPost, "/api/v1/auth/sign-in",
			`{"email":"a@b.com","password":"wrong-password"}`)

		require.Equal(t, http.StatusUnauthorized, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeInvalidCredentials, resp.Error.Code)
	})

	t.Run("short password fails binding", func(t *testing.T) {
		engine, _ := setupAuthRouter(&stubGateway{})

		w := doJSON(engine, http.MethodPost, "/api/v1/auth/sign-in",
			`{"email":"a@b.com","password":"short"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed email fails binding", func(t *testing.T) {
		engine, _ := setupAuthRouter(&stubGateway{})

		w := doJSON(engine, http.MethodPost, "/api/v1/auth/sign-in",
			`{"email":"not-an-email","password":"password123"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSignUpEndpoint(t *testing.T) {
	t.Run("creates account and signs in", func(t *testing.T) {
		engine, auth := setupAuthRouter(&stubGateway{
			user: &identity.User{ID: "doc-1", AccountID: "acct-1", Email: "a@b.com"},
		})

		w := doJSON(engine, http.MethodPost, "/api/v1/auth/sign-up",
			`{"name":"Ada","username":"ada","email":"a@b.com","password":"password123"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, auth.IsAuthenticated())
	})

	t.Run("single character name fails binding", func(t *testing.T) {
		engine, _ := setupAuthRouter(&stubGateway{})

		w := doJSON(engine, http.MethodPost, "/api/v1/auth/sign-up",
			`{"name":"A","username":"ada","email":"a@b.com","password":"password123"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate account returns conflict", func(t *testing.T) {
		engine, _ := setupAuthRouter(&stubGateway{user: nil})

		w := doJSON(engine, http.MethodPost, "/api/v1/auth/sign-up",
			`{"name":"Ada","username":"ada","email":"a@b.com","password":"password123"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestSignOutEndpoint(t *testing.T) {
	t.Run("success returns 204 and clears state", func(t *testing.T) {
		gateway := &stubGateway{user: &identity.User{ID: "doc-1", AccountID: "acct-1"}}
		engine, auth := setupAuthRouter(gateway)
		require.True(t, auth.CheckAuthUser(context.Background()))

		w := doJSON(engine, http.MethodPost, "/api/v1/auth/sign-out", "")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.False(t, auth.IsAuthenticated())
	})

	t.Run("remote failure keeps session and propagates", func(t *testing.T) {
		gateway := &stubGateway{
			user:      &identity.User{ID: "doc-1", AccountID: "acct-1"},
			deleteErr: shared.NewDomainError("REMOTE_ERROR", "platform down"),
		}
		engine, auth := setupAuthRouter(gateway)
		require.True(t, auth.CheckAuthUser(context.Background()))

		w := doJSON(engine, http.MethodPost, "/api/v1/auth/sign-out", "")

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.True(t, auth.IsAuthenticated())
	})
}

func TestSessionEndpoint(t *testing.T) {
	t.Run("resolves current user", func(t *testing.T) {
		engine, _ := setupAuthRouter(&stubGateway{
			user: &identity.User{ID: "doc-1", AccountID: "acct-1", Email: "a@b.com"},
		})

		w := doJSON(engine, http.MethodGet, "/api/v1/auth/session", "")

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]any)
		assert.Equal(t, true, data["is_authenticated"])
	})

	t.Run("unresolved session reports empty state", func(t *testing.T) {
		engine, _ := setupAuthRouter(&stubGateway{user: nil})

		w := doJSON(engine, http.MethodGet, "/api/v1/auth/session", "")

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]any)
		assert.Equal(t, false, data["is_authenticated"])
	})
}
