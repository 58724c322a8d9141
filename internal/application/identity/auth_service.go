package identity

import (
	"context"
	"sync"

	"github.com/catalogdash/backend/internal/domain/identity"
	"github.com/catalogdash/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AccountGateway defines the remote platform operations the session store
// depends on. It is implemented by the infrastructure layer.
type AccountGateway interface {
	// CreateSession establishes a session for the given credentials.
	CreateSession(ctx context.Context, email, password string) (*identity.Session, error)

	// CreateAccount creates a remote account and mirrors it into the user
	// document collection. Either step failing propagates; a created account
	// is not rolled back when document mirroring fails.
	CreateAccount(ctx context.Context, input SignUpInput) (*identity.User, error)

	// CurrentUser resolves the authenticated principal to its stored user
	// document. Returns shared.ErrNotFound when no session or no matching
	// document exists.
	CurrentUser(ctx context.Context) (*identity.User, error)

	// DeleteSession invalidates the current session.
	DeleteSession(ctx context.Context) error

	// HasSessionHint reports whether a prior session left a local trace,
	// allowing the initial remote check to be skipped for anonymous starts.
	HasSessionHint() bool
}

// AuthService is the session store: it holds the current user, the
// authenticated flag and the loading flag, and keeps them in sync with the
// remote platform. It is constructed once at application start and shared;
// state is guarded by a mutex so overlapping operations cannot interleave
// partial writes.
type AuthService struct {
	gateway AccountGateway
	logger  *zap.Logger

	mu              sync.RWMutex
	user            identity.User
	isAuthenticated bool
	isLoading       bool
}

// NewAuthService creates a new session store. The store starts in the
// loading state until InitialCheck has run.
func NewAuthService(gateway AccountGateway, logger *zap.Logger) *AuthService {
	return &AuthService{
		gateway:   gateway,
		logger:    logger,
		user:      identity.EmptyUser(),
		isLoading: true,
	}
}

// InitialCheck performs the startup session check. When no local session
// hint exists the remote check is skipped entirely and the store settles
// unauthenticated; otherwise the remote platform is consulted.
func (s *AuthService) InitialCheck(ctx context.Context) bool {
	if !s.gateway.HasSessionHint() {
		s.mu.Lock()
		s.user = identity.EmptyUser()
		s.isAuthenticated = false
		s.isLoading = false
		s.mu.Unlock()
		s.logger.Info("No prior session hint, skipping remote session check")
		return false
	}
	return s.CheckAuthUser(ctx)
}

// CheckAuthUser resolves the current principal and synchronizes store state.
// Returns true when a user document was resolved. The loading flag is
// cleared on every exit path.
func (s *AuthService) CheckAuthUser(ctx context.Context) bool {
	s.setLoading(true)
	defer s.setLoading(false)

	user, err := s.gateway.CurrentUser(ctx)
	if err != nil || user == nil {
		if err != nil {
			s.logger.Warn("Session check failed", zap.Error(err))
		}
		s.mu.Lock()
		s.user = identity.EmptyUser()
		s.isAuthenticated = false
		s.mu.Unlock()
		return false
	}

	s.mu.Lock()
	s.user = *user
	s.isAuthenticated = true
	s.mu.Unlock()

	s.logger.Info("Session check succeeded", zap.String("account_id", user.AccountID))
	return true
}

// SignIn establishes a session with the submitted credentials and refreshes
// store state from the remote platform.
func (s *AuthService) SignIn(ctx context.Context, input SignInInput) error {
	s.logger.Info("Sign-in attempt", zap.String("email", input.Email))

	if _, err := s.gateway.CreateSession(ctx, input.Email, input.Password); err != nil {
		s.logger.Warn("Sign-in failed", zap.String("email", input.Email), zap.Error(err))
		return shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if !s.CheckAuthUser(ctx) {
		return shared.NewDomainError("SESSION_CHECK_FAILED", "Signed in, but the session could not be verified")
	}
	return nil
}

// SignUp creates a remote account plus its mirrored user document, then
// signs in with the new credentials.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) error {
	s.logger.Info("Sign-up attempt", zap.String("email", input.Email))

	if _, err := s.gateway.CreateAccount(ctx, input); err != nil {
		s.logger.Warn("Sign-up failed", zap.String("email", input.Email), zap.Error(err))
		return err
	}

	return s.SignIn(ctx, SignInInput{Email: input.Email, Password: input.Password})
}

// SignOut deletes the remote session. On failure the local state is left
// unchanged: the user remains signed in locally and the error propagates.
// The loading flag is cleared on every exit path.
func (s *AuthService) SignOut(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.gateway.DeleteSession(ctx); err != nil {
		s.logger.Error("Sign-out failed, keeping local session state", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.user = identity.EmptyUser()
	s.isAuthenticated = false
	s.mu.Unlock()

	s.logger.Info("Signed out")
	return nil
}

// User returns the current user, or the empty sentinel when signed out.
func (s *AuthService) User() identity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether a session is present.
func (s *AuthService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAuthenticated
}

// IsLoading reports whether a session operation is in flight.
func (s *AuthService) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}

// State returns a consistent snapshot of the store.
func (s *AuthService) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return AuthState{
		User:            s.user,
		IsAuthenticated: s.isAuthenticated,
		IsLoading:       s.isLoading,
	}
}

func (s *AuthService) setLoading(v bool) {
	s.mu.Lock()
	s.isLoading = v
	s.mu.Unlock()
}
