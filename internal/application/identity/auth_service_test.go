package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/catalogdash/backend/internal/domain/identity"
	"github.com/catalogdash/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockAccountGateway is a mock implementation of AccountGateway
type MockAccountGateway struct {
	mock.Mock
}

func (m *MockAccountGateway) CreateSession(ctx context.Context, email, password string) (*identity.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Session), args.Error(1)
}

func (m *MockAccountGateway) CreateAccount(ctx context.Context, input SignUpInput) (*identity.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockAccountGateway) CurrentUser(ctx context.Context) (*identity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockAccountGateway) DeleteSession(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAccountGateway) HasSessionHint() bool {
	args := m.Called()
	return args.Bool(0)
}

var _ AccountGateway = (*MockAccountGateway)(nil)

func testUser() *identity.User {
	return &identity.User{
		ID:        "doc-1",
		AccountID: "acct-1",
		Name:      "Ada Admin",
		Username:  "ada",
		Email:     "a@b.com",
	}
}

func newTestAuthService() (*AuthService, *MockAccountGateway) {
	gateway := new(MockAccountGateway)
	return NewAuthService(gateway, zap.NewNop()), gateway
}

func TestAuthServiceStartsLoading(t *testing.T) {
	svc, _ := newTestAuthService()
	assert.True(t, svc.IsLoading())
	assert.False(t, svc.IsAuthenticated())
	assert.True(t, svc.User().IsEmpty())
}

func TestInitialCheckWithoutHintSkipsRemoteCall(t *testing.T) {
	svc, gateway := newTestAuthService()
	gateway.On("HasSessionHint").Return(false)

	ok := svc.InitialCheck(context.Background())

	assert.False(t, ok)
	assert.False(t, svc.IsAuthenticated())
	assert.False(t, svc.IsLoading())
	gateway.AssertNotCalled(t, "CurrentUser", mock.Anything)
}

func TestInitialCheckWithHintConsultsRemote(t *testing.T) {
	svc, gateway := newTestAuthService()
	gateway.On("HasSessionHint").Return(true)
	gateway.On("CurrentUser", mock.Anything).Return(testUser(), nil)

	ok := svc.InitialCheck(context.Background())

	assert.True(t, ok)
	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, "a@b.com", svc.User().Email)
	gateway.AssertExpectations(t)
}

func TestCheckAuthUserClearsLoadingOnSuccess(t *testing.T) {
	svc, gateway := newTestAuthService()
	gateway.On("CurrentUser", mock.Anything).Return(testUser(), nil)

	ok := svc.CheckAuthUser(context.Background())

	assert.True(t, ok)
	assert.False(t, svc.IsLoading())
}

func TestCheckAuthUserClearsLoadingOnError(t *testing.T) {
	svc, gateway := newTestAuthService()
	gateway.On("CurrentUser", mock.Anything).Return(nil, errors.New("network down"))

	ok := svc.CheckAuthUser(context.Background())

	assert.False(t, ok)
	assert.False(t, svc.IsLoading())
	assert.False(t, svc.IsAuthenticated())
	assert.True(t, svc.User().IsEmpty())
}

func TestCheckAuthUserResetsStaleUserOnNotFound(t *testing.T) {
	svc, gateway := newTestAuthService()
	gateway.On("CurrentUser", mock.Anything).Return(testUser(), nil).Once()
	require.True(t, svc.CheckAuthUser(context.Background()))

	gateway.On("CurrentUser", mock.Anything).Return(nil, shared.ErrNotFound).Once()
	assert.False(t, svc.CheckAuthUser(context.Background()))
	assert.True(t, svc.User().IsEmpty())
	assert.False(t, svc.IsAuthenticated())
}

func TestSignInSuccess(t *testing.T) {
	svc, gateway := newTestAuthService()
	session := &identity.Session{ID: "sess-1", UserID: "acct-1", ExpiresAt: time.Now().Add(time.Hour)}
	gateway.On("CreateSession", mock.Anything, "a@b.com", "password123").Return(session, nil)
	gateway.On("CurrentUser", mock.Anything).Return(testUser(), nil)

	err := svc.SignIn(context.Background(), SignInInput{Email: "a@b.com", Password: "password123"})

	require.NoError(t, err)
	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, "a@b.com", svc.User().Email)
	assert.False(t, svc.IsLoading())
	gateway.AssertExpectations(t)
}

func TestSignInUsesSubmittedCredentials(t *testing.T) {
	svc, gateway := newTestAuthService()
	session := &identity.Session{ID: "sess-2"}
	gateway.On("CreateSession", mock.Anything, "other@b.com", "hunter22222").Return(session, nil)
	gateway.On("CurrentUser", mock.Anything).Return(testUser(), nil)

	err := svc.SignIn(context.Background(), SignInInput{Email: "other@b.com", Password: "hunter22222"})

	require.NoError(t, err)
	gateway.AssertCalled(t, "CreateSession", mock.Anything, "other@b.com", "hunter22222")
}

func TestSignInInvalidCredentials(t *testing.T) {
	svc, gateway := newTestAuthService()
	gateway.On("CreateSession", mock.Anything, "a@b.com", "wrong-password").
		Return(nil, shared.ErrUnauthorized)

	err := svc.SignIn(context.Background(), SignInInput{Email: "a@b.com", Password: "wrong-password"})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	assert.False(t, svc.IsAuthenticated())
	gateway.AssertNotCalled(t, "CurrentUser", mock.Anything)
}

func TestSignUpCreatesAccountThenSignsIn(t *testing.T) {
	svc, gateway := newTestAuthService()
	input := SignUpInput{Name: "Ada Admin", Username: "ada", Email: "a@b.com", Password: "password123"}
	gateway.On("CreateAccount", mock.Anything, input).Return(testUser(), nil)
	gateway.On("CreateSession", mock.Anything, "a@b.com", "password123").
		Return(&identity.Session{ID: "sess-1"}, nil)
	gateway.On("CurrentUser", mock.Anything).Return(testUser(), nil)

	err := svc.SignUp(context.Background(), input)

	require.NoError(t, err)
	assert.True(t, svc.IsAuthenticated())
	gateway.AssertExpectations(t)
}

func TestSignUpAccountCreationFailure(t *testing.T) {
	svc, gateway := newTestAuthService()
	input := SignUpInput{Name: "Ada Admin", Username: "ada", Email: "a@b.com", Password: "password123"}
	gateway.On("CreateAccount", mock.Anything, input).
		Return(nil, shared.NewDomainError("ALREADY_EXISTS", "Account already exists"))

	err := svc.SignUp(context.Background(), input)

	require.Error(t, err)
	gateway.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignOutSuccessResetsState(t *testing.T) {
	svc, gateway := newTestAuthService()
	gateway.On("CurrentUser", mock.Anything).Return(testUser(), nil)
	require.True(t, svc.CheckAuthUser(context.Background()))

	gateway.On("DeleteSession", mock.Anything).Return(nil)

	err := svc.SignOut(context.Background())

	require.NoError(t, err)
	assert.False(t, svc.IsAuthenticated())
	assert.True(t, svc.User().IsEmpty())
	assert.False(t, svc.IsLoading())
}

func TestSignOutFailureKeepsState(t *testing.T) {
	svc, gateway := newTestAuthService()
	gateway.On("CurrentUser", mock.Anything).Return(testUser(), nil)
	require.True(t, svc.CheckAuthUser(context.Background()))

	gateway.On("DeleteSession", mock.Anything).Return(errors.New("network down"))

	err := svc.SignOut(context.Background())

	require.Error(t, err)
	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, "a@b.com", svc.User().Email)
	assert.False(t, svc.IsLoading())
}

func TestStateSnapshotIsConsistent(t *testing.T) {
	svc, gateway := newTestAuthService()
	gateway.On("CurrentUser", mock.Anything).Return(testUser(), nil)
	require.True(t, svc.CheckAuthUser(context.Background()))

	state := svc.State()
	assert.True(t, state.IsAuthenticated)
	assert.False(t, state.IsLoading)
	assert.Equal(t, "a@b.com", state.User.Email)
}
