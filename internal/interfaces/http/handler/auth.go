package handler

import (
	appidentity "github.com/catalogdash/backend/internal/application/identity"
	"github.com/catalogdash/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// AuthHandler exposes the session store over HTTP
type AuthHandler struct {
	BaseHandler
	auth *appidentity.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *appidentity.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignInRequest is the sign-in request body
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// SignUpRequest is the sign-up request body
type SignUpRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Username string `json:"username" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// UserResponse is the API representation of a user
type UserResponse struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// SessionStateResponse is the API representation of the session store state
type SessionStateResponse struct {
	User            UserResponse `json:"user"`
	IsAuthenticated bool         `json:"is_authenticated"`
	IsLoading       bool         `json:"is_loading"`
}

func toUserResponse(u identity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		AccountID: u.AccountID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
	}
}

func toSessionStateResponse(s appidentity.AuthState) SessionStateResponse {
	return SessionStateResponse{
		User:            toUserResponse(s.User),
		IsAuthenticated: s.IsAuthenticated,
		IsLoading:       s.IsLoading,
	}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/sign-in", h.SignIn)
		auth.POST("/sign-up", h.SignUp)
		auth.POST("/sign-out", h.SignOut)
		auth.GET("/session", h.Session)
	}
}

// SignIn establishes a session with the submitted credentials
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid sign-in request: "+err.Error())
		return
	}

	input := appidentity.SignInInput{Email: req.Email, Password: req.Password}
	if err := h.auth.SignIn(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toSessionStateResponse(h.auth.State()))
}

// SignUp creates an account and signs the new user in
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid sign-up request: "+err.Error())
		return
	}

	input := appidentity.SignUpInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if err := h.auth.SignUp(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toSessionStateResponse(h.auth.State()))
}

// SignOut deletes the current session
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Session returns the current session store state, refreshing it from the
// platform first
func (h *AuthHandler) Session(c *gin.Context) {
	h.auth.CheckAuthUser(c.Request.Context())
	h.Success(c, toSessionStateResponse(h.auth.State()))
}
