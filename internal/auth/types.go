package auth

import (
	"time"

	"github.com/google/uuid"
)

// Cookie names shared with the web client.
const (
	AccessCookie  = "authToken"
	RefreshCookie = "refreshToken"
)

// Messages returned by the auth endpoints.
const (
	MsgEmailRegistered   = "that email has already been registered"
	MsgIncorrectEmail    = "Incorrect email/username."
	MsgIncorrectPassword = "Incorrect password"
	MsgMissingField      = "Missing required field"
	MsgInvalidToken      = "invalid token"
	MsgUnauthenticated   = "Unauthenticated"
	MsgLoginSuccess      = "Login Successful"
	MsgTokenGenerated    = "token generated successfully"
	MsgSilentLogin       = "logged in"
	MsgLoggedOut         = "user logged out successfully"
)

// Session is the token material handed to a client after a successful login.
type Session struct {
	UserID         uuid.UUID
	Role           string
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Time
}

// AccessToken is a freshly minted access token.
type AccessToken struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// RegisterInput for email/password registration.
type RegisterInput struct {
	Email     string
	Password  string
	Firstname string
	Lastname  string
	Username  string
}

// LoginInput for email/password authentication.
type LoginInput struct {
	Email    string
	Password string
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=4"`
	Firstname string `json:"firstname" validate:"omitempty,max=100"`
	Lastname  string `json:"lastname" validate:"omitempty,max=100"`
	Username  string `json:"username" validate:"omitempty,max=50"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// OAuth provider names, as used in /auth/oauth/{provider}/...
const (
	OAuthProviderGoogle   = "google"
	OAuthProviderFacebook = "facebook"
)

// OAuthUserInfo contains user data from an OAuth provider.
type OAuthUserInfo struct {
	ProviderID string
	Email      string
	Firstname  string
	Lastname   string
	AvatarURL  string
}
