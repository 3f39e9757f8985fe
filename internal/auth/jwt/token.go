package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by access tokens.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// LinkClaims carried by secure links mailed to users. MD5 echoes the secret
// the link was signed with so the receiver can check it is still current.
type LinkClaims struct {
	Email string `json:"email"`
	MD5   string `json:"md5"`
	Date  int64  `json:"date"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenConfig holds JWT signing configuration.
type TokenConfig struct {
	AccessSecret []byte
	AccessTTL    time.Duration // default: 120 hours
	LinkTTL      time.Duration // default: 15 minutes
	Issuer       string
}

// Manager handles JWT token generation and validation.
type Manager struct {
	accessSecret []byte
	accessTTL    time.Duration
	linkTTL      time.Duration
	issuer       string
	now          func() time.Time
}

// NewManager creates a JWT token manager.
func NewManager(cfg TokenConfig) *Manager {
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = 120 * time.Hour
	}
	if cfg.LinkTTL == 0 {
		cfg.LinkTTL = 15 * time.Minute
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "quiz-api"
	}

	return &Manager{
		accessSecret: cfg.AccessSecret,
		accessTTL:    cfg.AccessTTL,
		linkTTL:      cfg.LinkTTL,
		issuer:       cfg.Issuer,
		now:          time.Now,
	}
}

// AccessTTL reports how long issued access tokens live.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// GenerateAccessToken creates a signed access token for the user.
func (m *Manager) GenerateAccessToken(userID uuid.UUID, role string) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.accessTTL)
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ValidateAccessToken parses and validates an access token.
func (m *Manager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenString, claims, m.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// GenerateLinkToken signs a short lived token for email and secret, using
// the secret itself as the key. Rotating the secret invalidates the link.
func (m *Manager) GenerateLinkToken(email, secret string) (string, error) {
	if secret == "" {
		return "", ErrInvalidToken
	}
	now := m.now()
	claims := LinkClaims{
		Email: email,
		MD5:   secret,
		Date:  now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.linkTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateLinkToken verifies a link token against the secret it was signed with.
func (m *Manager) ValidateLinkToken(tokenString, secret string) (*LinkClaims, error) {
	if tokenString == "" || secret == "" {
		return nil, ErrInvalidToken
	}
	claims := &LinkClaims{}
	if err := m.parse(tokenString, claims, []byte(secret)); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *Manager) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
