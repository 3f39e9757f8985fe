package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"github.com/gokatarajesh/quiz-api/internal/config"
	"github.com/gokatarajesh/quiz-api/internal/db/store"
	httperrors "github.com/gokatarajesh/quiz-api/pkg/http/errors"
)

// OAuthProvider defines the interface for OAuth implementations.
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*OAuthUserInfo, error)
}

const (
	googleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
	facebookUserInfoURL = "https://graph.facebook.com/me?fields=id,email,first_name,last_name,picture.type(large)"
)

// NewGoogleProvider builds the google provider from credentials.
func NewGoogleProvider(clientID, secret, redirectURL string) OAuthProvider {
	return &oauthProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: secret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
		decode: func(resp *http.Response) (*OAuthUserInfo, error) {
			var u struct {
				ID         string `json:"id"`
				Email      string `json:"email"`
				GivenName  string `json:"given_name"`
				FamilyName string `json:"family_name"`
				Picture    string `json:"picture"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
				return nil, err
			}
			return &OAuthUserInfo{ProviderID: u.ID, Email: u.Email, Firstname: u.GivenName, Lastname: u.FamilyName, AvatarURL: u.Picture}, nil
		},
	}
}

// NewFacebookProvider builds the facebook provider from credentials.
func NewFacebookProvider(clientID, secret, redirectURL string) OAuthProvider {
	return &oauthProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: secret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     facebook.Endpoint,
		},
		userInfoURL: facebookUserInfoURL,
		decode: func(resp *http.Response) (*OAuthUserInfo, error) {
			var u struct {
				ID        string `json:"id"`
				Email     string `json:"email"`
				FirstName string `json:"first_name"`
				LastName  string `json:"last_name"`
				Picture   struct {
					Data struct {
						URL string `json:"url"`
					} `json:"data"`
				} `json:"picture"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
				return nil, err
			}
			return &OAuthUserInfo{ProviderID: u.ID, Email: u.Email, Firstname: u.FirstName, Lastname: u.LastName, AvatarURL: u.Picture.Data.URL}, nil
		},
	}
}

type oauthProvider struct {
	config      *oauth2.Config
	userInfoURL string
	decode      func(*http.Response) (*OAuthUserInfo, error)
}

func (p *oauthProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *oauthProvider) Exchange(ctx context.Context, code string) (*OAuthUserInfo, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info API returned status %d", resp.StatusCode)
	}
	info, err := p.decode(resp)
	if err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return info, nil
}

// StateStore keeps OAuth CSRF states in redis until the callback consumes them.
type StateStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewStateStore creates a state store; ttl defaults to 10 minutes.
func NewStateStore(rdb redis.Cmdable, ttl time.Duration) *StateStore {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &StateStore{rdb: rdb, ttl: ttl}
}

func stateKey(state string) string { return "oauth_state:" + state }

// Save records state as issued for provider.
func (s *StateStore) Save(ctx context.Context, state, provider string) error {
	return s.rdb.Set(ctx, stateKey(state), provider, s.ttl).Err()
}

// Consume deletes state and reports whether it was issued for provider.
func (s *StateStore) Consume(ctx context.Context, state, provider string) (bool, error) {
	if state == "" {
		return false, nil
	}
	got, err := s.rdb.GetDel(ctx, stateKey(state)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return got == provider, nil
}

// OAuthService runs the provider login flows and maps identities to accounts.
type OAuthService struct {
	providers map[string]OAuthProvider
	states    *StateStore
	auth      *Service
	newState  func() string
	logger    zerolog.Logger
}

// ProvidersFromConfig builds the providers that have credentials configured.
func ProvidersFromConfig(cfg config.OAuth) map[string]OAuthProvider {
	providers := make(map[string]OAuthProvider)
	if cfg.Enabled(OAuthProviderGoogle) {
		providers[OAuthProviderGoogle] = NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	}
	if cfg.Enabled(OAuthProviderFacebook) {
		providers[OAuthProviderFacebook] = NewFacebookProvider(cfg.FacebookClientID, cfg.FacebookClientSecret, cfg.FacebookRedirectURL)
	}
	return providers
}

// NewOAuthService creates an OAuth service over the configured providers.
func NewOAuthService(providers map[string]OAuthProvider, states *StateStore, auth *Service, logger zerolog.Logger) *OAuthService {
	return &OAuthService{
		providers: providers,
		states:    states,
		auth:      auth,
		newState:  func() string { s, _ := randomToken(); return s },
		logger:    logger.With().Str("component", "oauth").Logger(),
	}
}

func (s *OAuthService) provider(name string) (OAuthProvider, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, httperrors.NotFound("oauth provider not configured").WithCode(httperrors.ErrCodeOAuthNotConfigured)
	}
	return p, nil
}

// Start issues a state and returns the provider's consent URL.
func (s *OAuthService) Start(ctx context.Context, providerName string) (string, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return "", err
	}
	state := s.newState()
	if err := s.states.Save(ctx, state, providerName); err != nil {
		return "", httperrors.Internal("store oauth state", err)
	}
	return p.AuthURL(state), nil
}

// Callback validates state, exchanges the code and logs the matching account in.
func (s *OAuthService) Callback(ctx context.Context, providerName, code, state string) (Session, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return Session{}, err
	}
	if code == "" {
		return Session{}, httperrors.Validation("authorization code required", nil).WithCode(httperrors.ErrCodeOAuthMissingCode)
	}
	ok, err := s.states.Consume(ctx, state, providerName)
	if err != nil {
		return Session{}, httperrors.Internal("consume oauth state", err)
	}
	if !ok {
		return Session{}, httperrors.Validation("invalid or missing state parameter", nil).WithCode(httperrors.ErrCodeOAuthInvalidState)
	}

	info, err := p.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn().Err(err).Str("provider", providerName).Msg("oauth exchange failed")
		return Session{}, httperrors.Unauthorized("oauth login failed").WithCode(httperrors.ErrCodeOAuthCallbackFailed)
	}

	user, err := s.findOrCreate(ctx, providerName, info)
	if err != nil {
		return Session{}, err
	}
	return s.auth.IssueSession(ctx, user)
}

// findOrCreate looks the identity up by provider id, then by email (linking
// the identity to that account), and otherwise creates a verified account.
func (s *OAuthService) findOrCreate(ctx context.Context, providerName string, info *OAuthUserInfo) (store.User, error) {
	users := s.auth.users

	user, err := users.GetByProvider(ctx, providerName, info.ProviderID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.User{}, httperrors.Internal("lookup provider identity", err)
	}

	if info.Email == "" {
		return store.User{}, httperrors.Validation("oauth provider did not return an email", nil).WithCode(httperrors.ErrCodeOAuthCallbackFailed)
	}

	existing, err := users.GetByEmail(ctx, info.Email)
	switch {
	case err == nil:
		linked, err := users.LinkProvider(ctx, existing.ID, providerName, info.ProviderID)
		if err != nil {
			return store.User{}, httperrors.Internal("link provider identity", err)
		}
		s.logger.Info().Str("user_id", linked.ID.String()).Str("provider", providerName).Msg("oauth identity linked")
		return linked, nil
	case !errors.Is(err, store.ErrNotFound):
		return store.User{}, httperrors.Internal("lookup email", err)
	}

	params := store.CreateUserParams{
		Email:             info.Email,
		Firstname:         info.Firstname,
		Lastname:          info.Lastname,
		Photo:             info.AvatarURL,
		VerificationToken: VerificationToken(info.Email),
		IsEmailVerified:   true,
	}
	providerID := info.ProviderID
	switch providerName {
	case OAuthProviderGoogle:
		params.GoogleID = &providerID
	case OAuthProviderFacebook:
		params.FacebookID = &providerID
	}

	created, err := users.Create(ctx, params)
	if err != nil {
		return store.User{}, httperrors.Internal("create oauth user", err)
	}
	s.logger.Info().Str("user_id", created.ID.String()).Str("provider", providerName).Msg("oauth user created")
	return created, nil
}
