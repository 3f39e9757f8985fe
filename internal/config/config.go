package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"quiz-api"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`
	AutoMigrate             bool          `env:"DB_AUTO_MIGRATE" envDefault:"false"`

	Postgres    Postgres
	Redis       Redis
	Security    Security
	Cookies     Cookies
	OAuth       OAuth
	SMTP        SMTP
	Storage     Storage
	CORS        CORS
	Leaderboard Leaderboard
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// DSN renders a libpq style DSN understood by pgx.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// ConnString is DSN plus the pgxpool sizing parameter.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("%s pool_max_conns=%d", p.DSN(), p.MaxConns)
}

// Redis holds leaderboard + oauth state storage configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing and auth.
type Security struct {
	AccessTokenSecret string        `env:"ACCESS_TOKEN_SECRET,notEmpty"`
	AccessTokenTTL    time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"120h"`
	RefreshTokenTTL   time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"8760h"`
	SecureLinkTTL     time.Duration `env:"SECURE_LINK_TTL" envDefault:"15m"`
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"12"`
	PublicOrigin      string        `env:"PUBLIC_ORIGIN" envDefault:"http://localhost:3000"`
	OAuthSuccessURL   string        `env:"OAUTH_SUCCESS_REDIRECT" envDefault:"http://localhost:3000/"`
	OAuthStateTTL     time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
}

// Cookies controls auth cookie attributes.
type Cookies struct {
	Secure bool   `env:"COOKIE_SECURE" envDefault:"false"`
	Domain string `env:"COOKIE_DOMAIN" envDefault:""`
}

// OAuth holds OAuth provider configuration.
type OAuth struct {
	GoogleClientID       string `env:"GOOGLE_OAUTH_CLIENT_ID" envDefault:""`
	GoogleClientSecret   string `env:"GOOGLE_OAUTH_CLIENT_SECRET" envDefault:""`
	GoogleRedirectURL    string `env:"GOOGLE_OAUTH_REDIRECT_URL" envDefault:""`
	FacebookClientID     string `env:"FACEBOOK_OAUTH_CLIENT_ID" envDefault:""`
	FacebookClientSecret string `env:"FACEBOOK_OAUTH_CLIENT_SECRET" envDefault:""`
	FacebookRedirectURL  string `env:"FACEBOOK_OAUTH_REDIRECT_URL" envDefault:""`
}

// SMTP holds email server configuration.
type SMTP struct {
	Host      string `env:"SMTP_HOST" envDefault:""`
	Port      int    `env:"SMTP_PORT" envDefault:"587"`
	Username  string `env:"SMTP_USERNAME" envDefault:""`
	Password  string `env:"SMTP_PASSWORD" envDefault:""`
	FromEmail string `env:"SMTP_FROM_EMAIL" envDefault:"no-reply@quiz-api.local"`
}

// Storage configures the S3 compatible bucket used for quiz and user images.
type Storage struct {
	Bucket          string `env:"S3_BUCKET" envDefault:""`
	Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint        string `env:"S3_ENDPOINT" envDefault:""`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID" envDefault:""`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY" envDefault:""`
	PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL" envDefault:""`
	UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`
	MaxImageBytes   int64  `env:"MAX_IMAGE_BYTES" envDefault:"5242880"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Leaderboard governs the redis ranking.
type Leaderboard struct {
	Key          string        `env:"LEADERBOARD_KEY" envDefault:"lb:all_time"`
	DefaultLimit int           `env:"LEADERBOARD_DEFAULT_LIMIT" envDefault:"10"`
	RebuildTopN  int           `env:"LEADERBOARD_REBUILD_TOP" envDefault:"1000"`
	SyncInterval time.Duration `env:"LEADERBOARD_SYNC_INTERVAL" envDefault:"15m"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse fills any config section from the environment.
func Parse(section interface{}) error {
	if err := env.ParseWithOptions(section, env.Options{RequiredIfNoDef: true}); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Enabled reports whether the given provider has credentials.
func (o OAuth) Enabled(provider string) bool {
	switch provider {
	case "google":
		return o.GoogleClientID != "" && o.GoogleClientSecret != ""
	case "facebook":
		return o.FacebookClientID != "" && o.FacebookClientSecret != ""
	}
	return false
}

// Enabled reports whether image uploads can be served.
func (s Storage) Enabled() bool {
	return s.Bucket != ""
}
