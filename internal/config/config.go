package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultAPIURL is used when STOREFRONT_API_URL is absent. Its absence also
// switches the client to the mock provider.
const DefaultAPIURL = "https://api.example.com"

// Config holds the backend configuration.
type Config struct {
	ServerPort     int           `env:"PORT" env-default:"8000"`
	DatabasePath   string        `env:"DATABASE_PATH" env-default:"./storefront.db"`
	JWTSecret      string        `env:"JWT_SECRET" env-default:"dev-only-secret"`
	AccessTTL      time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTTL     time.Duration `env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173,http://localhost:3000" env-separator:","`
	PruneSchedule  string        `env:"TOKEN_PRUNE_SCHEDULE" env-default:"@hourly"`
	SeedCatalog    bool          `env:"SEED_CATALOG" env-default:"true"`
	LogLevel       string        `env:"LOG_LEVEL" env-default:"info"`
}

// ClientConfig holds the CLI client configuration.
type ClientConfig struct {
	APIURL      string        `env:"STOREFRONT_API_URL"`
	SessionPath string        `env:"STOREFRONT_SESSION_PATH"`
	Timeout     time.Duration `env:"STOREFRONT_TIMEOUT" env-default:"10s"`
	LogLevel    string        `env:"LOG_LEVEL" env-default:"warn"`
}

// Load loads the backend configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClient loads the client configuration from environment variables.
func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	if cfg.SessionPath == "" {
		cfg.SessionPath = defaultSessionPath()
	}
	return &cfg, nil
}

// UseMock reports whether no backend was configured.
func (c *ClientConfig) UseMock() bool {
	return c.APIURL == ""
}

// BaseURL returns the configured backend URL or the fixed default.
func (c *ClientConfig) BaseURL() string {
	if c.APIURL == "" {
		return DefaultAPIURL
	}
	return c.APIURL
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./storefront-session.db"
	}
	return filepath.Join(dir, "storefront", "session.db")
}
