package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store driver names accepted by STORE_DRIVER.
const (
	StoreJSONBin  = "jsonbin"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port     int    `envconfig:"PORT" default:"3000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"VERSION" default:"dev"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"jsonbin"`

	JSONBinBinID     string `envconfig:"JSONBIN_BIN_ID" default:""`
	JSONBinMasterKey string `envconfig:"JSONBIN_MASTER_KEY" default:""`
	JSONBinBaseURL   string `envconfig:"JSONBIN_BASE_URL" default:"https://api.jsonbin.io/v3"`

	ImgBBAPIKey  string `envconfig:"IMGBB_API_KEY" default:""`
	ImgBBBaseURL string `envconfig:"IMGBB_BASE_URL" default:"https://api.imgbb.com/1"`

	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	DocumentID  string `envconfig:"DOCUMENT_ID" default:"team"`

	AdminPassword string `envconfig:"ADMIN_PASSWORD" required:"true"`
	SessionSecret string `envconfig:"SESSION_SECRET" default:""`
	SessionSecure bool   `envconfig:"SESSION_SECURE" default:"false"`
	BcryptCost    int    `envconfig:"BCRYPT_COST" default:"12"`

	FrontendURL         string `envconfig:"FRONTEND_URL" default:"*"`
	PlaceholderImageURL string `envconfig:"PLACEHOLDER_IMAGE_URL" default:"https://via.placeholder.com/300x300/667eea/ffffff?text=Team+Member"`
	PortfolioAPIURL     string `envconfig:"PORTFOLIO_API_URL" default:""`
	UpstreamTimeout     int    `envconfig:"UPSTREAM_TIMEOUT" default:"15"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MaxAdminPasswordBytes is the longest password bcrypt accepts.
const MaxAdminPasswordBytes = 72

func (c *Config) validate() error {
	if len(c.AdminPassword) > MaxAdminPasswordBytes {
		return fmt.Errorf("ADMIN_PASSWORD must be at most %d bytes, got %d", MaxAdminPasswordBytes, len(c.AdminPassword))
	}
	switch c.StoreDriver {
	case StoreJSONBin, StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	default:
		return errors.New("STORE_DRIVER must be one of jsonbin, postgres, memory")
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT must be positive")
	}
	return nil
}

// UpstreamTimeoutDuration returns the per-call timeout for JSONBin and ImgBB.
func (c *Config) UpstreamTimeoutDuration() time.Duration {
	return time.Duration(c.UpstreamTimeout) * time.Second
}

// JSONBinConfigured reports whether a JSONBin document id has been set.
func (c *Config) JSONBinConfigured() bool {
	return c.JSONBinBinID != ""
}
