package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Storage driver names, selected once at startup. Requests never branch
// on storage type.
const (
	DriverMemory     = "memory"
	DriverLocal      = "local"
	DriverBlob       = "blob"
	DriverBlobSigned = "blob-signed"
)

// Config is the full runtime configuration, loaded from the
// environment.
type Config struct {
	Port          int
	PublicBaseURL string

	StorageDriver string
	DataDir       string
	Retention     time.Duration

	BlobEndpoint  string
	BlobBucket    string
	BlobAccessKey string
	BlobSecretKey string
	BlobUseSSL    bool

	GeminiAPIKey string
	GeminiModel  string

	StripeSecretKey string
	StripePriceID   string
}

// Load reads configuration from the environment with sane local-dev
// defaults, then validates it.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("STORAGE_DRIVER", DriverMemory)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("RETENTION", "24h")
	v.SetDefault("BLOB_USE_SSL", true)
	v.SetDefault("GEMINI_MODEL", "")

	cfg := &Config{
		Port:            v.GetInt("PORT"),
		PublicBaseURL:   v.GetString("PUBLIC_BASE_URL"),
		StorageDriver:   v.GetString("STORAGE_DRIVER"),
		DataDir:         v.GetString("DATA_DIR"),
		Retention:       v.GetDuration("RETENTION"),
		BlobEndpoint:    v.GetString("BLOB_ENDPOINT"),
		BlobBucket:      v.GetString("BLOB_BUCKET"),
		BlobAccessKey:   v.GetString("BLOB_ACCESS_KEY"),
		BlobSecretKey:   v.GetString("BLOB_SECRET_KEY"),
		BlobUseSSL:      v.GetBool("BLOB_USE_SSL"),
		GeminiAPIKey:    v.GetString("GEMINI_API_KEY"),
		GeminiModel:     v.GetString("GEMINI_MODEL"),
		StripeSecretKey: v.GetString("STRIPE_SECRET_KEY"),
		StripePriceID:   v.GetString("STRIPE_PRICE_ID"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast with the name of the missing setting rather than
// letting a half-configured collaborator fail mid-request.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory:
	case DriverLocal:
		if c.DataDir == "" {
			return fmt.Errorf("config: DATA_DIR is required for the %s storage driver", DriverLocal)
		}
	case DriverBlob, DriverBlobSigned:
		for name, val := range map[string]string{
			"BLOB_ENDPOINT":   c.BlobEndpoint,
			"BLOB_BUCKET":     c.BlobBucket,
			"BLOB_ACCESS_KEY": c.BlobAccessKey,
			"BLOB_SECRET_KEY": c.BlobSecretKey,
		} {
			if val == "" {
				return fmt.Errorf("config: %s is required for the %s storage driver", name, c.StorageDriver)
			}
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config: GEMINI_API_KEY is required")
	}
	if c.StripeSecretKey == "" {
		return fmt.Errorf("config: STRIPE_SECRET_KEY is required")
	}
	if c.StripePriceID == "" {
		return fmt.Errorf("config: STRIPE_PRICE_ID is required")
	}
	if c.Retention <= 0 {
		return fmt.Errorf("config: RETENTION must be a positive duration")
	}

	return nil
}
