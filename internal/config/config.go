package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string   `mapstructure:"PORT"`
	Env                string   `mapstructure:"ENV"`
	DatabaseURL        string   `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins        []string `mapstructure:"CORS_ORIGINS"`
	LoginPath          string   `mapstructure:"LOGIN_PATH"`
	SessionTTLMinutes  int      `mapstructure:"SESSION_TTL_MINUTES"`
	DocSigningKey      string   `mapstructure:"DOC_SIGNING_KEY"`
	DocURLTTLMinutes   int      `mapstructure:"DOC_URL_TTL_MINUTES"`
	DefaultLanguage    string   `mapstructure:"DEFAULT_LANGUAGE"`
	LocalesDir         string   `mapstructure:"LOCALES_DIR"`
	RequestTimeoutSecs int      `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	RateLimitRPS       float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst     int      `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOGIN_PATH", "/login")
	v.SetDefault("SESSION_TTL_MINUTES", 720)
	v.SetDefault("DOC_URL_TTL_MINUTES", 15)
	v.SetDefault("DEFAULT_LANGUAGE", "de")
	v.SetDefault("LOCALES_DIR", "./locales")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 15)
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("LOGIN_PATH")
	v.BindEnv("SESSION_TTL_MINUTES")
	v.BindEnv("DOC_SIGNING_KEY")
	v.BindEnv("DOC_URL_TTL_MINUTES")
	v.BindEnv("DEFAULT_LANGUAGE")
	v.BindEnv("LOCALES_DIR")
	v.BindEnv("REQUEST_TIMEOUT_SECONDS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() && cfg.DocSigningKey == "" {
		cfg.DocSigningKey = "careconnect-dev-signing-key"
		log.Println("WARNING: DOC_SIGNING_KEY not set; using the development default.")
		log.Println("WARNING: Signed document URLs produced with this key are not safe for production.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. In production the
// document signing key must be set explicitly so that signed download URLs
// cannot be forged with the well-known development default.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.DocSigningKey == "" || c.DocSigningKey == "careconnect-dev-signing-key" {
			return fmt.Errorf("DOC_SIGNING_KEY must be set to a non-default value in production")
		}
	}
	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive, got %d", c.SessionTTLMinutes)
	}
	if c.DocURLTTLMinutes <= 0 {
		return fmt.Errorf("DOC_URL_TTL_MINUTES must be positive, got %d", c.DocURLTTLMinutes)
	}
	if c.DefaultLanguage == "" {
		return fmt.Errorf("DEFAULT_LANGUAGE must not be empty")
	}
	if c.RequestTimeoutSecs <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.RequestTimeoutSecs)
	}
	return nil
}
