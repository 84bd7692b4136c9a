package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port                   string   `mapstructure:"PORT"`
	Env                    string   `mapstructure:"ENV"`
	DatabaseURL            string   `mapstructure:"DATABASE_URL"`
	DBMaxConns             int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns             int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret              string   `mapstructure:"JWT_SECRET"`
	TokenTTLHours          int      `mapstructure:"TOKEN_TTL_HOURS"`
	ModelDir               string   `mapstructure:"MODEL_DIR"`
	CORSOrigins            []string `mapstructure:"CORS_ORIGINS"`
	InsightsAPIKey         string   `mapstructure:"INSIGHTS_API_KEY"`
	InsightsModel          string   `mapstructure:"INSIGHTS_MODEL"`
	InsightsTimeoutSeconds int      `mapstructure:"INSIGHTS_TIMEOUT_SECONDS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("TOKEN_TTL_HOURS", 24)
	v.SetDefault("MODEL_DIR", "./models")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("INSIGHTS_MODEL", "gemini-2.5-flash")
	v.SetDefault("INSIGHTS_TIMEOUT_SECONDS", 15)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("TOKEN_TTL_HOURS")
	v.BindEnv("MODEL_DIR")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("INSIGHTS_API_KEY")
	v.BindEnv("INSIGHTS_MODEL")
	v.BindEnv("INSIGHTS_TIMEOUT_SECONDS")

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

	if cfg.IsDev() && cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-do-not-use-in-production"
		log.Println("WARNING: JWT_SECRET not set; using an insecure development secret.")
		log.Println("WARNING: Set JWT_SECRET before deploying this server.")
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

// Validate checks that the configuration is safe to run. Session tokens are
// the only authentication mechanism, so production refuses to start without a
// real JWT secret.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.JWTSecret == "" || c.JWTSecret == "dev-secret-do-not-use-in-production" {
			return fmt.Errorf("JWT_SECRET must be set to a real secret in production")
		}
	}
	if c.TokenTTLHours <= 0 {
		return fmt.Errorf("TOKEN_TTL_HOURS must be positive, got %d", c.TokenTTLHours)
	}
	if c.ModelDir == "" {
		return fmt.Errorf("MODEL_DIR is required")
	}
	if c.InsightsTimeoutSeconds <= 0 {
		return fmt.Errorf("INSIGHTS_TIMEOUT_SECONDS must be positive, got %d", c.InsightsTimeoutSeconds)
	}
	return nil
}
