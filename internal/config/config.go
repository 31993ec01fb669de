package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
)

// Config holds the configuration for the Astro Advisor server and its dependencies.
type Config struct {
	// Listen is the address the HTTP server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// CORSOrigins is the list of origins allowed to call the API. "*" allows all.
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Auth holds the bearer token and password hashing configuration.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
	// LLM holds the chat completion API configuration.
	LLM *LLMConfig `yaml:"llm" mapstructure:"llm"`
	// RateLimit holds the rate limit configuration for the AI backed routes.
	RateLimit *RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	// Metrics holds the Prometheus metrics configuration.
	Metrics *MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	// Email holds the welcome mail configuration.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
	// Gravatar holds the configuration for Gravatar profile pictures.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Driver selects the database backend ("sqlite" or "postgres").
	Driver DatabaseDriver `yaml:"driver" mapstructure:"driver"`
	// Path is the path to the SQLite database file.
	Path string `yaml:"path" mapstructure:"path"`
	// URL is the Postgres connection string. Setting it implies the postgres driver.
	URL string `yaml:"url" mapstructure:"url"`
}

// AuthConfig holds the authentication configuration.
type AuthConfig struct {
	// Secret is the HMAC key used to sign bearer tokens.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// TokenTTL is the lifetime of an issued bearer token.
	TokenTTL time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
	// BcryptCost is the bcrypt work factor used for password hashes.
	BcryptCost int `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`
}

// LLMConfig holds the configuration for the OpenAI compatible chat completion API.
type LLMConfig struct {
	// BaseURL is the base URL of the API, e.g. https://api.openai.com/v1.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// APIKey is the API key sent as bearer token.
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// AdviceModel is the model used for readings.
	AdviceModel string `yaml:"advice_model" mapstructure:"advice_model"`
	// GuruModel is the model used for guru chats.
	GuruModel string `yaml:"guru_model" mapstructure:"guru_model"`
	// GuruTemperature is the sampling temperature for guru chats.
	GuruTemperature float64 `yaml:"guru_temperature" mapstructure:"guru_temperature"`
	// GuruMaxTokens limits the length of a guru answer.
	GuruMaxTokens int `yaml:"guru_max_tokens" mapstructure:"guru_max_tokens"`
	// Timeout bounds a single round trip to the API.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// RateLimitConfig holds the per client rate limit for the AI backed routes.
type RateLimitConfig struct {
	// Enabled indicates whether rate limiting is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// RequestsPerMinute is the sustained rate allowed per client.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	// Burst is the number of requests a client may make at once.
	Burst int `yaml:"burst" mapstructure:"burst"`
}

// MetricsConfig holds the Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled indicates whether GET /metrics is exposed.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// EmailConfig holds the email notification configuration.
type EmailConfig struct {
	// Enabled indicates whether welcome mails are sent.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP server host.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP server port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the SMTP username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the SMTP password.
	Password string `yaml:"password" mapstructure:"password"`
	// FromEmail is the email address from which mails are sent.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// FromName is the name from which mails are sent.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// UseTLS indicates whether to use STARTTLS for the SMTP connection.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// UseSSL indicates whether to use SSL for the SMTP connection.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// InsecureSkipVerify indicates whether to skip TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// GravatarConfig holds the configuration for Gravatar profile pictures.
type GravatarConfig struct {
	// Enabled indicates whether Gravatar support is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the default image to use when no Gravatar is found.
	// Valid values: "404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating for Gravatar images.
	// Valid values: "g", "pg", "r", "x"
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the Gravatar image in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
// A .env file in the working directory is loaded into the process environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to load .env file", "error", err)
	}

	v := viper.New()

	bindEnv(v)
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("ASTROADVISOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.astroadvisor")
		v.AddConfigPath("/etc/astroadvisor")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug("No config file found, using defaults and environment")
	} else {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:8000")
	v.SetDefault("cors_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.driver", DatabaseDriverSQLite)
	v.SetDefault("database.path", "./data/astroadvisor.db")

	// Auth defaults
	v.SetDefault("auth.token_ttl", 30*time.Minute)
	v.SetDefault("auth.bcrypt_cost", 10)

	// LLM defaults
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.advice_model", "gpt-3.5-turbo")
	v.SetDefault("llm.guru_model", "gpt-4")
	v.SetDefault("llm.guru_temperature", 0.7)
	v.SetDefault("llm.guru_max_tokens", 500)
	v.SetDefault("llm.timeout", 60*time.Second)

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 10)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("metrics.enabled", true)

	// Email defaults
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from_email", "")
	v.SetDefault("email.from_name", "Astro Advisor")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("email.insecure_skip_verify", false)

	// Gravatar defaults
	v.SetDefault("gravatar.enabled", false)
	v.SetDefault("gravatar.default_image", "mp")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 80)
}

// bindEnv binds the well known unprefixed variables in addition to the ASTROADVISOR_ ones.
func bindEnv(v *viper.Viper) {
	v.MustBindEnv("llm.api_key", "ASTROADVISOR_LLM_API_KEY", "OPENAI_API_KEY")
	v.MustBindEnv("database.url", "ASTROADVISOR_DATABASE_URL", "DATABASE_URL")
	v.MustBindEnv("auth.secret", "ASTROADVISOR_AUTH_SECRET", "SECRET_KEY")
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing config")
	}

	if c.Database == nil {
		return fmt.Errorf("missing database config")
	}
	switch c.Database.Driver {
	case DatabaseDriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required when using sqlite")
		}
	case DatabaseDriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database URL is required when using postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Auth == nil {
		return fmt.Errorf("missing auth config")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth secret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token TTL must be positive")
	}

	if c.LLM == nil {
		return fmt.Errorf("missing llm config")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm API key is required")
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("llm base URL is required")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}

	if c.RateLimit != nil && c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerMinute <= 0 {
			return fmt.Errorf("rate limit requests per minute must be positive")
		}
		if c.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate limit burst must be positive")
		}
	}

	if c.Email != nil && c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required when email is enabled")
		}
		if c.Email.FromEmail == "" {
			return fmt.Errorf("from email is required when email is enabled")
		}
	}

	return nil
}

// sanitizeConfig sanitizes the configuration values.
func sanitizeConfig(c *Config) {
	if c == nil {
		return
	}

	c.Listen = strings.TrimSpace(c.Listen)

	if c.Database != nil {
		c.Database.URL = strings.TrimSpace(c.Database.URL)
		// a connection string always wins over the sqlite default
		if c.Database.URL != "" {
			c.Database.Driver = DatabaseDriverPostgres
		}
		c.Database.Driver = DatabaseDriver(strings.ToLower(string(c.Database.Driver)))
	}

	if c.LLM != nil {
		c.LLM.BaseURL = urlSanitize(c.LLM.BaseURL)
	}
}

func urlSanitize(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}
