package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/brokerdesk/brokerdesk/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration is the full application configuration, loaded from
// config files and BROKERDESK_* environment variables.
type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment"`
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Email      EmailConfig      `mapstructure:"email"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	StepUp     StepUpConfig     `mapstructure:"stepup"`
	Enrollment EnrollmentConfig `mapstructure:"enrollment"`
	Encryption EncryptionConfig `mapstructure:"encryption"`
}

type EncryptionConfig struct {
	// Key is the hex-encoded 32-byte AES key protecting broker
	// credentials at rest.
	Key string `mapstructure:"key"`
}

type DeploymentConfig struct {
	Mode types.DeploymentMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type AuthConfig struct {
	Provider types.AuthProvider `mapstructure:"provider" validate:"required"`
	Secret   string             `mapstructure:"secret"`
	Supabase SupabaseConfig     `mapstructure:"supabase"`
}

type SupabaseConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ServiceKey string `mapstructure:"service_key"`
	// RecoveryRedirectURL is where the recovery email sends the user
	// to complete the password reset. Empty falls back to the Supabase
	// project's site URL.
	RecoveryRedirectURL string `mapstructure:"recovery_redirect_url"`
}

type PostgresConfig struct {
	Host                  string `mapstructure:"host" validate:"required"`
	Port                  int    `mapstructure:"port" validate:"required"`
	User                  string `mapstructure:"user" validate:"required"`
	Password              string `mapstructure:"password"`
	DBName                string `mapstructure:"dbname" validate:"required"`
	SSLMode               string `mapstructure:"sslmode"`
	MaxOpenConns          int    `mapstructure:"max_open_conns"`
	MaxIdleConns          int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int   `mapstructure:"conn_max_lifetime_minutes"`
}

// DSN builds the lib/pq connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	UseTLS   bool   `mapstructure:"use_tls"`
	PoolSize int    `mapstructure:"pool_size"`
}

type CacheConfig struct {
	Type       string `mapstructure:"type"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// TTL returns the default cache TTL.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

type LoggingConfig struct {
	Level          types.LogLevel `mapstructure:"level"`
	FluentdEnabled bool           `mapstructure:"fluentd_enabled"`
	FluentdHost    string         `mapstructure:"fluentd_host"`
	FluentdPort    int            `mapstructure:"fluentd_port"`
}

type StripeConfig struct {
	SecretKey  string `mapstructure:"secret_key"`
	SuccessURL string `mapstructure:"success_url"`
	CancelURL  string `mapstructure:"cancel_url"`
}

type EmailConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type StepUpConfig struct {
	// WindowMinutes is how long an elevated grant stays valid.
	WindowMinutes int `mapstructure:"window_minutes"`
}

// Window returns the step-up elevation window, defaulting to 5 minutes.
func (c StepUpConfig) Window() time.Duration {
	if c.WindowMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.WindowMinutes) * time.Minute
}

type EnrollmentConfig struct {
	// SessionTTLMinutes is how long an abandoned wizard session is kept.
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes"`
	// ScrollThresholdPx is how close to the agreement end counts as read.
	ScrollThresholdPx int `mapstructure:"scroll_threshold_px"`
}

// SessionTTL returns the wizard session TTL, defaulting to 30 minutes.
func (c EnrollmentConfig) SessionTTL() time.Duration {
	if c.SessionTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// NewConfig loads configuration from ./config/config.yaml (optional),
// .env and environment variables.
func NewConfig() (*Configuration, error) {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BROKERDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeAPI))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("auth.provider", string(types.AuthProviderLocal))
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "brokerdesk")
	v.SetDefault("postgres.dbname", "brokerdesk")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 30)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("cache.type", "inmemory")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("stepup.window_minutes", 5)
	v.SetDefault("enrollment.session_ttl_minutes", 30)
	v.SetDefault("enrollment.scroll_threshold_px", 20)
}

// Validate checks required configuration invariants.
func (c *Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Auth.Provider == types.AuthProviderSupabase {
		if c.Auth.Supabase.BaseURL == "" || c.Auth.Supabase.ServiceKey == "" {
			return fmt.Errorf("supabase auth requires base_url and service_key")
		}
	}
	return nil
}

// GetDefaultConfig returns a usable configuration for tests and
// scripts without reading any files.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Auth: AuthConfig{
			Provider: types.AuthProviderLocal,
			Secret:   "test-secret",
		},
		Postgres: PostgresConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "brokerdesk",
			DBName:  "brokerdesk",
			SSLMode: "disable",
		},
		Cache:      CacheConfig{Type: "inmemory"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		StepUp:     StepUpConfig{WindowMinutes: 5},
		Enrollment: EnrollmentConfig{SessionTTLMinutes: 30, ScrollThresholdPx: 20},
		// 32 zero bytes, hex encoded; tests only
		Encryption: EncryptionConfig{Key: "0000000000000000000000000000000000000000000000000000000000000000"},
	}
}
