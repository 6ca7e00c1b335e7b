package config

import (
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Logger    LoggerConfig
	Store     StoreConfig
	Scanner   ScannerConfig
	Register  RegisterConfig
	Terminal  TerminalConfig
	Outbox    OutboxConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Driver   string // postgres or sqlite
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
	Path     string // sqlite file, or ":memory:"
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type LoggerConfig struct {
	Level string
}

// StoreConfig holds the pricing constants of the shop
type StoreConfig struct {
	TaxRate  decimal.Decimal
	CardFee  decimal.Decimal
	Currency string
}

type ScannerConfig struct {
	Threshold time.Duration
}

// RegisterConfig controls how register sessions reach the back office.
// An empty APIURL wires the in-process services directly.
type RegisterConfig struct {
	APIURL         string
	APIToken       string
	AutofillTender bool
	RequestTimeout time.Duration
}

type TerminalConfig struct {
	Type       string // http or null
	Address    string
	Processor  string
	TerminalID string
	Timeout    time.Duration
}

type OutboxConfig struct {
	RetryInterval time.Duration
	MaxAttempts   int
	BatchSize     int
	PerSecond     float64
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "tillpoint")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "tillpoint")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("DB_PATH", "tillpoint.db")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORE_TAX_RATE", "0.13")
	viper.SetDefault("STORE_CARD_FEE", "0.50")
	viper.SetDefault("STORE_CURRENCY", "CAD")
	viper.SetDefault("SCANNER_THRESHOLD_MS", 50)
	viper.SetDefault("REGISTER_API_URL", "")
	viper.SetDefault("REGISTER_API_TOKEN", "")
	viper.SetDefault("REGISTER_AUTOFILL_TENDER", true)
	viper.SetDefault("REGISTER_REQUEST_TIMEOUT_SECONDS", 10)
	viper.SetDefault("TERMINAL_TYPE", "null")
	viper.SetDefault("TERMINAL_ADDRESS", "")
	viper.SetDefault("TERMINAL_PROCESSOR", "moneris")
	viper.SetDefault("TERMINAL_ID", "")
	viper.SetDefault("TERMINAL_TIMEOUT_SECONDS", 90)
	viper.SetDefault("OUTBOX_RETRY_INTERVAL_SECONDS", 30)
	viper.SetDefault("OUTBOX_MAX_ATTEMPTS", 10)
	viper.SetDefault("OUTBOX_BATCH_SIZE", 20)
	viper.SetDefault("OUTBOX_PER_SECOND", 5)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:   viper.GetString("DB_DRIVER"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
			Path:     viper.GetString("DB_PATH"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Store: StoreConfig{
			TaxRate:  decimalOr(viper.GetString("STORE_TAX_RATE"), "0.13"),
			CardFee:  decimalOr(viper.GetString("STORE_CARD_FEE"), "0.50"),
			Currency: viper.GetString("STORE_CURRENCY"),
		},
		Scanner: ScannerConfig{
			Threshold: time.Duration(viper.GetInt("SCANNER_THRESHOLD_MS")) * time.Millisecond,
		},
		Register: RegisterConfig{
			APIURL:         viper.GetString("REGISTER_API_URL"),
			APIToken:       viper.GetString("REGISTER_API_TOKEN"),
			AutofillTender: viper.GetBool("REGISTER_AUTOFILL_TENDER"),
			RequestTimeout: time.Duration(viper.GetInt("REGISTER_REQUEST_TIMEOUT_SECONDS")) * time.Second,
		},
		Terminal: TerminalConfig{
			Type:       viper.GetString("TERMINAL_TYPE"),
			Address:    viper.GetString("TERMINAL_ADDRESS"),
			Processor:  viper.GetString("TERMINAL_PROCESSOR"),
			TerminalID: viper.GetString("TERMINAL_ID"),
			Timeout:    time.Duration(viper.GetInt("TERMINAL_TIMEOUT_SECONDS")) * time.Second,
		},
		Outbox: OutboxConfig{
			RetryInterval: time.Duration(viper.GetInt("OUTBOX_RETRY_INTERVAL_SECONDS")) * time.Second,
			MaxAttempts:   viper.GetInt("OUTBOX_MAX_ATTEMPTS"),
			BatchSize:     viper.GetInt("OUTBOX_BATCH_SIZE"),
			PerSecond:     viper.GetFloat64("OUTBOX_PER_SECOND"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

func decimalOr(s, fallback string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		log.Printf("Warning: invalid amount %q in config, using %s", s, fallback)
		return decimal.RequireFromString(fallback)
	}
	return d
}
