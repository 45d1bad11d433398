package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bromosky/aventra/internal/domain"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when CONFIG_PATH is not set. A missing default file is not an error.
const DefaultPath = "config.yaml"

type Config struct {
	App     AppConfig     `yaml:"app"`
	HTTP    HTTPConfig    `yaml:"http"`
	Store   StoreConfig   `yaml:"store"`
	SMTP    SMTPConfig    `yaml:"smtp"`
	Admin   AdminConfig   `yaml:"admin"`
	Booking BookingConfig `yaml:"booking"`
	Upload  UploadConfig  `yaml:"upload"`
	Redis   RedisConfig   `yaml:"redis"`
	Kafka   KafkaConfig   `yaml:"kafka"`
}

type AppConfig struct {
	Brand       string `yaml:"brand"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	Timezone    string `yaml:"timezone"`
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Location falls back to the server's local zone when the configured name cannot be loaded.
func (a AppConfig) Location() *time.Location {
	if a.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type HTTPConfig struct {
	Address     string   `yaml:"address"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// StoreConfig points at the spreadsheet web app that owns booking records.
type StoreConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (s StoreConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type SMTPConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Email          string `yaml:"email"`
	AppPassword    string `yaml:"app_password"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (s SMTPConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type AdminConfig struct {
	Password          string `yaml:"password"`
	Email             string `yaml:"email"`
	SessionSecret     string `yaml:"session_secret"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
	SecureCookie      bool   `yaml:"secure_cookie"`
}

func (a AdminConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

type BookingConfig struct {
	InvoicePrefix   string          `yaml:"invoice_prefix"`
	DepositFraction float64         `yaml:"deposit_fraction"`
	Packages        []PackageConfig `yaml:"packages"`
}

type PackageConfig struct {
	Name  string `yaml:"name"`
	Mode  string `yaml:"mode"`
	Price int64  `yaml:"price"`
	Max   int    `yaml:"max"`
}

// Catalog converts the configured packages into a validated catalog.
func (b BookingConfig) Catalog() (*domain.Catalog, error) {
	pkgs := make([]domain.Package, 0, len(b.Packages))
	for _, p := range b.Packages {
		mode, err := domain.ParsePricingMode(p.Mode)
		if err != nil {
			return nil, fmt.Errorf("package %q: %w", p.Name, err)
		}
		pkgs = append(pkgs, domain.Package{
			Name:         strings.TrimSpace(p.Name),
			Mode:         mode,
			Price:        p.Price,
			MaxPartySize: p.Max,
		})
	}
	return domain.NewCatalog(pkgs)
}

type UploadConfig struct {
	Dir       string `yaml:"dir"`
	URLPrefix string `yaml:"url_prefix"`
	MaxBytes  int64  `yaml:"max_bytes"`
	MaxWidth  int    `yaml:"max_width"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	GroupID            string   `yaml:"group_id"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.BookingEventsTopic != ""
}

// Default returns the configuration used when neither a file nor the environment say otherwise.
func Default() Config {
	pkgs := domain.DefaultPackages()
	packages := make([]PackageConfig, 0, len(pkgs))
	for _, p := range pkgs {
		packages = append(packages, PackageConfig{Name: p.Name, Mode: string(p.Mode), Price: p.Price, Max: p.MaxPartySize})
	}

	return Config{
		App: AppConfig{
			Brand:       "Bromo Sky Aventra",
			Environment: "development",
			LogLevel:    "info",
			Timezone:    "Asia/Jakarta",
		},
		HTTP:  HTTPConfig{Address: ":5000"},
		Store: StoreConfig{TimeoutSeconds: 20},
		SMTP: SMTPConfig{
			Host:           "smtp.gmail.com",
			Port:           587,
			TimeoutSeconds: 15,
		},
		Admin: AdminConfig{
			Password:          "admin123",
			SessionTTLMinutes: 12 * 60,
		},
		Booking: BookingConfig{
			InvoicePrefix:   "BSM",
			DepositFraction: 0.3,
			Packages:        packages,
		},
		Upload: UploadConfig{
			Dir:       "static/uploads/bukti",
			URLPrefix: "/static/uploads/bukti",
			MaxBytes:  5 << 20,
			MaxWidth:  1600,
		},
		Kafka: KafkaConfig{
			BookingEventsTopic: "booking_events",
			GroupID:            "booking-notifier",
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Booking.DepositFraction < 0 || c.Booking.DepositFraction > 1 {
		return fmt.Errorf("deposit fraction must be between 0 and 1, got %v", c.Booking.DepositFraction)
	}
	if strings.TrimSpace(c.Booking.InvoicePrefix) == "" {
		return errors.New("invoice prefix is required")
	}
	if _, err := c.Booking.Catalog(); err != nil {
		return fmt.Errorf("invalid package catalog: %w", err)
	}
	if c.Store.TimeoutSeconds <= 0 {
		return errors.New("store timeout must be positive")
	}
	if c.SMTP.Port <= 0 {
		return errors.New("smtp port must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Store.BaseURL, "GAS_WEBAPP_URL")
	setString(&cfg.SMTP.Email, "SMTP_EMAIL")
	setString(&cfg.SMTP.AppPassword, "SMTP_APP_PASSWORD")
	setString(&cfg.SMTP.Host, "SMTP_HOST")
	setString(&cfg.Admin.Password, "ADMIN_PASSWORD")
	setString(&cfg.Admin.Email, "ADMIN_EMAIL")
	setString(&cfg.Admin.SessionSecret, "SESSION_SECRET")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.App.Environment, "APP_ENV")
	setString(&cfg.App.LogLevel, "LOG_LEVEL")
	setString(&cfg.App.Timezone, "APP_TIMEZONE")

	if v := getEnv("PORT"); v != "" {
		cfg.HTTP.Address = ":" + strings.TrimPrefix(v, ":")
	}
	if v := getEnv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		cfg.SMTP.Port = port
	}
	if v := getEnv("DP_PERCENT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DP_PERCENT: %w", err)
		}
		cfg.Booking.DepositFraction = f
	}
	if v := getEnv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	return nil
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := getEnv(key); v != "" {
		*dst = v
	}
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
