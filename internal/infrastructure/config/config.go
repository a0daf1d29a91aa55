package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Idempotency store backends
const (
	IdempotencyBackendMemory = "memory"
	IdempotencyBackendRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Swagger     SwaggerConfig
	Telemetry   TelemetryConfig
	Webhooks    WebhooksConfig
	Idempotency IdempotencyConfig
	Inventory   InventoryConfig
	Storefront  StorefrontConfig
	Archive     ArchiveConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file path or ":memory:"
	AutoMigrate     bool   // sqlite only; postgres uses cmd/migrate
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// SwaggerConfig holds the API documentation endpoint configuration
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // IPs or CIDRs; empty allows all
}

// TelemetryConfig holds OpenTelemetry and profiling configuration
type TelemetryConfig struct {
	Enabled           bool    // Traces
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool // Non-TLS collector connection (development only)
	DBTraceEnabled    bool // otelgorm plugin
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool // otelzap bridge
	ProfilingEnabled  bool
	PyroscopeServer   string
}

// WebhooksConfig holds inbound webhook settings
type WebhooksConfig struct {
	InventoryAdjustmentSecret string
	SalesSecret               string
	PurchaseSecret            string
	TransferSecret            string
	// CounterpartCustomerID is the inventory customer standing for the storefront channel
	CounterpartCustomerID string
	SalesCustomerFilter   string // exclude, include
	// TargetWarehouseID limits adjustments to one warehouse; empty applies all
	TargetWarehouseID string
	MaxPayloadSize    int64
}

// IdempotencyConfig holds webhook delivery deduplication settings
type IdempotencyConfig struct {
	Enabled   bool
	Backend   string // memory, redis
	TTL       time.Duration
	KeyPrefix string
}

// InventoryConfig holds the inventory platform OAuth client and API settings
type InventoryConfig struct {
	ClientID     string
	ClientSecret string
	// StateSecret signs the OAuth state parameter; defaults to ClientSecret
	StateSecret   string
	RedirectURI   string
	DefaultScopes []string
	// AccountsURLTemplate and APIURLTemplate take the store location as %s
	AccountsURLTemplate string
	APIURLTemplate      string
	Timeout             time.Duration
	StateTTL            time.Duration
}

// StorefrontConfig holds storefront API settings
type StorefrontConfig struct {
	APIBaseURL  string
	AccessToken string
	Timeout     time.Duration
}

// ArchiveConfig holds S3 settings for raw webhook payload archiving
type ArchiveConfig struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string // custom endpoint for MinIO/LocalStack
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	UsePathStyle    bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SYNC_ prefix (e.g., SYNC_WEBHOOKS_SALES_SECRET)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			Path:            v.GetString("database.path"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeServer:   v.GetString("telemetry.pyroscope_server"),
		},
		Webhooks: WebhooksConfig{
			InventoryAdjustmentSecret: v.GetString("webhooks.inventory_adjustment_secret"),
			SalesSecret:               v.GetString("webhooks.sales_secret"),
			PurchaseSecret:            v.GetString("webhooks.purchase_secret"),
			TransferSecret:            v.GetString("webhooks.transfer_secret"),
			CounterpartCustomerID:     v.GetString("webhooks.counterpart_customer_id"),
			SalesCustomerFilter:       v.GetString("webhooks.sales_customer_filter"),
			TargetWarehouseID:         v.GetString("webhooks.target_warehouse_id"),
			MaxPayloadSize:            v.GetInt64("webhooks.max_payload_size"),
		},
		Idempotency: IdempotencyConfig{
			Enabled:   v.GetBool("idempotency.enabled"),
			Backend:   v.GetString("idempotency.backend"),
			TTL:       v.GetDuration("idempotency.ttl"),
			KeyPrefix: v.GetString("idempotency.key_prefix"),
		},
		Inventory: InventoryConfig{
			ClientID:            v.GetString("inventory.client_id"),
			ClientSecret:        v.GetString("inventory.client_secret"),
			StateSecret:         v.GetString("inventory.state_secret"),
			RedirectURI:         v.GetString("inventory.redirect_uri"),
			DefaultScopes:       v.GetStringSlice("inventory.default_scopes"),
			AccountsURLTemplate: v.GetString("inventory.accounts_url_template"),
			APIURLTemplate:      v.GetString("inventory.api_url_template"),
			Timeout:             v.GetDuration("inventory.timeout"),
			StateTTL:            v.GetDuration("inventory.state_ttl"),
		},
		Storefront: StorefrontConfig{
			APIBaseURL:  v.GetString("storefront.api_base_url"),
			AccessToken: v.GetString("storefront.access_token"),
			Timeout:     v.GetDuration("storefront.timeout"),
		},
		Archive: ArchiveConfig{
			Enabled:         v.GetBool("archive.enabled"),
			Bucket:          v.GetString("archive.bucket"),
			Region:          v.GetString("archive.region"),
			Endpoint:        v.GetString("archive.endpoint"),
			AccessKeyID:     v.GetString("archive.access_key_id"),
			SecretAccessKey: v.GetString("archive.secret_access_key"),
			Prefix:          v.GetString("archive.prefix"),
			UsePathStyle:    v.GetBool("archive.use_path_style"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storesync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storesync"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "storesync.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 10
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20
	}

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 && cfg.App.Env != "production" {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}

	if cfg.Webhooks.SalesCustomerFilter == "" {
		cfg.Webhooks.SalesCustomerFilter = "exclude"
	}
	if cfg.Webhooks.MaxPayloadSize == 0 {
		cfg.Webhooks.MaxPayloadSize = 1 << 20
	}

	if cfg.Idempotency.Backend == "" {
		cfg.Idempotency.Backend = IdempotencyBackendMemory
	}
	if cfg.Idempotency.TTL == 0 {
		cfg.Idempotency.TTL = 24 * time.Hour
	}
	if cfg.Idempotency.KeyPrefix == "" {
		cfg.Idempotency.KeyPrefix = "storesync:delivery:"
	}

	if len(cfg.Inventory.DefaultScopes) == 0 {
		cfg.Inventory.DefaultScopes = []string{"ZohoInventory.FullAccess.all"}
	}
	if cfg.Inventory.AccountsURLTemplate == "" {
		cfg.Inventory.AccountsURLTemplate = "https://accounts.zoho.%s"
	}
	if cfg.Inventory.APIURLTemplate == "" {
		cfg.Inventory.APIURLTemplate = "https://www.zohoapis.%s/inventory/v1"
	}
	if cfg.Inventory.Timeout == 0 {
		cfg.Inventory.Timeout = 30 * time.Second
	}
	if cfg.Inventory.StateSecret == "" {
		cfg.Inventory.StateSecret = cfg.Inventory.ClientSecret
	}
	if cfg.Inventory.StateTTL == 0 {
		cfg.Inventory.StateTTL = 10 * time.Minute
	}

	if cfg.Storefront.APIBaseURL == "" {
		cfg.Storefront.APIBaseURL = "https://app.ecwid.com/api/v3"
	}
	if cfg.Storefront.Timeout == 0 {
		cfg.Storefront.Timeout = 30 * time.Second
	}

	if cfg.Archive.Prefix == "" {
		cfg.Archive.Prefix = "webhooks"
	}
	if cfg.Archive.Region == "" {
		cfg.Archive.Region = "us-east-1"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverSQLite {
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Webhooks.SalesCustomerFilter != "exclude" && c.Webhooks.SalesCustomerFilter != "include" {
		return fmt.Errorf("webhooks.sales_customer_filter must be 'exclude' or 'include', got %q", c.Webhooks.SalesCustomerFilter)
	}
	if c.Idempotency.Backend != IdempotencyBackendMemory && c.Idempotency.Backend != IdempotencyBackendRedis {
		return fmt.Errorf("idempotency.backend must be %q or %q, got %q", IdempotencyBackendMemory, IdempotencyBackendRedis, c.Idempotency.Backend)
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		return fmt.Errorf("archive.bucket is required when archive.enabled is true")
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		if c.Database.Driver == DriverPostgres {
			if c.Database.Password == "" {
				return fmt.Errorf("database.password is required in production")
			}
			if c.Database.SSLMode == "disable" {
				return fmt.Errorf("database.sslmode cannot be 'disable' in production")
			}
		}
		for name, secret := range map[string]string{
			"webhooks.inventory_adjustment_secret": c.Webhooks.InventoryAdjustmentSecret,
			"webhooks.sales_secret":                c.Webhooks.SalesSecret,
			"webhooks.purchase_secret":             c.Webhooks.PurchaseSecret,
			"webhooks.transfer_secret":             c.Webhooks.TransferSecret,
			"inventory.client_id":                  c.Inventory.ClientID,
			"inventory.client_secret":              c.Inventory.ClientSecret,
			"storefront.access_token":              c.Storefront.AccessToken,
		} {
			if secret == "" {
				return fmt.Errorf("%s is required in production", name)
			}
		}
		if c.Swagger.Enabled && len(c.Swagger.AllowedIPs) == 0 {
			return fmt.Errorf("swagger.allowed_ips is required when swagger.enabled is true in production")
		}
	}

	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
