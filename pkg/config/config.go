package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	GRPCPort int `yaml:"grpc_port"`
	HTTPPort int `yaml:"http_port"`

	Cart     CartConfig     `yaml:"cart"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Retry    RetryConfig    `yaml:"retry"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Checkout CheckoutConfig `yaml:"checkout"`
}

// CartConfig selects where carts are persisted between sessions.
type CartConfig struct {
	Driver     string `yaml:"driver"` // memory|file|redis|sqlite|postgres|s3
	Key        string `yaml:"key"`
	FileRoot   string `yaml:"file_root"`
	RedisAddr  string `yaml:"redis_addr"`
	SQLitePath string `yaml:"sqlite_path"`

	PostgresDSN string `yaml:"postgres_dsn"`

	S3Bucket    string `yaml:"s3_bucket"`
	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`

	S3AccessKeyID     string `yaml:"s3_access_key_id"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key"`

	// Sessions untouched for IdleTTL are dropped from memory; their carts
	// stay in storage and hydrate again on the next request.
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type CatalogConfig struct {
	Driver      string `yaml:"driver"` // memory|postgres
	PostgresDSN string `yaml:"postgres_dsn"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Step        time.Duration `yaml:"step"`
}

type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// CheckoutConfig points at the payment, shipping and tax collaborators.
// Empty URLs leave the collaborator unavailable.
type CheckoutConfig struct {
	PaymentURL  string        `yaml:"payment_url"`
	ShippingURL string        `yaml:"shipping_url"`
	TaxURL      string        `yaml:"tax_url"`
	Timeout     time.Duration `yaml:"timeout"`
	ShipFrom    AddressConfig `yaml:"ship_from"`
}

type AddressConfig struct {
	Name    string `yaml:"name"`
	Street1 string `yaml:"street1"`
	Street2 string `yaml:"street2"`
	City    string `yaml:"city"`
	State   string `yaml:"state"`
	Zip     string `yaml:"zip"`
	Country string `yaml:"country"`
}

func Default() Config {
	return Config{
		AppEnv:   "dev",
		LogLevel: "info",
		HTTPPort: 8080,
		GRPCPort: 8081,
		Cart: CartConfig{
			Driver:     "file",
			Key:        "cart",
			FileRoot:   "./cartdata",
			RedisAddr:  "localhost:6379",
			SQLitePath: "storefront.db",
			S3Region:   "us-east-1",

			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Catalog: CatalogConfig{Driver: "memory"},
		Retry:   RetryConfig{MaxAttempts: 3, Step: time.Second},
		Tracing: TracingConfig{Endpoint: "localhost:4317"},
		Checkout: CheckoutConfig{
			Timeout: 10 * time.Second,
			ShipFrom: AddressConfig{
				Name:    "Storefront",
				Street1: "10603 Southdown Trace Trl",
				Street2: "228",
				City:    "Houston",
				State:   "TX",
				Zip:     "77034",
				Country: "US",
			},
		},
	}
}

// Load starts from Default, applies the YAML file at path when path is
// non-empty, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.HTTPPort = getEnvInt("HTTP_PORT", c.HTTPPort)
	c.GRPCPort = getEnvInt("GRPC_PORT", c.GRPCPort)

	c.Cart.Driver = getEnv("CART_STORAGE_DRIVER", c.Cart.Driver)
	c.Cart.Key = getEnv("CART_STORAGE_KEY", c.Cart.Key)
	c.Cart.FileRoot = getEnv("CART_FILE_ROOT", c.Cart.FileRoot)
	c.Cart.RedisAddr = getEnv("REDIS_ADDR", c.Cart.RedisAddr)
	c.Cart.SQLitePath = getEnv("SQLITE_PATH", c.Cart.SQLitePath)
	c.Cart.PostgresDSN = getEnv("POSTGRES_DSN", c.Cart.PostgresDSN)
	c.Cart.S3Bucket = getEnv("S3_BUCKET", c.Cart.S3Bucket)
	c.Cart.S3Region = getEnv("S3_REGION", c.Cart.S3Region)
	c.Cart.S3Endpoint = getEnv("S3_ENDPOINT", c.Cart.S3Endpoint)
	c.Cart.S3PathStyle = getEnvBool("S3_PATH_STYLE", c.Cart.S3PathStyle)
	c.Cart.S3AccessKeyID = getEnv("S3_ACCESS_KEY_ID", c.Cart.S3AccessKeyID)
	c.Cart.S3SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", c.Cart.S3SecretAccessKey)
	c.Cart.IdleTTL = getEnvDuration("CART_IDLE_TTL", c.Cart.IdleTTL)
	c.Cart.SweepInterval = getEnvDuration("CART_SWEEP_INTERVAL", c.Cart.SweepInterval)

	c.Catalog.Driver = getEnv("CATALOG_DRIVER", c.Catalog.Driver)
	c.Catalog.PostgresDSN = getEnv("CATALOG_POSTGRES_DSN", getEnv("POSTGRES_DSN", c.Catalog.PostgresDSN))

	c.Retry.MaxAttempts = getEnvInt("RETRY_MAX_ATTEMPTS", c.Retry.MaxAttempts)
	c.Retry.Step = getEnvDuration("RETRY_STEP", c.Retry.Step)

	c.Tracing.Enabled = getEnvBool("TRACING_ENABLED", c.Tracing.Enabled)
	c.Tracing.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Tracing.Endpoint)

	c.Checkout.PaymentURL = getEnv("PAYMENT_GATEWAY_URL", c.Checkout.PaymentURL)
	c.Checkout.ShippingURL = getEnv("SHIPPING_SERVICE_URL", c.Checkout.ShippingURL)
	c.Checkout.TaxURL = getEnv("TAX_SERVICE_URL", c.Checkout.TaxURL)
	c.Checkout.Timeout = getEnvDuration("CHECKOUT_TIMEOUT", c.Checkout.Timeout)
	c.Checkout.ShipFrom.Name = getEnv("SHIP_FROM_NAME", c.Checkout.ShipFrom.Name)
	c.Checkout.ShipFrom.Street1 = getEnv("SHIP_FROM_STREET1", c.Checkout.ShipFrom.Street1)
	c.Checkout.ShipFrom.Street2 = getEnv("SHIP_FROM_STREET2", c.Checkout.ShipFrom.Street2)
	c.Checkout.ShipFrom.City = getEnv("SHIP_FROM_CITY", c.Checkout.ShipFrom.City)
	c.Checkout.ShipFrom.State = getEnv("SHIP_FROM_STATE", c.Checkout.ShipFrom.State)
	c.Checkout.ShipFrom.Zip = getEnv("SHIP_FROM_ZIP", c.Checkout.ShipFrom.Zip)
	c.Checkout.ShipFrom.Country = getEnv("SHIP_FROM_COUNTRY", c.Checkout.ShipFrom.Country)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
