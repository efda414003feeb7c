package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const EnvPrefix = "SHOPDESK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Checkout CheckoutConfig
	Seed     SeedConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validateDriver(); err != nil {
		return nil, err
	}
	if _, err := cfg.Checkout.TaxRate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPDESK_APP_ENV" default:"dev"`
	Port         string `envconfig:"SHOPDESK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SHOPDESK_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"SHOPDESK_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"SHOPDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"SHOPDESK_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"SHOPDESK_DB_DSN" default:"file:shopdesk?mode=memory&cache=shared"`

	MaxOpenConns    int           `envconfig:"SHOPDESK_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SHOPDESK_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) validateDriver() error {
	switch db.Driver {
	case DriverSQLite, DriverPostgres:
		return nil
	}
	return fmt.Errorf("unsupported db driver %q", db.Driver)
}

// CheckoutConfig holds POS policy constants.
type CheckoutConfig struct {
	TaxRatePercent string        `envconfig:"SHOPDESK_CHECKOUT_TAX_RATE_PERCENT" default:"18"`
	ToastTTL       time.Duration `envconfig:"SHOPDESK_CHECKOUT_TOAST_TTL" default:"3s"`
	Salesman       string        `envconfig:"SHOPDESK_CHECKOUT_SALESMAN" default:"Nayyar"`
}

// TaxRate returns the flat tax rate as a fraction (18 -> 0.18).
func (c CheckoutConfig) TaxRate() (decimal.Decimal, error) {
	pct, err := decimal.NewFromString(strings.TrimSpace(c.TaxRatePercent))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid tax rate percent %q: %w", c.TaxRatePercent, err)
	}
	if pct.IsNegative() {
		return decimal.Zero, fmt.Errorf("tax rate percent must be non-negative, got %s", pct)
	}
	return pct.Div(decimal.NewFromInt(100)), nil
}

type SeedConfig struct {
	Demo bool `envconfig:"SHOPDESK_SEED_DEMO" default:"true"`
}
