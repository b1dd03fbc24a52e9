package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Sources  SourcesConfig
	Holidays HolidaysConfig
	Pipeline PipelineConfig
	Redis    RedisConfig
}

var validate = validator.New()

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"OLIST_APP_ENV" required:"true"`
	Port         string `envconfig:"OLIST_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"OLIST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"OLIST_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"OLIST_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"OLIST_DB_DSN"`
	Driver string `envconfig:"OLIST_DB_DRIVER" default:"sqlite" validate:"oneof=sqlite postgres"`

	LegacyHost     string `envconfig:"OLIST_DB_HOST"`
	LegacyPort     int    `envconfig:"OLIST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"OLIST_DB_USER"`
	LegacyPassword string `envconfig:"OLIST_DB_PASSWORD"`
	LegacyName     string `envconfig:"OLIST_DB_NAME"`
	LegacySSLMode  string `envconfig:"OLIST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OLIST_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"OLIST_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"OLIST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OLIST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the relational source is an embedded sqlite file.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

// GooseDialect returns the goose dialect name for the configured driver.
func (db DBConfig) GooseDialect() string {
	if db.IsSQLite() {
		return "sqlite3"
	}
	return "postgres"
}

// SourcesConfig selects where the raw tables come from. Tables maps a csv file
// name (relative to CSVDir) to its logical table name.
type SourcesConfig struct {
	Kind   string            `envconfig:"OLIST_SOURCE_KIND" default:"csv" validate:"oneof=csv db"`
	CSVDir string            `envconfig:"OLIST_CSV_DIR" default:"dataset"`
	Tables map[string]string `envconfig:"OLIST_CSV_TABLES" default:"olist_customers_dataset.csv:olist_customers,olist_orders_dataset.csv:olist_orders,olist_order_items_dataset.csv:olist_order_items,olist_products_dataset.csv:olist_products,product_category_name_translation.csv:product_category_name_translation"`
}

func (s SourcesConfig) IsCSV() bool {
	return strings.EqualFold(s.Kind, SourceKindCSV)
}

type HolidaysConfig struct {
	BaseURL string        `envconfig:"OLIST_HOLIDAYS_URL" default:"https://date.nager.at/api/v3/PublicHolidays" validate:"required,url"`
	Year    string        `envconfig:"OLIST_HOLIDAYS_YEAR" default:"2017" validate:"len=4,numeric"`
	Country string        `envconfig:"OLIST_HOLIDAYS_COUNTRY" default:"BR" validate:"len=2,alpha"`
	Timeout time.Duration `envconfig:"OLIST_HOLIDAYS_TIMEOUT" default:"10s" validate:"gt=0"`
}

type PipelineConfig struct {
	Parallel       bool   `envconfig:"OLIST_PIPELINE_PARALLEL" default:"false"`
	LoadWarehouse  bool   `envconfig:"OLIST_LOAD_WAREHOUSE" default:"false"`
	AutoMigrate    bool   `envconfig:"OLIST_AUTO_MIGRATE" default:"false"`
	OutputDir      string `envconfig:"OLIST_OUTPUT_DIR"`
	OutputWorkbook string `envconfig:"OLIST_OUTPUT_WORKBOOK"`
	MetricsFile    string `envconfig:"OLIST_METRICS_FILE"`

	// RefreshInterval reruns the pipeline behind the API; zero runs it once.
	RefreshInterval time.Duration `envconfig:"OLIST_REFRESH_INTERVAL" default:"0s"`
}

// RedisConfig is optional. When set, replicas coordinate warehouse loads
// through a redis lock.
type RedisConfig struct {
	URL          string        `envconfig:"OLIST_REDIS_URL"`
	Address      string        `envconfig:"OLIST_REDIS_ADDR"`
	Password     string        `envconfig:"OLIST_REDIS_PASSWORD"`
	DB           int           `envconfig:"OLIST_REDIS_DB" default:"0" validate:"gte=0"`
	PoolSize     int           `envconfig:"OLIST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OLIST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OLIST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OLIST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OLIST_REDIS_WRITE_TIMEOUT" default:"5s"`
	LockTTL      time.Duration `envconfig:"OLIST_REDIS_LOCK_TTL" default:"15m" validate:"gt=0"`
}

func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// NeedsDB reports whether a run must open the relational store.
func (c *Config) NeedsDB() bool {
	return !c.Sources.IsCSV() || c.Pipeline.LoadWarehouse
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
