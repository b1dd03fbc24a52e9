package config

const (
	EnvPrefix = "OLIST"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	SourceKindCSV = "csv"
	SourceKindDB  = "db"

	defaultSQLiteDSN = "olist.db"
)

const (
	EnvAppEnv       = "OLIST_APP_ENV"
	EnvPort         = "OLIST_APP_PORT"
	EnvLogLevel     = "OLIST_LOG_LEVEL"
	EnvLogWarnStack = "OLIST_LOG_WARN_STACK"
	EnvCORSOrigins  = "OLIST_CORS_ORIGINS"

	EnvDBDSN      = "OLIST_DB_DSN"
	EnvDBDriver   = "OLIST_DB_DRIVER"
	EnvDBHost     = "OLIST_DB_HOST"
	EnvDBPort     = "OLIST_DB_PORT"
	EnvDBUser     = "OLIST_DB_USER"
	EnvDBPassword = "OLIST_DB_PASSWORD"
	EnvDBName     = "OLIST_DB_NAME"
	EnvDBSSLMode  = "OLIST_DB_SSLMODE"

	EnvSourceKind = "OLIST_SOURCE_KIND"
	EnvCSVDir     = "OLIST_CSV_DIR"
	EnvCSVTables  = "OLIST_CSV_TABLES"

	EnvHolidaysURL     = "OLIST_HOLIDAYS_URL"
	EnvHolidaysYear    = "OLIST_HOLIDAYS_YEAR"
	EnvHolidaysCountry = "OLIST_HOLIDAYS_COUNTRY"
	EnvHolidaysTimeout = "OLIST_HOLIDAYS_TIMEOUT"

	EnvPipelineParallel = "OLIST_PIPELINE_PARALLEL"
	EnvLoadWarehouse    = "OLIST_LOAD_WAREHOUSE"
	EnvAutoMigrate      = "OLIST_AUTO_MIGRATE"
	EnvOutputDir        = "OLIST_OUTPUT_DIR"
	EnvOutputWorkbook   = "OLIST_OUTPUT_WORKBOOK"
	EnvMetricsFile      = "OLIST_METRICS_FILE"
	EnvRefreshInterval  = "OLIST_REFRESH_INTERVAL"

	EnvRedisURL     = "OLIST_REDIS_URL"
	EnvRedisAddr    = "OLIST_REDIS_ADDR"
	EnvRedisLockTTL = "OLIST_REDIS_LOCK_TTL"
)

// legacyDBEnvVars must all be present when postgres runs without a DSN.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
