package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel            string `env:"LOG_LEVEL"`
	Postgres            Postgres
	Redis               Redis
	HTTP                HTTP
	API                 API
	Cache               Cache
	Jobs                Jobs
	GoogleDrive         GoogleDrive
	SessionExpiration   time.Duration `env:"SESSION_EXPIRATION"`
	HoldingsPerPage     int           `env:"HOLDINGS_PER_PAGE"`
	TransactionsPerPage int           `env:"TRANSACTIONS_PER_PAGE"`
	PortfoliosPerPage   int           `env:"PORTFOLIOS_PER_PAGE"`
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME"`
	MigrationDir    string `env:"PG_MIGRATION_DIR"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

type HTTP struct {
	Host            string        `env:"HTTP_HOST"`
	Port            int           `env:"HTTP_PORT"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"`
}

type API struct {
	Debug         bool          `env:"API_DEBUG"`
	Timeout       time.Duration `env:"API_TIMEOUT"`
	RatesApi      RatesApi
	MarketDataApi MarketDataApi
}

type RatesApi struct {
	Url          string `env:"RATES_API_URL"`
	BaseCurrency string `env:"RATES_API_BASE_CURRENCY"`
}

type MarketDataApi struct {
	Url       string `env:"MARKET_DATA_API_URL"`
	StreamUrl string `env:"MARKET_DATA_STREAM_URL"`
	Token     string `env:"MARKET_DATA_API_TOKEN"`
}

type Cache struct {
	QuotesExpiration  time.Duration `env:"CACHE_QUOTES_EXPIRATION"`
	SummaryExpiration time.Duration `env:"CACHE_SUMMARY_EXPIRATION"`
}

type Jobs struct {
	RefreshRatesInterval     time.Duration `env:"REFRESH_RATES_JOB_INTERVAL"`
	SyncFeedTickersInterval  time.Duration `env:"SYNC_FEED_TICKERS_JOB_INTERVAL"`
	DeleteOldReportsInterval time.Duration `env:"DELETE_OLD_REPORTS_JOB_INTERVAL"`
}

type GoogleDrive struct {
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE"`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
