package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreXML      = "xml"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Frontend  FrontendConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Data      DataConfig
	Export    ExportConfig
	Migration MigrationConfig
}

type ServerConfig struct {
	Port         string        `env:"SERVER_PORT" envDefault:"8080"`
	Environment  string        `env:"ENVIRONMENT" envDefault:"development"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
}

type DatabaseConfig struct {
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"postgres"`
	Password        string        `env:"DB_PASSWORD" envDefault:"postgres"`
	Name            string        `env:"DB_NAME" envDefault:"galaxymap"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"5"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"galaxymap.db"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	URL      string `env:"REDIS_URL"`
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Key      string `env:"REDIS_EXPORT_KEY" envDefault:"galaxymap:planet_database"`
	Channel  string `env:"REDIS_EXPORT_CHANNEL" envDefault:"galaxymap:exports"`
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	TokenExpiration time.Duration `env:"JWT_EXPIRATION" envDefault:"24h"`
	CookieSecure    bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CookieSameSite  string        `env:"COOKIE_SAMESITE" envDefault:"lax"`
}

type FrontendConfig struct {
	URL       string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	CORSDebug bool   `env:"CORS_DEBUG" envDefault:"false"`
}

type LoggingConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	JSONFormat bool   `env:"LOG_JSON" envDefault:"false"`
}

type RateLimitConfig struct {
	Enabled           bool    `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RequestsPerSecond float64 `env:"RATE_LIMIT_REQUESTS_PER_SECOND" envDefault:"5"`
	BurstSize         int     `env:"RATE_LIMIT_BURST_SIZE" envDefault:"10"`
	TrustProxy        bool    `env:"RATE_LIMIT_TRUST_PROXY" envDefault:"false"`
}

// DataConfig selects where planets, trade routes and campaigns come from.
type DataConfig struct {
	Path  string `env:"DATA_PATH" envDefault:"."`
	Store string `env:"STORE" envDefault:"xml"`
}

type ExportConfig struct {
	Output                 string            `env:"EXPORT_OUTPUT" envDefault:"PlanetDatabase.lua"`
	Format                 string            `env:"EXPORT_FORMAT" envDefault:"lua"`
	RootName               string            `env:"EXPORT_ROOT_NAME" envDefault:"PlanetDataBase"`
	AutoConnectionDistance float64           `env:"AUTO_CONNECTION_DISTANCE" envDefault:"100"`
	CampaignAliases        map[string]string `env:"CAMPAIGN_ALIASES" envSeparator:"," envKeyValSeparator:":"`
	Ignore                 []string          `env:"IGNORE_PLANETS" envSeparator:"," envDefault:"Galaxy_Core_Art_Model"`
	Verify                 bool              `env:"EXPORT_VERIFY" envDefault:"true"`
}

type MigrationConfig struct {
	PlanPath    string   `env:"MIGRATION_PLAN" envDefault:"migration.toml"`
	CoordDigits int      `env:"COORD_DECIMALS" envDefault:"2"`
	Ignore      []string `env:"MIGRATION_IGNORE_PLANETS" envSeparator:"," envDefault:"Galaxy_Core_Art_Model,Pegasus_Prelude_Galaxy_Core_Art_Model"`
}

var GlobalConfig *Config

// Init loads the configuration and stores it in GlobalConfig. Only process
// wiring reads GlobalConfig; the engine packages receive explicit configs.
func Init() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	GlobalConfig = cfg
	return nil
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.Data.Store = strings.ToLower(strings.TrimSpace(c.Data.Store))
	c.Export.Format = strings.ToLower(strings.TrimSpace(c.Export.Format))
	c.Export.Ignore = trimAll(c.Export.Ignore)
	c.Migration.Ignore = trimAll(c.Migration.Ignore)

	aliases := make(map[string]string, len(c.Export.CampaignAliases))
	for name, alias := range c.Export.CampaignAliases {
		aliases[strings.TrimSpace(name)] = strings.TrimSpace(alias)
	}
	c.Export.CampaignAliases = aliases
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (c *Config) validate() error {
	switch c.Data.Store {
	case StoreXML, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("STORE must be one of xml, postgres, sqlite (got %q)", c.Data.Store)
	}

	if c.Data.Store == StoreXML && c.Data.Path == "" {
		return fmt.Errorf("DATA_PATH is required for the xml store")
	}

	if c.Export.AutoConnectionDistance <= 0 {
		return fmt.Errorf("AUTO_CONNECTION_DISTANCE must be positive")
	}

	if c.Migration.CoordDigits < 0 {
		return fmt.Errorf("COORD_DECIMALS must not be negative")
	}

	switch c.Export.Format {
	case "lua", "json":
	default:
		return fmt.Errorf("EXPORT_FORMAT must be lua or json (got %q)", c.Export.Format)
	}

	return nil
}

// ValidateServer checks the settings that only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
