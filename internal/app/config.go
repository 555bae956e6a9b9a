package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	iauth "github.com/clubsphere/clubsphere/internal/auth"
	"github.com/clubsphere/clubsphere/internal/database"
)

// Audit store backends.
const (
	AuditStoreSQL   = "sql"
	AuditStoreMongo = "mongo"
)

// Config represents the runtime configuration for the clubsphere backend.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Audit      AuditConfig      `mapstructure:"audit"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	BasePath        string        `mapstructure:"base_path"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig describes connection options for the supported SQL databases.
type DatabaseConfig struct {
	Driver   string            `mapstructure:"driver"`
	Path     string            `mapstructure:"path"`
	DSN      string            `mapstructure:"dsn"`
	Host     string            `mapstructure:"host"`
	Port     int               `mapstructure:"port"`
	Name     string            `mapstructure:"name"`
	Username string            `mapstructure:"username"`
	Password string            `mapstructure:"password"`
	Options  map[string]string `mapstructure:"options"`
}

// MongoConfig describes the document database used when audit.store is "mongo".
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Hosts          []string      `mapstructure:"hosts"`
	Database       string        `mapstructure:"database"`
	AppName        string        `mapstructure:"app_name"`
	Direct         bool          `mapstructure:"direct"`
	AuthMechanism  string        `mapstructure:"auth_mechanism"`
	AuthSource     string        `mapstructure:"auth_source"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// AuditConfig controls request auditing.
type AuditConfig struct {
	Store            string        `mapstructure:"store"`
	ExcludePaths     []string      `mapstructure:"exclude_paths"`
	ExcludeMethods   []string      `mapstructure:"exclude_methods"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	BodyCaptureLimit int           `mapstructure:"body_capture_limit"`
}

// AuthConfig captures identity settings.
type AuthConfig struct {
	JWT   JWTSettings  `mapstructure:"jwt"`
	Admin AdminSeeding `mapstructure:"admin"`
}

// JWTSettings configures bearer and session tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"access_token_ttl"`
}

// AdminSeeding creates the first administrator on startup when Email is set.
type AdminSeeding struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

// MonitoringConfig toggles the metrics endpoint.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("CLUBSPHERE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	c.Audit.Store = strings.ToLower(strings.TrimSpace(c.Audit.Store))
	switch c.Audit.Store {
	case "", AuditStoreSQL:
		c.Audit.Store = AuditStoreSQL
	case AuditStoreMongo:
		if strings.TrimSpace(c.Mongo.URI) == "" && len(c.Mongo.Hosts) == 0 {
			return errors.New("config: mongo.uri or mongo.hosts is required for the mongo audit store")
		}
		if strings.TrimSpace(c.Mongo.Database) == "" {
			return errors.New("config: mongo.database is required for the mongo audit store")
		}
	default:
		return fmt.Errorf("config: unsupported audit.store %q", c.Audit.Store)
	}
	return nil
}

// DatabaseSettings converts the SQL section into database.Config.
func (c *Config) DatabaseSettings() database.Config {
	return database.Config{
		Driver:   c.Database.Driver,
		Path:     c.Database.Path,
		DSN:      c.Database.DSN,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Name:     c.Database.Name,
		User:     c.Database.Username,
		Password: c.Database.Password,
		Options:  c.Database.Options,
	}
}

// JWTServiceConfig converts the JWT section into iauth.JWTConfig.
func (a AuthConfig) JWTServiceConfig() iauth.JWTConfig {
	return iauth.JWTConfig{
		Secret:         a.JWT.Secret,
		Issuer:         a.JWT.Issuer,
		AccessTokenTTL: a.JWT.TTL,
	}
}

// MongoSettings converts the mongo section into database.MongoConfig.
func (c *Config) MongoSettings() database.MongoConfig {
	return database.MongoConfig{
		URI:            c.Mongo.URI,
		Hosts:          c.Mongo.Hosts,
		Database:       c.Mongo.Database,
		AppName:        c.Mongo.AppName,
		IsDirect:       c.Mongo.Direct,
		AuthMechanism:  c.Mongo.AuthMechanism,
		AuthSource:     c.Mongo.AuthSource,
		Username:       c.Mongo.Username,
		Password:       c.Mongo.Password,
		ConnectTimeout: c.Mongo.ConnectTimeout,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.base_path", "/api")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/clubsphere.sqlite")

	v.SetDefault("mongo.app_name", "clubsphere")
	v.SetDefault("mongo.connect_timeout", "10s")

	v.SetDefault("audit.store", AuditStoreSQL)
	v.SetDefault("audit.exclude_paths", []string{"/health", "/metrics", "/favicon.ico"})
	v.SetDefault("audit.exclude_methods", []string{"OPTIONS", "HEAD"})
	v.SetDefault("audit.write_timeout", "5s")
	v.SetDefault("audit.body_capture_limit", 1<<20)

	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "clubsphere")
	v.SetDefault("auth.jwt.access_token_ttl", "15m")
	v.SetDefault("auth.admin.name", "Administrator")
	v.SetDefault("auth.admin.email", "")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
