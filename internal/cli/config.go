package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/eleven-am/todolist/internal/logger"
	"github.com/eleven-am/todolist/internal/migrator"
	"gopkg.in/yaml.v3"
)

var configLocations = []string{"todo.yaml", "todo.yml", ".todo.yaml"}

// Config represents the todo.yaml configuration structure
type Config struct {
	Server struct {
		Addr              string        `yaml:"addr"`
		ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
		ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		URL             string        `yaml:"url"`
		Host            string        `yaml:"host"`
		Port            string        `yaml:"port"`
		User            string        `yaml:"user"`
		Password        string        `yaml:"password"`
		Name            string        `yaml:"name"`
		SSLMode         string        `yaml:"sslmode"`
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		AutoMigrate     bool          `yaml:"auto_migrate"`
	} `yaml:"database"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// envConfig holds raw env values that overlay the file.
type envConfig struct {
	DatabaseURL       string `env:"DATABASE_URL"`
	LegacyDatabaseURL string `env:"SQLALCHEMY_DATABASE_URI"`
	HTTPAddr          string `env:"HTTP_ADDR"`
	LogLevel          string `env:"LOG_LEVEL"`
	LogFormat         string `env:"LOG_FORMAT"`
	MaxOpenConns      int    `env:"DB_MAX_OPEN_CONNS"`
	AutoMigrate       *bool  `env:"AUTO_MIGRATE"`
}

// LoadConfig reads the config file at path, or the first one found in the
// working directory, applies defaults and overlays the environment.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = GetConfigPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	var e envConfig
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyEnv(e)
	cfg.applyDefaults()

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(e envConfig) {
	switch {
	case e.DatabaseURL != "":
		c.Database.URL = e.DatabaseURL
	case e.LegacyDatabaseURL != "":
		c.Database.URL = e.LegacyDatabaseURL
	}
	if e.HTTPAddr != "" {
		c.Server.Addr = e.HTTPAddr
	}
	if e.LogLevel != "" {
		c.Log.Level = e.LogLevel
	}
	if e.LogFormat != "" {
		c.Log.Format = e.LogFormat
	}
	if e.MaxOpenConns > 0 {
		c.Database.MaxOpenConns = e.MaxOpenConns
	}
	if e.AutoMigrate != nil {
		c.Database.AutoMigrate = *e.AutoMigrate
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == "" {
		c.Database.Port = "5432"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 10 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// DatabaseURL returns the configured URL, or one built from the individual
// connection fields.
func (c *Config) DatabaseURL() (string, error) {
	if c.Database.URL != "" {
		return c.Database.URL, nil
	}
	if c.Database.User == "" || c.Database.Name == "" {
		return "", fmt.Errorf("database connection required: use --url, DATABASE_URL, or database settings in todo.yaml")
	}
	return migrator.GetDatabaseURL(c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode), nil
}

func (c *Config) DBConfig() (*migrator.DBConfig, error) {
	url, err := c.DatabaseURL()
	if err != nil {
		return nil, err
	}
	dbCfg := migrator.NewDBConfig(url)
	dbCfg.MaxOpenConns = c.Database.MaxOpenConns
	dbCfg.MaxIdleConns = c.Database.MaxIdleConns
	dbCfg.ConnMaxLifetime = c.Database.ConnMaxLifetime
	return dbCfg, nil
}

func GetConfigPath() string {
	if path := os.Getenv("TODO_CONFIG"); path != "" {
		return path
	}
	for _, loc := range configLocations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}
