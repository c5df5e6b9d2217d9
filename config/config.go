// Package config loads service configuration from a YAML file, a dotenv file
// and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Oracle   OracleConfig   `yaml:"oracle"`
	Cache    CacheConfig    `yaml:"cache"`
	Adapter  AdapterConfig  `yaml:"adapter"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigin   string        `yaml:"allowed_origin"`
}

type DatabaseConfig struct {
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Host         string `yaml:"host"`
	Name         string `yaml:"name"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// OracleConfig selects and tunes the ranking oracle backend.
type OracleConfig struct {
	Provider string        `yaml:"provider"` // openai or gemini
	Model    string        `yaml:"model"`    // empty picks the backend default
	BaseURL  string        `yaml:"base_url"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	PoolSize      int           `yaml:"pool_size"`
	KeyPrefix     string        `yaml:"key_prefix"`
	TTL           time.Duration `yaml:"ttl"`
}

type AdapterConfig struct {
	PoolSize int `yaml:"pool_size"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigin:   "*",
		},
		Database: DatabaseConfig{
			User:         "user",
			Password:     "password",
			Host:         "tcp(127.0.0.1:3306)",
			Name:         "hackathon_db",
			MaxOpenConns: 10,
		},
		Oracle: OracleConfig{
			Provider: "openai",
			Timeout:  10 * time.Second,
		},
		Cache:   CacheConfig{KeyPrefix: "feed:", TTL: 5 * time.Minute},
		Adapter: AdapterConfig{PoolSize: 4},
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}

// Load builds the configuration. Missing env files are ignored; a missing
// config file is an error only when path is set.
func Load(path string, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if strings.TrimSpace(f) == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.Database.User, "MYSQL_USER")
	setString(&c.Database.Password, "MYSQL_PWD")
	setString(&c.Database.Host, "MYSQL_HOST")
	setString(&c.Database.Name, "MYSQL_DATABASE")
	setString(&c.Server.Port, "PORT")
	setString(&c.Oracle.Provider, "ORACLE_PROVIDER")
	setString(&c.Oracle.Model, "ORACLE_MODEL")
	setString(&c.Oracle.BaseURL, "ORACLE_BASE_URL")
	setString(&c.Cache.RedisAddr, "REDIS_ADDR")
	setString(&c.Cache.RedisPassword, "REDIS_PASSWORD")
	setString(&c.Cache.KeyPrefix, "REDIS_KEY_PREFIX")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	if c.Oracle.APIKey == "" {
		switch c.Oracle.Provider {
		case "gemini":
			c.Oracle.APIKey = os.Getenv("GEMINI_API_KEY")
		default:
			c.Oracle.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if v := os.Getenv("ORACLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ORACLE_TIMEOUT: %w", err)
		}
		c.Oracle.Timeout = d
	}
	if v := os.Getenv("ADAPTER_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ADAPTER_POOL_SIZE: %w", err)
		}
		c.Adapter.PoolSize = n
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Oracle.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown oracle provider %q", c.Oracle.Provider)
	}
	if c.Oracle.Timeout <= 0 {
		return errors.New("oracle timeout must be positive")
	}
	if c.Adapter.PoolSize < 1 {
		c.Adapter.PoolSize = 1
	}
	return nil
}

// DSN is the go-sql-driver/mysql data source name.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@%s/%s?parseTime=true&loc=Local", d.User, d.Password, d.Host, d.Name)
}
