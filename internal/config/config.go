// Package config handles the XDG configuration directory and config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "mytasks"

	// ConfigName is the config file name without extension.
	ConfigName = "config"

	// EnvPrefix prefixes environment overrides, e.g. MYTASKS_STORAGE_DRIVER.
	EnvPrefix = "MYTASKS"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// StorageFile is the default file backend location.
	StorageFile = "storage.json"

	// DatabaseFile is the default sqlite backend location.
	DatabaseFile = "storage.db"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverRedis  = "redis"
	DriverGTasks = "gtasks"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Storage StorageConfig
	Log     LogConfig
	Server  ServerConfig
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Driver        string
	Path          string
	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
	GTasksList    string
	CacheSize     int
}

type LogConfig struct {
	Level string
}

type ServerConfig struct {
	Addr string

	// RateLimit is the number of writes per minute allowed per client.
	RateLimit int
}

// New creates a Config for the default or specified config directory and
// reads config.yaml from it if present.
// If configDir is empty, uses XDG_CONFIG_HOME/mytasks or $HOME/.config/mytasks.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) load() error {
	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(c.Dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	c.Storage = StorageConfig{
		Driver:        strings.ToLower(strings.TrimSpace(v.GetString("storage.driver"))),
		Path:          v.GetString("storage.path"),
		DSN:           v.GetString("storage.dsn"),
		RedisAddr:     v.GetString("storage.redis_addr"),
		RedisPassword: v.GetString("storage.redis_password"),
		RedisDB:       v.GetInt("storage.redis_db"),
		Prefix:        v.GetString("storage.prefix"),
		GTasksList:    v.GetString("storage.gtasks_list"),
		CacheSize:     v.GetInt("storage.cache_size"),
	}
	c.Log.Level = v.GetString("log.level")
	c.Server.Addr = v.GetString("server.addr")
	c.Server.RateLimit = v.GetInt("server.rate_limit")
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.prefix", AppName+":")
	v.SetDefault("storage.gtasks_list", AppName+"-storage")
	v.SetDefault("storage.cache_size", 0)
	v.SetDefault("log.level", "warn")
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.rate_limit", 120)
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// StoragePath returns the file or database path for the configured driver.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	if c.Storage.Driver == DriverSQLite {
		return filepath.Join(c.Dir, DatabaseFile)
	}
	return filepath.Join(c.Dir, StorageFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
