package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// IndexConfig controls where the on-disk index lives and the default
// matching parameters applied when a search request doesn't override them.
type IndexConfig struct {
	Dir              string  `mapstructure:"dir"`
	DefaultThreshold float64 `mapstructure:"default_threshold"`
	DefaultLimit     int     `mapstructure:"default_limit"`
}

// ServerConfig holds the daemon settings. BindAddr is read from config but
// not used: the daemon listens only on its unix socket. ExpirationSeconds is
// the inactivity period after which the daemon exits.
type ServerConfig struct {
	BindAddr          string `mapstructure:"bind_addr"`
	ExpirationSeconds int    `mapstructure:"expiration_seconds"`
}

type Config struct {
	Index  IndexConfig  `mapstructure:"index"`
	Server ServerConfig `mapstructure:"server"`
}

// cacheBase returns the base cache directory for ruggle.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/ruggle as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "ruggle")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "ruggle")
	}
	return filepath.Join(os.TempDir(), "ruggle")
}

// IndexDir returns the path to the on-disk index directory (crate/ and set/
// live underneath it — internal/store.Open takes this path directly).
func IndexDir() string {
	return filepath.Join(cacheBase(), "index")
}

// LogPath returns the path to the daemon's log file.
func LogPath() string {
	return filepath.Join(cacheBase(), "daemon.log")
}

// SocketPath returns the path to the daemon's unix socket.
func SocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "ruggle", "daemon.sock")
	}
	return filepath.Join(fmt.Sprintf("/run/user/%d", os.Getuid()), "ruggle", "daemon.sock")
}

func InitializeViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "ruggle"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "ruggle"))
	}

	viper.SetDefault("index.dir", IndexDir())
	viper.SetDefault("index.default_threshold", 0.6)
	viper.SetDefault("index.default_limit", 20)
	viper.SetDefault("server.bind_addr", "127.0.0.1:7887")
	viper.SetDefault("server.expiration_seconds", 600)

	viper.SetEnvPrefix("RUGGLE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
