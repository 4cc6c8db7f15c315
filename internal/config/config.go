package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL         string
	ExplorerURL    string
	ExplorerAPIKey string
	GameContract   string
	PlayerContract string
	Selector       string
	StartBlock     uint64
	WindowSize     uint64
	CacheDir       string
	CacheTTL       time.Duration
	DBDriver       string
	DBPath         string
	PGDSN          string
	Listen         string
	MaxRetries     int
	RetryBackoff   time.Duration
	LogLevel       string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GAMESCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("explorer-url", "https://api.bscscan.com/api")
	v.SetDefault("selector", "0x102f211")
	v.SetDefault("window-size", uint64(10_000))
	v.SetDefault("cache-dir", "./cache")
	v.SetDefault("cache-ttl", 30*24*time.Hour)
	v.SetDefault("db-driver", "sqlite")
	v.SetDefault("db-path", "./rating.sqlite")
	v.SetDefault("listen", ":4000")
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:         v.GetString("rpc"),
		ExplorerURL:    v.GetString("explorer-url"),
		ExplorerAPIKey: v.GetString("explorer-api-key"),
		GameContract:   v.GetString("game-contract"),
		PlayerContract: v.GetString("player-contract"),
		Selector:       v.GetString("selector"),
		StartBlock:     v.GetUint64("start-block"),
		WindowSize:     v.GetUint64("window-size"),
		CacheDir:       v.GetString("cache-dir"),
		CacheTTL:       v.GetDuration("cache-ttl"),
		DBDriver:       v.GetString("db-driver"),
		DBPath:         v.GetString("db-path"),
		PGDSN:          v.GetString("pg-dsn"),
		Listen:         v.GetString("listen"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		LogLevel:       v.GetString("log-level"),
	}

	return cfg, nil
}
