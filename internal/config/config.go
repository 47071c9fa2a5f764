// Package config loads the process configuration from WALLETSYNC_*
// environment variables. Keys are derived from the field names, so only
// prefixed variables are ever read.
package config

import (
	"fmt"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
)

const prefix = "WALLETSYNC"

// Config is the complete process configuration.
type Config struct {
	ServiceName      string `split_words:"true" default:"walletsync" validate:"required"`
	LogLevel         string `split_words:"true" default:"info" validate:"required,loglevel"`
	TelemetryEnabled bool   `split_words:"true" default:"false"`

	Storage  Storage
	Redis    Redis
	Explorer Explorer
	Sync     Sync
	Daemon   Daemon
}

// Storage selects the operation store. The sqlite driver keeps everything
// in one local file; postgres connects to DSN.
type Storage struct {
	Driver          string        `split_words:"true" default:"sqlite" validate:"required,oneof=sqlite postgres"`
	Path            string        `split_words:"true" default:"data/walletsync.db" validate:"required_if=Driver sqlite"`
	DSN             string        `split_words:"true" validate:"required_if=Driver postgres"`
	MaxOpenConns    int           `split_words:"true" default:"10" validate:"gte=0"`
	MaxIdleConns    int           `split_words:"true" default:"5" validate:"gte=0"`
	ConnMaxLifetime time.Duration `split_words:"true" default:"30m" validate:"gte=0"`
}

// Redis is optional. When Addr is set, events are published on Channel;
// Keychains moves keychain storage from the database to Redis.
type Redis struct {
	Addr      string `split_words:"true" validate:"required_if=Keychains true,omitempty,hostname_port"`
	Username  string `split_words:"true"`
	Password  string `split_words:"true"`
	DB        int    `split_words:"true" default:"0" validate:"gte=0"`
	Channel   string `split_words:"true" default:"walletsync:events"`
	Keychains bool   `split_words:"true" default:"false"`
}

// Explorer holds the explorer base URL of every chain and the HTTP tuning
// shared by all of them. A chain without URL is not synchronized.
type Explorer struct {
	BitcoinURL  string `split_words:"true" validate:"omitempty,url"`
	EthereumURL string `split_words:"true" validate:"omitempty,url"`
	CosmosURL   string `split_words:"true" validate:"omitempty,url"`
	TezosURL    string `split_words:"true" validate:"omitempty,url"`
	StellarURL  string `split_words:"true" validate:"omitempty,url"`
	AlgorandURL string `split_words:"true" validate:"omitempty,url"`

	CosmosDenom string `split_words:"true" default:"uatom" validate:"required"`

	PageSize      int           `split_words:"true" default:"100" validate:"gte=1,lte=1000"`
	Sessions      bool          `split_words:"true" default:"false"`
	BlockCacheTTL time.Duration `split_words:"true" default:"5s" validate:"gte=0"`
	RateLimit     float64       `split_words:"true" default:"10" validate:"gte=0"`
	RateBurst     int           `split_words:"true" default:"1" validate:"gte=1"`
	Timeout       time.Duration `split_words:"true" default:"30s" validate:"gt=0"`
	RetryMax      int           `split_words:"true" default:"4" validate:"gte=0"`
	RetryWaitMin  time.Duration `split_words:"true" default:"500ms" validate:"gte=0"`
	RetryWaitMax  time.Duration `split_words:"true" default:"10s" validate:"gtefield=RetryWaitMin"`
}

// URLs returns the configured explorer base URL per currency.
func (e Explorer) URLs() map[string]string {
	urls := make(map[string]string)
	for currency, url := range map[string]string{
		"bitcoin":  e.BitcoinURL,
		"ethereum": e.EthereumURL,
		"cosmos":   e.CosmosURL,
		"tezos":    e.TezosURL,
		"stellar":  e.StellarURL,
		"algorand": e.AlgorandURL,
	} {
		if url != "" {
			urls[currency] = url
		}
	}

	return urls
}

// Sync tunes the account synchronizers.
type Sync struct {
	MinConfirmations uint64 `split_words:"true" default:"1"`
	MaxRewinds       int    `split_words:"true" default:"1" validate:"gte=0"`
}

// Daemon tunes the background synchronization started by the start command.
type Daemon struct {
	Interval      time.Duration `split_words:"true" default:"1m" validate:"gt=0"`
	Workers       int           `split_words:"true" default:"4" validate:"gte=1"`
	RetryAttempts uint          `split_words:"true" default:"3" validate:"gte=1"`
	RetryDelay    time.Duration `split_words:"true" default:"1s" validate:"gt=0"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process(prefix, &c); err != nil {
		return Config{}, fmt.Errorf("read configuration: %w", err)
	}

	if err := validator.Validate(c); err != nil {
		return Config{}, err
	}

	return c, nil
}
