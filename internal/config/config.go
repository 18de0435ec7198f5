// Package config loads server configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pickledire/feign-server-go/internal/game"
)

// EnvPrefix is prepended to environment overrides, e.g. FEIGN_SERVER_GRPC_ADDRESS.
const EnvPrefix = "FEIGN"

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Game    GameConfig    `mapstructure:"game"`
	Storage StorageConfig `mapstructure:"storage"`
	Replay  ReplayConfig  `mapstructure:"replay"`
}

// ServerConfig holds transport settings.
type ServerConfig struct {
	GRPC            GRPCConfig      `mapstructure:"grpc"`
	WebSocket       WebSocketConfig `mapstructure:"websocket"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
}

// GRPCConfig configures the gRPC listener.
type GRPCConfig struct {
	Address              string `mapstructure:"address"`
	MaxConcurrentStreams int    `mapstructure:"max_concurrent_streams"`
}

// WebSocketConfig configures the WebSocket listener.
type WebSocketConfig struct {
	Address        string   `mapstructure:"address"`
	Path           string   `mapstructure:"path"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig holds the rule constants and the deck seed.
// A zero seed shuffles from a random seed.
type GameConfig struct {
	StartingLife          int    `mapstructure:"starting_life"`
	StartingMana          int    `mapstructure:"starting_mana"`
	InitialHandSize       int    `mapstructure:"initial_hand_size"`
	ManaPerTurn           int    `mapstructure:"mana_per_turn"`
	DefaultEffectDuration int    `mapstructure:"default_effect_duration"`
	Seed                  uint64 `mapstructure:"seed"`
	CardsFile             string `mapstructure:"cards_file"`
}

// Rules converts the game section into engine rules.
func (g GameConfig) Rules() game.Config {
	return game.Config{
		StartingLife:          g.StartingLife,
		StartingMana:          g.StartingMana,
		InitialHandSize:       g.InitialHandSize,
		ManaPerTurn:           g.ManaPerTurn,
		DefaultEffectDuration: g.DefaultEffectDuration,
	}
}

// StorageConfig selects where finished matches are recorded.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres or none
	DSN    string `mapstructure:"dsn"`
}

// ReplayConfig controls replay files.
type ReplayConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
}

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

func setDefaults(v *viper.Viper) {
	rules := game.DefaultConfig()

	v.SetDefault("server.grpc.address", ":50051")
	v.SetDefault("server.grpc.max_concurrent_streams", 100)
	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.path", "/ws")
	v.SetDefault("server.websocket.allowed_origins", []string{})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("game.starting_life", rules.StartingLife)
	v.SetDefault("game.starting_mana", rules.StartingMana)
	v.SetDefault("game.initial_hand_size", rules.InitialHandSize)
	v.SetDefault("game.mana_per_turn", rules.ManaPerTurn)
	v.SetDefault("game.default_effect_duration", rules.DefaultEffectDuration)
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.cards_file", "")

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.dsn", "feign.db")

	v.SetDefault("replay.enabled", false)
	v.SetDefault("replay.directory", "replays")
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads configuration from path, falling back to defaults when the file
// does not exist. Environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.GRPC.Address == "" && c.Server.WebSocket.Address == "" {
		return errors.New("at least one of server.grpc.address and server.websocket.address must be set")
	}
	if c.Server.GRPC.MaxConcurrentStreams < 0 {
		return fmt.Errorf("server.grpc.max_concurrent_streams must not be negative, got %d", c.Server.GRPC.MaxConcurrentStreams)
	}
	if c.Server.WebSocket.Address != "" && !strings.HasPrefix(c.Server.WebSocket.Path, "/") {
		return fmt.Errorf("server.websocket.path must start with '/', got %q", c.Server.WebSocket.Path)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown logging.format %q", c.Logging.Format)
	}

	if err := c.Game.Rules().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
		}
	case DriverNone:
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	if c.Replay.Enabled && c.Replay.Directory == "" {
		return errors.New("replay.directory is required when replays are enabled")
	}
	return nil
}
