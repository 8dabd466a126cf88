package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Network   NetworkConfig   `toml:"network"`
	Game      GameConfig      `toml:"game"`
	Physics   PhysicsConfig   `toml:"physics"`
	Database  DatabaseConfig  `toml:"database"`
	Scripting ScriptingConfig `toml:"scripting"`
	Data      DataConfig      `toml:"data"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Name string `toml:"name"`
}

type NetworkConfig struct {
	BindAddress       string        `toml:"bind_address"`
	Path              string        `toml:"path"`
	InQueueSize       int           `toml:"in_queue_size"`
	OutQueueSize      int           `toml:"out_queue_size"`
	ReadLimit         int64         `toml:"read_limit"`
	WriteTimeout      time.Duration `toml:"write_timeout"`
	ReadTimeout       time.Duration `toml:"read_timeout"`
	PingInterval      time.Duration `toml:"ping_interval"`
	MessagesPerSecond int           `toml:"messages_per_second"` // 0 = unlimited
}

type GameConfig struct {
	TickRate          time.Duration `toml:"tick_rate"`
	MaxPlayers        int           `toml:"max_players"`
	MoveSpeed         float64       `toml:"move_speed"`
	ContactDamage     int           `toml:"contact_damage"`
	ActionDuration    time.Duration `toml:"action_duration"`
	ChatLogLimit      int           `toml:"chat_log_limit"`       // 0 = unbounded
	ChatMessageMaxLen int           `toml:"chat_message_max_len"` // runes, 0 = unlimited
}

type PhysicsConfig struct {
	Timestep          float64   `toml:"timestep"` // seconds per step
	Gravity           []float64 `toml:"gravity"`
	PlayerSpawn       []float64 `toml:"player_spawn"`
	PlayerHalfExtents []float64 `toml:"player_half_extents"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables the chat archive
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	FlushInterval   int           `toml:"flush_interval"` // ticks between archive flushes
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // empty disables Lua
}

type DataConfig struct {
	SpawnList string `toml:"spawn_list"` // empty uses the built-in schedule
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaults()
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Game.TickRate <= 0 {
		errs = append(errs, errors.New("game.tick_rate must be positive"))
	}
	if c.Game.MaxPlayers <= 0 {
		errs = append(errs, errors.New("game.max_players must be positive"))
	}
	if c.Game.MoveSpeed <= 0 {
		errs = append(errs, errors.New("game.move_speed must be positive"))
	}
	if c.Game.ActionDuration <= 0 {
		errs = append(errs, errors.New("game.action_duration must be positive"))
	}
	if c.Physics.Timestep <= 0 {
		errs = append(errs, errors.New("physics.timestep must be positive"))
	}
	for name, v := range map[string][]float64{
		"physics.gravity":             c.Physics.Gravity,
		"physics.player_spawn":        c.Physics.PlayerSpawn,
		"physics.player_half_extents": c.Physics.PlayerHalfExtents,
	} {
		if len(v) != 3 {
			errs = append(errs, fmt.Errorf("%s needs 3 components, got %d", name, len(v)))
		}
	}
	if c.Network.InQueueSize <= 0 || c.Network.OutQueueSize <= 0 {
		errs = append(errs, errors.New("network queue sizes must be positive"))
	}
	if c.Network.PingInterval <= 0 || c.Network.ReadTimeout <= c.Network.PingInterval {
		errs = append(errs, errors.New("network.read_timeout must exceed a positive network.ping_interval"))
	}
	return errors.Join(errs...)
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "arena",
		},
		Network: NetworkConfig{
			BindAddress:       "0.0.0.0:8080",
			Path:              "/",
			InQueueSize:       256,
			OutQueueSize:      256,
			ReadLimit:         1 << 16,
			WriteTimeout:      10 * time.Second,
			ReadTimeout:       60 * time.Second,
			PingInterval:      25 * time.Second,
			MessagesPerSecond: 120,
		},
		Game: GameConfig{
			TickRate:          16 * time.Millisecond,
			MaxPlayers:        10,
			MoveSpeed:         10,
			ContactDamage:     10,
			ActionDuration:    1500 * time.Millisecond,
			ChatLogLimit:      0,
			ChatMessageMaxLen: 280,
		},
		Physics: PhysicsConfig{
			Timestep:          1.0 / 60.0,
			Gravity:           []float64{0, 0, 0},
			PlayerSpawn:       []float64{0, 0, 0},
			PlayerHalfExtents: []float64{1, 1, 1},
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			FlushInterval:   60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
