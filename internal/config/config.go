// Package config loads the mamdanictl TOML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"mamdani/internal/storage"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Store  StoreConfig  `toml:"store"`
	Engine EngineConfig `toml:"engine"`
	Log    LogConfig    `toml:"log"`
	Server ServerConfig `toml:"server"`
}

type StoreConfig struct {
	Kind string `toml:"kind" validate:"oneof=memory sqlite"`
	Path string `toml:"path" validate:"required_if=Kind sqlite"`
}

type EngineConfig struct {
	// Resolution 0 keeps the sampling each profile was tuned with.
	Resolution int `toml:"resolution" validate:"omitempty,gte=10,lte=1000000"`
	Workers    int `toml:"workers" validate:"gte=1,lte=256"`
}

type LogConfig struct {
	Level       string `toml:"level" validate:"oneof=debug info warn error"`
	Development bool   `toml:"development"`
}

type ServerConfig struct {
	Addr string `toml:"addr" validate:"required,hostname_port"`
}

var validate = validator.New()

func Default() Config {
	return Config{
		Store:  StoreConfig{Kind: storage.DefaultStoreKind(), Path: "mamdani.db"},
		Engine: EngineConfig{Workers: 1},
		Log:    LogConfig{Level: "info"},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (Config, error) {
	cfg := Default()
	if err := toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
