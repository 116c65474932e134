// Package config loads the bot settings from a YAML file and credentials
// from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Moderation modes.
const (
	ModerationConsole = "console"
	ModerationAllow   = "allow"
	ModerationDeny    = "deny"
)

// Config holds everything the bot needs to run.
type Config struct {
	SavesPath     string `yaml:"saves_path"`
	TilesPath     string `yaml:"tiles_path"` // Empty uses the embedded map
	MapImage      string `yaml:"map_image"`  // Empty draws a grid
	FontPath      string `yaml:"font_path"`
	OpPostPath    string `yaml:"op_post_path"`
	WhiteList     string `yaml:"white_list"`
	BlackList     string `yaml:"black_list"`
	BaseURL       string `yaml:"base_url"`
	MakeRethreads bool   `yaml:"make_rethreads"`
	ObserverAddr  string `yaml:"observer_addr"` // Empty disables the observer
	Timezone      string `yaml:"timezone"`
	Moderation    string `yaml:"moderation"`

	Env Env `yaml:"-"`
}

// Env holds the secrets and overrides read from the environment.
type Env struct {
	Usercode     string `env:"USERCODE"`
	UsercodeAuth string `env:"USERCODE_AUTH"`
	PasscodeAuth string `env:"PASSCODE_AUTH"`
	UseProxy     bool   `env:"USE_PROXY" envDefault:"false"`
	Proxy        string `env:"PROXY"`
	SavesPath    string `env:"ZET_SAVES_PATH"`
	ObserverAddr string `env:"ZET_OBSERVER_ADDR"`
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		SavesPath:     "data/zet.db",
		OpPostPath:    "resources/op_post.txt",
		WhiteList:     "resources/white_list.txt",
		BlackList:     "resources/black_list.txt",
		BaseURL:       "https://2ch.hk",
		MakeRethreads: true,
		Timezone:      "Europe/Moscow",
		Moderation:    ModerationConsole,
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// environment. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := env.Parse(&cfg.Env); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Env.SavesPath != "" {
		cfg.SavesPath = cfg.Env.SavesPath
	}
	if cfg.Env.ObserverAddr != "" {
		cfg.ObserverAddr = cfg.Env.ObserverAddr
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that have a fixed set of choices.
func (c Config) Validate() error {
	switch c.Moderation {
	case ModerationConsole, ModerationAllow, ModerationDeny:
	default:
		return fmt.Errorf("unknown moderation mode %q", c.Moderation)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the time zone the board prints dates in.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	return loc, nil
}

// OpPost reads the opening post text of new threads.
func (c Config) OpPost() (string, error) {
	data, err := os.ReadFile(c.OpPostPath)
	if err != nil {
		return "", fmt.Errorf("read op post: %w", err)
	}
	return string(data), nil
}
