// Package config loads the settings of ssrender from .ssrender.yaml and
// SSRENDER_ environment variables, using viper.
//
//	themes: [themes/custom, themes/simple]
//	engine: ss
//	globals: [config/site.globals]
//	scripts: [config/helpers.js]
//	base_url: https://example.com/
//	server:
//	  port: 8080
//
// Environment variables replace dots with underscores, e.g.
// SSRENDER_SERVER_PORT=9000. Lists are comma separated.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/robfig/ssview/field"
)

// Name is the base name of the configuration file.
const Name = ".ssrender"

// EnvPrefix prefixes the environment variables read.
const EnvPrefix = "SSRENDER"

// Engines are the accepted values of Engine.
var Engines = []string{"ss", "pongo2"}

type Config struct {
	Themes      []string     `mapstructure:"themes"`
	Engine      string       `mapstructure:"engine"`
	Globals     []string     `mapstructure:"globals"`
	Scripts     []string     `mapstructure:"scripts"`
	BaseURL     string       `mapstructure:"base_url"`
	DefaultCast string       `mapstructure:"default_cast"`
	Watch       bool         `mapstructure:"watch"`
	LogLevel    string       `mapstructure:"log_level"`
	Server      ServerConfig `mapstructure:"server"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// New returns a viper instance reading from fs, with the defaults set and
// environment variables bound.
func New(fs afero.Fs) *viper.Viper {
	var v = viper.New()
	v.SetFs(fs)
	v.SetConfigName(Name)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("themes", []string{"templates"})
	v.SetDefault("engine", "ss")
	v.SetDefault("globals", []string{})
	v.SetDefault("scripts", []string{})
	v.SetDefault("base_url", "http://localhost:8080/")
	v.SetDefault("default_cast", field.DefaultCast)
	v.SetDefault("watch", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. If file is empty, .ssrender.yaml is used
// when present; a file that was named explicitly must exist.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if len(c.Themes) == 0 {
		return errors.New("themes: at least one theme is required")
	}
	if !slices.Contains(Engines, c.Engine) {
		return fmt.Errorf("engine: %q is not one of %v", c.Engine, Engines)
	}
	if !slices.Contains(field.Casts(), c.DefaultCast) {
		return fmt.Errorf("default_cast: %w: %s", field.ErrUnknownCast, c.DefaultCast)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: %d is out of range", c.Server.Port)
	}
	return nil
}
