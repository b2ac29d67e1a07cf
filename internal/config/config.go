// Package config loads formsubmit settings from a config file, FORMSUBMIT_
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. FORMSUBMIT_SERVER_ADDR.
const EnvPrefix = "FORMSUBMIT"

// Keys understood by Load.
const (
	KeyServerAddr         = "server.addr"
	KeyServerReadTimeout  = "server.read_timeout"
	KeyServerWriteTimeout = "server.write_timeout"
	KeySessionTTL         = "server.session_ttl"
	KeyMaxSessions        = "server.max_sessions"
	KeySubmitEndpoint     = "submit.endpoint"
	KeySubmitTimeout      = "submit.timeout"
	KeyUISchema           = "ui.schema"
	KeyMinAge             = "validation.min_age"
	KeyLogLevel           = "log.level"
)

// Config is the resolved configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Submit     SubmitConfig     `mapstructure:"submit"`
	UI         UIConfig         `mapstructure:"ui"`
	Validation ValidationConfig `mapstructure:"validation"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig configures the dev server. SessionTTL forgets browser sessions
// idle that long and MaxSessions caps how many are live; zero disables either.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	MaxSessions  int           `mapstructure:"max_sessions"`
}

// SubmitConfig selects where records go. An empty Endpoint means the
// in-process demo backend.
type SubmitConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// UIConfig points at an optional UI hints file merged over the embedded one.
type UIConfig struct {
	Schema string `mapstructure:"schema"`
}

type ValidationConfig struct {
	MinAge int `mapstructure:"min_age"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// ErrInvalid is wrapped by every validation failure reported by Load.
var ErrInvalid = errors.New("config: invalid configuration")

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			SessionTTL:   30 * time.Minute,
			MaxSessions:  1000,
		},
		Submit: SubmitConfig{
			Timeout: 10 * time.Second,
		},
		Validation: ValidationConfig{
			MinAge: 18,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers Defaults on v and enables environment overrides.
func SetDefaults(v *viper.Viper) {
	def := Defaults()
	v.SetDefault(KeyServerAddr, def.Server.Addr)
	v.SetDefault(KeyServerReadTimeout, def.Server.ReadTimeout)
	v.SetDefault(KeyServerWriteTimeout, def.Server.WriteTimeout)
	v.SetDefault(KeySessionTTL, def.Server.SessionTTL)
	v.SetDefault(KeyMaxSessions, def.Server.MaxSessions)
	v.SetDefault(KeySubmitEndpoint, def.Submit.Endpoint)
	v.SetDefault(KeySubmitTimeout, def.Submit.Timeout)
	v.SetDefault(KeyUISchema, def.UI.Schema)
	v.SetDefault(KeyMinAge, def.Validation.MinAge)
	v.SetDefault(KeyLogLevel, def.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the optional config file at path into v and decodes the result.
// An empty path skips the file.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	return Decode(v)
}

// Decode resolves the settings already loaded into v.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Server.Addr) == "" {
		problems = append(problems, "server.addr is required")
	}
	if c.Validation.MinAge <= 0 {
		problems = append(problems, "validation.min_age must be positive")
	}
	if c.Server.SessionTTL < 0 {
		problems = append(problems, "server.session_ttl must not be negative")
	}
	if c.Server.MaxSessions < 0 {
		problems = append(problems, "server.max_sessions must not be negative")
	}
	if c.Submit.Timeout < 0 {
		problems = append(problems, "submit.timeout must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
