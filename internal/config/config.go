package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("tokenctl version %s, commit %s, built at %s", version, commit, date)
}

// Version returns the bare version string
func Version() string {
	return version
}

const (
	DefaultBaseURL = "https://api.github.com"
	DefaultTimeout = 30 * time.Second
	envPrefix      = "TOKENCTL"
)

type Config struct {
	API         EndpointConfig    `mapstructure:"api"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Server      ServerConfig      `mapstructure:"server"`
	Application ApplicationConfig `mapstructure:"application"`
	TwoFactor   TwoFactorConfig   `mapstructure:"two_factor"`
}

// AuthType represents the type of authentication to use
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBasic  AuthType = "basic"
	AuthTypeToken  AuthType = "token"
	AuthTypeOAuth2 AuthType = "oauth2"
)

// EndpointConfig describes the remote API the requester talks to.
type EndpointConfig struct {
	BaseURL    string            `json:"base_url" mapstructure:"base_url"`
	AuthType   AuthType          `json:"auth_type" mapstructure:"auth_type"`
	AuthConfig map[string]string `json:"auth_config" mapstructure:"auth_config"`
	Headers    map[string]string `json:"headers" mapstructure:"headers"`
	Timeout    time.Duration     `json:"timeout" mapstructure:"timeout"`
	UserAgent  string            `json:"user_agent" mapstructure:"user_agent"`
}

type ServerMode string

const (
	ServerModeSSE   ServerMode = "sse"
	ServerModeSTDIO ServerMode = "stdio"
	ServerModeHTTP  ServerMode = "http"
)

type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	Host    string     `mapstructure:"host"`
	Mode    ServerMode `mapstructure:"mode"`
	Name    string     `mapstructure:"name"`
	Version string     `mapstructure:"version"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// ApplicationConfig identifies the OAuth application used by get-or-create.
type ApplicationConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// TwoFactorConfig tunes the one-time code challenge loop.
// MaxRounds of 0 leaves the loop unbounded.
type TwoFactorConfig struct {
	MaxRounds  int    `mapstructure:"max_rounds"`
	TOTPSecret string `mapstructure:"totp_secret"`
}

// InitFlags registers the flags that override config keys (without parsing)
func InitFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to the config file")
	fs.String("base-url", "", "Base URL of the API")
	fs.String("log-level", "", "Log level (debug|info|warn|error)")
	fs.String("mode", "", "Server mode (stdio|sse|http)")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.auth_type", string(AuthTypeNone))
	v.SetDefault("api.timeout", DefaultTimeout)
	v.SetDefault("api.user_agent", "tokenctl/"+version)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.mode", string(ServerModeSTDIO))
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.name", "tokenctl")
	v.SetDefault("server.version", version)

	v.SetDefault("two_factor.max_rounds", 0)
}

// Load reads configuration from the config file, TOKENCTL_* environment
// variables and the given flag set, in increasing order of precedence.
// A nil flag set is allowed.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	configFile := ""
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/tokenctl")
		v.AddConfigPath("/etc/tokenctl")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if fs != nil {
		applyFlags(&cfg, fs)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyFlags(cfg *Config, fs *pflag.FlagSet) {
	if f := fs.Lookup("base-url"); f != nil && f.Changed {
		cfg.API.BaseURL = f.Value.String()
	}
	if f := fs.Lookup("log-level"); f != nil && f.Changed {
		cfg.Logging.Level = f.Value.String()
	}
	if f := fs.Lookup("mode"); f != nil && f.Changed {
		cfg.Server.Mode = ServerMode(f.Value.String())
	}
}

// Validate checks the values that cannot be defaulted
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url is invalid: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}

	switch c.API.AuthType {
	case AuthTypeNone, AuthTypeBasic, AuthTypeToken, AuthTypeOAuth2:
	case "":
		c.API.AuthType = AuthTypeNone
	default:
		return fmt.Errorf("api.auth_type %q is not supported", c.API.AuthType)
	}

	switch c.Server.Mode {
	case ServerModeSSE, ServerModeSTDIO, ServerModeHTTP:
	default:
		return fmt.Errorf("server.mode %q is not supported, use stdio, sse or http", c.Server.Mode)
	}

	if c.TwoFactor.MaxRounds < 0 {
		return fmt.Errorf("two_factor.max_rounds must not be negative")
	}
	return nil
}
