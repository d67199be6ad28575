package config

import "go.uber.org/fx"

// Module exposes the sections of a supplied *Config to the other modules
var Module = fx.Module("config",
	fx.Provide(
		func(c *Config) *EndpointConfig { return &c.API },
		func(c *Config) *LoggingConfig { return &c.Logging },
		func(c *Config) *ServerConfig { return &c.Server },
		func(c *Config) *TwoFactorConfig { return &c.TwoFactor },
	),
)
