package config

import (
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// DefaultAddr is the loopback address the daemon API listens on.
const DefaultAddr = "127.0.0.1:7391"

// DefaultConfig returns the built-in configuration as a flat koanf map.
func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"storage.backend": BackendBadger,
		"storage.path":    "",
		"storage.seed":    true,

		"daemon.addr":             DefaultAddr,
		"daemon.startup_wait":     "500ms",
		"daemon.kill_timeout":     "5s",
		"daemon.shutdown_timeout": "3s",

		"notify.desktop":      true,
		"notify.rate_per_sec": 5,
		"notify.timeout":      "10s",

		"scheduler.delivery_timeout": "15s",
	}
}

// NewDefaultProvider returns a koanf provider for DefaultConfig.
func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

// Default returns the built-in configuration without reading files or the
// environment.
func Default() *Config {
	k := koanf.New(".")
	_ = k.Load(NewDefaultProvider(), nil)

	var cfg Config
	_ = k.Unmarshal("", &cfg)
	return &cfg
}
