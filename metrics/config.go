package metrics

import (
	"time"

	"github.com/bookworks/rebook/config/encoding"
	"github.com/bookworks/rebook/logging"
)

// Config represents the configuration of the metric package.
type Config struct {
	Level   encoding.LogLevel `long:"log-level"`
	Enabled bool              `long:"enabled" description:"Expose a prometheus endpoint"`
	Port    int               `long:"port" description:"Port of the prometheus endpoint"`
	Path    string            `long:"path" description:"Path of the prometheus endpoint"`
	Timeout encoding.Duration `long:"timeout" description:"Read-header timeout of the prometheus endpoint"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:   encoding.LogLevel{Level: logging.InfoLevel},
		Enabled: false,
		Port:    2112,
		Path:    "/metrics",
		Timeout: encoding.Duration{Duration: 5 * time.Second},
	}
}
