package book

import (
	"github.com/bookworks/rebook/config/encoding"
	"github.com/bookworks/rebook/logging"
)

const namedLogger = "book"

// Config represent the configuration of the book engine.
type Config struct {
	Level                 encoding.LogLevel `long:"log-level"`
	LogPriceLevelsDebug   bool              `long:"log-price-levels-debug"`
	LogRemovedOrdersDebug bool              `long:"log-removed-orders-debug"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:                 encoding.LogLevel{Level: logging.InfoLevel},
		LogPriceLevelsDebug:   false,
		LogRemovedOrdersDebug: false,
	}
}
