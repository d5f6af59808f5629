package processor

import (
	"github.com/bookworks/rebook/config/encoding"
	"github.com/bookworks/rebook/logging"
)

const namedLogger = "processor"

// defaultBufferSize is the number of output rows buffered between flushes,
// sized to keep write syscalls off the per-event path.
const defaultBufferSize = 8192

// Config represent the configuration of the processor package.
type Config struct {
	Level      encoding.LogLevel `long:"log-level"`
	BufferSize int               `long:"buffer-size" description:"Number of output rows buffered between flushes"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:      encoding.LogLevel{Level: logging.InfoLevel},
		BufferSize: defaultBufferSize,
	}
}
