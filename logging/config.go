package logging

// Config contains the configurable items for this package.
type Config struct {
	Environment string `long:"env" choice:"dev" choice:"prod" description:"Logger environment"`
	Level       Level
}

// NewDefaultConfig creates an instance of the package-specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Environment: "dev",
		Level:       InfoLevel,
	}
}
