package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// A Level is a logging priority. Higher levels are more important.
type Level int8

// Logging levels (matching zap core internals).
const (
	// DebugLevel logs are typically voluminous, and are usually disabled in
	// production.
	DebugLevel Level = -1
	// InfoLevel is the default logging priority.
	InfoLevel Level = 0
	// WarnLevel logs are more important than Info, but don't need individual
	// human review.
	WarnLevel Level = 1
	// ErrorLevel logs are high-priority. If an application is running smoothly,
	// it shouldn't generate any error-level logs.
	ErrorLevel Level = 2
	// PanicLevel logs a message, then panics.
	PanicLevel Level = 4
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel Level = 5
)

// ParseLevel parses a level string as used in config files and flags.
func ParseLevel(l string) (Level, error) {
	switch l {
	case "Debug", "debug", "DEBUG":
		return DebugLevel, nil
	case "Info", "info", "INFO":
		return InfoLevel, nil
	case "Warning", "warning", "WARNING":
		return WarnLevel, nil
	case "Error", "error", "ERROR":
		return ErrorLevel, nil
	case "Panic", "panic", "PANIC":
		return PanicLevel, nil
	case "Fatal", "fatal", "FATAL":
		return FatalLevel, nil
	}
	return Level(0), fmt.Errorf("invalid log level: %v", l)
}

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "Debug"
	case InfoLevel:
		return "Info"
	case WarnLevel:
		return "Warning"
	case ErrorLevel:
		return "Error"
	case PanicLevel:
		return "Panic"
	case FatalLevel:
		return "Fatal"
	}
	return "Unknown"
}

// MarshalText marshals a level into its config-file representation.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText unmarshals a level from bytes.
func (l *Level) UnmarshalText(text []byte) error {
	lvl, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = lvl
	return nil
}

// ZapLevel returns the equivalent zap core level.
func (l Level) ZapLevel() zapcore.Level {
	return zapcore.Level(l)
}

// Logger is a thin wrapper over a zap logger that keeps hold of its config so
// loggers can be cloned, renamed and have their level changed at runtime.
type Logger struct {
	*zap.Logger
	config *zap.Config
	name   string
}

// New creates a logger from a built zap core and the config used to build it.
func New(core zapcore.Core, cfg *zap.Config) *Logger {
	return &Logger{
		Logger: zap.New(core),
		config: cfg,
	}
}

// Clone builds an independent copy of the logger.
func (log *Logger) Clone() *Logger {
	newConfig := cloneConfig(log.config)
	newLogger, err := newConfig.Build()
	if err != nil {
		panic(err)
	}
	return &Logger{
		Logger: newLogger,
		config: newConfig,
		name:   log.name,
	}
}

// GetLevel returns the current level of the logger.
func (log *Logger) GetLevel() Level {
	return (Level)(log.config.Level.Level())
}

// GetName returns the name of the logger.
func (log *Logger) GetName() string {
	return log.name
}

// Named clones the logger and gives the clone a dot-separated name suffix.
func (log *Logger) Named(name string) *Logger {
	c := log.Clone()
	newName := name
	if log.name != "" {
		newName = fmt.Sprintf("%s.%s", log.name, name)
	}
	return &Logger{
		Logger: c.Logger.Named(newName),
		config: c.config,
		name:   newName,
	}
}

// SetLevel changes the level of the logger.
func (log *Logger) SetLevel(level Level) {
	lvl := (zapcore.Level)(level)
	if log.config.Level.Level() == lvl {
		return
	}
	log.config.Level.SetLevel(lvl)
}

// With clones the logger, attaching the given fields to every message.
func (log *Logger) With(fields ...zap.Field) *Logger {
	c := log.Clone()
	return &Logger{
		Logger: c.Logger.With(fields...),
		config: c.config,
		name:   c.name,
	}
}

// AtExit flushes the logs before exiting the process. This is meant to be
// used with defer when initializing your logger.
func (log *Logger) AtExit() {
	if log.Logger != nil {
		log.Logger.Sync()
	}
}

func cloneConfig(cfg *zap.Config) *zap.Config {
	c := zap.Config{
		Level:             zap.NewAtomicLevelAt(cfg.Level.Level()),
		Development:       cfg.Development,
		DisableCaller:     cfg.DisableCaller,
		DisableStacktrace: cfg.DisableStacktrace,
		Sampling:          nil,
		Encoding:          cfg.Encoding,
		EncoderConfig:     cfg.EncoderConfig,
		OutputPaths:       cfg.OutputPaths,
		ErrorOutputPaths:  cfg.ErrorOutputPaths,
		InitialFields:     make(map[string]interface{}),
	}
	for k, v := range cfg.InitialFields {
		c.InitialFields[k] = v
	}
	if cfg.Sampling != nil {
		c.Sampling = &zap.SamplingConfig{
			Initial:    cfg.Sampling.Initial,
			Thereafter: cfg.Sampling.Thereafter,
		}
	}
	return &c
}

// NewDevLogger creates a console logger at debug level, for local runs and
// tests.
func NewDevLogger() *Logger {
	encoderConfig := zapcore.EncoderConfig{
		CallerKey:      "C",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		LevelKey:       "L",
		LineEnding:     "\n",
		MessageKey:     "M",
		NameKey:        "N",
		TimeKey:        "T",
	}
	config := &zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.Level(DebugLevel)),
		Development:      true,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		os.Stderr,
		config.Level,
	)
	return New(core, config)
}

// NewProdLogger creates a JSON logger at info level.
func NewProdLogger() *Logger {
	encoderConfig := zapcore.EncoderConfig{
		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeName:     zapcore.FullNameEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		LevelKey:       "level",
		LineEnding:     "\n",
		MessageKey:     "message",
		NameKey:        "logger",
		StacktraceKey:  "stacktrace",
		TimeKey:        "@timestamp",
	}
	config := &zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.Level(InfoLevel)),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		os.Stderr,
		config.Level,
	)
	return New(core, config)
}

// NewLoggerFromConfig creates a logger according to the given config.
func NewLoggerFromConfig(cfg Config) *Logger {
	var log *Logger
	if cfg.Environment == "dev" {
		log = NewDevLogger()
	} else {
		log = NewProdLogger()
	}
	log.SetLevel(cfg.Level)
	return log
}

// NewTestLogger creates a logger for use in tests.
func NewTestLogger() *Logger {
	return NewDevLogger()
}
