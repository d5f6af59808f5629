package logging

import (
	"time"

	"go.uber.org/zap"
)

// String constructs a field with the given key and value.
func String(key, val string) zap.Field {
	return zap.String(key, val)
}

// Int constructs a field with the given key and value.
func Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

// Int64 constructs a field with the given key and value.
func Int64(key string, val int64) zap.Field {
	return zap.Int64(key, val)
}

// Uint32 constructs a field with the given key and value.
func Uint32(key string, val uint32) zap.Field {
	return zap.Uint32(key, val)
}

// Uint64 constructs a field with the given key and value.
func Uint64(key string, val uint64) zap.Field {
	return zap.Uint64(key, val)
}

// Duration constructs a field with the given key and value.
func Duration(key string, val time.Duration) zap.Field {
	return zap.Duration(key, val)
}

// Error constructs a field that carries an error.
func Error(err error) zap.Field {
	return zap.Error(err)
}
