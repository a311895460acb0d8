package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
)

var (
	global *zap.Logger
	once   sync.Once
)

// Init builds the global logger. Production deployments get JSON output,
// everything else gets the human-readable development encoder.
func Init() {
	once.Do(func() {
		var (
			l   *zap.Logger
			err error
		)
		if os.Getenv("APP_ENV") == "production" {
			l, err = zap.NewProduction()
		} else {
			l, err = zap.NewDevelopment()
		}
		if err != nil {
			panic("failed to initialize logger: " + err.Error())
		}
		global = l
	})
}

// L returns the global logger, initializing it on first use.
func L() *zap.Logger {
	if global == nil {
		Init()
	}
	return global
}

// Sync flushes buffered log entries. Safe to call on shutdown.
func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}
