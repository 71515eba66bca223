package logger

import (
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log atomic.Pointer[zap.Logger]

func init() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if err := Setup(env == "development"); err != nil {
		panic(err)
	}
}

// Setup rebuilds the process logger. main calls it again once the
// configuration is loaded, since .env may change APP_ENV.
func Setup(development bool) error {
	config := zap.NewProductionConfig()
	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	log.Store(l)
	return nil
}

// Replace swaps the logger, mostly for tests that want zaptest or zap.NewNop.
func Replace(l *zap.Logger) {
	log.Store(l.WithOptions(zap.AddCallerSkip(1)))
}

func Debug(msg string, fields ...zap.Field) {
	log.Load().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	log.Load().Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Load().Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	log.Load().Fatal(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Load().Warn(msg, fields...)
}

func Sync() {
	_ = log.Load().Sync()
}

func Get() *zap.Logger {
	return log.Load()
}
