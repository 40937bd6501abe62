// Package logging provides the process logger and request-scoped logging in
// the Cloud Logging structured format.
package logging

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/janisto/profile-directory/internal/platform/timeutil"
)

var (
	loggerOnce sync.Once
	baseLogger *zap.Logger
	loggerErr  error
	level      = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// severities maps zap levels onto Cloud Logging LogSeverity names.
var severities = map[zapcore.Level]string{
	zapcore.DebugLevel:  "DEBUG",
	zapcore.InfoLevel:   "INFO",
	zapcore.WarnLevel:   "WARNING",
	zapcore.ErrorLevel:  "ERROR",
	zapcore.DPanicLevel: "CRITICAL",
	zapcore.PanicLevel:  "ALERT",
	zapcore.FatalLevel:  "EMERGENCY",
}

func encodeSeverity(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	severity, ok := severities[l]
	if !ok {
		severity = "DEFAULT"
	}
	enc.AppendString(severity)
}

func encodeTimeMicros(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(timeutil.RFC3339Micros))
}

func buildLogger() (*zap.Logger, error) {
	encoder := zap.NewProductionEncoderConfig()
	encoder.TimeKey = "timestamp"
	encoder.EncodeTime = encodeTimeMicros
	encoder.LevelKey = "severity"
	encoder.EncodeLevel = encodeSeverity
	encoder.MessageKey = "message"

	cfg := zap.Config{
		Level:            level,
		Encoding:         "json",
		EncoderConfig:    encoder,
		Sampling:         &zap.SamplingConfig{Initial: 100, Thereafter: 100},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stdout"},
	}
	return cfg.Build(zap.AddCaller())
}

// Logger returns the process-wide logger. If construction failed it is a
// no-op logger and Err reports why.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		baseLogger, loggerErr = buildLogger()
		if loggerErr != nil {
			baseLogger = zap.NewNop()
		}
	})
	return baseLogger
}

// Err reports a logger construction failure.
func Err() error {
	Logger()
	return loggerErr
}

// Sync flushes buffered entries; call it on shutdown.
func Sync() error {
	return Logger().Sync()
}

// SetLevel changes the minimum enabled level at runtime. Unknown names leave
// the level unchanged and return false.
func SetLevel(name string) bool {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return false
	}
	level.SetLevel(l)
	return true
}
