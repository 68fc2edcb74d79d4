package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"mw_harvester/config"
)

const (
	maxLogSizeMB = 20
	maxBackups   = 3
)

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// ParseLevel maps LOG_LEVEL to a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Setup builds the process logger: human-readable lines on stdout and JSON
// lines in a size-rotated file. The returned closer flushes the file.
func Setup(cfg config.LogConfig) (*zap.Logger, io.Closer) {
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	console := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.Lock(zapcore.AddSync(os.Stdout)),
		level,
	)
	if cfg.File == "" {
		return zap.New(console, zap.AddCaller()), nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxBackups,
		LocalTime:  true,
	}
	file := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(rotator), level)

	return zap.New(zapcore.NewTee(console, file), zap.AddCaller()), rotator
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
