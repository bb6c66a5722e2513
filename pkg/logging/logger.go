// Package logging builds the zap.Logger every other package receives by
// injection (the sync core logs through *zap.Logger fields, never through
// a global). Configuration comes from config.Logger (LogEncoding,
// LogLevel, LogPath).
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nspcc-dev/glasschain/pkg/config"
)

// New builds a zap.Logger from cfg. An empty LogPath logs to stderr;
// otherwise it logs to the given file path in addition to stderr.
func New(cfg config.Logger) (*zap.Logger, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.LogTimestamp != nil && !*cfg.LogTimestamp {
		encoderCfg.TimeKey = ""
	}

	var encoder zapcore.Encoder
	if cfg.LogEncoding == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	sinks := []zapcore.WriteSyncer{zapcore.Lock(zapcore.AddSync(stderr))}
	if cfg.LogPath != "" {
		file, err := openLogFile(cfg.LogPath)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		sinks = append(sinks, zapcore.AddSync(file))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	return zap.New(core, zap.AddCaller()), nil
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LogLevel %q: %w", s, err)
	}
	return level, nil
}
