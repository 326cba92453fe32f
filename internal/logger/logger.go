package logger

import (
	"os"

	"survey-grader/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var log *zap.Logger

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// levelFor maps the configured level name onto a zap level. Anything
// unrecognized, including an empty string, lands on info.
func levelFor(name string) zapcore.Level {
	switch name {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// sinkFor returns a rotating file sink when a path is configured and
// stdout otherwise.
func sinkFor(loggerCfg config.LoggerConfig) zapcore.WriteSyncer {
	if loggerCfg.FilePath == "" {
		return zapcore.AddSync(os.Stdout)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   loggerCfg.FilePath,
		MaxSize:    100, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	})
}

// Initialize builds the process-wide logger. Production emits JSON
// lines; every other environment gets the console encoder.
func Initialize(loggerCfg config.LoggerConfig) error {
	encoder := zapcore.NewConsoleEncoder(encoderConfig())
	if loggerCfg.Env == "production" {
		encoder = zapcore.NewJSONEncoder(encoderConfig())
	}

	core := zapcore.NewCore(encoder, sinkFor(loggerCfg), levelFor(loggerCfg.Level))
	log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

// Get returns the process-wide logger. It is nil until Initialize runs.
func Get() *zap.Logger {
	return log
}

// Sync flushes buffered entries. Safe to call before Initialize.
func Sync() error {
	if log == nil {
		return nil
	}
	return log.Sync()
}
