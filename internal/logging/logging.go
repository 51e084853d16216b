// Package logging builds the zap logger used across the tool: a console
// core on stdout, plus a rotating side file when debug mode is on.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DebugLogFile is the fixed side file that receives a copy of every event
// when debug mode is enabled.
const DebugLogFile = "/tmp/uartcom.log"

// Options selects the sinks and verbosity of the logger.
type Options struct {
	Debug bool
}

// New builds the logger. Console output is always on; debug mode lowers the
// level to Debug and tees every event into DebugLogFile with rotation.
func New(opts Options) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}
	if opts.Debug {
		fileWriter := &lumberjack.Logger{
			Filename:   DebugLogFile,
			MaxSize:    10, // MB
			MaxAge:     7,  // days
			MaxBackups: 3,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(fileWriter), zapcore.DebugLevel))
	}

	return zap.New(zapcore.NewTee(cores...))
}
