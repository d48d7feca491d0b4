package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// Log file rotation limits.
	logFileMaxSizeMB  = 20
	logFileMaxBackups = 3
	logFileMaxAgeDays = 14
)

// setupLogger configures the global logger with a console writer, teed to a rotating
// log file when one is provided.
func setupLogger(level string, file string) (*zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	if file != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			MaxAge:     logFileMaxAgeDays,
			Compress:   true,
		})
	}

	log.Logger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()

	return &log.Logger, nil
}
