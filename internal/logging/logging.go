package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process. Development builds log at debug
// level; everything else at info.
func Setup(environment string) zerolog.Logger {
	return SetupWithWriter(environment, os.Stderr)
}

// SetupWithWriter configures zerolog to write human-readable output to w.
func SetupWithWriter(environment string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if environment == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: w}).
		With().Timestamp().Logger().
		Level(level)
	log.Logger = logger
	return logger
}
