package main

import (
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newLogger(scope string) zerolog.Logger {
	var outputWriter io.Writer = os.Stderr
	if gin.Mode() != gin.ReleaseMode {
		outputWriter = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.
		New(outputWriter).
		With().
		Timestamp().
		Str("scope", scope).
		Logger()
}
