package main

import (
	"time"

	"github.com/osbdet/osbdetweb/environment"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func EnvironmentStateMiddleware(env environment.Environment, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := env.State()

		if state.Running.Err != nil {
			logger.Error().Err(state.Running.Err).Msg("Failed to retrieve RUNNING state")
		}
		if state.Reachable.Err != nil {
			logger.Error().Err(state.Reachable.Err).Msg("Failed to retrieve REACHABLE state")
		}

		c.Set("running", state.Running.Value)
		c.Set("reachable", state.Reachable.Value)

		c.Next()
	}
}

// CredentialsMiddleware guards power-off behind basic auth when credentials
// are configured.
func CredentialsMiddleware(config *Config) gin.HandlerFunc {
	if config.Username == "" {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return gin.BasicAuth(gin.Accounts{config.Username: config.Password})
}

func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("http")
	}
}
