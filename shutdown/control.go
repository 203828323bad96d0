// Package shutdown implements the power-off control shared by every page,
// the API, the CLI and the Discord bot.
package shutdown

import (
	"context"

	"github.com/osbdet/osbdetweb/environment"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	MsgStopped     = "Environment stopped"
	MsgStopFailure = "ERROR: unable to stop OSBDET - "
)

type Stopper interface {
	Stop(ctx context.Context) (environment.ActionResult, error)
}

// Control requests the power-off of the whole environment. It keeps no
// state between calls: concurrent requests run and log independently.
type Control struct {
	stopper  Stopper
	logger   zerolog.Logger
	requests *prometheus.CounterVec
}

func NewControl(stopper Stopper, logger zerolog.Logger, registerer prometheus.Registerer) *Control {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osbdetweb_poweroff_requests_total",
			Help: "Total number of power-off requests by outcome.",
		},
		[]string{"outcome"},
	)
	if registerer != nil {
		registerer.MustRegister(requests)
	}
	return &Control{stopper, logger, requests}
}

// Request invokes the power-off action once and logs its outcome. Failures
// to reach the action are folded into the result with a -1 status.
func (c *Control) Request(ctx context.Context) environment.ActionResult {
	result, err := c.stopper.Stop(ctx)
	if err != nil {
		result = environment.ActionResult{Status: -1, Output: err.Error()}
	}

	if result.Succeeded() {
		c.requests.WithLabelValues("success").Inc()
		c.logger.Info().Msg(MsgStopped)
	} else {
		c.requests.WithLabelValues("failure").Inc()
		c.logger.Error().Int("status", result.Status).Msg(MsgStopFailure + result.Output)
	}
	return result
}
