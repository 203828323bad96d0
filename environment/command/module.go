package command

import (
	"context"
	"fmt"
	"time"

	"github.com/osbdet/osbdetweb/environment"
)

// CommandEnvironment drives the local environment through plain commands,
// "sudo poweroff" being the usual stop command.
type CommandEnvironment struct {
	environment.DefaultEnvironment
	Config CommandConfig
}

type CommandConfig struct {
	Stop    []string `validate:"required,min=1,dive,required"`
	Start   []string `validate:"omitempty,dive,required"`
	Status  []string `validate:"omitempty,dive,required"`
	Timeout time.Duration
}

const defaultTimeout = 30 * time.Second

func New() environment.Environment {
	return &CommandEnvironment{}
}

func (e *CommandEnvironment) Init(config map[string]interface{}) error {
	err := environment.Validate(config, &e.Config)
	if err != nil {
		return fmt.Errorf("error validating %q backend configuration: %w", "command", err)
	}
	if e.Config.Timeout == 0 {
		e.Config.Timeout = defaultTimeout
	}
	return nil
}

// State reports the environment as running and reachable unless a status
// command is configured: answering at all means the host is up.
func (e *CommandEnvironment) State() environment.State {
	if len(e.Config.Status) == 0 {
		up := environment.Result[bool]{Value: true}
		return environment.State{Running: up, Reachable: up}
	}

	result, err := environment.Run(context.Background(), e.Config.Timeout, e.Config.Status)
	running := environment.Result[bool]{Value: err == nil && result.Succeeded(), Err: err}
	return environment.State{Running: running, Reachable: running}
}

func (e *CommandEnvironment) Start(ctx context.Context) (environment.ActionResult, error) {
	return environment.Run(ctx, e.Config.Timeout, e.Config.Start)
}

func (e *CommandEnvironment) Stop(ctx context.Context) (environment.ActionResult, error) {
	return environment.Run(ctx, e.Config.Timeout, e.Config.Stop)
}
