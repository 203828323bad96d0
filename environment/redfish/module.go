package redfish

import (
	"context"
	"fmt"

	"github.com/osbdet/osbdetweb/environment"
)

// RedfishEnvironment powers a bare-metal OSBDET host through its BMC.
type RedfishEnvironment struct {
	environment.DefaultEnvironment
	Config RedfishConfig
	Client *Client
}

type RedfishConfig struct {
	Hostname string `validate:"required"`
	Url      string `validate:"required"`
	System   string
	Username string `validate:"required"`
	Password string `validate:"required"`
	Insecure bool
	Graceful bool
}

func New() environment.Environment {
	return &RedfishEnvironment{}
}

func (e *RedfishEnvironment) Init(config map[string]interface{}) error {
	err := environment.Validate(config, &e.Config)
	if err != nil {
		return fmt.Errorf("error validating %q backend configuration: %w", "redfish", err)
	}
	if e.Config.System == "" {
		e.Config.System = "1"
	}
	e.Client, err = NewClient(e.Config.Url, e.Config.System, e.Config.Username, e.Config.Password, e.Config.Insecure)
	if err != nil {
		return fmt.Errorf("error creating redfish client: %w", err)
	}
	return nil
}

func (e *RedfishEnvironment) State() environment.State {
	powerStateTask, powerStateChan := environment.MakeAsync(func() environment.Result[bool] {
		value, err := e.Client.PowerState(context.Background())
		return environment.Result[bool]{Value: value == PowerStateOn, Err: err}
	})

	pingTask, pingChan := environment.MakeAsync(func() environment.Result[bool] {
		value, err := environment.Ping(e.Config.Hostname)
		return environment.Result[bool]{Value: value, Err: err}
	})

	go powerStateTask()
	go pingTask()

	return environment.State{Running: <-powerStateChan, Reachable: <-pingChan}
}

func (e *RedfishEnvironment) Start(ctx context.Context) (environment.ActionResult, error) {
	return e.switchTo(ctx, PowerStateOn, ResetOn)
}

func (e *RedfishEnvironment) Stop(ctx context.Context) (environment.ActionResult, error) {
	if e.Config.Graceful {
		return e.switchTo(ctx, PowerStateOff, ResetGracefulShutdown)
	}
	return e.switchTo(ctx, PowerStateOff, ResetPushPowerButton)
}

// switchTo leaves the host alone when it is already in the wanted state: a
// power button push on a stopped host would start it.
func (e *RedfishEnvironment) switchTo(ctx context.Context, wanted PowerState, resetType ResetType) (environment.ActionResult, error) {
	current, err := e.Client.PowerState(ctx)
	if err != nil {
		return environment.ActionResult{}, err
	}
	if current == wanted {
		return environment.ActionResult{Output: fmt.Sprintf("host already %s", wanted)}, nil
	}

	err = e.Client.Reset(ctx, resetType)
	if err != nil {
		return environment.ActionResult{Status: 1, Output: err.Error()}, nil
	}
	return environment.ActionResult{}, nil
}
