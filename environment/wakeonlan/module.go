package wakeonlan

import (
	"context"
	"fmt"

	"github.com/osbdet/osbdetweb/environment"

	"github.com/linde12/gowol"
)

// WakeOnLanEnvironment can only wake a sleeping OSBDET host; stopping it
// is left to another backend.
type WakeOnLanEnvironment struct {
	environment.DefaultEnvironment
	Config WakeOnLanConfig
}

type WakeOnLanConfig struct {
	Hostname  string `validate:"required"`
	Mac       string `validate:"required,mac"`
	Broadcast string `validate:"omitempty,ip"`
}

func New() environment.Environment {
	return &WakeOnLanEnvironment{}
}

func (e *WakeOnLanEnvironment) Init(config map[string]interface{}) error {
	err := environment.Validate(config, &e.Config)
	if err != nil {
		return fmt.Errorf("error validating %q backend configuration: %w", "wol", err)
	}
	if e.Config.Broadcast == "" {
		e.Config.Broadcast = "255.255.255.255"
	}
	return nil
}

func (e *WakeOnLanEnvironment) State() environment.State {
	ping, err := environment.Ping(e.Config.Hostname)
	reachable := environment.Result[bool]{Value: ping, Err: err}
	return environment.State{Running: reachable, Reachable: reachable}
}

func (e *WakeOnLanEnvironment) Start(ctx context.Context) (environment.ActionResult, error) {
	packet, err := gowol.NewMagicPacket(e.Config.Mac)
	if err != nil {
		return environment.ActionResult{}, fmt.Errorf("error creating the magic packet: %w", err)
	}
	err = packet.Send(e.Config.Broadcast)
	if err != nil {
		return environment.ActionResult{}, fmt.Errorf("error sending the magic packet: %w", err)
	}
	return environment.ActionResult{}, nil
}
