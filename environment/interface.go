package environment

import (
	"context"
	"errors"
)

var ErrUnsupported = errors.New("operation not supported by this backend")

// ActionResult is the outcome of a lifecycle action on the environment.
// A zero Status means success; Output carries whatever the action printed.
type ActionResult struct {
	Status int    `json:"status"`
	Output string `json:"output"`
}

func (r ActionResult) Succeeded() bool {
	return r.Status == 0
}

type State struct {
	Running   Result[bool]
	Reachable Result[bool]
}

type Environment interface {
	Init(config map[string]interface{}) error
	State() State
	Start(ctx context.Context) (ActionResult, error)
	Stop(ctx context.Context) (ActionResult, error)
}

type DefaultEnvironment struct{}

func (*DefaultEnvironment) Init(config map[string]interface{}) error {
	return nil
}

func (*DefaultEnvironment) State() State {
	return State{}
}

func (*DefaultEnvironment) Start(ctx context.Context) (ActionResult, error) {
	return ActionResult{}, ErrUnsupported
}

func (*DefaultEnvironment) Stop(ctx context.Context) (ActionResult, error) {
	return ActionResult{}, ErrUnsupported
}
