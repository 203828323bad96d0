package environment

import (
	"context"
	"time"
)

type ServiceStatus string

const (
	ServiceRunning ServiceStatus = "running"
	ServiceStopped ServiceStatus = "stopped"
	ServiceUnknown ServiceStatus = "unknown"
)

type ServiceChecker interface {
	ServiceStatus(ctx context.Context, unit string) ServiceStatus
}

// SystemdChecker asks systemd whether a unit is active.
type SystemdChecker struct {
	Systemctl string
	Timeout   time.Duration
}

func NewSystemdChecker() *SystemdChecker {
	return &SystemdChecker{Systemctl: "systemctl", Timeout: 5 * time.Second}
}

func (s *SystemdChecker) ServiceStatus(ctx context.Context, unit string) ServiceStatus {
	result, err := Run(ctx, s.Timeout, []string{s.Systemctl, "is-active", unit})
	if err != nil {
		return ServiceUnknown
	}
	return parseIsActive(result)
}

// parseIsActive maps the answer of "systemctl is-active" onto a service status.
func parseIsActive(result ActionResult) ServiceStatus {
	switch result.Output {
	case "active", "reloading", "activating":
		return ServiceRunning
	case "inactive", "failed", "deactivating":
		return ServiceStopped
	}
	if result.Succeeded() {
		return ServiceRunning
	}
	return ServiceUnknown
}
