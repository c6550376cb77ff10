package interfaces

import (
	"context"

	"github.com/KevinKickass/OpenLaundryCore/internal/config"
	"github.com/KevinKickass/OpenLaundryCore/internal/cycle"
	"github.com/KevinKickass/OpenLaundryCore/internal/devices"
)

// SystemStatus represents the current system state
type SystemStatus struct {
	State        string `json:"state"`
	Profile      string `json:"profile"`
	CycleRunning bool   `json:"cycle_running"`
	LiveClients  int    `json:"live_clients"`
}

type LifecycleManager interface {
	Config() *config.Config
	DeviceManager() *devices.Manager
	Runner() *cycle.Runner
	GetCurrentStatus() SystemStatus
	// SwitchProfile activates a device profile for subsequent cycles.
	SwitchProfile(name string) (*devices.Rig, error)
	Shutdown(ctx context.Context) error
}
