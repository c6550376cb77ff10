package machine

import "github.com/KevinKickass/OpenLaundryCore/internal/types"

// DirtDetector estimates how soiled a batch is.
type DirtDetector interface {
	DetectDirtDegree(batch types.LaundryBatch) types.Percentage
}

// WaterPump fills and drains the drum. Failures are reported as *WaterPumpError.
type WaterPump interface {
	Pour(weightKg float64) error
	Release() error
}

// Engine drives the drum. Failures are reported as *EngineError.
type Engine interface {
	RunWashing(minutes int) error
	Spin() error
}

// Observer receives every state change of a cycle.
type Observer interface {
	OnTransition(from, to State)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(from, to State)

func (f ObserverFunc) OnTransition(from, to State) {
	f(from, to)
}
