package machine

import "fmt"

// WaterPumpError is returned by a WaterPump when pouring or releasing fails.
type WaterPumpError struct {
	Op  string
	Err error
}

func (e *WaterPumpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("water pump %s failed", e.Op)
	}
	return fmt.Sprintf("water pump %s failed: %v", e.Op, e.Err)
}

func (e *WaterPumpError) Unwrap() error {
	return e.Err
}

// EngineError is returned by an Engine when washing or spinning fails.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("engine %s failed", e.Op)
	}
	return fmt.Sprintf("engine %s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}
