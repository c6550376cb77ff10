package machine

import (
	"errors"

	"github.com/KevinKickass/OpenLaundryCore/internal/types"
	"go.uber.org/zap"
)

const (
	// MaxWeightKg is the load limit for every material except wool.
	MaxWeightKg = 8.0

	// AverageDirtDegree splits autodetected batches between MEDIUM and LONG.
	// A batch exactly at the average still gets MEDIUM.
	AverageDirtDegree = 50.0
)

// WashingMachine runs one wash cycle per Start call. It keeps no state
// between calls; the collaborators are used strictly in sequence.
type WashingMachine struct {
	dirtDetector DirtDetector
	engine       Engine
	waterPump    WaterPump
	logger       *zap.Logger
	observer     Observer
}

type Option func(*WashingMachine)

func WithLogger(logger *zap.Logger) Option {
	return func(m *WashingMachine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(m *WashingMachine) {
		m.observer = observer
	}
}

func NewWashingMachine(dirtDetector DirtDetector, engine Engine, waterPump WaterPump, opts ...Option) *WashingMachine {
	m := &WashingMachine{
		dirtDetector: dirtDetector,
		engine:       engine,
		waterPump:    waterPump,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MaxWeightFor returns the exclusive weight limit for a material.
func MaxWeightFor(material types.Material) float64 {
	if material == types.MaterialWool {
		return MaxWeightKg / 2
	}
	return MaxWeightKg
}

// Start validates the batch, resolves the program and drives the pump and
// engine. Collaborator failures are reported in the returned status.
func (m *WashingMachine) Start(batch types.LaundryBatch, config types.ProgramConfiguration) types.LaundryStatus {
	c := &cycle{machine: m, state: StateIdle}

	status := c.run(batch, config)
	c.moveTo(StateDone)

	fields := []zap.Field{
		zap.String("material", string(batch.Material)),
		zap.Float64("weight_kg", batch.WeightKg),
		zap.String("error_code", string(status.ErrorCode)),
		zap.String("program", status.ProgramName()),
	}
	if status.Succeeded() {
		m.logger.Info("Wash cycle completed", fields...)
	} else {
		m.logger.Warn("Wash cycle failed", fields...)
	}

	return status
}

func (m *WashingMachine) resolveProgram(batch types.LaundryBatch, config types.ProgramConfiguration) types.Program {
	if config.Program != types.ProgramAutodetect {
		return config.Program
	}

	degree := m.dirtDetector.DetectDirtDegree(batch)
	program := types.ProgramMedium
	if degree.Float64() > AverageDirtDegree {
		program = types.ProgramLong
	}

	m.logger.Debug("Program autodetected",
		zap.Float64("dirt_degree", degree.Float64()),
		zap.String("program", string(program)))

	return program
}

// cycle holds the state of a single Start call.
type cycle struct {
	machine *WashingMachine
	state   State
}

func (c *cycle) run(batch types.LaundryBatch, config types.ProgramConfiguration) types.LaundryStatus {
	m := c.machine

	c.moveTo(StateValidating)
	if batch.WeightKg >= MaxWeightFor(batch.Material) {
		return types.FailureStatus(types.ErrorCodeTooHeavy, nil)
	}

	c.moveTo(StateResolvingProgram)
	program := m.resolveProgram(batch, config)

	c.moveTo(StatePouring)
	if err := m.waterPump.Pour(batch.WeightKg); err != nil {
		return c.fail(types.ErrorCodeWaterPumpFailure, program, err)
	}

	c.moveTo(StateWashing)
	if err := m.engine.RunWashing(program.TimeInMinutes()); err != nil {
		return c.fail(types.ErrorCodeEngineFailure, program, err)
	}

	c.moveTo(StateReleasing)
	if err := m.waterPump.Release(); err != nil {
		return c.fail(types.ErrorCodeWaterPumpFailure, program, err)
	}

	if config.Spin {
		c.moveTo(StateSpinning)
		if err := m.engine.Spin(); err != nil {
			return c.fail(types.ErrorCodeEngineFailure, program, err)
		}
	}

	return types.SuccessStatus(program)
}

func (c *cycle) fail(code types.ErrorCode, program types.Program, err error) types.LaundryStatus {
	op := string(c.state)
	var pumpErr *WaterPumpError
	var engineErr *EngineError
	switch {
	case errors.As(err, &pumpErr):
		op = pumpErr.Op
	case errors.As(err, &engineErr):
		op = engineErr.Op
	}

	c.machine.logger.Warn("Actuator failure",
		zap.String("state", string(c.state)),
		zap.String("operation", op),
		zap.String("error_code", string(code)),
		zap.Error(err))

	return types.FailureStatus(code, program.Ptr())
}

func (c *cycle) moveTo(to State) {
	from := c.state
	if err := ValidateTransition(from, to); err != nil {
		c.machine.logger.Error("Unexpected cycle transition", zap.Error(err))
	}
	c.state = to

	c.machine.logger.Debug("Cycle state changed",
		zap.String("from", string(from)),
		zap.String("to", string(to)))

	if c.machine.observer != nil {
		c.machine.observer.OnTransition(from, to)
	}
}
