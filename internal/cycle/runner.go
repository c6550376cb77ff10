package cycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KevinKickass/OpenLaundryCore/internal/machine"
	"github.com/KevinKickass/OpenLaundryCore/internal/metrics"
	"github.com/KevinKickass/OpenLaundryCore/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrMachineBusy    = errors.New("machine is busy")
	ErrInvalidRequest = errors.New("invalid wash request")
	ErrNoActuators    = errors.New("no actuators configured")
)

type Request struct {
	Batch  types.LaundryBatch         `json:"batch"`
	Config types.ProgramConfiguration `json:"config"`
}

func (r Request) Validate() error {
	if err := r.Batch.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := r.Config.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Report describes one finished cycle.
type Report struct {
	ID          uuid.UUID                  `json:"id"`
	Batch       types.LaundryBatch         `json:"batch"`
	Config      types.ProgramConfiguration `json:"config"`
	Status      types.LaundryStatus        `json:"status"`
	Transitions []machine.Transition       `json:"transitions"`
	StartedAt   time.Time                  `json:"started_at"`
	FinishedAt  time.Time                  `json:"finished_at"`
}

// Actuators are the collaborators handed to every cycle.
type Actuators struct {
	Detector machine.DirtDetector
	Engine   machine.Engine
	Pump     machine.WaterPump
}

func (a Actuators) complete() bool {
	return a.Detector != nil && a.Engine != nil && a.Pump != nil
}

// MachineStatus is the runner's view of the machine.
type MachineStatus struct {
	State     machine.State `json:"state"`
	Running   bool          `json:"running"`
	CycleID   string        `json:"cycle_id,omitempty"`
	LastCycle *Report       `json:"last_cycle,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
}

// Runner serializes wash cycles on a single machine. A request arriving while
// a cycle runs is rejected with ErrMachineBusy.
type Runner struct {
	logger *zap.Logger

	busy sync.Mutex

	mu        sync.RWMutex
	actuators Actuators
	state     machine.State
	currentID uuid.UUID
	last      *Report

	subsMu      sync.RWMutex
	subscribers []Subscriber
}

func NewRunner(actuators Actuators, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		logger:    logger,
		actuators: actuators,
		state:     machine.StateIdle,
	}
}

// SetActuators swaps the devices used by subsequent cycles.
func (r *Runner) SetActuators(actuators Actuators) error {
	if !r.busy.TryLock() {
		return ErrMachineBusy
	}
	defer r.busy.Unlock()

	r.mu.Lock()
	r.actuators = actuators
	r.mu.Unlock()
	return nil
}

// Run executes one cycle and blocks until it is done.
func (r *Runner) Run(ctx context.Context, req Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !r.busy.TryLock() {
		metrics.RecordBusyRejection()
		r.logger.Warn("Wash request rejected, machine busy")
		return nil, ErrMachineBusy
	}
	defer r.busy.Unlock()

	r.mu.RLock()
	actuators := r.actuators
	r.mu.RUnlock()
	if !actuators.complete() {
		return nil, ErrNoActuators
	}

	report := &Report{
		ID:        uuid.New(),
		Batch:     req.Batch,
		Config:    req.Config,
		StartedAt: time.Now(),
	}
	logger := r.logger.With(zap.String("cycle_id", report.ID.String()))

	r.mu.Lock()
	r.currentID = report.ID
	r.state = machine.StateIdle
	r.mu.Unlock()

	metrics.SetCycleRunning(true)
	defer metrics.SetCycleRunning(false)

	r.publish(Event{Type: EventStarted, CycleID: report.ID, Timestamp: report.StartedAt})
	logger.Info("Wash cycle started",
		zap.String("material", string(req.Batch.Material)),
		zap.Float64("weight_kg", req.Batch.WeightKg),
		zap.String("program", string(req.Config.Program)),
		zap.Bool("spin", req.Config.Spin))

	observer := machine.ObserverFunc(func(from, to machine.State) {
		report.Transitions = append(report.Transitions, machine.Transition{From: from, To: to})

		r.mu.Lock()
		r.state = to
		r.mu.Unlock()

		r.publish(Event{Type: EventState, CycleID: report.ID, From: from, To: to, Timestamp: time.Now()})
	})

	wm := machine.NewWashingMachine(actuators.Detector, actuators.Engine, actuators.Pump,
		machine.WithLogger(logger),
		machine.WithObserver(observer))

	report.Status = wm.Start(req.Batch, req.Config)
	report.FinishedAt = time.Now()

	metrics.RecordCycle(
		string(report.Status.Result),
		string(report.Status.ErrorCode),
		string(req.Config.Program),
		report.Status.ProgramName(),
		report.FinishedAt.Sub(report.StartedAt))

	r.mu.Lock()
	r.last = report
	r.currentID = uuid.Nil
	r.mu.Unlock()

	status := report.Status
	r.publish(Event{Type: EventFinished, CycleID: report.ID, Status: &status, Timestamp: report.FinishedAt})

	return report, nil
}

func (r *Runner) Status() MachineStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := MachineStatus{
		State:     r.state,
		Running:   r.currentID != uuid.Nil,
		LastCycle: r.last,
		CheckedAt: time.Now(),
	}
	if status.Running {
		status.CycleID = r.currentID.String()
	}
	return status
}
