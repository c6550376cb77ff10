package devices

import (
	"errors"
	"sync"
	"time"

	"github.com/KevinKickass/OpenLaundryCore/internal/machine"
	"github.com/KevinKickass/OpenLaundryCore/internal/types"
	"go.uber.org/zap"
)

// ErrSimulatedFault is wrapped by every failure a simulated device injects.
var ErrSimulatedFault = errors.New("simulated fault")

const (
	DevicePump     = "pump"
	DeviceEngine   = "engine"
	DeviceDetector = "detector"
)

// Entry is one call made against a simulated device.
type Entry struct {
	Device string    `json:"device"`
	Op     string    `json:"op"`
	Arg    any       `json:"arg,omitempty"`
	Err    string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

// DefaultJournalLimit is how many recent entries a Journal keeps when Limit is unset.
const DefaultJournalLimit = 1024

// Journal records calls across all devices of a rig in order. Only the most
// recent Limit entries are kept.
type Journal struct {
	Limit int

	mu      sync.Mutex
	entries []Entry
}

func (j *Journal) add(device, op string, arg any, err error) {
	e := Entry{Device: device, Op: op, Arg: arg, At: time.Now()}
	if err != nil {
		e.Err = err.Error()
	}

	limit := j.Limit
	if limit <= 0 {
		limit = DefaultJournalLimit
	}

	j.mu.Lock()
	if len(j.entries) >= limit {
		n := copy(j.entries, j.entries[len(j.entries)-limit+1:])
		j.entries = j.entries[:n]
	}
	j.entries = append(j.entries, e)
	j.mu.Unlock()
}

func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Entry(nil), j.entries...)
}

// Ops returns "device.op" for every entry, in call order.
func (j *Journal) Ops() []string {
	entries := j.Entries()
	ops := make([]string, 0, len(entries))
	for _, e := range entries {
		ops = append(ops, e.Device+"."+e.Op)
	}
	return ops
}

func (j *Journal) Reset() {
	j.mu.Lock()
	j.entries = nil
	j.mu.Unlock()
}

func failSet(ops []string) map[string]bool {
	set := make(map[string]bool, len(ops))
	for _, op := range ops {
		set[op] = true
	}
	return set
}

type SimulatedPump struct {
	profile PumpProfile
	failOn  map[string]bool
	journal *Journal
	logger  *zap.Logger
}

func NewSimulatedPump(profile PumpProfile, journal *Journal, logger *zap.Logger) *SimulatedPump {
	return &SimulatedPump{
		profile: profile,
		failOn:  failSet(profile.FailOn),
		journal: journal,
		logger:  logger,
	}
}

func (p *SimulatedPump) Pour(weightKg float64) error {
	var err error
	if p.failOn[OpPour] {
		err = &machine.WaterPumpError{Op: OpPour, Err: ErrSimulatedFault}
	}
	p.journal.add(DevicePump, OpPour, weightKg, err)

	p.logger.Debug("Pump pouring",
		zap.Float64("weight_kg", weightKg),
		zap.Float64("liters", weightKg*p.profile.LitersPerKg),
		zap.Error(err))
	return err
}

func (p *SimulatedPump) Release() error {
	var err error
	if p.failOn[OpRelease] {
		err = &machine.WaterPumpError{Op: OpRelease, Err: ErrSimulatedFault}
	}
	p.journal.add(DevicePump, OpRelease, nil, err)

	p.logger.Debug("Pump releasing", zap.Error(err))
	return err
}

type SimulatedEngine struct {
	profile        EngineProfile
	failOn         map[string]bool
	minuteDuration time.Duration
	journal        *Journal
	logger         *zap.Logger
}

func NewSimulatedEngine(profile EngineProfile, minuteDuration time.Duration, journal *Journal, logger *zap.Logger) *SimulatedEngine {
	return &SimulatedEngine{
		profile:        profile,
		failOn:         failSet(profile.FailOn),
		minuteDuration: minuteDuration,
		journal:        journal,
		logger:         logger,
	}
}

func (e *SimulatedEngine) RunWashing(minutes int) error {
	var err error
	if e.failOn[OpRunWashing] {
		err = &machine.EngineError{Op: OpRunWashing, Err: ErrSimulatedFault}
	} else if e.minuteDuration > 0 {
		time.Sleep(time.Duration(minutes) * e.minuteDuration)
	}
	e.journal.add(DeviceEngine, OpRunWashing, minutes, err)

	e.logger.Debug("Engine washing", zap.Int("minutes", minutes), zap.Error(err))
	return err
}

func (e *SimulatedEngine) Spin() error {
	var err error
	if e.failOn[OpSpin] {
		err = &machine.EngineError{Op: OpSpin, Err: ErrSimulatedFault}
	}
	e.journal.add(DeviceEngine, OpSpin, nil, err)

	e.logger.Debug("Engine spinning", zap.Int("rpm", e.profile.SpinRPM), zap.Error(err))
	return err
}

type SimulatedDetector struct {
	profile DetectorProfile
	journal *Journal
}

func NewSimulatedDetector(profile DetectorProfile, journal *Journal) *SimulatedDetector {
	return &SimulatedDetector{profile: profile, journal: journal}
}

func (d *SimulatedDetector) DetectDirtDegree(batch types.LaundryBatch) types.Percentage {
	degree := d.profile.DirtDegree
	if v, ok := d.profile.DirtByMaterial[batch.Material]; ok {
		degree = v
	}
	d.journal.add(DeviceDetector, "detect", degree, nil)

	p, err := types.NewPercentage(degree)
	if err != nil {
		// Schema validation bounds the degree; clamp anything built in code.
		if degree < 0 {
			return 0
		}
		return 100
	}
	return p
}

var (
	_ machine.WaterPump    = (*SimulatedPump)(nil)
	_ machine.Engine       = (*SimulatedEngine)(nil)
	_ machine.DirtDetector = (*SimulatedDetector)(nil)
)
