package machine

import (
	"errors"
	"testing"

	"github.com/KevinKickass/OpenLaundryCore/internal/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	arg  any
}

// recorder implements every collaborator and keeps one ordered call log.
type recorder struct {
	calls  []call
	dirt   types.Percentage
	failOn map[string]error
}

func newRecorder() *recorder {
	return &recorder{failOn: map[string]error{}}
}

func (r *recorder) record(name string, arg any) error {
	r.calls = append(r.calls, call{name: name, arg: arg})
	return r.failOn[name]
}

func (r *recorder) DetectDirtDegree(batch types.LaundryBatch) types.Percentage {
	r.record("detect", batch)
	return r.dirt
}

func (r *recorder) Pour(weightKg float64) error { return r.record("pour", weightKg) }
func (r *recorder) Release() error              { return r.record("release", nil) }
func (r *recorder) RunWashing(minutes int) error {
	return r.record("runWashing", minutes)
}
func (r *recorder) Spin() error { return r.record("spin", nil) }

func (r *recorder) names() []string {
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.name)
	}
	return out
}

var (
	properBatch   = types.LaundryBatch{Material: types.MaterialCotton, WeightKg: 7}
	longWithSpin  = types.ProgramConfiguration{Program: types.ProgramLong, Spin: true}
	successStatus = types.SuccessStatus(types.ProgramLong)
)

func newMachine(r *recorder, opts ...Option) *WashingMachine {
	return NewWashingMachine(r, r, r, opts...)
}

func TestStandardUsage(t *testing.T) {
	r := newRecorder()

	status := newMachine(r).Start(properBatch, longWithSpin)

	assert.Empty(t, cmp.Diff(successStatus, status))
}

func TestCallOrder(t *testing.T) {
	r := newRecorder()

	newMachine(r).Start(properBatch, longWithSpin)

	want := []call{
		{"pour", 7.0},
		{"runWashing", types.ProgramLong.TimeInMinutes()},
		{"release", nil},
		{"spin", nil},
	}
	assert.Empty(t, cmp.Diff(want, r.calls, cmp.AllowUnexported(call{})))
}

func TestNoSpinSkipsOnlySpin(t *testing.T) {
	r := newRecorder()
	config := types.ProgramConfiguration{Program: types.ProgramShort, Spin: false}

	status := newMachine(r).Start(properBatch, config)

	assert.Equal(t, types.SuccessStatus(types.ProgramShort), status)
	assert.Equal(t, []string{"pour", "runWashing", "release"}, r.names())
}

func TestWeightLimits(t *testing.T) {
	tooHeavy := types.FailureStatus(types.ErrorCodeTooHeavy, nil)

	tests := []struct {
		name     string
		material types.Material
		weight   float64
		want     types.LaundryStatus
	}{
		{"wool below half limit", types.MaterialWool, MaxWeightKg/2 - 0.001, successStatus},
		{"wool at half limit", types.MaterialWool, MaxWeightKg / 2, tooHeavy},
		{"wool above half limit", types.MaterialWool, MaxWeightKg/2 + 0.001, tooHeavy},
		{"cotton below limit", types.MaterialCotton, MaxWeightKg - 0.001, successStatus},
		{"cotton at limit", types.MaterialCotton, MaxWeightKg, tooHeavy},
		{"cotton above limit", types.MaterialCotton, MaxWeightKg + 0.001, tooHeavy},
		{"jeans at wool limit", types.MaterialJeans, MaxWeightKg / 2, successStatus},
		{"synthetic at limit", types.MaterialSynthetic, MaxWeightKg, tooHeavy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecorder()
			batch := types.LaundryBatch{Material: tt.material, WeightKg: tt.weight}

			status := newMachine(r).Start(batch, longWithSpin)

			assert.Equal(t, tt.want, status)
			if !status.Succeeded() {
				assert.Empty(t, r.calls, "rejected batch must not touch any collaborator")
			}
		})
	}
}

func TestActuatorFailures(t *testing.T) {
	pumpErr := &WaterPumpError{Op: "pour"}
	engineErr := &EngineError{Op: "spin"}

	tests := []struct {
		name      string
		failOn    string
		err       error
		wantCode  types.ErrorCode
		wantCalls []string
	}{
		{"pour", "pour", pumpErr, types.ErrorCodeWaterPumpFailure, []string{"pour"}},
		{"release", "release", pumpErr, types.ErrorCodeWaterPumpFailure, []string{"pour", "runWashing", "release"}},
		{"run washing", "runWashing", engineErr, types.ErrorCodeEngineFailure, []string{"pour", "runWashing"}},
		{"spin", "spin", engineErr, types.ErrorCodeEngineFailure, []string{"pour", "runWashing", "release", "spin"}},
		{"untyped pump error", "pour", errors.New("valve stuck"), types.ErrorCodeWaterPumpFailure, []string{"pour"}},
		{"untyped engine error", "runWashing", errors.New("belt slipped"), types.ErrorCodeEngineFailure, []string{"pour", "runWashing"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecorder()
			r.failOn[tt.failOn] = tt.err

			status := newMachine(r).Start(properBatch, longWithSpin)

			assert.Equal(t, types.FailureStatus(tt.wantCode, types.ProgramLong.Ptr()), status)
			assert.Equal(t, tt.wantCalls, r.names())
		})
	}
}

func TestProgramDetection(t *testing.T) {
	autodetect := types.ProgramConfiguration{Program: types.ProgramAutodetect, Spin: true}

	tests := []struct {
		dirt types.Percentage
		want types.Program
	}{
		{AverageDirtDegree + 0.01, types.ProgramLong},
		{AverageDirtDegree, types.ProgramMedium},
		{0, types.ProgramMedium},
		{100, types.ProgramLong},
	}

	for _, tt := range tests {
		r := newRecorder()
		r.dirt = tt.dirt

		status := newMachine(r).Start(properBatch, autodetect)

		assert.Equal(t, types.SuccessStatus(tt.want), status, "dirt %v", tt.dirt)
		require.NotEmpty(t, r.calls)
		assert.Equal(t, call{"detect", properBatch}, r.calls[0])
		assert.Equal(t, call{"runWashing", tt.want.TimeInMinutes()}, r.calls[2])
	}
}

func TestDetectorNotQueriedForConcreteProgram(t *testing.T) {
	r := newRecorder()

	newMachine(r).Start(properBatch, longWithSpin)

	assert.NotContains(t, r.names(), "detect")
}

func TestResolvedProgramKeptOnFailure(t *testing.T) {
	r := newRecorder()
	r.dirt = 80
	r.failOn["release"] = &WaterPumpError{Op: "release"}

	status := newMachine(r).Start(properBatch, types.ProgramConfiguration{Program: types.ProgramAutodetect})

	assert.Equal(t, types.FailureStatus(types.ErrorCodeWaterPumpFailure, types.ProgramLong.Ptr()), status)
}

func TestObserverSeesTransitions(t *testing.T) {
	tests := []struct {
		name   string
		batch  types.LaundryBatch
		config types.ProgramConfiguration
		failOn string
		want   []State
	}{
		{
			name:   "full cycle",
			batch:  properBatch,
			config: longWithSpin,
			want: []State{StateValidating, StateResolvingProgram, StatePouring,
				StateWashing, StateReleasing, StateSpinning, StateDone},
		},
		{
			name:   "too heavy",
			batch:  types.LaundryBatch{Material: types.MaterialWool, WeightKg: 5},
			config: longWithSpin,
			want:   []State{StateValidating, StateDone},
		},
		{
			name:   "engine failure",
			batch:  properBatch,
			config: types.ProgramConfiguration{Program: types.ProgramMedium},
			failOn: "runWashing",
			want:   []State{StateValidating, StateResolvingProgram, StatePouring, StateWashing, StateDone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRecorder()
			if tt.failOn != "" {
				r.failOn[tt.failOn] = &EngineError{Op: tt.failOn}
			}

			var seen []State
			prev := StateIdle
			obs := ObserverFunc(func(from, to State) {
				assert.Equal(t, prev, from)
				assert.NoError(t, ValidateTransition(from, to))
				prev = to
				seen = append(seen, to)
			})

			newMachine(r, WithObserver(obs)).Start(tt.batch, tt.config)

			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestCallsAreIndependent(t *testing.T) {
	r := newRecorder()
	m := newMachine(r)

	first := m.Start(types.LaundryBatch{Material: types.MaterialWool, WeightKg: 6}, longWithSpin)
	second := m.Start(properBatch, longWithSpin)

	assert.Equal(t, types.ErrorCodeTooHeavy, first.ErrorCode)
	assert.Equal(t, successStatus, second)
}

func TestMaxWeightFor(t *testing.T) {
	assert.Equal(t, MaxWeightKg/2, MaxWeightFor(types.MaterialWool))
	for _, m := range types.Materials() {
		if m != types.MaterialWool {
			assert.Equal(t, MaxWeightKg, MaxWeightFor(m), string(m))
		}
	}
}
