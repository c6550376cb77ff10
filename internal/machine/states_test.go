package machine

import (
	"testing"

	"github.com/KevinKickass/OpenLaundryCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTransition(t *testing.T) {
	assert.NoError(t, ValidateTransition(StateIdle, StateValidating))
	assert.NoError(t, ValidateTransition(StateValidating, StateDone))
	assert.NoError(t, ValidateTransition(StateReleasing, StateSpinning))
	assert.NoError(t, ValidateTransition(StateReleasing, StateDone))

	assert.Error(t, ValidateTransition(StateIdle, StatePouring))
	assert.Error(t, ValidateTransition(StateResolvingProgram, StateDone))
	assert.Error(t, ValidateTransition(StateDone, StateIdle))
	assert.Error(t, ValidateTransition(State("unknown"), StateDone))
}

func TestActuatorErrorMessages(t *testing.T) {
	assert.Equal(t, "water pump pour failed", (&WaterPumpError{Op: "pour"}).Error())
	assert.Equal(t, "engine spin failed: overheated",
		(&EngineError{Op: "spin", Err: errString("overheated")}).Error())
}

type errString string

func (e errString) Error() string { return string(e) }

func TestProgramCatalog(t *testing.T) {
	c := ProgramCatalog()

	require.Len(t, c.Programs, 4)
	assert.Equal(t, types.ProgramAutodetect, c.Programs[0].Name)
	assert.Zero(t, c.Programs[0].Minutes)
	assert.Equal(t, 120, c.Programs[3].Minutes)
	assert.Equal(t, 4.0, c.MaxWeightKg["WOOL"])
	assert.Equal(t, 8.0, c.MaxWeightKg["JEANS"])
}
