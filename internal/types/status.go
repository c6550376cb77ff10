package types

type ErrorCode string

const (
	ErrorCodeNone             ErrorCode = "NO_ERROR"
	ErrorCodeTooHeavy         ErrorCode = "TOO_HEAVY"
	ErrorCodeWaterPumpFailure ErrorCode = "WATER_PUMP_FAILURE"
	ErrorCodeEngineFailure    ErrorCode = "ENGINE_FAILURE"
)

type Result string

const (
	ResultSuccess Result = "SUCCESS"
	ResultFailure Result = "FAILURE"
)

// LaundryStatus is the outcome of one wash cycle. RunnedProgram is nil when
// the batch was rejected before a program was chosen.
type LaundryStatus struct {
	ErrorCode     ErrorCode `json:"error_code"`
	Result        Result    `json:"result"`
	RunnedProgram *Program  `json:"runned_program"`
}

func SuccessStatus(program Program) LaundryStatus {
	return LaundryStatus{
		ErrorCode:     ErrorCodeNone,
		Result:        ResultSuccess,
		RunnedProgram: program.Ptr(),
	}
}

func FailureStatus(code ErrorCode, program *Program) LaundryStatus {
	return LaundryStatus{
		ErrorCode:     code,
		Result:        ResultFailure,
		RunnedProgram: program,
	}
}

func (s LaundryStatus) Succeeded() bool {
	return s.Result == ResultSuccess
}

// ProgramName returns the runned program or an empty string.
func (s LaundryStatus) ProgramName() string {
	if s.RunnedProgram == nil {
		return ""
	}
	return string(*s.RunnedProgram)
}
