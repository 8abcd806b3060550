package emulator

//go:generate go tool stringer -linecomment -type=State,Outcome

// State of the step controller.
type State int32

const (
	STATE_IDLE    State = iota // idle
	STATE_RUNNING              // running
	STATE_PAUSED               // paused
	STATE_STOPPED              // stopped
)

// Outcome of a step.
type Outcome int

const (
	OUTCOME_CONTINUE   Outcome = iota // continue
	OUTCOME_TERMINATED                // terminated
	OUTCOME_FAULT                     // fault
)

// Result reports where a step, or a run, left the program.
type Result struct {
	Outcome Outcome
	PC      uint16 // Program counter after the step.
	Count   int    // Instructions executed since reset.
	EndLine int    // Line of the END directive.
}

// BreakpointEvent is sent when a run pauses on a breakpoint.
type BreakpointEvent struct {
	Address uint16
	LineNo  int
}
