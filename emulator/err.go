package emulator

import (
	"errors"

	"github.com/ezrec/moto6809/translate"
)

var f = translate.From

var (
	ErrBeforeStart  = errors.New(f("program counter before program start"))
	ErrBudget       = errors.New(f("instruction budget exhausted"))
	ErrNotAssembled = errors.New(f("no program assembled"))
	ErrRunning      = errors.New(f("emulator is running"))
	ErrNotPaused    = errors.New(f("emulator is not paused"))
	ErrStopped      = errors.New(f("emulator is stopped, reset required"))
	ErrDefine       = errors.New(f("define must be NAME=VALUE"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrConfigKey is an unknown key in a configuration file.
type ErrConfigKey string

func (err ErrConfigKey) Error() string {
	return f("unknown configuration key %q", string(err))
}

// ErrBreakpoint is a breakpoint address that does not parse.
type ErrBreakpoint string

func (err ErrBreakpoint) Error() string {
	return f("invalid breakpoint %q", string(err))
}

// ErrDefineValue is a define whose value is not a 16-bit number.
type ErrDefineValue string

func (err ErrDefineValue) Error() string {
	return f("invalid value for define %q", string(err))
}
