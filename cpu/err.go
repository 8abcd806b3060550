package cpu

import (
	"errors"

	"github.com/ezrec/moto6809/translate"
)

var f = translate.From

var (
	// Post-byte errors
	ErrIndexInvalid    = errors.New(f("indexed operand invalid"))
	ErrRegisterInvalid = errors.New(f("register invalid"))

	// Assembler errors
	ErrEquateDuplicate = errors.New(f("EQU duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrMnemonicUnknown = errors.New(f("mnemonic unknown"))
	ErrEndMissing      = errors.New(f("END missing"))
	ErrOperandMissing  = errors.New(f("operand missing"))
	ErrDirectiveSyntax = errors.New(f("directive syntax"))
	ErrSizeGrew        = errors.New(f("encoding larger than reserved"))
	ErrValueRange      = errors.New(f("value out of range"))
	ErrPhase           = errors.New(f("second pass address differs from first pass"))
)

// ErrSymbolMissing is an unresolved symbol.
type ErrSymbolMissing string

func (es ErrSymbolMissing) Error() string {
	return f("symbol %v missing", string(es))
}

// ErrSyntax locates an assembly error.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrModeInvalid is a mnemonic used with an addressing mode it lacks.
type ErrModeInvalid struct {
	Mnemonic string
	Mode     Mode
}

func (err ErrModeInvalid) Error() string {
	return f("%v does not support %v addressing", err.Mnemonic, err.Mode)
}

// ErrBranchRange is a branch target out of reach.
type ErrBranchRange struct {
	Mnemonic string
	Offset   int
}

func (err ErrBranchRange) Error() string {
	return f("%v target out of range (%d)", err.Mnemonic, err.Offset)
}

// ErrPostByte is an undefined post-byte encoding.
type ErrPostByte uint8

func (err ErrPostByte) Error() string {
	return f("illegal post-byte $%02X", uint8(err))
}

func (err ErrPostByte) Is(target error) (ok bool) {
	_, ok = target.(ErrPostByte)
	return
}

// ErrOpcodeUnknown is an opcode with no handler.
type ErrOpcodeUnknown struct {
	PC     uint16
	Opcode uint16
}

func (err ErrOpcodeUnknown) Error() string {
	return f("unknown opcode $%02X at $%04X", err.Opcode, err.PC)
}

func (err ErrOpcodeUnknown) Is(target error) (ok bool) {
	_, ok = target.(ErrOpcodeUnknown)
	return
}
