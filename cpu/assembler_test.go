package cpu

import (
	"errors"
	"maps"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/ezrec/moto6809/memory"
)

// code collects every emitted byte of a program.
func code(prog *Program) (data []uint8) {
	for _, value := range prog.Bytes() {
		data = append(data, value)
	}
	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	mem := &memory.AddressSpace{}
	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(`	ORG $8000
	LDA #$05
	ADDA #$03
	STA $00
	END
`), mem)
	assert.NoError(err)
	assert.Equal([]uint8{0x86, 0x05, 0x8B, 0x03, 0x97, 0x00}, code(prog))
	assert.Equal([]uint8{0x86, 0x05, 0x8B, 0x03, 0x97, 0x00}, mem.Dump(0x8000, 6))
	assert.Equal(uint16(0x8000), prog.Start)
	assert.Equal(uint16(0x8006), prog.End)
	assert.Equal(5, prog.EndLine)

	value, ok := asm.Symbols.Lookup("ROM_START")
	assert.True(ok)
	assert.Equal(memory.ROM_START, value)
	value, ok = asm.Symbols.Lookup("ram_end")
	assert.True(ok)
	assert.Equal(memory.RAM_END, value)

	_, err = asm.Assemble([]string{"\tNOP"}, nil)
	assert.ErrorIs(err, ErrEndMissing)

	prog, err = asm.Assemble([]string{"\tEND"}, nil)
	assert.NoError(err)
	assert.Equal(DEFAULT_ORIGIN, prog.Start)
	assert.Equal(DEFAULT_ORIGIN, prog.End)
	assert.Empty(prog.Statements)
}

func TestAssemblerModes(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		code []uint8
	}){
		{"LDA #$05", []uint8{0x86, 0x05}},
		{"LDA #'A", []uint8{0x86, 0x41}},
		{"LDA #';'", []uint8{0x86, 0x3B}},
		{"LDA #-1", []uint8{0x86, 0xFF}},
		{"LDX #$1234", []uint8{0x8E, 0x12, 0x34}},
		{"LDY #WORD", []uint8{0x10, 0x8E, 0x12, 0x34}},
		{"CMPS #1", []uint8{0x11, 0x8C, 0x00, 0x01}},
		{"LDD #RAM_END", []uint8{0xCC, 0x7F, 0xFF}},
		{"LDA #$(VAR*2)", []uint8{0x86, 0x20}},
		{"LDA #$(ram_start + 3)", []uint8{0x86, 0x03}},
		{"LDA VAR", []uint8{0x96, 0x10}},
		{"LDA >VAR", []uint8{0xB6, 0x00, 0x10}},
		{"LDA <WORD", []uint8{0x96, 0x34}},
		{"LDA $1234", []uint8{0xB6, 0x12, 0x34}},
		{"NEG $10", []uint8{0x00, 0x10}},
		{"JMP $8000", []uint8{0x7E, 0x80, 0x00}},
		{"STA ,X", []uint8{0xA7, 0x84}},
		{"LDA 5,X", []uint8{0xA6, 0x05}},
		{"LDA VAR,X", []uint8{0xA6, 0x88, 0x10}},
		{"LDA -200,Y", []uint8{0xA6, 0xA9, 0xFF, 0x38}},
		{"LDA [,X++]", []uint8{0xA6, 0x91}},
		{"LDA [$1234]", []uint8{0xA6, 0x9F, 0x12, 0x34}},
		{"JMP [$FFFE]", []uint8{0x6E, 0x9F, 0xFF, 0xFE}},
		{"LDA B,U", []uint8{0xA6, 0xC5}},
		{"LDA ,-S", []uint8{0xA6, 0xE2}},
		{"LEAX 1,X", []uint8{0x30, 0x01}},
		{"LEAS -2,S", []uint8{0x32, 0x7E}},
		{"TFR A,B", []uint8{0x1F, 0x89}},
		{"EXG X,Y", []uint8{0x1E, 0x12}},
		{"PSHS D,X", []uint8{0x34, 0x16}},
		{"PULU PC,S", []uint8{0x37, 0xC0}},
		{"NEGA", []uint8{0x40}},
		{"clrb", []uint8{0x5F}},
		{"SWI2", []uint8{0x10, 0x3F}},
		{"ORCC #$50", []uint8{0x1A, 0x50}},
		{"CWAI #$EF", []uint8{0x3C, 0xEF}},
		{"BRA *", []uint8{0x20, 0xFE}},
		{"LBRA *", []uint8{0x16, 0xFF, 0xFD}},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := asm.Assemble([]string{
			"VAR EQU $10",
			"WORD: EQU $1234",
			"\tORG $8000",
			"\t" + entry.line,
			"\tEND",
		}, nil)
		if !assert.NoError(err, entry.line) {
			continue
		}
		assert.Equal(entry.code, code(prog), entry.line)
	}
}

func TestAssemblerBranch(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble([]string{
		"\tORG $8000",
		"\tLDA #1",
		"LOOP:\tDECA",
		"\tBNE LOOP",
		"\tBRA DONE",
		"DONE:\tNOP",
		"\tEND",
	}, nil)
	assert.NoError(err)

	// The forward BRA reserves a long slot, padded with NOP.
	assert.Equal([]uint8{
		0x86, 0x01,
		0x4A,
		0x26, 0xFD,
		0x20, 0x01, OP_NOP,
		0x12,
	}, code(prog))
	assert.Equal(2, prog.InstructionSize(0x8005))
	assert.Equal(1, prog.InstructionSize(0x8006))

	prog, err = asm.Assemble([]string{
		"\tORG $8000",
		"\tBEQ FAR",
		"\tLBRA FAR",
		"\tRMB 200",
		"FAR:\tNOP",
		"\tEND",
	}, nil)
	assert.NoError(err)

	assert.Equal([]uint8{0x10, 0x27, 0x00, 0xCB}, prog.Statements[0].Code)
	assert.Equal("LBEQ", prog.Statements[0].Instruction.Mnemonic)
	assert.Equal([]uint8{0x16, 0x00, 0xC8}, prog.Statements[1].Code)

	_, err = asm.Assemble([]string{
		"\tORG $0000",
		"\tLBRA $9000",
		"\tEND",
	}, nil)
	var brange ErrBranchRange
	assert.True(errors.As(err, &brange))
	assert.Equal("LBRA", brange.Mnemonic)
}

func TestAssemblerDirectives(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble([]string{
		"* Data directives",
		"\tORG $8000",
		"\tSETDP $7F",
		"\tRMB 2",
		"START:\tFCB 1,$FF,'A ; bytes",
		"\tFDB $1234,START",
		"\tFCC \"HI\"",
		"\tRMB 3",
		"\tEND",
		"\tFCB 2",
	}, nil)
	assert.NoError(err)

	assert.Equal(uint16(0x8002), prog.Start)
	assert.Equal(uint16(0x800B), prog.End)
	assert.Equal(uint8(0x7F), prog.DirectPage)
	assert.Equal(9, prog.EndLine)
	assert.Equal([]uint8{
		0x01, 0xFF, 0x41,
		0x12, 0x34, 0x80, 0x02,
		'H', 'I',
	}, code(prog))

	// Data is not an instruction.
	_, ok := prog.Line(0x8002)
	assert.False(ok)
	assert.Equal("----", prog.Operand(0x8002))

	dbg := prog.Debug(0x8006)
	assert.NotNil(dbg.Statement)
	assert.Equal("FDB", dbg.Mnemonic)
	assert.Equal(1, dbg.Index)
}

func TestAssemblerCharacters(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble([]string{
		"\tFCB ',',1",
		"\tFCB ';',2 ; comment",
		"\tFCB 'A,'B",
		"\tEND",
	}, nil)
	assert.NoError(err)
	assert.Equal([]uint8{',', 1, ';', 2, 'A', 'B'}, code(prog))
}

func TestAssemblerNamespaces(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble([]string{
		"FOO EQU $10",
		"\tORG $8000",
		"FOO:\tLDA FOO",
		"\tEND",
	}, nil)
	assert.NoError(err)

	// The constant shadows the label in operands.
	assert.Equal([]uint8{0x96, 0x10}, code(prog))

	labels := maps.Collect(prog.Symbols.Labels())
	assert.Equal(uint16(0x8000), labels["FOO"])
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		source []string
		lineNo int
		err    error
	}){
		{"mnemonic", []string{"\tNOP", "\tFOO", "\tEND"}, 2, ErrMnemonicUnknown},
		{"label", []string{"A1:\tNOP", "A1:\tNOP", "\tEND"}, 2, ErrLabelDuplicate},
		{"equate", []string{"X1 EQU 1", "X1 EQU 2", "\tEND"}, 2, ErrEquateDuplicate},
		{"system", []string{"RAM_END EQU 1", "\tEND"}, 1, ErrEquateDuplicate},
		{"operand", []string{"\tLDA", "\tEND"}, 1, ErrOperandMissing},
		{"range", []string{"\tLDA #$100", "\tEND"}, 1, ErrValueRange},
		{"fcb", []string{"\tFCB 256", "\tEND"}, 1, ErrValueRange},
		{"equ", []string{"\tEQU 5", "\tEND"}, 1, ErrDirectiveSyntax},
		{"fcc", []string{"\tFCC \"HI", "\tEND"}, 1, ErrDirectiveSyntax},
		{"index", []string{"\tLDA ,Q", "\tEND"}, 1, ErrRegisterInvalid},
		{"transfer", []string{"\tTFR A", "\tEND"}, 1, ErrRegisterInvalid},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Assemble(entry.source, nil)
		assert.ErrorIs(err, entry.err, entry.name)

		var syn *ErrSyntax
		if assert.True(errors.As(err, &syn), entry.name) {
			assert.Equal(entry.lineNo, syn.LineNo, entry.name)
		}
	}

	asm := &Assembler{}

	_, err := asm.Assemble([]string{"\tSTA #1", "\tEND"}, nil)
	var mode ErrModeInvalid
	assert.True(errors.As(err, &mode))
	assert.Equal(ErrModeInvalid{Mnemonic: "STA", Mode: MODE_IMMEDIATE}, mode)

	_, err = asm.Assemble([]string{"\tLDA MISSING", "\tEND"}, nil)
	var missing ErrSymbolMissing
	assert.True(errors.As(err, &missing))

	_, err = asm.Assemble([]string{"\tLDA #$(1 +)", "\tEND"}, nil)
	var expr ErrParseExpression
	assert.True(errors.As(err, &expr))
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("DEBUG", 1)

	prog, err := asm.Assemble([]string{"\tLDA #debug", "\tEND"}, nil)
	assert.NoError(err)
	assert.Equal([]uint8{0x86, 0x01}, code(prog))

	asm.Predefine("ROM_END", 1)
	_, err = asm.Assemble([]string{"\tEND"}, nil)
	assert.ErrorIs(err, ErrEquateDuplicate)
}

var phaseSource = []string{
	"COUNT EQU 3",
	"\tORG $8000",
	"START:\tLDX #TABLE",
	"\tLDB #COUNT",
	"LOOP:\tLDA ,X+",
	"\tSTA RESULT",
	"\tDECB",
	"\tBNE LOOP",
	"\tLEAY TABLE,PCR",
	"\tBSR SUB",
	"\tBRA DONE",
	"SUB:\tLDA TABLE+1,PCR",
	"\tRTS",
	"TABLE:\tFCB 1,2,3",
	"DONE:\tNOP",
	"\tORG $0010",
	"RESULT:\tRMB 1",
	"\tEND",
}

// Labels bound by the first pass are where the second pass put them.
func TestAssemblerPhase(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble(phaseSource, nil)
	assert.NoError(err)

	labels := 0
	for _, stmt := range prog.Statements {
		if len(stmt.Label) == 0 {
			continue
		}
		labels++
		value, ok := prog.Symbols.Lookup(stmt.Label)
		assert.True(ok, stmt.Label)
		assert.Equal(value, stmt.Address, stmt.Label)
	}
	assert.Equal(6, labels)

	// RESULT is a forward reference: an extended slot holding a direct access.
	stmt := prog.Debug(0x8007).Statement
	assert.Equal("STA", stmt.Mnemonic)
	assert.Equal([]uint8{0x97, 0x10, OP_NOP}, stmt.Code)
	assert.Equal("$0010", stmt.Resolved)
	assert.Equal("RESULT", prog.Operand(0x8007))
}

func TestAssemblerDeterministic(t *testing.T) {
	assert := assert.New(t)

	first, err := (&Assembler{}).Assemble(phaseSource, nil)
	assert.NoError(err)
	second, err := (&Assembler{}).Assemble(phaseSource, nil)
	assert.NoError(err)

	assert.Empty(cmp.Diff(first.Statements, second.Statements))
	assert.Empty(cmp.Diff(code(first), code(second)))
	assert.Empty(cmp.Diff(maps.Collect(first.Symbols.All()), maps.Collect(second.Symbols.All())))
	assert.Empty(cmp.Diff(first.LineMap(), second.LineMap()))
}
