// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// Mode is an addressing mode.
type Mode int

//go:generate go tool stringer -linecomment -type=Mode

const (
	MODE_INHERENT  Mode = iota // inherent
	MODE_IMMEDIATE             // immediate
	MODE_DIRECT                // direct
	MODE_EXTENDED              // extended
	MODE_INDEXED               // indexed
	MODE_RELATIVE              // relative
	MODE_REGISTER              // register
)

// Opcode page prefixes.
const (
	PAGE_2 = uint8(0x10)
	PAGE_3 = uint8(0x11)
)

// OP_NOP is used to pad instructions shorter than their reserved slot.
const OP_NOP = uint8(0x12)

// OpcodeTable maps mnemonic and addressing mode to an opcode.
// Page 2 and 3 opcodes are stored with their prefix in the high byte.
type OpcodeTable map[string]map[Mode]uint16

// Opcodes returns the opcode table, built on first use.
var Opcodes = sync.OnceValue(buildOpcodeTable)

// Lookup finds the opcode for a mnemonic in a mode.
func (ot OpcodeTable) Lookup(mnemonic string, mode Mode) (opcode uint16, ok bool) {
	modes, ok := ot[strings.ToUpper(mnemonic)]
	if !ok {
		return
	}
	opcode, ok = modes[mode]
	return
}

// Known returns true if the mnemonic is in the table.
func (ot OpcodeTable) Known(mnemonic string) (ok bool) {
	_, ok = ot[strings.ToUpper(mnemonic)]
	return
}

// Modes returns the sorted addressing modes of a mnemonic.
func (ot OpcodeTable) Modes(mnemonic string) []Mode {
	return slices.Sorted(maps.Keys(ot[strings.ToUpper(mnemonic)]))
}

// OpcodeSize returns the number of bytes an opcode occupies.
func OpcodeSize(opcode uint16) int {
	if opcode > 0xff {
		return 2
	}
	return 1
}

// opcodeRow is a column of the accumulator and index register block,
// where the immediate, direct, indexed and extended forms are 0x10 apart.
type opcodeRow struct {
	mnemonic  string
	immediate uint16
	noImm     bool
}

var accumulatorRows = []opcodeRow{
	{"SUBA", 0x80, false}, {"CMPA", 0x81, false}, {"SBCA", 0x82, false}, {"SUBD", 0x83, false},
	{"ANDA", 0x84, false}, {"BITA", 0x85, false}, {"LDA", 0x86, false}, {"STA", 0x87, true},
	{"EORA", 0x88, false}, {"ADCA", 0x89, false}, {"ORA", 0x8A, false}, {"ADDA", 0x8B, false},
	{"CMPX", 0x8C, false}, {"JSR", 0x8D, true}, {"LDX", 0x8E, false}, {"STX", 0x8F, true},

	{"SUBB", 0xC0, false}, {"CMPB", 0xC1, false}, {"SBCB", 0xC2, false}, {"ADDD", 0xC3, false},
	{"ANDB", 0xC4, false}, {"BITB", 0xC5, false}, {"LDB", 0xC6, false}, {"STB", 0xC7, true},
	{"EORB", 0xC8, false}, {"ADCB", 0xC9, false}, {"ORB", 0xCA, false}, {"ADDB", 0xCB, false},
	{"LDD", 0xCC, false}, {"STD", 0xCD, true}, {"LDU", 0xCE, false}, {"STU", 0xCF, true},

	{"CMPD", 0x1083, false}, {"CMPY", 0x108C, false}, {"LDY", 0x108E, false}, {"STY", 0x108F, true},
	{"LDS", 0x10CE, false}, {"STS", 0x10CF, true},

	{"CMPU", 0x1183, false}, {"CMPS", 0x118C, false},
}

// Read-modify-write memory operations, by low nibble.
var memoryOps = []struct {
	mnemonic string
	nibble   uint16
}{
	{"NEG", 0x0}, {"COM", 0x3}, {"LSR", 0x4}, {"ROR", 0x6}, {"ASR", 0x7},
	{"ASL", 0x8}, {"LSL", 0x8}, {"ROL", 0x9}, {"DEC", 0xA}, {"INC", 0xC},
	{"TST", 0xD}, {"JMP", 0xE}, {"CLR", 0xF},
}

// Branches by short opcode, with the long form's opcode.
var branchOps = []struct {
	mnemonic string
	short    uint16
	long     uint16
}{
	{"BRA", 0x20, 0x16}, {"BRN", 0x21, 0x1021}, {"BHI", 0x22, 0x1022}, {"BLS", 0x23, 0x1023},
	{"BCC", 0x24, 0x1024}, {"BHS", 0x24, 0x1024}, {"BCS", 0x25, 0x1025}, {"BLO", 0x25, 0x1025},
	{"BNE", 0x26, 0x1026}, {"BEQ", 0x27, 0x1027}, {"BVC", 0x28, 0x1028}, {"BVS", 0x29, 0x1029},
	{"BPL", 0x2A, 0x102A}, {"BMI", 0x2B, 0x102B}, {"BGE", 0x2C, 0x102C}, {"BLT", 0x2D, 0x102D},
	{"BGT", 0x2E, 0x102E}, {"BLE", 0x2F, 0x102F},
	{"BSR", 0x8D, 0x17},
}

var inherentOps = map[string]uint16{
	"NOP": 0x12, "SYNC": 0x13, "DAA": 0x19, "SEX": 0x1D,
	"RTS": 0x39, "ABX": 0x3A, "RTI": 0x3B, "MUL": 0x3D, "SWI": 0x3F,
	"SWI2": 0x103F, "SWI3": 0x113F,
}

var immediateOps = map[string]uint16{
	"ORCC": 0x1A, "ANDCC": 0x1C, "CWAI": 0x3C,
}

var registerOps = map[string]uint16{
	"EXG": 0x1E, "TFR": 0x1F,
	"PSHS": 0x34, "PULS": 0x35, "PSHU": 0x36, "PULU": 0x37,
}

var indexedOps = map[string]uint16{
	"LEAX": 0x30, "LEAY": 0x31, "LEAS": 0x32, "LEAU": 0x33,
}

var wideOps = map[string]bool{
	"ADDD": true, "SUBD": true, "CMPD": true, "CMPX": true, "CMPY": true,
	"CMPU": true, "CMPS": true, "LDD": true, "LDX": true, "LDY": true,
	"LDU": true, "LDS": true, "STD": true, "STX": true, "STY": true,
	"STU": true, "STS": true,
}

func buildOpcodeTable() (ot OpcodeTable) {
	ot = OpcodeTable{}

	add := func(mnemonic string, mode Mode, opcode uint16) {
		modes, ok := ot[mnemonic]
		if !ok {
			modes = map[Mode]uint16{}
			ot[mnemonic] = modes
		}
		modes[mode] = opcode
	}

	for _, row := range accumulatorRows {
		if !row.noImm {
			add(row.mnemonic, MODE_IMMEDIATE, row.immediate)
		}
		add(row.mnemonic, MODE_DIRECT, row.immediate+0x10)
		add(row.mnemonic, MODE_INDEXED, row.immediate+0x20)
		add(row.mnemonic, MODE_EXTENDED, row.immediate+0x30)
	}

	for _, op := range memoryOps {
		add(op.mnemonic, MODE_DIRECT, 0x00+op.nibble)
		add(op.mnemonic, MODE_INDEXED, 0x60+op.nibble)
		add(op.mnemonic, MODE_EXTENDED, 0x70+op.nibble)
		if op.mnemonic == "JMP" {
			continue
		}
		add(op.mnemonic+"A", MODE_INHERENT, 0x40+op.nibble)
		add(op.mnemonic+"B", MODE_INHERENT, 0x50+op.nibble)
	}

	for _, op := range branchOps {
		add(op.mnemonic, MODE_RELATIVE, op.short)
		add("L"+op.mnemonic, MODE_RELATIVE, op.long)
	}

	for mnemonic, opcode := range inherentOps {
		add(mnemonic, MODE_INHERENT, opcode)
	}
	for mnemonic, opcode := range immediateOps {
		add(mnemonic, MODE_IMMEDIATE, opcode)
	}
	for mnemonic, opcode := range registerOps {
		add(mnemonic, MODE_REGISTER, opcode)
	}
	for mnemonic, opcode := range indexedOps {
		add(mnemonic, MODE_INDEXED, opcode)
	}

	return
}

// IsBranch returns true for relative branch mnemonics, short or long.
func IsBranch(mnemonic string) bool {
	_, ok := Opcodes().Lookup(mnemonic, MODE_RELATIVE)
	return ok
}

// IsLongBranch returns true for the L-prefixed branch mnemonics.
func IsLongBranch(mnemonic string) bool {
	return IsBranch(mnemonic) && strings.HasPrefix(strings.ToUpper(mnemonic), "L")
}

// LongBranch returns the long form of a short branch mnemonic.
func LongBranch(mnemonic string) (long string, ok bool) {
	if !IsBranch(mnemonic) || IsLongBranch(mnemonic) {
		return
	}
	long = "L" + strings.ToUpper(mnemonic)
	ok = IsBranch(long)
	return
}

// Is16Bit returns true for mnemonics with 16-bit immediate operands.
func Is16Bit(mnemonic string) bool {
	return wideOps[strings.ToUpper(mnemonic)]
}

// IsRegisterOp returns true for mnemonics taking a register list.
func IsRegisterOp(mnemonic string) bool {
	_, ok := registerOps[strings.ToUpper(mnemonic)]
	return ok
}

// Disassembly is the reverse of the opcode table.
type Disassembly struct {
	Mnemonic string
	Mode     Mode
}

// Disassemble returns the mnemonic and mode for an opcode.
// Aliases resolve to the alphabetically first name.
var Disassemble = sync.OnceValue(func() (dis map[uint16]Disassembly) {
	ot := Opcodes()
	dis = map[uint16]Disassembly{}
	for _, mnemonic := range slices.Sorted(maps.Keys(ot)) {
		for mode, opcode := range ot[mnemonic] {
			if _, ok := dis[opcode]; ok {
				continue
			}
			dis[opcode] = Disassembly{Mnemonic: mnemonic, Mode: mode}
		}
	}
	return
})
