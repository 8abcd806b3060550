package cpu

import (
	"github.com/ezrec/moto6809/memory"
)

// Effective computes effective addresses, consuming operand
// bytes from the instruction stream.
type Effective struct {
	Reg *Registers
	Mem *memory.AddressSpace
}

// Fetch8 reads the byte at PC, and advances PC.
func (ea Effective) Fetch8() (value uint8) {
	pc := ea.Reg.PC()
	value = ea.Mem.Read(pc)
	ea.Reg.SetPC(pc + 1)
	return
}

// Fetch16 reads the word at PC, and advances PC.
func (ea Effective) Fetch16() (value uint16) {
	pc := ea.Reg.PC()
	value = ea.Mem.ReadWord(pc)
	ea.Reg.SetPC(pc + 2)
	return
}

// Direct is DP:nn.
func (ea Effective) Direct() uint16 {
	return uint16(ea.Reg.DP())<<8 | uint16(ea.Fetch8())
}

// Extended is nnnn.
func (ea Effective) Extended() uint16 {
	return ea.Fetch16()
}

var indexRegister = map[IndexReg]Register{
	INDEX_REG_X: REG_X,
	INDEX_REG_Y: REG_Y,
	INDEX_REG_U: REG_U,
	INDEX_REG_S: REG_S,
}

// Indexed decodes a post-byte and its offset, applies any auto
// increment or decrement, and resolves indirection.
func (ea Effective) Indexed() (address uint16, err error) {
	ix, need, err := DecodeIndex(ea.Fetch8())
	if err != nil {
		return
	}

	switch need {
	case 1:
		ix.SetOffset([]uint8{ea.Fetch8()})
	case 2:
		word := ea.Fetch16()
		ix.SetOffset([]uint8{uint8(word >> 8), uint8(word)})
	}

	reg, based := indexRegister[ix.Register]
	base := uint16(0)
	if based {
		base = ea.Reg.Get(reg)
	}

	switch ix.Mode {
	case INDEX_OFFSET5, INDEX_OFFSET8, INDEX_OFFSET16:
		address = base + uint16(ix.Offset)
	case INDEX_ZERO:
		address = base
	case INDEX_INC1:
		address = base
		ea.Reg.Set(reg, base+1)
	case INDEX_INC2:
		address = base
		ea.Reg.Set(reg, base+2)
	case INDEX_DEC1:
		address = base - 1
		ea.Reg.Set(reg, address)
	case INDEX_DEC2:
		address = base - 2
		ea.Reg.Set(reg, address)
	case INDEX_ACC_A:
		address = base + uint16(int16(int8(ea.Reg.A())))
	case INDEX_ACC_B:
		address = base + uint16(int16(int8(ea.Reg.B())))
	case INDEX_ACC_D:
		address = base + ea.Reg.D()
	case INDEX_PC8, INDEX_PC16:
		// PC is past the offset bytes.
		address = ea.Reg.PC() + uint16(ix.Offset)
	case INDEX_EXTENDED:
		address = uint16(ix.Offset)
	}

	if ix.Indirect {
		address = ea.Mem.ReadWord(address)
	}

	return
}

// Address computes the effective address of a memory mode.
func (ea Effective) Address(mode Mode) (address uint16, err error) {
	switch mode {
	case MODE_DIRECT:
		address = ea.Direct()
	case MODE_EXTENDED:
		address = ea.Extended()
	case MODE_INDEXED:
		address, err = ea.Indexed()
	default:
		err = ErrModeInvalid{Mode: mode}
	}
	return
}
