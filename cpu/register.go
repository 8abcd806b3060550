package cpu

import (
	"fmt"
	"strings"
)

// Register selects a register, numbered as in the EXG/TFR post-byte.
type Register int

const (
	REG_D  = Register(0x0)
	REG_X  = Register(0x1)
	REG_Y  = Register(0x2)
	REG_U  = Register(0x3)
	REG_S  = Register(0x4)
	REG_PC = Register(0x5)
	REG_A  = Register(0x8)
	REG_B  = Register(0x9)
	REG_CC = Register(0xA)
	REG_DP = Register(0xB)
)

var registerNames = map[Register]string{
	REG_D: "D", REG_X: "X", REG_Y: "Y", REG_U: "U", REG_S: "S", REG_PC: "PC",
	REG_A: "A", REG_B: "B", REG_CC: "CC", REG_DP: "DP",
}

func (reg Register) String() string {
	name, ok := registerNames[reg]
	if !ok {
		return fmt.Sprintf("Register(%d)", int(reg))
	}
	return name
}

// Wide is true for the 16-bit registers.
func (reg Register) Wide() bool {
	return reg < REG_A
}

// ParseRegister looks up a register by name, ignoring case.
func ParseRegister(name string) (reg Register, ok bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "CCR" {
		name = "CC"
	}
	for reg, regName := range registerNames {
		if regName == name {
			return reg, true
		}
	}
	return
}

// Condition code flags.
const (
	CC_C = uint8(0x01) // Carry
	CC_V = uint8(0x02) // Overflow
	CC_Z = uint8(0x04) // Zero
	CC_N = uint8(0x08) // Negative
	CC_I = uint8(0x10) // IRQ mask
	CC_H = uint8(0x20) // Half carry
	CC_F = uint8(0x40) // FIRQ mask
	CC_E = uint8(0x80) // Entire state stacked
)

// Observer receives register change notifications.
type Observer interface {
	RegisterChanged(reg Register, old, new uint16)
}

// Registers is the register file. All writes are masked to the register
// width, and the Observer is told of every write that changes a value.
type Registers struct {
	Observer Observer // If set, notified of register changes.

	a, b, dp, cc   uint8
	x, y, u, s, pc uint16
}

// Snapshot is a copy of the register file.
type Snapshot struct {
	A, B, DP, CC   uint8
	X, Y, U, S, PC uint16
}

func (r *Registers) notify(reg Register, old, new uint16) {
	if r.Observer != nil && old != new {
		r.Observer.RegisterChanged(reg, old, new)
	}
}

func (r *Registers) set8(reg Register, field *uint8, value uint8) {
	old := *field
	*field = value
	r.notify(reg, uint16(old), uint16(value))
}

func (r *Registers) set16(reg Register, field *uint16, value uint16) {
	old := *field
	*field = value
	r.notify(reg, old, value)
}

func (r *Registers) A() uint8   { return r.a }
func (r *Registers) B() uint8   { return r.b }
func (r *Registers) DP() uint8  { return r.dp }
func (r *Registers) CC() uint8  { return r.cc }
func (r *Registers) X() uint16  { return r.x }
func (r *Registers) Y() uint16  { return r.y }
func (r *Registers) U() uint16  { return r.u }
func (r *Registers) S() uint16  { return r.s }
func (r *Registers) PC() uint16 { return r.pc }

// D is the A:B accumulator pair.
func (r *Registers) D() uint16 {
	return uint16(r.a)<<8 | uint16(r.b)
}

func (r *Registers) SetA(value uint8)   { r.set8(REG_A, &r.a, value) }
func (r *Registers) SetB(value uint8)   { r.set8(REG_B, &r.b, value) }
func (r *Registers) SetDP(value uint8)  { r.set8(REG_DP, &r.dp, value) }
func (r *Registers) SetCC(value uint8)  { r.set8(REG_CC, &r.cc, value) }
func (r *Registers) SetX(value uint16)  { r.set16(REG_X, &r.x, value) }
func (r *Registers) SetY(value uint16)  { r.set16(REG_Y, &r.y, value) }
func (r *Registers) SetU(value uint16)  { r.set16(REG_U, &r.u, value) }
func (r *Registers) SetS(value uint16)  { r.set16(REG_S, &r.s, value) }
func (r *Registers) SetPC(value uint16) { r.set16(REG_PC, &r.pc, value) }

// SetD writes A with the high byte and B with the low byte.
func (r *Registers) SetD(value uint16) {
	r.SetA(uint8(value >> 8))
	r.SetB(uint8(value))
}

// Get reads any register, widened to 16 bits.
func (r *Registers) Get(reg Register) (value uint16) {
	switch reg {
	case REG_D:
		value = r.D()
	case REG_X:
		value = r.x
	case REG_Y:
		value = r.y
	case REG_U:
		value = r.u
	case REG_S:
		value = r.s
	case REG_PC:
		value = r.pc
	case REG_A:
		value = uint16(r.a)
	case REG_B:
		value = uint16(r.b)
	case REG_CC:
		value = uint16(r.cc)
	case REG_DP:
		value = uint16(r.dp)
	}
	return
}

// Set writes any register, masking the value to the register width.
func (r *Registers) Set(reg Register, value uint16) {
	switch reg {
	case REG_D:
		r.SetD(value)
	case REG_X:
		r.SetX(value)
	case REG_Y:
		r.SetY(value)
	case REG_U:
		r.SetU(value)
	case REG_S:
		r.SetS(value)
	case REG_PC:
		r.SetPC(value)
	case REG_A:
		r.SetA(uint8(value & 0xff))
	case REG_B:
		r.SetB(uint8(value & 0xff))
	case REG_CC:
		r.SetCC(uint8(value & 0xff))
	case REG_DP:
		r.SetDP(uint8(value & 0xff))
	}
}

// Flag returns true if all of the flags in the mask are set.
func (r *Registers) Flag(mask uint8) bool {
	return r.cc&mask == mask
}

// SetFlag sets or clears the flags in the mask.
func (r *Registers) SetFlag(mask uint8, on bool) {
	if on {
		r.SetCC(r.cc | mask)
	} else {
		r.SetCC(r.cc &^ mask)
	}
}

// Flags renders CC as "EFHINZVC", with '.' for clear flags.
func (r *Registers) Flags() string {
	const names = "EFHINZVC"
	out := []byte(names)
	for n := range out {
		if r.cc&(0x80>>n) == 0 {
			out[n] = '.'
		}
	}
	return string(out)
}

// Snapshot copies the register file.
func (r *Registers) Snapshot() Snapshot {
	return Snapshot{
		A: r.a, B: r.b, DP: r.dp, CC: r.cc,
		X: r.x, Y: r.y, U: r.u, S: r.s, PC: r.pc,
	}
}

// String returns the register file as text.
func (r *Registers) String() (text string) {
	text += fmt.Sprintf("   PC: %04X\n", r.pc)
	text += fmt.Sprintf("    A: %02X    B: %02X    D: %04X\n", r.a, r.b, r.D())
	text += fmt.Sprintf("    X: %04X  Y: %04X\n", r.x, r.y)
	text += fmt.Sprintf("    U: %04X  S: %04X\n", r.u, r.s)
	text += fmt.Sprintf("   DP: %02X   CC: %02X %v\n", r.dp, r.cc, r.Flags())
	return
}
