package cpu

import (
	"slices"

	"github.com/ezrec/moto6809/memory"
)

// Stack pushes and pulls through a stack pointer register.
// The stack grows down, and words are stored big-endian.
type Stack struct {
	Reg     *Registers
	Mem     *memory.AddressSpace
	Pointer Register // REG_S or REG_U.
}

// System is true for the hardware stack.
func (s Stack) System() bool {
	return s.Pointer == REG_S
}

// Push8 pushes a byte.
func (s Stack) Push8(value uint8) (err error) {
	sp := s.Reg.Get(s.Pointer) - 1
	err = s.Mem.WriteStack(sp, value)
	if err != nil {
		return
	}
	s.Reg.Set(s.Pointer, sp)
	return
}

// Push16 pushes a word, low byte first.
func (s Stack) Push16(value uint16) (err error) {
	err = s.Push8(uint8(value))
	if err != nil {
		return
	}
	err = s.Push8(uint8(value >> 8))
	return
}

// Pull8 pulls a byte.
func (s Stack) Pull8() (value uint8) {
	sp := s.Reg.Get(s.Pointer)
	value = s.Mem.Read(sp)
	s.Reg.Set(s.Pointer, sp+1)
	return
}

// Pull16 pulls a word, high byte first.
func (s Stack) Pull16() (value uint16) {
	value = uint16(s.Pull8()) << 8
	value |= uint16(s.Pull8())
	return
}

// Peek16 reads the word on top of the stack.
func (s Stack) Peek16() uint16 {
	return s.Mem.ReadWord(s.Reg.Get(s.Pointer))
}

// PushRegisters pushes the registers of a PSH post-byte, PC first.
func (s Stack) PushRegisters(mask uint8) (err error) {
	for _, reg := range StackRegisters(mask, s.System()) {
		value := s.Reg.Get(reg)
		if reg.Wide() {
			err = s.Push16(value)
		} else {
			err = s.Push8(uint8(value))
		}
		if err != nil {
			return
		}
	}
	return
}

// PullRegisters pulls the registers of a PUL post-byte, CC first.
func (s Stack) PullRegisters(mask uint8) {
	for _, reg := range slices.Backward(StackRegisters(mask, s.System())) {
		if reg.Wide() {
			s.Reg.Set(reg, s.Pull16())
		} else {
			s.Reg.Set(reg, uint16(s.Pull8()))
		}
	}
}
