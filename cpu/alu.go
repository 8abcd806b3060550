package cpu

// Alu computes results and condition codes. Each operation writes
// only the flags it is defined to affect.
type Alu struct {
	Reg *Registers
}

// update replaces the flags in mask with those in set.
func (alu Alu) update(mask uint8, set uint8) {
	cc := alu.Reg.CC()
	alu.Reg.SetCC(cc&^mask | set&mask)
}

func nz8(value uint8) (cc uint8) {
	if value == 0 {
		cc |= CC_Z
	}
	if value&0x80 != 0 {
		cc |= CC_N
	}
	return
}

func nz16(value uint16) (cc uint8) {
	if value == 0 {
		cc |= CC_Z
	}
	if value&0x8000 != 0 {
		cc |= CC_N
	}
	return
}

func when(cond bool, flag uint8) uint8 {
	if cond {
		return flag
	}
	return 0
}

// Add8 adds with optional carry in. Sets H, N, Z, V and C.
func (alu Alu) Add8(a, b uint8, carry bool) (result uint8) {
	c := uint(0)
	if carry {
		c = 1
	}
	sum := uint(a) + uint(b) + c
	result = uint8(sum)

	cc := nz8(result)
	cc |= when((a&0x0f)+(b&0x0f)+uint8(c) > 0x0f, CC_H)
	cc |= when((a^result)&(b^result)&0x80 != 0, CC_V)
	cc |= when(sum > 0xff, CC_C)
	alu.update(CC_H|CC_N|CC_Z|CC_V|CC_C, cc)
	return
}

// Sub8 subtracts with optional borrow in. Sets N, Z, V and C.
func (alu Alu) Sub8(a, b uint8, borrow bool) (result uint8) {
	c := 0
	if borrow {
		c = 1
	}
	diff := int(a) - int(b) - c
	result = uint8(diff)

	cc := nz8(result)
	cc |= when((a^b)&(a^result)&0x80 != 0, CC_V)
	cc |= when(diff < 0, CC_C)
	alu.update(CC_N|CC_Z|CC_V|CC_C, cc)
	return
}

// Add16 adds. Sets N, Z, V and C.
func (alu Alu) Add16(a, b uint16) (result uint16) {
	sum := uint(a) + uint(b)
	result = uint16(sum)

	cc := nz16(result)
	cc |= when((a^result)&(b^result)&0x8000 != 0, CC_V)
	cc |= when(sum > 0xffff, CC_C)
	alu.update(CC_N|CC_Z|CC_V|CC_C, cc)
	return
}

// Sub16 subtracts. Sets N, Z, V and C.
func (alu Alu) Sub16(a, b uint16) (result uint16) {
	diff := int(a) - int(b)
	result = uint16(diff)

	cc := nz16(result)
	cc |= when((a^b)&(a^result)&0x8000 != 0, CC_V)
	cc |= when(diff < 0, CC_C)
	alu.update(CC_N|CC_Z|CC_V|CC_C, cc)
	return
}

// And8 sets N and Z, and clears V.
func (alu Alu) And8(a, b uint8) (result uint8) {
	result = a & b
	alu.update(CC_N|CC_Z|CC_V, nz8(result))
	return
}

// Or8 sets N and Z, and clears V.
func (alu Alu) Or8(a, b uint8) (result uint8) {
	result = a | b
	alu.update(CC_N|CC_Z|CC_V, nz8(result))
	return
}

// Eor8 sets N and Z, and clears V.
func (alu Alu) Eor8(a, b uint8) (result uint8) {
	result = a ^ b
	alu.update(CC_N|CC_Z|CC_V, nz8(result))
	return
}

// Load8 sets N and Z from a loaded or stored byte, and clears V.
func (alu Alu) Load8(value uint8) uint8 {
	alu.update(CC_N|CC_Z|CC_V, nz8(value))
	return value
}

// Load16 sets N and Z from a loaded or stored word, and clears V.
func (alu Alu) Load16(value uint16) uint16 {
	alu.update(CC_N|CC_Z|CC_V, nz16(value))
	return value
}

// Test16 sets only N and Z.
func (alu Alu) Test16(value uint16) uint16 {
	alu.update(CC_N|CC_Z, nz16(value))
	return value
}

// Neg8 negates. C is set unless the value was zero, V if it was $80.
func (alu Alu) Neg8(value uint8) (result uint8) {
	result = -value
	cc := nz8(result)
	cc |= when(value == 0x80, CC_V)
	cc |= when(value != 0, CC_C)
	alu.update(CC_N|CC_Z|CC_V|CC_C, cc)
	return
}

// Com8 complements. C is set, V cleared.
func (alu Alu) Com8(value uint8) (result uint8) {
	result = ^value
	alu.update(CC_N|CC_Z|CC_V|CC_C, nz8(result)|CC_C)
	return
}

// Inc8 increments. C is unaffected.
func (alu Alu) Inc8(value uint8) (result uint8) {
	result = value + 1
	alu.update(CC_N|CC_Z|CC_V, nz8(result)|when(value == 0x7f, CC_V))
	return
}

// Dec8 decrements. C is unaffected.
func (alu Alu) Dec8(value uint8) (result uint8) {
	result = value - 1
	alu.update(CC_N|CC_Z|CC_V, nz8(result)|when(value == 0x80, CC_V))
	return
}

// Tst8 sets N and Z, and clears V.
func (alu Alu) Tst8(value uint8) uint8 {
	alu.update(CC_N|CC_Z|CC_V, nz8(value))
	return value
}

// Clr8 returns zero, with Z set and N, V and C cleared.
func (alu Alu) Clr8() uint8 {
	alu.update(CC_N|CC_Z|CC_V|CC_C, CC_Z)
	return 0
}

// Asl8 shifts left. C is the old bit 7, V is N^C.
func (alu Alu) Asl8(value uint8) (result uint8) {
	result = value << 1
	carry := value&0x80 != 0
	cc := nz8(result) | when(carry, CC_C)
	cc |= when((result&0x80 != 0) != carry, CC_V)
	alu.update(CC_N|CC_Z|CC_V|CC_C, cc)
	return
}

// Rol8 rotates left through carry. V is N^C.
func (alu Alu) Rol8(value uint8) (result uint8) {
	result = value << 1
	if alu.Reg.Flag(CC_C) {
		result |= 0x01
	}
	carry := value&0x80 != 0
	cc := nz8(result) | when(carry, CC_C)
	cc |= when((result&0x80 != 0) != carry, CC_V)
	alu.update(CC_N|CC_Z|CC_V|CC_C, cc)
	return
}

// Asr8 shifts right, keeping the sign bit. V is unaffected.
func (alu Alu) Asr8(value uint8) (result uint8) {
	result = value>>1 | value&0x80
	alu.update(CC_N|CC_Z|CC_C, nz8(result)|when(value&0x01 != 0, CC_C))
	return
}

// Lsr8 shifts right. N is cleared, V is unaffected.
func (alu Alu) Lsr8(value uint8) (result uint8) {
	result = value >> 1
	alu.update(CC_N|CC_Z|CC_C, nz8(result)|when(value&0x01 != 0, CC_C))
	return
}

// Ror8 rotates right through carry. V is unaffected.
func (alu Alu) Ror8(value uint8) (result uint8) {
	result = value >> 1
	if alu.Reg.Flag(CC_C) {
		result |= 0x80
	}
	alu.update(CC_N|CC_Z|CC_C, nz8(result)|when(value&0x01 != 0, CC_C))
	return
}

// Daa applies the BCD correction after an addition. Only N, Z and C change.
func (alu Alu) Daa(value uint8) (result uint8) {
	correction := uint(0)
	carry := alu.Reg.Flag(CC_C)

	if value&0x0f > 0x09 || alu.Reg.Flag(CC_H) {
		correction |= 0x06
	}
	if value > 0x99 || carry {
		correction |= 0x60
		carry = true
	}

	sum := uint(value) + correction
	result = uint8(sum)
	if sum > 0xff {
		carry = true
	}

	alu.update(CC_N|CC_Z|CC_C, nz8(result)|when(carry, CC_C))
	return
}

// Mul is the unsigned 8x8 product. Z from the product, C from its bit 7.
func (alu Alu) Mul(a, b uint8) (result uint16) {
	result = uint16(a) * uint16(b)
	cc := when(result == 0, CC_Z) | when(result&0x80 != 0, CC_C)
	alu.update(CC_Z|CC_C, cc)
	return
}

// Sex sign-extends B into D. Sets N and Z from D.
func (alu Alu) Sex(value uint8) (result uint16) {
	result = uint16(int16(int8(value)))
	alu.update(CC_N|CC_Z, nz16(result))
	return
}
