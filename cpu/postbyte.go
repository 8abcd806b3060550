package cpu

import (
	"strings"
)

// IndexReg is the base register of an indexed operand.
type IndexReg int

//go:generate go tool stringer -linecomment -type=IndexMode,IndexReg

const (
	INDEX_REG_X    IndexReg = iota // X
	INDEX_REG_Y                    // Y
	INDEX_REG_U                    // U
	INDEX_REG_S                    // S
	INDEX_REG_PC                   // PC
	INDEX_REG_NONE                 // none
)

// IndexMode is an indexed addressing sub-mode.
type IndexMode int

const (
	INDEX_OFFSET5  IndexMode = iota // n5,R
	INDEX_INC1                      // ,R+
	INDEX_INC2                      // ,R++
	INDEX_DEC1                      // ,-R
	INDEX_DEC2                      // ,--R
	INDEX_ZERO                      // ,R
	INDEX_ACC_B                     // B,R
	INDEX_ACC_A                     // A,R
	INDEX_OFFSET8                   // n8,R
	INDEX_OFFSET16                  // n16,R
	INDEX_ACC_D                     // D,R
	INDEX_PC8                       // n8,PC
	INDEX_PC16                      // n16,PC
	INDEX_EXTENDED                  // [n16]
)

// Low nibble of the complex form post-byte, by sub-mode.
var indexNibble = map[IndexMode]uint8{
	INDEX_INC1:     0x0,
	INDEX_INC2:     0x1,
	INDEX_DEC1:     0x2,
	INDEX_DEC2:     0x3,
	INDEX_ZERO:     0x4,
	INDEX_ACC_B:    0x5,
	INDEX_ACC_A:    0x6,
	INDEX_OFFSET8:  0x8,
	INDEX_OFFSET16: 0x9,
	INDEX_ACC_D:    0xB,
	INDEX_PC8:      0xC,
	INDEX_PC16:     0xD,
	INDEX_EXTENDED: 0xF,
}

// OffsetSize is the number of offset bytes following the post-byte.
func (mode IndexMode) OffsetSize() int {
	switch mode {
	case INDEX_OFFSET8, INDEX_PC8:
		return 1
	case INDEX_OFFSET16, INDEX_PC16, INDEX_EXTENDED:
		return 2
	}
	return 0
}

// Index is a decoded indexed operand.
type Index struct {
	Register IndexReg  // Base register.
	Mode     IndexMode // Sub-mode.
	Offset   int16     // Constant offset, or the address for [n16].
	Indirect bool      // Dereference the computed address.
}

// Encode returns the post-byte followed by any offset bytes.
func (ix Index) Encode() (code []uint8, err error) {
	switch ix.Mode {
	case INDEX_PC8, INDEX_PC16:
		if ix.Register != INDEX_REG_PC {
			err = ErrIndexInvalid
			return
		}
	case INDEX_EXTENDED:
		if ix.Register != INDEX_REG_NONE || !ix.Indirect {
			err = ErrIndexInvalid
			return
		}
	default:
		if ix.Register > INDEX_REG_S || ix.Register < INDEX_REG_X {
			err = ErrIndexInvalid
			return
		}
	}

	reg := uint8(0)
	if ix.Register <= INDEX_REG_S {
		reg = uint8(ix.Register) << 5
	}

	if ix.Mode == INDEX_OFFSET5 {
		if ix.Indirect || ix.Offset < -16 || ix.Offset > 15 {
			err = ErrIndexInvalid
			return
		}
		code = []uint8{reg | uint8(ix.Offset)&0x1f}
		return
	}

	nibble, ok := indexNibble[ix.Mode]
	if !ok {
		err = ErrIndexInvalid
		return
	}

	postbyte := 0x80 | reg | nibble
	if ix.Indirect {
		if ix.Mode == INDEX_INC1 || ix.Mode == INDEX_DEC1 {
			err = ErrIndexInvalid
			return
		}
		postbyte |= 0x10
	}
	code = []uint8{postbyte}

	switch ix.Mode.OffsetSize() {
	case 1:
		if ix.Offset < -128 || ix.Offset > 127 {
			err = ErrIndexInvalid
			return
		}
		code = append(code, uint8(ix.Offset))
	case 2:
		code = append(code, uint8(uint16(ix.Offset)>>8), uint8(ix.Offset))
	}

	return
}

// DecodeIndex decodes a post-byte. need is the number of offset bytes
// that follow, to be applied with SetOffset.
func DecodeIndex(postbyte uint8) (ix Index, need int, err error) {
	if postbyte&0x80 == 0 {
		ix.Register = IndexReg((postbyte >> 5) & 3)
		ix.Mode = INDEX_OFFSET5
		ix.Offset = int16(postbyte & 0x1f)
		if ix.Offset&0x10 != 0 {
			ix.Offset -= 0x20
		}
		return
	}

	nibble := postbyte & 0x0f
	found := false
	for mode, value := range indexNibble {
		if value == nibble {
			ix.Mode = mode
			found = true
			break
		}
	}
	if !found {
		err = ErrPostByte(postbyte)
		return
	}

	ix.Indirect = postbyte&0x10 != 0
	switch ix.Mode {
	case INDEX_INC1, INDEX_DEC1:
		if ix.Indirect {
			err = ErrPostByte(postbyte)
			return
		}
	case INDEX_EXTENDED:
		if !ix.Indirect {
			err = ErrPostByte(postbyte)
			return
		}
	}

	switch ix.Mode {
	case INDEX_PC8, INDEX_PC16:
		ix.Register = INDEX_REG_PC
	case INDEX_EXTENDED:
		ix.Register = INDEX_REG_NONE
	default:
		ix.Register = IndexReg((postbyte >> 5) & 3)
	}

	need = ix.Mode.OffsetSize()

	return
}

// SetOffset applies the offset bytes following the post-byte.
func (ix *Index) SetOffset(data []uint8) {
	switch len(data) {
	case 1:
		ix.Offset = int16(int8(data[0]))
	case 2:
		ix.Offset = int16(uint16(data[0])<<8 | uint16(data[1]))
	}
}

// DecodeIndexBytes decodes a post-byte and its offset bytes.
func DecodeIndexBytes(code []uint8) (ix Index, size int, err error) {
	if len(code) == 0 {
		err = ErrIndexInvalid
		return
	}
	ix, need, err := DecodeIndex(code[0])
	if err != nil {
		return
	}
	if len(code) < 1+need {
		err = ErrIndexInvalid
		return
	}
	ix.SetOffset(code[1 : 1+need])
	size = 1 + need
	return
}

// IndexFor picks the shortest constant offset form from a base register.
func IndexFor(reg IndexReg, offset int, indirect bool) (ix Index, err error) {
	ix = Index{Register: reg, Offset: int16(offset), Indirect: indirect}

	switch {
	case offset < -32768 || offset > 65535:
		err = ErrIndexInvalid
		return
	case reg == INDEX_REG_PC:
		ix.Mode = INDEX_PC16
		if offset >= -128 && offset <= 127 {
			ix.Mode = INDEX_PC8
		}
	case offset == 0:
		ix.Mode = INDEX_ZERO
	case offset >= -16 && offset <= 15 && !indirect:
		ix.Mode = INDEX_OFFSET5
	case offset >= -128 && offset <= 127:
		ix.Mode = INDEX_OFFSET8
	default:
		ix.Mode = INDEX_OFFSET16
	}

	return
}

// EncodeTransfer builds the EXG/TFR post-byte.
func EncodeTransfer(src, dst string) (postbyte uint8, err error) {
	rs, ok := ParseRegister(src)
	if !ok {
		err = ErrRegisterInvalid
		return
	}
	rd, ok := ParseRegister(dst)
	if !ok {
		err = ErrRegisterInvalid
		return
	}

	postbyte = uint8(rs)<<4 | uint8(rd)
	return
}

// DecodeTransfer splits the EXG/TFR post-byte.
func DecodeTransfer(postbyte uint8) (src, dst Register, err error) {
	src = Register(postbyte >> 4)
	dst = Register(postbyte & 0xf)
	if _, ok := registerNames[src]; !ok {
		err = ErrPostByte(postbyte)
		return
	}
	if _, ok := registerNames[dst]; !ok {
		err = ErrPostByte(postbyte)
		return
	}
	return
}

// Stack post-byte bits for PSH/PUL.
const (
	STACK_CC    = uint8(0x01)
	STACK_A     = uint8(0x02)
	STACK_B     = uint8(0x04)
	STACK_DP    = uint8(0x08)
	STACK_X     = uint8(0x10)
	STACK_Y     = uint8(0x20)
	STACK_OTHER = uint8(0x40) // U on the S stack, S on the U stack.
	STACK_PC    = uint8(0x80)
)

// EncodeStackMask builds the PSH/PUL post-byte from register names.
// system selects the S stack, where U is the other stack pointer.
func EncodeStackMask(names []string, system bool) (mask uint8, err error) {
	other := "U"
	if !system {
		other = "S"
	}

	for _, name := range names {
		name = strings.ToUpper(strings.TrimSpace(name))
		switch name {
		case "CC", "CCR":
			mask |= STACK_CC
		case "A":
			mask |= STACK_A
		case "B":
			mask |= STACK_B
		case "D":
			mask |= STACK_A | STACK_B
		case "DP":
			mask |= STACK_DP
		case "X":
			mask |= STACK_X
		case "Y":
			mask |= STACK_Y
		case other:
			mask |= STACK_OTHER
		case "PC":
			mask |= STACK_PC
		default:
			err = ErrRegisterInvalid
			return
		}
	}

	return
}

// StackRegisters lists the registers in a PSH/PUL mask, in push order.
func StackRegisters(mask uint8, system bool) (regs []Register) {
	other := REG_U
	if !system {
		other = REG_S
	}

	order := []struct {
		bit uint8
		reg Register
	}{
		{STACK_PC, REG_PC},
		{STACK_OTHER, other},
		{STACK_Y, REG_Y},
		{STACK_X, REG_X},
		{STACK_DP, REG_DP},
		{STACK_B, REG_B},
		{STACK_A, REG_A},
		{STACK_CC, REG_CC},
	}

	for _, item := range order {
		if mask&item.bit != 0 {
			regs = append(regs, item.reg)
		}
	}

	return
}
