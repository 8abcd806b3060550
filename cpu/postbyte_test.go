package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexEncode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		index Index
		code  []uint8
	}){
		{"zero_x", Index{Register: INDEX_REG_X, Mode: INDEX_ZERO}, []uint8{0x84}},
		{"offset5_y", Index{Register: INDEX_REG_Y, Mode: INDEX_OFFSET5, Offset: -1}, []uint8{0x3F}},
		{"offset5_u", Index{Register: INDEX_REG_U, Mode: INDEX_OFFSET5, Offset: 15}, []uint8{0x4F}},
		{"inc2_s", Index{Register: INDEX_REG_S, Mode: INDEX_INC2}, []uint8{0xE1}},
		{"dec1_x", Index{Register: INDEX_REG_X, Mode: INDEX_DEC1}, []uint8{0x82}},
		{"acc_b", Index{Register: INDEX_REG_X, Mode: INDEX_ACC_B}, []uint8{0x85}},
		{"acc_a", Index{Register: INDEX_REG_Y, Mode: INDEX_ACC_A}, []uint8{0xA6}},
		{"acc_d", Index{Register: INDEX_REG_U, Mode: INDEX_ACC_D}, []uint8{0xCB}},
		{"offset8", Index{Register: INDEX_REG_X, Mode: INDEX_OFFSET8, Offset: -128}, []uint8{0x88, 0x80}},
		{"offset16", Index{Register: INDEX_REG_X, Mode: INDEX_OFFSET16, Offset: 0x1234}, []uint8{0x89, 0x12, 0x34}},
		{"indirect", Index{Register: INDEX_REG_X, Mode: INDEX_OFFSET16, Offset: 0x1234, Indirect: true}, []uint8{0x99, 0x12, 0x34}},
		{"pc8", Index{Register: INDEX_REG_PC, Mode: INDEX_PC8, Offset: 4}, []uint8{0x8C, 0x04}},
		{"pc16", Index{Register: INDEX_REG_PC, Mode: INDEX_PC16, Offset: -2}, []uint8{0x8D, 0xFF, 0xFE}},
		{"extended", Index{Register: INDEX_REG_NONE, Mode: INDEX_EXTENDED, Offset: 0x7F00, Indirect: true}, []uint8{0x9F, 0x7F, 0x00}},
	}

	for _, entry := range table {
		code, err := entry.index.Encode()
		assert.NoError(err, entry.name)
		assert.Equal(entry.code, code, entry.name)

		ix, size, err := DecodeIndexBytes(code)
		assert.NoError(err, entry.name)
		assert.Equal(len(code), size, entry.name)
		assert.Equal(entry.index, ix, entry.name)
	}
}

func TestIndexEncodeInvalid(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		index Index
	}){
		{"offset5_range", Index{Register: INDEX_REG_X, Mode: INDEX_OFFSET5, Offset: 16}},
		{"offset5_indirect", Index{Register: INDEX_REG_X, Mode: INDEX_OFFSET5, Indirect: true}},
		{"inc1_indirect", Index{Register: INDEX_REG_X, Mode: INDEX_INC1, Indirect: true}},
		{"dec1_indirect", Index{Register: INDEX_REG_X, Mode: INDEX_DEC1, Indirect: true}},
		{"offset8_range", Index{Register: INDEX_REG_X, Mode: INDEX_OFFSET8, Offset: 200}},
		{"pc_reg", Index{Register: INDEX_REG_X, Mode: INDEX_PC8}},
		{"extended_direct", Index{Register: INDEX_REG_NONE, Mode: INDEX_EXTENDED}},
		{"none_reg", Index{Register: INDEX_REG_NONE, Mode: INDEX_ZERO}},
	}

	for _, entry := range table {
		_, err := entry.index.Encode()
		assert.ErrorIs(err, ErrIndexInvalid, entry.name)
	}
}

func TestIndexDecodeInvalid(t *testing.T) {
	assert := assert.New(t)

	for _, postbyte := range []uint8{0x87, 0x8A, 0x8E, 0x8F, 0x90, 0x92, 0x97} {
		_, _, err := DecodeIndex(postbyte)
		assert.True(errors.Is(err, ErrPostByte(0)), "%02X", postbyte)
	}

	_, _, err := DecodeIndexBytes([]uint8{0x89, 0x12})
	assert.ErrorIs(err, ErrIndexInvalid)
}

func TestIndexFor(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		reg      IndexReg
		offset   int
		indirect bool
		mode     IndexMode
	}){
		{INDEX_REG_X, 0, false, INDEX_ZERO},
		{INDEX_REG_X, 0, true, INDEX_ZERO},
		{INDEX_REG_Y, -16, false, INDEX_OFFSET5},
		{INDEX_REG_Y, 15, false, INDEX_OFFSET5},
		{INDEX_REG_Y, 15, true, INDEX_OFFSET8},
		{INDEX_REG_U, -17, false, INDEX_OFFSET8},
		{INDEX_REG_U, 127, false, INDEX_OFFSET8},
		{INDEX_REG_S, 128, false, INDEX_OFFSET16},
		{INDEX_REG_S, -32768, false, INDEX_OFFSET16},
		{INDEX_REG_PC, 0, false, INDEX_PC8},
		{INDEX_REG_PC, -129, false, INDEX_PC16},
	}

	for _, entry := range table {
		ix, err := IndexFor(entry.reg, entry.offset, entry.indirect)
		assert.NoError(err)
		assert.Equal(entry.mode, ix.Mode, "%v %d", entry.reg, entry.offset)
	}

	_, err := IndexFor(INDEX_REG_X, 0x10000, false)
	assert.ErrorIs(err, ErrIndexInvalid)
}

func TestTransfer(t *testing.T) {
	assert := assert.New(t)

	postbyte, err := EncodeTransfer("A", "B")
	assert.NoError(err)
	assert.Equal(uint8(0x89), postbyte)

	postbyte, err = EncodeTransfer("x", "y")
	assert.NoError(err)
	assert.Equal(uint8(0x12), postbyte)

	postbyte, err = EncodeTransfer("CCR", "DP")
	assert.NoError(err)
	assert.Equal(uint8(0xAB), postbyte)

	src, dst, err := DecodeTransfer(0x89)
	assert.NoError(err)
	assert.Equal(REG_A, src)
	assert.Equal(REG_B, dst)

	_, err = EncodeTransfer("A", "Q")
	assert.ErrorIs(err, ErrRegisterInvalid)

	_, _, err = DecodeTransfer(0x6C)
	assert.Error(err)
}

func TestStackMask(t *testing.T) {
	assert := assert.New(t)

	mask, err := EncodeStackMask([]string{"PC", "U", "Y", "X", "DP", "B", "A", "CC"}, true)
	assert.NoError(err)
	assert.Equal(uint8(0xFF), mask)

	mask, err = EncodeStackMask([]string{"D", "x"}, true)
	assert.NoError(err)
	assert.Equal(STACK_A|STACK_B|STACK_X, mask)

	mask, err = EncodeStackMask([]string{"S"}, false)
	assert.NoError(err)
	assert.Equal(STACK_OTHER, mask)

	_, err = EncodeStackMask([]string{"S"}, true)
	assert.ErrorIs(err, ErrRegisterInvalid)

	assert.Equal(
		[]Register{REG_PC, REG_U, REG_Y, REG_X, REG_DP, REG_B, REG_A, REG_CC},
		StackRegisters(0xFF, true))
	assert.Equal(
		[]Register{REG_S, REG_A},
		StackRegisters(STACK_OTHER|STACK_A, false))
}
