package memory

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

type changeLog struct {
	changes [][3]uint16
}

func (cl *changeLog) MemoryChanged(address uint16, old, new uint8) {
	cl.changes = append(cl.changes, [3]uint16{address, uint16(old), uint16(new)})
}

func TestAddressSpace_Word(t *testing.T) {
	assert := assert.New(t)

	as := &AddressSpace{}

	err := as.WriteWord(0x1000, 0xBEEF)
	assert.NoError(err)
	assert.Equal(uint8(0xBE), as.Read(0x1000))
	assert.Equal(uint8(0xEF), as.Read(0x1001))
	assert.Equal(uint16(0xBEEF), as.ReadWord(0x1000))
}

func TestAddressSpace_Protected(t *testing.T) {
	assert := assert.New(t)

	as := &AddressSpace{}

	for _, addr := range []uint16{0x8000, 0x9abc, 0xFFFF} {
		err := as.Write(addr, 0x55)
		assert.True(errors.Is(err, ErrProtected(0)), "%04x", addr)
		assert.Equal(ErrProtected(addr), err)
		assert.Equal(uint8(0), as.Read(addr))

		err = as.Load(addr, 0x55)
		assert.NoError(err)
		assert.Equal(uint8(0x55), as.Read(addr))
	}

	// Straddling the boundary writes nothing.
	err := as.WriteWord(0x7FFF, 0x1234)
	assert.Equal(ErrProtected(0x8000), err)
	assert.Equal(uint8(0), as.Read(0x7FFF))

	err = as.WriteStack(0x8010, 1)
	assert.Error(err)
	assert.Equal(0, len(slices.Collect(as.StackUsage())))
}

func TestAddressSpace_Seal(t *testing.T) {
	assert := assert.New(t)

	as := &AddressSpace{}

	assert.NoError(as.LoadWord(0xFFFE, 0x8000))
	as.Seal()
	assert.True(as.Sealed())
	assert.Equal(ErrSealed, as.Load(0x8000, 0x12))
	assert.Equal(uint16(0x8000), as.ReadWord(0xFFFE))

	// RAM still writable at runtime.
	assert.NoError(as.Write(0x0010, 0x12))

	as.Reset()
	assert.False(as.Sealed())
	assert.Equal(uint16(0), as.ReadWord(0xFFFE))
	assert.Equal(uint8(0), as.Read(0x0010))
}

func TestAddressSpace_StackUsage(t *testing.T) {
	assert := assert.New(t)

	as := &AddressSpace{}

	assert.NoError(as.WriteStack(0x7FFE, 0x01))
	assert.NoError(as.WriteStack(0x7FFD, 0x02))
	assert.NoError(as.Write(0x7000, 0x03))

	assert.Equal([]uint16{0x7FFD, 0x7FFE}, slices.Collect(as.StackUsage()))

	as.Reset()
	assert.Equal(0, len(slices.Collect(as.StackUsage())))
}

func TestAddressSpace_Observer(t *testing.T) {
	assert := assert.New(t)

	cl := &changeLog{}
	as := &AddressSpace{Observer: cl}

	assert.NoError(as.Write(0x20, 0x7F))
	assert.NoError(as.Write(0x20, 0x7F))
	assert.NoError(as.Load(0x8000, 0x86, 0x05))

	assert.Equal([][3]uint16{
		{0x20, 0x00, 0x7F},
		{0x8000, 0x00, 0x86},
		{0x8001, 0x00, 0x05},
	}, cl.changes)

	assert.Equal([]uint8{0x86, 0x05, 0x00}, as.Dump(0x8000, 3))
}
