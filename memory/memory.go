// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package memory

import (
	"iter"
	"maps"
	"slices"
)

const (
	RAM_START = uint16(0x0000) // First RAM address.
	RAM_END   = uint16(0x7FFF) // Last RAM address.
	ROM_START = uint16(0x8000) // First ROM address.
	ROM_END   = uint16(0xFFFF) // Last ROM address.

	SIZE = 0x10000 // Size of the address space.
)

// Observer receives notification of byte changes.
type Observer interface {
	MemoryChanged(address uint16, old, new uint8)
}

// AddressSpace is a flat 64KB address space.
type AddressSpace struct {
	Observer Observer // If set, notified of every changed byte.

	data   [SIZE]uint8
	sealed bool
	stack  map[uint16]struct{}
}

// IsRom returns true if the address lies in the read-only region.
func IsRom(address uint16) bool {
	return address >= ROM_START
}

// Reset clears memory, the stack usage set, and the load seal.
func (as *AddressSpace) Reset() {
	clear(as.data[:])
	clear(as.stack)
	as.sealed = false
}

// Seal closes the load path. Called once the program is loaded.
func (as *AddressSpace) Seal() {
	as.sealed = true
}

// Sealed reports if the load path is closed.
func (as *AddressSpace) Sealed() bool {
	return as.sealed
}

// Read a byte.
func (as *AddressSpace) Read(address uint16) uint8 {
	return as.data[address]
}

// ReadWord reads a big-endian word.
func (as *AddressSpace) ReadWord(address uint16) uint16 {
	return uint16(as.data[address])<<8 | uint16(as.data[address+1])
}

// Write a byte via the runtime path.
func (as *AddressSpace) Write(address uint16, value uint8) (err error) {
	if IsRom(address) {
		err = ErrProtected(address)
		return
	}

	as.store(address, value)

	return
}

// WriteWord writes a big-endian word via the runtime path.
// Neither byte is written if either lies in ROM.
func (as *AddressSpace) WriteWord(address uint16, value uint16) (err error) {
	for _, addr := range []uint16{address, address + 1} {
		if IsRom(addr) {
			err = ErrProtected(addr)
			return
		}
	}

	as.store(address, uint8(value>>8))
	as.store(address+1, uint8(value))

	return
}

// WriteStack writes a byte on behalf of a stack push, and records
// the address in the stack usage set.
func (as *AddressSpace) WriteStack(address uint16, value uint8) (err error) {
	err = as.Write(address, value)
	if err != nil {
		return
	}

	if as.stack == nil {
		as.stack = make(map[uint16]struct{}, 64)
	}
	as.stack[address] = struct{}{}

	return
}

// Load bytes via the assembler path. Any address is writable until Seal().
func (as *AddressSpace) Load(address uint16, data ...uint8) (err error) {
	if as.sealed {
		err = ErrSealed
		return
	}

	for n, value := range data {
		as.store(address+uint16(n), value)
	}

	return
}

// LoadWord loads a big-endian word via the assembler path.
func (as *AddressSpace) LoadWord(address uint16, value uint16) error {
	return as.Load(address, uint8(value>>8), uint8(value))
}

// StackUsage iterates over the addresses touched by stack pushes, in order.
func (as *AddressSpace) StackUsage() iter.Seq[uint16] {
	return slices.Values(slices.Sorted(maps.Keys(as.stack)))
}

// Dump returns a copy of length bytes starting at address.
func (as *AddressSpace) Dump(address uint16, length int) (data []uint8) {
	data = make([]uint8, length)
	for n := range length {
		data[n] = as.data[address+uint16(n)]
	}
	return
}

// Snapshot returns a copy of the whole address space.
func (as *AddressSpace) Snapshot() (data [SIZE]uint8) {
	return as.data
}

func (as *AddressSpace) store(address uint16, value uint8) {
	old := as.data[address]
	as.data[address] = value
	if as.Observer != nil && old != value {
		as.Observer.MemoryChanged(address, old, value)
	}
}
