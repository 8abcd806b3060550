package cpu

import (
	"iter"
	"maps"
	"slices"

	"github.com/ezrec/moto6809/internal"
)

// Instruction is an instruction as resolved by the second pass.
type Instruction struct {
	Address     uint16
	Mnemonic    string
	Operand     string // Operand with symbols replaced by $XXXX literals.
	Mode        Mode
	Opcode      uint16 // Page 2 and 3 opcodes carry their prefix.
	HasPostByte bool
	PostByte    uint8
	Value       uint16 // Operand value, offset, or branch displacement.
	Size        int    // Number of operand value bytes, 0 to 2.
}

// Encode returns the bytes of the instruction: prefix, opcode,
// post-byte, then the operand value big-endian.
func (inst *Instruction) Encode() (code []uint8) {
	if inst.Opcode > 0xff {
		code = append(code, uint8(inst.Opcode>>8))
	}
	code = append(code, uint8(inst.Opcode))
	if inst.HasPostByte {
		code = append(code, inst.PostByte)
	}
	switch inst.Size {
	case 1:
		code = append(code, uint8(inst.Value))
	case 2:
		code = append(code, uint8(inst.Value>>8), uint8(inst.Value))
	}
	return
}

// Statement is a source line that occupies memory.
type Statement struct {
	LineNo      int
	Address     uint16
	Label       string
	Mnemonic    string
	Operand     string       // Operand as written.
	Resolved    string       // Operand with symbols resolved.
	Code        []uint8      // Emitted bytes, including NOP padding.
	Size        int          // Bytes reserved.
	Instruction *Instruction // Nil for data directives.
}

// Program is the result of an assembly.
type Program struct {
	Start      uint16       // Address of the first emitted byte.
	End        uint16       // Address past the last byte emitted after Start.
	EndLine    int          // Line of the END directive.
	DirectPage uint8        // Last SETDP value.
	Source     []string     // Source lines.
	Symbols    *SymbolTable // Constants and labels.
	Statements []Statement  // Lines occupying memory, in source order.

	lines map[uint16]int // Instruction address to source line.
	sizes map[uint16]int // Instruction address to instruction size.
}

// Debug locates the statement covering an address.
type Debug struct {
	*Statement
	Index int // Offset of the address within the statement.
}

// Debug finds the statement covering an address.
func (prog *Program) Debug(address uint16) (dbg Debug) {
	for n, stmt := range prog.Statements {
		if address >= stmt.Address && int(address) < int(stmt.Address)+stmt.Size {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(address - stmt.Address),
			}
			break
		}
	}

	return
}

// LineMap returns a copy of the instruction address to source line map.
func (prog *Program) LineMap() map[uint16]int {
	return maps.Clone(prog.lines)
}

// Line returns the source line of the instruction at an address.
func (prog *Program) Line(address uint16) (lineNo int, ok bool) {
	lineNo, ok = prog.lines[address]
	return
}

// Lines iterates the instruction address to source line map in address order.
func (prog *Program) Lines() iter.Seq2[uint16, int] {
	return internal.IterSorted(prog.lines)
}

// InstructionSize returns the size of the instruction at an address,
// or 1 if no instruction starts there.
func (prog *Program) InstructionSize(address uint16) int {
	size, ok := prog.sizes[address]
	if !ok {
		return 1
	}
	return size
}

// Operand returns the operand text of the instruction at an address,
// or "----" if no instruction starts there.
func (prog *Program) Operand(address uint16) string {
	if _, ok := prog.lines[address]; !ok {
		return "----"
	}
	return prog.Debug(address).Operand
}

// Listing iterates the statements in address order.
func (prog *Program) Listing() iter.Seq[*Statement] {
	return func(yield func(*Statement) bool) {
		order := make([]int, len(prog.Statements))
		for n := range order {
			order[n] = n
		}
		slices.SortStableFunc(order, func(a, b int) int {
			return int(prog.Statements[a].Address) - int(prog.Statements[b].Address)
		})
		for _, n := range order {
			if !yield(&prog.Statements[n]) {
				return
			}
		}
	}
}

// Bytes iterates every emitted byte with its address.
func (prog *Program) Bytes() iter.Seq2[uint16, uint8] {
	return func(yield func(address uint16, value uint8) bool) {
		for stmt := range prog.Listing() {
			for n, value := range stmt.Code {
				if !yield(stmt.Address+uint16(n), value) {
					return
				}
			}
		}
	}
}
