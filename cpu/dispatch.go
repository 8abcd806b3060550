package cpu

import (
	"log"
	"strings"
	"sync"
)

// handler executes one decoded instruction, with PC past the opcode.
type handler func(cpu *Cpu) error

// builder makes the handler of a mnemonic for one addressing mode.
type builder func(mode Mode) handler

// dispatch returns the page 1, 2 and 3 handler tables, built on first use
// from the opcode table.
var dispatch = sync.OnceValue(func() (tables *[3][256]handler) {
	tables = &[3][256]handler{}

	for mnemonic, modes := range Opcodes() {
		build := semantics(mnemonic)
		if build == nil {
			continue
		}
		for mode, opcode := range modes {
			page := 0
			switch uint8(opcode >> 8) {
			case PAGE_2:
				page = 1
			case PAGE_3:
				page = 2
			}
			tables[page][uint8(opcode)] = build(mode)
		}
	}

	return
})

// read8 returns the operand byte of a mode.
func read8(mode Mode) func(cpu *Cpu) (uint8, error) {
	if mode == MODE_IMMEDIATE {
		return func(cpu *Cpu) (uint8, error) {
			return cpu.EA.Fetch8(), nil
		}
	}
	return func(cpu *Cpu) (value uint8, err error) {
		address, err := cpu.EA.Address(mode)
		if err != nil {
			return
		}
		value = cpu.Mem.Read(address)
		return
	}
}

// read16 returns the operand word of a mode.
func read16(mode Mode) func(cpu *Cpu) (uint16, error) {
	if mode == MODE_IMMEDIATE {
		return func(cpu *Cpu) (uint16, error) {
			return cpu.EA.Fetch16(), nil
		}
	}
	return func(cpu *Cpu) (value uint16, err error) {
		address, err := cpu.EA.Address(mode)
		if err != nil {
			return
		}
		value = cpu.Mem.ReadWord(address)
		return
	}
}

type op8 func(cpu *Cpu, a, b uint8) uint8
type op16 func(cpu *Cpu, a, b uint16) uint16

var (
	opSub8 op8 = func(cpu *Cpu, a, b uint8) uint8 { return cpu.Alu.Sub8(a, b, false) }
	opSbc8 op8 = func(cpu *Cpu, a, b uint8) uint8 { return cpu.Alu.Sub8(a, b, cpu.Flag(CC_C)) }
	opAdd8 op8 = func(cpu *Cpu, a, b uint8) uint8 { return cpu.Alu.Add8(a, b, false) }
	opAdc8 op8 = func(cpu *Cpu, a, b uint8) uint8 { return cpu.Alu.Add8(a, b, cpu.Flag(CC_C)) }
	opAnd8 op8 = func(cpu *Cpu, a, b uint8) uint8 { return cpu.Alu.And8(a, b) }
	opOr8  op8 = func(cpu *Cpu, a, b uint8) uint8 { return cpu.Alu.Or8(a, b) }
	opEor8 op8 = func(cpu *Cpu, a, b uint8) uint8 { return cpu.Alu.Eor8(a, b) }
	opLd8  op8 = func(cpu *Cpu, a, b uint8) uint8 { return cpu.Alu.Load8(b) }

	opSub16 op16 = func(cpu *Cpu, a, b uint16) uint16 { return cpu.Alu.Sub16(a, b) }
	opAdd16 op16 = func(cpu *Cpu, a, b uint16) uint16 { return cpu.Alu.Add16(a, b) }
	opLd16  op16 = func(cpu *Cpu, a, b uint16) uint16 { return cpu.Alu.Load16(b) }
)

// alu8 combines an 8-bit register with the operand.
func alu8(reg Register, op op8, store bool) builder {
	return func(mode Mode) handler {
		read := read8(mode)
		return func(cpu *Cpu) (err error) {
			value, err := read(cpu)
			if err != nil {
				return
			}
			result := op(cpu, uint8(cpu.Get(reg)), value)
			if store {
				cpu.Set(reg, uint16(result))
			}
			return
		}
	}
}

// alu16 combines a 16-bit register with the operand.
func alu16(reg Register, op op16, store bool) builder {
	return func(mode Mode) handler {
		read := read16(mode)
		return func(cpu *Cpu) (err error) {
			value, err := read(cpu)
			if err != nil {
				return
			}
			result := op(cpu, cpu.Get(reg), value)
			if store {
				cpu.Set(reg, result)
			}
			return
		}
	}
}

// store writes a register to memory, setting N and Z.
func store(reg Register) builder {
	return func(mode Mode) handler {
		return func(cpu *Cpu) (err error) {
			address, err := cpu.EA.Address(mode)
			if err != nil {
				return
			}
			value := cpu.Get(reg)
			if reg.Wide() {
				err = cpu.Mem.WriteWord(address, cpu.Alu.Load16(value))
			} else {
				err = cpu.Mem.Write(address, cpu.Alu.Load8(uint8(value)))
			}
			return
		}
	}
}

type unary func(alu Alu, value uint8) uint8

var unaryOps = map[string]unary{
	"NEG": Alu.Neg8,
	"COM": Alu.Com8,
	"LSR": Alu.Lsr8,
	"ROR": Alu.Ror8,
	"ASR": Alu.Asr8,
	"ASL": Alu.Asl8,
	"LSL": Alu.Asl8,
	"ROL": Alu.Rol8,
	"DEC": Alu.Dec8,
	"INC": Alu.Inc8,
	"TST": Alu.Tst8,
	"CLR": func(alu Alu, value uint8) uint8 { return alu.Clr8() },
}

// modify is a read-modify-write of memory. TST only reads.
func modify(mnemonic string, op unary) builder {
	return func(mode Mode) handler {
		return func(cpu *Cpu) (err error) {
			address, err := cpu.EA.Address(mode)
			if err != nil {
				return
			}
			result := op(cpu.Alu, cpu.Mem.Read(address))
			if mnemonic != "TST" {
				err = cpu.Mem.Write(address, result)
			}
			return
		}
	}
}

// inherent8 applies a unary operation to an accumulator.
func inherent8(reg Register, op unary) builder {
	return func(Mode) handler {
		return func(cpu *Cpu) error {
			cpu.Set(reg, uint16(op(cpu.Alu, uint8(cpu.Get(reg)))))
			return nil
		}
	}
}

// Branch conditions, by short mnemonic.
var conditions = map[string]func(cc uint8) bool{
	"BRA": func(cc uint8) bool { return true },
	"BRN": func(cc uint8) bool { return false },
	"BHI": func(cc uint8) bool { return cc&(CC_C|CC_Z) == 0 },
	"BLS": func(cc uint8) bool { return cc&(CC_C|CC_Z) != 0 },
	"BCC": func(cc uint8) bool { return cc&CC_C == 0 },
	"BHS": func(cc uint8) bool { return cc&CC_C == 0 },
	"BCS": func(cc uint8) bool { return cc&CC_C != 0 },
	"BLO": func(cc uint8) bool { return cc&CC_C != 0 },
	"BNE": func(cc uint8) bool { return cc&CC_Z == 0 },
	"BEQ": func(cc uint8) bool { return cc&CC_Z != 0 },
	"BVC": func(cc uint8) bool { return cc&CC_V == 0 },
	"BVS": func(cc uint8) bool { return cc&CC_V != 0 },
	"BPL": func(cc uint8) bool { return cc&CC_N == 0 },
	"BMI": func(cc uint8) bool { return cc&CC_N != 0 },
	"BGE": func(cc uint8) bool { return (cc&CC_N != 0) == (cc&CC_V != 0) },
	"BLT": func(cc uint8) bool { return (cc&CC_N != 0) != (cc&CC_V != 0) },
	"BGT": func(cc uint8) bool { return cc&CC_Z == 0 && (cc&CC_N != 0) == (cc&CC_V != 0) },
	"BLE": func(cc uint8) bool { return cc&CC_Z != 0 || (cc&CC_N != 0) != (cc&CC_V != 0) },
}

// displacement fetches a short or long branch offset.
func displacement(cpu *Cpu, long bool) uint16 {
	if long {
		return cpu.EA.Fetch16()
	}
	return uint16(int16(int8(cpu.EA.Fetch8())))
}

// branch always consumes its offset, and adds it to PC if taken.
func branch(cond func(cc uint8) bool, long bool) builder {
	return func(Mode) handler {
		return func(cpu *Cpu) error {
			offset := displacement(cpu, long)
			if cond(cpu.CC()) {
				cpu.SetPC(cpu.PC() + offset)
			}
			return nil
		}
	}
}

// subroutine pushes the return address, and branches.
func subroutine(long bool) builder {
	return func(Mode) handler {
		return func(cpu *Cpu) (err error) {
			offset := displacement(cpu, long)
			err = cpu.SysStack.Push16(cpu.PC())
			if err != nil {
				return
			}
			cpu.SetPC(cpu.PC() + offset)
			return
		}
	}
}

func jump(call bool) builder {
	return func(mode Mode) handler {
		return func(cpu *Cpu) (err error) {
			address, err := cpu.EA.Address(mode)
			if err != nil {
				return
			}
			if call {
				err = cpu.SysStack.Push16(cpu.PC())
				if err != nil {
					return
				}
			}
			cpu.SetPC(address)
			return
		}
	}
}

// lea loads an effective address. Only X and Y set flags.
func lea(reg Register) builder {
	return func(mode Mode) handler {
		return func(cpu *Cpu) (err error) {
			address, err := cpu.EA.Address(mode)
			if err != nil {
				return
			}
			cpu.Set(reg, address)
			if reg == REG_X || reg == REG_Y {
				cpu.Alu.Test16(address)
			}
			return
		}
	}
}

func stack(pointer Register, push bool) builder {
	return func(Mode) handler {
		return func(cpu *Cpu) (err error) {
			s := cpu.SysStack
			if pointer == REG_U {
				s = cpu.UserStack
			}
			mask := cpu.EA.Fetch8()
			if push {
				err = s.PushRegisters(mask)
			} else {
				s.PullRegisters(mask)
			}
			return
		}
	}
}

func fixed(exec handler) builder {
	return func(Mode) handler {
		return exec
	}
}

// placeholder stands in for interrupt and wait behaviour that is not modelled.
func placeholder(mnemonic string) builder {
	return fixed(func(cpu *Cpu) error {
		log.Printf("cpu: %04X: %v not modelled, ignored", cpu.PC(), mnemonic)
		return nil
	})
}

var semanticTable = map[string]builder{
	"SUBA": alu8(REG_A, opSub8, true),
	"CMPA": alu8(REG_A, opSub8, false),
	"SBCA": alu8(REG_A, opSbc8, true),
	"ANDA": alu8(REG_A, opAnd8, true),
	"BITA": alu8(REG_A, opAnd8, false),
	"LDA":  alu8(REG_A, opLd8, true),
	"STA":  store(REG_A),
	"EORA": alu8(REG_A, opEor8, true),
	"ADCA": alu8(REG_A, opAdc8, true),
	"ORA":  alu8(REG_A, opOr8, true),
	"ADDA": alu8(REG_A, opAdd8, true),

	"SUBB": alu8(REG_B, opSub8, true),
	"CMPB": alu8(REG_B, opSub8, false),
	"SBCB": alu8(REG_B, opSbc8, true),
	"ANDB": alu8(REG_B, opAnd8, true),
	"BITB": alu8(REG_B, opAnd8, false),
	"LDB":  alu8(REG_B, opLd8, true),
	"STB":  store(REG_B),
	"EORB": alu8(REG_B, opEor8, true),
	"ADCB": alu8(REG_B, opAdc8, true),
	"ORB":  alu8(REG_B, opOr8, true),
	"ADDB": alu8(REG_B, opAdd8, true),

	"SUBD": alu16(REG_D, opSub16, true),
	"ADDD": alu16(REG_D, opAdd16, true),
	"CMPD": alu16(REG_D, opSub16, false),
	"CMPX": alu16(REG_X, opSub16, false),
	"CMPY": alu16(REG_Y, opSub16, false),
	"CMPU": alu16(REG_U, opSub16, false),
	"CMPS": alu16(REG_S, opSub16, false),
	"LDD":  alu16(REG_D, opLd16, true),
	"LDX":  alu16(REG_X, opLd16, true),
	"LDY":  alu16(REG_Y, opLd16, true),
	"LDU":  alu16(REG_U, opLd16, true),
	"LDS":  alu16(REG_S, opLd16, true),
	"STD":  store(REG_D),
	"STX":  store(REG_X),
	"STY":  store(REG_Y),
	"STU":  store(REG_U),
	"STS":  store(REG_S),

	"JMP":  jump(false),
	"JSR":  jump(true),
	"BSR":  subroutine(false),
	"LBSR": subroutine(true),

	"LEAX": lea(REG_X),
	"LEAY": lea(REG_Y),
	"LEAS": lea(REG_S),
	"LEAU": lea(REG_U),

	"PSHS": stack(REG_S, true),
	"PULS": stack(REG_S, false),
	"PSHU": stack(REG_U, true),
	"PULU": stack(REG_U, false),

	"EXG": fixed(func(cpu *Cpu) error { return cpu.Transfer.Exg(cpu.EA.Fetch8()) }),
	"TFR": fixed(func(cpu *Cpu) error { return cpu.Transfer.Tfr(cpu.EA.Fetch8()) }),
	"SEX": fixed(func(cpu *Cpu) error { cpu.Transfer.Sex(); return nil }),
	"ABX": fixed(func(cpu *Cpu) error { cpu.Transfer.Abx(); return nil }),

	"NOP": fixed(func(cpu *Cpu) error { return nil }),
	"DAA": fixed(func(cpu *Cpu) error { cpu.SetA(cpu.Alu.Daa(cpu.A())); return nil }),
	"MUL": fixed(func(cpu *Cpu) error { cpu.SetD(cpu.Alu.Mul(cpu.A(), cpu.B())); return nil }),
	"RTS": fixed(func(cpu *Cpu) error { cpu.SetPC(cpu.SysStack.Pull16()); return nil }),
	"RTI": fixed(func(cpu *Cpu) error {
		cpu.SetCC(cpu.SysStack.Pull8())
		if cpu.Flag(CC_E) {
			cpu.SysStack.PullRegisters(^STACK_CC)
		} else {
			cpu.SetPC(cpu.SysStack.Pull16())
		}
		return nil
	}),

	"ANDCC": fixed(func(cpu *Cpu) error { cpu.SetCC(cpu.CC() & cpu.EA.Fetch8()); return nil }),
	"ORCC":  fixed(func(cpu *Cpu) error { cpu.SetCC(cpu.CC() | cpu.EA.Fetch8()); return nil }),
	"CWAI": fixed(func(cpu *Cpu) error {
		cpu.SetCC(cpu.CC()&cpu.EA.Fetch8() | CC_E)
		log.Printf("cpu: %04X: CWAI wait not modelled, continuing", cpu.PC())
		return nil
	}),

	"SYNC": placeholder("SYNC"),
	"SWI":  placeholder("SWI"),
	"SWI2": placeholder("SWI2"),
	"SWI3": placeholder("SWI3"),
}

// semantics finds the handler builder of a mnemonic.
func semantics(mnemonic string) builder {
	if build, ok := semanticTable[mnemonic]; ok {
		return build
	}

	if IsBranch(mnemonic) {
		cond, ok := conditions[strings.TrimPrefix(mnemonic, "L")]
		if !ok {
			return nil
		}
		return branch(cond, IsLongBranch(mnemonic))
	}

	if op, ok := unaryOps[mnemonic]; ok {
		return modify(mnemonic, op)
	}

	// NEGA, CLRB, ...
	if n := len(mnemonic); n > 1 {
		op, ok := unaryOps[mnemonic[:n-1]]
		switch {
		case !ok:
		case mnemonic[n-1] == 'A':
			return inherent8(REG_A, op)
		case mnemonic[n-1] == 'B':
			return inherent8(REG_B, op)
		}
	}

	return nil
}
