package cpu

import (
	"log"

	"github.com/ezrec/moto6809/memory"
)

// Reset values of the stack pointers.
const (
	RESET_S = memory.RAM_END         // Hardware stack, top of RAM.
	RESET_U = memory.RAM_END - 0x100 // User stack, one page below.

	VECTOR_RESET = uint16(0xFFFE) // Reset vector.
)

// Cpu is the execution engine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Registers                      // Register file.
	Mem       *memory.AddressSpace // Address space.
	Alu       Alu                  // Arithmetic and flags.
	SysStack  Stack                // Hardware stack, through S.
	UserStack Stack                // User stack, through U.
	Transfer  Transfer             // EXG, TFR, SEX and ABX.
	EA        Effective            // Effective address unit.

	Count int // Instructions executed since reset.
}

// NewCpu creates a CPU attached to an address space.
func NewCpu(mem *memory.AddressSpace) (cpu *Cpu) {
	cpu = &Cpu{
		Mem: mem,
	}

	reg := &cpu.Registers
	cpu.Alu = Alu{Reg: reg}
	cpu.SysStack = Stack{Reg: reg, Mem: mem, Pointer: REG_S}
	cpu.UserStack = Stack{Reg: reg, Mem: mem, Pointer: REG_U}
	cpu.Transfer = Transfer{Reg: reg, Alu: cpu.Alu}
	cpu.EA = Effective{Reg: reg, Mem: mem}

	return
}

// Reset the CPU state.
// - Clears the accumulators and index registers.
// - Sets the stack pointers to the top of RAM.
// - Masks interrupts.
// - Loads PC from the reset vector.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.SetD(0)
	cpu.SetX(0)
	cpu.SetY(0)
	cpu.SetDP(0)
	cpu.SetCC(CC_I | CC_F)
	cpu.SetS(RESET_S)
	cpu.SetU(RESET_U)
	cpu.SetPC(cpu.Mem.ReadWord(VECTOR_RESET))
	cpu.Count = 0
}

// Fetch reads the opcode at PC, with any page prefix.
func (cpu *Cpu) Fetch() (page int, opcode uint16) {
	code := cpu.EA.Fetch8()
	opcode = uint16(code)

	switch code {
	case PAGE_2:
		page = 1
	case PAGE_3:
		page = 2
	default:
		return
	}

	opcode = opcode<<8 | uint16(cpu.EA.Fetch8())
	return
}

// Step executes a single instruction.
func (cpu *Cpu) Step() (err error) {
	pc := cpu.PC()

	page, opcode := cpu.Fetch()
	exec := dispatch()[page][uint8(opcode)]
	if exec == nil {
		err = ErrOpcodeUnknown{PC: pc, Opcode: opcode}
		return
	}

	if cpu.Verbose {
		dis := Disassemble()[opcode]
		log.Printf("%04X: %02X %v %v", pc, opcode, dis.Mnemonic, dis.Mode)
	}

	err = exec(cpu)
	if err != nil {
		return
	}

	cpu.Count++

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() string {
	return cpu.Registers.String()
}
