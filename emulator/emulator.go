// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"log"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ezrec/moto6809/cpu"
	"github.com/ezrec/moto6809/memory"
)

// Emulator is the step controller: it assembles a program into the
// address space, then steps or runs it between the program bounds.
//
// All CPU and memory state is guarded by a single mutex, taken for
// every step and every breakpoint edit. A run holds the mutex only for
// the duration of each instruction.
type Emulator struct {
	Verbose   bool          // If set, enables verbose logging.
	*cpu.Cpu                // Reference to the CPU simulation.
	Program   *cpu.Program  // Currently loaded program, nil before Assemble.
	Budget    int           // Instruction ceiling, 0 for none.
	StepDelay time.Duration // Delay between run loop steps.

	mutex       sync.Mutex
	state       atomic.Int32
	breakpoints map[uint16]bool
	pending     []string // Configured breakpoints, resolved by Assemble.
	predefine   map[string]uint16
	bpChan      chan<- BreakpointEvent
	group       *errgroup.Group
	generation  uint64 // Identifies the current run loop.
	result      Result
	err         error
}

// NewEmulator creates a new emulator over an empty address space.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:         cpu.NewCpu(&memory.AddressSpace{}),
		Budget:      DEFAULT_BUDGET,
		StepDelay:   DEFAULT_STEP_DELAY,
		breakpoints: map[uint16]bool{},
		predefine:   map[string]uint16{},
	}

	return
}

// Configure applies a run configuration. Breakpoints are resolved
// against the program symbols by the next Assemble.
func (emu *Emulator) Configure(cfg *Config) (err error) {
	if emu.State() == STATE_RUNNING {
		err = ErrRunning
		return
	}

	names, values, err := cfg.Constants()
	if err != nil {
		return
	}

	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.Budget = cfg.Budget
	emu.StepDelay = cfg.StepDelay
	emu.Verbose = emu.Verbose || cfg.Verbose
	for n, name := range names {
		emu.predefine[name] = values[n]
	}
	emu.pending = slices.Clone(cfg.Breakpoints)

	return
}

// Assemble the source lines into a fresh address space, seal it, and
// reset the CPU to the program start.
func (emu *Emulator) Assemble(lines []string) (lineMap map[uint16]int, start uint16, endLine int, err error) {
	if emu.State() == STATE_RUNNING {
		err = ErrRunning
		return
	}

	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	mem := emu.Cpu.Mem
	mem.Reset()
	emu.Program = nil

	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for name, value := range emu.predefine {
		asm.Predefine(name, value)
	}

	prog, err := asm.Assemble(lines, mem)
	if err != nil {
		return
	}

	addresses, err := (&Config{Breakpoints: emu.pending}).Addresses(prog.Symbols.Lookup)
	if err != nil {
		return
	}
	for _, address := range addresses {
		emu.breakpoints[address] = true
	}
	emu.pending = nil

	mem.Seal()
	emu.Program = prog
	emu.reset()

	if emu.Verbose {
		log.Printf("emulator: program $%04X-$%04X, END at line %d", prog.Start, prog.End, prog.EndLine)
	}

	lineMap = prog.LineMap()
	start = prog.Start
	endLine = prog.EndLine
	return
}

// Reset the CPU to the start of the program, leaving memory as is.
func (emu *Emulator) Reset() (err error) {
	if emu.State() == STATE_RUNNING {
		err = ErrRunning
		return
	}

	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.Program == nil {
		err = ErrNotAssembled
		return
	}

	emu.reset()
	return
}

func (emu *Emulator) reset() {
	emu.Cpu.Verbose = false
	emu.Cpu.Reset()
	emu.Cpu.SetPC(emu.Program.Start)
	emu.Cpu.Verbose = emu.Verbose

	emu.group = nil
	emu.result = Result{PC: emu.Program.Start, EndLine: emu.Program.EndLine}
	emu.err = nil
	emu.state.Store(int32(STATE_IDLE))
}

// State returns the controller state.
func (emu *Emulator) State() State {
	return State(emu.state.Load())
}

// LineNo returns the source line of the instruction at PC, or 0.
func (emu *Emulator) LineNo() int {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.lineNo(emu.Cpu.PC())
}

func (emu *Emulator) lineNo(address uint16) (lineNo int) {
	if emu.Program == nil {
		return
	}

	lineNo, _ = emu.Program.Line(address)
	return
}

// Step executes a single instruction. Reaching the program end is
// reported as OUTCOME_TERMINATED with no error. Faults are reported as
// OUTCOME_FAULT with an *ErrRuntime.
func (emu *Emulator) Step() (result Result, err error) {
	if emu.State() == STATE_RUNNING {
		err = ErrRunning
		return
	}

	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	result, err = emu.step()
	return
}

// step executes one instruction with the mutex held.
// The checks run in order: budget, program end, program start.
func (emu *Emulator) step() (result Result, err error) {
	if emu.Program == nil {
		err = ErrNotAssembled
		result.Outcome = OUTCOME_FAULT
		return
	}

	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.PC()
	lineno := emu.lineNo(pc)
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
			result.Outcome = OUTCOME_FAULT
		}
		result.PC = emu.Cpu.PC()
		result.Count = emu.Cpu.Count
		result.EndLine = emu.Program.EndLine
		emu.result = result
		emu.err = err
		if result.Outcome != OUTCOME_CONTINUE {
			emu.state.Store(int32(STATE_STOPPED))
		}
	}()

	switch {
	case emu.Budget > 0 && emu.Cpu.Count >= emu.Budget:
		err = ErrBudget
	case pc >= emu.Program.End:
		result.Outcome = OUTCOME_TERMINATED
		if emu.Verbose {
			log.Printf("emulator: terminated at $%04X after %d instructions", pc, emu.Cpu.Count)
		}
	case pc < emu.Program.Start:
		err = ErrBeforeStart
	default:
		err = emu.Cpu.Step()
	}

	return
}

// Run starts the run loop from the idle or paused state.
func (emu *Emulator) Run() (err error) {
	return emu.run(nil)
}

// RunUntil runs until PC reaches an address, a breakpoint, the program
// end, or a fault.
func (emu *Emulator) RunUntil(address uint16) (err error) {
	return emu.run(func(pc uint16) bool { return pc == address })
}

// Resume a paused run.
func (emu *Emulator) Resume() (err error) {
	if emu.State() != STATE_PAUSED {
		err = ErrNotPaused
		return
	}

	return emu.run(nil)
}

func (emu *Emulator) run(until func(pc uint16) bool) (err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.Program == nil {
		err = ErrNotAssembled
		return
	}

	switch emu.State() {
	case STATE_RUNNING:
		err = ErrRunning
		return
	case STATE_STOPPED:
		err = ErrStopped
		return
	}

	emu.state.Store(int32(STATE_RUNNING))

	// A loop left over from a paused run may still be sleeping. It sees
	// the new generation and exits without stepping, and the new group
	// joins it so that Wait covers both.
	emu.generation++
	gen := emu.generation
	delay := emu.StepDelay
	previous := emu.group

	group := &errgroup.Group{}
	group.Go(func() error {
		if previous != nil {
			_ = previous.Wait()
		}
		return emu.loop(gen, delay, until)
	})
	emu.group = group

	return
}

// loop is the run loop. The breakpoint check is skipped for the first
// instruction, so that a run paused on a breakpoint can continue.
func (emu *Emulator) loop(gen uint64, delay time.Duration, until func(pc uint16) bool) (err error) {
	for first := true; emu.State() == STATE_RUNNING; first = false {
		if !first && delay > 0 {
			time.Sleep(delay)
		}

		var done bool
		done, err = emu.tick(gen, first, until)
		if done {
			return
		}
	}

	return
}

// tick runs one iteration of the run loop under the mutex.
func (emu *Emulator) tick(gen uint64, first bool, until func(pc uint16) bool) (done bool, err error) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	// Pause, Stop or a newer run may have landed while waiting.
	if emu.generation != gen || emu.State() != STATE_RUNNING {
		done = true
		return
	}

	pc := emu.Cpu.PC()
	if !first {
		hit := emu.breakpoints[pc]
		if hit || (until != nil && until(pc)) {
			emu.state.CompareAndSwap(int32(STATE_RUNNING), int32(STATE_PAUSED))
			emu.result.PC = pc
			if hit {
				emu.notify(pc)
			}
			done = true
			return
		}
	}

	result, err := emu.step()
	done = result.Outcome != OUTCOME_CONTINUE
	return
}

func (emu *Emulator) notify(pc uint16) {
	if emu.Verbose {
		log.Printf("emulator: breakpoint at $%04X", pc)
	}

	if emu.bpChan == nil {
		return
	}

	select {
	case emu.bpChan <- BreakpointEvent{Address: pc, LineNo: emu.lineNo(pc)}:
	default:
	}
}

// Pause a run at the next instruction boundary.
func (emu *Emulator) Pause() {
	emu.state.CompareAndSwap(int32(STATE_RUNNING), int32(STATE_PAUSED))
}

// Stop a run at the next instruction boundary. A stopped emulator
// must be reset before it runs again.
func (emu *Emulator) Stop() {
	emu.state.Store(int32(STATE_STOPPED))
}

// Wait for the run loop to exit, and return where it left the program.
func (emu *Emulator) Wait() (result Result, err error) {
	emu.mutex.Lock()
	group := emu.group
	emu.mutex.Unlock()

	if group != nil {
		err = group.Wait()
	}

	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	result = emu.result
	if err == nil {
		err = emu.err
	}
	return
}

// SetBreakpointChannel sets the channel notified when a run pauses on
// a breakpoint. Notifications are dropped when the channel is full.
func (emu *Emulator) SetBreakpointChannel(ch chan<- BreakpointEvent) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.bpChan = ch
}

// AddBreakpoint sets a breakpoint.
func (emu *Emulator) AddBreakpoint(address uint16) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	emu.breakpoints[address] = true
}

// RemoveBreakpoint clears a breakpoint, returning true if it was set.
func (emu *Emulator) RemoveBreakpoint(address uint16) (ok bool) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	ok = emu.breakpoints[address]
	delete(emu.breakpoints, address)
	return
}

// ToggleBreakpoint flips a breakpoint, returning true if it is now set.
func (emu *Emulator) ToggleBreakpoint(address uint16) (set bool) {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	set = !emu.breakpoints[address]
	if set {
		emu.breakpoints[address] = true
	} else {
		delete(emu.breakpoints, address)
	}
	return
}

// ClearBreakpoints removes every breakpoint.
func (emu *Emulator) ClearBreakpoints() {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	clear(emu.breakpoints)
}

// HasBreakpoint reports whether a breakpoint is set.
func (emu *Emulator) HasBreakpoint(address uint16) bool {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.breakpoints[address]
}

// Breakpoints returns the breakpoints in address order.
func (emu *Emulator) Breakpoints() []uint16 {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return slices.Sorted(maps.Keys(emu.breakpoints))
}

// Snapshot copies the register file.
func (emu *Emulator) Snapshot() cpu.Snapshot {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.Cpu.Snapshot()
}

// Flag reports a condition code flag.
func (emu *Emulator) Flag(mask uint8) bool {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.Cpu.Flag(mask)
}

// Memory copies a range of the address space.
func (emu *Emulator) Memory(address uint16, length int) []uint8 {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	return emu.Cpu.Mem.Dump(address, length)
}

// InstructionSize returns the size of the instruction at an address.
func (emu *Emulator) InstructionSize(address uint16) int {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.Program == nil {
		return 1
	}

	return emu.Program.InstructionSize(address)
}

// Operand returns the operand text of the instruction at an address.
func (emu *Emulator) Operand(address uint16) string {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	if emu.Program == nil {
		return "----"
	}

	return emu.Program.Operand(address)
}

// Status renders the registers and the current source line.
func (emu *Emulator) Status() string {
	emu.mutex.Lock()
	defer emu.mutex.Unlock()

	var text strings.Builder
	text.WriteString(emu.Cpu.String())
	if emu.Program != nil {
		if lineno := emu.lineNo(emu.Cpu.PC()); lineno > 0 && lineno <= len(emu.Program.Source) {
			text.WriteString(f("%5d: %v\n", lineno, emu.Program.Source[lineno-1]))
		}
	}
	return text.String()
}
