// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"regexp"
	"slices"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/moto6809/internal"
	"github.com/ezrec/moto6809/memory"
)

// DEFAULT_ORIGIN is the location counter before any ORG.
const DEFAULT_ORIGIN = memory.ROM_START

// Predefined system constants
var sysEquate = map[string]uint16{
	"RAM_START": memory.RAM_START,
	"RAM_END":   memory.RAM_END,
	"ROM_START": memory.ROM_START,
	"ROM_END":   memory.ROM_END,
}

// Assembler is a two pass assembler for the 6809.
type Assembler struct {
	Verbose bool         // If set, verbosely logs the assembler actions.
	Symbols *SymbolTable // Symbols of the last assembly.

	predefine map[string]uint16 // Predefines
}

// Predefine defines a constant for all later assemblies.
func (asm *Assembler) Predefine(name string, value uint16) {
	if asm.predefine == nil {
		asm.predefine = map[string]uint16{name: value}
	} else {
		asm.predefine[name] = value
	}
}

// line is a source line, split into fields by the first pass.
type line struct {
	lineNo   int
	text     string
	label    string
	mnemonic string
	operand  string
	address  uint16 // Address of the line's first byte.
	origin   uint16 // New location counter, for ORG.
	size     int    // Bytes reserved by the first pass.
}

var labelRe = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_.]*):`)

// charEnd returns the index of the last byte of the 'c or 'c' literal
// starting at text[n].
func charEnd(text string, n int) int {
	if n+2 < len(text) && text[n+2] == '\'' {
		return n + 2
	}
	return n + 1
}

// stripComment removes a ';' comment, ignoring quoted semicolons.
func stripComment(text string) string {
	if strings.HasPrefix(strings.TrimSpace(text), "*") {
		return ""
	}

	quoted := false
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '"':
			quoted = !quoted
		case '\'':
			if !quoted {
				n = charEnd(text, n)
			}
		case ';':
			if !quoted {
				return text[:n]
			}
		}
	}
	return text
}

func splitLine(text string, lineNo int) (ln *line) {
	ln = &line{lineNo: lineNo, text: text}

	code := strings.TrimSpace(stripComment(text))
	if m := labelRe.FindStringSubmatch(code); m != nil {
		ln.label = m[1]
		code = strings.TrimSpace(code[len(m[0]):])
	}

	fields := strings.Fields(code)
	if len(fields) == 0 {
		return
	}

	// NAME EQU value
	if len(ln.label) == 0 && len(fields) >= 2 && strings.EqualFold(fields[1], "EQU") {
		ln.label = fields[0]
		code = strings.TrimSpace(code[len(fields[0]):])
		fields = fields[1:]
	}

	ln.mnemonic = strings.ToUpper(fields[0])
	ln.operand = strings.TrimSpace(code[len(fields[0]):])

	return
}

// splitList splits a comma separated list, ignoring quoted commas.
func splitList(text string) (items []string) {
	start := 0
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '\'':
			n = charEnd(text, n)
		case ',':
			items = append(items, strings.TrimSpace(text[start:n]))
			start = n + 1
		}
	}
	items = append(items, strings.TrimSpace(text[start:]))
	return
}

// fccBytes strips the delimiters from an FCC string.
func fccBytes(operand string) (data []uint8, err error) {
	if len(operand) < 2 {
		err = ErrDirectiveSyntax
		return
	}
	delim := operand[0]
	end := strings.LastIndexByte(operand, delim)
	if end < 1 {
		err = ErrDirectiveSyntax
		return
	}
	data = []uint8(operand[1:end])
	return
}

var parenRe = regexp.MustCompile(`\$\([^\$]*\)`)

// parenEval does compile-time $(...) evaluations over the known symbols.
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for name, value := range asm.Symbols.All() {
		pred[name] = starlark.MakeInt(int(value))
		pred[strings.ToLower(name)] = starlark.MakeInt(int(value))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// expand replaces $(...) expressions with their values.
func (asm *Assembler) expand(text string) (out string, err error) {
	out = parenRe.ReplaceAllStringFunc(text, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	return
}

// resolver resolves symbols, with '*' at the given address.
func (asm *Assembler) resolver(here uint16) Resolver {
	return func(name string) (value uint16, ok bool) {
		if name == "*" {
			return here, true
		}
		return asm.Symbols.Lookup(name)
	}
}

// value evaluates a directive operand with the symbols known so far.
func (asm *Assembler) value(operand string, here uint16) (value int, err error) {
	text, err := asm.expand(operand)
	if err != nil {
		return
	}
	value, err = Evaluate(text, asm.resolver(here))
	return
}

// Parse reads source text and assembles it.
func (asm *Assembler) Parse(input io.Reader, space *memory.AddressSpace) (prog *Program, err error) {
	var source []string

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		source = append(source, scanner.Text())
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	prog, err = asm.Assemble(source, space)
	return
}

// Assemble translates source lines into a program, loading its bytes
// into the address space if one is given.
func (asm *Assembler) Assemble(source []string, space *memory.AddressSpace) (prog *Program, err error) {
	asm.Symbols = &SymbolTable{}

	for name, value := range internal.IterSeq2Concat(internal.IterSorted(sysEquate), internal.IterSorted(asm.predefine)) {
		err = asm.Symbols.DefineConstant(name, value)
		if err != nil {
			err = &ErrSyntax{Line: name, Err: err}
			return
		}
	}

	work := &Program{
		Source:  slices.Clone(source),
		Symbols: asm.Symbols,
		lines:   map[uint16]int{},
		sizes:   map[uint16]int{},
	}

	lines, err := asm.firstPass(source, work)
	if err != nil {
		return
	}

	if work.EndLine == 0 {
		err = ErrEndMissing
		return
	}

	err = asm.secondPass(lines, work, space)
	if err != nil {
		return
	}

	prog = work
	return
}

// firstPass binds labels and constants, and reserves space for every line.
func (asm *Assembler) firstPass(source []string, prog *Program) (lines []*line, err error) {
	var ln *line

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: ln.lineNo, Line: ln.text, Err: err}
		}
	}()

	address := DEFAULT_ORIGIN
	segment := 0
	startSegment := -1

	prog.Start = address
	prog.End = address

	for n, text := range source {
		ln = splitLine(text, n+1)
		if len(ln.label) == 0 && len(ln.mnemonic) == 0 {
			continue
		}

		ln.address = address

		if asm.Verbose {
			log.Printf("%v: $%04X %v", ln.lineNo, address, text)
		}

		if len(ln.label) > 0 && ln.mnemonic != "EQU" {
			err = asm.Symbols.DefineLabel(ln.label, address)
			if err != nil {
				return
			}
		}

		var value int
		emits := false

		switch ln.mnemonic {
		case "":
		case "ORG":
			value, err = asm.value(ln.operand, address)
			if err != nil {
				return
			}
			ln.origin = uint16(value)
			address = ln.origin
			segment++
			if startSegment < 0 {
				prog.Start = address
				prog.End = address
			}
		case "EQU":
			if len(ln.label) == 0 {
				err = ErrDirectiveSyntax
				return
			}
			value, err = asm.value(ln.operand, address)
			if err != nil {
				return
			}
			err = asm.Symbols.DefineConstant(ln.label, uint16(value))
			if err != nil {
				return
			}
		case "SETDP":
			value, err = asm.value(ln.operand, address)
			if err != nil {
				return
			}
			prog.DirectPage = uint8(value)
		case "END":
			prog.EndLine = ln.lineNo
			lines = append(lines, ln)
			return
		case "FCC":
			var data []uint8
			data, err = fccBytes(ln.operand)
			if err != nil {
				return
			}
			ln.size = len(data)
			emits = true
		case "FCB", "FDB":
			if len(ln.operand) == 0 {
				err = ErrOperandMissing
				return
			}
			ln.size = len(splitList(ln.operand))
			if ln.mnemonic == "FDB" {
				ln.size *= 2
			}
			emits = true
		case "RMB":
			value, err = asm.value(ln.operand, address)
			if err != nil {
				return
			}
			if value < 0 || value > memory.SIZE {
				err = ErrValueRange
				return
			}
			ln.size = value
		default:
			ln.size, err = asm.estimate(ln)
			if err != nil {
				return
			}
			emits = true
		}

		if emits && ln.size > 0 && startSegment < 0 {
			startSegment = segment
			prog.Start = address
		}

		address += uint16(ln.size)

		if emits && segment == startSegment {
			prog.End = address
		}

		lines = append(lines, ln)
	}

	return
}

// operandSize is the size of the operand bytes of a mode.
func operandSize(mnemonic string, op Operand, mode Mode) (size int) {
	switch mode {
	case MODE_IMMEDIATE:
		size = 1
		if Is16Bit(mnemonic) {
			size = 2
		}
	case MODE_DIRECT, MODE_REGISTER:
		size = 1
	case MODE_EXTENDED:
		size = 2
	case MODE_INDEXED:
		size = 1
		switch op.Index {
		case INDEX_OFFSET16, INDEX_PC16, INDEX_EXTENDED:
			size += 2
		}
	}
	return
}

// estimate sizes an instruction from its syntax alone.
func (asm *Assembler) estimate(ln *line) (size int, err error) {
	ot := Opcodes()
	if !ot.Known(ln.mnemonic) {
		err = ErrMnemonicUnknown
		return
	}

	// $(...) is sized as an unresolved symbol.
	op, err := ParseOperand(ln.mnemonic, parenRe.ReplaceAllString(ln.operand, "EXPR_"))
	if err != nil {
		return
	}

	mnemonic := ln.mnemonic
	mode := op.Mode

	switch mode {
	case MODE_RELATIVE:
		// Backward targets are already bound.
		if !IsLongBranch(mnemonic) {
			target, verr := Evaluate(op.Expr, asm.resolver(ln.address))
			offset := target - (int(ln.address) + 2)
			if verr == nil && offset >= -128 && offset <= 127 {
				size = 2
				return
			}
		}
		if long, ok := LongBranch(mnemonic); ok {
			mnemonic = long
		}
		opcode, _ := ot.Lookup(mnemonic, MODE_RELATIVE)
		size = OpcodeSize(opcode) + 1
		if IsLongBranch(mnemonic) {
			size++
		}
		return
	case MODE_EXTENDED:
		// Symbols already bound keep their value in the second pass.
		if op.Bare {
			value, verr := Evaluate(op.Expr, asm.resolver(ln.address))
			_, direct := ot.Lookup(mnemonic, MODE_DIRECT)
			if verr == nil && value >= 0 && value <= 0xff && direct {
				mode = MODE_DIRECT
			}
		}
	case MODE_INDEXED:
		if op.Index == INDEX_OFFSET16 {
			value, verr := Evaluate(op.Expr, asm.resolver(ln.address))
			if verr == nil {
				if ix, ierr := IndexFor(op.Base, value, op.Indirect); ierr == nil {
					op.Index = ix.Mode
				}
			}
		}
	}

	opcode, ok := ot.Lookup(mnemonic, mode)
	if !ok {
		if mode == MODE_INHERENT {
			err = ErrOperandMissing
		} else {
			err = ErrModeInvalid{Mnemonic: mnemonic, Mode: mode}
		}
		return
	}

	size = OpcodeSize(opcode) + operandSize(mnemonic, op, mode)
	return
}

// secondPass resolves every operand and emits the code.
func (asm *Assembler) secondPass(lines []*line, prog *Program, space *memory.AddressSpace) (err error) {
	var ln *line

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: ln.lineNo, Line: ln.text, Err: err}
		}
	}()

	address := DEFAULT_ORIGIN

	for _, ln = range lines {
		if ln.mnemonic == "ORG" {
			address = ln.origin
			continue
		}

		if address != ln.address {
			err = ErrPhase
			return
		}

		stmt := Statement{
			LineNo:   ln.lineNo,
			Address:  address,
			Label:    ln.label,
			Mnemonic: ln.mnemonic,
			Operand:  ln.operand,
			Size:     ln.size,
		}

		switch ln.mnemonic {
		case "", "EQU", "SETDP", "END":
			continue
		case "RMB":
		case "FCC":
			stmt.Code, err = fccBytes(ln.operand)
		case "FCB", "FDB":
			stmt.Code, err = asm.data(ln)
		default:
			var inst *Instruction
			inst, err = asm.encode(ln)
			if err != nil {
				return
			}
			stmt.Instruction = inst
			stmt.Resolved = inst.Operand
			stmt.Code = inst.Encode()
			prog.lines[address] = ln.lineNo
			prog.sizes[address] = len(stmt.Code)
		}
		if err != nil {
			return
		}

		if len(stmt.Code) > ln.size {
			err = ErrSizeGrew
			return
		}
		for len(stmt.Code) < ln.size && ln.mnemonic != "RMB" {
			stmt.Code = append(stmt.Code, OP_NOP)
		}

		if asm.Verbose {
			log.Printf("%v: $%04X % X %v", ln.lineNo, address, stmt.Code, ln.text)
		}

		if space != nil && len(stmt.Code) > 0 {
			err = space.Load(address, stmt.Code...)
			if err != nil {
				return
			}
		}

		prog.Statements = append(prog.Statements, stmt)
		address += uint16(ln.size)
	}

	return
}

// data emits the values of an FCB or FDB line.
func (asm *Assembler) data(ln *line) (code []uint8, err error) {
	for _, item := range splitList(ln.operand) {
		var value int
		value, err = asm.value(item, ln.address)
		if err != nil {
			return
		}
		if ln.mnemonic == "FCB" {
			if value < -128 || value > 0xff {
				err = ErrValueRange
				return
			}
			code = append(code, uint8(value))
		} else {
			if value < -32768 || value > 0xffff {
				err = ErrValueRange
				return
			}
			code = append(code, uint8(uint16(value)>>8), uint8(value))
		}
	}
	return
}

// encode fully resolves an instruction line.
func (asm *Assembler) encode(ln *line) (inst *Instruction, err error) {
	ot := Opcodes()

	text, err := asm.expand(ln.operand)
	if err != nil {
		return
	}

	op, err := ParseOperand(ln.mnemonic, text)
	if err != nil {
		return
	}

	inst = &Instruction{
		Address:  ln.address,
		Mnemonic: ln.mnemonic,
		Operand:  op.Text,
		Mode:     op.Mode,
	}

	var value int
	if len(op.Expr) > 0 {
		var resolved string
		resolved, err = Rewrite(op.Expr, asm.resolver(ln.address))
		if err != nil {
			return
		}
		inst.Operand = strings.Replace(op.Text, op.Expr, resolved, 1)
		value, err = Evaluate(resolved, nil)
		if err != nil {
			return
		}
	}

	lookup := func(mode Mode) (ok bool) {
		inst.Mode = mode
		inst.Opcode, ok = ot.Lookup(inst.Mnemonic, mode)
		if !ok {
			if mode == MODE_INHERENT {
				err = ErrOperandMissing
			} else {
				err = ErrModeInvalid{Mnemonic: inst.Mnemonic, Mode: mode}
			}
		}
		return
	}

	switch op.Mode {
	case MODE_INHERENT:
		lookup(MODE_INHERENT)
	case MODE_IMMEDIATE:
		if !lookup(MODE_IMMEDIATE) {
			return
		}
		inst.Size = 1
		low := -128
		high := 0xff
		if Is16Bit(inst.Mnemonic) {
			inst.Size = 2
			low = -32768
			high = 0xffff
		}
		if value < low || value > high {
			err = ErrValueRange
			return
		}
		inst.Value = uint16(value)
	case MODE_DIRECT, MODE_EXTENDED:
		if value < 0 || value > 0xffff {
			err = ErrValueRange
			return
		}
		mode := op.Mode
		if op.Bare && value <= 0xff {
			if _, ok := ot.Lookup(inst.Mnemonic, MODE_DIRECT); ok {
				mode = MODE_DIRECT
			}
		}
		if !lookup(mode) {
			return
		}
		inst.Size = 2
		inst.Value = uint16(value)
		if mode == MODE_DIRECT {
			inst.Size = 1
			inst.Value &= 0xff
		}
	case MODE_INDEXED:
		if !lookup(MODE_INDEXED) {
			return
		}
		err = inst.index(op, value)
	case MODE_RELATIVE:
		err = inst.branch(value)
	case MODE_REGISTER:
		if !lookup(MODE_REGISTER) {
			return
		}
		err = inst.registers(op)
	}

	return
}

// index encodes the post-byte and offset of an indexed operand.
func (inst *Instruction) index(op Operand, value int) (err error) {
	var ix Index

	switch {
	case op.Index == INDEX_EXTENDED:
		if value < 0 || value > 0xffff {
			err = ErrValueRange
			return
		}
		ix = Index{Register: INDEX_REG_NONE, Mode: INDEX_EXTENDED, Offset: int16(value), Indirect: true}
	case op.Relative:
		// Offsets count from the end of the instruction.
		after := int(inst.Address) + OpcodeSize(inst.Opcode) + 1
		ix = Index{Register: INDEX_REG_PC, Mode: INDEX_PC8, Indirect: op.Indirect}
		offset := value - (after + 1)
		if offset < -128 || offset > 127 {
			ix.Mode = INDEX_PC16
			offset = value - (after + 2)
		}
		ix.Offset = int16(offset)
	case op.Index == INDEX_OFFSET16 || op.Index == INDEX_PC16:
		ix, err = IndexFor(op.Base, value, op.Indirect)
		if err != nil {
			return
		}
	default:
		ix = Index{Register: op.Base, Mode: op.Index, Indirect: op.Indirect}
	}

	code, err := ix.Encode()
	if err != nil {
		return
	}

	inst.HasPostByte = true
	inst.PostByte = code[0]
	inst.Size = len(code) - 1
	switch inst.Size {
	case 1:
		inst.Value = uint16(code[1])
	case 2:
		inst.Value = uint16(code[1])<<8 | uint16(code[2])
	}

	return
}

// branch picks the short or long form of a branch to target.
func (inst *Instruction) branch(target int) (err error) {
	ot := Opcodes()

	if !IsLongBranch(inst.Mnemonic) {
		offset := target - (int(inst.Address) + 2)
		if offset >= -128 && offset <= 127 {
			inst.Opcode, _ = ot.Lookup(inst.Mnemonic, MODE_RELATIVE)
			inst.Size = 1
			inst.Value = uint16(uint8(int8(offset)))
			return
		}

		long, ok := LongBranch(inst.Mnemonic)
		if !ok {
			err = ErrBranchRange{Mnemonic: inst.Mnemonic, Offset: offset}
			return
		}
		inst.Mnemonic = long
	}

	inst.Opcode, _ = ot.Lookup(inst.Mnemonic, MODE_RELATIVE)
	offset := target - (int(inst.Address) + OpcodeSize(inst.Opcode) + 2)
	if offset < -32768 || offset > 32767 {
		err = ErrBranchRange{Mnemonic: inst.Mnemonic, Offset: offset}
		return
	}
	inst.Size = 2
	inst.Value = uint16(offset)

	return
}

// registers encodes the post-byte of EXG, TFR, PSH and PUL.
func (inst *Instruction) registers(op Operand) (err error) {
	inst.HasPostByte = true

	switch inst.Mnemonic {
	case "EXG", "TFR":
		if len(op.Registers) != 2 {
			err = ErrRegisterInvalid
			return
		}
		inst.PostByte, err = EncodeTransfer(op.Registers[0], op.Registers[1])
	default:
		system := strings.HasSuffix(inst.Mnemonic, "S")
		inst.PostByte, err = EncodeStackMask(op.Registers, system)
	}

	return
}
