package cpu

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolver resolves a symbol name. The name "*" is the location counter.
type Resolver func(name string) (value uint16, ok bool)

// ParseNumber parses a numeric literal:
//
//	$FF 0xFF FFh     hexadecimal
//	%1010 0b1010     binary
//	'c 'c'           character
//	255              decimal
func ParseNumber(text string) (value int, err error) {
	var v64 int64
	var perr error

	upper := strings.ToUpper(text)
	switch {
	case len(text) == 0:
		perr = ErrParseNumber(text)
	case text[0] == '\'':
		switch {
		case len(text) == 2:
			v64 = int64(text[1])
		case len(text) == 3 && text[2] == '\'':
			v64 = int64(text[1])
		default:
			perr = ErrParseNumber(text)
		}
	case text[0] == '$':
		v64, perr = strconv.ParseInt(text[1:], 16, 32)
	case text[0] == '%':
		v64, perr = strconv.ParseInt(text[1:], 2, 32)
	case strings.HasPrefix(upper, "0X"):
		v64, perr = strconv.ParseInt(text[2:], 16, 32)
	case strings.HasSuffix(upper, "H") && isHex(upper[:len(upper)-1]):
		v64, perr = strconv.ParseInt(text[:len(text)-1], 16, 32)
	case strings.HasPrefix(upper, "0B"):
		v64, perr = strconv.ParseInt(text[2:], 2, 32)
	default:
		v64, perr = strconv.ParseInt(text, 10, 32)
	}

	if perr != nil {
		err = ErrParseNumber(text)
		return
	}

	value = int(v64)
	return
}

func isHex(text string) bool {
	if len(text) == 0 {
		return false
	}
	for _, c := range text {
		if !strings.ContainsRune("0123456789ABCDEF", c) {
			return false
		}
	}
	return true
}

// IsSymbol reports if text has the shape of an identifier.
func IsSymbol(text string) bool {
	if len(text) == 0 {
		return false
	}
	for n, c := range text {
		switch {
		case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case n > 0 && (c >= '0' && c <= '9' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// term is one signed component of an expression.
type term struct {
	negative bool
	text     string
}

// splitTerms splits an expression at its + and - operators.
func splitTerms(expr string) (terms []term, err error) {
	expr = strings.TrimSpace(expr)
	if len(expr) == 0 {
		err = ErrOperandMissing
		return
	}

	negative := false
	start := -1
	flush := func(end int) error {
		if start < 0 {
			return ErrParseNumber(expr)
		}
		text := strings.TrimSpace(expr[start:end])
		if len(text) == 0 {
			return ErrParseNumber(expr)
		}
		terms = append(terms, term{negative: negative, text: text})
		start = -1
		return nil
	}

	for n := 0; n < len(expr); n++ {
		c := expr[n]
		switch {
		case c == '\'':
			if start < 0 {
				start = n
			}
			// The quoted character may itself be an operator.
			n++
			if n+1 < len(expr) && expr[n+1] == '\'' {
				n++
			}
		case (c == '+' || c == '-') && start < 0:
			if c == '-' {
				negative = !negative
			}
		case c == '+' || c == '-':
			err = flush(n)
			if err != nil {
				return
			}
			negative = c == '-'
		case c == ' ' || c == '\t':
		default:
			if start < 0 {
				start = n
			}
		}
	}

	err = flush(len(expr))
	return
}

// termValue resolves a single term.
func termValue(text string, resolve Resolver) (value int, err error) {
	if text == "*" || IsSymbol(text) {
		if resolve != nil {
			if v, ok := resolve(text); ok {
				value = int(v)
				return
			}
		}
		if text == "*" {
			err = ErrSymbolMissing(text)
			return
		}
		// Trailing 'h' hex numbers look like symbols.
		value, err = ParseNumber(text)
		if err != nil {
			err = ErrSymbolMissing(text)
		}
		return
	}

	value, err = ParseNumber(text)
	return
}

// Evaluate computes the sum of the terms of an expression.
func Evaluate(expr string, resolve Resolver) (value int, err error) {
	terms, err := splitTerms(expr)
	if err != nil {
		return
	}

	for _, t := range terms {
		var v int
		v, err = termValue(t.text, resolve)
		if err != nil {
			return
		}
		if t.negative {
			v = -v
		}
		value += v
	}

	return
}

// Rewrite replaces every symbol in an expression with its value as a
// $XXXX literal, leaving numbers and offsets in place.
func Rewrite(expr string, resolve Resolver) (text string, err error) {
	terms, err := splitTerms(expr)
	if err != nil {
		return
	}

	for n, t := range terms {
		word := t.text
		if word == "*" || IsSymbol(word) {
			var value int
			value, err = termValue(word, resolve)
			if err != nil {
				return
			}
			word = fmt.Sprintf("$%04X", uint16(value))
		}
		switch {
		case t.negative:
			text += "-"
		case n > 0:
			text += "+"
		}
		text += word
	}

	return
}

// SplitOffset decomposes "BASE+N" or "BASE-N" into the base and the
// sum of the numeric offsets.
func SplitOffset(expr string) (base string, offset int, err error) {
	terms, err := splitTerms(expr)
	if err != nil {
		return
	}

	for n, t := range terms {
		if n == 0 && !t.negative {
			if _, perr := ParseNumber(t.text); perr != nil {
				base = t.text
				continue
			}
		}
		var v int
		v, err = ParseNumber(t.text)
		if err != nil {
			return
		}
		if t.negative {
			v = -v
		}
		offset += v
	}

	return
}

// IsLiteral reports if an expression resolves without symbols.
func IsLiteral(expr string) bool {
	_, err := Evaluate(expr, nil)
	return err == nil
}

// Operand is the syntactic shape of an instruction operand.
type Operand struct {
	Text string // Operand text as written.
	Mode Mode   // Addressing mode implied by the syntax.
	Expr string // Value expression. The offset for indexed operands.

	Bare        bool // Direct or extended, chosen by magnitude.
	ForceDirect bool // '<' prefix.

	// Indexed operands.
	Indirect  bool
	Base      IndexReg  // Base register, INDEX_REG_NONE for [n16].
	Index     IndexMode // Fixed sub-mode, or INDEX_OFFSET16 for a constant offset.
	Relative  bool      // PCR: the expression is a target address.
	Registers []string  // Register list for EXG/TFR/PSH/PUL.
}

// ParseOperand classifies an operand by its syntax alone.
func ParseOperand(mnemonic string, text string) (op Operand, err error) {
	text = strings.TrimSpace(text)
	op.Text = text

	switch {
	case len(text) == 0:
		op.Mode = MODE_INHERENT
		return
	case IsRegisterOp(mnemonic):
		op.Mode = MODE_REGISTER
		for _, name := range strings.Split(text, ",") {
			op.Registers = append(op.Registers, strings.ToUpper(strings.TrimSpace(name)))
		}
		return
	case IsBranch(mnemonic):
		op.Mode = MODE_RELATIVE
		op.Expr = text
		return
	case text[0] == '#':
		op.Mode = MODE_IMMEDIATE
		op.Expr = strings.TrimSpace(text[1:])
		if len(op.Expr) == 0 {
			err = ErrOperandMissing
		}
		return
	}

	inner := text
	if strings.HasPrefix(text, "[") {
		if !strings.HasSuffix(text, "]") {
			err = ErrIndexInvalid
			return
		}
		op.Indirect = true
		inner = strings.TrimSpace(text[1 : len(text)-1])
	}

	comma := strings.LastIndex(inner, ",")
	if comma < 0 || strings.HasPrefix(inner, "'") {
		if op.Indirect {
			op.Mode = MODE_INDEXED
			op.Base = INDEX_REG_NONE
			op.Index = INDEX_EXTENDED
			op.Expr = inner
			return
		}

		op.Mode = MODE_EXTENDED
		op.Expr = text
		switch text[0] {
		case '<':
			op.Mode = MODE_DIRECT
			op.ForceDirect = true
			op.Expr = strings.TrimSpace(text[1:])
		case '>':
			op.Expr = strings.TrimSpace(text[1:])
		default:
			op.Bare = true
		}
		if len(op.Expr) == 0 {
			err = ErrOperandMissing
		}
		return
	}

	op.Mode = MODE_INDEXED
	err = op.parseIndexed(strings.TrimSpace(inner[:comma]), strings.ToUpper(strings.TrimSpace(inner[comma+1:])))
	return
}

var indexRegs = map[string]IndexReg{
	"X": INDEX_REG_X, "Y": INDEX_REG_Y, "U": INDEX_REG_U, "S": INDEX_REG_S,
}

func (op *Operand) parseIndexed(offset string, reg string) (err error) {
	switch reg {
	case "PC", "PCR":
		op.Base = INDEX_REG_PC
		op.Relative = reg == "PCR"
		op.Index = INDEX_PC16
		op.Expr = offset
		if len(offset) == 0 {
			err = ErrIndexInvalid
		}
		return
	}

	auto := INDEX_ZERO
	switch {
	case strings.HasSuffix(reg, "++"):
		auto, reg = INDEX_INC2, reg[:len(reg)-2]
	case strings.HasSuffix(reg, "+"):
		auto, reg = INDEX_INC1, reg[:len(reg)-1]
	case strings.HasPrefix(reg, "--"):
		auto, reg = INDEX_DEC2, reg[2:]
	case strings.HasPrefix(reg, "-"):
		auto, reg = INDEX_DEC1, reg[1:]
	}

	base, ok := indexRegs[strings.TrimSpace(reg)]
	if !ok {
		err = ErrRegisterInvalid
		return
	}
	op.Base = base

	if auto != INDEX_ZERO {
		if len(offset) != 0 && offset != "0" {
			err = ErrIndexInvalid
			return
		}
		if op.Indirect && (auto == INDEX_INC1 || auto == INDEX_DEC1) {
			err = ErrIndexInvalid
			return
		}
		op.Index = auto
		return
	}

	switch strings.ToUpper(offset) {
	case "":
		op.Index = INDEX_ZERO
	case "A":
		op.Index = INDEX_ACC_A
	case "B":
		op.Index = INDEX_ACC_B
	case "D":
		op.Index = INDEX_ACC_D
	default:
		op.Index = INDEX_OFFSET16
		op.Expr = offset
	}

	return
}
