package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		text  string
		value int
	}){
		{"$FF", 0xFF},
		{"$8000", 0x8000},
		{"0x1f", 0x1F},
		{"FFh", 0xFF},
		{"0ABh", 0xAB},
		{"%1010", 10},
		{"0b11", 3},
		{"'A", 'A'},
		{"'A'", 'A'},
		{"123", 123},
		{"0", 0},
	}

	for _, entry := range table {
		value, err := ParseNumber(entry.text)
		assert.NoError(err, entry.text)
		assert.Equal(entry.value, value, entry.text)
	}

	for _, text := range []string{"", "$", "%102", "12AB", "'AB", "LOOP"} {
		_, err := ParseNumber(text)
		assert.True(errors.Is(err, ErrParseNumber(text)), text)
	}
}

func TestEvaluate(t *testing.T) {
	assert := assert.New(t)

	symbols := map[string]uint16{
		"BASE": 0x1000,
		"LOOP": 0x8004,
		"*":    0x8000,
	}
	resolve := func(name string) (value uint16, ok bool) {
		value, ok = symbols[name]
		return
	}

	table := [](struct {
		expr  string
		value int
	}){
		{"BASE", 0x1000},
		{"BASE+2", 0x1002},
		{"BASE - $10", 0x0FF0},
		{"-1", -1},
		{"LOOP-*", 4},
		{"*+3", 0x8003},
		{"'A'+1", 'B'},
		{"'-'", '-'},
		{"FFh+1", 0x100},
	}

	for _, entry := range table {
		value, err := Evaluate(entry.expr, resolve)
		assert.NoError(err, entry.expr)
		assert.Equal(entry.value, value, entry.expr)
	}

	_, err := Evaluate("MISSING+1", resolve)
	var missing ErrSymbolMissing
	assert.True(errors.As(err, &missing))
	assert.Equal(ErrSymbolMissing("MISSING"), missing)

	_, err = Evaluate("", resolve)
	assert.ErrorIs(err, ErrOperandMissing)

	_, err = Evaluate("1+", resolve)
	assert.Error(err)
}

func TestRewrite(t *testing.T) {
	assert := assert.New(t)

	resolve := func(name string) (uint16, bool) {
		if name == "VAR" {
			return 0x0010, true
		}
		return 0, false
	}

	text, err := Rewrite("VAR+1", resolve)
	assert.NoError(err)
	assert.Equal("$0010+1", text)

	text, err = Rewrite("-VAR", resolve)
	assert.NoError(err)
	assert.Equal("-$0010", text)

	text, err = Rewrite("$20", resolve)
	assert.NoError(err)
	assert.Equal("$20", text)

	_, err = Rewrite("OTHER", resolve)
	assert.Error(err)
}

func TestSplitOffset(t *testing.T) {
	assert := assert.New(t)

	base, offset, err := SplitOffset("TABLE+4-1")
	assert.NoError(err)
	assert.Equal("TABLE", base)
	assert.Equal(3, offset)

	base, offset, err = SplitOffset("$10")
	assert.NoError(err)
	assert.Equal("", base)
	assert.Equal(0x10, offset)

	assert.True(IsLiteral("$10+%1"))
	assert.False(IsLiteral("TABLE"))
}

func TestParseOperand(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		mnemonic string
		text     string
		expect   Operand
	}){
		{"NOP", "", Operand{Mode: MODE_INHERENT}},
		{"LDA", "#$05", Operand{Text: "#$05", Mode: MODE_IMMEDIATE, Expr: "$05"}},
		{"LDA", "$10", Operand{Text: "$10", Mode: MODE_EXTENDED, Expr: "$10", Bare: true}},
		{"LDA", "<VAR", Operand{Text: "<VAR", Mode: MODE_DIRECT, Expr: "VAR", ForceDirect: true}},
		{"LDA", ">$10", Operand{Text: ">$10", Mode: MODE_EXTENDED, Expr: "$10"}},
		{"BNE", "LOOP", Operand{Text: "LOOP", Mode: MODE_RELATIVE, Expr: "LOOP"}},
		{"TFR", "a, b", Operand{Text: "a, b", Mode: MODE_REGISTER, Registers: []string{"A", "B"}}},
		{"PSHS", "D,X,PC", Operand{Text: "D,X,PC", Mode: MODE_REGISTER, Registers: []string{"D", "X", "PC"}}},
		{"LDA", ",X", Operand{Text: ",X", Mode: MODE_INDEXED, Base: INDEX_REG_X, Index: INDEX_ZERO}},
		{"LDA", "5,y", Operand{Text: "5,y", Mode: MODE_INDEXED, Base: INDEX_REG_Y, Index: INDEX_OFFSET16, Expr: "5"}},
		{"LDA", ",U+", Operand{Text: ",U+", Mode: MODE_INDEXED, Base: INDEX_REG_U, Index: INDEX_INC1}},
		{"LDA", ",S++", Operand{Text: ",S++", Mode: MODE_INDEXED, Base: INDEX_REG_S, Index: INDEX_INC2}},
		{"LDA", ",-X", Operand{Text: ",-X", Mode: MODE_INDEXED, Base: INDEX_REG_X, Index: INDEX_DEC1}},
		{"LDA", ",--X", Operand{Text: ",--X", Mode: MODE_INDEXED, Base: INDEX_REG_X, Index: INDEX_DEC2}},
		{"LDA", "B,X", Operand{Text: "B,X", Mode: MODE_INDEXED, Base: INDEX_REG_X, Index: INDEX_ACC_B}},
		{"LDA", "A,Y", Operand{Text: "A,Y", Mode: MODE_INDEXED, Base: INDEX_REG_Y, Index: INDEX_ACC_A}},
		{"LDA", "D,U", Operand{Text: "D,U", Mode: MODE_INDEXED, Base: INDEX_REG_U, Index: INDEX_ACC_D}},
		{"LDA", "MSG,PCR", Operand{Text: "MSG,PCR", Mode: MODE_INDEXED, Base: INDEX_REG_PC, Index: INDEX_PC16, Expr: "MSG", Relative: true}},
		{"LDA", "[,X++]", Operand{Text: "[,X++]", Mode: MODE_INDEXED, Base: INDEX_REG_X, Index: INDEX_INC2, Indirect: true}},
		{"LDA", "[$7F00]", Operand{Text: "[$7F00]", Mode: MODE_INDEXED, Base: INDEX_REG_NONE, Index: INDEX_EXTENDED, Expr: "$7F00", Indirect: true}},
		{"LDA", "','", Operand{Text: "','", Mode: MODE_EXTENDED, Expr: "','", Bare: true}},
	}

	for _, entry := range table {
		op, err := ParseOperand(entry.mnemonic, entry.text)
		assert.NoError(err, entry.text)
		assert.Equal(entry.expect, op, entry.text)
	}

	for _, text := range []string{"#", "[,X", "[,X+]", "4,X+", ",Q", "<"} {
		_, err := ParseOperand("LDA", text)
		assert.Error(err, text)
	}
}
