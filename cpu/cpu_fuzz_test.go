package cpu

import (
	"bytes"
	"slices"
	"testing"
)

func FuzzIndex(f *testing.F) {
	for _, seed := range [][]byte{
		{0x84},
		{0x3F},
		{0xE1},
		{0x88, 0x80},
		{0x89, 0x12, 0x34},
		{0x8C, 0x04},
		{0x9F, 0x7F, 0x00},
		{0xBD, 0xFF, 0xFE},
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, code []byte) {
		ix, size, err := DecodeIndexBytes(code)
		if err != nil {
			return
		}

		out, err := ix.Encode()
		if err != nil {
			t.Fatalf("% X: decoded %+v does not encode: %v", code, ix, err)
		}

		// The register bits are ignored by the PC and [n16] forms.
		expect := slices.Clone(code[:size])
		if ix.Register == INDEX_REG_PC || ix.Register == INDEX_REG_NONE {
			expect[0] &^= 0x60
		}

		if !bytes.Equal(expect, out) {
			t.Errorf("% X: round trip gave % X", expect, out)
		}
	})
}

func FuzzEvaluate(f *testing.F) {
	for _, seed := range []string{
		"$FF", "%1010", "0x10+3", "FFh-1", "'A'+1", "-5--5", "0b11", "12h", "'+",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, expr string) {
		value, err := Evaluate(expr, nil)
		if err != nil {
			return
		}

		text, err := Rewrite(expr, nil)
		if err != nil {
			t.Fatalf("%q: evaluates but does not rewrite: %v", expr, err)
		}

		again, err := Evaluate(text, nil)
		if err != nil {
			t.Fatalf("%q: rewrite %q does not evaluate: %v", expr, text, err)
		}

		if uint16(value) != uint16(again) {
			t.Errorf("%q: %d, rewrite %q: %d", expr, value, text, again)
		}
	})
}
