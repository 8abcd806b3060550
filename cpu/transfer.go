package cpu

// Transfer moves values between registers.
type Transfer struct {
	Reg *Registers
	Alu Alu
}

// Tfr copies one register to another. Values are truncated to an 8-bit
// destination, and zero-extended into a 16-bit destination.
func (t Transfer) Tfr(postbyte uint8) (err error) {
	src, dst, err := DecodeTransfer(postbyte)
	if err != nil {
		return
	}
	t.Reg.Set(dst, t.Reg.Get(src))
	return
}

// Exg swaps two registers.
func (t Transfer) Exg(postbyte uint8) (err error) {
	src, dst, err := DecodeTransfer(postbyte)
	if err != nil {
		return
	}
	a, b := t.Reg.Get(src), t.Reg.Get(dst)
	t.Reg.Set(src, b)
	t.Reg.Set(dst, a)
	return
}

// Sex sign-extends B into A.
func (t Transfer) Sex() {
	t.Reg.SetD(t.Alu.Sex(t.Reg.B()))
}

// Abx adds B to X, unsigned. No flags change.
func (t Transfer) Abx() {
	t.Reg.SetX(t.Reg.X() + uint16(t.Reg.B()))
}
