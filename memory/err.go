package memory

import (
	"errors"

	"github.com/ezrec/moto6809/translate"
)

var f = translate.From

var (
	ErrSealed = errors.New(f("address space sealed"))
)

// ErrProtected is returned for runtime writes to the ROM region.
type ErrProtected uint16

func (ep ErrProtected) Error() string {
	return f("protected write at $%04X", uint16(ep))
}

func (ep ErrProtected) Is(err error) (ok bool) {
	_, ok = err.(ErrProtected)
	return
}
