package sysdec

import (
	"fmt"
	"strings"
)

type AccessDef struct {
	read  bool
	write bool
	isSet bool //did they explictly set the field
}

func (a AccessDef) CanRead() bool {
	return a.read
}
func (a AccessDef) CanWrite() bool {
	return a.write
}
func (a AccessDef) IsSet() bool {
	return a.isSet
}

// Access turns "r", "w" or "rw" into an AccessDef.  Anything else is a typo
// in a declaration and panics.
func Access(s string) AccessDef {
	s = strings.ToLower(strings.TrimSpace(s))
	var a AccessDef
	switch s {
	case "": //do nothing
	case "r":
		a.read = true
		a.isSet = true
	case "w":
		a.write = true
		a.isSet = true
	case "rw":
		a.write = true
		a.read = true
		a.isSet = true
	default:
		panic("unable to understand Access value:" + s)
	}
	return a
}

func (a AccessDef) String() string {
	switch {
	case a.read && a.write:
		return "rw"
	case a.write:
		return "w"
	case a.read:
		return "r"
	}
	return "-"
}

type BitRangeDef struct {
	Lsb int
	Msb int
}

func (b BitRangeDef) String() string {
	return fmt.Sprintf("[%d:%d]", b.Msb, b.Lsb)
}
func (b BitRangeDef) Width() int {
	return (b.Msb - b.Lsb) + 1
}

// Mask is the field's bits in place within a 32 bit register.
func (b BitRangeDef) Mask() uint32 {
	return uint32((uint64(1)<<uint(b.Width()) - 1) << uint(b.Lsb))
}

// BitRange declares the bits from Msb down to Lsb, inclusive.  Registers
// here are 32 bits wide.
func BitRange(Msb int, Lsb int) BitRangeDef {
	if Msb > 31 || Lsb > 31 || Msb < 0 || Lsb < 0 {
		panic("BitRange value for Msb/Lsb out of range")
	}
	if Msb < Lsb {
		panic("BitRange Msb < Lsb")
	}
	return BitRangeDef{Msb: Msb, Lsb: Lsb}
}
