// Package bus is the register-level I/O capability used during early boot:
// a Mapper hands out Windows onto physical register ranges and a Window does
// 32-bit loads, stores and barriers inside its range.  There is no policy
// here.  Callers decide what to write and when.
package bus

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyRange = errors.New("bus: empty register range")
	ErrNoDevMem   = errors.New("bus: /dev/mem mapping is not available on this platform")
)

// Range is one MMIO window in physical address space. Ranges are values and
// are never changed once declared.
type Range struct {
	Base uintptr
	Size uintptr
}

// End is the first address past the range.
func (r Range) End() uintptr {
	return r.Base + r.Size
}

func (r Range) Contains(addr uintptr) bool {
	return addr >= r.Base && addr < r.End()
}

// Overlaps is true if the two ranges share at least one byte.
func (r Range) Overlaps(o Range) bool {
	return r.Size != 0 && o.Size != 0 && r.Base < o.End() && o.Base < r.End()
}

func (r Range) String() string {
	return fmt.Sprintf("[%#x,%#x)", r.Base, r.End())
}

// BarrierKind selects which accesses a barrier orders.
type BarrierKind int

const (
	BarrierRead      BarrierKind = 0x1
	BarrierWrite     BarrierKind = 0x2
	BarrierReadWrite             = BarrierRead | BarrierWrite
)

func (k BarrierKind) String() string {
	switch k {
	case BarrierRead:
		return "read"
	case BarrierWrite:
		return "write"
	case BarrierReadWrite:
		return "read|write"
	}
	return fmt.Sprintf("barrier(%d)", int(k))
}

// Window is a mapped register range.  Offsets are relative to the base of
// the range and must be 32-bit aligned.  Stores made before a Barrier are
// visible to the other cores before any access issued after it.
type Window interface {
	Read32(off uintptr) uint32
	Write32(off uintptr, v uint32)
	Barrier(off uintptr, length uintptr, kind BarrierKind)
	Range() Range
}

// Mapper acquires and releases Windows.  Every successful Map must be
// paired with exactly one Unmap; a Window must not be touched after it has
// been unmapped.  Overlapping ranges mapped by two callers at once are not
// supported.
type Mapper interface {
	Map(r Range) (Window, error)
	Unmap(w Window)
}
