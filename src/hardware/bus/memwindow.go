package bus

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// MemWindow is a Window over memory that is already mapped into our address
// space, like a /dev/mem mmap or a device region set up by the boot tables.
// All register accesses are sync/atomic operations on the underlying words.
type MemWindow struct {
	r     Range
	mem   []byte
	fence uint32
	live  atomic.Bool
}

// NewMemWindow wraps mem (which must cover at least r.Size bytes and start
// at the register at r.Base) as a live window.
func NewMemWindow(r Range, mem []byte) *MemWindow {
	if uintptr(len(mem)) < r.Size {
		panic(fmt.Sprintf("bus: window %v backed by only %d bytes", r, len(mem)))
	}
	w := &MemWindow{r: r, mem: mem[:r.Size]}
	w.live.Store(true)
	return w
}

func (w *MemWindow) Range() Range {
	return w.r
}

func (w *MemWindow) word(off uintptr) *uint32 {
	if !w.live.Load() {
		panic(fmt.Sprintf("bus: access at +%#x to unmapped window %v", off, w.r))
	}
	if off&3 != 0 || off+4 > w.r.Size {
		panic(fmt.Sprintf("bus: bad offset %#x for window %v", off, w.r))
	}
	return (*uint32)(unsafe.Pointer(&w.mem[off]))
}

func (w *MemWindow) Read32(off uintptr) uint32 {
	return atomic.LoadUint32(w.word(off))
}

func (w *MemWindow) Write32(off uintptr, v uint32) {
	atomic.StoreUint32(w.word(off), v)
}

// Barrier checks that [off,off+length) is inside the window and issues a
// full fence.  Go atomics are sequentially consistent so the kind does not
// change the instruction used.
func (w *MemWindow) Barrier(off uintptr, length uintptr, kind BarrierKind) {
	if !w.live.Load() {
		panic(fmt.Sprintf("bus: barrier on unmapped window %v", w.r))
	}
	if off+length > w.r.Size || kind&BarrierReadWrite == 0 {
		panic(fmt.Sprintf("bus: bad %v barrier [+%#x,+%#x) for window %v",
			kind, off, off+length, w.r))
	}
	atomic.AddUint32(&w.fence, 1)
}

// release marks the window dead and hands back its memory so the mapper
// can drop it.
func (w *MemWindow) release() []byte {
	if !w.live.Swap(false) {
		panic(fmt.Sprintf("bus: window %v unmapped twice", w.r))
	}
	m := w.mem
	w.mem = nil
	return m
}

// pageSpan widens r to whole pages: start is the aligned base and length
// covers r.End() rounded up.
func pageSpan(r Range, page uintptr) (start uintptr, length uintptr) {
	start = r.Base &^ (page - 1)
	end := (r.End() + page - 1) &^ (page - 1)
	return start, end - start
}
