package bus

import (
	"fmt"
	"sync"
)

// Direct does single loads and stores by physical address through a Mapper,
// mapping one word around each access.  It is slow and only meant for the
// early console, which has nothing better before the devmap is installed.
// It never logs, since the logger may be writing through it; a failed
// access reads as zero and is kept for Err.
type Direct struct {
	M Mapper

	mu  sync.Mutex
	err error
}

func NewDirect(m Mapper) *Direct {
	return &Direct{M: m}
}

func (d *Direct) Load32(addr uintptr) uint32 {
	w, err := d.M.Map(Range{Base: addr, Size: 4})
	if err != nil {
		d.fail(fmt.Errorf("load from %#x: %w", addr, err))
		return 0
	}
	defer d.M.Unmap(w)
	return w.Read32(0)
}

func (d *Direct) Store32(addr uintptr, v uint32) {
	w, err := d.M.Map(Range{Base: addr, Size: 4})
	if err != nil {
		d.fail(fmt.Errorf("store to %#x: %w", addr, err))
		return
	}
	defer d.M.Unmap(w)
	w.Write32(0, v)
}

func (d *Direct) fail(err error) {
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
}

// Err is the most recent failed access, if any.
func (d *Direct) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}
