//go:build linux

package bus

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"hatchery/src/lib/trust"
)

// DevMem maps physical register ranges through /dev/mem.  It is what a
// Linux-hosted bring-up tool uses to reach the same registers the boot
// code does.  It does not log: the early console maps through it.
type DevMem struct {
	path string
	fd   int

	mu   sync.Mutex
	live map[*MemWindow][]byte
}

// OpenDevMem opens path (normally /dev/mem) uncached.
func OpenDevMem(path string) (*DevMem, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("bus: open %s: %w", path, err)
	}
	return &DevMem{path: path, fd: fd, live: make(map[*MemWindow][]byte)}, nil
}

func (d *DevMem) Map(r Range) (Window, error) {
	if r.Size == 0 {
		return nil, ErrEmptyRange
	}
	start, length := pageSpan(r, uintptr(unix.Getpagesize()))
	region, err := unix.Mmap(d.fd, int64(start), int(length),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("bus: mmap %s %v: %w", d.path, r, err)
	}
	w := NewMemWindow(r, region[r.Base-start:])
	d.mu.Lock()
	d.live[w] = region
	d.mu.Unlock()
	return w, nil
}

func (d *DevMem) Unmap(w Window) {
	mw, ok := w.(*MemWindow)
	if !ok {
		panic(fmt.Sprintf("bus: devmem asked to unmap foreign window %T", w))
	}
	d.mu.Lock()
	region, ok := d.live[mw]
	delete(d.live, mw)
	d.mu.Unlock()
	if !ok {
		panic(fmt.Sprintf("bus: devmem window %v is not mapped", mw.r))
	}
	mw.release()
	if err := unix.Munmap(region); err != nil {
		panic(fmt.Sprintf("bus: munmap %v: %v", mw.r, err))
	}
}

// Close releases the descriptor.  Windows still mapped stay valid until
// they are unmapped.
func (d *DevMem) Close() error {
	d.mu.Lock()
	n := len(d.live)
	d.mu.Unlock()
	if n != 0 {
		trust.Warnf("devmem: closing %s with %d windows still mapped", d.path, n)
	}
	return unix.Close(d.fd)
}
