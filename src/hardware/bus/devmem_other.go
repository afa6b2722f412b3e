//go:build !linux

package bus

// DevMem is only implemented on Linux.
type DevMem struct{}

func OpenDevMem(path string) (*DevMem, error) {
	return nil, ErrNoDevMem
}

func (d *DevMem) Map(r Range) (Window, error) {
	return nil, ErrNoDevMem
}

func (d *DevMem) Unmap(w Window) {}

func (d *DevMem) Close() error {
	return nil
}
