package sysdec

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"hatchery/src/hardware/bus"
)

var (
	ErrUnknownPeripheral = errors.New("sysdec: no such peripheral")
	ErrUnknownRegister   = errors.New("sysdec: no such register")
	ErrUnknownField      = errors.New("sysdec: no such field")
	ErrBadDeclaration    = errors.New("sysdec: bad declaration")
)

const arraySuffix = "[%s]"

// Resolve gets a declaration ready for use.  Names are copied in from the
// map keys, peripherals that have no MMIO binding are dropped, bound ones get
// their base address, and every register (each element, for arrays) is
// checked to lie inside its peripheral's block.  Peripheral declarations are
// copied so one declaration can be bound at different bases by different
// devices.
func (d *DeviceDef) Resolve() error {
	if d.resolved {
		return nil
	}
	bound := map[string]*PeripheralDef{}
	for name, p := range d.Peripheral {
		addr, ok := d.MMIOBindings[name]
		if !ok {
			continue
		}
		cp := *p
		cp.Name = name
		cp.MMIOBase = addr
		for rname, r := range cp.Register {
			if err := resolveRegister(name, rname, r, cp.AddressBlock.Size); err != nil {
				return err
			}
		}
		bound[name] = &cp
	}
	for name := range d.MMIOBindings {
		if _, ok := bound[name]; !ok {
			return fmt.Errorf("%w: %s binds undeclared peripheral %s", ErrBadDeclaration, d.Name, name)
		}
	}
	d.Peripheral = bound
	d.resolved = true
	return nil
}

func resolveRegister(periph string, key string, r *RegisterDef, blockSize int) error {
	isArray := strings.HasSuffix(key, arraySuffix)
	r.Name = strings.TrimSuffix(key, arraySuffix)
	if isArray != (r.Dim > 0) {
		return fmt.Errorf("%w: %s.%s: array registers need both Dim and a %s suffix",
			ErrBadDeclaration, periph, key, arraySuffix)
	}
	if r.Dim > 0 && r.DimIncrement < 4 {
		return fmt.Errorf("%w: %s.%s: DimIncrement %d", ErrBadDeclaration, periph, r.Name, r.DimIncrement)
	}
	last := r.AddressOffset
	if r.Dim > 0 {
		last += (r.Dim - 1) * r.DimIncrement
	}
	if r.AddressOffset%4 != 0 || last+4 > blockSize {
		return fmt.Errorf("%w: %s.%s at %#x is outside a %#x byte block",
			ErrBadDeclaration, periph, r.Name, last, blockSize)
	}
	for fname, f := range r.Field {
		f.Name = fname
		f.RegName = r.Name
		if !f.Access.IsSet() && !r.Access.IsSet() {
			return fmt.Errorf("%w: neither register %s nor field %s "+
				"has declared access level (r,w, or rw)", ErrBadDeclaration, r.Name, fname)
		}
		for ename, e := range f.EnumeratedValue {
			e.Name = ename //copy name from map
			if uint64(e.Value) >= uint64(1)<<uint(f.BitRange.Width()) {
				return fmt.Errorf("%w: %s.%s.%s value %d does not fit %v",
					ErrBadDeclaration, r.Name, fname, ename, e.Value, f.BitRange)
			}
		}
	}
	return nil
}

// Lookup returns a resolved peripheral.
func (d *DeviceDef) Lookup(periph string) (*PeripheralDef, error) {
	if err := d.Resolve(); err != nil {
		return nil, err
	}
	p, ok := d.Peripheral[periph]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s", ErrUnknownPeripheral, d.Name, periph)
	}
	return p, nil
}

// Block is the physical range a peripheral decodes.
func (d *DeviceDef) Block(periph string) (bus.Range, error) {
	p, err := d.Lookup(periph)
	if err != nil {
		return bus.Range{}, err
	}
	return p.Range(), nil
}

// MustBlock is Block for package level declarations, it panics on error.
func (d *DeviceDef) MustBlock(periph string) bus.Range {
	r, err := d.Block(periph)
	if err != nil {
		panic(err)
	}
	return r
}

// Peripherals returns the bound peripherals sorted by address.
func (d *DeviceDef) Peripherals() []*PeripheralDef {
	if err := d.Resolve(); err != nil {
		return nil
	}
	result := make([]*PeripheralDef, 0, len(d.Peripheral))
	for _, p := range d.Peripheral {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Range().Base != result[j].Range().Base {
			return result[i].Range().Base < result[j].Range().Base
		}
		return result[i].Name < result[j].Name
	})
	return result
}

func (p *PeripheralDef) Range() bus.Range {
	return bus.Range{
		Base: uintptr(p.MMIOBase + p.AddressBlock.BaseAddress),
		Size: uintptr(p.AddressBlock.Size),
	}
}

// Reg finds a register by name, without any array suffix.
func (p *PeripheralDef) Reg(name string) (*RegisterDef, error) {
	for key, r := range p.Register {
		if strings.TrimSuffix(key, arraySuffix) == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrUnknownRegister, p.Name, name)
}

func (p *PeripheralDef) MustReg(name string) *RegisterDef {
	r, err := p.Reg(name)
	if err != nil {
		panic(err)
	}
	return r
}

// Registers returns the registers sorted by offset.
func (p *PeripheralDef) Registers() []*RegisterDef {
	result := make([]*RegisterDef, 0, len(p.Register))
	for _, r := range p.Register {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AddressOffset < result[j].AddressOffset
	})
	return result
}

// Offset is the byte offset of element i of an array register from the
// peripheral base.  Plain registers only have element 0.
func (r *RegisterDef) Offset(i int) uintptr {
	n := r.Dim
	if n == 0 {
		n = 1
	}
	if i < 0 || i >= n {
		panic(fmt.Sprintf("sysdec: %s[%d] out of range (%d elements)", r.Name, i, n))
	}
	return uintptr(r.AddressOffset + i*r.DimIncrement)
}

func (r *RegisterDef) FieldByName(name string) (*FieldDef, error) {
	f, ok := r.Field[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, r.Name, name)
	}
	return f, nil
}

func (r *RegisterDef) MustField(name string) *FieldDef {
	f, err := r.FieldByName(name)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *FieldDef) Mask() uint32 {
	return f.BitRange.Mask()
}

// Enum is the named value already shifted into the field's position.
func (f *FieldDef) Enum(name string) (uint32, error) {
	e, ok := f.EnumeratedValue[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s.%s has no value %s", ErrUnknownField, f.RegName, f.Name, name)
	}
	return uint32(e.Value) << uint(f.BitRange.Lsb), nil
}

func (f *FieldDef) MustEnum(name string) uint32 {
	v, err := f.Enum(name)
	if err != nil {
		panic(err)
	}
	return v
}
