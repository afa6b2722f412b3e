package sysdec

// DeviceDef declares one SoC: which peripherals it has and where each one
// sits in physical address space.  Peripherals are written once and bound
// to addresses per device with MMIOBindings, so two SoCs that share a block
// at different bases share the declaration.
type DeviceDef struct {
	Vendor       string
	Name         string
	Compatible   string // root device tree compatible string
	Description  string
	Cpu          CPUDef
	NumCores     int // upper bound, the real count is read at boot
	MMIOBindings map[string]int
	Peripheral   map[string]*PeripheralDef

	resolved bool
}

type CPUDef struct {
	Name         string
	Description  string
	Revision     string
	LittleEndian bool
	MMUPresent   bool
}

type PeripheralDef struct {
	Name         string //if set, will be ignored, it is copied from the key in map
	Description  string
	AddressBlock AddressBlockDef
	MMIOBase     int //copied from the device's MMIOBindings
	Register     map[string]*RegisterDef
}

type AddressBlockDef struct {
	BaseAddress int
	Size        int
	Usage       string
}

type RegisterDef struct {
	Name          string //if set, will be ignored, it is copied from the key in map
	Description   string
	AddressOffset int
	Size          int
	Access        AccessDef
	ResetValue    int
	Field         map[string]*FieldDef
	//a register repeated Dim times, DimIncrement bytes apart, is an array
	//and is named with a trailing [%s]
	Dim          int
	DimIncrement int
}

type FieldDef struct {
	Name            string
	Description     string
	BitRange        BitRangeDef
	Access          AccessDef
	EnumeratedValue map[string]*EnumeratedValueDef
	RegName         string //created during processing
}

type EnumeratedValueDef struct {
	Name        string //don't bother setting,will be copied from the map
	Description string
	Value       int
}
