// Package platform is the per-SoC-family glue the kernel calls into during
// early boot.  Each family registers a Platform under its device tree
// compatible string; Boot picks one for the machine and runs bootstrap and
// secondary core start through it.
package platform

import (
	"errors"

	"hatchery/src/boot/mp"
	"hatchery/src/hardware/bus"
	"hatchery/src/lib/upbeat"
)

var (
	ErrNoPlatform = errors.New("platform: no platform for this machine")
	ErrNoMapper   = errors.New("platform: machine has no bus mapper")
)

// DevmapEntry is one static mapping installed before the VM system is up.
type DevmapEntry struct {
	VA   uintptr
	PA   uintptr
	Size uintptr
}

// Device is whatever autoconfiguration is attaching.
type Device interface {
	DeviceName() string
}

type DeviceRegistrar interface {
	DeviceRegister(self Device, aux any)
}

// CPU gives access to the few coprocessor registers bootstrap reads.
type CPU interface {
	L2CTLR() uint32
}

// Raw is plain load/store by address.  The early console uses it before
// there is anything to map through.
type Raw interface {
	Load32(addr uintptr) uint32
	Store32(addr uintptr, v uint32)
}

type Timer interface {
	Delay(ms uint)
}

// DMATag is the DMA tag handed through to drivers untouched.
type DMATag any

// AttachArgs is filled by InitAttachArgs for the first device attach.
type AttachArgs struct {
	BST    bus.Mapper
	A4xBST bus.Mapper
	DMAT   DMATag
}

// Machine is everything outside this package a platform works through.
// Nil collaborators are allowed; the operation needing one does nothing.
type Machine struct {
	Mapper    bus.Mapper // generic bus space
	A4xMapper bus.Mapper // bus space with a 4 byte register stride
	DMA       DMATag
	CPU       CPU
	Raw       Raw
	Devices   DeviceRegistrar
	Timer     Timer

	// EarlyDeviceVA reports whether device access already goes through the
	// early VA alias rather than physical addresses.
	EarlyDeviceVA func() bool
	ConsAddr      uintptr // physical address of the early console UART, 0 for none

	RootCompatible []string // compatible strings of the device tree root
	BootEntry      uint32   // physical entry point of secondaries
	Hatched        *upbeat.HatchSet
	Budgets        mp.Budgets
}

// DeviceVA is EarlyDeviceVA with a nil hook meaning physical addressing.
func (m *Machine) DeviceVA() bool {
	return m.EarlyDeviceVA != nil && m.EarlyDeviceVA()
}

// Platform is one SoC family's set of early boot hooks.
type Platform interface {
	Devmap() []DevmapEntry
	Bootstrap(m *Machine) mp.Topology
	// MPStart starts the secondaries; ok is false when the family or the
	// variant has no way to do it.
	MPStart(m *Machine, topo mp.Topology) (rep mp.Report, ok bool, err error)
	InitAttachArgs(m *Machine, faa *AttachArgs)
	EarlyPutchar(m *Machine, c byte)
	DeviceRegister(m *Machine, self Device, aux any)
	Reset(m *Machine) error
	Delay(m *Machine, ms uint)
	UARTFreq() uint32
}
