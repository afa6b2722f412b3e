// Package exynos registers the Samsung Exynos 4 and Exynos 5 platforms.
// Importing it for side effects is enough.
package exynos

import (
	"hatchery/src/boot/mp"
	soc "hatchery/src/hardware/exynos"
	"hatchery/src/lib/trust"
	"hatchery/src/platform"
)

// Exynos5800 powers the A15 cluster through the PMU core registers and
// points the cores at the boot vector word in SYSRAM.
var Exynos5800 = &mp.Sequencer{
	Name:        "exynos5800",
	PMU:         soc.Exynos5800PMU,
	BootVector:  soc.Exynos5800BootVector,
	CoreConfig:  soc.CoreConfigOffset,
	CoreStatus:  soc.CoreStatusOffset,
	PowerEnable: soc.CorePowerEnable,
	MaxCores:    soc.Exynos5800.NumCores,
}

// mpStarts is in priority order.  Exynos variants not listed here come up
// on one core.
var mpStarts = mp.DispatchTable{
	{Compatible: soc.Exynos5800.Compatible, Start: Exynos5800.Entry()},
}

type family struct {
	name     string
	devmap   []platform.DevmapEntry
	mpStarts mp.DispatchTable // nil: no secondary start at all
	maxCores int
}

var exynos4 = &family{
	name: "exynos4",
	devmap: []platform.DevmapEntry{
		{VA: soc.CoreVBase, PA: soc.CorePBase, Size: soc.Exynos4CoreSize},
		{VA: soc.Exynos4AudioCoreVBase, PA: soc.Exynos4AudioCorePBase, Size: soc.Exynos4AudioCoreSize},
	},
}

var exynos5 = &family{
	name: "exynos5",
	devmap: []platform.DevmapEntry{
		{VA: soc.CoreVBase, PA: soc.CorePBase, Size: soc.Exynos5CoreSize},
		{VA: soc.Exynos5AudioCoreVBase, PA: soc.Exynos5AudioCorePBase, Size: soc.Exynos5AudioCoreSize},
		{VA: soc.Exynos5SysRAMVBase, PA: soc.Exynos5SysRAMPBase, Size: soc.Exynos5SysRAMSize},
	},
	mpStarts: mpStarts,
	maxCores: soc.Exynos5800.NumCores,
}

func init() {
	platform.Register("samsung,exynos4", exynos4)
	platform.Register("samsung,exynos5", exynos5)
}

func (f *family) Devmap() []platform.DevmapEntry {
	return f.devmap
}

// Bootstrap reads the core count the L2 controller was built with.
func (f *family) Bootstrap(m *platform.Machine) mp.Topology {
	if !mp.Enabled || m.CPU == nil {
		return mp.Topology{Cores: 1}
	}
	l2 := m.CPU.L2CTLR()
	cores := soc.NumCPU(l2)
	trust.Debugf("%s: L2CTLR %#08x, %d cores", f.name, l2, cores)
	return mp.Topology{Cores: cores}
}

func (f *family) MPStart(m *platform.Machine, topo mp.Topology) (mp.Report, bool, error) {
	if f.mpStarts == nil {
		return mp.Report{Cores: topo.Cores}, false, nil
	}
	if f.maxCores > 0 && topo.Cores > f.maxCores {
		trust.Warnf("%s: %d cores reported, sequencing %d", f.name, topo.Cores, f.maxCores)
		topo.Cores = f.maxCores
	}
	b := &mp.Bringup{
		Mapper:    m.Mapper,
		Topology:  topo,
		BootEntry: m.BootEntry,
		Hatched:   m.Hatched,
		Budgets:   m.Budgets,
	}
	return f.mpStarts.Start(m.RootCompatible, b)
}

func (f *family) InitAttachArgs(m *platform.Machine, faa *platform.AttachArgs) {
	faa.BST = m.Mapper
	faa.A4xBST = m.A4xMapper
	faa.DMAT = m.DMA
}

// EarlyPutchar spins on the transmit FIFO and writes one byte.  It works
// both before and after the MMU is on; the caller says which alias to use.
func (f *family) EarlyPutchar(m *platform.Machine, c byte) {
	if m.ConsAddr == 0 || m.Raw == nil {
		return
	}
	base := m.ConsAddr
	if m.DeviceVA() {
		base = soc.PhysToVirt(m.ConsAddr)
	}
	for m.Raw.Load32(base+soc.UFSTAT)&soc.UFSTATTxFull != 0 {
	}
	m.Raw.Store32(base+soc.UTXH, uint32(c))
}

func (f *family) DeviceRegister(m *platform.Machine, self platform.Device, aux any) {
	if m.Devices != nil {
		m.Devices.DeviceRegister(self, aux)
	}
}

// Reset asserts the PMU software reset.  On hardware it does not return.
func (f *family) Reset(m *platform.Machine) error {
	if m.Mapper == nil {
		return platform.ErrNoMapper
	}
	w, err := m.Mapper.Map(soc.SWResetRange)
	if err != nil {
		return err
	}
	defer m.Mapper.Unmap(w)
	trust.Infof("%s: software reset", f.name)
	w.Write32(0, soc.SWResetAssert)
	return nil
}

func (f *family) Delay(m *platform.Machine, ms uint) {
	if m.Timer != nil {
		m.Timer.Delay(ms)
	}
}

func (f *family) UARTFreq() uint32 {
	return soc.UARTFreq
}
