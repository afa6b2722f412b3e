package bringup

import (
	"io"
	"time"

	"hatchery/src/boot/mp"
	"hatchery/src/hardware/bus"
	"hatchery/src/hardware/simsoc"
	"hatchery/src/lib/trust"
	"hatchery/src/lib/upbeat"
	"hatchery/src/platform"

	_ "hatchery/src/platform/exynos"
)

// Harness is one board wired to a set of registers, ready to boot.
type Harness struct {
	Board   *Board
	Machine *platform.Machine
	SoC     *simsoc.SoC // nil on real hardware
	Direct  *bus.Direct // early console path on real hardware
}

// NewSim wires the board to a simulated SoC.  Bytes the board writes to
// its UART go to console.
func NewSim(b *Board, console io.Writer) *Harness {
	hatched := upbeat.NewHatchSet()
	cfg := simsoc.Config{
		Cores:          b.Cores,
		Dead:           b.Sim.Dead,
		Silent:         b.Sim.Silent,
		ConfirmLatency: b.Sim.ConfirmLatency,
		Async:          b.Sim.Async,
		HatchLatency:   b.Sim.HatchLatency,
		BootEntry:      b.BootEntry,
		Console:        console,
		TxFullReads:    b.Sim.TxFullReads,
	}
	if cfg.Cores == 0 {
		cfg.Cores = 4
	}
	for _, a := range b.Sim.FailMap {
		cfg.FailMap = append(cfg.FailMap, uintptr(a))
	}
	s := simsoc.New(cfg, hatched)

	m := b.machine(hatched)
	m.Mapper, m.A4xMapper = s, s
	m.CPU = s
	m.Raw = s
	if m.ConsAddr == 0 {
		m.ConsAddr = simsoc.UART.Base
	}
	return &Harness{Board: b, Machine: m, SoC: s}
}

// NewHardware wires the board to real registers reached through mapper.
// User space cannot read L2CTLR, so the core count comes from the board
// file, and nothing on the other cores will ever hatch.
func NewHardware(b *Board, mapper bus.Mapper) *Harness {
	m := b.machine(upbeat.NewHatchSet())
	m.Mapper, m.A4xMapper = mapper, mapper
	m.CPU = fixedCPU(b.Cores)
	direct := bus.NewDirect(mapper)
	m.Raw = direct
	if b.EarlyVA {
		trust.Warnf("%s: early_va ignored, /dev/mem only reaches physical addresses", b.Name)
		m.EarlyDeviceVA = nil
	}
	return &Harness{Board: b, Machine: m, Direct: direct}
}

func (b *Board) machine(hatched *upbeat.HatchSet) *platform.Machine {
	earlyVA := b.EarlyVA
	return &platform.Machine{
		Devices:        logRegistrar{},
		Timer:          sleeper{},
		EarlyDeviceVA:  func() bool { return earlyVA },
		ConsAddr:       uintptr(b.ConsAddr),
		RootCompatible: b.Compatible,
		BootEntry:      b.BootEntry,
		Hatched:        hatched,
		Budgets:        mp.Budgets{Core: b.Budgets.Core, Hatch: b.Budgets.Hatch},
	}
}

// Run boots the board once.  While it runs the log goes out of the
// board's early console.
func (h *Harness) Run() (*platform.BootResult, error) {
	if _, p, ok := platform.Match(h.Board.Compatible); ok && h.Machine.ConsAddr != 0 {
		prev := trust.SetOutput(platform.NewConsole(p, h.Machine))
		defer trust.SetOutput(prev)
	}
	res, err := platform.Boot(h.Machine, h.Board.Compatible)
	if h.SoC != nil {
		h.SoC.Wait()
	}
	return res, err
}

// Reset asks the platform to reset the board.
func (h *Harness) Reset(res *platform.BootResult) error {
	return res.Platform.Reset(h.Machine)
}

// fixedCPU is an L2CTLR that reports n cores.
type fixedCPU int

func (c fixedCPU) L2CTLR() uint32 {
	if c < 1 {
		return 0
	}
	return uint32(c-1) << 24
}

type sleeper struct{}

func (sleeper) Delay(ms uint) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

type logRegistrar struct{}

func (logRegistrar) DeviceRegister(self platform.Device, aux any) {
	trust.Debugf("device %s registered", self.DeviceName())
}
