// Package simsoc is a register-level model of an Exynos 5800 big cluster,
// just enough of it to run early boot on a host: the PMU core power
// registers, the SYSRAM boot vector, the software reset and one SSCOM UART.
// Secondary cores are modelled as goroutines that look at the boot vector
// when they are powered and then hatch.
package simsoc

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"hatchery/src/hardware/bus"
	soc "hatchery/src/hardware/exynos"
	"hatchery/src/lib/trust"
	"hatchery/src/lib/upbeat"
)

var (
	ErrNoDevice = errors.New("simsoc: no device at range")
	ErrRefused  = errors.New("simsoc: mapping refused")
)

// UART is the console UART of the simulated board.
var UART = soc.Exynos5800.MustBlock("UART2")

var devices = []bus.Range{soc.Exynos5800PMU, soc.Exynos5800BootVector, UART}

// Config describes how the simulated silicon behaves.
type Config struct {
	Cores          int   // what L2CTLR reports, 1 to 4
	Dead           []int // never confirm power
	Silent         []int // confirm power but never hatch
	ConfirmLatency int   // status reads that still show the core off

	// Async hatches secondaries from their own goroutine after HatchLatency.
	// Otherwise a core hatches on the status read that confirms it.
	Async        bool
	HatchLatency time.Duration

	BootEntry   uint32 // the entry point a healthy core expects in the vector
	Console     io.Writer
	TxFullReads int       // UFSTAT reads showing a full FIFO after each byte
	FailMap     []uintptr // Map of a range with one of these bases fails
}

// Stats is what the simulated hardware saw.
type Stats struct {
	Maps, Unmaps  int
	Live          int
	Barriers      int
	PowerRequests []int // cores in the order their enable was written
	StatusReads   []int // per core
	Strays        []int // cores powered with a wrong boot vector
	Resets        int
	ConsoleBytes  int
	TxFullPolls   int
	VAAccesses    int
}

type core struct {
	requested bool
	reads     int
	launched  bool
}

type SoC struct {
	cfg     Config
	hatched *upbeat.HatchSet

	mu     sync.Mutex
	mem    map[uintptr]uint32
	cores  []core
	live   map[*window]bool
	txBusy int
	stats  Stats

	wg sync.WaitGroup
}

// New builds a powered-on SoC with only the primary running.  Secondaries
// hatch into hatched.
func New(cfg Config, hatched *upbeat.HatchSet) *SoC {
	if cfg.Cores < 1 {
		cfg.Cores = 1
	}
	if cfg.Cores > soc.Exynos5800.NumCores {
		trust.Warnf("simsoc: %d cores asked for, the cluster has %d", cfg.Cores, soc.Exynos5800.NumCores)
		cfg.Cores = soc.Exynos5800.NumCores
	}
	return &SoC{
		cfg:     cfg,
		hatched: hatched,
		mem:     make(map[uintptr]uint32),
		cores:   make([]core, cfg.Cores),
		live:    make(map[*window]bool),
		stats:   Stats{StatusReads: make([]int, cfg.Cores)},
	}
}

// L2CTLR reports the core count in the NUMCPU field.
func (s *SoC) L2CTLR() uint32 {
	return uint32(s.cfg.Cores-1) << 24
}

// Load32 and Store32 accept either the physical address or its early VA
// alias.
func (s *SoC) Load32(addr uintptr) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(s.phys(addr))
}

func (s *SoC) Store32(addr uintptr, v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store(s.phys(addr), v)
}

func (s *SoC) phys(addr uintptr) uintptr {
	if addr >= soc.CoreVBase {
		s.stats.VAAccesses++
		return addr - soc.CoreVBase + soc.CorePBase
	}
	return addr
}

func (s *SoC) Map(r bus.Range) (bus.Window, error) {
	if r.Size == 0 {
		return nil, bus.ErrEmptyRange
	}
	if slices.Contains(s.cfg.FailMap, r.Base) {
		return nil, fmt.Errorf("%w: %v", ErrRefused, r)
	}
	inside := false
	for _, d := range devices {
		if r.Base >= d.Base && r.End() <= d.End() {
			inside = true
			break
		}
	}
	if !inside {
		return nil, fmt.Errorf("%w %v", ErrNoDevice, r)
	}
	w := &window{soc: s, r: r}
	s.mu.Lock()
	s.live[w] = true
	s.stats.Maps++
	s.mu.Unlock()
	return w, nil
}

func (s *SoC) Unmap(bw bus.Window) {
	w, ok := bw.(*window)
	if !ok {
		panic(fmt.Sprintf("simsoc: unmap of foreign window %T", bw))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live[w] {
		panic(fmt.Sprintf("simsoc: window %v unmapped twice", w.r))
	}
	delete(s.live, w)
	s.stats.Unmaps++
}

// Stats returns a copy of the counters.
func (s *SoC) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Live = len(s.live)
	st.PowerRequests = slices.Clone(s.stats.PowerRequests)
	st.StatusReads = slices.Clone(s.stats.StatusReads)
	st.Strays = slices.Clone(s.stats.Strays)
	return st
}

// Wait blocks until every secondary goroutine has finished hatching.
func (s *SoC) Wait() {
	s.wg.Wait()
}

func (s *SoC) coreAt(addr uintptr, reg func(int) uintptr) (int, bool) {
	base := soc.Exynos5800PMU.Base
	for n := range s.cores {
		if addr == base+reg(n) {
			return n, true
		}
	}
	return 0, false
}

// load and store run with s.mu held.
func (s *SoC) load(addr uintptr) uint32 {
	if addr == UART.Base+soc.UFSTAT {
		if s.txBusy > 0 {
			s.txBusy--
			s.stats.TxFullPolls++
			return soc.UFSTATTxFull
		}
		return 0
	}
	if n, ok := s.coreAt(addr, soc.CoreStatusOffset); ok {
		return s.status(n)
	}
	return s.mem[addr]
}

func (s *SoC) store(addr uintptr, v uint32) {
	switch {
	case addr == soc.SWResetRange.Base:
		if v&soc.SWResetAssert != 0 {
			s.stats.Resets++
		}
		return
	case addr == UART.Base+soc.UTXH:
		s.stats.ConsoleBytes++
		s.txBusy = s.cfg.TxFullReads
		if s.cfg.Console != nil {
			s.cfg.Console.Write([]byte{byte(v)})
		}
		return
	}
	s.mem[addr] = v
	if n, ok := s.coreAt(addr, soc.CoreConfigOffset); ok && v&soc.CorePowerEnable == soc.CorePowerEnable {
		s.stats.PowerRequests = append(s.stats.PowerRequests, n)
		if n != 0 {
			s.cores[n].requested = true
		}
	}
}

func (s *SoC) status(n int) uint32 {
	s.stats.StatusReads[n]++
	c := &s.cores[n]
	if n == 0 {
		return soc.CorePowerEnable
	}
	if !c.requested || slices.Contains(s.cfg.Dead, n) {
		return 0
	}
	c.reads++
	if c.reads <= s.cfg.ConfirmLatency {
		return 0
	}
	if !c.launched {
		c.launched = true
		s.launch(n)
	}
	return soc.CorePowerEnable
}

// launch is core n coming out of reset.  It branches to whatever the boot
// vector holds right now.  Nothing here may log: the logger can be writing
// to our own UART.
func (s *SoC) launch(n int) {
	if s.mem[soc.Exynos5800BootVector.Base] != s.cfg.BootEntry {
		s.stats.Strays = append(s.stats.Strays, n)
		return
	}
	if slices.Contains(s.cfg.Silent, n) {
		return
	}
	if !s.cfg.Async {
		s.hatched.Hatch(n)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		time.Sleep(s.cfg.HatchLatency)
		s.hatched.Hatch(n)
	}()
}

type window struct {
	soc *SoC
	r   bus.Range
}

func (w *window) Range() bus.Range {
	return w.r
}

func (w *window) check(off uintptr) {
	if !w.soc.live[w] {
		panic(fmt.Sprintf("simsoc: access at +%#x to unmapped window %v", off, w.r))
	}
	if off&3 != 0 || off+4 > w.r.Size {
		panic(fmt.Sprintf("simsoc: bad offset %#x for window %v", off, w.r))
	}
}

func (w *window) Read32(off uintptr) uint32 {
	w.soc.mu.Lock()
	defer w.soc.mu.Unlock()
	w.check(off)
	return w.soc.load(w.r.Base + off)
}

func (w *window) Write32(off uintptr, v uint32) {
	w.soc.mu.Lock()
	defer w.soc.mu.Unlock()
	w.check(off)
	w.soc.store(w.r.Base+off, v)
}

func (w *window) Barrier(off uintptr, length uintptr, kind bus.BarrierKind) {
	w.soc.mu.Lock()
	defer w.soc.mu.Unlock()
	if !w.soc.live[w] {
		panic(fmt.Sprintf("simsoc: barrier on unmapped window %v", w.r))
	}
	w.soc.stats.Barriers++
}
