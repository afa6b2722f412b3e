package mp

import (
	"errors"
	"fmt"
	"time"

	"hatchery/src/hardware/bus"
	"hatchery/src/lib/upbeat"
)

const (
	testPMUBase    = 0x1004_0000
	testVectorBase = 0x0207_301c
	testPowerEn    = 0x3
	testEntry      = 0x4000_8000
)

func testConfig(n int) uintptr { return 0x2000 + 0x80*uintptr(n) }
func testStatus(n int) uintptr { return 0x2004 + 0x80*uintptr(n) }

func testSequencer() *Sequencer {
	return &Sequencer{
		Name:             "variant-X",
		PMU:              bus.Range{Base: testPMUBase, Size: 0x2_0000},
		BootVector:       bus.Range{Base: testVectorBase, Size: 4},
		BootVectorOffset: 0,
		CoreConfig:       testConfig,
		CoreStatus:       testStatus,
		PowerEnable:      testPowerEn,
		CoreBudget:       100,
		HatchBudget:      1000,
	}
}

// op is one access seen by a fakeWindow
type op struct {
	kind   byte // 'r', 'w' or 'b'
	window string
	off    uintptr
	val    uint32
}

func (o op) String() string {
	return fmt.Sprintf("%c %s+%#x=%#x", o.kind, o.window, o.off, o.val)
}

// fakeHW is a power management unit and boot vector that record every
// access.  A core is confirmed once its status has been read confirmAfter[n]
// times after its enable write; cores missing from confirmAfter never are.
type fakeHW struct {
	ops          []op
	confirmAfter map[int]int
	statusReads  map[int]int
	powered      map[int]bool
	failMap      map[uintptr]bool

	hatched   *upbeat.HatchSet
	hatchSync bool // hatch as soon as the PMU confirms
	hatchLate bool // hatch from a goroutine a little later
	noHatch   map[int]bool

	maps, unmaps int
	badAccesses  int
}

func newFakeHW(confirm map[int]int) *fakeHW {
	return &fakeHW{
		confirmAfter: confirm,
		statusReads:  map[int]int{},
		powered:      map[int]bool{},
		failMap:      map[uintptr]bool{},
		noHatch:      map[int]bool{},
		hatched:      upbeat.NewHatchSet(),
		hatchSync:    true,
	}
}

func (h *fakeHW) bringup(cores int) *Bringup {
	return &Bringup{
		Mapper:    h,
		Topology:  Topology{Cores: cores},
		BootEntry: testEntry,
		Hatched:   h.hatched,
	}
}

func (h *fakeHW) Map(r bus.Range) (bus.Window, error) {
	if h.failMap[r.Base] {
		return nil, errors.New("no translation slots left")
	}
	h.maps++
	name := "vec"
	if r.Base == testPMUBase {
		name = "pmu"
	}
	return &fakeWindow{name: name, r: r, hw: h}, nil
}

func (h *fakeHW) Unmap(w bus.Window) {
	fw := w.(*fakeWindow)
	if fw.released {
		panic("unmapped twice: " + fw.name)
	}
	fw.released = true
	h.unmaps++
}

// writes returns the config register writes in order as core numbers
func (h *fakeHW) configWrites() []int {
	result := []int{}
	for _, o := range h.ops {
		if o.kind == 'w' && o.window == "pmu" {
			result = append(result, int((o.off-0x2000)/0x80))
		}
	}
	return result
}

func (h *fakeHW) hatch(n int) {
	if h.noHatch[n] {
		return
	}
	switch {
	case h.hatchLate:
		go func() {
			time.Sleep(2 * time.Millisecond)
			h.hatched.Hatch(n)
		}()
	case h.hatchSync:
		h.hatched.Hatch(n)
	}
}

type fakeWindow struct {
	name     string
	r        bus.Range
	hw       *fakeHW
	released bool
}

func (w *fakeWindow) Range() bus.Range {
	return w.r
}

func (w *fakeWindow) check() {
	if w.released {
		w.hw.badAccesses++
	}
}

func (w *fakeWindow) Read32(off uintptr) uint32 {
	w.check()
	w.hw.ops = append(w.hw.ops, op{kind: 'r', window: w.name, off: off})
	if w.name != "pmu" || off < 0x2004 || (off-0x2004)%0x80 != 0 {
		return 0
	}
	n := int((off - 0x2004) / 0x80)
	if !w.hw.powered[n] {
		return 0
	}
	w.hw.statusReads[n]++
	need, ok := w.hw.confirmAfter[n]
	if !ok || w.hw.statusReads[n] < need {
		return 0
	}
	if w.hw.statusReads[n] == need {
		w.hw.hatch(n)
	}
	return testPowerEn
}

func (w *fakeWindow) Write32(off uintptr, v uint32) {
	w.check()
	w.hw.ops = append(w.hw.ops, op{kind: 'w', window: w.name, off: off, val: v})
	if w.name == "pmu" && off >= 0x2000 && (off-0x2000)%0x80 == 0 && v == testPowerEn {
		w.hw.powered[int((off-0x2000)/0x80)] = true
	}
}

func (w *fakeWindow) Barrier(off uintptr, length uintptr, kind bus.BarrierKind) {
	w.check()
	w.hw.ops = append(w.hw.ops, op{kind: 'b', window: w.name, off: off, val: uint32(kind)})
}
