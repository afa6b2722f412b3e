package upbeat

import (
	"math/bits"
	"strconv"
	"strings"

	"hatchery/src/lib/trust"
)

// MaxCores is the number of cores a HatchSet (and a CoreMask) can describe.
const MaxCores = 32

// CoreMask is a plain value with bit n set for core n.  The primary keeps its
// own record of which cores it started in one of these.
type CoreMask uint32

func (m CoreMask) Has(core int) bool {
	return core >= 0 && core < MaxCores && m&(1<<uint(core)) != 0
}

func (m CoreMask) With(core int) CoreMask {
	if core < 0 || core >= MaxCores {
		panic("upbeat: core index out of range: " + strconv.Itoa(core))
	}
	return m | 1<<uint(core)
}

func (m CoreMask) Count() int {
	return bits.OnesCount32(uint32(m))
}

// Cores lists the cores in the mask in ascending order.
func (m CoreMask) Cores() []int {
	result := []int{}
	for c := 0; c < MaxCores; c++ {
		if m.Has(c) {
			result = append(result, c)
		}
	}
	return result
}

func (m CoreMask) String() string {
	parts := []string{}
	for _, c := range m.Cores() {
		parts = append(parts, strconv.Itoa(c))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// HatchSet is the readiness set for one boot attempt.  Each secondary core
// sets its own bit once it is running on its own; the primary only reads it.
type HatchSet struct {
	bits *BitSet
}

func NewHatchSet() *HatchSet {
	return &HatchSet{bits: NewBitSet(MaxCores)}
}

// Hatch is called by a secondary core, on that core, when it starts
// executing.  A core hatching twice is a bug in the entry code; it is
// reported and otherwise harmless.
func (h *HatchSet) Hatch(core int) {
	if core <= 0 || core >= MaxCores {
		trust.Errorf("hatch from impossible core %d", core)
		return
	}
	if h.bits.Set(BitIndex(core)) {
		trust.Warnf("core %d hatched twice", core)
	}
}

func (h *HatchSet) Hatched(core int) bool {
	if core < 0 || core >= MaxCores {
		return false
	}
	return h.bits.On(BitIndex(core))
}

// Mask is an atomic snapshot of every core that has hatched so far.
func (h *HatchSet) Mask() CoreMask {
	return CoreMask(h.bits.Word(0))
}
