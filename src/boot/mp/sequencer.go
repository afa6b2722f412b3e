package mp

import (
	"fmt"

	"hatchery/src/hardware/bus"
	"hatchery/src/lib/trust"
	"hatchery/src/lib/upbeat"
)

// Retry budgets are iteration counts, not time.  There is no calibrated
// timer this early, so they have to be big enough for the slowest clock
// configuration.
const (
	CorePollBudget  = uint32(0x0100_0000) // reads of one core's status register
	HatchPollBudget = uint32(0x1000_0000) // reads of the hatch set after all cores
)

type PowerState int

const (
	NotRequested PowerState = iota
	RequestPending
	Confirmed
)

func (p PowerState) String() string {
	switch p {
	case NotRequested:
		return "not-requested"
	case RequestPending:
		return "pending"
	case Confirmed:
		return "confirmed"
	}
	return fmt.Sprintf("power-state(%d)", int(p))
}

// Report is what one bring-up pass did.  Index n of States and CorePolls is
// core n; index 0 (the primary) is always NotRequested with zero polls.
type Report struct {
	Variant       string
	Cores         int
	Started       upbeat.CoreMask // confirmed powered by the PMU
	Hatched       upbeat.CoreMask // last snapshot of the hatch set
	States        []PowerState
	CorePolls     []int
	HatchPolls    int
	HatchTimedOut bool
}

// Sequencer powers up secondaries through a power management unit that has
// one config/status register pair per core and a boot vector register the
// cores read when they come out of reset.
type Sequencer struct {
	Name             string
	PMU              bus.Range
	BootVector       bus.Range
	BootVectorOffset uintptr
	CoreConfig       func(n CoreIndex) uintptr
	CoreStatus       func(n CoreIndex) uintptr
	PowerEnable      uint32
	MaxCores         int // register pairs the PMU has, zero for upbeat.MaxCores

	// zero means CorePollBudget / HatchPollBudget
	CoreBudget  uint32
	HatchBudget uint32
}

func pick(override, own, def uint32) uint32 {
	switch {
	case override != 0:
		return override
	case own != 0:
		return own
	}
	return def
}

// Entry adapts the sequencer to a dispatch table slot.
func (s *Sequencer) Entry() EntryPoint {
	return s.Run
}

// Run is a single best effort pass: write the boot vector, power each
// secondary in ascending order, one at a time, then wait for the ones that
// powered up to hatch.  Timeouts are never errors.  The only error is
// failing to map a register range, and then nothing is left mapped.
func (s *Sequencer) Run(b *Bringup) (Report, error) {
	if err := b.validate(); err != nil {
		return Report{}, err
	}
	limit := upbeat.MaxCores
	if s.MaxCores > 0 && s.MaxCores < limit {
		limit = s.MaxCores
	}
	cores := b.Topology.Cores
	if cores > limit {
		trust.Warnf("%s: %d cores discovered, only %d supported", s.Name, cores, limit)
		cores = limit
	}
	if cores < 1 {
		cores = 1
	}
	rep := Report{
		Variant:   s.Name,
		Cores:     cores,
		States:    make([]PowerState, cores),
		CorePolls: make([]int, cores),
	}

	pmu, err := b.Mapper.Map(s.PMU)
	if err != nil {
		return rep, fmt.Errorf("%w %v (%s pmu): %w", ErrMap, s.PMU, s.Name, err)
	}
	defer b.Mapper.Unmap(pmu)
	vec, err := b.Mapper.Map(s.BootVector)
	if err != nil {
		return rep, fmt.Errorf("%w %v (%s boot vector): %w", ErrMap, s.BootVector, s.Name, err)
	}
	defer b.Mapper.Unmap(vec)

	// the vector has to be visible before any core can see its enable bit
	vec.Write32(s.BootVectorOffset, b.BootEntry)
	vec.Barrier(s.BootVectorOffset, 4, bus.BarrierReadWrite)
	trust.Debugf("%s: boot vector %#x, %d cores", s.Name, b.BootEntry, cores)

	coreBudget := pick(b.Budgets.Core, s.CoreBudget, CorePollBudget)
	for n := 1; n < cores; n++ {
		pmu.Write32(s.CoreConfig(n), s.PowerEnable)
		rep.States[n] = RequestPending
		polls, ok := s.confirm(pmu, n, coreBudget)
		rep.CorePolls[n] = polls
		if !ok {
			trust.Warnf("%s: cpu%d did not confirm power on after %d polls", s.Name, n, polls)
			continue
		}
		rep.States[n] = Confirmed
		rep.Started = rep.Started.With(n)
	}

	hatchBudget := pick(b.Budgets.Hatch, s.HatchBudget, HatchPollBudget)
	rep.HatchPolls, rep.Hatched = WaitHatched(b.Hatched, rep.Started, hatchBudget)
	rep.HatchTimedOut = rep.Hatched != rep.Started
	if rep.HatchTimedOut {
		trust.Warnf("%s: started %v but hatched %v", s.Name, rep.Started, rep.Hatched)
	}
	trust.Statsf("mp", "%s: started %v hatched %v in %d polls", s.Name, rep.Started,
		rep.Hatched, rep.HatchPolls)
	return rep, nil
}

func (s *Sequencer) confirm(pmu bus.Window, n CoreIndex, budget uint32) (int, bool) {
	polls := 0
	for i := budget; i > 0; i-- {
		polls++
		if pmu.Read32(s.CoreStatus(n))&s.PowerEnable == s.PowerEnable {
			return polls, true
		}
	}
	return polls, false
}

// WaitHatched polls the hatch set until it equals started or budget polls
// have been spent.  It returns the polls used and the last snapshot.
func WaitHatched(h *upbeat.HatchSet, started upbeat.CoreMask, budget uint32) (int, upbeat.CoreMask) {
	polls := 0
	var last upbeat.CoreMask
	for i := budget; i > 0; i-- {
		polls++
		last = h.Mask()
		if last == started {
			break
		}
	}
	return polls, last
}
