// Package mp brings up the secondary cores of a multi-core SoC at boot.  A
// DispatchTable picks the power sequencer for the exact SoC variant and a
// Sequencer drives the power management registers and waits for the cores
// to hatch.  Nothing in here ever fails the boot: a core that does not come
// up is simply left out.
package mp

import (
	"errors"

	"hatchery/src/hardware/bus"
	"hatchery/src/lib/upbeat"
)

var (
	ErrMap        = errors.New("mp: unable to map register range")
	ErrBadBringup = errors.New("mp: incomplete bring-up context")
)

// CoreIndex names one core.  Core 0 is the primary and is never sequenced.
type CoreIndex = int

// Topology is what bootstrap discovered about the cores.  It is computed
// once before any sequencing and never changes afterwards.
type Topology struct {
	Cores int
}

// Budgets overrides a sequencer's retry budgets; zero keeps its own.
type Budgets struct {
	Core  uint32
	Hatch uint32
}

// Bringup is everything a sequencer needs, passed explicitly.
type Bringup struct {
	Mapper    bus.Mapper
	Topology  Topology
	BootEntry uint32 // physical address secondaries branch to
	Hatched   *upbeat.HatchSet
	Budgets   Budgets
}

func (b *Bringup) validate() error {
	if b == nil || b.Mapper == nil || b.Hatched == nil {
		return ErrBadBringup
	}
	return nil
}

// EntryPoint is one variant's bring-up routine.
type EntryPoint func(b *Bringup) (Report, error)

type DispatchEntry struct {
	Compatible string
	Start      EntryPoint
}

// DispatchTable is searched in order; the first matching entry wins.
type DispatchTable []DispatchEntry

// Resolve finds the entry whose compatible string is exactly id.  No entry
// means the variant has no secondary bring-up and the system stays on one
// core.  An entry with a nil Start still matches and hides later duplicates.
func (t DispatchTable) Resolve(id string) (EntryPoint, bool) {
	for _, e := range t {
		if e.Compatible == id {
			return e.Start, e.Start != nil
		}
	}
	return nil, false
}

// ResolveAny matches a device tree node with several compatible strings.
// Table order decides: the first table entry naming any of ids is returned.
func (t DispatchTable) ResolveAny(ids []string) (EntryPoint, bool) {
	for _, e := range t {
		for _, id := range ids {
			if e.Compatible == id {
				return e.Start, e.Start != nil
			}
		}
	}
	return nil, false
}

// Start resolves compats and runs the sequencer found.  ok is false when no
// entry matched; that is not an error.
func (t DispatchTable) Start(compats []string, b *Bringup) (rep Report, ok bool, err error) {
	start, ok := t.ResolveAny(compats)
	if !ok {
		if b != nil {
			rep.Cores = b.Topology.Cores
		}
		return rep, false, nil
	}
	if err := b.validate(); err != nil {
		return Report{}, true, err
	}
	rep, err = start(b)
	return rep, true, err
}
