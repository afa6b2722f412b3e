package platform

import (
	"fmt"
	"strings"

	"hatchery/src/boot/mp"
	"hatchery/src/lib/trust"
)

// BootResult is what Boot found and did.
type BootResult struct {
	Family   string
	Platform Platform
	Topology mp.Topology
	MPRan    bool // false means the machine stays on one core
	MP       mp.Report
}

// Online is the set of cores running after boot, the primary included.
func (r *BootResult) Online() int {
	if !r.MPRan {
		return 1
	}
	return 1 + r.MP.Hatched.Count()
}

// Boot selects the platform for compats, runs its bootstrap and, on a
// multiprocessor build with more than one core, starts the secondaries.
// Only an unknown family or a mapping failure is an error; a variant with
// no sequencer leaves the machine on one core.  compats becomes the
// machine's RootCompatible, so the same list picks the secondary sequencer.
func Boot(m *Machine, compats []string) (*BootResult, error) {
	family, p, ok := Match(compats)
	if !ok {
		return nil, fmt.Errorf("%w (compatible %s)", ErrNoPlatform, strings.Join(compats, ", "))
	}
	m.RootCompatible = compats
	res := &BootResult{Family: family, Platform: p}
	res.Topology = p.Bootstrap(m)
	trust.Infof("platform %s, %d cores", family, res.Topology.Cores)

	if !mp.Enabled || res.Topology.Cores <= 1 {
		return res, nil
	}
	rep, ran, err := p.MPStart(m, res.Topology)
	if err != nil {
		return res, err
	}
	res.MPRan = ran
	res.MP = rep
	if !ran {
		trust.Infof("%s: no secondary start for this variant", family)
	}
	return res, nil
}

// Console turns a platform's early putchar into a writer, so the logger can
// be pointed at the UART before any driver has attached.
type Console struct {
	p Platform
	m *Machine
}

func NewConsole(p Platform, m *Machine) *Console {
	return &Console{p: p, m: m}
}

func (c *Console) Write(b []byte) (int, error) {
	for _, ch := range b {
		if ch == '\n' {
			c.p.EarlyPutchar(c.m, '\r')
		}
		c.p.EarlyPutchar(c.m, ch)
	}
	return len(b), nil
}
