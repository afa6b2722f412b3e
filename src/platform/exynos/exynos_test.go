package exynos

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hatchery/src/boot/mp"
	soc "hatchery/src/hardware/exynos"
	"hatchery/src/hardware/simsoc"
	"hatchery/src/lib/upbeat"
	"hatchery/src/platform"
)

const entry = 0x4000_8000

var peachPi = []string{"google,peach-pi-rev10", "google,peach-pi", "samsung,exynos5800", "samsung,exynos5"}

// machine wires a simulated 5800 into a Machine the way the kernel would.
func machine(t *testing.T, cfg simsoc.Config) (*platform.Machine, *simsoc.SoC) {
	t.Helper()
	h := upbeat.NewHatchSet()
	cfg.BootEntry = entry
	s := simsoc.New(cfg, h)
	t.Cleanup(s.Wait)
	return &platform.Machine{
		Mapper:         s,
		A4xMapper:      s,
		CPU:            s,
		Raw:            s,
		RootCompatible: peachPi,
		BootEntry:      entry,
		Hatched:        h,
		Budgets:        mp.Budgets{Core: 64, Hatch: 4096},
	}, s
}

func requireMP(t *testing.T) {
	t.Helper()
	if !mp.Enabled {
		t.Skip("uniprocessor build")
	}
}

func TestRegistered(t *testing.T) {
	p4, ok := platform.Lookup("samsung,exynos4")
	require.True(t, ok)
	p5, ok := platform.Lookup("samsung,exynos5")
	require.True(t, ok)
	assert.NotSame(t, p4, p5)

	reg := platform.Registered()
	i4, i5 := -1, -1
	for i, c := range reg {
		switch c {
		case "samsung,exynos4":
			i4 = i
		case "samsung,exynos5":
			i5 = i
		}
	}
	assert.Less(t, i4, i5)
}

func TestDevmaps(t *testing.T) {
	assert.Equal(t, []platform.DevmapEntry{
		{VA: 0xf000_0000, PA: 0x1000_0000, Size: 0x0200_0000},
		{VA: 0xf200_0000, PA: 0x0300_0000, Size: 0x0010_0000},
	}, exynos4.Devmap())
	assert.Equal(t, []platform.DevmapEntry{
		{VA: 0xf000_0000, PA: 0x1000_0000, Size: 0x0400_0000},
		{VA: 0xf400_0000, PA: 0x0380_0000, Size: 0x0010_0000},
		{VA: 0xf410_0000, PA: 0x0202_0000, Size: 0x0008_0000},
	}, exynos5.Devmap())
}

func TestBootstrapReadsL2CTLR(t *testing.T) {
	requireMP(t)
	m, _ := machine(t, simsoc.Config{Cores: 3})
	assert.Equal(t, mp.Topology{Cores: 3}, exynos5.Bootstrap(m))

	m.CPU = nil
	assert.Equal(t, mp.Topology{Cores: 1}, exynos5.Bootstrap(m))
}

func TestBootFourCores(t *testing.T) {
	requireMP(t)
	m, s := machine(t, simsoc.Config{Cores: 4, ConfirmLatency: 5})

	res, err := platform.Boot(m, peachPi)
	require.NoError(t, err)
	assert.Equal(t, "samsung,exynos5", res.Family)
	require.True(t, res.MPRan)
	assert.Equal(t, "exynos5800", res.MP.Variant)
	assert.Equal(t, []int{1, 2, 3}, res.MP.Started.Cores())
	assert.Equal(t, []int{1, 2, 3}, res.MP.Hatched.Cores())
	assert.False(t, res.MP.HatchTimedOut)
	assert.Equal(t, 4, res.Online())

	st := s.Stats()
	assert.Equal(t, []int{1, 2, 3}, st.PowerRequests)
	assert.Empty(t, st.Strays)
	assert.Equal(t, 0, st.StatusReads[0])
	assert.Equal(t, 2, st.Maps)
	assert.Equal(t, 2, st.Unmaps)
	assert.Equal(t, 0, st.Live)
}

func TestBootDeadCore(t *testing.T) {
	requireMP(t)
	m, s := machine(t, simsoc.Config{Cores: 4, Dead: []int{2}})

	res, err := platform.Boot(m, peachPi)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, res.MP.Started.Cores())
	assert.Equal(t, []int{1, 3}, res.MP.Hatched.Cores())
	assert.Equal(t, []mp.PowerState{mp.NotRequested, mp.Confirmed, mp.RequestPending, mp.Confirmed},
		res.MP.States)

	st := s.Stats()
	assert.Equal(t, []int{0, 1, 64, 1}, st.StatusReads)
	assert.Equal(t, 0, st.Live)
}

func TestBootSilentCoreTimesOut(t *testing.T) {
	requireMP(t)
	m, _ := machine(t, simsoc.Config{Cores: 2, Silent: []int{1}})

	res, err := platform.Boot(m, peachPi)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.MP.Started.Cores())
	assert.Empty(t, res.MP.Hatched.Cores())
	assert.True(t, res.MP.HatchTimedOut)
	assert.Equal(t, 4096, res.MP.HatchPolls)
	assert.Equal(t, 1, res.Online())
}

func TestBootAsyncSecondaries(t *testing.T) {
	requireMP(t)
	m, s := machine(t, simsoc.Config{Cores: 4, Async: true})
	m.Budgets = mp.Budgets{}

	res, err := platform.Boot(m, peachPi)
	require.NoError(t, err)
	s.Wait()
	assert.Equal(t, []int{1, 2, 3}, res.MP.Started.Cores())
	assert.Equal(t, upbeat.CoreMask(0xe), m.Hatched.Mask())
}

func TestBootOtherExynos5(t *testing.T) {
	requireMP(t)
	m, s := machine(t, simsoc.Config{Cores: 4})
	compats := []string{"samsung,exynos5420", "samsung,exynos5"}

	res, err := platform.Boot(m, compats)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Topology.Cores)
	assert.False(t, res.MPRan)
	assert.Equal(t, 1, res.Online())
	assert.Equal(t, 0, s.Stats().Maps)
}

func TestBootWithoutRootCompatible(t *testing.T) {
	requireMP(t)
	m, s := machine(t, simsoc.Config{Cores: 4})
	m.RootCompatible = nil

	res, err := platform.Boot(m, peachPi)
	require.NoError(t, err)
	require.True(t, res.MPRan)
	assert.Equal(t, []int{1, 2, 3}, res.MP.Started.Cores())
	assert.Equal(t, 4, res.Online())
	assert.Equal(t, 2, s.Stats().Maps)
}

func TestExynos4HasNoMPStart(t *testing.T) {
	m, s := machine(t, simsoc.Config{Cores: 4})
	rep, ok, err := exynos4.MPStart(m, mp.Topology{Cores: 4})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 4, rep.Cores)
	assert.Equal(t, 0, s.Stats().Maps)
}

func TestBootMapFailure(t *testing.T) {
	requireMP(t)
	m, s := machine(t, simsoc.Config{Cores: 4, FailMap: []uintptr{soc.Exynos5800BootVector.Base}})

	_, err := platform.Boot(m, peachPi)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mp.ErrMap))
	assert.True(t, errors.Is(err, simsoc.ErrRefused))

	st := s.Stats()
	assert.Equal(t, 1, st.Maps)
	assert.Equal(t, 1, st.Unmaps)
	assert.Empty(t, st.PowerRequests)
}

func TestMPStartClampsToCluster(t *testing.T) {
	requireMP(t)
	m, _ := machine(t, simsoc.Config{Cores: 4})
	rep, ok, err := exynos5.MPStart(m, mp.Topology{Cores: 8})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, rep.Cores)
}

func TestExynos5800RunClampsToPMU(t *testing.T) {
	requireMP(t)
	m, s := machine(t, simsoc.Config{Cores: 4})
	b := &mp.Bringup{
		Mapper:    m.Mapper,
		Topology:  mp.Topology{Cores: 5},
		BootEntry: entry,
		Hatched:   m.Hatched,
		Budgets:   m.Budgets,
	}
	var rep mp.Report
	var err error
	require.NotPanics(t, func() { rep, err = Exynos5800.Run(b) })
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Cores)
	assert.Equal(t, []int{1, 2, 3}, rep.Started.Cores())
	assert.Equal(t, []int{1, 2, 3}, s.Stats().PowerRequests)
}

func TestEarlyPutchar(t *testing.T) {
	var out bytes.Buffer
	m, s := machine(t, simsoc.Config{Cores: 1, Console: &out, TxFullReads: 3})

	exynos5.EarlyPutchar(m, 'x')
	assert.Equal(t, "", out.String(), "no console address, nothing written")

	m.ConsAddr = simsoc.UART.Base
	exynos5.EarlyPutchar(m, 'a')
	exynos5.EarlyPutchar(m, 'b')
	assert.Equal(t, 0, s.Stats().VAAccesses)

	m.EarlyDeviceVA = func() bool { return true }
	platform.NewConsole(exynos5, m).Write([]byte("c\n"))

	assert.Equal(t, "abc\r\n", out.String())
	st := s.Stats()
	assert.Equal(t, 5, st.ConsoleBytes)
	assert.Equal(t, 12, st.TxFullPolls)
	assert.Positive(t, st.VAAccesses)
}

func TestReset(t *testing.T) {
	m, s := machine(t, simsoc.Config{Cores: 1})
	require.NoError(t, exynos5.Reset(m))
	st := s.Stats()
	assert.Equal(t, 1, st.Resets)
	assert.Equal(t, 0, st.Live)

	m.Mapper = nil
	assert.True(t, errors.Is(exynos4.Reset(m), platform.ErrNoMapper))
}

type recorder struct {
	devices []string
	delays  []uint
}

func (r *recorder) DeviceRegister(self platform.Device, aux any) {
	r.devices = append(r.devices, self.DeviceName())
}

func (r *recorder) Delay(ms uint) {
	r.delays = append(r.delays, ms)
}

type dev string

func (d dev) DeviceName() string { return string(d) }

func TestPassThroughs(t *testing.T) {
	m, s := machine(t, simsoc.Config{Cores: 1})
	rec := &recorder{}

	exynos5.DeviceRegister(m, dev("sscom0"), nil)
	exynos5.Delay(m, 10)
	m.Devices, m.Timer = rec, rec
	m.DMA = "dmat"
	exynos5.DeviceRegister(m, dev("sscom1"), nil)
	exynos5.Delay(m, 20)
	assert.Equal(t, []string{"sscom1"}, rec.devices)
	assert.Equal(t, []uint{20}, rec.delays)

	var faa platform.AttachArgs
	exynos4.InitAttachArgs(m, &faa)
	assert.Same(t, s, faa.BST)
	assert.Same(t, s, faa.A4xBST)
	assert.Equal(t, "dmat", faa.DMAT)

	assert.Equal(t, uint32(24_000_000), exynos5.UARTFreq())
}
