package bringup

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"hatchery/src/boot/mp"
	"hatchery/src/hardware/simsoc"
	"hatchery/src/platform"
)

// Report prints what a boot did.  stats may be nil.
func Report(w io.Writer, res *platform.BootResult, stats *simsoc.Stats) {
	var mapped uint64
	devmap := res.Platform.Devmap()
	for _, e := range devmap {
		mapped += uint64(e.Size)
	}
	fmt.Fprintf(w, "platform  %s (%d devmap entries, %s)\n", res.Family, len(devmap),
		humanize.IBytes(mapped))
	fmt.Fprintf(w, "cores     %d\n", res.Topology.Cores)
	if !res.MPRan {
		fmt.Fprintf(w, "mp        not started\n")
	} else {
		rep := res.MP
		fmt.Fprintf(w, "variant   %s\n", rep.Variant)
		for n := 1; n < len(rep.States); n++ {
			polls := humanize.Comma(int64(rep.CorePolls[n]))
			switch rep.States[n] {
			case mp.Confirmed:
				fmt.Fprintf(w, "cpu%-6d confirmed after %s polls\n", n, polls)
			default:
				fmt.Fprintf(w, "cpu%-6d %s, gave up after %s polls\n", n, rep.States[n], polls)
			}
		}
		fmt.Fprintf(w, "hatched   %v of %v after %s polls", rep.Hatched, rep.Started,
			humanize.Comma(int64(rep.HatchPolls)))
		if rep.HatchTimedOut {
			fmt.Fprintf(w, " (timed out)")
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "online    %d\n", res.Online())
	if stats == nil {
		return
	}
	fmt.Fprintf(w, "sim       %d maps, %d unmaps, %d barriers, %s console bytes\n",
		stats.Maps, stats.Unmaps, stats.Barriers, humanize.Comma(int64(stats.ConsoleBytes)))
	if len(stats.Strays) > 0 {
		fmt.Fprintf(w, "strays    %v\n", stats.Strays)
	}
}
