package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-tty"

	"hatchery/src/hardware/bus"
	"hatchery/src/lib/trust"
	"hatchery/src/platform"
	"hatchery/src/tools/bringup"
)

var memFlag = flag.String("mem", "sim", "registers to use: sim or devmem")
var devmemFlag = flag.String("devmem", "/dev/mem", "memory device for -mem devmem")
var ttyFlag = flag.String("p", "", "tty to send the board console to (overrides the board file)")
var levelFlag = flag.String("v", "", "log level: none, error, warn, info or debug (overrides the board file)")
var resetFlag = flag.Bool("reset", false, "reset the board after bringing it up")
var listFlag = flag.Bool("l", false, "list the registered platforms")

func main() {
	flag.Parse()
	if *listFlag {
		for _, c := range platform.Registered() {
			log.Printf("%s", c)
		}
		return
	}
	if flag.NArg() != 1 {
		log.Fatalf("usage: bringup [-mem sim|devmem] [-p tty] [-v level] [-reset] <board.yaml>")
	}
	board, err := bringup.LoadBoard(flag.Arg(0))
	if err != nil {
		log.Fatalf("%v", err)
	}
	trust.SetHalt(os.Exit)
	level := board.LogLevel
	if *levelFlag != "" {
		level = *levelFlag
	}
	if level != "" {
		mask, err := trust.ParseLevel(level)
		if err != nil {
			log.Fatalf("%v", err)
		}
		trust.SetLevel(mask)
	}
	if err := run(board); err != nil {
		log.Fatalf("bring-up failed: %v", err)
	}
}

// run does the bring-up.  It returns instead of exiting so the tty is
// restored and closed on every path.
func run(board *bringup.Board) error {
	console := io.Writer(os.Stdout)
	dev := board.Console
	if *ttyFlag != "" {
		dev = *ttyFlag
	}
	if dev != "" {
		t, err := tty.OpenDevice(dev)
		if err != nil {
			return fmt.Errorf("unable to open %s: %w", dev, err)
		}
		defer t.Close()
		restore := t.MustRaw()
		defer restore()
		console = t.Output()
	}

	var h *bringup.Harness
	switch *memFlag {
	case "sim":
		h = bringup.NewSim(board, console)
	case "devmem":
		mem, err := bus.OpenDevMem(*devmemFlag)
		if err != nil {
			return err
		}
		defer mem.Close()
		h = bringup.NewHardware(board, mem)
	default:
		return fmt.Errorf("unknown -mem %q, expected sim or devmem", *memFlag)
	}

	res, err := h.Run()
	if err != nil {
		return err
	}
	if h.SoC == nil {
		bringup.Report(os.Stdout, res, nil)
	} else {
		st := h.SoC.Stats()
		bringup.Report(os.Stdout, res, &st)
	}
	if *resetFlag {
		if err := h.Reset(res); err != nil {
			log.Printf("reset: %v", err)
		}
	}
	return nil
}
