package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"hatchery/src/hardware/exynos"
	"hatchery/src/tools/sysdec"
)

var outfile = flag.String("o", "", "output filename")
var list = flag.Bool("l", false, "list the devices that have declarations")

func main() {
	flag.Parse()
	if *list {
		for _, d := range exynos.Devices {
			fmt.Printf("%-12s %s\n", d.Name, d.Compatible)
		}
		return
	}
	if flag.NArg() == 0 {
		log.Fatalf("usage: sysdec [-o <outputfile>] <device name or compatible>")
	}
	var device *sysdec.DeviceDef
	for _, d := range exynos.Devices {
		if d.Name == flag.Arg(0) || d.Compatible == flag.Arg(0) {
			device = d
		}
	}
	if device == nil {
		log.Fatalf("no declaration for %q, try -l", flag.Arg(0))
	}
	fp := os.Stdout
	if *outfile != "" {
		var err error
		fp, err = os.Create(*outfile)
		if err != nil {
			log.Fatalf("opening output file: %v", err)
		}
		defer fp.Close()
	}
	if err := sysdec.Describe(device, fp); err != nil {
		log.Fatalf("%v", err)
	}
}
