// Package bringup runs the early boot path of a board on a Linux host,
// either against the simulated SoC or against the real registers through
// /dev/mem.  A board is described by a small YAML file.
package bringup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"hatchery/src/lib/trust"
	"hatchery/src/lib/upbeat"
)

var ErrBadBoard = errors.New("bringup: bad board description")

// Board is one YAML board file.  The simulation fields are ignored when
// running on real hardware.
type Board struct {
	Name       string   `yaml:"name"`
	Compatible []string `yaml:"compatible"`
	Cores      int      `yaml:"cores"` // what the L2 controller reports
	BootEntry  uint32   `yaml:"boot_entry"`
	ConsAddr   uint64   `yaml:"console_addr"`
	EarlyVA    bool     `yaml:"early_va"`
	Console    string   `yaml:"console"` // tty device, empty for stdout
	LogLevel   string   `yaml:"log_level"`
	Budgets    struct {
		Core  uint32 `yaml:"core"`
		Hatch uint32 `yaml:"hatch"`
	} `yaml:"budgets"`

	Sim struct {
		Dead           []int         `yaml:"dead"`
		Silent         []int         `yaml:"silent"`
		ConfirmLatency int           `yaml:"confirm_latency"`
		Async          bool          `yaml:"async"`
		HatchLatency   time.Duration `yaml:"hatch_latency"`
		TxFullReads    int           `yaml:"tx_full_reads"`
		FailMap        []uint64      `yaml:"fail_map"`
	} `yaml:"sim"`
}

// LoadBoard reads and checks the board file at pn.
func LoadBoard(pn string) (*Board, error) {
	file, err := os.Open(pn)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	b, err := ParseBoard(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pn, err)
	}
	return b, nil
}

func ParseBoard(r io.Reader) (*Board, error) {
	board := &Board{}
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(board); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadBoard, err)
	}
	if err := board.check(); err != nil {
		return nil, err
	}
	return board, nil
}

func (b *Board) check() error {
	if len(b.Compatible) == 0 {
		return fmt.Errorf("%w: no compatible strings", ErrBadBoard)
	}
	if b.LogLevel != "" {
		if _, err := trust.ParseLevel(b.LogLevel); err != nil {
			return fmt.Errorf("%w: %w", ErrBadBoard, err)
		}
	}
	if b.Cores < 0 || b.Cores > upbeat.MaxCores {
		return fmt.Errorf("%w: %d cores", ErrBadBoard, b.Cores)
	}
	for _, n := range append(append([]int{}, b.Sim.Dead...), b.Sim.Silent...) {
		if n <= 0 {
			return fmt.Errorf("%w: core %d cannot be dead or silent", ErrBadBoard, n)
		}
	}
	return nil
}
