// Package interactive provides the interactive command-line interface
// for spibus-sim.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/spibus-sim/spibus-go/pkg/dispatcher"
	"github.com/spibus-sim/spibus-go/pkg/examples"
	"github.com/spibus-sim/spibus-go/pkg/sim"
)

// Shell drives a harness from typed commands.
type Shell struct {
	h   *sim.Harness
	rl  *readline.Instance
	out io.Writer
}

// New creates a shell reading from the terminal.
func New(h *sim.Harness) (*Shell, error) {
	s := &Shell{h: h}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "spibus> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    s.completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s.rl = rl
	s.out = rl.Stdout()
	return s, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

func (s *Shell) completer() *readline.PrefixCompleter {
	buses := readline.PcItemDynamic(func(string) []string { return s.h.Buses() })
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("buses"),
		readline.PcItem("status", buses),
		readline.PcItem("select", buses),
		readline.PcItem("deselect", buses),
		readline.PcItem("xfer", buses),
		readline.PcItem("peek", buses),
		readline.PcItem("poke", buses),
		readline.PcItem("quit"),
	)
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if s.Exec(line) {
			cancel()
			return
		}
	}
}

// Exec runs one command line and reports whether the shell should exit.
func (s *Shell) Exec(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "buses", "b":
		s.cmdBuses()
	case "status", "st":
		s.cmdStatus(args)
	case "select", "s":
		s.cmdLevel(args, true)
	case "deselect", "u":
		s.cmdLevel(args, false)
	case "xfer", "x":
		s.cmdXfer(args)
	case "peek":
		s.cmdPeek(args)
	case "poke":
		s.cmdPoke(args)
	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
SPI Bus Commands:
  Bus:
    buses                      - List buses and their devices
    status [bus]               - Show select levels and counters
    select <bus> <dev>         - Assert a device's select line
    deselect <bus> <dev>       - Release a device's select line
    xfer <bus> <byte>...       - Transfer hex bytes, e.g. xfer SPI0 03 00 ff

  Register files:
    peek <bus> <dev> <addr>    - Read a register without a bus cycle
    poke <bus> <dev> <addr> <v>- Write a register without a bus cycle

  General:
    help                       - Show this help
    quit                       - Exit`)
}

func (s *Shell) cmdBuses() {
	for _, name := range s.h.Buses() {
		d, _ := s.h.Dispatcher(name)
		fmt.Fprintf(s.out, "%s (%d/%d devices)\n", name, d.Len(), d.Capacity())
		for _, slot := range d.Slots() {
			dev, _ := s.h.Device(name, slot.Name)
			fmt.Fprintf(s.out, "  %-14s %-16s %s\n", slot.Name, slot.Label, kindOf(dev))
		}
	}
}

func kindOf(dev any) string {
	switch dev.(type) {
	case *examples.Echo:
		return "echo"
	case *examples.RegisterFile:
		return "register-file"
	case *examples.Counter:
		return "counter"
	case *examples.Silent:
		return "silent"
	default:
		return "?"
	}
}

func (s *Shell) cmdStatus(args []string) {
	names := s.h.Buses()
	if len(args) > 0 {
		names = args[:1]
	}

	for _, name := range names {
		d, ok := s.h.Dispatcher(name)
		if !ok {
			fmt.Fprintf(s.out, "Unknown bus: %s\n", name)
			return
		}
		st := d.Stats()
		fmt.Fprintf(s.out, "%s: %d transfers (%d idle), %d select changes, %d faults\n",
			name, st.Transfers, st.IdleTransfers, st.SelectChanges, st.Faults)

		for _, slot := range d.Slots() {
			fmt.Fprintf(s.out, "  %-14s %s\n", slot.Name, slot.Level)
		}

		switch idx, err := d.Selected(); {
		case err != nil:
			fmt.Fprintf(s.out, "  selected: %v\n", err)
		case idx < 0:
			fmt.Fprintln(s.out, "  selected: none")
		default:
			fmt.Fprintf(s.out, "  selected: %s\n", d.Slots()[idx].Name)
		}
	}
}

func (s *Shell) cmdLevel(args []string, assert bool) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: select|deselect <bus> <device>")
		return
	}

	var err error
	level := dispatcher.Asserted
	if assert {
		err = s.h.Select(args[0], args[1])
	} else {
		level = dispatcher.Deasserted
		err = s.h.Deselect(args[0], args[1])
	}
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s/%s %s\n", args[0], args[1], level)
}

func (s *Shell) cmdXfer(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: xfer <bus> <byte>...")
		return
	}

	data, err := ParseBytes(args[1:])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	replies, err := s.h.Transfer(args[0], data)
	fmt.Fprintf(s.out, "TX % X\nRX % X\n", data[:len(replies)], replies)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

func (s *Shell) registerFile(bus, device string) (*examples.RegisterFile, bool) {
	dev, ok := s.h.Device(bus, device)
	if !ok {
		fmt.Fprintf(s.out, "Unknown device: %s/%s\n", bus, device)
		return nil, false
	}
	rf, ok := dev.(*examples.RegisterFile)
	if !ok {
		fmt.Fprintf(s.out, "%s/%s is not a register file\n", bus, device)
		return nil, false
	}
	return rf, true
}

func (s *Shell) cmdPeek(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(s.out, "Usage: peek <bus> <device> <addr>")
		return
	}
	rf, ok := s.registerFile(args[0], args[1])
	if !ok {
		return
	}
	addr, err := parseByte(args[2])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "[%02X] = %02X\n", addr, rf.Peek(int(addr)))
}

func (s *Shell) cmdPoke(args []string) {
	if len(args) != 4 {
		fmt.Fprintln(s.out, "Usage: poke <bus> <device> <addr> <value>")
		return
	}
	rf, ok := s.registerFile(args[0], args[1])
	if !ok {
		return
	}
	vals, err := ParseBytes(args[2:])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	rf.Poke(int(vals[0]), vals[1])
	fmt.Fprintf(s.out, "[%02X] = %02X\n", vals[0], vals[1])
}

// ParseBytes parses hex byte arguments. An optional 0x prefix is accepted.
func ParseBytes(args []string) ([]byte, error) {
	out := make([]byte, 0, len(args))
	for _, a := range args {
		b, err := parseByte(a)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func parseByte(s string) (byte, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte %q", s)
	}
	return byte(v), nil
}
