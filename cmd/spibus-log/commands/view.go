// Package commands implements the spibus-log CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spibus-sim/spibus-go/pkg/log"
)

const timeFormat = "2006-01-02T15:04:05.000000Z"

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session] BUS KIND device
	ts := event.Timestamp.UTC().Format(timeFormat)
	fmt.Fprintf(w, "%s [%s] %s %s", ts, shortenID(event.SessionID), event.Bus, event.Kind.String())
	if event.Device != "" {
		fmt.Fprintf(w, " %s", event.Device)
	}
	fmt.Fprintln(w)

	switch {
	case event.Bind != nil:
		formatBindDetails(w, event.Bind)
	case event.Select != nil:
		formatSelectDetails(w, event.Select)
	case event.Transfer != nil:
		formatTransferDetails(w, event.Transfer)
	case event.Fault != nil:
		formatFaultDetails(w, event.Fault)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a session ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatBindDetails(w io.Writer, b *log.BindEvent) {
	fmt.Fprintf(w, "  Devices: %s\n", strings.Join(b.Devices, ", "))
	if len(b.Labels) > 0 {
		fmt.Fprintf(w, "  Lines: %s\n", strings.Join(b.Labels, ", "))
	}
}

func formatSelectDetails(w io.Writer, s *log.SelectEvent) {
	level := "DEASSERTED"
	if s.Asserted {
		level = "ASSERTED"
	}
	fmt.Fprintf(w, "  Slot: %d  Level: %s", s.Slot, level)
	if s.Callback {
		fmt.Fprint(w, "  (observed)")
	}
	fmt.Fprintln(w)
}

func formatTransferDetails(w io.Writer, t *log.TransferEvent) {
	fmt.Fprintf(w, "  RX: 0x%02X  TX: 0x%02X", t.RX, t.TX)
	if t.Idle {
		fmt.Fprint(w, "  (idle)")
	} else {
		fmt.Fprintf(w, "  Slot: %d", t.Slot)
	}
	fmt.Fprintln(w)
}

func formatFaultDetails(w io.Writer, f *log.FaultEvent) {
	fmt.Fprintf(w, "  Code: %s\n", f.Code.String())
	fmt.Fprintf(w, "  Message: %s\n", f.Message)
	if len(f.Devices) > 0 {
		fmt.Fprintf(w, "  Devices: %s\n", strings.Join(f.Devices, ", "))
	}
	if f.RX != nil {
		fmt.Fprintf(w, "  RX: 0x%02X\n", *f.RX)
	}
}

// ParseKindFlag parses an event kind from a command-line flag (case-insensitive).
func ParseKindFlag(s string) (log.Kind, error) {
	switch strings.ToLower(s) {
	case "bind":
		return log.KindBind, nil
	case "select":
		return log.KindSelect, nil
	case "transfer":
		return log.KindTransfer, nil
	case "fault":
		return log.KindFault, nil
	default:
		return 0, fmt.Errorf("invalid kind: %s (must be bind, select, transfer, or fault)", s)
	}
}

// RunView prints every event matching filter.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
