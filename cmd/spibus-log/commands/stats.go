package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spibus-sim/spibus-go/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents  int
	EventsByKind map[log.Kind]int
	Faults       map[log.FaultCode]int
	Buses        map[string]*BusStats
	Sessions     map[string]struct{}
	TimeRange    struct {
		Start time.Time
		End   time.Time
	}
}

// BusStats holds statistics for a single bus.
type BusStats struct {
	FirstSeen     time.Time
	Events        int
	Transfers     int
	IdleTransfers int
	Faults        int
	Devices       map[string]int
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByKind: make(map[log.Kind]int),
		Faults:       make(map[log.FaultCode]int),
		Buses:        make(map[string]*BusStats),
		Sessions:     make(map[string]struct{}),
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByKind[event.Kind]++
	if event.SessionID != "" {
		s.Sessions[event.SessionID] = struct{}{}
	}

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	bus, ok := s.Buses[event.Bus]
	if !ok {
		bus = &BusStats{FirstSeen: event.Timestamp, Devices: make(map[string]int)}
		s.Buses[event.Bus] = bus
	}
	bus.Events++

	switch {
	case event.Transfer != nil:
		bus.Transfers++
		if event.Transfer.Idle {
			bus.IdleTransfers++
		} else {
			bus.Devices[event.Device]++
		}
	case event.Fault != nil:
		bus.Faults++
		s.Faults[event.Fault.Code]++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== SPI Bus Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintf(w, "Sessions:   %d\n", len(stats.Sessions))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Kind:")
	for _, kind := range []log.Kind{log.KindBind, log.KindSelect, log.KindTransfer, log.KindFault} {
		if count := stats.EventsByKind[kind]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", kind.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Buses: %d\n", len(stats.Buses))
	names := make([]string, 0, len(stats.Buses))
	for name := range stats.Buses {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return stats.Buses[names[i]].FirstSeen.Before(stats.Buses[names[j]].FirstSeen)
	})
	for _, name := range names {
		bs := stats.Buses[name]
		fmt.Fprintf(w, "  [%s] %d events, %d transfers (%d idle)\n", name, bs.Events, bs.Transfers, bs.IdleTransfers)

		devices := make([]string, 0, len(bs.Devices))
		for dev := range bs.Devices {
			devices = append(devices, dev)
		}
		sort.Strings(devices)
		for _, dev := range devices {
			fmt.Fprintf(w, "           %s: %d transfers\n", dev, bs.Devices[dev])
		}
		if bs.Faults > 0 {
			fmt.Fprintf(w, "           Faults: %d\n", bs.Faults)
		}
	}

	if len(stats.Faults) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Faults by Code:")
		for _, code := range []log.FaultCode{log.FaultCapacityExceeded, log.FaultInvalidConfiguration, log.FaultBusCollision, log.FaultMissingHandler, log.FaultOther} {
			if count := stats.Faults[code]; count > 0 {
				fmt.Fprintf(w, "  %-22s %d\n", code.String()+":", count)
			}
		}
	}
}
