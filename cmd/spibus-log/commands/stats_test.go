package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spibus-sim/spibus-go/pkg/log"
)

func TestStatsCountsByKind(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 5",
		"BIND:",
		"SELECT:",
		"TRANSFER:    2",
		"FAULT:",
		"Sessions:   1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestStatsPerBus(t *testing.T) {
	events := sampleEvents()
	ts := events[len(events)-1].Timestamp.Add(time.Millisecond)
	events = append(events, log.Event{
		Timestamp: ts, SessionID: "abc12345-6789", Bus: "SPI1", Kind: log.KindTransfer, Device: "PAD",
		Transfer: &log.TransferEvent{RX: 0x01, TX: 0x02, Slot: 0},
	})
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Buses: 2") {
		t.Errorf("expected 2 buses, got:\n%s", output)
	}
	if !strings.Contains(output, "[SPI0] 5 events, 2 transfers (1 idle)") {
		t.Errorf("expected SPI0 summary, got:\n%s", output)
	}
	if !strings.Contains(output, "FLASH: 1 transfers") {
		t.Errorf("expected FLASH transfer count, got:\n%s", output)
	}
	if strings.Index(output, "[SPI0]") > strings.Index(output, "[SPI1]") {
		t.Errorf("expected buses in first-seen order, got:\n%s", output)
	}
	if !strings.Contains(output, "BUS_COLLISION:") {
		t.Errorf("expected fault breakdown, got:\n%s", output)
	}
}

func TestStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("expected zero events, got:\n%s", buf.String())
	}
}
