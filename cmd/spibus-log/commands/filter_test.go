package commands

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spibus-sim/spibus-go/pkg/log"
)

func readEvents(t *testing.T, path string) []log.Event {
	t.Helper()
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	var events []log.Event
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("failed to read event: %v", err)
		}
		events = append(events, event)
	}
	return events
}

func TestFilterByDevice(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	outPath := filepath.Join(t.TempDir(), "filtered.sblog")

	var buf bytes.Buffer
	if err := RunFilter(path, FilterOptions{Output: outPath, Device: "FLASH"}, &buf); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	events := readEvents(t, outPath)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, e := range events {
		if e.Device != "FLASH" {
			t.Errorf("expected FLASH, got %s", e.Device)
		}
	}
	if !strings.Contains(buf.String(), "Filtered 2 events") {
		t.Errorf("unexpected summary: %s", buf.String())
	}
}

func TestFilterByKindAndBus(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	outPath := filepath.Join(t.TempDir(), "filtered.sblog")

	opts := FilterOptions{Output: outPath, Bus: "SPI0", Kind: "fault"}
	if err := RunFilter(path, opts, io.Discard); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	events := readEvents(t, outPath)
	if len(events) != 1 || events[0].Fault == nil {
		t.Fatalf("expected one fault event, got %+v", events)
	}
	if events[0].Fault.Code != log.FaultBusCollision {
		t.Errorf("expected collision, got %s", events[0].Fault.Code)
	}
}

func TestFilterNoMatches(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	outPath := filepath.Join(t.TempDir(), "filtered.sblog")

	if err := RunFilter(path, FilterOptions{Output: outPath, SessionID: "other"}, io.Discard); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if events := readEvents(t, outPath); len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestFilterOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
	}{
		{"bad kind", FilterOptions{Kind: "reset"}},
		{"bad start", FilterOptions{TimeStart: "yesterday"}},
		{"bad end", FilterOptions{TimeEnd: "2026-13-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.opts.Filter(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFilterRequiresOutput(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	if err := RunFilter(path, FilterOptions{}, io.Discard); err == nil {
		t.Error("expected error without output path")
	}
}
