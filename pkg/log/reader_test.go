package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sblog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test trace: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, event)
	}
}

func TestReaderIteratesEventsInOrder(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "s-1", Bus: "BUS", Kind: KindBind},
		{Timestamp: time.Now(), SessionID: "s-1", Bus: "BUS", Kind: KindSelect, Device: "A"},
		{Timestamp: time.Now(), SessionID: "s-1", Bus: "BUS", Kind: KindTransfer, Device: "A"},
	}
	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	for i, want := range []Kind{KindBind, KindSelect, KindTransfer} {
		if read[i].Kind != want {
			t.Errorf("event %d: kind %v, want %v", i, read[i].Kind, want)
		}
	}
}

func TestFilteredReader(t *testing.T) {
	base := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, SessionID: "s-1", Bus: "BUS", Kind: KindSelect, Device: "A"},
		{Timestamp: base.Add(time.Second), SessionID: "s-1", Bus: "BUS", Kind: KindTransfer, Device: "A"},
		{Timestamp: base.Add(2 * time.Second), SessionID: "s-2", Bus: "AUX", Kind: KindTransfer, Device: "B"},
		{Timestamp: base.Add(3 * time.Second), SessionID: "s-2", Bus: "BUS", Kind: KindFault},
	}
	path := createTestLogFile(t, events)

	transfer := KindTransfer
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"session", Filter{SessionID: "s-2"}, 2},
		{"bus", Filter{Bus: "BUS"}, 3},
		{"device", Filter{Device: "A"}, 2},
		{"kind", Filter{Kind: &transfer}, 2},
		{"time range", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"combined", Filter{Bus: "BUS", Kind: &transfer}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			if got := len(readAll(t, reader)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "nope.sblog")); err == nil {
		t.Error("expected error for missing file")
	}
}
