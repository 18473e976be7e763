package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spibus-sim/spibus-go/pkg/log"
)

// createTestLogFile writes events to a temporary trace file and returns its path.
func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sblog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func u8(v uint8) *uint8 { return &v }

// sampleEvents is a short session on one bus: bind, select, two transfers,
// and a collision.
func sampleEvents() []log.Event {
	base := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	at := func(ms int) time.Time { return base.Add(time.Duration(ms) * time.Millisecond) }

	return []log.Event{
		{
			Timestamp: at(0), SessionID: "abc12345-6789", Bus: "SPI0", Kind: log.KindBind,
			Bind: &log.BindEvent{Devices: []string{"FLASH", "ADC"}, Labels: []string{"SPI0_IN", "SPI0_OUT"}},
		},
		{
			Timestamp: at(1), SessionID: "abc12345-6789", Bus: "SPI0", Kind: log.KindSelect, Device: "FLASH",
			Select: &log.SelectEvent{Slot: 0, Asserted: true, Callback: true},
		},
		{
			Timestamp: at(2), SessionID: "abc12345-6789", Bus: "SPI0", Kind: log.KindTransfer, Device: "FLASH",
			Transfer: &log.TransferEvent{RX: 0x03, TX: 0x00, Slot: 0},
		},
		{
			Timestamp: at(3), SessionID: "abc12345-6789", Bus: "SPI0", Kind: log.KindTransfer,
			Transfer: &log.TransferEvent{RX: 0x10, TX: 0xFF, Idle: true, Slot: -1},
		},
		{
			Timestamp: at(4), SessionID: "abc12345-6789", Bus: "SPI0", Kind: log.KindFault,
			Fault: &log.FaultEvent{
				Code:    log.FaultBusCollision,
				Message: "SPI0: bus collision: FLASH, ADC",
				Devices: []string{"FLASH", "ADC"},
				RX:      u8(0x42),
			},
		},
	}
}
