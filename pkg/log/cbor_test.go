package log

import (
	"bytes"
	"testing"
	"time"
)

func TestTransferEventCBORRoundTrip(t *testing.T) {
	ts := time.Date(2026, 10, 19, 10, 15, 32, 123456789, time.UTC)
	original := Event{
		Timestamp: ts,
		SessionID: "abc12345-def6-7890-abcd-ef1234567890",
		Bus:       "BUS",
		Kind:      KindTransfer,
		Device:    "A",
		Transfer: &TransferEvent{
			RX:   0x42,
			TX:   0x99,
			Slot: 0,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, ts)
	}
	if decoded.SessionID != original.SessionID {
		t.Errorf("SessionID: got %q, want %q", decoded.SessionID, original.SessionID)
	}
	if decoded.Bus != "BUS" || decoded.Device != "A" {
		t.Errorf("Bus/Device: got %q/%q", decoded.Bus, decoded.Device)
	}
	if decoded.Transfer == nil {
		t.Fatal("Transfer payload lost")
	}
	if decoded.Transfer.RX != 0x42 || decoded.Transfer.TX != 0x99 {
		t.Errorf("Transfer: got rx=%#x tx=%#x", decoded.Transfer.RX, decoded.Transfer.TX)
	}
	if decoded.Select != nil || decoded.Fault != nil || decoded.Bind != nil {
		t.Error("unexpected payloads after decode")
	}
}

func TestFaultEventCBORRoundTrip(t *testing.T) {
	rx := uint8(0x10)
	original := Event{
		Timestamp: time.Now(),
		Bus:       "BUS",
		Kind:      KindFault,
		Fault: &FaultEvent{
			Code:    FaultBusCollision,
			Message: "bus collision",
			Devices: []string{"A", "B"},
			RX:      &rx,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Fault == nil {
		t.Fatal("Fault payload lost")
	}
	if decoded.Fault.Code != FaultBusCollision {
		t.Errorf("Code: got %v, want %v", decoded.Fault.Code, FaultBusCollision)
	}
	if len(decoded.Fault.Devices) != 2 || decoded.Fault.Devices[1] != "B" {
		t.Errorf("Devices: got %v", decoded.Fault.Devices)
	}
	if decoded.Fault.RX == nil || *decoded.Fault.RX != 0x10 {
		t.Errorf("RX: got %v", decoded.Fault.RX)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	event := Event{
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Bus:       "BUS",
		Kind:      KindBind,
		Bind:      &BindEvent{Devices: []string{"A", "B"}},
	}

	a, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	b, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("encoding is not deterministic")
	}
}

func TestStreamEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for i := 0; i < 3; i++ {
		if err := enc.Encode(Event{Bus: "BUS", Kind: KindSelect, Select: &SelectEvent{Slot: i}}); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
	}

	dec := NewDecoder(&buf)
	for i := 0; i < 3; i++ {
		var e Event
		if err := dec.Decode(&e); err != nil {
			t.Fatalf("Decode %d failed: %v", i, err)
		}
		if e.Select == nil || e.Select.Slot != i {
			t.Errorf("event %d: got %+v", i, e.Select)
		}
	}
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0x00, 0x13}); err == nil {
		t.Error("expected error decoding garbage")
	}
}

func TestTimestampIsTagged(t *testing.T) {
	event := Event{
		Timestamp: time.Date(2026, 10, 19, 8, 0, 0, 5, time.UTC),
		Bus:       "BUS",
		Kind:      KindTransfer,
		Transfer:  &TransferEvent{RX: 1, TX: 2},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	// Key 1 sorts first and carries tag 0 (RFC 3339 text).
	if len(data) < 3 || data[1] != 0x01 || data[2] != 0xc0 {
		t.Errorf("expected tagged timestamp under key 1, got % x", data[:min(len(data), 8)])
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, event.Timestamp)
	}
}

func TestDecodeEventRejectsUntaggedTime(t *testing.T) {
	// {1: "2026-01-01T00:00:00Z"} without tag 0.
	data := append([]byte{0xa1, 0x01, 0x74}, "2026-01-01T00:00:00Z"...)
	if _, err := DecodeEvent(data); err == nil {
		t.Error("expected error for untagged timestamp")
	}
}

func TestDecodeEventRejectsDuplicateKeys(t *testing.T) {
	// {2: "a", 2: "b"}
	data := []byte{0xa2, 0x02, 0x61, 'a', 0x02, 0x61, 'b'}
	if _, err := DecodeEvent(data); err == nil {
		t.Error("expected error for duplicate map keys")
	}
}
