package log

import (
	"time"
)

// Event represents one bus trace record.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the simulation run (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Bus is the dispatcher name.
	Bus string `cbor:"3,keyasint"`

	// Kind classifies the event.
	Kind Kind `cbor:"4,keyasint"`

	// Device is the device involved, if any.
	Device string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Bind     *BindEvent     `cbor:"10,keyasint,omitempty"`
	Select   *SelectEvent   `cbor:"11,keyasint,omitempty"`
	Transfer *TransferEvent `cbor:"12,keyasint,omitempty"`
	Fault    *FaultEvent    `cbor:"13,keyasint,omitempty"`
}

// Kind classifies a trace event.
type Kind uint8

const (
	// KindBind records devices being attached to a bus.
	KindBind Kind = 0
	// KindSelect records a select-line level change.
	KindSelect Kind = 1
	// KindTransfer records one byte exchange.
	KindTransfer Kind = 2
	// KindFault records a failed operation.
	KindFault Kind = 3
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBind:
		return "BIND"
	case KindSelect:
		return "SELECT"
	case KindTransfer:
		return "TRANSFER"
	case KindFault:
		return "FAULT"
	default:
		return "UNKNOWN"
	}
}

// BindEvent lists the devices attached by one bind call.
type BindEvent struct {
	// Devices in binding order.
	Devices []string `cbor:"1,keyasint"`

	// Labels are the debug labels of the allocated lines.
	Labels []string `cbor:"2,keyasint,omitempty"`
}

// SelectEvent captures a select-line transition.
type SelectEvent struct {
	// Slot is the device index on the bus.
	Slot int `cbor:"1,keyasint"`

	// Asserted is true when the line went low.
	Asserted bool `cbor:"2,keyasint"`

	// Callback is true when the device observed the change.
	Callback bool `cbor:"3,keyasint,omitempty"`
}

// TransferEvent captures one byte exchanged on the shared line.
type TransferEvent struct {
	// RX is the byte received from the master.
	RX uint8 `cbor:"1,keyasint"`

	// TX is the reply emitted on the shared output.
	TX uint8 `cbor:"2,keyasint"`

	// Idle is true when no device was selected.
	Idle bool `cbor:"3,keyasint,omitempty"`

	// Slot is the index of the selected device (-1 when idle).
	Slot int `cbor:"4,keyasint"`
}

// FaultEvent captures a fault detected by a dispatcher.
type FaultEvent struct {
	// Code classifies the fault.
	Code FaultCode `cbor:"1,keyasint"`

	// Message is the error text.
	Message string `cbor:"2,keyasint"`

	// Devices involved in the fault (all asserted devices for a collision).
	Devices []string `cbor:"3,keyasint,omitempty"`

	// RX is the byte being transferred, for transfer faults.
	RX *uint8 `cbor:"4,keyasint,omitempty"`
}

// FaultCode classifies faults.
type FaultCode uint8

const (
	// FaultCapacityExceeded: registry or bus capacity exhausted.
	FaultCapacityExceeded FaultCode = 0
	// FaultInvalidConfiguration: bad device list or missing select line.
	FaultInvalidConfiguration FaultCode = 1
	// FaultBusCollision: more than one select line asserted during a transfer.
	FaultBusCollision FaultCode = 2
	// FaultMissingHandler: selected device has no transaction handler.
	FaultMissingHandler FaultCode = 3
	// FaultOther covers anything else (e.g. downstream line errors).
	FaultOther FaultCode = 4
)

// String returns the fault code name.
func (c FaultCode) String() string {
	switch c {
	case FaultCapacityExceeded:
		return "CAPACITY_EXCEEDED"
	case FaultInvalidConfiguration:
		return "INVALID_CONFIGURATION"
	case FaultBusCollision:
		return "BUS_COLLISION"
	case FaultMissingHandler:
		return "MISSING_HANDLER"
	case FaultOther:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}
