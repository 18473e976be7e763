package dispatcher

import "github.com/spibus-sim/spibus-go/pkg/signal"

// SelectFunc is called on every select-line transition of a device, before
// the new level is recorded.
type SelectFunc func(handle any, level Level)

// TransactionFunc handles one byte while the device is the only one selected
// and returns the reply byte.
type TransactionFunc func(handle any, rx byte) byte

// SelectObserver is implemented by devices that want select-line changes.
type SelectObserver interface {
	SelectChanged(handle any, level Level)
}

// Transactor is implemented by devices that answer bus transfers.
type Transactor interface {
	Transaction(handle any, rx byte) byte
}

// DeviceSpec describes one device to bind to a bus.
type DeviceSpec struct {
	// Name identifies the device on its bus. Names longer than
	// Limits.MaxDeviceName are truncated.
	Name string

	// Handle is passed back to the callbacks unchanged.
	Handle any

	// Select is the device's select line. Required.
	Select *signal.Signal

	// Device may implement SelectObserver and/or Transactor.
	Device any

	// OnSelect and OnTransaction override the capabilities of Device.
	OnSelect      SelectFunc
	OnTransaction TransactionFunc
}

// selectFunc returns the effective select callback, or nil.
func (s DeviceSpec) selectFunc() SelectFunc {
	if s.OnSelect != nil {
		return s.OnSelect
	}
	if obs, ok := s.Device.(SelectObserver); ok {
		return obs.SelectChanged
	}
	return nil
}

// transactionFunc returns the effective transaction callback, or nil.
func (s DeviceSpec) transactionFunc() TransactionFunc {
	if s.OnTransaction != nil {
		return s.OnTransaction
	}
	if tr, ok := s.Device.(Transactor); ok {
		return tr.Transaction
	}
	return nil
}

// DeviceSlot is the binding of one device on a bus.
type DeviceSlot struct {
	Name   string
	Label  string
	Handle any
	Level  Level

	source        *signal.Signal
	onSelect      SelectFunc
	onTransaction TransactionFunc
}

// HasSelectCallback reports whether the device observes select changes.
func (s *DeviceSlot) HasSelectCallback() bool {
	return s.onSelect != nil
}

// HasTransactionCallback reports whether the device answers transfers.
func (s *DeviceSlot) HasTransactionCallback() bool {
	return s.onTransaction != nil
}
