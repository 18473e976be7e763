package dispatcher

import (
	"errors"
	"fmt"
	"strings"
)

// Dispatcher errors.
var (
	ErrCapacityExceeded     = errors.New("capacity exceeded")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrBusCollision         = errors.New("bus collision: multiple select lines asserted")
	ErrMissingHandler       = errors.New("no transaction handler")
	ErrAlreadyBound         = errors.New("dispatcher already bound")
	ErrBindFailed           = errors.New("dispatcher partially bound by a failed bind")
	ErrDuplicateDevice      = errors.New("duplicate device name")
	ErrDuplicateBus         = errors.New("duplicate bus name")
	ErrUnknownSlot          = errors.New("unknown device slot")
)

// BusCollisionError reports that more than one select line was asserted
// when a byte was transferred.
type BusCollisionError struct {
	Bus     string
	Devices []string
}

func (e *BusCollisionError) Error() string {
	return fmt.Sprintf("%s: bus collision: multiple select lines asserted (%s)",
		e.Bus, strings.Join(e.Devices, ", "))
}

// Is matches ErrBusCollision.
func (e *BusCollisionError) Is(target error) bool {
	return target == ErrBusCollision
}

// MissingHandlerError reports that the selected device has no transaction
// handler.
type MissingHandlerError struct {
	Bus    string
	Device string
}

func (e *MissingHandlerError) Error() string {
	return fmt.Sprintf("%s: no transaction handler for device %s", e.Bus, e.Device)
}

// Is matches ErrMissingHandler.
func (e *MissingHandlerError) Is(target error) bool {
	return target == ErrMissingHandler
}
