package dispatcher

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spibus-sim/spibus-go/pkg/log"
	"github.com/spibus-sim/spibus-go/pkg/signal"
)

// Stats counts the notifications a dispatcher has handled.
type Stats struct {
	Transfers     uint64
	IdleTransfers uint64
	SelectChanges uint64
	Faults        uint64
}

// Dispatcher arbitrates one shared bus between its bound devices.
type Dispatcher struct {
	name   string
	core   *signal.Pool
	limits Limits

	slots []*DeviceSlot
	names map[string]int

	// Lines allocated from the core at bind time.
	in     *signal.Signal
	out    *signal.Signal
	bound  bool
	failed bool

	stats Stats

	// Bus trace (optional)
	logger    log.Logger
	sessionID string

	slog *slog.Logger
}

func newDispatcher(core *signal.Pool, name string, limits Limits) *Dispatcher {
	return &Dispatcher{
		name:   name,
		core:   core,
		limits: limits,
		names:  make(map[string]int),
		slog:   slog.Default(),
	}
}

// Name returns the bus name.
func (d *Dispatcher) Name() string {
	return d.name
}

// Core returns the signal pool the dispatcher allocates its lines from.
func (d *Dispatcher) Core() *signal.Pool {
	return d.core
}

// SetLogger sets the bus trace logger. Events carry sessionID for correlation.
func (d *Dispatcher) SetLogger(logger log.Logger, sessionID string) {
	d.logger = logger
	d.sessionID = sessionID
}

// SetSlogger sets the operational logger. Nil restores slog.Default().
func (d *Dispatcher) SetSlogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	d.slog = logger
}

// Bound reports whether Bind completed successfully.
func (d *Dispatcher) Bound() bool {
	return d.bound
}

// Failed reports whether a capacity failure left slots behind on an unwired
// dispatcher.
func (d *Dispatcher) Failed() bool {
	return d.failed
}

// Len returns the number of bound device slots.
func (d *Dispatcher) Len() int {
	return len(d.slots)
}

// Capacity returns the maximum number of device slots.
func (d *Dispatcher) Capacity() int {
	return d.limits.MaxDevices
}

// Stats returns a snapshot of the dispatcher counters.
func (d *Dispatcher) Stats() Stats {
	return d.stats
}

// Input returns the <bus>_IN line, or nil before Bind.
func (d *Dispatcher) Input() *signal.Signal {
	return d.in
}

// Output returns the <bus>_OUT line, or nil before Bind.
func (d *Dispatcher) Output() *signal.Signal {
	return d.out
}

// Slots returns copies of the device slots in binding order.
func (d *Dispatcher) Slots() []DeviceSlot {
	out := make([]DeviceSlot, len(d.slots))
	for i, s := range d.slots {
		out[i] = *s
	}
	return out
}

// Slot returns a copy of the named slot and its index.
func (d *Dispatcher) Slot(name string) (DeviceSlot, int, bool) {
	idx, ok := d.names[name]
	if !ok {
		return DeviceSlot{}, -1, false
	}
	return *d.slots[idx], idx, true
}

// Selected returns the index of the only asserted slot, -1 when no slot is
// asserted, or a BusCollisionError when several are.
func (d *Dispatcher) Selected() (int, error) {
	active, count := d.scan()
	if count > 1 {
		return -1, d.collision()
	}
	return active, nil
}

// Bind appends one slot per spec, in order, and wires the bus:
// in feeds <bus>_IN, <bus>_OUT feeds out, and every device select line feeds
// its own <bus>_CE_<device> line.
//
// Every spec is checked for a name, a select line and a unique name before
// any slot is appended, so a list rejected for those reasons leaves the
// dispatcher untouched and Bind may be retried. Exceeding MaxDevices keeps the
// slots appended before the failing entry; such a dispatcher is never wired
// and later Bind calls fail with ErrBindFailed.
func (d *Dispatcher) Bind(in, out *signal.Signal, specs []DeviceSpec) error {
	if d.bound {
		return d.bindFault(fmt.Errorf("%s: %w", d.name, ErrAlreadyBound))
	}
	if d.failed {
		return d.bindFault(fmt.Errorf("%s: %w: %d slots left by an earlier bind", d.name, ErrBindFailed, len(d.slots)))
	}
	if len(specs) == 0 {
		return d.bindFault(fmt.Errorf("%s: %w: empty device list", d.name, ErrInvalidConfiguration))
	}
	if in == nil || out == nil {
		return d.bindFault(fmt.Errorf("%s: %w: shared input and output lines are required", d.name, ErrInvalidConfiguration))
	}
	if err := d.checkSpecs(specs); err != nil {
		return d.bindFault(err)
	}

	for _, spec := range specs {
		if err := d.appendSlot(spec); err != nil {
			d.failed = true
			return d.bindFault(err)
		}
	}

	d.wire(in, out)
	d.bound = true

	devices := make([]string, len(d.slots))
	labels := []string{d.in.Label(), d.out.Label()}
	for i, s := range d.slots {
		devices[i] = s.Name
		labels = append(labels, s.Label)
	}
	d.trace(log.Event{
		Kind: log.KindBind,
		Bind: &log.BindEvent{Devices: devices, Labels: labels},
	})
	d.slog.Info(fmt.Sprintf("bus %s: %d devices successfully connected", d.name, len(d.slots)),
		"bus", d.name, "devices", len(d.slots))

	return nil
}

// checkSpecs validates names and select lines of the whole list.
func (d *Dispatcher) checkSpecs(specs []DeviceSpec) error {
	seen := make(map[string]struct{}, len(specs))
	for i, spec := range specs {
		name := truncate(spec.Name, d.limits.MaxDeviceName)
		if name == "" {
			return fmt.Errorf("%s: %w: device %d has no name", d.name, ErrInvalidConfiguration, i)
		}
		if spec.Select == nil {
			return fmt.Errorf("%s: %w: no select line for device %s", d.name, ErrInvalidConfiguration, name)
		}
		if _, exists := seen[name]; exists {
			return fmt.Errorf("%s: %w: %s", d.name, ErrDuplicateDevice, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func (d *Dispatcher) appendSlot(spec DeviceSpec) error {
	if len(d.slots) >= d.limits.MaxDevices {
		return fmt.Errorf("%s: %w: at most %d devices per bus", d.name, ErrCapacityExceeded, d.limits.MaxDevices)
	}

	name := truncate(spec.Name, d.limits.MaxDeviceName)
	d.names[name] = len(d.slots)
	d.slots = append(d.slots, &DeviceSlot{
		Name:          name,
		Label:         d.name + "_CE_" + name,
		Handle:        spec.Handle,
		Level:         Deasserted,
		source:        spec.Select,
		onSelect:      spec.selectFunc(),
		onTransaction: spec.transactionFunc(),
	})
	return nil
}

func (d *Dispatcher) wire(in, out *signal.Signal) {
	d.in = d.core.Alloc(d.name + "_IN")
	d.out = d.core.Alloc(d.name + "_OUT")

	in.Connect(d.in)
	d.out.Connect(out)
	d.in.OnNotify(func(_ *signal.Signal, v uint32) error {
		_, err := d.OnByteTransfer(byte(v & 0xFF))
		return err
	})

	for i, slot := range d.slots {
		i := i
		ce := d.core.Alloc(slot.Label)
		slot.source.Connect(ce)
		ce.OnNotify(func(_ *signal.Signal, v uint32) error {
			return d.OnSelectChange(i, LevelFromWire(v))
		})
	}
}

// OnSelectChange records a new level for the select line of a slot. The
// device's select callback, if any, runs before the level is stored.
// No collision check happens here.
func (d *Dispatcher) OnSelectChange(slot int, level Level) error {
	if slot < 0 || slot >= len(d.slots) {
		return fmt.Errorf("%s: %w: %d", d.name, ErrUnknownSlot, slot)
	}

	s := d.slots[slot]
	if s.onSelect != nil {
		s.onSelect(s.Handle, level)
	}
	s.Level = level
	d.stats.SelectChanges++

	d.trace(log.Event{
		Kind:   log.KindSelect,
		Device: s.Name,
		Select: &log.SelectEvent{
			Slot:     slot,
			Asserted: level == Asserted,
			Callback: s.onSelect != nil,
		},
	})
	return nil
}

// OnByteTransfer routes one byte from the shared input line and returns the
// reply, which is also emitted on <bus>_OUT once the bus is bound.
func (d *Dispatcher) OnByteTransfer(rx byte) (byte, error) {
	active, count := d.scan()
	if count > 1 {
		err := d.collision()
		d.transferFault(log.FaultBusCollision, err, rx, err.Devices...)
		return 0, err
	}

	tx := IdleByte
	device := ""
	if count == 1 {
		s := d.slots[active]
		if s.onTransaction == nil {
			err := &MissingHandlerError{Bus: d.name, Device: s.Name}
			d.transferFault(log.FaultMissingHandler, err, rx, s.Name)
			return 0, err
		}
		tx = s.onTransaction(s.Handle, rx)
		device = s.Name
	} else {
		d.stats.IdleTransfers++
	}
	d.stats.Transfers++

	d.trace(log.Event{
		Kind:   log.KindTransfer,
		Device: device,
		Transfer: &log.TransferEvent{
			RX:   rx,
			TX:   tx,
			Idle: count == 0,
			Slot: active,
		},
	})

	if d.out != nil {
		if err := d.out.Raise(uint32(tx)); err != nil {
			err = fmt.Errorf("%s: emit reply: %w", d.name, err)
			d.transferFault(log.FaultOther, err, rx, device)
			return tx, err
		}
	}
	return tx, nil
}

// scan returns the index of the last asserted slot (-1 if none) and the
// number of asserted slots.
func (d *Dispatcher) scan() (int, int) {
	active, count := -1, 0
	for i, s := range d.slots {
		if s.Level == Asserted {
			active = i
			count++
		}
	}
	return active, count
}

func (d *Dispatcher) collision() *BusCollisionError {
	var names []string
	for _, s := range d.slots {
		if s.Level == Asserted {
			names = append(names, s.Name)
		}
	}
	return &BusCollisionError{Bus: d.name, Devices: names}
}

func (d *Dispatcher) bindFault(err error) error {
	d.stats.Faults++
	d.trace(log.Event{
		Kind: log.KindFault,
		Fault: &log.FaultEvent{
			Code:    faultCode(err),
			Message: err.Error(),
		},
	})
	return err
}

func (d *Dispatcher) transferFault(code log.FaultCode, err error, rx byte, devices ...string) {
	d.stats.Faults++
	d.trace(log.Event{
		Kind: log.KindFault,
		Fault: &log.FaultEvent{
			Code:    code,
			Message: err.Error(),
			Devices: devices,
			RX:      &rx,
		},
	})
}

func (d *Dispatcher) trace(event log.Event) {
	if d.logger == nil {
		return
	}
	event.Timestamp = time.Now()
	event.SessionID = d.sessionID
	event.Bus = d.name
	d.logger.Log(event)
}

func faultCode(err error) log.FaultCode {
	switch {
	case errors.Is(err, ErrCapacityExceeded):
		return log.FaultCapacityExceeded
	case errors.Is(err, ErrBusCollision):
		return log.FaultBusCollision
	case errors.Is(err, ErrMissingHandler):
		return log.FaultMissingHandler
	case errors.Is(err, ErrInvalidConfiguration), errors.Is(err, ErrDuplicateDevice), errors.Is(err, ErrDuplicateBus),
		errors.Is(err, ErrBindFailed):
		return log.FaultInvalidConfiguration
	default:
		return log.FaultOther
	}
}
