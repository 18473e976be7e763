package config

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrNoBuses     = errors.New("no buses defined")
	ErrNoDevices   = errors.New("bus has no devices")
	ErrUnnamed     = errors.New("name is required")
	ErrUnknownKind = errors.New("unknown device kind")
	ErrUnknownBus  = errors.New("unknown bus")
	ErrUnknownOp   = errors.New("unknown script operation")
	ErrBadStep     = errors.New("invalid script step")
)

// Validate checks the structure of the file. Capacity limits and duplicate
// names are enforced later by the dispatcher registry.
func (f *File) Validate() error {
	if len(f.Buses) == 0 {
		return ErrNoBuses
	}
	if f.Limits.MaxDispatchers < 0 || f.Limits.MaxDevices < 0 ||
		f.Limits.MaxBusName < 0 || f.Limits.MaxDeviceName < 0 {
		return fmt.Errorf("limits must not be negative")
	}

	for i, bus := range f.Buses {
		if bus.Name == "" {
			return fmt.Errorf("bus %d: %w", i+1, ErrUnnamed)
		}
		if len(bus.Devices) == 0 {
			return fmt.Errorf("bus %s: %w", bus.Name, ErrNoDevices)
		}
		for j, dev := range bus.Devices {
			if dev.Name == "" {
				return fmt.Errorf("bus %s device %d: %w", bus.Name, j+1, ErrUnnamed)
			}
			switch dev.Kind {
			case "", KindEcho, KindCounter, KindSilent:
			case KindRegisterFile:
				if dev.Size < 0 || dev.Size > 256 {
					return fmt.Errorf("bus %s device %s: size must be between 0 and 256", bus.Name, dev.Name)
				}
			default:
				return fmt.Errorf("bus %s device %s: %w: %q", bus.Name, dev.Name, ErrUnknownKind, dev.Kind)
			}
		}
	}

	for i, step := range f.Script {
		if err := f.validateStep(step); err != nil {
			return fmt.Errorf("script step %d: %w", i+1, err)
		}
	}
	return nil
}

// Bus returns the named bus description.
func (f *File) Bus(name string) (Bus, bool) {
	for _, b := range f.Buses {
		if b.Name == name {
			return b, true
		}
	}
	return Bus{}, false
}

func (f *File) validateStep(step Step) error {
	bus, ok := f.Bus(step.Bus)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBus, step.Bus)
	}

	switch step.Op {
	case OpSelect, OpDeselect:
		found := false
		for _, d := range bus.Devices {
			if d.Name == step.Device {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: device %q not on bus %s", ErrBadStep, step.Device, bus.Name)
		}
	case OpTransfer:
		if len(step.Data) == 0 {
			return fmt.Errorf("%w: transfer without data", ErrBadStep)
		}
		for _, v := range step.Data {
			if v < 0 || v > 0xFF {
				return fmt.Errorf("%w: data byte %d out of range", ErrBadStep, v)
			}
		}
		if len(step.Expect) > 0 && len(step.Expect) != len(step.Data) {
			return fmt.Errorf("%w: expect has %d bytes, data has %d", ErrBadStep, len(step.Expect), len(step.Data))
		}
		switch step.Fault {
		case "", FaultCollision, FaultMissingHandler:
		default:
			return fmt.Errorf("%w: unknown fault %q", ErrBadStep, step.Fault)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, step.Op)
	}
	return nil
}
