package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spibus-sim/spibus-go/pkg/dispatcher"
)

// Device kinds understood by the simulator.
const (
	KindEcho         = "echo"
	KindRegisterFile = "register-file"
	KindCounter      = "counter"
	KindSilent       = "silent"
)

// Script operations.
const (
	OpSelect   = "select"
	OpDeselect = "deselect"
	OpTransfer = "transfer"
)

// Expected faults in script steps.
const (
	FaultCollision      = "collision"
	FaultMissingHandler = "missing-handler"
)

// File is a parsed bus description.
type File struct {
	Limits Limits `yaml:"limits,omitempty"`
	Buses  []Bus  `yaml:"buses"`
	Script []Step `yaml:"script,omitempty"`
}

// Limits mirrors dispatcher.Limits. Zero fields use the defaults.
type Limits struct {
	MaxDispatchers int `yaml:"max_dispatchers,omitempty"`
	MaxDevices     int `yaml:"max_devices,omitempty"`
	MaxBusName     int `yaml:"max_bus_name,omitempty"`
	MaxDeviceName  int `yaml:"max_device_name,omitempty"`
}

// Dispatcher converts the limits for dispatcher.NewRegistry.
func (l Limits) Dispatcher() dispatcher.Limits {
	return dispatcher.Limits{
		MaxDispatchers: l.MaxDispatchers,
		MaxDevices:     l.MaxDevices,
		MaxBusName:     l.MaxBusName,
		MaxDeviceName:  l.MaxDeviceName,
	}
}

// Bus describes one shared bus and its devices, in binding order.
type Bus struct {
	Name    string     `yaml:"name"`
	Devices DeviceList `yaml:"devices"`
}

// Device describes one device on a bus.
type Device struct {
	Name string `yaml:"name"`
	// Kind selects the peripheral model; empty means echo.
	Kind string `yaml:"kind,omitempty"`
	// Size is the register count for register-file devices.
	Size int `yaml:"size,omitempty"`
}

// DeviceList accepts either a YAML sequence of devices or a comma-separated
// string of names.
type DeviceList []Device

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *DeviceList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		names, err := ParseDeviceList(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		list := make(DeviceList, len(names))
		for i, name := range names {
			list[i] = Device{Name: name}
		}
		*l = list
		return nil
	}

	var devices []Device
	if err := node.Decode(&devices); err != nil {
		return err
	}
	*l = devices
	return nil
}

// Names returns the device names in order.
func (l DeviceList) Names() []string {
	out := make([]string, len(l))
	for i, d := range l {
		out[i] = d.Name
	}
	return out
}

// ParseDeviceList splits a comma-separated list of device names. Empty
// entries are skipped; a list with no names at all is invalid.
func ParseDeviceList(s string) ([]string, error) {
	var names []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		names = append(names, part)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: empty device list %q", dispatcher.ErrInvalidConfiguration, s)
	}
	return names, nil
}

// Step is one scripted bus action.
type Step struct {
	Op     string `yaml:"op"`
	Bus    string `yaml:"bus"`
	Device string `yaml:"device,omitempty"`
	// Data holds the bytes to transfer, one notification each.
	Data []int `yaml:"data,omitempty"`
	// Expect, when set, holds the reply expected for each byte of Data.
	Expect []int `yaml:"expect,omitempty"`
	// Fault, when set, names the fault the step must produce.
	Fault string `yaml:"fault,omitempty"`
}

// Bytes returns Data as bytes. Validate guarantees the range.
func (s Step) Bytes() []byte {
	out := make([]byte, len(s.Data))
	for i, v := range s.Data {
		out[i] = byte(v)
	}
	return out
}

// String formats the step for logs.
func (s Step) String() string {
	switch s.Op {
	case OpTransfer:
		parts := make([]string, len(s.Data))
		for i, v := range s.Data {
			parts[i] = fmt.Sprintf("%02X", v)
		}
		return fmt.Sprintf("transfer %s [%s]", s.Bus, strings.Join(parts, " "))
	default:
		return fmt.Sprintf("%s %s/%s", s.Op, s.Bus, s.Device)
	}
}
