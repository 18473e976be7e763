package dispatcher

// Default capacities.
const (
	DefaultMaxDispatchers = 2
	DefaultMaxDevices     = 5
	DefaultMaxBusName     = 14
	DefaultMaxDeviceName  = 14
)

// IdleByte is emitted when no device is selected.
const IdleByte byte = 0xFF

// Limits bounds the number of dispatchers, devices and name lengths. They are
// deployment-time settings, fixed for the lifetime of a Registry.
type Limits struct {
	MaxDispatchers int
	MaxDevices     int
	MaxBusName     int
	MaxDeviceName  int
}

// DefaultLimits returns the stock capacities.
func DefaultLimits() Limits {
	return Limits{
		MaxDispatchers: DefaultMaxDispatchers,
		MaxDevices:     DefaultMaxDevices,
		MaxBusName:     DefaultMaxBusName,
		MaxDeviceName:  DefaultMaxDeviceName,
	}
}

// withDefaults replaces non-positive fields with defaults.
func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.MaxDispatchers <= 0 {
		l.MaxDispatchers = def.MaxDispatchers
	}
	if l.MaxDevices <= 0 {
		l.MaxDevices = def.MaxDevices
	}
	if l.MaxBusName <= 0 {
		l.MaxBusName = def.MaxBusName
	}
	if l.MaxDeviceName <= 0 {
		l.MaxDeviceName = def.MaxDeviceName
	}
	return l
}

// truncate shortens s to at most n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
