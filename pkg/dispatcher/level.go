package dispatcher

// Level is the logical state of a select line.
type Level uint8

const (
	// Deasserted is the idle (logical high) state. It is the zero value.
	Deasserted Level = iota
	// Asserted means the device is addressed (logical low).
	Asserted
)

// LevelFromWire converts a raw line value to a Level. Select lines are
// active low: 0 is Asserted, anything else Deasserted.
func LevelFromWire(v uint32) Level {
	if v == 0 {
		return Asserted
	}
	return Deasserted
}

// Wire returns the raw line value for the level.
func (l Level) Wire() uint32 {
	if l == Asserted {
		return 0
	}
	return 1
}

// String returns the level name.
func (l Level) String() string {
	switch l {
	case Asserted:
		return "ASSERTED"
	case Deasserted:
		return "DEASSERTED"
	default:
		return "UNKNOWN"
	}
}
