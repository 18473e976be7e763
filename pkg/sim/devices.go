package sim

import (
	"fmt"

	"github.com/spibus-sim/spibus-go/pkg/config"
	"github.com/spibus-sim/spibus-go/pkg/examples"
)

// newDevice builds the peripheral model for a configured device.
func newDevice(dev config.Device) (any, error) {
	switch dev.Kind {
	case "", config.KindEcho:
		return examples.NewEcho(), nil
	case config.KindRegisterFile:
		return examples.NewRegisterFile(dev.Size), nil
	case config.KindCounter:
		return examples.NewCounter(), nil
	case config.KindSilent:
		return examples.NewSilent(), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownKind, dev.Kind)
	}
}
