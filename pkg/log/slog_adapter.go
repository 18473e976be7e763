package log

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// SlogAdapter writes trace events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("bus", event.Bus),
		slog.String("kind", event.Kind.String()),
	}

	if event.Device != "" {
		attrs = append(attrs, slog.String("device", event.Device))
	}

	switch {
	case event.Bind != nil:
		attrs = append(attrs,
			slog.Int("device_count", len(event.Bind.Devices)),
			slog.String("devices", strings.Join(event.Bind.Devices, ",")),
		)
	case event.Select != nil:
		attrs = append(attrs,
			slog.Int("slot", event.Select.Slot),
			slog.Bool("asserted", event.Select.Asserted),
			slog.Bool("callback", event.Select.Callback),
		)
	case event.Transfer != nil:
		attrs = append(attrs,
			slog.String("rx", fmt.Sprintf("0x%02X", event.Transfer.RX)),
			slog.String("tx", fmt.Sprintf("0x%02X", event.Transfer.TX)),
			slog.Int("slot", event.Transfer.Slot),
		)
		if event.Transfer.Idle {
			attrs = append(attrs, slog.Bool("idle", true))
		}
	case event.Fault != nil:
		attrs = append(attrs,
			slog.String("fault", event.Fault.Code.String()),
			slog.String("error", event.Fault.Message),
		)
		if len(event.Fault.Devices) > 0 {
			attrs = append(attrs, slog.String("devices", strings.Join(event.Fault.Devices, ",")))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "bus", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
