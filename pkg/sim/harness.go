package sim

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/spibus-sim/spibus-go/pkg/config"
	"github.com/spibus-sim/spibus-go/pkg/dispatcher"
	"github.com/spibus-sim/spibus-go/pkg/log"
	"github.com/spibus-sim/spibus-go/pkg/signal"
)

// Options configures a Harness.
type Options struct {
	// Slog receives operational messages. Defaults to slog.Default().
	Slog *slog.Logger

	// Trace receives bus trace events. Nil disables tracing.
	Trace log.Logger

	// SessionID tags trace events. A random UUID is used when empty.
	SessionID string
}

// Harness drives the buses of one simulation.
type Harness struct {
	mu sync.Mutex

	pool      *signal.Pool
	registry  *dispatcher.Registry
	buses     map[string]*bus
	order     []string
	sessionID string
	slog      *slog.Logger
}

// bus is the master side of one dispatcher.
type bus struct {
	disp    *dispatcher.Dispatcher
	mosi    *signal.Signal
	miso    *signal.Signal
	selects map[string]*signal.Signal
	devices map[string]any
}

// New builds every bus in f and binds its devices.
func New(f *config.File, opts Options) (*Harness, error) {
	if opts.Slog == nil {
		opts.Slog = slog.Default()
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.New().String()
	}

	h := &Harness{
		pool:      signal.NewPool("spibus"),
		registry:  dispatcher.NewRegistry(f.Limits.Dispatcher()),
		buses:     make(map[string]*bus),
		sessionID: opts.SessionID,
		slog:      opts.Slog,
	}
	h.registry.SetSlogger(opts.Slog)
	if opts.Trace != nil {
		h.registry.SetLogger(opts.Trace, opts.SessionID)
	}

	for _, bc := range f.Buses {
		if err := h.addBus(bc); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Harness) addBus(bc config.Bus) error {
	disp, err := h.registry.Create(h.pool, bc.Name)
	if err != nil {
		return fmt.Errorf("bus %s: %w", bc.Name, err)
	}

	b := &bus{
		disp:    disp,
		mosi:    h.pool.Alloc(bc.Name + "_MOSI"),
		miso:    h.pool.Alloc(bc.Name + "_MISO"),
		selects: make(map[string]*signal.Signal),
		devices: make(map[string]any),
	}

	specs := make([]dispatcher.DeviceSpec, 0, len(bc.Devices))
	for _, dc := range bc.Devices {
		dev, err := newDevice(dc)
		if err != nil {
			return fmt.Errorf("bus %s device %s: %w", bc.Name, dc.Name, err)
		}
		cs := h.pool.Alloc(bc.Name + "_CS_" + dc.Name)
		b.selects[dc.Name] = cs
		b.devices[dc.Name] = dev
		specs = append(specs, dispatcher.DeviceSpec{
			Name:   dc.Name,
			Handle: dev,
			Select: cs,
			Device: dev,
		})
	}

	if err := disp.Bind(b.mosi, b.miso, specs); err != nil {
		return err
	}

	h.buses[bc.Name] = b
	h.order = append(h.order, bc.Name)
	return nil
}

// SessionID returns the trace session identifier.
func (h *Harness) SessionID() string {
	return h.sessionID
}

// Pool returns the signal pool backing all buses.
func (h *Harness) Pool() *signal.Pool {
	return h.pool
}

// Registry returns the dispatcher registry.
func (h *Harness) Registry() *dispatcher.Registry {
	return h.registry
}

// Buses returns the configured bus names in order.
func (h *Harness) Buses() []string {
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// Dispatcher returns the dispatcher of a bus.
func (h *Harness) Dispatcher(name string) (*dispatcher.Dispatcher, bool) {
	b, ok := h.buses[name]
	if !ok {
		return nil, false
	}
	return b.disp, true
}

// Device returns the peripheral model bound as device on bus.
func (h *Harness) Device(busName, device string) (any, bool) {
	b, ok := h.buses[busName]
	if !ok {
		return nil, false
	}
	dev, ok := b.devices[device]
	return dev, ok
}

// Devices returns the device names of a bus, sorted.
func (h *Harness) Devices(busName string) []string {
	b, ok := h.buses[busName]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(b.devices))
	for name := range b.devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select drives the select line of a device low.
func (h *Harness) Select(busName, device string) error {
	return h.setLevel(busName, device, dispatcher.Asserted)
}

// Deselect drives the select line of a device high.
func (h *Harness) Deselect(busName, device string) error {
	return h.setLevel(busName, device, dispatcher.Deasserted)
}

func (h *Harness) setLevel(busName, device string, level dispatcher.Level) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, err := h.bus(busName)
	if err != nil {
		return err
	}
	cs, ok := b.selects[device]
	if !ok {
		return fmt.Errorf("bus %s: unknown device %q", busName, device)
	}
	return cs.Raise(level.Wire())
}

// Transfer sends data one byte at a time and returns the replies. On error
// the replies collected so far are returned with it.
func (h *Harness) Transfer(busName string, data []byte) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, err := h.bus(busName)
	if err != nil {
		return nil, err
	}

	replies := make([]byte, 0, len(data))
	for i, rx := range data {
		if err := b.mosi.Raise(uint32(rx)); err != nil {
			return replies, fmt.Errorf("byte %d: %w", i, err)
		}
		replies = append(replies, byte(b.miso.Value()))
	}
	return replies, nil
}

func (h *Harness) bus(name string) (*bus, error) {
	b, ok := h.buses[name]
	if !ok {
		return nil, fmt.Errorf("unknown bus %q", name)
	}
	return b, nil
}
