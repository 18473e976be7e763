package dispatcher

import (
	"fmt"
	"log/slog"

	"github.com/spibus-sim/spibus-go/pkg/log"
	"github.com/spibus-sim/spibus-go/pkg/signal"
)

// Registry owns every Dispatcher of a process. Its capacity is fixed by
// Limits.MaxDispatchers and dispatchers are never removed.
//
// Like the dispatchers it creates, a Registry does no locking; the host
// serializes calls.
type Registry struct {
	limits      Limits
	dispatchers []*Dispatcher
	byName      map[string]*Dispatcher

	// Applied to dispatchers created after the call.
	logger    log.Logger
	sessionID string
	slog      *slog.Logger
}

// NewRegistry creates an empty registry. Non-positive limits fall back to
// DefaultLimits.
func NewRegistry(limits Limits) *Registry {
	return &Registry{
		limits: limits.withDefaults(),
		byName: make(map[string]*Dispatcher),
	}
}

// Limits returns the effective capacities.
func (r *Registry) Limits() Limits {
	return r.limits
}

// SetLogger sets the trace logger given to dispatchers created afterwards.
func (r *Registry) SetLogger(logger log.Logger, sessionID string) {
	r.logger = logger
	r.sessionID = sessionID
}

// SetSlogger sets the operational logger given to dispatchers created afterwards.
func (r *Registry) SetSlogger(logger *slog.Logger) {
	r.slog = logger
}

// Create allocates a new, empty Dispatcher attached to core. Names longer
// than Limits.MaxBusName are truncated.
func (r *Registry) Create(core *signal.Pool, name string) (*Dispatcher, error) {

	if core == nil {
		return nil, fmt.Errorf("%w: no simulation core", ErrInvalidConfiguration)
	}
	name = truncate(name, r.limits.MaxBusName)
	if name == "" {
		return nil, fmt.Errorf("%w: bus name is required", ErrInvalidConfiguration)
	}
	if len(r.dispatchers) >= r.limits.MaxDispatchers {
		return nil, fmt.Errorf("%w: at most %d dispatchers", ErrCapacityExceeded, r.limits.MaxDispatchers)
	}
	if _, exists := r.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateBus, name)
	}

	d := newDispatcher(core, name, r.limits)
	if r.logger != nil {
		d.SetLogger(r.logger, r.sessionID)
	}
	if r.slog != nil {
		d.SetSlogger(r.slog)
	}

	r.dispatchers = append(r.dispatchers, d)
	r.byName[name] = d
	return d, nil
}

// Lookup returns the dispatcher with the given name.
func (r *Registry) Lookup(name string) (*Dispatcher, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Dispatchers returns all dispatchers in creation order.
func (r *Registry) Dispatchers() []*Dispatcher {
	out := make([]*Dispatcher, len(r.dispatchers))
	copy(out, r.dispatchers)
	return out
}

// Len returns the number of dispatchers.
func (r *Registry) Len() int {
	return len(r.dispatchers)
}
