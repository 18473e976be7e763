package signal

import (
	"errors"
	"fmt"
)

// ErrLoop is returned when a Signal is raised again while its own
// notification is still being delivered (a connection cycle).
var ErrLoop = errors.New("signal raised recursively")

// NotifyFunc is invoked every time a Signal is raised. Hooks observe the
// previous value through sig.Value() and the new value through value.
// A non-nil error aborts delivery and is returned from Raise.
type NotifyFunc func(sig *Signal, value uint32) error

// Signal is a named line owned by a Pool.
type Signal struct {
	pool    *Pool
	label   string
	value   uint32
	hooks   []NotifyFunc
	targets []*Signal
	raising bool
}

// Label returns the debug label the signal was allocated with.
func (s *Signal) Label() string {
	return s.label
}

// Pool returns the pool that owns the signal.
func (s *Signal) Pool() *Pool {
	return s.pool
}

// Value returns the last value raised on the signal.
func (s *Signal) Value() uint32 {
	return s.value
}

// OnNotify registers a hook that runs on every Raise.
func (s *Signal) OnNotify(fn NotifyFunc) {
	s.hooks = append(s.hooks, fn)
}

// Connect forwards every value raised on s to dst.
func (s *Signal) Connect(dst *Signal) {
	s.targets = append(s.targets, dst)
}

// Raise sets the signal value and delivers it to hooks, then to connected
// signals. The first error stops delivery.
func (s *Signal) Raise(value uint32) error {
	if s.raising {
		return fmt.Errorf("%w: %s", ErrLoop, s.label)
	}
	s.raising = true
	defer func() { s.raising = false }()

	if s.pool != nil {
		s.pool.raised++
	}

	for _, hook := range s.hooks {
		if err := hook(s, value); err != nil {
			s.value = value
			return err
		}
	}
	s.value = value

	for _, dst := range s.targets {
		if err := dst.Raise(value); err != nil {
			return err
		}
	}
	return nil
}

// String returns the label and current value.
func (s *Signal) String() string {
	return fmt.Sprintf("%s=%#x", s.label, s.value)
}
