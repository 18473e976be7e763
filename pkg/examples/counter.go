package examples

import (
	"sync"

	"github.com/spibus-sim/spibus-go/pkg/dispatcher"
)

// Counter replies with the number of transfers it has served (mod 256) and
// counts select-line edges.
type Counter struct {
	mu        sync.Mutex
	transfers uint64
	selects   uint64
}

// NewCounter creates a Counter.
func NewCounter() *Counter {
	return &Counter{}
}

// SelectChanged counts the edge.
func (c *Counter) SelectChanged(_ any, _ dispatcher.Level) {
	c.mu.Lock()
	c.selects++
	c.mu.Unlock()
}

// Transaction returns the count before this transfer.
func (c *Counter) Transaction(_ any, _ byte) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx := byte(c.transfers)
	c.transfers++
	return tx
}

// Counts returns the transfer and select-edge counts.
func (c *Counter) Counts() (transfers, selects uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transfers, c.selects
}

// Silent observes its select line but has no transaction handler, so
// selecting it and transferring a byte is a missing-handler fault.
type Silent struct {
	mu     sync.Mutex
	levels []dispatcher.Level
}

// NewSilent creates a Silent device.
func NewSilent() *Silent {
	return &Silent{}
}

// SelectChanged records the level.
func (s *Silent) SelectChanged(_ any, level dispatcher.Level) {
	s.mu.Lock()
	s.levels = append(s.levels, level)
	s.mu.Unlock()
}

// Levels returns the recorded select levels.
func (s *Silent) Levels() []dispatcher.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dispatcher.Level, len(s.levels))
	copy(out, s.levels)
	return out
}

var (
	_ dispatcher.SelectObserver = (*Counter)(nil)
	_ dispatcher.Transactor     = (*Counter)(nil)
	_ dispatcher.SelectObserver = (*Silent)(nil)
)
