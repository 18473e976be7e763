package examples

import (
	"sync"

	"github.com/spibus-sim/spibus-go/pkg/dispatcher"
)

// Echo behaves like a single shift register: each transfer returns the byte
// received by the previous transfer. Selecting the device clears it.
type Echo struct {
	mu   sync.Mutex
	last byte
}

// NewEcho creates an Echo device.
func NewEcho() *Echo {
	return &Echo{}
}

// SelectChanged clears the register when the device is selected.
func (e *Echo) SelectChanged(_ any, level dispatcher.Level) {
	if level != dispatcher.Asserted {
		return
	}
	e.mu.Lock()
	e.last = 0
	e.mu.Unlock()
}

// Transaction shifts rx in and the previous byte out.
func (e *Echo) Transaction(_ any, rx byte) byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	tx := e.last
	e.last = rx
	return tx
}

var (
	_ dispatcher.SelectObserver = (*Echo)(nil)
	_ dispatcher.Transactor     = (*Echo)(nil)
)
