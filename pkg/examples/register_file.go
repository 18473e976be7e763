package examples

import (
	"sync"

	"github.com/spibus-sim/spibus-go/pkg/dispatcher"
)

// RegisterFile commands.
const (
	CmdWrite byte = 0x02
	CmdRead  byte = 0x03
)

type regState uint8

const (
	regIdle regState = iota
	regAddress
	regData
	regIgnore
)

// RegisterFile is a byte-addressed memory framed by its select line, in the
// style of a 25xx serial EEPROM:
//
//	CS low, CMD, ADDR, data... , CS high
//
// The reply to CMD and ADDR is 0x00. During READ each transfer returns the
// addressed byte; during WRITE each transfer stores rx. The address
// auto-increments and wraps at Size. Unknown commands are answered with 0xFF
// until the device is deselected.
type RegisterFile struct {
	mu    sync.Mutex
	regs  []byte
	state regState
	cmd   byte
	addr  int
}

// NewRegisterFile creates a register file with size bytes (1-256; other
// values select 256).
func NewRegisterFile(size int) *RegisterFile {
	if size <= 0 || size > 256 {
		size = 256
	}
	return &RegisterFile{regs: make([]byte, size)}
}

// Size returns the number of registers.
func (r *RegisterFile) Size() int {
	return len(r.regs)
}

// Peek returns a register without going through the bus.
func (r *RegisterFile) Peek(addr int) byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.regs[addr%len(r.regs)]
}

// Poke sets a register without going through the bus.
func (r *RegisterFile) Poke(addr int, v byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs[addr%len(r.regs)] = v
}

// SelectChanged starts a new frame on either edge.
func (r *RegisterFile) SelectChanged(_ any, _ dispatcher.Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = regIdle
}

// Transaction advances the frame by one byte.
func (r *RegisterFile) Transaction(_ any, rx byte) byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case regIdle:
		switch rx {
		case CmdRead, CmdWrite:
			r.cmd = rx
			r.state = regAddress
			return 0x00
		default:
			r.state = regIgnore
			return 0xFF
		}
	case regAddress:
		r.addr = int(rx) % len(r.regs)
		r.state = regData
		return 0x00
	case regData:
		var tx byte
		if r.cmd == CmdRead {
			tx = r.regs[r.addr]
		} else {
			r.regs[r.addr] = rx
		}
		r.addr = (r.addr + 1) % len(r.regs)
		return tx
	default:
		return 0xFF
	}
}

var (
	_ dispatcher.SelectObserver = (*RegisterFile)(nil)
	_ dispatcher.Transactor     = (*RegisterFile)(nil)
)
