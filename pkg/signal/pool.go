package signal

// Pool allocates and owns signals. It stands in for the simulation core that
// buses are attached to.
type Pool struct {
	name    string
	signals []*Signal
	byLabel map[string]*Signal
	raised  uint64
}

// NewPool creates an empty pool.
func NewPool(name string) *Pool {
	return &Pool{
		name:    name,
		byLabel: make(map[string]*Signal),
	}
}

// Name returns the pool name.
func (p *Pool) Name() string {
	return p.name
}

// Alloc creates a new signal with the given debug label. Labels are not
// required to be unique; Lookup returns the first signal allocated with a label.
func (p *Pool) Alloc(label string) *Signal {
	s := &Signal{pool: p, label: label}
	p.signals = append(p.signals, s)
	if _, exists := p.byLabel[label]; !exists {
		p.byLabel[label] = s
	}
	return s
}

// AllocN allocates one signal per label, in order.
func (p *Pool) AllocN(labels ...string) []*Signal {
	out := make([]*Signal, len(labels))
	for i, label := range labels {
		out[i] = p.Alloc(label)
	}
	return out
}

// Lookup returns the signal allocated with label.
func (p *Pool) Lookup(label string) (*Signal, bool) {
	s, ok := p.byLabel[label]
	return s, ok
}

// Signals returns all signals in allocation order.
func (p *Pool) Signals() []*Signal {
	out := make([]*Signal, len(p.signals))
	copy(out, p.signals)
	return out
}

// Raised returns the number of Raise calls delivered through the pool.
func (p *Pool) Raised() uint64 {
	return p.raised
}
