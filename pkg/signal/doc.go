// Package signal provides the event-delivery substrate for simulated buses.
//
// A Pool plays the role of the simulation core: it allocates named Signals and
// owns them for the lifetime of the process. A Signal carries one uint32 value
// per notification. Raising a Signal runs its notify hooks in registration
// order and then forwards the value to every connected Signal.
//
// Delivery is synchronous. A Pool is not safe for concurrent use; the host
// must serialize calls to Raise (sim.Harness does this with a mutex).
//
//	pool := signal.NewPool("board")
//	mosi := pool.Alloc("MOSI")
//	mosi.OnNotify(func(_ *signal.Signal, v uint32) error {
//	    fmt.Printf("got %02x\n", v)
//	    return nil
//	})
//	_ = mosi.Raise(0x42)
package signal
