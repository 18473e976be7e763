// Package dispatcher implements a shared SPI bus arbiter.
//
// One master line is multiplexed across several devices. Every device owns a
// dedicated active-low select line; at most one may be asserted at any time.
// The Dispatcher routes each byte arriving on the shared input line to the
// transaction handler of the selected device and emits the reply on the
// shared output line:
//
//	master MOSI ──> <bus>_IN ──> OnByteTransfer ──> <bus>_OUT ──> master MISO
//	device CS   ──> <bus>_CE_<dev> ──> OnSelectChange
//
// # Arbitration
//
// For each byte:
//   - no device selected: the idle byte 0xFF is returned
//   - exactly one device selected: its Transactor handles the byte
//   - more than one selected: a BusCollisionError is returned
//
// Collisions are detected lazily, at the next transfer, not when the second
// select line goes low. A collision that is resolved before any byte moves is
// never reported.
//
// # Lifecycle
//
// Dispatchers are created through a Registry, bound once with Bind, and then
// driven by notifications from the signal pool. Nothing is ever removed.
// Dispatchers do no locking; the host must deliver notifications serially.
package dispatcher
