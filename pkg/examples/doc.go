// Package examples provides reference SPI peripherals for the simulator.
//
// Each peripheral implements dispatcher.Transactor and, where it cares about
// framing, dispatcher.SelectObserver:
//   - Echo: one-byte shift register, replies with the previous byte
//   - RegisterFile: 25xx-style memory with READ (0x03) and WRITE (0x02)
//   - Counter: replies with a running transfer count
//   - Silent: observes its select line but never answers
//
// They are deliberately small; real device models live with the host.
package examples
