// Package sim hosts dispatchers for simulation runs.
//
// A Harness plays the master side of every bus described by a config.File:
// it owns the signal pool, creates one dispatcher per bus through a
// dispatcher.Registry, binds the example peripherals, and drives select
// lines and byte transfers either step by step or from a script.
//
// All drive methods are serialized by the harness, which is what the
// dispatchers require of their host.
package sim
