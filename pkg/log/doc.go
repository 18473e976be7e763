// Package log provides structured bus-trace logging for spibus.
//
// This package defines the Logger interface and Event types for capturing
// everything a dispatcher does: bindings, select-line changes, byte transfers
// and faults. It is separate from operational logging (slog) - the bus trace
// is a complete machine-readable record for debugging and analysis.
//
// # Basic Usage
//
// Applications configure tracing by providing a Logger implementation:
//
//	// For development: log to console via slog
//	disp.SetLogger(log.NewSlogAdapter(slog.Default()), sessionID)
//
//	// For production: write to binary file
//	logger, _ := log.NewFileLogger("/var/log/spibus/board.sblog")
//
//	// Both: use MultiLogger
//	log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), logger)
//
// # Event Kinds
//
//   - Bind: devices attached to a bus (BindEvent)
//   - Select: a select line changed level (SelectEvent)
//   - Transfer: one byte exchanged on the shared line (TransferEvent)
//   - Fault: a bind or transfer failed (FaultEvent)
//
// # File Format
//
// Trace files are a stream of CBOR-encoded events with the .sblog extension.
// The spibus-log CLI tool provides viewing, filtering, and export.
package log
