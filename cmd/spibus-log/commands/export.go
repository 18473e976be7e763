package commands

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spibus-sim/spibus-go/pkg/log"
)

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

var csvHeader = []string{"timestamp", "session_id", "bus", "kind", "device", "rx", "tx", "detail"}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := cw.Write(csvRow(event)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(event log.Event) []string {
	var rx, tx, detail string
	switch {
	case event.Bind != nil:
		detail = strings.Join(event.Bind.Devices, ";")
	case event.Select != nil:
		if event.Select.Asserted {
			detail = "asserted"
		} else {
			detail = "deasserted"
		}
	case event.Transfer != nil:
		rx = fmt.Sprintf("0x%02X", event.Transfer.RX)
		tx = fmt.Sprintf("0x%02X", event.Transfer.TX)
		if event.Transfer.Idle {
			detail = "idle"
		} else {
			detail = "slot " + strconv.Itoa(event.Transfer.Slot)
		}
	case event.Fault != nil:
		if event.Fault.RX != nil {
			rx = fmt.Sprintf("0x%02X", *event.Fault.RX)
		}
		detail = event.Fault.Code.String()
	}

	return []string{
		event.Timestamp.UTC().Format(timeFormat),
		event.SessionID,
		event.Bus,
		event.Kind.String(),
		event.Device,
		rx,
		tx,
		detail,
	}
}
