package main

import (
	"fmt"
	"io"

	"github.com/spibus-sim/spibus-go/pkg/config"
	"github.com/spibus-sim/spibus-go/pkg/sim"
)

// runScript executes steps and prints one line per step plus a summary.
func runScript(h *sim.Harness, steps []config.Step, keepGoing bool, w io.Writer) error {
	if len(steps) == 0 {
		fmt.Fprintln(w, "No script steps")
		return nil
	}

	results, err := h.Run(steps, keepGoing)

	failed := 0
	for _, r := range results {
		status := "ok"
		if !r.OK() {
			status = "FAIL"
			failed++
		}
		fmt.Fprintf(w, "%3d %-4s %s", r.Index, status, r.Step.String())
		if len(r.Replies) > 0 {
			fmt.Fprintf(w, " -> [% X]", r.Replies)
		}
		if r.Step.Fault != "" && r.OK() {
			fmt.Fprintf(w, " (%s)", r.Step.Fault)
		}
		if r.Err != nil {
			fmt.Fprintf(w, ": %v", r.Err)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\n%d/%d steps run, %d failed\n", len(results), len(steps), failed)
	return err
}
