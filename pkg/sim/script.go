package sim

import (
	"errors"
	"fmt"

	"github.com/spibus-sim/spibus-go/pkg/config"
	"github.com/spibus-sim/spibus-go/pkg/dispatcher"
)

// Script errors.
var (
	ErrReplyMismatch  = errors.New("reply mismatch")
	ErrExpectedFault  = errors.New("expected fault did not occur")
	ErrUnexpectedStep = errors.New("unexpected step failure")
)

// StepResult is the outcome of one script step.
type StepResult struct {
	Index   int
	Step    config.Step
	Replies []byte
	Err     error
}

// OK reports whether the step behaved as scripted.
func (r StepResult) OK() bool {
	return r.Err == nil
}

// Step executes a single scripted step.
func (h *Harness) Step(index int, step config.Step) StepResult {
	res := StepResult{Index: index, Step: step}

	switch step.Op {
	case config.OpSelect:
		res.Err = h.Select(step.Bus, step.Device)
	case config.OpDeselect:
		res.Err = h.Deselect(step.Bus, step.Device)
	case config.OpTransfer:
		res.Replies, res.Err = h.Transfer(step.Bus, step.Bytes())
		res.Err = checkTransfer(step, res.Replies, res.Err)
	default:
		res.Err = fmt.Errorf("%w: %q", config.ErrUnknownOp, step.Op)
	}
	return res
}

func checkTransfer(step config.Step, replies []byte, err error) error {
	if step.Fault != "" {
		want := faultError(step.Fault)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrExpectedFault, step.Fault)
		}
		if !errors.Is(err, want) {
			return fmt.Errorf("%w: want %s, got %v", ErrUnexpectedStep, step.Fault, err)
		}
		return nil
	}
	if err != nil {
		return err
	}

	for i, want := range step.Expect {
		if i >= len(replies) {
			return fmt.Errorf("%w: got %d bytes, want %d", ErrReplyMismatch, len(replies), len(step.Expect))
		}
		if replies[i] != byte(want) {
			return fmt.Errorf("%w: byte %d: got 0x%02X, want 0x%02X", ErrReplyMismatch, i, replies[i], want)
		}
	}
	return nil
}

func faultError(name string) error {
	switch name {
	case config.FaultCollision:
		return dispatcher.ErrBusCollision
	case config.FaultMissingHandler:
		return dispatcher.ErrMissingHandler
	default:
		return nil
	}
}

// Run executes steps in order. It stops at the first failing step unless
// keepGoing is set, in which case all failures are joined.
func (h *Harness) Run(steps []config.Step, keepGoing bool) ([]StepResult, error) {
	results := make([]StepResult, 0, len(steps))
	var errs []error

	for i, step := range steps {
		res := h.Step(i+1, step)
		results = append(results, res)

		if res.OK() {
			h.slog.Debug("step ok", "step", i+1, "action", step.String(), "replies", fmt.Sprintf("% X", res.Replies))
			continue
		}

		err := fmt.Errorf("step %d (%s): %w", i+1, step.String(), res.Err)
		h.slog.Warn("step failed", "step", i+1, "action", step.String(), "error", res.Err)
		if !keepGoing {
			return results, err
		}
		errs = append(errs, err)
	}
	return results, errors.Join(errs...)
}
