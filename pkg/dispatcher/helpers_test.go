package dispatcher_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spibus-sim/spibus-go/pkg/dispatcher"
	"github.com/spibus-sim/spibus-go/pkg/log"
	"github.com/spibus-sim/spibus-go/pkg/signal"
)

// recorder is a device that records every callback.
type recorder struct {
	name    string
	reply   byte
	rx      []byte
	handles []any
	levels  []dispatcher.Level
}

func (r *recorder) SelectChanged(_ any, level dispatcher.Level) {
	r.levels = append(r.levels, level)
}

func (r *recorder) Transaction(handle any, rx byte) byte {
	r.rx = append(r.rx, rx)
	r.handles = append(r.handles, handle)
	return r.reply
}

// traceRecorder collects bus trace events.
type traceRecorder struct {
	events []log.Event
}

func (t *traceRecorder) Log(e log.Event) {
	t.events = append(t.events, e)
}

func (t *traceRecorder) kinds() []log.Kind {
	out := make([]log.Kind, len(t.events))
	for i, e := range t.events {
		out[i] = e.Kind
	}
	return out
}

type testBus struct {
	pool    *signal.Pool
	disp    *dispatcher.Dispatcher
	mosi    *signal.Signal
	miso    *signal.Signal
	selects []*signal.Signal
	devices []*recorder
	trace   *traceRecorder
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestBus binds one recorder per name to a fresh dispatcher called BUS.
// The handle of each device is "h" + name.
func newTestBus(t *testing.T, names ...string) *testBus {
	t.Helper()

	tb := &testBus{
		pool:  signal.NewPool("test"),
		trace: &traceRecorder{},
	}
	reg := dispatcher.NewRegistry(dispatcher.DefaultLimits())
	reg.SetSlogger(quietLogger())
	reg.SetLogger(tb.trace, "session-1")

	disp, err := reg.Create(tb.pool, "BUS")
	require.NoError(t, err)
	tb.disp = disp
	tb.mosi = tb.pool.Alloc("MOSI")
	tb.miso = tb.pool.Alloc("MISO")

	var specs []dispatcher.DeviceSpec
	for i, name := range names {
		dev := &recorder{name: name, reply: byte(0x90 + i)}
		cs := tb.pool.Alloc("CS_" + name)
		tb.devices = append(tb.devices, dev)
		tb.selects = append(tb.selects, cs)
		specs = append(specs, dispatcher.DeviceSpec{
			Name:   name,
			Handle: "h" + name,
			Select: cs,
			Device: dev,
		})
	}
	require.NoError(t, disp.Bind(tb.mosi, tb.miso, specs))
	return tb
}

func (tb *testBus) assert(t *testing.T, i int) {
	t.Helper()
	require.NoError(t, tb.selects[i].Raise(dispatcher.Asserted.Wire()))
}

func (tb *testBus) deassert(t *testing.T, i int) {
	t.Helper()
	require.NoError(t, tb.selects[i].Raise(dispatcher.Deasserted.Wire()))
}
