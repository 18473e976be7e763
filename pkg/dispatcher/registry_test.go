package dispatcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spibus-sim/spibus-go/pkg/dispatcher"
	"github.com/spibus-sim/spibus-go/pkg/signal"
)

func TestRegistryCapacity(t *testing.T) {
	pool := signal.NewPool("core")
	reg := dispatcher.NewRegistry(dispatcher.DefaultLimits())

	first, err := reg.Create(pool, "SPI0")
	require.NoError(t, err)
	second, err := reg.Create(pool, "SPI1")
	require.NoError(t, err)

	_, err = reg.Create(pool, "SPI2")
	assert.ErrorIs(t, err, dispatcher.ErrCapacityExceeded)

	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, []*dispatcher.Dispatcher{first, second}, reg.Dispatchers())
	assert.Same(t, pool, first.Core())
}

func TestRegistryLookup(t *testing.T) {
	reg := dispatcher.NewRegistry(dispatcher.DefaultLimits())
	d, err := reg.Create(signal.NewPool("core"), "SPI0")
	require.NoError(t, err)

	got, ok := reg.Lookup("SPI0")
	require.True(t, ok)
	assert.Same(t, d, got)
	assert.Equal(t, "SPI0", got.Name())

	_, ok = reg.Lookup("SPI9")
	assert.False(t, ok)
}

func TestRegistryRejectsBadInput(t *testing.T) {
	reg := dispatcher.NewRegistry(dispatcher.DefaultLimits())

	_, err := reg.Create(nil, "SPI0")
	assert.ErrorIs(t, err, dispatcher.ErrInvalidConfiguration)

	_, err = reg.Create(signal.NewPool("core"), "")
	assert.ErrorIs(t, err, dispatcher.ErrInvalidConfiguration)

	_, err = reg.Create(signal.NewPool("core"), "SPI0")
	require.NoError(t, err)
	_, err = reg.Create(signal.NewPool("core"), "SPI0")
	assert.ErrorIs(t, err, dispatcher.ErrDuplicateBus)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryTruncatesBusName(t *testing.T) {
	limits := dispatcher.DefaultLimits()
	limits.MaxBusName = 3
	reg := dispatcher.NewRegistry(limits)

	d, err := reg.Create(signal.NewPool("core"), "SPIBUS")
	require.NoError(t, err)
	assert.Equal(t, "SPI", d.Name())
}

func TestRegistryDefaultsLimits(t *testing.T) {
	reg := dispatcher.NewRegistry(dispatcher.Limits{MaxDevices: 8})
	limits := reg.Limits()
	assert.Equal(t, 8, limits.MaxDevices)
	assert.Equal(t, dispatcher.DefaultMaxDispatchers, limits.MaxDispatchers)
	assert.Equal(t, dispatcher.DefaultMaxBusName, limits.MaxBusName)
	assert.Equal(t, dispatcher.DefaultMaxDeviceName, limits.MaxDeviceName)
}

func TestRegistryLoggersApplyToLaterDispatchers(t *testing.T) {
	pool := signal.NewPool("core")
	reg := dispatcher.NewRegistry(dispatcher.DefaultLimits())

	untraced, err := reg.Create(pool, "SPI0")
	require.NoError(t, err)

	trace := &traceRecorder{}
	reg.SetLogger(trace, "run")
	reg.SetSlogger(quietLogger())
	traced, err := reg.Create(pool, "SPI1")
	require.NoError(t, err)

	_, err = untraced.OnByteTransfer(0x01)
	require.NoError(t, err)
	assert.Empty(t, trace.events)

	_, err = traced.OnByteTransfer(0x02)
	require.NoError(t, err)
	require.Len(t, trace.events, 1)
	assert.Equal(t, "SPI1", trace.events[0].Bus)
	assert.Equal(t, "run", trace.events[0].SessionID)

	list := reg.Dispatchers()
	list[0] = nil
	assert.Same(t, untraced, reg.Dispatchers()[0])
}
