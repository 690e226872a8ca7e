package circuit_breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestCircuitBreaker_Call(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := newBreaker(Config{Window: 10, FailureRatio: 0.3, Cooldown: 2 * time.Second, Probes: 3}, clk.now)

	errService := errors.New("service error")
	ok := func() error { return nil }
	fail := func() error { return errService }

	for i := 0; i < 20; i++ {
		require.NoError(t, cb.Call(ok))
	}
	require.Equal(t, Closed, cb.State())

	require.ErrorIs(t, cb.Call(fail), errService)
	require.ErrorIs(t, cb.Call(fail), errService)
	require.Equal(t, Closed, cb.State())
	require.ErrorIs(t, cb.Call(fail), errService)
	require.Equal(t, Open, cb.State())

	calls := 0
	require.ErrorIs(t, cb.Call(func() error { calls++; return nil }), ErrOpen)
	require.Zero(t, calls)

	clk.advance(3 * time.Second)
	require.ErrorIs(t, cb.Call(fail), errService)
	require.Equal(t, Open, cb.State(), "a failed probe opens again")

	clk.advance(3 * time.Second)
	for i := 0; i < 3; i++ {
		require.NoError(t, cb.Call(ok))
	}
	require.Equal(t, Closed, cb.State())
	require.NoError(t, cb.Call(ok))
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := New(Config{Window: 2, FailureRatio: 0.5, Cooldown: time.Hour, Probes: 1})
	_ = cb.Call(func() error { return errors.New("boom") })
	require.Equal(t, Open, cb.State())

	cb.Reset()
	require.Equal(t, Closed, cb.State())
	require.NoError(t, cb.Call(func() error { return nil }))
	require.Equal(t, "closed", cb.State().String())
}
