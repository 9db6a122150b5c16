package channels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func findRow(t *testing.T, source string) (int, bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		snap := Snapshot()
		for i, r := range snap.Channels {
			if r.Source == source {
				return i, true
			}
		}
		time.Sleep(time.Millisecond)
	}
	return 0, false
}

func TestNewBoundedWithoutCapacityPanics(t *testing.T) {
	require.Panics(t, func() {
		New[int](Bounded, 0, "chan_test.go:1", Options{})
	})
}

func TestNewOneshotWithoutCapacityPanics(t *testing.T) {
	require.Panics(t, func() {
		New[string](Oneshot, 0, "chan_test.go:2", Options{})
	})
}

func TestSendRecvRoundTrip(t *testing.T) {
	source := "chan_test.go:roundtrip"
	c := New[int](Unbounded, 0, source, Options{})

	c.Send(42)
	v, ok := c.Recv()
	require.True(t, ok)
	require.Equal(t, 42, v)

	idx, found := findRow(t, source)
	require.True(t, found)

	snap := Snapshot()
	row := snap.Channels[idx]
	require.Equal(t, "unbounded", row.ChannelType)
	require.GreaterOrEqual(t, row.Sent, uint64(1))
}

func TestCloseDrainsThenMarksClosed(t *testing.T) {
	source := "chan_test.go:close"
	c := New[string](Unbounded, 0, source, Options{})
	c.Send("a")
	c.Close()

	v, ok := c.Recv()
	require.True(t, ok)
	require.Equal(t, "a", v)

	_, ok = c.Recv()
	require.False(t, ok)

	idx, found := findRow(t, source)
	require.True(t, found)
	deadline := time.Now().Add(time.Second)
	var state string
	for time.Now().Before(deadline) {
		state = Snapshot().Channels[idx].State
		if state == "closed" {
			break
		}
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, "closed", state)
}

func TestBoundedCapacityPanicsWhenNegative(t *testing.T) {
	require.Panics(t, func() {
		New[int](Bounded, -1, "chan_test.go:neg", Options{})
	})
}

func TestLabelOverridesAutoSourceLabel(t *testing.T) {
	source := "chan_test.go:labeled"
	c := New[int](Unbounded, 0, source, Options{Label: "my-queue"})
	c.Send(1)
	_, _ = c.Recv()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		for _, r := range Snapshot().Channels {
			if r.Source == source {
				if r.HasCustomLabel && r.Label == "my-queue" {
					return
				}
			}
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("expected a row with the custom label")
}
