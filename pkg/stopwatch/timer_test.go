package stopwatch

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told to.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTimer(t *testing.T, name string, clock Clock) *Timer {
	t.Helper()
	tm, err := New(name, WithClock(clock))
	require.NoError(t, err)
	return tm
}

func TestNew(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		opts      []Option
		wantState State
		wantErr   error
	}{
		{"Idle by default", nil, StateIdle, nil},
		{"Seeded start is running", []Option{StartedAt(start)}, StateRunning, nil},
		{"Seeded interval is stopped", []Option{StartedAt(start), StoppedAt(start.Add(time.Second))}, StateStopped, nil},
		{"Zero length interval", []Option{StartedAt(start), StoppedAt(start)}, StateStopped, nil},
		{"Stop without start", []Option{StoppedAt(start)}, 0, ErrInvalidInterval},
		{"Stop before start", []Option{StartedAt(start), StoppedAt(start.Add(-time.Second))}, 0, ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm, err := New("name", tt.opts...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "name", tm.Name())
			assert.Equal(t, tt.wantState, tm.State())
		})
	}
}

func TestStart(t *testing.T) {
	clock := newFakeClock()
	tm := newTimer(t, "", clock)

	require.NoError(t, tm.Start())

	at, ok := tm.StartedAt()
	require.True(t, ok)
	assert.Equal(t, clock.Now(), at)
	assert.Equal(t, StateRunning, tm.State())

	clock.Advance(time.Second)
	err := tm.Start()
	require.ErrorIs(t, err, ErrAlreadyStarted)

	again, _ := tm.StartedAt()
	assert.Equal(t, at, again, "failed start must not overwrite the start time")
}

func TestStartSeeded(t *testing.T) {
	tm, err := New("seeded", StartedAt(time.Now()))
	require.NoError(t, err)

	assert.ErrorIs(t, tm.Start(), ErrAlreadyStarted)
}

func TestStop(t *testing.T) {
	clock := newFakeClock()

	t.Run("Before start", func(t *testing.T) {
		tm := newTimer(t, "", clock)
		require.ErrorIs(t, tm.Stop(), ErrNotStarted)
		_, ok := tm.StoppedAt()
		assert.False(t, ok)
		assert.Equal(t, StateIdle, tm.State())
	})

	t.Run("Sets stop time", func(t *testing.T) {
		tm := newTimer(t, "", clock)
		require.NoError(t, tm.Start())
		clock.Advance(250 * time.Millisecond)
		require.NoError(t, tm.Stop())

		at, ok := tm.StoppedAt()
		require.True(t, ok)
		assert.Equal(t, clock.Now(), at)
		assert.Equal(t, StateStopped, tm.State())
	})

	t.Run("Twice", func(t *testing.T) {
		tm := newTimer(t, "", clock)
		require.NoError(t, tm.Start())
		require.NoError(t, tm.Stop())
		first, _ := tm.StoppedAt()

		clock.Advance(time.Second)
		require.ErrorIs(t, tm.Stop(), ErrAlreadyStopped)

		second, _ := tm.StoppedAt()
		assert.Equal(t, first, second)
	})

	t.Run("Start after stop", func(t *testing.T) {
		tm := newTimer(t, "", clock)
		require.NoError(t, tm.Start())
		require.NoError(t, tm.Stop())
		assert.ErrorIs(t, tm.Start(), ErrAlreadyStarted)
	})
}

func TestSplitGuards(t *testing.T) {
	clock := newFakeClock()

	tm := newTimer(t, "", clock)
	lap, err := tm.Split("early")
	require.ErrorIs(t, err, ErrNotStarted)
	assert.Nil(t, lap)
	assert.Empty(t, tm.Laps())

	require.NoError(t, tm.Start())
	require.NoError(t, tm.Stop())

	lap, err = tm.Split("late")
	require.ErrorIs(t, err, ErrAlreadyStopped)
	assert.Nil(t, lap)
	assert.Empty(t, tm.Laps())
}

func TestSplitIntervals(t *testing.T) {
	clock := newFakeClock()
	tm := newTimer(t, "race", clock)
	require.NoError(t, tm.Start())
	start, _ := tm.StartedAt()

	offsets := []time.Duration{200 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 200 * time.Millisecond}
	names := []string{"first", "second", "third", "fourth"}
	for i, d := range offsets {
		clock.Advance(d)
		lap, err := tm.Split(names[i])
		require.NoError(t, err)
		assert.Equal(t, names[i], lap.Name())
		assert.Same(t, lap, tm.Last())
	}
	clock.Advance(100 * time.Millisecond)
	require.NoError(t, tm.Stop())

	laps := tm.Laps()
	require.Len(t, laps, len(names))

	first, _ := laps[0].StartedAt()
	assert.Equal(t, start, first, "first lap starts with the parent")

	for i := 0; i < len(laps)-1; i++ {
		stop, _ := laps[i].StoppedAt()
		next, _ := laps[i+1].StartedAt()
		assert.Equal(t, stop, next, "lap %d must end where lap %d begins", i, i+1)
	}

	for i, lap := range laps {
		assert.Equal(t, names[i], lap.Name())
		assert.Equal(t, StateStopped, lap.State())
		d, err := lap.Measure()
		require.NoError(t, err)
		assert.Equal(t, offsets[i], d)
	}

	total, err := tm.Measure()
	require.NoError(t, err)
	assert.Equal(t, 1100*time.Millisecond, total)

	parentStart, _ := tm.StartedAt()
	assert.Equal(t, start, parentStart, "split must not move the parent start")
}

func TestLapsIsCopy(t *testing.T) {
	tm := newTimer(t, "", newFakeClock())
	require.NoError(t, tm.Start())
	_, err := tm.Split("a")
	require.NoError(t, err)

	laps := tm.Laps()
	laps[0] = nil

	require.Len(t, tm.Laps(), 1)
	assert.NotNil(t, tm.Laps()[0])
}

func TestLapLookup(t *testing.T) {
	clock := newFakeClock()
	tm := newTimer(t, "", clock)

	assert.Nil(t, tm.Last())
	assert.Nil(t, tm.Lap("test1"))

	require.NoError(t, tm.Start())
	for _, name := range []string{"test1", "dup", "test3", "dup"} {
		clock.Advance(10 * time.Millisecond)
		_, err := tm.Split(name)
		require.NoError(t, err)
	}
	require.NoError(t, tm.Stop())

	assert.Equal(t, "test1", tm.Lap("test1").Name())
	assert.Equal(t, "test3", tm.Lap("test3").Name())
	assert.Nil(t, tm.Lap("missing"))

	dup := tm.Lap("dup")
	require.NotNil(t, dup)
	assert.Same(t, tm.Laps()[1], dup, "lookup returns the first match")
	assert.Same(t, tm.Laps()[3], tm.Last())
}

func TestUnnamedSplits(t *testing.T) {
	tm := newTimer(t, "", newFakeClock())
	require.NoError(t, tm.Start())

	_, err := tm.Split("")
	require.NoError(t, err)
	_, err = tm.Split("")
	require.NoError(t, err)

	assert.Len(t, tm.Laps(), 2)
	assert.Same(t, tm.Laps()[0], tm.Lap(""))
}

func TestMeasure(t *testing.T) {
	clock := newFakeClock()
	tm := newTimer(t, "", clock)

	_, err := tm.Measure()
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, tm.Start())
	clock.Advance(3 * time.Second)
	_, err = tm.Measure()
	assert.ErrorIs(t, err, ErrNotStopped)

	require.NoError(t, tm.Stop())
	d, err := tm.Measure()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)
}

func TestElapsed(t *testing.T) {
	clock := newFakeClock()
	tm := newTimer(t, "", clock)

	assert.Zero(t, tm.Elapsed())

	require.NoError(t, tm.Start())
	clock.Advance(time.Second)
	assert.Equal(t, time.Second, tm.Elapsed())
	clock.Advance(time.Second)
	assert.Equal(t, 2*time.Second, tm.Elapsed())

	require.NoError(t, tm.Stop())
	clock.Advance(time.Hour)
	assert.Equal(t, 2*time.Second, tm.Elapsed(), "elapsed freezes once stopped")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestFailuresAreSentinels(t *testing.T) {
	tm := newTimer(t, "", newFakeClock())
	err := tm.Stop()
	assert.True(t, errors.Is(err, ErrNotStarted))
	assert.False(t, errors.Is(err, ErrAlreadyStopped))
}

// Real clock, real sleeps: three 20ms legs.
func TestEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps")
	}

	const (
		leg       = 20 * time.Millisecond
		tolerance = 15 * time.Millisecond
	)

	tm, err := New("e2e")
	require.NoError(t, err)

	require.NoError(t, tm.Start())
	time.Sleep(leg)
	_, err = tm.Split("a")
	require.NoError(t, err)
	time.Sleep(leg)
	_, err = tm.Split("b")
	require.NoError(t, err)
	time.Sleep(leg)
	require.NoError(t, tm.Stop())

	require.Len(t, tm.Laps(), 2)

	a, err := tm.Lap("a").Measure()
	require.NoError(t, err)
	assert.InDelta(t, leg, a, float64(tolerance))

	b, err := tm.Lap("b").Measure()
	require.NoError(t, err)
	assert.InDelta(t, leg, b, float64(tolerance))

	total, err := tm.Measure()
	require.NoError(t, err)
	assert.InDelta(t, 3*leg, total, float64(2*tolerance))

	start, _ := tm.StartedAt()
	stop, _ := tm.StoppedAt()
	assert.True(t, stop.After(start))
}
