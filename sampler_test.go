package main

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingSource holds every adb call until its context is cancelled.
type blockingSource struct {
	started chan struct{}
	once    sync.Once
}

func (b *blockingSource) BatteryDump(ctx context.Context) (string, error) {
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return "", ctx.Err()
}

func (b *blockingSource) Ping(ctx context.Context, host string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// fakeSource returns canned adb output.
type fakeSource struct {
	mu         sync.Mutex
	battery    string
	batteryErr error
	ping       string
	pingErr    error
	hosts      []string
}

func (f *fakeSource) BatteryDump(ctx context.Context) (string, error) {
	return f.battery, f.batteryErr
}

func (f *fakeSource) Ping(ctx context.Context, host string) (string, error) {
	f.mu.Lock()
	f.hosts = append(f.hosts, host)
	f.mu.Unlock()
	return f.ping, f.pingErr
}

func quietLogger() *Logger {
	return NewLogger(io.Discard, LevelDebug)
}

func TestSamplerTick(t *testing.T) {
	src := &fakeSource{battery: batteryDump, ping: pingOK}
	session := NewSession()
	s := NewSampler(src, session, "example.org", quietLogger())

	sm, ok := s.Tick(context.Background())
	require.True(t, ok)
	assert.Equal(t, 1, sm.Index)
	assert.InDelta(t, 4.123, sm.VoltageV, 1e-9)
	assert.InDelta(t, -312.0, sm.CurrentMA, 1e-9)
	assert.InDelta(t, 28.5, sm.TemperatureC, 1e-9)
	assert.InDelta(t, 85.0, sm.BatteryPct, 1e-9)
	assert.InDelta(t, 12.3, sm.PingMS, 1e-9)
	assert.InDelta(t, 0.0, sm.LossPct, 1e-9)
	assert.Equal(t, []string{"example.org"}, src.hosts)
	assert.Equal(t, "Charging", s.LastBattery().Status)
}

func TestSamplerBatteryFailureYieldsZeros(t *testing.T) {
	src := &fakeSource{batteryErr: errors.New("device offline"), ping: pingOK}
	session := NewSession()
	s := NewSampler(src, session, "", quietLogger())

	sm, ok := s.Tick(context.Background())
	require.True(t, ok)
	assert.Zero(t, sm.VoltageV)
	assert.Zero(t, sm.CurrentMA)
	assert.Zero(t, sm.TemperatureC)
	assert.Zero(t, sm.BatteryPct)
	assert.InDelta(t, 12.3, sm.PingMS, 1e-9)

	snap := session.Snapshot()
	require.Equal(t, 1, snap.Len())
	assertEqualLengths(t, snap)
	assert.Equal(t, []string{defaultPingHost}, src.hosts)
}

func TestSamplerPingFailureYieldsFullLoss(t *testing.T) {
	tests := []struct {
		name string
		out  string
		err  error
	}{
		{"process error", "", errors.New("exit status 1")},
		{"lost packet", pingLost, errors.New("exit status 1")},
		{"garbage", "ping: bad address\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{battery: batteryDump, ping: tt.out, pingErr: tt.err}
			s := NewSampler(src, NewSession(), "", quietLogger())

			sm, ok := s.Tick(context.Background())
			require.True(t, ok)
			assert.Zero(t, sm.PingMS)
			assert.Equal(t, 100.0, sm.LossPct)
			assert.InDelta(t, 85.0, sm.BatteryPct, 1e-9)
		})
	}
}

func TestSamplerEqualLengthsAfterEveryTick(t *testing.T) {
	src := &fakeSource{battery: batteryDump, ping: pingOK}
	session := NewSession()
	s := NewSampler(src, session, "", quietLogger())

	for i := 0; i < 10; i++ {
		if i%3 == 0 {
			src.batteryErr = errors.New("flaky")
		} else {
			src.batteryErr = nil
		}
		s.Tick(context.Background())
		snap := session.Snapshot()
		assert.Equal(t, i+1, snap.Len())
		assertEqualLengths(t, snap)
	}
}

func TestSamplerStartStop(t *testing.T) {
	src := &fakeSource{battery: batteryDump, ping: pingOK}
	session := NewSession()
	s := NewSampler(src, session, "", quietLogger())

	got := make(chan Sample, 16)
	s.Start(context.Background(), 5*time.Millisecond, func(sm Sample) {
		select {
		case got <- sm:
		default:
		}
	})
	// A second Start while running is ignored.
	s.Start(context.Background(), time.Hour, nil)
	assert.True(t, s.Running())

	for i := 1; i <= 3; i++ {
		select {
		case sm := <-got:
			assert.Equal(t, i, sm.Index)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for sample %d", i)
		}
	}

	s.Stop()
	assert.False(t, s.Running())
	n := session.Len()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, session.Len())
	assertEqualLengths(t, session.Snapshot())

	// Stop on a stopped sampler is a no-op.
	s.Stop()
}

func TestSamplerStopsWithContext(t *testing.T) {
	src := &fakeSource{battery: batteryDump, ping: pingOK}
	s := NewSampler(src, NewSession(), "", quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx, time.Hour, nil)
	cancel()

	assert.Eventually(t, func() bool { return !s.Running() }, 2*time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestSamplerTickCancelledRecordsNothing(t *testing.T) {
	session := NewSession()
	s := NewSampler(&fakeSource{batteryErr: context.Canceled, pingErr: context.Canceled}, session, "", quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := s.Tick(ctx)
	assert.False(t, ok)
	assert.Equal(t, 0, session.Len())
}

func TestSamplerStopDuringTick(t *testing.T) {
	src := &blockingSource{started: make(chan struct{})}
	session := NewSession()
	s := NewSampler(src, session, "", quietLogger())

	var calls int
	s.Start(context.Background(), time.Hour, func(Sample) { calls++ })
	select {
	case <-src.started:
	case <-time.After(2 * time.Second):
		t.Fatal("tick never started")
	}

	s.Stop()
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, session.Len())
	assertEqualLengths(t, session.Snapshot())
}
