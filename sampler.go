package main

import (
	"context"
	"sync"
	"time"
)

// telemetrySource is the part of Bridge the sampler depends on.
type telemetrySource interface {
	BatteryDump(ctx context.Context) (string, error)
	Ping(ctx context.Context, host string) (string, error)
}

// Sampler takes one battery reading and one ping per tick and appends the
// result to a Session.
type Sampler struct {
	source  telemetrySource
	session *Session
	host    string
	log     *Logger

	mu          sync.Mutex
	running     bool
	cancel      context.CancelFunc
	doneCh      chan struct{} // closed when the loop goroutine has exited
	lastBattery BatteryReading
}

func NewSampler(source telemetrySource, session *Session, host string, log *Logger) *Sampler {
	if host == "" {
		host = defaultPingHost
	}
	if log == nil {
		log = defaultLogger
	}
	return &Sampler{
		source:  source,
		session: session,
		host:    host,
		log:     log,
	}
}

// Tick collects one sample. Failures never escape: a failed battery dump
// leaves the battery fields at zero and a failed ping records 100% loss.
// A tick interrupted by ctx records nothing and reports false.
func (s *Sampler) Tick(ctx context.Context) (Sample, bool) {
	var sm Sample

	battery, err := s.source.BatteryDump(ctx)
	if err != nil {
		s.log.Warnf("battery dump failed: %v", err)
	} else {
		reading := ParseBattery(battery)
		sm.VoltageV = reading.VoltageV
		sm.CurrentMA = reading.CurrentMA
		sm.TemperatureC = reading.TemperatureC
		sm.BatteryPct = reading.Percent

		s.mu.Lock()
		s.lastBattery = reading
		s.mu.Unlock()
	}

	// ping exits non-zero when the echo is lost but still prints its summary,
	// so the output is parsed either way.
	out, err := s.source.Ping(ctx, s.host)
	if err != nil {
		s.log.Debugf("ping %s failed: %v", s.host, err)
	}
	ping := ParsePing(out)
	sm.PingMS = ping.LatencyMS
	sm.LossPct = ping.LossPercent

	if err := ctx.Err(); err != nil {
		s.log.Debugf("tick abandoned: %v", err)
		return Sample{}, false
	}

	sm.Timestamp = time.Now()
	sm = s.session.Append(sm)
	s.log.Debugf("sample %d: %.3fV %.1fmA %.1fC %.0f%% ping %.1fms loss %.0f%%",
		sm.Index, sm.VoltageV, sm.CurrentMA, sm.TemperatureC, sm.BatteryPct, sm.PingMS, sm.LossPct)
	return sm, true
}

// LastBattery returns the most recent successful battery reading.
func (s *Sampler) LastBattery() BatteryReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBattery
}

// Running reports whether the sampling loop is active.
func (s *Sampler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start runs Tick every interval until ctx is cancelled or Stop is called.
// The first tick happens immediately. onSample is called from the loop
// goroutine after each tick. Calling Start while running does nothing.
func (s *Sampler) Start(ctx context.Context, interval time.Duration, onSample func(Sample)) {
	if interval <= 0 {
		interval = defaultSampleInterval
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.doneCh = make(chan struct{})
	s.running = true
	doneCh := s.doneCh
	s.mu.Unlock()

	go func() {
		defer close(doneCh)
		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			sm, ok := s.Tick(ctx)
			if !ok {
				return
			}
			if onSample != nil {
				onSample(sm)
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight tick to finish.
func (s *Sampler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	doneCh := s.doneCh
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if doneCh != nil {
		<-doneCh
	}
}
