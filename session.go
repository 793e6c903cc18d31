package main

import (
	"sync"
	"time"
)

// Sample is one sampling tick: one battery reading and one ping.
type Sample struct {
	Index        int
	Timestamp    time.Time
	VoltageV     float64
	CurrentMA    float64
	TemperatureC float64
	BatteryPct   float64
	PingMS       float64
	LossPct      float64
}

// Series is a point-in-time copy of the session's parallel sequences.
type Series struct {
	Times        []float64
	Stamps       []time.Time
	VoltageV     []float64
	CurrentMA    []float64
	TemperatureC []float64
	BatteryPct   []float64
	PingMS       []float64
	LossPct      []float64
}

// Len is the number of samples in the series.
func (s Series) Len() int {
	return len(s.Times)
}

// Row returns sample i reassembled from the sequences.
func (s Series) Row(i int) Sample {
	return Sample{
		Index:        int(s.Times[i]),
		Timestamp:    s.Stamps[i],
		VoltageV:     s.VoltageV[i],
		CurrentMA:    s.CurrentMA[i],
		TemperatureC: s.TemperatureC[i],
		BatteryPct:   s.BatteryPct[i],
		PingMS:       s.PingMS[i],
		LossPct:      s.LossPct[i],
	}
}

// Tail returns the last n samples, or the whole series when n <= 0.
func (s Series) Tail(n int) Series {
	if n <= 0 || n >= s.Len() {
		return s
	}
	from := s.Len() - n
	return Series{
		Times:        s.Times[from:],
		Stamps:       s.Stamps[from:],
		VoltageV:     s.VoltageV[from:],
		CurrentMA:    s.CurrentMA[from:],
		TemperatureC: s.TemperatureC[from:],
		BatteryPct:   s.BatteryPct[from:],
		PingMS:       s.PingMS[from:],
		LossPct:      s.LossPct[from:],
	}
}

// Session accumulates samples for the lifetime of the process. All
// sequences are appended together under mu, so they always have equal length.
type Session struct {
	mu     sync.Mutex
	next   int
	series Series
}

func NewSession() *Session {
	return &Session{}
}

// Append assigns the next time index to sm, stores it and returns it.
func (s *Session) Append(sm Sample) Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	sm.Index = s.next
	if sm.Timestamp.IsZero() {
		sm.Timestamp = time.Now()
	}

	s.series.Times = append(s.series.Times, float64(sm.Index))
	s.series.Stamps = append(s.series.Stamps, sm.Timestamp)
	s.series.VoltageV = append(s.series.VoltageV, sm.VoltageV)
	s.series.CurrentMA = append(s.series.CurrentMA, sm.CurrentMA)
	s.series.TemperatureC = append(s.series.TemperatureC, sm.TemperatureC)
	s.series.BatteryPct = append(s.series.BatteryPct, sm.BatteryPct)
	s.series.PingMS = append(s.series.PingMS, sm.PingMS)
	s.series.LossPct = append(s.series.LossPct, sm.LossPct)
	return sm
}

// Len returns the number of samples collected so far.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.series.Len()
}

// Snapshot copies the sequences so callers can read them without the lock.
func (s *Session) Snapshot() Series {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Series{
		Times:        append([]float64(nil), s.series.Times...),
		Stamps:       append([]time.Time(nil), s.series.Stamps...),
		VoltageV:     append([]float64(nil), s.series.VoltageV...),
		CurrentMA:    append([]float64(nil), s.series.CurrentMA...),
		TemperatureC: append([]float64(nil), s.series.TemperatureC...),
		BatteryPct:   append([]float64(nil), s.series.BatteryPct...),
		PingMS:       append([]float64(nil), s.series.PingMS...),
		LossPct:      append([]float64(nil), s.series.LossPct...),
	}
}

// Clear drops all samples and restarts the time index at 1.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = 0
	s.series = Series{}
}
