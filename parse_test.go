package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batteryDump = `Current Battery Service state:
  AC powered: false
  USB powered: true
  Wireless powered: false
  Max charging current: 500000
  Max charging voltage: 5000000
  Charge counter: 2848000
  status: 2
  health: 2
  present: true
  level: 85
  scale: 100
  voltage: 4123
  temperature: 285
  technology: Li-ion
  current now: -312000
`

const pingOK = `PING google.com (142.250.180.14) 56(84) bytes of data.
64 bytes from lhr25s33-in-f14.1e100.net (142.250.180.14): icmp_seq=1 ttl=117 time=12.3 ms

--- google.com ping statistics ---
1 packets transmitted, 1 received, 0% packet loss, time 0ms
rtt min/avg/max/mdev = 12.345/12.345/12.345/0.000 ms
`

const pingLost = `PING google.com (142.250.180.14) 56(84) bytes of data.

--- google.com ping statistics ---
1 packets transmitted, 0 received, 100% packet loss, time 0ms
`

func TestParseDevices(t *testing.T) {
	out := "* daemon not running; starting now at tcp:5037\n" +
		"* daemon started successfully\n" +
		"List of devices attached\n" +
		"R58M123ABC\tdevice usb:1-1 product:beyond1ltexx model:SM_G973F device:beyond1 transport_id:1\n" +
		"emulator-5554\tdevice\n" +
		"0123456789\tunauthorized usb:1-2 transport_id:3\n" +
		"\n"

	devices := ParseDevices(out)
	require.Len(t, devices, 3)

	assert.Equal(t, "R58M123ABC", devices[0].Serial)
	assert.True(t, devices[0].Ready())
	assert.Equal(t, "SM_G973F", devices[0].Model)
	assert.Equal(t, "beyond1ltexx", devices[0].Product)
	assert.Equal(t, "beyond1", devices[0].DeviceName)
	assert.Equal(t, "1", devices[0].TransportID)
	assert.Equal(t, "R58M123ABC (SM G973F)", devices[0].String())

	assert.Equal(t, "emulator-5554", devices[1].Serial)
	assert.True(t, devices[1].Ready())

	assert.False(t, devices[2].Ready())
	assert.Equal(t, "unauthorized", devices[2].State)
	assert.Equal(t, "0123456789 [unauthorized]", devices[2].String())
}

func TestParseDevicesEmpty(t *testing.T) {
	assert.Empty(t, ParseDevices("List of devices attached\n\n"))
	assert.Empty(t, ParseDevices(""))
}

func TestParseBattery(t *testing.T) {
	r := ParseBattery(batteryDump)

	// "Max charging voltage" must not be picked up as the cell voltage.
	assert.InDelta(t, 4.123, r.VoltageV, 1e-9)
	assert.InDelta(t, -312.0, r.CurrentMA, 1e-9)
	assert.InDelta(t, 28.5, r.TemperatureC, 1e-9)
	assert.InDelta(t, 85.0, r.Percent, 1e-9)
	assert.Equal(t, "Charging", r.Status)
	assert.Equal(t, "Good", r.Health)
	assert.Equal(t, "Li-ion", r.Technology)
	assert.Equal(t, "USB", r.PowerSource)
	assert.Equal(t, "Charging, USB powered, health good, Li-ion", r.StatusLine())
}

func TestParseBatteryUnits(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		voltage float64
		percent float64
		temp    float64
	}{
		{"microvolts", "  voltage: 3987000\n", 3.987, 0, 0},
		{"millivolts", "  voltage: 3987\n", 3.987, 0, 0},
		{"custom scale", "  level: 50\n  scale: 200\n", 0, 25, 0},
		{"negative temperature", "  temperature: -52\n", 0, 0, -5.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseBattery(tt.input)
			assert.InDelta(t, tt.voltage, r.VoltageV, 1e-9)
			assert.InDelta(t, tt.percent, r.Percent, 1e-9)
			assert.InDelta(t, tt.temp, r.TemperatureC, 1e-9)
		})
	}
}

func TestParseBatteryMissingFields(t *testing.T) {
	r := ParseBattery("error: no devices/emulators found\n")
	assert.Equal(t, BatteryReading{}, r)
	assert.Empty(t, r.StatusLine())
}

func TestParsePing(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		latency float64
		loss    float64
	}{
		{"reply", pingOK, 12.3, 0},
		{"lost", pingLost, 0, 100},
		{"no output", "", 0, 100},
		{"unknown host", "ping: unknown host google.com\n", 0, 100},
		{"rtt only", "1 packets transmitted, 1 received, 0% packet loss\nround-trip min/avg/max = 7.1/7.5/7.9 ms\n", 7.5, 0},
		{"sub millisecond", "64 bytes from 10.0.0.1: icmp_seq=1 ttl=64 time<1 ms\n1 packets transmitted, 1 received, 0% packet loss\n", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParsePing(tt.input)
			assert.InDelta(t, tt.latency, res.LatencyMS, 1e-9)
			assert.InDelta(t, tt.loss, res.LossPercent, 1e-9)
		})
	}
}
