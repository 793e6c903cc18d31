package main

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// Device is one line of "adb devices -l".
type Device struct {
	Serial      string
	State       string
	Product     string
	Model       string
	DeviceName  string
	TransportID string
}

// Ready reports whether adb can run shell commands on the device.
func (d Device) Ready() bool {
	return d.State == "device"
}

func (d Device) String() string {
	label := d.Serial
	if d.Model != "" {
		label += " (" + strings.ReplaceAll(d.Model, "_", " ") + ")"
	}
	if !d.Ready() {
		label += " [" + d.State + "]"
	}
	return label
}

// ParseDevices parses "adb devices" or "adb devices -l" output.
func ParseDevices(out string) []Device {
	var devices []Device
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		d := Device{Serial: fields[0], State: fields[1]}
		for _, f := range fields[2:] {
			key, value, ok := strings.Cut(f, ":")
			if !ok {
				// "no permissions (...)" and similar free text
				continue
			}
			switch key {
			case "product":
				d.Product = value
			case "model":
				d.Model = value
			case "device":
				d.DeviceName = value
			case "transport_id":
				d.TransportID = value
			}
		}
		devices = append(devices, d)
	}
	return devices
}

// BatteryReading is the subset of "dumpsys battery" the monitor tracks.
type BatteryReading struct {
	VoltageV     float64
	CurrentMA    float64
	TemperatureC float64
	Percent      float64

	Status      string
	Health      string
	Technology  string
	PowerSource string
}

var (
	voltageRegex     = regexp.MustCompile(`(?m)^\s*voltage:\s*(-?\d+)`)
	currentNowRegex  = regexp.MustCompile(`(?m)^\s*current now:\s*(-?\d+)`)
	temperatureRegex = regexp.MustCompile(`(?m)^\s*temperature:\s*(-?\d+)`)
	levelRegex       = regexp.MustCompile(`(?m)^\s*level:\s*(\d+)`)
	scaleRegex       = regexp.MustCompile(`(?m)^\s*scale:\s*(\d+)`)
	statusRegex      = regexp.MustCompile(`(?m)^\s*status:\s*(\d+)`)
	healthRegex      = regexp.MustCompile(`(?m)^\s*health:\s*(\d+)`)
	technologyRegex  = regexp.MustCompile(`(?m)^\s*technology:\s*(\S+)`)
	poweredRegex     = regexp.MustCompile(`(?m)^\s*(AC|USB|Wireless|Dock) powered:\s*true`)

	pingTimeRegex = regexp.MustCompile(`time[=<]\s*(\d+(?:\.\d+)?)\s*ms`)
	pingLossRegex = regexp.MustCompile(`(\d+(?:\.\d+)?)% packet loss`)
	pingRTTRegex  = regexp.MustCompile(`(?:rtt|round-trip) min/avg/max(?:/mdev|/stddev)? = [\d.]+/([\d.]+)/`)
)

// BatteryManager constants as printed by dumpsys.
var batteryStatusNames = map[int]string{
	1: "Unknown",
	2: "Charging",
	3: "Discharging",
	4: "Not charging",
	5: "Full",
}

var batteryHealthNames = map[int]string{
	1: "Unknown",
	2: "Good",
	3: "Overheat",
	4: "Dead",
	5: "Over voltage",
	6: "Failure",
	7: "Cold",
}

// microvoltThreshold separates devices that report millivolts (the norm)
// from the few that report microvolts.
const microvoltThreshold = 100000

func matchInt(re *regexp.Regexp, s string) (int64, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseBattery extracts a BatteryReading from "dumpsys battery" output.
// Fields that cannot be found are left at zero.
func ParseBattery(out string) BatteryReading {
	var r BatteryReading

	if v, ok := matchInt(voltageRegex, out); ok {
		if v > microvoltThreshold {
			r.VoltageV = float64(v) / 1e6
		} else {
			r.VoltageV = float64(v) / 1e3
		}
	}
	if v, ok := matchInt(currentNowRegex, out); ok {
		r.CurrentMA = float64(v) / 1000
	}
	if v, ok := matchInt(temperatureRegex, out); ok {
		r.TemperatureC = float64(v) / 10
	}
	if v, ok := matchInt(levelRegex, out); ok {
		r.Percent = float64(v)
		if scale, ok := matchInt(scaleRegex, out); ok && scale > 0 && scale != 100 {
			r.Percent = float64(v) * 100 / float64(scale)
		}
	}

	if v, ok := matchInt(statusRegex, out); ok {
		r.Status = batteryStatusNames[int(v)]
	}
	if v, ok := matchInt(healthRegex, out); ok {
		r.Health = batteryHealthNames[int(v)]
	}
	if m := technologyRegex.FindStringSubmatch(out); m != nil {
		r.Technology = m[1]
	}
	if m := poweredRegex.FindStringSubmatch(out); m != nil {
		r.PowerSource = m[1]
	}
	return r
}

// PingResult is the outcome of a single ping.
type PingResult struct {
	LatencyMS   float64
	LossPercent float64
}

// lossSentinel is reported when ping output carries no loss figure.
const lossSentinel = 100

// ParsePing extracts latency and loss from ping output. Missing latency is
// zero; missing loss is 100%.
func ParsePing(out string) PingResult {
	res := PingResult{LossPercent: lossSentinel}

	if m := pingTimeRegex.FindStringSubmatch(out); m != nil {
		res.LatencyMS, _ = strconv.ParseFloat(m[1], 64)
	} else if m := pingRTTRegex.FindStringSubmatch(out); m != nil {
		res.LatencyMS, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := pingLossRegex.FindStringSubmatch(out); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			res.LossPercent = v
		}
	}
	return res
}

// StatusLine summarises the non-numeric battery fields for the UI.
func (r BatteryReading) StatusLine() string {
	var parts []string
	if r.Status != "" {
		parts = append(parts, r.Status)
	}
	if r.PowerSource != "" {
		parts = append(parts, r.PowerSource+" powered")
	}
	if r.Health != "" {
		parts = append(parts, "health "+strings.ToLower(r.Health))
	}
	if r.Technology != "" {
		parts = append(parts, r.Technology)
	}
	return strings.Join(parts, ", ")
}
