package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrNoDevices is returned when adb reports no device in the "device" state.
var ErrNoDevices = errors.New("no adb device found")

// runFunc executes name with args and returns its standard output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return out, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// Bridge invokes the adb executable on behalf of the monitor.
type Bridge struct {
	Path    string
	Timeout time.Duration

	mu     sync.Mutex
	serial string
	run    runFunc
}

func NewBridge(s Settings) *Bridge {
	s = normalizeSettings(s)
	return &Bridge{
		Path:    s.ADBPath,
		Timeout: s.CommandTimeout,
		serial:  s.Serial,
		run:     execRun,
	}
}

// Serial returns the device shell commands are sent to; empty means adb's default.
func (b *Bridge) Serial() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.serial
}

// SetSerial selects the device shell commands are sent to.
func (b *Bridge) SetSerial(serial string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.serial = serial
}

// command runs adb with args, prefixed with "-s serial" when serial is set.
func (b *Bridge) command(ctx context.Context, serial string, args ...string) (string, error) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	full := args
	if serial != "" {
		full = append([]string{"-s", serial}, args...)
	}

	run := b.run
	if run == nil {
		run = execRun
	}
	out, err := run(ctx, b.Path, full...)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return string(out), fmt.Errorf("adb %s timed out after %v", strings.Join(args, " "), timeout)
		}
		return string(out), err
	}
	return string(out), nil
}

// Devices lists everything adb knows about, ready or not.
func (b *Bridge) Devices(ctx context.Context) ([]Device, error) {
	out, err := b.command(ctx, "", "devices", "-l")
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return ParseDevices(out), nil
}

// FirstReady returns the serial of the first device in the "device" state.
func (b *Bridge) FirstReady(ctx context.Context) (string, error) {
	devices, err := b.Devices(ctx)
	if err != nil {
		return "", err
	}
	for _, d := range devices {
		if d.Ready() {
			return d.Serial, nil
		}
	}
	return "", ErrNoDevices
}

// BatteryDump returns the raw output of "dumpsys battery".
func (b *Bridge) BatteryDump(ctx context.Context) (string, error) {
	return b.command(ctx, b.Serial(), "shell", "dumpsys", "battery")
}

// Ping sends one ICMP echo from the device to host. A non-zero exit is
// returned together with whatever output ping produced.
func (b *Bridge) Ping(ctx context.Context, host string) (string, error) {
	return b.command(ctx, b.Serial(), "shell", "ping", "-c", "1", host)
}
