package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSettings(t *testing.T) {
	tests := []struct {
		name  string
		input Settings
		check func(t *testing.T, s Settings)
	}{
		{
			name:  "defaults",
			input: Settings{},
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, "adb", s.ADBPath)
				assert.Equal(t, "google.com", s.PingHost)
				assert.Equal(t, 2*time.Second, s.Interval)
				assert.Equal(t, 5*time.Second, s.CommandTimeout)
				assert.NotEmpty(t, s.ExportDir)
				assert.Equal(t, 0, s.ChartWindow)
			},
		},
		{
			name: "custom values kept",
			input: Settings{
				ADBPath:        `C:\platform-tools\adb.exe`,
				Serial:         "R58M",
				PingHost:       "1.1.1.1",
				Interval:       500 * time.Millisecond,
				CommandTimeout: time.Second,
				ExportDir:      "/reports",
				ChartWindow:    120,
			},
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, `C:\platform-tools\adb.exe`, s.ADBPath)
				assert.Equal(t, "R58M", s.Serial)
				assert.Equal(t, "1.1.1.1", s.PingHost)
				assert.Equal(t, 500*time.Millisecond, s.Interval)
				assert.Equal(t, time.Second, s.CommandTimeout)
				assert.Equal(t, "/reports", s.ExportDir)
				assert.Equal(t, 120, s.ChartWindow)
			},
		},
		{
			name:  "negative values reset",
			input: Settings{Interval: -time.Second, ChartWindow: -4},
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, 2*time.Second, s.Interval)
				assert.Equal(t, 0, s.ChartWindow)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, normalizeSettings(tt.input))
		})
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "adb", s.ADBPath)
}

func TestSaveLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	in := Settings{
		ADBPath:        "/usr/local/bin/adb",
		Serial:         "emulator-5554",
		PingHost:       "8.8.8.8",
		Interval:       3 * time.Second,
		CommandTimeout: 4 * time.Second,
		ExportDir:      "/tmp/reports",
		ChartWindow:    60,
	}
	require.NoError(t, SaveSettings(path, in))

	out, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadSettingsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ping_host: example.org\ninterval: 750ms\n"), 0644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "example.org", s.PingHost)
	assert.Equal(t, 750*time.Millisecond, s.Interval)
	assert.Equal(t, "adb", s.ADBPath)
}

func TestLoadSettingsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interval: [not, a, duration]\n"), 0644))

	_, err := LoadSettings(path)
	assert.Error(t, err)
}
