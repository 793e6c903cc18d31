package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const configDirName = "adb-telemetry-monitor"
const settingsFileName = "settings.yaml"

const (
	defaultADBPath        = "adb"
	defaultPingHost       = "google.com"
	defaultSampleInterval = 2 * time.Second
	defaultCommandTimeout = 5 * time.Second
)

// Settings holds everything the monitor needs to talk to the device and
// where to put reports.
type Settings struct {
	ADBPath        string        `yaml:"adb_path"`
	Serial         string        `yaml:"serial"`
	PingHost       string        `yaml:"ping_host"`
	Interval       time.Duration `yaml:"interval"`
	CommandTimeout time.Duration `yaml:"command_timeout"`
	ExportDir      string        `yaml:"export_dir"`
	// ChartWindow limits the chart to the most recent points; 0 draws everything.
	ChartWindow int `yaml:"chart_window"`
}

func normalizeSettings(s Settings) Settings {
	normalized := s

	if normalized.ADBPath == "" {
		normalized.ADBPath = defaultADBPath
	}
	if normalized.PingHost == "" {
		normalized.PingHost = defaultPingHost
	}
	if normalized.Interval <= 0 {
		normalized.Interval = defaultSampleInterval
	}
	if normalized.CommandTimeout <= 0 {
		normalized.CommandTimeout = defaultCommandTimeout
	}
	if normalized.ExportDir == "" {
		normalized.ExportDir = defaultExportDir()
	}
	if normalized.ChartWindow < 0 {
		normalized.ChartWindow = 0
	}
	return normalized
}

// defaultExportDir is the user's Desktop, or the home directory when there is none.
func defaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	desktop := filepath.Join(home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		return desktop
	}
	return home
}

// configDir returns the path to the app's config directory.
func configDir() (string, error) {
	appData, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config dir: %w", err)
	}
	dir := filepath.Join(appData, configDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}
	return dir, nil
}

// DefaultSettingsPath is where LoadSettings looks when no path is given.
func DefaultSettingsPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFileName), nil
}

// LoadSettings reads settings from path. A missing file yields defaults.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return normalizeSettings(Settings{}), nil
		}
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return normalizeSettings(s), nil
}

// SaveSettings writes settings to path, creating parent directories.
func SaveSettings(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
