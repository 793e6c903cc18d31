package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

type globalFlags struct {
	configPath string
	adbPath    string
	serial     string
	host       string
	interval   time.Duration
	exportDir  string
	window     int
	verbose    bool
}

// resolveSettings loads the settings file and applies any flags the user set.
func (g *globalFlags) resolveSettings(cmd *cobra.Command) (Settings, error) {
	path := g.configPath
	if path == "" {
		p, err := DefaultSettingsPath()
		if err != nil {
			return Settings{}, err
		}
		path = p
	}
	s, err := LoadSettings(path)
	if err != nil {
		return Settings{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("adb") {
		s.ADBPath = g.adbPath
	}
	if flags.Changed("serial") {
		s.Serial = g.serial
	}
	if flags.Changed("host") {
		s.PingHost = g.host
	}
	if flags.Changed("interval") {
		s.Interval = g.interval
	}
	if flags.Changed("export-dir") {
		s.ExportDir = g.exportDir
	}
	if flags.Changed("chart-window") {
		s.ChartWindow = g.window
	}
	return normalizeSettings(s), nil
}

func (g *globalFlags) logger() *Logger {
	if g.verbose {
		defaultLogger.SetLevel(LevelDebug)
	}
	return defaultLogger
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "adbmon",
		Short: "Chart battery and network telemetry of an Android device over adb.",
		Long: fmt.Sprintf(`%s

Polls a device through adb, plots battery and ping telemetry live and
exports the samples to a spreadsheet.

Run without a subcommand to open the window.`, bold("ADB Monitor")),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := g.resolveSettings(cmd)
			if err != nil {
				return err
			}
			runGUI(settings, g.logger())
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "settings file (default is the user config dir)")
	pf.StringVar(&g.adbPath, "adb", defaultADBPath, "path to the adb executable")
	pf.StringVarP(&g.serial, "serial", "s", "", "device serial to sample")
	pf.StringVar(&g.host, "host", defaultPingHost, "host the device pings each tick")
	pf.DurationVarP(&g.interval, "interval", "i", defaultSampleInterval, "sampling interval")
	pf.StringVar(&g.exportDir, "export-dir", "", "directory for reports (default is the Desktop)")
	pf.IntVar(&g.window, "chart-window", 0, "only chart the most recent N samples (0 = all)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log every sample")

	root.AddCommand(newDevicesCmd(g), newRecordCmd(g), newConfigCmd(g))
	return root
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
		os.Exit(1)
	}
}

func newDevicesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List devices attached to adb",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := g.resolveSettings(cmd)
			if err != nil {
				return err
			}
			devices, err := NewBridge(settings).Devices(cmd.Context())
			if err != nil {
				return err
			}
			var usb []USBInterface
			if len(devices) == 0 {
				if usb, err = AndroidUSBInterfaces(); err != nil {
					g.logger().Debugf("usb inventory: %v", err)
				}
			}
			printDevices(cmd.OutOrStdout(), devices, usb)
			return nil
		},
	}
}

func printDevices(w io.Writer, devices []Device, usb []USBInterface) {
	if len(devices) == 0 {
		fmt.Fprintln(w, yellow("No device found"))
		for _, u := range usb {
			fmt.Fprintf(w, "  %s %s\n", yellow("usb"), u)
		}
		return
	}
	for _, d := range devices {
		state := green(d.State)
		if !d.Ready() {
			state = red(d.State)
		}
		model := d.Model
		if model == "" {
			model = "-"
		}
		fmt.Fprintf(w, "%-24s %-14s %s\n", d.Serial, state, model)
	}
}

func newRecordCmd(g *globalFlags) *cobra.Command {
	var (
		count int
		out   string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Sample the device without a window and export the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := g.resolveSettings(cmd)
			if err != nil {
				return err
			}
			log := g.logger()

			bridge := NewBridge(settings)
			if bridge.Serial() == "" {
				serial, err := bridge.FirstReady(cmd.Context())
				if err != nil {
					return err
				}
				bridge.SetSerial(serial)
			}
			log.Infof("recording %s every %v", bridge.Serial(), settings.Interval)

			if out == "" {
				out = DefaultReportPath(settings.ExportDir, time.Now())
			}

			session := NewSession()
			n, err := record(cmd.Context(), NewSampler(bridge, session, settings.PingHost, log), settings.Interval, count, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if n == 0 {
				return errors.New("no samples collected")
			}

			if err := exportByExtension(session.Snapshot(), out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d samples saved to %s\n", green("✓"), session.Len(), out)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after N samples (0 = until Ctrl-C)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "report file, .xlsx or .csv (default is a timestamped .xlsx)")
	return cmd
}

// record runs the sampler until count samples were taken or the process is
// interrupted, printing one line per sample. It returns the sample count.
func record(ctx context.Context, sampler *Sampler, interval time.Duration, count int, w io.Writer) (int, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	taken := 0
	sampler.Start(ctx, interval, func(sm Sample) {
		taken++
		fmt.Fprintln(w, formatSample(sm))
		if count > 0 && taken >= count {
			cancel()
		}
	})
	<-ctx.Done()
	sampler.Stop()
	return taken, nil
}

func formatSample(sm Sample) string {
	loss := fmt.Sprintf("%.0f%%", sm.LossPct)
	if sm.LossPct > 0 {
		loss = red(loss)
	} else {
		loss = green(loss)
	}
	return fmt.Sprintf("%s %s  %6.3f V  %8.1f mA  %5.1f °C  %3.0f %%  ping %7.1f ms  loss %s",
		cyan(fmt.Sprintf("#%-4d", sm.Index)), sm.Timestamp.Format("15:04:05"),
		sm.VoltageV, sm.CurrentMA, sm.TemperatureC, sm.BatteryPct, sm.PingMS, loss)
}

func exportByExtension(s Series, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		_, err := ExportCSV(s, CSVExportOptions{FilePath: path, IncludeTimestamps: true})
		return err
	case ".xlsx":
		return ExportXLSX(s, path)
	default:
		return fmt.Errorf("unsupported report format %q", filepath.Ext(path))
	}
}

func newConfigCmd(g *globalFlags) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings, optionally saving them",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := g.resolveSettings(cmd)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(settings)
			if err != nil {
				return fmt.Errorf("failed to marshal settings: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))

			if !save {
				return nil
			}
			path := g.configPath
			if path == "" {
				if path, err = DefaultSettingsPath(); err != nil {
					return err
				}
			}
			if err := SaveSettings(path, settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s saved to %s\n", green("✓"), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "write the effective settings to the settings file")
	return cmd
}
