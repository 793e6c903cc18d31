package main

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

const (
	panelWidth  = 640
	panelHeight = 420
)

// AppUI holds all UI state and widgets.
type AppUI struct {
	window   fyne.Window
	settings Settings
	bridge   *Bridge
	session  *Session
	sampler  *Sampler
	log      *Logger

	// Widgets
	devicesBtn   *widget.Button
	chartsBtn    *widget.Button
	exportBtn    *widget.Button
	exportCSVBtn *widget.Button
	saveChartBtn *widget.Button
	clearBtn     *widget.Button
	deviceLabel  *widget.Label
	statusLabel  *widget.Label
	energyImg    *canvas.Image
	networkImg   *canvas.Image
}

func NewAppUI(window fyne.Window, settings Settings, bridge *Bridge, session *Session, log *Logger) *AppUI {
	if log == nil {
		log = defaultLogger
	}
	settings = normalizeSettings(settings)
	ui := &AppUI{
		window:   window,
		settings: settings,
		bridge:   bridge,
		session:  session,
		sampler:  NewSampler(bridge, session, settings.PingHost, log),
		log:      log,
	}
	ui.build()
	window.SetOnClosed(ui.sampler.Stop)
	return ui
}

func (ui *AppUI) build() {
	ui.devicesBtn = widget.NewButton("Show Devices", func() {
		ui.showDevices()
	})

	ui.chartsBtn = widget.NewButton("Start Charts", func() {
		ui.toggleCharts()
	})

	ui.exportBtn = widget.NewButton("Export Data", func() {
		ui.exportReport()
	})

	ui.exportCSVBtn = widget.NewButton("Export CSV...", func() {
		ui.showExportCSVDialog()
	})

	ui.saveChartBtn = widget.NewButton("Save Charts", func() {
		ui.saveCharts()
	})

	ui.clearBtn = widget.NewButton("Clear", func() {
		ui.session.Clear()
		ui.setCharts(blank(panelWidth, panelHeight), blank(panelWidth, panelHeight))
		ui.statusLabel.SetText("No samples")
	})

	serial := ui.bridge.Serial()
	if serial == "" {
		serial = "Unknown"
	}
	ui.deviceLabel = widget.NewLabel("Device: " + serial)
	ui.statusLabel = widget.NewLabel("No samples")

	ui.energyImg = canvas.NewImageFromImage(blank(panelWidth, panelHeight))
	ui.energyImg.FillMode = canvas.ImageFillContain
	ui.energyImg.SetMinSize(fyne.NewSize(panelWidth/2, panelHeight/2))
	ui.networkImg = canvas.NewImageFromImage(blank(panelWidth, panelHeight))
	ui.networkImg.FillMode = canvas.ImageFillContain
	ui.networkImg.SetMinSize(fyne.NewSize(panelWidth/2, panelHeight/2))

	// Layout
	actionsRow := container.NewHBox(
		ui.devicesBtn,
		ui.chartsBtn,
		ui.exportBtn,
		ui.exportCSVBtn,
		ui.saveChartBtn,
		layout.NewSpacer(),
		ui.clearBtn,
	)
	statusRow := container.NewHBox(ui.deviceLabel, layout.NewSpacer(), ui.statusLabel)

	toolbar := container.NewVBox(actionsRow, statusRow)
	charts := container.NewGridWithColumns(2, ui.energyImg, ui.networkImg)
	content := container.NewBorder(toolbar, nil, nil, nil, charts)
	ui.window.SetContent(content)
}

func (ui *AppUI) showDevices() {
	ui.devicesBtn.Disable()
	go func() {
		devices, err := ui.bridge.Devices(context.Background())
		var usb []USBInterface
		if err == nil && len(devices) == 0 {
			var usbErr error
			usb, usbErr = AndroidUSBInterfaces()
			if usbErr != nil {
				ui.log.Debugf("usb inventory: %v", usbErr)
			}
		}

		fyne.Do(func() {
			ui.devicesBtn.Enable()
			if err != nil {
				ui.log.Errorf("%v", err)
				dialog.ShowError(err, ui.window)
				return
			}
			ui.selectDevice(devices)
			dialog.ShowInformation("ADB Devices", describeDevices(devices, usb), ui.window)
		})
	}()
}

// selectDevice points the bridge at the first ready device.
func (ui *AppUI) selectDevice(devices []Device) {
	for _, d := range devices {
		if d.Ready() {
			ui.bridge.SetSerial(d.Serial)
			ui.deviceLabel.SetText("Device: " + d.Serial)
			ui.log.Infof("using device %s", d.Serial)
			return
		}
	}
	ui.bridge.SetSerial("")
	ui.deviceLabel.SetText("Device: none")
}

// describeDevices builds the text of the device dialog.
func describeDevices(devices []Device, usb []USBInterface) string {
	if len(devices) == 0 {
		var b strings.Builder
		b.WriteString("No device found")
		if len(usb) > 0 {
			b.WriteString("\n\nUSB interfaces from Android vendors (is USB debugging authorized?):")
			for _, u := range usb {
				b.WriteString("\n" + u.String())
			}
		}
		return b.String()
	}
	lines := make([]string, len(devices))
	for i, d := range devices {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

func (ui *AppUI) toggleCharts() {
	if ui.sampler.Running() {
		ui.chartsBtn.SetText("Stopping...")
		ui.chartsBtn.Disable()
		// Stop waits for the in-flight tick, which may be blocked on adb.
		go func() {
			ui.sampler.Stop()
			fyne.Do(func() {
				ui.chartsBtn.SetText("Start Charts")
				ui.chartsBtn.Enable()
			})
		}()
		return
	}

	ui.chartsBtn.SetText("Stop Charts")
	ui.sampler.Start(context.Background(), ui.settings.Interval, func(sm Sample) {
		series := ui.session.Snapshot().Tail(ui.settings.ChartWindow)
		energy, err := RenderEnergyChart(series, panelWidth, panelHeight)
		if err != nil {
			ui.log.Warnf("energy chart render: %v", err)
		}
		network, err := RenderNetworkChart(series, panelWidth, panelHeight)
		if err != nil {
			ui.log.Warnf("network chart render: %v", err)
		}
		status := fmt.Sprintf("%d samples", ui.session.Len())
		if line := ui.sampler.LastBattery().StatusLine(); line != "" {
			status += " | " + line
		}

		fyne.Do(func() {
			ui.setCharts(energy, network)
			ui.statusLabel.SetText(status)
		})
	})
}

func (ui *AppUI) setCharts(energy, network image.Image) {
	ui.energyImg.Image = energy
	ui.energyImg.Refresh()
	ui.networkImg.Image = network
	ui.networkImg.Refresh()
}

func (ui *AppUI) exportReport() {
	series := ui.session.Snapshot()
	if series.Len() == 0 {
		dialog.ShowInformation("Export", "No data to export.", ui.window)
		return
	}

	path := DefaultReportPath(ui.settings.ExportDir, time.Now())
	if err := ExportXLSX(series, path); err != nil {
		ui.log.Errorf("export: %v", err)
		dialog.ShowError(err, ui.window)
		return
	}
	ui.log.Infof("exported %d samples to %s", series.Len(), path)
	dialog.ShowInformation("Export complete", fmt.Sprintf("Report saved to:\n%s", path), ui.window)
}

func (ui *AppUI) saveCharts() {
	if ui.session.Len() < 2 {
		dialog.ShowInformation("Save Charts", "Not enough samples to chart.", ui.window)
		return
	}

	base := DefaultReportPath(ui.settings.ExportDir, time.Now())
	panels := map[string]image.Image{
		"energy":  ui.energyImg.Image,
		"network": ui.networkImg.Image,
	}
	var saved []string
	for name, img := range panels {
		path := chartPath(base, name)
		if err := SaveChartPNG(img, path); err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		saved = append(saved, path)
	}
	dialog.ShowInformation("Save Charts", "Charts saved to:\n"+strings.Join(saved, "\n"), ui.window)
}

func (ui *AppUI) showExportCSVDialog() {
	series := ui.session.Snapshot()
	if series.Len() == 0 {
		dialog.ShowInformation("Export", "No data to export.", ui.window)
		return
	}

	// Options
	includeTimestamps := widget.NewCheck("Include timestamps", nil)

	filterByTime := widget.NewCheck("Filter by time range", nil)

	startEntry := widget.NewEntry()
	startEntry.SetPlaceHolder("Start (HH:MM:SS)")
	startEntry.Disable()

	endEntry := widget.NewEntry()
	endEntry.SetPlaceHolder("End (HH:MM:SS)")
	endEntry.Disable()

	filterByTime.OnChanged = func(checked bool) {
		if checked {
			startEntry.Enable()
			endEntry.Enable()
		} else {
			startEntry.Disable()
			endEntry.Disable()
		}
	}

	form := widget.NewForm(
		widget.NewFormItem("Timestamps", includeTimestamps),
		widget.NewFormItem("Time Filter", filterByTime),
		widget.NewFormItem("Start", startEntry),
		widget.NewFormItem("End", endEntry),
	)

	dialog.ShowCustomConfirm("Export CSV Options", "Export", "Cancel", form, func(confirmed bool) {
		if !confirmed {
			return
		}

		opts := CSVExportOptions{
			IncludeTimestamps: includeTimestamps.Checked,
			FilterByTime:      filterByTime.Checked,
		}

		if filterByTime.Checked {
			var err error
			opts.StartTime, opts.EndTime, err = parseTimeRange(startEntry.Text, endEntry.Text, time.Now())
			if err != nil {
				dialog.ShowError(err, ui.window)
				return
			}
		}

		fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			writer.Close()

			savePath := writer.URI().Path()
			if len(savePath) > 2 && savePath[0] == '/' && savePath[2] == ':' {
				savePath = savePath[1:]
			}
			opts.FilePath = savePath

			n, err := ExportCSV(series, opts)
			if err != nil {
				dialog.ShowError(err, ui.window)
				return
			}

			dialog.ShowInformation("Export", fmt.Sprintf("Exported %d samples to CSV.", n), ui.window)
		}, ui.window)
		fd.SetFileName(strings.TrimSuffix(DefaultReportPath("", time.Now()), ".xlsx") + ".csv")
		fd.Show()
	}, ui.window)
}

// parseTimeRange turns HH:MM:SS bounds into times on the same day as now.
// An empty start means the beginning of the day; an empty end means now.
func parseTimeRange(startText, endText string, now time.Time) (time.Time, time.Time, error) {
	startText = strings.TrimSpace(startText)
	endText = strings.TrimSpace(endText)

	onDay := func(t time.Time) time.Time {
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), t.Second(), 0, now.Location())
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := now
	if startText != "" {
		t, err := time.Parse("15:04:05", startText)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start time format (use HH:MM:SS): %s", startText)
		}
		start = onDay(t)
	}
	if endText != "" {
		t, err := time.Parse("15:04:05", endText)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end time format (use HH:MM:SS): %s", endText)
		}
		end = onDay(t)
	}
	return start, end, nil
}
