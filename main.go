package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

func main() {
	Execute()
}

// runGUI opens the monitor window and blocks until it is closed.
func runGUI(settings Settings, log *Logger) {
	a := app.NewWithID("com.github.adbmon.telemetry-monitor")
	a.Settings().SetTheme(newMonitorTheme())
	w := a.NewWindow("ADB Monitor")
	w.Resize(fyne.NewSize(1280, 600))

	NewAppUI(w, settings, NewBridge(settings), NewSession(), log)

	w.ShowAndRun()
}
