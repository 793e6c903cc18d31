package main

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// monitorTheme forces the dark variant and borrows the chart palette so the
// widgets sit on the same black as the rendered panels.
type monitorTheme struct {
	base fyne.Theme
}

func newMonitorTheme() fyne.Theme {
	return &monitorTheme{base: theme.DefaultTheme()}
}

func (m *monitorTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return chartBlack
	case theme.ColorNamePrimary:
		return chartGreen
	case theme.ColorNameError:
		return chartRed
	case theme.ColorNameWarning:
		return chartYellow
	}
	return m.base.Color(name, theme.VariantDark)
}

func (m *monitorTheme) Font(style fyne.TextStyle) fyne.Resource { return m.base.Font(style) }

func (m *monitorTheme) Icon(name fyne.ThemeIconName) fyne.Resource { return m.base.Icon(name) }

func (m *monitorTheme) Size(name fyne.ThemeSizeName) float32 { return m.base.Size(name) }
