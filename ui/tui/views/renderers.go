package views

import (
	"fmt"
	"time"

	"sysmetryd/internal/config"
	"sysmetryd/internal/model"
	"sysmetryd/ui/tui/state"
)

// MenuZoneID names the bubblezone mouse-hit region for menu item i, shared
// between the menu renderer (which marks it) and the controller (which
// tests mouse clicks against it).
func MenuZoneID(i int) string {
	return fmt.Sprintf("menu_%d", i)
}

// FormatLogLine renders one Snapshot as the compact console-log line
// shown on the dashboard/console pages.
func FormatLogLine(snap model.Snapshot) string {
	return fmt.Sprintf("[%s] CPU: %.1f%% | RAM: %.1f%% | Bridge: %v",
		time.UnixMilli(snap.TimestampMS).Format("15:04:05"),
		snap.CPU.UsagePercent,
		snap.Memory.UsedPct,
		snap.Bridge.Connected,
	)
}

func RenderMenu(width, height, cursor int, animCursor float64, mouseX, mouseY int) string {
	v := MenuView{}
	return v.Render(state.AppState{}, ViewProps{
		Width:      width,
		Height:     height,
		MenuCursor: cursor,
		AnimCursor: animCursor,
		MouseX:     mouseX,
		MouseY:     mouseY,
	})
}

func RenderDashboard(s state.AppState, spinnerView, chartView string, cfg config.AppConfig) string {
	v := DashboardView{}
	return v.Render(s, ViewProps{
		SpinnerView: spinnerView,
		ChartView:   chartView,
		TrayConfig:  cfg,
	})
}

func RenderRawConsole(s state.AppState, width, height, scrollY int) string {
	v := ConsoleView{}
	return v.Render(s, ViewProps{
		Width:   width,
		Height:  height,
		ScrollY: scrollY,
	})
}

func RenderCPU(s state.AppState, chartView string, width, height int) string {
	v := CPUView{}
	return v.Render(s, ViewProps{
		Width:     width,
		Height:    height,
		ChartView: chartView,
	})
}
