package views

import (
	"strings"

	"sysmetryd/internal/config"
	"sysmetryd/internal/model"
	"sysmetryd/internal/tray"
	"sysmetryd/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

func ColorForStatus(status string) lipgloss.Style {
	sStyle := styles.StatusStyle
	if status == "WARN" {
		return sStyle.Foreground(lipgloss.Color("220")) // Gold
	} else if status == "CRIT" {
		return sStyle.Foreground(lipgloss.Color("196")) // Red
	}
	return sStyle.Foreground(lipgloss.Color("46")) // Green
}

// trayLayoutFor derives the tray icon's two-line Layout from a Snapshot
// and the configured bottom-line mode, delegating to the same
// tray.TopText/tray.BottomText resolution the real tray icon uses so the
// zero-RPM-falls-back-to-CPU% rule (§8 scenario S6) isn't reimplemented
// here and risk drifting out of sync.
func trayLayoutFor(snap model.Snapshot, cfg config.AppConfig) tray.Layout {
	top := tray.TopText(snap.CPU.TempC, snap.CPU.UsagePercent)
	bottom := tray.BottomText(string(cfg.EffectiveMode()), snap.CPU.UsagePercent, snap.Memory.UsedPct, snap.ThermalsFans.CPUFanRPM)
	return tray.Layout{Top: top, Bottom: bottom}
}

// RenderTrayPreview renders the tray icon's 32x32 bitmap as a compact
// ASCII preview, sampling every 4th row so it fits a single dashboard
// widget without reproducing the full canvas.
func RenderTrayPreview(snap model.Snapshot, cfg config.AppConfig) string {
	canvasBuf := tray.Render(trayLayoutFor(snap, cfg))

	var rows []string
	for y := 0; y < tray.Size; y += 4 {
		var sb strings.Builder
		for x := 0; x < tray.Size; x++ {
			idx := (y*tray.Size + x) * 4
			if canvasBuf.Pix[idx+3] > 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte(' ')
			}
		}
		rows = append(rows, sb.String())
	}
	return strings.Join(rows, "\n")
}
