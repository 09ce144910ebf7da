package state

import (
	"time"

	"sysmetryd/internal/engine"
	"sysmetryd/internal/model"
)

type Page int

const (
	PageMenu Page = iota
	PageDashboard
	PageConsole // "Use Console"
	PageCPU     // "Detailed CPU Check"
	PageDisk    // "Detailed Disk Check"
	PageNetwork // "Detailed Network Check"
	PageRAM     // "Detailed RAM Check"
)

// AppState holds the current Snapshot and its derived check results.
type AppState struct {
	Stats       model.Snapshot
	Results     []engine.CheckResult
	LastUpdate  time.Time
	Err         error
	CPUHistory  []float64
	ConsoleLogs []string
	CurrentPage Page
}
