// Package output turns engine.CheckResults plus a raw Snapshot into a
// presentation-ready DashboardView, the same two-stage shape the
// teacher's output.BuildDashboard used (checker verdicts first, then
// informational detail appended per section) — no printing happens
// here, console and tui each render a DashboardView their own way.
package output

import (
	"fmt"
	"strings"

	"sysmetryd/internal/engine"
	"sysmetryd/internal/model"
)

const (
	SectionCPU     = "cpu"
	SectionRAM     = "ram"
	SectionDisk    = "disk"
	SectionNetwork = "network"
)

type Item struct {
	Key    string
	Label  string
	Value  float64
	Unit   string
	Status string
	Note   string
}

type Section struct {
	ID    string
	Title string
	Items []Item
}

type DashboardView struct {
	Sections    []Section
	TotalRAMGB  int
	TotalDiskGB uint64
}

// BuildDashboard converts checker verdicts plus the Snapshot they were
// computed from into UI-ready sections.
func BuildDashboard(results []engine.CheckResult, snap model.Snapshot) DashboardView {
	sec := map[string]*Section{
		SectionCPU:     {ID: SectionCPU, Title: "CPU"},
		SectionRAM:     {ID: SectionRAM, Title: "RAM"},
		SectionDisk:    {ID: SectionDisk, Title: "Disk"},
		SectionNetwork: {ID: SectionNetwork, Title: "Network"},
	}

	for _, r := range results {
		unit := "%"
		if r.Category == engine.CategoryNetwork && strings.Contains(strings.ToLower(r.Name), "latency") {
			unit = "ms"
		}

		it := Item{
			Key:    strings.ReplaceAll(strings.ToLower(r.Name), " ", "_"),
			Label:  r.Name,
			Value:  r.Value,
			Unit:   unit,
			Status: r.Status,
		}

		switch r.Category {
		case engine.CategoryCPU:
			sec[SectionCPU].Items = append(sec[SectionCPU].Items, it)
		case engine.CategoryRAM:
			sec[SectionRAM].Items = append(sec[SectionRAM].Items, it)
		case engine.CategoryDisk:
			sec[SectionDisk].Items = append(sec[SectionDisk].Items, it)
		case engine.CategoryNetwork:
			sec[SectionNetwork].Items = append(sec[SectionNetwork].Items, it)
		}
	}

	// Informational detail the checker doesn't score directly.
	var totalDiskGB uint64
	for i, core := range snap.CPU.PerCorePercent {
		sec[SectionCPU].Items = append(sec[SectionCPU].Items, Item{
			Label: fmt.Sprintf("Core %d", i), Value: core, Unit: "%",
		})
	}
	if snap.CPU.TempC != nil {
		sec[SectionCPU].Items = append(sec[SectionCPU].Items, Item{Label: "Temp", Value: *snap.CPU.TempC, Unit: "C"})
	}
	if snap.CPU.PackagePowerW != nil {
		sec[SectionCPU].Items = append(sec[SectionCPU].Items, Item{Label: "Package Power", Value: *snap.CPU.PackagePowerW, Unit: "W"})
	}

	sec[SectionRAM].Items = append(sec[SectionRAM].Items,
		Item{Label: "Used", Value: snap.Memory.UsedGB, Unit: "GB"},
		Item{Label: "Total", Value: snap.Memory.TotalGB, Unit: "GB"},
	)
	if snap.Memory.PagesPerSec != nil {
		sec[SectionRAM].Items = append(sec[SectionRAM].Items, Item{Label: "Page Faults/s", Value: *snap.Memory.PagesPerSec})
	}

	for _, d := range snap.Storage.LogicalDisks {
		totalDiskGB += d.TotalBytes / (1024 * 1024 * 1024)
		sec[SectionDisk].Items = append(sec[SectionDisk].Items,
			Item{Label: d.DriveID + " Free", Value: float64(d.FreeBytes) / (1024 * 1024 * 1024), Unit: "GB"},
		)
	}
	if snap.Disk.ReadBytesPerSec != nil {
		sec[SectionDisk].Items = append(sec[SectionDisk].Items, Item{Label: "Read", Value: *snap.Disk.ReadBytesPerSec / (1024 * 1024), Unit: "MB/s"})
	}
	if snap.Disk.WriteBytesPerSec != nil {
		sec[SectionDisk].Items = append(sec[SectionDisk].Items, Item{Label: "Write", Value: *snap.Disk.WriteBytesPerSec / (1024 * 1024), Unit: "MB/s"})
	}

	for _, nic := range snap.Network.Interfaces {
		label := nic.Name
		if len(nic.IPs) > 0 {
			label = nic.Name + " " + nic.IPs[0]
		}
		sec[SectionNetwork].Items = append(sec[SectionNetwork].Items, Item{Label: label, Note: nic.Media})
	}
	if snap.Network.RxBytesPerSec != nil {
		sec[SectionNetwork].Items = append(sec[SectionNetwork].Items, Item{Label: "Rx", Value: *snap.Network.RxBytesPerSec / (1024 * 1024), Unit: "MB/s"})
	}
	if snap.Network.TxBytesPerSec != nil {
		sec[SectionNetwork].Items = append(sec[SectionNetwork].Items, Item{Label: "Tx", Value: *snap.Network.TxBytesPerSec / (1024 * 1024), Unit: "MB/s"})
	}
	if snap.PublicNet.IP != "" {
		sec[SectionNetwork].Items = append(sec[SectionNetwork].Items, Item{Label: "Public IP", Note: snap.PublicNet.IP + " " + snap.PublicNet.ISP})
	}

	return DashboardView{
		Sections: []Section{
			*sec[SectionCPU],
			*sec[SectionRAM],
			*sec[SectionDisk],
			*sec[SectionNetwork],
		},
		TotalRAMGB:  int(snap.Memory.TotalGB),
		TotalDiskGB: totalDiskGB,
	}
}

func (v DashboardView) SectionByID(id string) *Section {
	for i := range v.Sections {
		if v.Sections[i].ID == id {
			return &v.Sections[i]
		}
	}
	return nil
}

func (s Section) ItemByKey(key string) *Item {
	for i := range s.Items {
		if s.Items[i].Key == key {
			return &s.Items[i]
		}
	}
	return nil
}
