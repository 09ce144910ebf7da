//go:build windows

package sensors

import "github.com/yusufpapurcu/wmi"

// win32PerfDisk mirrors Win32_PerfFormattedData_PerfDisk_PhysicalDisk,
// queried per physical instance; the "_Total" pseudo-instance is always
// filtered out and results are summed across the remaining rows (§4.A).
type win32PerfDisk struct {
	Name                string
	DiskReadsPersec     uint64
	DiskWritesPersec    uint64
	CurrentDiskQueueLength uint64
}

// win32PerfNet mirrors Win32_PerfFormattedData_Tcpip_NetworkInterface,
// with loopback interfaces filtered out per §4.A.
type win32PerfNet struct {
	Name                     string
	PacketsReceivedErrors    uint64
	PacketsOutboundErrors    uint64
	PacketsReceivedDiscarded uint64
}

// win32PerfMem mirrors Win32_PerfFormattedData_PerfOS_Memory, a singleton
// class (no per-instance filtering needed).
type win32PerfMem struct {
	CacheBytes          uint64
	CommittedBytes      uint64
	CommitLimit         uint64
	PoolPagedBytes      uint64
	PoolNonpagedBytes   uint64
	PagesPersec         uint64
	PageReadsPersec     uint64
	PageWritesPersec    uint64
	PageFaultsPersec    uint64
}

func queryPerfCounters() (PerfCounters, error) {
	var disks []win32PerfDisk
	if err := wmi.Query("SELECT Name, DiskReadsPersec, DiskWritesPersec, CurrentDiskQueueLength FROM Win32_PerfFormattedData_PerfDisk_PhysicalDisk", &disks); err != nil {
		return PerfCounters{}, err
	}
	var nets []win32PerfNet
	if err := wmi.Query("SELECT Name, PacketsReceivedErrors, PacketsOutboundErrors, PacketsReceivedDiscarded FROM Win32_PerfFormattedData_Tcpip_NetworkInterface", &nets); err != nil {
		return PerfCounters{}, err
	}
	var mems []win32PerfMem
	if err := wmi.Query("SELECT CacheBytes, CommittedBytes, CommitLimit, PoolPagedBytes, PoolNonpagedBytes, PagesPersec, PageReadsPersec, PageWritesPersec, PageFaultsPersec FROM Win32_PerfFormattedData_PerfOS_Memory", &mems); err != nil {
		return PerfCounters{}, err
	}

	var pc PerfCounters
	for _, d := range disks {
		if d.Name == "_Total" {
			continue
		}
		pc.DiskReadsPerSec += float64(d.DiskReadsPersec)
		pc.DiskWritesPerSec += float64(d.DiskWritesPersec)
		pc.DiskQueueLength += float64(d.CurrentDiskQueueLength)
	}
	for _, n := range nets {
		if isLoopback(n.Name) {
			continue
		}
		pc.NetErrorsInPerSec += float64(n.PacketsReceivedErrors)
		pc.NetErrorsOutPerSec += float64(n.PacketsOutboundErrors)
		pc.NetDiscardsPerSec += float64(n.PacketsReceivedDiscarded)
	}
	if len(mems) > 0 {
		m := mems[0]
		pc.MemCacheBytes = float64(m.CacheBytes)
		pc.MemCommittedBytes = float64(m.CommittedBytes)
		pc.MemCommitLimitBytes = float64(m.CommitLimit)
		pc.MemPoolPagedBytes = float64(m.PoolPagedBytes)
		pc.MemPoolNonPagedBytes = float64(m.PoolNonpagedBytes)
		pc.MemPagesPerSec = float64(m.PagesPersec)
		pc.MemPageReadsPerSec = float64(m.PageReadsPersec)
		pc.MemPageWritesPerSec = float64(m.PageWritesPersec)
		pc.MemPageFaultsPerSec = float64(m.PageFaultsPersec)
	}

	return pc, nil
}
