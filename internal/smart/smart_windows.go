//go:build windows

package smart

import (
	"fmt"

	"github.com/yusufpapurcu/wmi"

	"sysmetryd/internal/model"
)

// msStorageDriverFailurePredictStatus mirrors MSStorageDriver_FailurePredictStatus
// (namespace root/wmi), the SMART predict-fail bit most drivers expose.
type msStorageDriverFailurePredictStatus struct {
	InstanceName   string
	PredictFailure bool
}

// win32DiskDrive mirrors the subset of Win32_DiskDrive used as a
// fallback when no driver publishes the SMART WMI class above.
type win32DiskDrive struct {
	PNPDeviceID string
	Status      string
}

// wmiCollect is the SMART Worker's preferred vendor-counter path (§4.I):
// it queries MSStorageDriver_FailurePredictStatus the way the original
// implementation's wmi_list_smart_status does, falling back to
// Win32_DiskDrive.Status (wmi_fallback_disk_status) when the driver
// doesn't expose a predict-fail class at all.
func wmiCollect() ([]model.SmartHealth, error) {
	var rows []msStorageDriverFailurePredictStatus
	err := wmi.QueryNamespace("SELECT InstanceName, PredictFailure FROM MSStorageDriver_FailurePredictStatus", &rows, "root/wmi")
	if err == nil && len(rows) > 0 {
		out := make([]model.SmartHealth, 0, len(rows))
		for _, r := range rows {
			out = append(out, model.SmartHealth{
				Device:      r.InstanceName,
				PredictFail: r.PredictFailure,
			})
		}
		return out, nil
	}

	var disks []win32DiskDrive
	if derr := wmi.Query("SELECT PNPDeviceID, Status FROM Win32_DiskDrive", &disks); derr == nil && len(disks) > 0 {
		out := make([]model.SmartHealth, 0, len(disks))
		for _, d := range disks {
			out = append(out, model.SmartHealth{
				Device:      d.PNPDeviceID,
				PredictFail: d.Status != "" && d.Status != "OK",
			})
		}
		return out, nil
	}

	if err != nil {
		return nil, fmt.Errorf("smart: wmi query failed: %w", err)
	}
	return nil, fmt.Errorf("smart: wmi returned no drives")
}
