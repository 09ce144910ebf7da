//go:build windows

package sensors

import (
	"github.com/yusufpapurcu/wmi"

	"sysmetryd/internal/model"
)

// msAcpiThermalZoneTemperature mirrors MSAcpi_ThermalZoneTemperature
// (namespace root/wmi): CurrentTemperature is tenths of a Kelvin.
type msAcpiThermalZoneTemperature struct {
	CurrentTemperature uint32
}

// win32Fan mirrors Win32_Fan; most hardware doesn't expose a live RPM
// here, so DesiredSpeed is read as a best-effort approximation, matching
// the original implementation's own comment on this same limitation.
type win32Fan struct {
	DesiredSpeed uint64
}

func queryThermalFan() (ThermalFan, error) {
	var tempC *float64
	var zones []msAcpiThermalZoneTemperature
	if err := wmi.QueryNamespace("SELECT CurrentTemperature FROM MSAcpi_ThermalZoneTemperature", &zones, "root/wmi"); err == nil {
		var sum float64
		var n int
		for _, z := range zones {
			if z.CurrentTemperature == 0 {
				continue
			}
			c := float64(z.CurrentTemperature)/10.0 - 273.15
			if model.ValidTemp(c) {
				sum += c
				n++
			}
		}
		if n > 0 {
			avg := sum / float64(n)
			tempC = &avg
		}
	}

	var fanRPM *float64
	var fans []win32Fan
	if err := wmi.Query("SELECT DesiredSpeed FROM Win32_Fan", &fans); err == nil {
		var best uint64
		for _, f := range fans {
			if f.DesiredSpeed > best {
				best = f.DesiredSpeed
			}
		}
		if best > 0 {
			v := float64(best)
			fanRPM = &v
		}
	}

	if tempC == nil && fanRPM == nil {
		return ThermalFan{}, errNoThermalData
	}
	return ThermalFan{CPUTempC: tempC, FanRPM: fanRPM}, nil
}
