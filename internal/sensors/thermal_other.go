//go:build !windows

package sensors

func queryThermalFan() (ThermalFan, error) {
	return ThermalFan{}, errNoThermalData
}
