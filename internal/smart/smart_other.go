//go:build !windows

package smart

import (
	"fmt"

	"sysmetryd/internal/model"
)

func wmiCollect() ([]model.SmartHealth, error) {
	return nil, fmt.Errorf("smart: wmi backend is windows-only")
}
