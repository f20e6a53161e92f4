package termini

import (
	"path/filepath"

	"github.com/shirou/gopsutil/v4/process"
)

// processName returns the executable name of a running process, or "" when
// it cannot be determined.
func processName(pid int) string {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, err := p.Name()
	if err != nil || name == "" {
		return ""
	}
	return filepath.Base(name)
}
