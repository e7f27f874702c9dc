package health

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostReader exposes host-level utilization readings. Both the gopsutil
// implementation and test fakes satisfy it.
type HostReader interface {
	CPUPercent() (float64, error)
	MemoryPercent() (float64, error)
	DiskPercent() (float64, error)
	UptimeSeconds() (uint64, error)
}

// GopsutilReader reads utilization from the local host.
type GopsutilReader struct {
	DiskPath string // mount point measured for disk usage, "/" by default
}

func NewGopsutilReader() *GopsutilReader {
	return &GopsutilReader{DiskPath: "/"}
}

func (r *GopsutilReader) CPUPercent() (float64, error) {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return 0, fmt.Errorf("failed to read cpu utilization: %w", err)
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("no cpu utilization reported")
	}
	return percents[0], nil
}

func (r *GopsutilReader) MemoryPercent() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("failed to read memory utilization: %w", err)
	}
	return vm.UsedPercent, nil
}

func (r *GopsutilReader) DiskPercent() (float64, error) {
	path := r.DiskPath
	if path == "" {
		path = "/"
	}
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read disk utilization: %w", err)
	}
	return usage.UsedPercent, nil
}

func (r *GopsutilReader) UptimeSeconds() (uint64, error) {
	uptime, err := host.Uptime()
	if err != nil {
		return 0, fmt.Errorf("failed to read host uptime: %w", err)
	}
	return uptime, nil
}
