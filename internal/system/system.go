package system

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Metrics is a point-in-time view of the host and this process, reported
// by the health endpoint.
type Metrics struct {
	CPUUsagePercent    float64 `json:"cpu_usage_percent"`
	MemoryUsagePercent float64 `json:"memory_usage_percent"`
	MemoryUsedBytes    uint64  `json:"memory_used_bytes"`
	MemoryTotalBytes   uint64  `json:"memory_total_bytes"`
	LoadAvg1m          float64 `json:"load_1m"`
	ProcessRSSBytes    uint64  `json:"process_rss_bytes"`
	ProcessThreads     int32   `json:"process_threads"`
	CollectedAt        int64   `json:"collected_at"`
}

// Collect gathers what it can. Individual probes that fail on the host
// platform leave their fields zero.
func Collect() *Metrics {
	m := &Metrics{CollectedAt: time.Now().Unix()}

	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		m.CPUUsagePercent = cpuPercent[0]
	}

	if memStats, err := mem.VirtualMemory(); err == nil {
		m.MemoryUsagePercent = memStats.UsedPercent
		m.MemoryUsedBytes = memStats.Used
		m.MemoryTotalBytes = memStats.Total
	}

	if loadStats, err := load.Avg(); err == nil {
		m.LoadAvg1m = loadStats.Load1
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfo(); err == nil {
			m.ProcessRSSBytes = info.RSS
		}
		if threads, err := proc.NumThreads(); err == nil {
			m.ProcessThreads = threads
		}
	}

	return m
}
