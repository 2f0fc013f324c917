package observability

import (
	"chat-room/contract"
	"chat-room/domain"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

// SweepStats aggregates what the sweeps did since the process started.
type SweepStats struct {
	Sweeps        uint64    `json:"sweeps"`
	FailedSweeps  uint64    `json:"failed_sweeps"`
	Evicted       uint64    `json:"evicted"`
	FailedEvicts  uint64    `json:"failed_evictions"`
	LastSweepAt   time.Time `json:"last_sweep_at"`
	LastSweepFail string    `json:"last_sweep_error,omitempty"`
}

// ProcessStats is a snapshot of the running server process.
type ProcessStats struct {
	PID        int32   `json:"pid"`
	RAMBytes   uint64  `json:"ram_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Goroutines int     `json:"goroutines"`
	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
}

// MonitoringManager keeps sweep counters and reads process metrics on demand.
type MonitoringManager struct {
	log     *slog.Logger
	mu      sync.RWMutex
	now     func() time.Time
	sweeps  SweepStats
	process *process.Process
}

func NewMonitoringManager(log *slog.Logger, now func() time.Time) *MonitoringManager {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Process metrics unavailable", "err", err)
	}
	return &MonitoringManager{log: log, now: now, process: p}
}

// ObserveSweep records the outcome of one sweep.
func (m *MonitoringManager) ObserveSweep(report domain.SweepReport, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweeps.Sweeps++
	m.sweeps.LastSweepAt = m.now()
	if err != nil {
		m.sweeps.FailedSweeps++
		m.sweeps.LastSweepFail = err.Error()
		return
	}
	m.sweeps.LastSweepFail = ""
	m.sweeps.Evicted += uint64(len(report.Evicted))
	m.sweeps.FailedEvicts += uint64(len(report.Failed))
}

func (m *MonitoringManager) Sweeps() SweepStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sweeps
}

// Process returns the current process metrics.
// gopsutil figures are left at zero when the OS refuses to give them.
func (m *MonitoringManager) Process() ProcessStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	stats := ProcessStats{
		PID:        int32(os.Getpid()),
		Goroutines: runtime.NumGoroutine(),
		AllocMemMb: mem.Alloc / 1024 / 1024,
		NumGC:      mem.NumGC,
	}
	if m.process == nil {
		return stats
	}

	if memInfo, err := m.process.MemoryInfo(); err == nil {
		stats.RAMBytes = memInfo.RSS
	} else {
		m.log.Debug("Failed to read memory info", "err", err)
	}
	if cpu, err := m.process.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	} else {
		m.log.Debug("Failed to read cpu percent", "err", err)
	}
	return stats
}

// SweepObservers fans a sweep outcome out to several observers.
type SweepObservers []contract.SweepObserver

func (o SweepObservers) ObserveSweep(report domain.SweepReport, err error) {
	for _, observer := range o {
		observer.ObserveSweep(report, err)
	}
}
