package observability

import (
	"context"
	"log/slog"
	"os"
	goruntime "runtime"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"

	"radchat/domain/event"
)

// RoomStats is the snapshot served on the metrics endpoint.
type RoomStats struct {
	MessagesTotal uint64 `json:"messages_total"`
	RobotMessages uint64 `json:"robot_messages"`
	HumanMessages uint64 `json:"human_messages"`
	Joins         uint64 `json:"joins"`
	Leaves        uint64 `json:"leaves"`
	SystemNotices uint64 `json:"system_notices"`

	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
	RssBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	PidStatus  string  `json:"pid_status"`
}

// Monitor counts room activity and samples process health. It sits on
// the bus as a permanent sink, counting is lock free.
type Monitor struct {
	log *slog.Logger

	messagesTotal atomic.Uint64
	robotMessages atomic.Uint64
	joins         atomic.Uint64
	leaves        atomic.Uint64
	systemNotices atomic.Uint64

	proc *process.Process
}

func NewMonitor(log *slog.Logger) *Monitor {
	// Self inspection can fail on exotic platforms, the monitor then
	// serves room counters only.
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Process introspection unavailable", slog.Any("error", err))
		proc = nil
	}
	return &Monitor{log: log, proc: proc}
}

// Consume counts one room event. Never fails, never blocks.
func (m *Monitor) Consume(_ context.Context, e event.RoomEvent) error {
	switch evt := e.(type) {
	case event.Message:
		m.messagesTotal.Add(1)
		if evt.Robot {
			m.robotMessages.Add(1)
		}
	case event.Joined:
		m.joins.Add(1)
	case event.Left:
		m.leaves.Add(1)
	case event.SystemNotice:
		m.systemNotices.Add(1)
	}
	return nil
}

// Snapshot merges the room counters with live process metrics.
func (m *Monitor) Snapshot() RoomStats {
	total := m.messagesTotal.Load()
	robots := m.robotMessages.Load()
	stats := RoomStats{
		MessagesTotal: total,
		RobotMessages: robots,
		HumanMessages: total - robots,
		Joins:         m.joins.Load(),
		Leaves:        m.leaves.Load(),
		SystemNotices: m.systemNotices.Load(),
	}

	var memStats goruntime.MemStats
	goruntime.ReadMemStats(&memStats)
	stats.AllocMemMb = memStats.Alloc / 1024 / 1024
	stats.NumGC = memStats.NumGC

	if m.proc != nil {
		if memInfo, err := m.proc.MemoryInfo(); err == nil {
			stats.RssBytes = memInfo.RSS
		}
		if cpu, err := m.proc.CPUPercent(); err == nil {
			stats.CPUPercent = cpu
		}
		if status, err := m.proc.Status(); err == nil {
			stats.PidStatus = status
		}
	}
	return stats
}

// HealthWorker periodically writes a health line, useful when no one
// watches the metrics endpoint. Supervised like every other worker.
type HealthWorker struct {
	monitor  *Monitor
	interval time.Duration
}

func NewHealthWorker(monitor *Monitor, interval time.Duration) *HealthWorker {
	return &HealthWorker{monitor: monitor, interval: interval}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := w.monitor.Snapshot()
			w.monitor.log.Debug("Room health",
				slog.Uint64("messages", stats.MessagesTotal),
				slog.Uint64("rss", stats.RssBytes),
				slog.Float64("cpu", stats.CPUPercent))
		}
	}
}
