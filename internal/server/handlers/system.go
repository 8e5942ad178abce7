package handlers

import (
	"net/http"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"runboard/pkg/api"
)

// GetSystemStats handles GET /api/system.
// Memory stats are required; CPU and uptime are best-effort and report
// zero when the platform won't provide them.
func (h *Handlers) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		h.log(r).Error("failed to read memory stats", "error", err)
		h.httpError(w, "Failed to read system stats", http.StatusInternalServerError)
		return
	}

	hostname, _ := os.Hostname()

	stats := api.SystemStats{
		Hostname:          hostname,
		MemoryTotal:       vm.Total,
		MemoryAvailable:   vm.Available,
		MemoryUsedPercent: vm.UsedPercent,
		Goroutines:        runtime.NumGoroutine(),
		RunningJobs:       h.registry.RunningCount(),
		TotalJobs:         h.registry.Len(),
	}

	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		stats.CPUPercent = pcts[0]
	}
	if up, err := host.Uptime(); err == nil {
		stats.UptimeSeconds = up
	}

	h.respondJson(w, http.StatusOK, stats)
}
