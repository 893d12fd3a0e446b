package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/pbnjay/memory"
	"github.com/prometheus/procfs"
)

// statsResponse is the /debug/stats payload.
type statsResponse struct {
	Games      int `json:"games"`
	Goroutines int `json:"goroutines"`

	SystemTotalMemory uint64 `json:"systemTotalMemory"`
	SystemFreeMemory  uint64 `json:"systemFreeMemory"`

	// Process figures come from procfs and are zero on platforms without it.
	ResidentMemory int     `json:"residentMemory,omitempty"`
	CPUSeconds     float64 `json:"cpuSeconds,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	games := len(s.games)
	s.mu.RUnlock()

	resp := statsResponse{
		Games:             games,
		Goroutines:        runtime.NumGoroutine(),
		SystemTotalMemory: memory.TotalMemory(),
		SystemFreeMemory:  memory.FreeMemory(),
		Timestamp:         time.Now(),
	}

	if proc, err := procfs.Self(); err == nil {
		if stat, err := proc.Stat(); err == nil {
			resp.ResidentMemory = stat.ResidentMemory()
			resp.CPUSeconds = stat.CPUTime()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
