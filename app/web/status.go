package web

import (
	"net/http"
	"os"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/careerhub/jobboard/app/store/enums"
)

// StatusResponse is the JSON response for /api/v1/status
type StatusResponse struct {
	Version   string      `json:"version"`
	Hostname  string      `json:"hostname"`
	Uptime    string      `json:"uptime"`
	Stats     StatusStats `json:"stats"`
	System    SystemInfo  `json:"system"`
	Timestamp time.Time   `json:"timestamp"`
}

// StatusStats counts postings by status
type StatusStats struct {
	Total    int `json:"total"`
	Open     int `json:"open"`
	Closed   int `json:"closed"`
	Archived int `json:"archived"`
}

// SystemInfo reports host-level metrics for the about view
type SystemInfo struct {
	MemUsedPercent float64 `json:"mem_used_percent"`
	LoadAvg1       float64 `json:"load_avg_1"`
}

// handleStatus returns posting counts plus host info - designed for
// CLI/jq consumption and the UI about modal
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	jobs, err := s.store.List()
	if err != nil {
		log.Printf("[ERROR] failed to list jobs for status: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to load jobs")
		return
	}

	stats := StatusStats{Total: len(jobs)}
	for _, job := range jobs {
		switch job.Status {
		case enums.StatusOpen:
			stats.Open++
		case enums.StatusClosed:
			stats.Closed++
		case enums.StatusArchived:
			stats.Archived++
		}
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	resp := StatusResponse{
		Version:   s.version,
		Hostname:  hostname,
		Uptime:    time.Since(s.startTime).Truncate(time.Second).String(),
		Stats:     stats,
		Timestamp: time.Now(),
	}

	// host metrics are nice-to-have, failures don't fail the endpoint
	if v, err := mem.VirtualMemory(); err == nil {
		resp.System.MemUsedPercent = v.UsedPercent
	} else {
		log.Printf("[WARN] failed to get memory info: %v", err)
	}
	if l, err := load.Avg(); err == nil {
		resp.System.LoadAvg1 = l.Load1
	}

	s.writeJSON(w, http.StatusOK, resp)
}
