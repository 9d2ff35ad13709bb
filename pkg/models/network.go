package models

import "time"

// NetworkInterface describes an IPv4 interface on the local host.
type NetworkInterface struct {
	Name      string `json:"name"`
	IP        string `json:"ip"`
	Netmask   string `json:"netmask"`
	Up        bool   `json:"up"`
	SpeedMbps int    `json:"speed_mbps"`
}

// PerformanceSample is one bandwidth/latency measurement. Bandwidth is a
// coarse heuristic, not a throughput measurement; see the perf module.
type PerformanceSample struct {
	ID            int64     `json:"id,omitempty"`
	BandwidthMbps float64   `json:"bandwidth_mbps"`
	LatencyMs     float64   `json:"latency_ms"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// SweepResult holds the outcome of one subnet sweep.
type SweepResult struct {
	ID         string    `json:"id"`
	Prefix     string    `json:"prefix"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	Devices    []Device  `json:"devices"`
	Total      int       `json:"total"`
	Fallback   bool      `json:"fallback"`
	DurationMs float64   `json:"duration_ms"`
}
