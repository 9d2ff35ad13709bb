// Package report assembles the network analysis and the rendered status
// report. Analysis is a pure function over a device list and a performance
// reading; nothing here touches the network.
package report

import (
	"fmt"
	"strings"

	"github.com/lanscope/lanscope/pkg/models"
)

// Performance is the aggregated performance input to Analyze, typically
// averaged over the recent sample history.
type Performance struct {
	AvgBandwidthMbps float64 `json:"avg_bandwidth_mbps"`
	AvgLatencyMs     float64 `json:"avg_latency_ms"`
}

// Analyze scores the network and derives issues, recommendations and
// security alerts. It is pure and deterministic: the same inputs always
// produce the same analysis, in the same order.
func Analyze(devices []models.Device, perf Performance) models.NetworkAnalysis {
	analysis := models.NetworkAnalysis{
		TotalDevices:    len(devices),
		Issues:          []string{},
		Recommendations: []string{},
		SecurityAlerts:  []string{},
	}

	var online, offline []models.Device
	for _, d := range devices {
		switch d.Status {
		case models.DeviceStatusOnline:
			online = append(online, d)
		case models.DeviceStatusOffline:
			offline = append(offline, d)
		}
	}
	analysis.OnlineDevices = len(online)
	analysis.OfflineDevices = len(offline)

	if len(offline) > 0 {
		analysis.Issues = append(analysis.Issues,
			fmt.Sprintf("%d devices offline", len(offline)))
		analysis.Recommendations = append(analysis.Recommendations,
			"Check connectivity: "+joinNames(offline, 3))
	}

	// The low-signal issue considers reachable devices only; the score's
	// signal component averages over the whole inventory so dead devices
	// drag it down.
	if len(online) > 0 {
		var sum int
		for _, d := range online {
			sum += d.Signal
		}
		if float64(sum)/float64(len(online)) < 70 {
			analysis.Issues = append(analysis.Issues, "Weak average signal")
			analysis.Recommendations = append(analysis.Recommendations,
				"Improve router placement")
		}
	}

	var avgSignal float64
	if len(devices) > 0 {
		var sum int
		for _, d := range devices {
			sum += d.Signal
		}
		avgSignal = float64(sum) / float64(len(devices))
	}

	if perf.AvgBandwidthMbps < 10 {
		analysis.Issues = append(analysis.Issues, "Insufficient bandwidth")
		analysis.Recommendations = append(analysis.Recommendations,
			"Contact your internet service provider")
	}
	if perf.AvgLatencyMs > 100 {
		analysis.Issues = append(analysis.Issues, "High network latency")
		analysis.Recommendations = append(analysis.Recommendations,
			"Optimize network configuration")
	}

	var weak []models.Device
	for _, d := range online {
		if d.Signal < 50 {
			weak = append(weak, d)
		}
	}
	if len(weak) > 0 {
		analysis.Recommendations = append(analysis.Recommendations,
			"Low signal: "+joinNames(weak, 2)+", move closer to the router")
	}

	var unknown int
	for _, d := range devices {
		if d.Type == models.DeviceTypeUnknown {
			unknown++
		}
	}
	if unknown > 3 {
		analysis.SecurityAlerts = append(analysis.SecurityAlerts,
			fmt.Sprintf("%d unidentified devices", unknown))
		analysis.Recommendations = append(analysis.Recommendations,
			"Review devices that could not be identified")
	}

	analysis.PerformanceScore = performanceScore(
		perf.AvgBandwidthMbps, perf.AvgLatencyMs, avgSignal,
		analysis.OnlineDevices, analysis.TotalDevices)
	analysis.PerformanceGrade = performanceGrade(analysis.PerformanceScore)
	analysis.OverallHealth = overallHealth(&analysis, perf)

	if analysis.OverallHealth == models.HealthExcellent {
		analysis.Recommendations = append(analysis.Recommendations,
			"Network is operating optimally")
	}

	return analysis
}

// performanceScore weighs bandwidth (40), latency (30), signal (20) and
// connectivity (10) into a 0-100 score.
func performanceScore(bandwidth, latency, signal float64, online, total int) int {
	var score int

	switch {
	case bandwidth >= 50:
		score += 40
	case bandwidth >= 25:
		score += 30
	case bandwidth >= 10:
		score += 20
	default:
		score += 10
	}

	switch {
	case latency <= 20:
		score += 30
	case latency <= 50:
		score += 25
	case latency <= 100:
		score += 15
	default:
		score += 5
	}

	switch {
	case signal >= 80:
		score += 20
	case signal >= 60:
		score += 15
	case signal >= 40:
		score += 10
	default:
		score += 5
	}

	if total > 0 {
		ratio := float64(online) / float64(total)
		switch {
		case ratio >= 0.9:
			score += 10
		case ratio >= 0.7:
			score += 8
		case ratio >= 0.5:
			score += 5
		default:
			score += 2
		}
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

func performanceGrade(score int) models.PerformanceGrade {
	switch {
	case score >= 85:
		return models.GradeA
	case score >= 70:
		return models.GradeB
	case score >= 55:
		return models.GradeC
	default:
		return models.GradeD
	}
}

// overallHealth is evaluated after the issue list is final. The fair/good
// boundary is a literal issue count, not a severity judgment.
func overallHealth(a *models.NetworkAnalysis, perf Performance) models.HealthRating {
	switch {
	case len(a.Issues) == 0:
		return models.HealthExcellent
	case perf.AvgBandwidthMbps < 5 || perf.AvgLatencyMs > 200 || a.OnlineDevices == 0:
		return models.HealthPoor
	case len(a.Issues) > 3:
		return models.HealthFair
	default:
		return models.HealthGood
	}
}

// joinNames lists up to limit device names, comma separated.
func joinNames(devices []models.Device, limit int) string {
	if len(devices) < limit {
		limit = len(devices)
	}
	names := make([]string, 0, limit)
	for _, d := range devices[:limit] {
		names = append(names, d.Name)
	}
	return strings.Join(names, ", ")
}
