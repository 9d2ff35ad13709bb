package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/lanscope/lanscope/pkg/models"
)

// ReportData is everything the rendered report shows.
type ReportData struct {
	GeneratedAt time.Time
	RequestedBy string

	LocalIP    string
	LocalMAC   string
	Interfaces []models.NetworkInterface

	Devices     []models.Device
	Fallback    bool
	Performance Performance
	Analysis    models.NetworkAnalysis
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"timefmt": func(t time.Time) string { return t.Format("2006-01-02 15:04:05 MST") },
	"mbps":    func(v float64) string { return fmt.Sprintf("%.2f Mbps", v) },
	"ms":      func(v float64) string { return fmt.Sprintf("%.2f ms", v) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>LANScope Network Report</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 60rem; color: #1a1a2e; }
h1 { border-bottom: 2px solid #0f3460; padding-bottom: .5rem; }
h2 { color: #0f3460; margin-top: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: .4rem .8rem; border-bottom: 1px solid #ddd; }
th { background: #f4f6fb; }
.grade { font-size: 2rem; font-weight: bold; }
.health-excellent { color: #2e7d32; }
.health-good { color: #558b2f; }
.health-fair { color: #ef6c00; }
.health-poor { color: #c62828; }
.offline { color: #c62828; }
.muted { color: #666; font-size: .9rem; }
ul { margin: .5rem 0; }
</style>
</head>
<body>
<h1>LANScope Network Report</h1>
<p class="muted">Generated {{timefmt .GeneratedAt}}{{if .RequestedBy}} for {{.RequestedBy}}{{end}}</p>

<h2>Summary</h2>
<p>
Score: <span class="grade">{{.Analysis.PerformanceScore}}</span> / 100
(grade {{.Analysis.PerformanceGrade}}),
overall health <span class="health-{{.Analysis.OverallHealth}}">{{.Analysis.OverallHealth}}</span>.
</p>
<p>{{.Analysis.TotalDevices}} devices: {{.Analysis.OnlineDevices}} online, {{.Analysis.OfflineDevices}} offline.
{{if .Fallback}}<em>Discovery fell back to synthesized entries; the subnet did not answer probes.</em>{{end}}</p>

<h2>Performance</h2>
<p>Bandwidth estimate {{mbps .Performance.AvgBandwidthMbps}}, gateway latency {{ms .Performance.AvgLatencyMs}}.</p>

<h2>Devices</h2>
<table>
<tr><th>IP</th><th>Name</th><th>Type</th><th>MAC</th><th>Status</th><th>Signal</th></tr>
{{range .Devices}}
<tr>
<td>{{.IP}}</td><td>{{.Name}}</td><td data-icon="{{.Type.Icon}}">{{.Type}}</td><td>{{.MAC}}</td>
<td{{if eq .Status "offline"}} class="offline"{{end}}>{{.Status}}</td>
<td>{{.Signal}}</td>
</tr>
{{end}}
</table>

{{if .Analysis.Issues}}
<h2>Issues</h2>
<ul>{{range .Analysis.Issues}}<li>{{.}}</li>{{end}}</ul>
{{end}}

{{if .Analysis.SecurityAlerts}}
<h2>Security Alerts</h2>
<ul>{{range .Analysis.SecurityAlerts}}<li>{{.}}</li>{{end}}</ul>
{{end}}

{{if .Analysis.Recommendations}}
<h2>Recommendations</h2>
<ul>{{range .Analysis.Recommendations}}<li>{{.}}</li>{{end}}</ul>
{{end}}

<h2>Host</h2>
<p>Local address {{.LocalIP}} ({{.LocalMAC}})</p>
{{if .Interfaces}}
<table>
<tr><th>Interface</th><th>IP</th><th>Netmask</th><th>Up</th><th>Speed</th></tr>
{{range .Interfaces}}
<tr><td>{{.Name}}</td><td>{{.IP}}</td><td>{{.Netmask}}</td><td>{{.Up}}</td><td>{{if gt .SpeedMbps 0}}{{.SpeedMbps}} Mbps{{else}}-{{end}}</td></tr>
{{end}}
</table>
{{end}}
</body>
</html>
`))

// renderReport renders the full HTML report.
func renderReport(data ReportData) (string, error) {
	var sb strings.Builder
	if err := reportTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return sb.String(), nil
}

var errorTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>LANScope Report Error</title></head>
<body style="font-family: sans-serif; margin: 2rem auto; max-width: 40rem;">
<h1>Report generation failed</h1>
<p>The network report could not be assembled. The collected data may be
incomplete; try refreshing the dashboard and generating the report again.</p>
<p style="color:#666">{{.}}</p>
</body>
</html>
`))

// renderErrorReport produces the degraded error page. It cannot fail: if
// even the error template breaks, a plain-text page is returned.
func renderErrorReport(detail string) string {
	var sb strings.Builder
	if err := errorTemplate.Execute(&sb, detail); err != nil {
		return "<html><body><h1>Report generation failed</h1></body></html>"
	}
	return sb.String()
}
