package models

// PerformanceGrade is a letter grade derived from the performance score.
type PerformanceGrade string

const (
	GradeA PerformanceGrade = "A"
	GradeB PerformanceGrade = "B"
	GradeC PerformanceGrade = "C"
	GradeD PerformanceGrade = "D"
)

// HealthRating summarizes the overall network condition.
type HealthRating string

const (
	HealthExcellent HealthRating = "excellent"
	HealthGood      HealthRating = "good"
	HealthFair      HealthRating = "fair"
	HealthPoor      HealthRating = "poor"
)

// NetworkAnalysis is the structured output of the report assembler.
// It is derived purely from a device list and a performance sample and is
// recomputed on demand, never persisted.
type NetworkAnalysis struct {
	TotalDevices     int              `json:"total_devices"`
	OnlineDevices    int              `json:"online_devices"`
	OfflineDevices   int              `json:"offline_devices"`
	Issues           []string         `json:"issues"`
	Recommendations  []string         `json:"recommendations"`
	SecurityAlerts   []string         `json:"security_alerts"`
	PerformanceScore int              `json:"performance_score"`
	PerformanceGrade PerformanceGrade `json:"performance_grade"`
	OverallHealth    HealthRating     `json:"overall_health"`
}
