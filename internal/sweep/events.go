package sweep

import "github.com/lanscope/lanscope/pkg/models"

// Event topics published by the sweep module.
const (
	TopicSweepStarted   = "sweep.started"
	TopicDeviceFound    = "sweep.device_found"
	TopicSweepCompleted = "sweep.completed"
)

// DeviceFoundEvent is the payload for TopicDeviceFound events.
type DeviceFoundEvent struct {
	SweepID string        `json:"sweep_id"`
	Device  models.Device `json:"device"`
}

// SweepCompletedEvent is the payload for TopicSweepCompleted events.
type SweepCompletedEvent struct {
	Result *models.SweepResult `json:"result"`
}
