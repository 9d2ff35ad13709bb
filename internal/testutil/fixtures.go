package testutil

import (
	"github.com/lanscope/lanscope/pkg/models"
)

// NewDevice returns a Device with sensible defaults, suitable for test fixtures.
// Override individual fields via options as needed.
func NewDevice(opts ...func(*models.Device)) models.Device {
	d := models.Device{
		ID:     100,
		Name:   "test-device",
		IP:     "192.168.1.100",
		MAC:    "00:11:22:33:44:55",
		Type:   models.DeviceTypeDesktop,
		Status: models.DeviceStatusOnline,
		Signal: 90,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithName sets the device name.
func WithName(name string) func(*models.Device) {
	return func(d *models.Device) { d.Name = name }
}

// WithIP sets the device's IP address and ID to the address's last octet.
func WithIP(ip string, octet int) func(*models.Device) {
	return func(d *models.Device) {
		d.IP = ip
		d.ID = octet
	}
}

// WithMAC sets the device's MAC address.
func WithMAC(mac string) func(*models.Device) {
	return func(d *models.Device) { d.MAC = mac }
}

// WithStatus sets the device status.
func WithStatus(s models.DeviceStatus) func(*models.Device) {
	return func(d *models.Device) { d.Status = s }
}

// WithType sets the device type.
func WithType(dt models.DeviceType) func(*models.Device) {
	return func(d *models.Device) { d.Type = dt }
}

// WithSignal sets the device's signal value.
func WithSignal(signal int) func(*models.Device) {
	return func(d *models.Device) { d.Signal = signal }
}
