package models

// DeviceType categorizes a discovered network device.
type DeviceType string

const (
	DeviceTypeRouter  DeviceType = "router"
	DeviceTypeServer  DeviceType = "server"
	DeviceTypeDesktop DeviceType = "desktop"
	DeviceTypeLaptop  DeviceType = "laptop"
	DeviceTypePhone   DeviceType = "phone"
	DeviceTypePrinter DeviceType = "printer"
	DeviceTypeCamera  DeviceType = "camera"
	DeviceTypeUnknown DeviceType = "unknown"
)

// DeviceStatus represents the reachability state of a device.
type DeviceStatus string

const (
	DeviceStatusOnline  DeviceStatus = "online"
	DeviceStatusOffline DeviceStatus = "offline"
)

// MACUnknown is the placeholder MAC address for devices whose link-layer
// address could not be resolved from the neighbor table.
const MACUnknown = "Unknown"

// Device is a single entry in a sweep result. Identity is the IP's last
// octet within the current sweep; devices are rebuilt on every sweep and
// never persisted.
type Device struct {
	ID     int          `json:"id"`
	Name   string       `json:"name"`
	IP     string       `json:"ip"`
	MAC    string       `json:"mac"`
	Type   DeviceType   `json:"type"`
	Status DeviceStatus `json:"status"`
	Signal int          `json:"signal"`
}

// ClampSignal bounds a synthetic signal value to [0,100].
func ClampSignal(signal int) int {
	if signal < 0 {
		return 0
	}
	if signal > 100 {
		return 100
	}
	return signal
}
