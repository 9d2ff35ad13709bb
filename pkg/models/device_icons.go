package models

// DeviceIcon maps a DeviceType to its icon identifier. Identifiers use
// Lucide icon names (https://lucide.dev) for compatibility with the
// dashboard frontend.
var DeviceIcon = map[DeviceType]string{
	DeviceTypeRouter:  "router",
	DeviceTypeServer:  "server",
	DeviceTypeDesktop: "monitor",
	DeviceTypeLaptop:  "laptop",
	DeviceTypePhone:   "smartphone",
	DeviceTypePrinter: "printer",
	DeviceTypeCamera:  "camera",
	DeviceTypeUnknown: "help-circle",
}

// Icon returns the icon identifier for a DeviceType.
// Returns "help-circle" for unrecognised types.
func (dt DeviceType) Icon() string {
	if icon, ok := DeviceIcon[dt]; ok {
		return icon
	}
	return DeviceIcon[DeviceTypeUnknown]
}
