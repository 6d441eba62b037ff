package device

// Service package numbers for the device command protocol. Each
// package groups the services for one capability family; a (package,
// service) pair addresses a handler on the receiving side.
const (
	PackageHub      uint8 = 100
	PackageLighting uint8 = 111
	PackageSensing  uint8 = 112
	PackageSwitch   uint8 = 113
)

// Lighting package services.
const (
	ServiceLightOn                 uint8 = 1
	ServiceLightOff                uint8 = 2
	ServiceLightBrightnessSet      uint8 = 3
	ServiceLightStatusReport       uint8 = 4
	ServiceLightStatusRequest      uint8 = 5
	ServiceLightTemperatureSet     uint8 = 6
	ServiceLightTemperatureRequest uint8 = 7
	ServiceLightBrightnessRequest  uint8 = 12
	ServiceLightBrightnessReport   uint8 = 13
)

// Sensing package services.
const (
	ServiceAmbientLightRequest uint8 = 1
	ServiceAmbientLightReport  uint8 = 2
)

// Switch package services.
const (
	ServiceSwitchStateRequest uint8 = 1
	ServiceSwitchStateReport  uint8 = 2
)

// Hub package services, used to mirror registry changes to hub
// interface devices.
const (
	ServiceHandshake        uint8 = 1
	ServiceExtensionRemoved uint8 = 10
	ServiceExtensionUpdated uint8 = 11
	ServiceRoomRemoved      uint8 = 12
	ServiceRoomUpdated      uint8 = 13
)
