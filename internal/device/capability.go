package device

import "time"

// Capability is a named ability an extension may support. Capabilities
// pair with the controller interfaces below: implementing the interface
// states what an extension *can* do, the capability tag states what it
// *currently claims* to do.
type Capability string

// Capability constants.
const (
	CapabilityLightController            Capability = "light_controller"
	CapabilityLightBrightnessController  Capability = "light_brightness_controller"
	CapabilityLightTemperatureController Capability = "light_temperature_controller"
	CapabilityAmbientLightSensor         Capability = "ambient_light_sensor"
	CapabilitySwitchController           Capability = "switch_controller"
	CapabilityHubInterface               Capability = "hub_interface"
)

// AllCapabilities returns all valid capability values.
func AllCapabilities() []Capability {
	return []Capability{
		CapabilityLightController,
		CapabilityLightBrightnessController,
		CapabilityLightTemperatureController,
		CapabilityAmbientLightSensor,
		CapabilitySwitchController,
		CapabilityHubInterface,
	}
}

// DynamicCapabilities is implemented by extensions whose capability set
// can change at runtime (handshake-negotiated devices). The registry's
// capability queries consult ConformsTo for these extensions; an
// extension that does not implement DynamicCapabilities is assumed to
// support everything its type implements, permanently.
//
// This hybrid rule is deliberate: most device kinds stay cheap (a type
// assertion), while runtime-negotiated devices may opt out of a
// capability without leaving the registry.
type DynamicCapabilities interface {
	// ConformsTo reports whether the extension currently claims the
	// given capability.
	ConformsTo(capability Capability) bool
}

// LightController is the capability interface for on/off light control.
type LightController interface {
	// TurnOnLight issues a fire-and-forget turn-on command.
	TurnOnLight()

	// TurnOffLight issues a fire-and-forget turn-off command.
	TurnOffLight()

	// RequestLightStatus asks the device to report its current status.
	// The reply arrives later through the report path.
	RequestLightStatus()

	// RecordLightStatus records an observed light status.
	RecordLightStatus(status LightStatus, at time.Time)
}

// LightBrightnessController is the capability interface for dimmable lights.
type LightBrightnessController interface {
	// SetLightBrightness issues a command to dim to the given level.
	SetLightBrightness(brightness Brightness)

	// RequestLightBrightness asks the device to report its brightness.
	RequestLightBrightness()

	// RecordLightBrightness records an observed brightness.
	RecordLightBrightness(brightness Brightness, at time.Time)
}

// LightTemperatureController is the capability interface for
// colour-temperature lights.
type LightTemperatureController interface {
	// SetLightTemperature issues a command to change colour temperature.
	SetLightTemperature(temperature Mireds)

	// RequestLightTemperature asks the device to report its colour
	// temperature.
	RequestLightTemperature()

	// RecordLightTemperature records an observed colour temperature.
	RecordLightTemperature(temperature Mireds, at time.Time)
}

// AmbientLightSensor is the capability interface for ambient light sensors.
type AmbientLightSensor interface {
	// RequestAmbientLightReading asks the sensor for a fresh reading.
	RequestAmbientLightReading()

	// RecordAmbientLightReading records an observed reading.
	RecordAmbientLightReading(reading AmbientLight, at time.Time)
}

// SwitchController is the capability interface for physical switches.
type SwitchController interface {
	// RequestSwitchState asks the switch to report its position.
	RequestSwitchState()

	// RecordSwitchState records an observed switch position.
	RecordSwitchState(state SwitchState, at time.Time)
}

// HubInterface is the capability interface for extensions that mirror
// hub state, such as wall panels. The registries deliver change
// notifications to every hub interface after each mutation.
//
// Notifications are dispatched on the shared worker pool: they may
// arrive out of mutation order, but never before the mutation is
// visible to registry reads.
type HubInterface interface {
	// ExtensionDidChange informs the interface that the extension with
	// the given identifier was updated or removed.
	ExtensionDidChange(id Identifier, change Change)

	// RoomDidChange informs the interface that the named room was
	// updated or removed.
	RoomDidChange(name string, change Change)
}
