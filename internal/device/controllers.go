package device

import (
	"time"

	"github.com/hearthlabs/hearth-core/internal/wire"
)

// Capability implementations for HubExtension.
//
// Every command method guards on the dynamic capability set: a command
// issued to an extension that no longer claims the capability is
// logged and dropped, never surfaced as an error to the caller.
// Record methods are unguarded — an observed value is always recorded.

// TurnOnLight implements LightController.
func (e *HubExtension) TurnOnLight() {
	if !e.ConformsTo(CapabilityLightController) {
		e.log().Debug("attempted to turn on extension that is not a light", "extension", uint64(e.id))
		return
	}
	e.log().Debug("turning light on", "extension", uint64(e.id))
	e.send(PackageLighting, ServiceLightOn, nil)
}

// TurnOffLight implements LightController.
func (e *HubExtension) TurnOffLight() {
	if !e.ConformsTo(CapabilityLightController) {
		e.log().Debug("attempted to turn off extension that is not a light", "extension", uint64(e.id))
		return
	}
	e.log().Debug("turning light off", "extension", uint64(e.id))
	e.send(PackageLighting, ServiceLightOff, nil)
}

// RequestLightStatus implements LightController.
func (e *HubExtension) RequestLightStatus() {
	if !e.ConformsTo(CapabilityLightController) {
		e.log().Debug("attempted to query light status of extension that is not a light", "extension", uint64(e.id))
		return
	}
	e.send(PackageLighting, ServiceLightStatusRequest, nil)
}

// RecordLightStatus implements LightController.
func (e *HubExtension) RecordLightStatus(status LightStatus, at time.Time) {
	e.log().Debug("determined light status", "extension", uint64(e.id), "status", status.String())
	e.RecordValue(NewRecordedValue(status, at), CharacteristicLightStatus)
}

// SetLightBrightness implements LightBrightnessController.
func (e *HubExtension) SetLightBrightness(brightness Brightness) {
	if !e.ConformsTo(CapabilityLightBrightnessController) {
		e.log().Debug("attempted to dim extension that is not a dimmable light", "extension", uint64(e.id))
		return
	}
	e.log().Debug("dimming light", "extension", uint64(e.id), "brightness", float64(brightness))
	e.send(PackageLighting, ServiceLightBrightnessSet, wire.AppendFloat64(nil, float64(brightness)))
}

// RequestLightBrightness implements LightBrightnessController.
func (e *HubExtension) RequestLightBrightness() {
	if !e.ConformsTo(CapabilityLightBrightnessController) {
		e.log().Debug("attempted to query brightness of extension that is not a dimmable light", "extension", uint64(e.id))
		return
	}
	e.send(PackageLighting, ServiceLightBrightnessRequest, nil)
}

// RecordLightBrightness implements LightBrightnessController.
func (e *HubExtension) RecordLightBrightness(brightness Brightness, at time.Time) {
	e.RecordValue(NewRecordedValue(brightness, at), CharacteristicLightBrightness)
}

// SetLightTemperature implements LightTemperatureController.
func (e *HubExtension) SetLightTemperature(temperature Mireds) {
	if !e.ConformsTo(CapabilityLightTemperatureController) {
		e.log().Debug("attempted to set temperature of extension that is not a temperature light", "extension", uint64(e.id))
		return
	}
	e.send(PackageLighting, ServiceLightTemperatureSet, wire.AppendUint16(nil, uint16(temperature)))
}

// RequestLightTemperature implements LightTemperatureController.
func (e *HubExtension) RequestLightTemperature() {
	if !e.ConformsTo(CapabilityLightTemperatureController) {
		e.log().Debug("attempted to query temperature of extension that is not a temperature light", "extension", uint64(e.id))
		return
	}
	e.send(PackageLighting, ServiceLightTemperatureRequest, nil)
}

// RecordLightTemperature implements LightTemperatureController.
func (e *HubExtension) RecordLightTemperature(temperature Mireds, at time.Time) {
	e.RecordValue(NewRecordedValue(temperature, at), CharacteristicLightTemperature)
}

// RequestAmbientLightReading implements AmbientLightSensor.
func (e *HubExtension) RequestAmbientLightReading() {
	if !e.ConformsTo(CapabilityAmbientLightSensor) {
		e.log().Debug("attempted to query reading of extension that is not an ambient light sensor", "extension", uint64(e.id))
		return
	}
	e.send(PackageSensing, ServiceAmbientLightRequest, nil)
}

// RecordAmbientLightReading implements AmbientLightSensor.
func (e *HubExtension) RecordAmbientLightReading(reading AmbientLight, at time.Time) {
	e.log().Debug("determined ambient light reading", "extension", uint64(e.id), "lux", float64(reading))
	e.RecordValue(NewRecordedValue(reading, at), CharacteristicAmbientLight)
}

// RequestSwitchState implements SwitchController.
func (e *HubExtension) RequestSwitchState() {
	if !e.ConformsTo(CapabilitySwitchController) {
		e.log().Debug("attempted to query state of extension that is not a switch", "extension", uint64(e.id))
		return
	}
	e.send(PackageSwitch, ServiceSwitchStateRequest, nil)
}

// RecordSwitchState implements SwitchController.
func (e *HubExtension) RecordSwitchState(state SwitchState, at time.Time) {
	e.log().Debug("determined switch state", "extension", uint64(e.id), "state", state.String())
	e.RecordValue(NewRecordedValue(state, at), CharacteristicSwitchState)
}

// ExtensionDidChange implements HubInterface. The change is mirrored to
// the physical panel as a hub-package message carrying the identifier.
func (e *HubExtension) ExtensionDidChange(id Identifier, change Change) {
	if !e.ConformsTo(CapabilityHubInterface) {
		e.log().Debug("attempted to delegate hub information to extension that is not a hub interface", "extension", uint64(e.id))
		return
	}

	service := ServiceExtensionUpdated
	if change == ChangeRemoved {
		service = ServiceExtensionRemoved
	}
	e.send(PackageHub, service, wire.AppendUint64(nil, uint64(id)))
}

// RoomDidChange implements HubInterface.
func (e *HubExtension) RoomDidChange(name string, change Change) {
	if !e.ConformsTo(CapabilityHubInterface) {
		e.log().Debug("attempted to delegate hub information to extension that is not a hub interface", "extension", uint64(e.id))
		return
	}

	service := ServiceRoomUpdated
	if change == ChangeRemoved {
		service = ServiceRoomRemoved
	}
	e.send(PackageHub, service, wire.AppendString(nil, name))
}

// log returns the current logger under the read lock.
func (e *HubExtension) log() Logger {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.logger
}
