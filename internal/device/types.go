package device

import (
	"hash/fnv"
	"time"
)

// Identifier uniquely identifies an extension on the hearth network.
// Identifiers are assigned during handshake (or chosen locally for
// bridged devices) and are stable for the lifetime of the registration.
type Identifier uint64

// IdentifierForName derives a stable identifier from a name. Locally
// hosted extensions (bridged devices, panels) use this instead of a
// handshake-assigned identifier.
func IdentifierForName(name string) Identifier {
	h := fnv.New64a()
	//nolint:errcheck // hash.Hash Write never returns an error
	h.Write([]byte(name))
	return Identifier(h.Sum64())
}

// Characteristic is an enumerated kind of observable or controllable
// extension state.
type Characteristic string

// Characteristic constants.
const (
	CharacteristicLightStatus      Characteristic = "light_status"
	CharacteristicLightBrightness  Characteristic = "light_brightness"
	CharacteristicLightTemperature Characteristic = "light_temperature"
	CharacteristicAmbientLight     Characteristic = "ambient_light"
	CharacteristicSwitchState      Characteristic = "switch_state"
)

// RecordedValue pairs a characteristic value with the wall-clock
// instant it was recorded. The recorded instant orders values, not the
// order of insertion: reports may arrive late or be retried, and the
// chronologically-latest value must still win.
type RecordedValue struct {
	// Value is the typed characteristic value (LightStatus,
	// Brightness, Mireds, AmbientLight or SwitchState).
	Value any `json:"value"`

	// RecordedAt is the instant the value was observed (UTC).
	RecordedAt time.Time `json:"recorded_at"`
}

// NewRecordedValue creates a RecordedValue observed at the given time.
func NewRecordedValue(value any, at time.Time) RecordedValue {
	return RecordedValue{Value: value, RecordedAt: at.UTC()}
}

// LightStatus reports whether a light is on or off.
type LightStatus uint8

// LightStatus values.
const (
	LightOff LightStatus = iota
	LightOn
)

// String returns a human-readable light status.
func (s LightStatus) String() string {
	if s == LightOn {
		return "on"
	}
	return "off"
}

// Brightness is a normalised light brightness in the range [0, 1].
type Brightness float64

// Mireds is a colour temperature in mireds (micro reciprocal degrees).
type Mireds uint16

// AmbientLight is an ambient light sensor reading in lux.
type AmbientLight float64

// SwitchState reports the position of a physical switch.
type SwitchState uint8

// SwitchState values.
const (
	SwitchOff SwitchState = iota
	SwitchOn
)

// String returns a human-readable switch state.
func (s SwitchState) String() string {
	if s == SwitchOn {
		return "on"
	}
	return "off"
}

// Change describes what happened to a registry entry when notifying
// hub interfaces.
type Change uint8

// Change values.
const (
	ChangeUpdated Change = iota
	ChangeRemoved
)

// String returns a human-readable change kind.
func (c Change) String() string {
	if c == ChangeRemoved {
		return "removed"
	}
	return "updated"
}
