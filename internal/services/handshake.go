package services

import (
	"fmt"

	"github.com/hearthlabs/hearth-core/internal/device"
	"github.com/hearthlabs/hearth-core/internal/transport"
	"github.com/hearthlabs/hearth-core/internal/wire"
)

// Capability codes used on the wire during handshake.
const (
	codeLightController            uint8 = 1
	codeLightBrightnessController  uint8 = 2
	codeLightTemperatureController uint8 = 3
	codeAmbientLightSensor         uint8 = 4
	codeSwitchController           uint8 = 5
	codeHubInterface               uint8 = 6
)

// capabilityForCode maps a wire code to a capability tag.
func capabilityForCode(code uint8) (device.Capability, bool) {
	switch code {
	case codeLightController:
		return device.CapabilityLightController, true
	case codeLightBrightnessController:
		return device.CapabilityLightBrightnessController, true
	case codeLightTemperatureController:
		return device.CapabilityLightTemperatureController, true
	case codeAmbientLightSensor:
		return device.CapabilityAmbientLightSensor, true
	case codeSwitchController:
		return device.CapabilitySwitchController, true
	case codeHubInterface:
		return device.CapabilityHubInterface, true
	default:
		return "", false
	}
}

// Handshake admits extensions announcing themselves on the network.
//
// An announcement carries the extension's identifier, its label and the
// capability set it negotiates. The resulting HubExtension is wired
// with the hub's messenger and event sink and added to the registry.
// A repeated announcement from a known identifier refreshes the label
// and capability set in place instead of re-registering.
type Handshake struct {
	registry  *device.Registry
	messenger device.Messenger
	sink      device.EventSink

	// retention caps stored history per characteristic; 0 is unbounded.
	retention int

	logger Logger
}

// NewHandshake creates the handshake service. messenger and sink may be
// nil; extensions admitted without them have no command path or event
// routing until re-wired.
func NewHandshake(registry *device.Registry, messenger device.Messenger, sink device.EventSink) *Handshake {
	return &Handshake{
		registry:  registry,
		messenger: messenger,
		sink:      sink,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the handshake service. Admitted
// extensions inherit it.
func (h *Handshake) SetLogger(logger Logger) {
	h.logger = logger
}

// SetHistoryRetention sets the per-characteristic history cap applied
// to extensions admitted after the call.
func (h *Handshake) SetHistoryRetention(retention int) {
	h.retention = retention
}

// Register installs the handshake handler on the dispatcher.
func (h *Handshake) Register(d *transport.Dispatcher) {
	d.Register(device.PackageHub, device.ServiceHandshake, h.handleAnnouncement)
}

// handleAnnouncement admits or refreshes one extension.
// Payload: identifier (8 bytes), label (length-prefixed string),
// capability count (1 byte), capability codes (1 byte each).
func (h *Handshake) handleAnnouncement(payload []byte) error {
	id, rest, err := wire.ConsumeUint64(payload)
	if err != nil {
		return fmt.Errorf("decoding handshake identifier: %w", err)
	}

	label, rest, err := wire.ConsumeString(rest)
	if err != nil {
		return fmt.Errorf("decoding handshake label: %w", err)
	}

	count, rest, err := wire.ConsumeByte(rest)
	if err != nil {
		return fmt.Errorf("decoding handshake capability count: %w", err)
	}

	capabilities := make([]device.Capability, 0, count)
	for range int(count) {
		var code byte
		code, rest, err = wire.ConsumeByte(rest)
		if err != nil {
			return fmt.Errorf("decoding handshake capability: %w", err)
		}
		capability, ok := capabilityForCode(code)
		if !ok {
			// Unknown codes are skipped, not fatal: a newer extension
			// may negotiate capabilities this core predates.
			h.logger.Debug("ignoring unknown capability code", "extension", id, "code", code)
			continue
		}
		capabilities = append(capabilities, capability)
	}

	identifier := device.Identifier(id)
	if existing, ok := h.registry.Find(identifier); ok {
		return h.refresh(existing, label, capabilities)
	}

	ext := device.NewHubExtension(identifier)
	ext.SetLabel(label)
	ext.SetMessenger(h.messenger)
	ext.SetEventSink(h.sink)
	if h.retention > 0 {
		for _, c := range allCharacteristics() {
			ext.Store().SetRetention(c, h.retention)
		}
	}
	for _, capability := range capabilities {
		ext.EnableSupport(capability)
	}

	h.registry.Add(ext)
	h.logger.Info("extension admitted",
		"extension", id,
		"label", label,
		"capabilities", capabilities,
	)
	return nil
}

// refresh updates a known extension's label and capability set from a
// repeated announcement.
func (h *Handshake) refresh(ext device.Extension, label string, capabilities []device.Capability) error {
	hubExt, ok := ext.(*device.HubExtension)
	if !ok {
		return fmt.Errorf("extension %d re-announced but is not handshake-managed", ext.Identifier())
	}

	hubExt.SetLabel(label)

	claimed := make(map[device.Capability]struct{}, len(capabilities))
	for _, capability := range capabilities {
		claimed[capability] = struct{}{}
		hubExt.EnableSupport(capability)
	}
	for _, capability := range hubExt.Capabilities() {
		if _, keep := claimed[capability]; !keep {
			hubExt.RemoveSupport(capability)
		}
	}

	h.logger.Info("extension refreshed",
		"extension", uint64(ext.Identifier()),
		"label", label,
		"capabilities", capabilities,
	)
	return nil
}

// allCharacteristics lists every characteristic a handshake-managed
// extension can record.
func allCharacteristics() []device.Characteristic {
	return []device.Characteristic{
		device.CharacteristicLightStatus,
		device.CharacteristicLightBrightness,
		device.CharacteristicLightTemperature,
		device.CharacteristicAmbientLight,
		device.CharacteristicSwitchState,
	}
}
