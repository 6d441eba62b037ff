package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hearthlabs/hearth-core/internal/device"
)

// extensionView is the JSON representation of a registered extension.
type extensionView struct {
	ID           uint64                   `json:"id"`
	Label        string                   `json:"label"`
	Room         string                   `json:"room,omitempty"`
	Capabilities []string                 `json:"capabilities"`
	Values       map[string]observedValue `json:"values"`
}

// observedValue is the JSON representation of a recorded value.
type observedValue struct {
	Value      any       `json:"value"`
	RecordedAt time.Time `json:"recorded_at"`
}

// commandRequest is the request body for POST /extensions/{id}/command.
type commandRequest struct {
	Command string   `json:"command"`
	Value   *float64 `json:"value,omitempty"`
}

// handleListExtensions returns all registered extensions.
func (s *Server) handleListExtensions(w http.ResponseWriter, _ *http.Request) {
	extensions := s.core.Devices.All()
	views := make([]extensionView, 0, len(extensions))
	for _, ext := range extensions {
		views = append(views, s.extensionView(ext))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"extensions": views,
		"count":      len(views),
	})
}

// handleGetExtension returns a single extension by identifier.
func (s *Server) handleGetExtension(w http.ResponseWriter, r *http.Request) {
	ext, ok := s.extensionFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.extensionView(ext))
}

// handleRemoveExtension deregisters an extension. The extension may
// re-announce itself over MQTT at any time.
func (s *Server) handleRemoveExtension(w http.ResponseWriter, r *http.Request) {
	ext, ok := s.extensionFromRequest(w, r)
	if !ok {
		return
	}
	s.core.Devices.Remove(ext.Identifier())
	writeJSON(w, http.StatusOK, map[string]any{"removed": uint64(ext.Identifier())})
}

// handleExtensionHistory returns the recorded history for one
// characteristic, newest values last in insertion order.
func (s *Server) handleExtensionHistory(w http.ResponseWriter, r *http.Request) {
	ext, ok := s.extensionFromRequest(w, r)
	if !ok {
		return
	}

	characteristic := device.Characteristic(r.URL.Query().Get("characteristic"))
	if characteristic == "" {
		writeBadRequest(w, "characteristic query parameter is required")
		return
	}

	values := []observedValue{}
	for v := range ext.History(characteristic) {
		values = append(values, observedValue{
			Value:      renderValue(v.Value),
			RecordedAt: v.RecordedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"extension":      uint64(ext.Identifier()),
		"characteristic": string(characteristic),
		"values":         values,
	})
}

// handleExtensionCommand issues a capability command to an extension.
//
// Commands mirror the capability interfaces: turn_on, turn_off,
// request_status (lights), set_brightness, request_brightness (dimmable
// lights), set_temperature, request_temperature (colour-temperature
// lights), request_reading (sensors) and request_state (switches).
// Commands are fire-and-forget; observed results arrive later through
// the report path and the WebSocket feed.
func (s *Server) handleExtensionCommand(w http.ResponseWriter, r *http.Request) {
	ext, ok := s.extensionFromRequest(w, r)
	if !ok {
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if !s.dispatchCommand(ext, req) {
		writeBadRequest(w, "extension does not support command: "+req.Command)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"extension": uint64(ext.Identifier()),
		"command":   req.Command,
	})
}

// dispatchCommand routes a command to the matching capability interface.
// It returns false when the command is unknown, needs a value that was
// not supplied, or the extension lacks the capability.
func (s *Server) dispatchCommand(ext device.Extension, req commandRequest) bool {
	switch req.Command {
	case "turn_on":
		if c, ok := conforming[device.LightController](ext, device.CapabilityLightController); ok {
			c.TurnOnLight()
			return true
		}
	case "turn_off":
		if c, ok := conforming[device.LightController](ext, device.CapabilityLightController); ok {
			c.TurnOffLight()
			return true
		}
	case "request_status":
		if c, ok := conforming[device.LightController](ext, device.CapabilityLightController); ok {
			c.RequestLightStatus()
			return true
		}
	case "set_brightness":
		if req.Value == nil {
			return false
		}
		if c, ok := conforming[device.LightBrightnessController](ext, device.CapabilityLightBrightnessController); ok {
			c.SetLightBrightness(device.Brightness(*req.Value))
			return true
		}
	case "request_brightness":
		if c, ok := conforming[device.LightBrightnessController](ext, device.CapabilityLightBrightnessController); ok {
			c.RequestLightBrightness()
			return true
		}
	case "set_temperature":
		if req.Value == nil {
			return false
		}
		if c, ok := conforming[device.LightTemperatureController](ext, device.CapabilityLightTemperatureController); ok {
			c.SetLightTemperature(device.Mireds(*req.Value))
			return true
		}
	case "request_temperature":
		if c, ok := conforming[device.LightTemperatureController](ext, device.CapabilityLightTemperatureController); ok {
			c.RequestLightTemperature()
			return true
		}
	case "request_reading":
		if c, ok := conforming[device.AmbientLightSensor](ext, device.CapabilityAmbientLightSensor); ok {
			c.RequestAmbientLightReading()
			return true
		}
	case "request_state":
		if c, ok := conforming[device.SwitchController](ext, device.CapabilitySwitchController); ok {
			c.RequestSwitchState()
			return true
		}
	}
	return false
}

// conforming type-asserts the capability interface and, for extensions
// with dynamic capability introspection, checks the current claim.
func conforming[T any](ext device.Extension, capability device.Capability) (T, bool) {
	impl, ok := any(ext).(T)
	if !ok {
		var zero T
		return zero, false
	}
	if dyn, ok := any(ext).(device.DynamicCapabilities); ok && !dyn.ConformsTo(capability) {
		var zero T
		return zero, false
	}
	return impl, true
}

// extensionFromRequest resolves the {id} URL parameter to a registered
// extension, writing the error response on failure.
func (s *Server) extensionFromRequest(w http.ResponseWriter, r *http.Request) (device.Extension, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid extension id")
		return nil, false
	}

	ext, ok := s.core.Devices.Find(device.Identifier(id))
	if !ok {
		writeNotFound(w, "extension not found")
		return nil, false
	}
	return ext, true
}

// extensionView builds the JSON view of an extension: its identity, the
// room it belongs to, its current capability claims, and the latest
// recorded value per characteristic.
func (s *Server) extensionView(ext device.Extension) extensionView {
	view := extensionView{
		ID:           uint64(ext.Identifier()),
		Label:        ext.Label(),
		Capabilities: capabilitiesOf(ext),
		Values:       make(map[string]observedValue),
	}

	if name, ok := s.core.Rooms.RoomNameForDevice(ext.Identifier()); ok {
		view.Room = name
	}

	for _, characteristic := range allCharacteristics() {
		if v, ok := ext.LatestValue(characteristic); ok {
			view.Values[string(characteristic)] = observedValue{
				Value:      renderValue(v.Value),
				RecordedAt: v.RecordedAt,
			}
		}
	}

	return view
}

// allCharacteristics lists every characteristic the view reports on.
func allCharacteristics() []device.Characteristic {
	return []device.Characteristic{
		device.CharacteristicLightStatus,
		device.CharacteristicLightBrightness,
		device.CharacteristicLightTemperature,
		device.CharacteristicAmbientLight,
		device.CharacteristicSwitchState,
	}
}

// capabilitiesOf returns the capability tags an extension currently
// claims, using the same hybrid rule as the registry queries.
func capabilitiesOf(ext device.Extension) []string {
	dyn, hasDyn := any(ext).(device.DynamicCapabilities)

	caps := []string{}
	for _, c := range device.AllCapabilities() {
		if !implementsCapability(ext, c) {
			continue
		}
		if hasDyn && !dyn.ConformsTo(c) {
			continue
		}
		caps = append(caps, string(c))
	}
	return caps
}

// implementsCapability reports whether the extension's type implements
// the interface paired with the capability tag.
func implementsCapability(ext device.Extension, c device.Capability) bool {
	switch c {
	case device.CapabilityLightController:
		_, ok := any(ext).(device.LightController)
		return ok
	case device.CapabilityLightBrightnessController:
		_, ok := any(ext).(device.LightBrightnessController)
		return ok
	case device.CapabilityLightTemperatureController:
		_, ok := any(ext).(device.LightTemperatureController)
		return ok
	case device.CapabilityAmbientLightSensor:
		_, ok := any(ext).(device.AmbientLightSensor)
		return ok
	case device.CapabilitySwitchController:
		_, ok := any(ext).(device.SwitchController)
		return ok
	case device.CapabilityHubInterface:
		_, ok := any(ext).(device.HubInterface)
		return ok
	}
	return false
}

// renderValue converts a typed characteristic value to its JSON form,
// preferring readable forms for enumerated states.
func renderValue(value any) any {
	switch v := value.(type) {
	case device.LightStatus:
		return v.String()
	case device.SwitchState:
		return v.String()
	case device.Brightness:
		return float64(v)
	case device.Mireds:
		return uint16(v)
	case device.AmbientLight:
		return float64(v)
	default:
		return value
	}
}
