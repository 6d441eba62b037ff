package hue

import (
	"context"
	"fmt"
	"iter"
	"math"
	"sync"
	"time"

	"github.com/hearthlabs/hearth-core/internal/device"
)

// Bridge API value ranges.
const (
	// maxBri is the bridge's maximum brightness value.
	maxBri = 254

	// minMireds and maxMireds bound the colour temperatures the bridge
	// accepts. Values outside are clamped, matching bridge behaviour.
	minMireds = 153
	maxMireds = 500
)

// TemperatureLight is a colour-temperature Hue light surfaced as an
// extension. Commands translate to bridge REST calls; observed state
// is recorded into a local characteristic store and feeds the same
// event path as network extension reports.
//
// The capability set of a given light model never changes, so the type
// carries static capabilities: no DynamicCapabilities implementation.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type TemperatureLight struct {
	bridge   *Bridge
	bridgeID string

	id   device.Identifier
	name string

	store *device.CharacteristicStore

	mu   sync.RWMutex
	sink device.EventSink
}

// newTemperatureLight builds the extension for one bridge light
// resource. The identifier is derived from the bridge's stable
// uniqueid so it survives re-discovery and bridge ID reshuffles.
func newTemperatureLight(bridge *Bridge, bridgeID string, resource lightResource) *TemperatureLight {
	return &TemperatureLight{
		bridge:   bridge,
		bridgeID: bridgeID,
		id:       device.IdentifierForName(resource.UniqueID),
		name:     resource.Name,
		store:    device.NewCharacteristicStore(),
	}
}

// SetEventSink wires the characteristic-change event sink.
func (l *TemperatureLight) SetEventSink(sink device.EventSink) {
	l.mu.Lock()
	l.sink = sink
	l.mu.Unlock()
}

// Identifier returns the unique identifier of the light.
func (l *TemperatureLight) Identifier() device.Identifier {
	return l.id
}

// Label returns the light's name as configured on the bridge.
func (l *TemperatureLight) Label() string {
	return l.name
}

// BridgeID returns the light's ID on the Hue bridge.
func (l *TemperatureLight) BridgeID() string {
	return l.bridgeID
}

// RecordValue stores the value and notifies the event sink, if wired,
// synchronously on the calling goroutine.
func (l *TemperatureLight) RecordValue(value device.RecordedValue, characteristic device.Characteristic) {
	l.store.Insert(value, characteristic)

	l.mu.RLock()
	sink := l.sink
	l.mu.RUnlock()

	if sink != nil {
		sink.CharacteristicDidChange(l, characteristic)
	}
}

// LatestValue returns the most recent value recorded for the
// characteristic, by recorded timestamp.
func (l *TemperatureLight) LatestValue(characteristic device.Characteristic) (device.RecordedValue, bool) {
	return l.store.Latest(characteristic)
}

// History returns all retained values for the characteristic.
func (l *TemperatureLight) History(characteristic device.Characteristic) iter.Seq[device.RecordedValue] {
	return l.store.History(characteristic)
}

// TurnOnLight implements device.LightController.
func (l *TemperatureLight) TurnOnLight() {
	go l.bridge.setState(l.bridgeID, map[string]any{"on": true})
}

// TurnOffLight implements device.LightController.
func (l *TemperatureLight) TurnOffLight() {
	go l.bridge.setState(l.bridgeID, map[string]any{"on": false})
}

// RequestLightStatus implements device.LightController. The bridge has
// no push channel, so a status request is a one-light refresh.
func (l *TemperatureLight) RequestLightStatus() {
	go l.refresh()
}

// RecordLightStatus implements device.LightController.
func (l *TemperatureLight) RecordLightStatus(status device.LightStatus, at time.Time) {
	l.RecordValue(device.NewRecordedValue(status, at), device.CharacteristicLightStatus)
}

// SetLightBrightness implements device.LightBrightnessController.
// Brightness is normalised [0, 1] and scaled to the bridge's 0-254.
func (l *TemperatureLight) SetLightBrightness(brightness device.Brightness) {
	bri := int(math.Round(float64(clampBrightness(brightness)) * maxBri))
	go l.bridge.setState(l.bridgeID, map[string]any{"bri": bri})
}

// RequestLightBrightness implements device.LightBrightnessController.
func (l *TemperatureLight) RequestLightBrightness() {
	go l.refresh()
}

// RecordLightBrightness implements device.LightBrightnessController.
func (l *TemperatureLight) RecordLightBrightness(brightness device.Brightness, at time.Time) {
	l.RecordValue(device.NewRecordedValue(brightness, at), device.CharacteristicLightBrightness)
}

// SetLightTemperature implements device.LightTemperatureController.
// Mireds outside the bridge's 153-500 range are clamped.
func (l *TemperatureLight) SetLightTemperature(temperature device.Mireds) {
	go l.bridge.setState(l.bridgeID, map[string]any{"ct": int(clampMireds(temperature))})
}

// RequestLightTemperature implements device.LightTemperatureController.
func (l *TemperatureLight) RequestLightTemperature() {
	go l.refresh()
}

// RecordLightTemperature implements device.LightTemperatureController.
func (l *TemperatureLight) RecordLightTemperature(temperature device.Mireds, at time.Time) {
	l.RecordValue(device.NewRecordedValue(temperature, at), device.CharacteristicLightTemperature)
}

// String implements fmt.Stringer.
func (l *TemperatureLight) String() string {
	return fmt.Sprintf("TemperatureLight[identifier: %d, bridge_id: %s, name: %q]", l.id, l.bridgeID, l.name)
}

// recordState records a bridge state snapshot across all three
// characteristics.
func (l *TemperatureLight) recordState(state lightState, at time.Time) {
	status := device.LightOff
	if state.On {
		status = device.LightOn
	}
	l.RecordLightStatus(status, at)
	l.RecordLightBrightness(device.Brightness(float64(state.Bri)/maxBri), at)
	l.RecordLightTemperature(device.Mireds(state.CT), at)
}

// refresh re-reads this light's state from the bridge.
func (l *TemperatureLight) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), l.bridge.client.Timeout)
	defer cancel()

	if err := l.bridge.Refresh(ctx, []*TemperatureLight{l}); err != nil {
		l.bridge.logger.Warn("hue: light refresh failed", "light", l.bridgeID, "error", err)
	}
}

// clampBrightness bounds a normalised brightness to [0, 1].
func clampBrightness(b device.Brightness) device.Brightness {
	if b < 0 {
		return 0
	}
	if b > 1 {
		return 1
	}
	return b
}

// clampMireds bounds a colour temperature to the bridge's range.
func clampMireds(m device.Mireds) device.Mireds {
	if m < minMireds {
		return minMireds
	}
	if m > maxMireds {
		return maxMireds
	}
	return m
}
