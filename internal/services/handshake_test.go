package services

import (
	"testing"
	"time"

	"github.com/hearthlabs/hearth-core/internal/device"
	"github.com/hearthlabs/hearth-core/internal/transport"
	"github.com/hearthlabs/hearth-core/internal/wire"
)

// announcementPayload builds a handshake payload.
func announcementPayload(id uint64, label string, codes ...uint8) []byte {
	payload := wire.AppendUint64(nil, id)
	payload = wire.AppendString(payload, label)
	payload = wire.AppendByte(payload, byte(len(codes)))
	for _, c := range codes {
		payload = wire.AppendByte(payload, c)
	}
	return payload
}

func dispatchAnnouncement(t *testing.T, h *Handshake, payload []byte) error {
	t.Helper()

	d := transport.NewDispatcher()
	h.Register(d)
	key := transport.ServiceKey{Package: device.PackageHub, Service: device.ServiceHandshake}
	return d.Dispatch(key, payload)
}

func TestHandshake_AdmitsNewExtension(t *testing.T) {
	reg := device.NewRegistry(nil)
	h := NewHandshake(reg, nil, nil)

	payload := announcementPayload(20, "hall light", codeLightController, codeLightBrightnessController)
	if err := dispatchAnnouncement(t, h, payload); err != nil {
		t.Fatalf("handshake error = %v", err)
	}

	ext, ok := reg.Find(20)
	if !ok {
		t.Fatal("extension not admitted")
	}
	if ext.Label() != "hall light" {
		t.Errorf("Label() = %q, want hall light", ext.Label())
	}

	hubExt := ext.(*device.HubExtension)
	if !hubExt.ConformsTo(device.CapabilityLightController) {
		t.Error("ConformsTo(light_controller) = false, want true")
	}
	if !hubExt.ConformsTo(device.CapabilityLightBrightnessController) {
		t.Error("ConformsTo(light_brightness_controller) = false, want true")
	}
	if hubExt.ConformsTo(device.CapabilitySwitchController) {
		t.Error("ConformsTo(switch_controller) = true, want false")
	}
}

func TestHandshake_RefreshUpdatesInPlace(t *testing.T) {
	reg := device.NewRegistry(nil)
	h := NewHandshake(reg, nil, nil)

	if err := dispatchAnnouncement(t, h, announcementPayload(21, "old name", codeLightController)); err != nil {
		t.Fatalf("first handshake error = %v", err)
	}
	first, _ := reg.Find(21)

	// Re-announce with a new label and a different capability set.
	if err := dispatchAnnouncement(t, h, announcementPayload(21, "new name", codeSwitchController)); err != nil {
		t.Fatalf("second handshake error = %v", err)
	}

	if got := reg.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1 after re-announcement", got)
	}
	second, _ := reg.Find(21)
	if first != second {
		t.Error("re-announcement replaced the registration, want in-place refresh")
	}
	if second.Label() != "new name" {
		t.Errorf("Label() = %q, want new name", second.Label())
	}

	hubExt := second.(*device.HubExtension)
	if hubExt.ConformsTo(device.CapabilityLightController) {
		t.Error("dropped capability still claimed after refresh")
	}
	if !hubExt.ConformsTo(device.CapabilitySwitchController) {
		t.Error("new capability not claimed after refresh")
	}
}

func TestHandshake_UnknownCapabilityCodeSkipped(t *testing.T) {
	reg := device.NewRegistry(nil)
	h := NewHandshake(reg, nil, nil)

	payload := announcementPayload(22, "future device", codeLightController, 200)
	if err := dispatchAnnouncement(t, h, payload); err != nil {
		t.Fatalf("handshake error = %v, want unknown codes skipped", err)
	}

	ext, ok := reg.Find(22)
	if !ok {
		t.Fatal("extension not admitted")
	}
	hubExt := ext.(*device.HubExtension)
	if !hubExt.ConformsTo(device.CapabilityLightController) {
		t.Error("known capability lost alongside the unknown code")
	}
	if got := len(hubExt.Capabilities()); got != 1 {
		t.Errorf("Capabilities() = %d entries, want 1", got)
	}
}

func TestHandshake_MalformedPayload(t *testing.T) {
	reg := device.NewRegistry(nil)
	h := NewHandshake(reg, nil, nil)

	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", nil},
		{"short identifier", []byte{1, 2}},
		{"missing label", wire.AppendUint64(nil, 23)},
		{"missing capability count", wire.AppendString(wire.AppendUint64(nil, 23), "x")},
		{"truncated capability list", wire.AppendByte(wire.AppendString(wire.AppendUint64(nil, 23), "x"), 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := dispatchAnnouncement(t, h, tt.payload); err == nil {
				t.Error("handshake error = nil, want decode error")
			}
		})
	}

	if got := reg.Count(); got != 0 {
		t.Errorf("Count() = %d after malformed announcements, want 0", got)
	}
}

func TestHandshake_WiresMessengerAndSink(t *testing.T) {
	reg := device.NewRegistry(nil)

	var routed int
	sink := sinkFunc(func(device.Extension, device.Characteristic) { routed++ })
	h := NewHandshake(reg, nil, sink)

	if err := dispatchAnnouncement(t, h, announcementPayload(24, "sensor", codeAmbientLightSensor)); err != nil {
		t.Fatalf("handshake error = %v", err)
	}

	ext, _ := reg.Find(24)
	ext.RecordValue(device.NewRecordedValue(device.AmbientLight(50), time.Now()), device.CharacteristicAmbientLight)
	if routed != 1 {
		t.Errorf("sink events = %d, want 1 (sink wired at admission)", routed)
	}
}

func TestHandshake_HistoryRetentionApplied(t *testing.T) {
	reg := device.NewRegistry(nil)
	h := NewHandshake(reg, nil, nil)
	h.SetHistoryRetention(2)

	if err := dispatchAnnouncement(t, h, announcementPayload(25, "capped", codeLightController)); err != nil {
		t.Fatalf("handshake error = %v", err)
	}

	ext, _ := reg.Find(25)
	hubExt := ext.(*device.HubExtension)
	base := time.Now()
	for i := range 5 {
		hubExt.RecordLightStatus(device.LightOn, base.Add(time.Duration(i)*time.Minute))
	}

	if got := hubExt.Store().Count(device.CharacteristicLightStatus); got != 2 {
		t.Errorf("retained values = %d, want 2", got)
	}
}
