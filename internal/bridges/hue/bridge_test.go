package hue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hearthlabs/hearth-core/internal/device"
)

// lightsResponse is a bridge /lights answer with one colour-temperature
// light, one colour light and one plain dimmable light.
const lightsResponse = `{
	"1": {"state": {"on": true, "bri": 127, "ct": 366, "reachable": true},
	      "type": "Color temperature light", "name": "Desk", "uniqueid": "00:17:88:01:aa"},
	"2": {"state": {"on": false, "bri": 0, "ct": 0, "reachable": true},
	      "type": "Extended color light", "name": "Strip", "uniqueid": "00:17:88:01:bb"},
	"3": {"state": {"on": true, "bri": 254, "ct": 0, "reachable": false},
	      "type": "Dimmable light", "name": "Hall", "uniqueid": "00:17:88:01:cc"}
}`

// newTestBridge starts a fake bridge API and returns a client for it.
func newTestBridge(t *testing.T, handler http.HandlerFunc) *Bridge {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	b := NewBridge(Config{Host: "placeholder", Username: "testuser", Timeout: time.Second})
	b.baseURL = server.URL + "/api"
	return b
}

func TestLights_FiltersByType(t *testing.T) {
	b := newTestBridge(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/testuser/lights" {
			t.Errorf("path = %q, want /api/testuser/lights", r.URL.Path)
		}
		w.Write([]byte(lightsResponse)) //nolint:errcheck
	})

	lights, err := b.Lights(context.Background())
	if err != nil {
		t.Fatalf("Lights() error = %v", err)
	}
	if len(lights) != 1 {
		t.Fatalf("Lights() = %d lights, want only the colour-temperature one", len(lights))
	}
	if lights[0].BridgeID() != "1" {
		t.Errorf("BridgeID() = %q, want 1", lights[0].BridgeID())
	}
	if lights[0].Label() != "Desk" {
		t.Errorf("Label() = %q, want Desk", lights[0].Label())
	}
}

func TestLights_RecordsInitialState(t *testing.T) {
	b := newTestBridge(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(lightsResponse)) //nolint:errcheck
	})

	lights, err := b.Lights(context.Background())
	if err != nil {
		t.Fatalf("Lights() error = %v", err)
	}
	light := lights[0]

	status, ok := light.LatestValue(device.CharacteristicLightStatus)
	if !ok || status.Value != device.LightOn {
		t.Errorf("initial status = %v, %v, want LightOn", status.Value, ok)
	}

	bri, ok := light.LatestValue(device.CharacteristicLightBrightness)
	if !ok {
		t.Fatal("initial brightness missing")
	}
	if got := float64(bri.Value.(device.Brightness)); got < 0.49 || got > 0.51 {
		t.Errorf("initial brightness = %v, want ~0.5 (bri 127 of 254)", got)
	}

	ct, ok := light.LatestValue(device.CharacteristicLightTemperature)
	if !ok || ct.Value != device.Mireds(366) {
		t.Errorf("initial temperature = %v, %v, want 366", ct.Value, ok)
	}
}

func TestLights_StableIdentifier(t *testing.T) {
	b := newTestBridge(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(lightsResponse)) //nolint:errcheck
	})

	lights, err := b.Lights(context.Background())
	if err != nil {
		t.Fatalf("Lights() error = %v", err)
	}

	// The identifier comes from the bridge uniqueid, not the volatile
	// bridge slot number.
	if lights[0].Identifier() != device.IdentifierForName("00:17:88:01:aa") {
		t.Error("identifier not derived from the light's uniqueid")
	}
}

func TestUsernameAuthorised(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"authorised", lightsResponse, true},
		{"unauthorised", `[{"error": {"type": 1, "description": "unauthorized user"}}]`, false},
		{"other api error", `[{"error": {"type": 3, "description": "resource not available"}}]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBridge(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tt.body)) //nolint:errcheck
			})

			got, err := b.UsernameAuthorised(context.Background())
			if err != nil {
				t.Fatalf("UsernameAuthorised() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("UsernameAuthorised() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUsernameAuthorised_BridgeUnreachable(t *testing.T) {
	b := NewBridge(Config{Host: "127.0.0.1:1", Username: "x", Timeout: 100 * time.Millisecond})
	if _, err := b.UsernameAuthorised(context.Background()); err == nil {
		t.Error("UsernameAuthorised() error = nil for unreachable bridge, want error")
	}
}

// stateCapture collects PUT /state bodies from command methods, which
// run on their own goroutines.
type stateCapture struct {
	states chan map[string]any
}

func newStateCapture() *stateCapture {
	return &stateCapture{states: make(chan map[string]any, 8)}
}

func (c *stateCapture) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(lightsResponse)) //nolint:errcheck
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/state") {
			t.Errorf("unexpected PUT path %q", r.URL.Path)
		}
		var state map[string]any
		if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
			t.Errorf("decoding state body: %v", err)
		}
		c.states <- state
	}
}

func (c *stateCapture) next(t *testing.T) map[string]any {
	t.Helper()
	select {
	case state := <-c.states:
		return state
	case <-time.After(time.Second):
		t.Fatal("no state change within 1s")
		return nil
	}
}

func TestTemperatureLight_Commands(t *testing.T) {
	capture := newStateCapture()
	b := newTestBridge(t, capture.handler(t))

	lights, err := b.Lights(context.Background())
	if err != nil {
		t.Fatalf("Lights() error = %v", err)
	}
	light := lights[0]

	light.TurnOnLight()
	if state := capture.next(t); state["on"] != true {
		t.Errorf("TurnOnLight state = %v, want on: true", state)
	}

	light.TurnOffLight()
	if state := capture.next(t); state["on"] != false {
		t.Errorf("TurnOffLight state = %v, want on: false", state)
	}
}

func TestTemperatureLight_BrightnessScaling(t *testing.T) {
	tests := []struct {
		name       string
		brightness device.Brightness
		wantBri    float64
	}{
		{"full", 1.0, 254},
		{"half", 0.5, 127},
		{"off", 0, 0},
		{"clamped high", 1.5, 254},
		{"clamped low", -0.2, 0},
	}

	capture := newStateCapture()
	b := newTestBridge(t, capture.handler(t))
	lights, err := b.Lights(context.Background())
	if err != nil {
		t.Fatalf("Lights() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lights[0].SetLightBrightness(tt.brightness)
			state := capture.next(t)
			if got := state["bri"].(float64); got != tt.wantBri {
				t.Errorf("bri = %v, want %v", got, tt.wantBri)
			}
		})
	}
}

func TestTemperatureLight_MiredsClamping(t *testing.T) {
	tests := []struct {
		name   string
		mireds device.Mireds
		wantCT float64
	}{
		{"in range", 366, 366},
		{"below minimum", 100, 153},
		{"above maximum", 600, 500},
	}

	capture := newStateCapture()
	b := newTestBridge(t, capture.handler(t))
	lights, err := b.Lights(context.Background())
	if err != nil {
		t.Fatalf("Lights() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lights[0].SetLightTemperature(tt.mireds)
			state := capture.next(t)
			if got := state["ct"].(float64); got != tt.wantCT {
				t.Errorf("ct = %v, want %v", got, tt.wantCT)
			}
		})
	}
}

func TestRefresh_RecordsAndRoutes(t *testing.T) {
	responses := make(chan string, 2)
	responses <- lightsResponse
	responses <- strings.Replace(lightsResponse, `"on": true, "bri": 127`, `"on": false, "bri": 127`, 1)

	b := newTestBridge(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(<-responses)) //nolint:errcheck
	})

	lights, err := b.Lights(context.Background())
	if err != nil {
		t.Fatalf("Lights() error = %v", err)
	}
	light := lights[0]

	events := 0
	light.SetEventSink(sinkFunc(func(device.Extension, device.Characteristic) { events++ }))

	if err := b.Refresh(context.Background(), lights); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	status, _ := light.LatestValue(device.CharacteristicLightStatus)
	if status.Value != device.LightOff {
		t.Errorf("status after refresh = %v, want LightOff", status.Value)
	}
	if events != 3 {
		t.Errorf("sink events = %d, want 3 (status, brightness, temperature)", events)
	}
}

// sinkFunc adapts a function to device.EventSink.
type sinkFunc func(device.Extension, device.Characteristic)

func (f sinkFunc) CharacteristicDidChange(ext device.Extension, c device.Characteristic) {
	f(ext, c)
}
