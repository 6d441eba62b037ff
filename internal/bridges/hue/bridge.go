package hue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// Default timeouts for bridge HTTP operations.
const (
	defaultRequestTimeout = 5 * time.Second
)

// Sentinel errors for Hue bridge operations.
var (
	// ErrUnauthorised indicates the configured username is not an
	// authorised application key on the bridge.
	ErrUnauthorised = errors.New("hue: username not authorised")

	// ErrBridgeUnreachable indicates the bridge did not answer.
	ErrBridgeUnreachable = errors.New("hue: bridge unreachable")
)

// Logger defines the logging interface used by the hue package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config contains Hue bridge connection settings.
type Config struct {
	// Host is the bridge IP address or hostname.
	Host string

	// Username is the application key issued during link-button pairing.
	Username string

	// Timeout is the per-request HTTP timeout. Zero selects the default.
	Timeout time.Duration
}

// Bridge is a client for the Philips Hue bridge REST API (v1).
//
// The bridge speaks plain HTTP JSON on the local network. All methods
// take a context for cancellation; command traffic from the lights
// themselves is fire-and-forget and logged on failure.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Bridge struct {
	baseURL  string
	username string
	client   *http.Client
	logger   Logger
}

// NewBridge creates a bridge client. It performs no I/O; use
// UsernameAuthorised to verify connectivity and credentials.
func NewBridge(cfg Config) *Bridge {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Bridge{
		baseURL:  fmt.Sprintf("http://%s/api", cfg.Host),
		username: cfg.Username,
		client:   &http.Client{Timeout: timeout},
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the bridge and the lights it discovers.
func (b *Bridge) SetLogger(logger Logger) {
	b.logger = logger
}

// apiError is the error object the bridge returns inside a JSON array.
type apiError struct {
	Error struct {
		Type        int    `json:"type"`
		Description string `json:"description"`
	} `json:"error"`
}

// unauthorisedErrorType is the bridge API error type for a bad username.
const unauthorisedErrorType = 1

// UsernameAuthorised reports whether the configured username is an
// authorised application key on the bridge.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - bool: true if the bridge accepts the username
//   - error: If the bridge cannot be reached
func (b *Bridge) UsernameAuthorised(ctx context.Context) (bool, error) {
	body, err := b.get(ctx, "/lights")
	if err != nil {
		return false, err
	}

	var apiErrors []apiError
	if jsonErr := json.Unmarshal(body, &apiErrors); jsonErr == nil {
		for _, e := range apiErrors {
			if e.Error.Type == unauthorisedErrorType {
				return false, nil
			}
		}
	}
	return true, nil
}

// lightState is the "state" object of a bridge light resource.
type lightState struct {
	On        bool   `json:"on"`
	Bri       uint8  `json:"bri"`
	CT        uint16 `json:"ct"`
	Reachable bool   `json:"reachable"`
}

// lightResource is one entry in the bridge's lights collection.
type lightResource struct {
	State    lightState `json:"state"`
	Type     string     `json:"type"`
	Name     string     `json:"name"`
	UniqueID string     `json:"uniqueid"`
}

// temperatureLightType is the bridge "type" string for lights that
// support colour temperature but not full colour.
const temperatureLightType = "Color temperature light"

// Lights discovers the colour-temperature lights paired with the
// bridge and returns an extension for each, with its current state
// already recorded. Lights of other types are skipped.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - []*TemperatureLight: Discovered lights, ordered by bridge ID
//   - error: If the bridge cannot be reached or answers garbage
func (b *Bridge) Lights(ctx context.Context) ([]*TemperatureLight, error) {
	body, err := b.get(ctx, "/lights")
	if err != nil {
		return nil, err
	}

	var resources map[string]lightResource
	if err := json.Unmarshal(body, &resources); err != nil {
		return nil, fmt.Errorf("hue: decoding lights response: %w", err)
	}

	ids := make([]string, 0, len(resources))
	for id := range resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := time.Now()
	lights := make([]*TemperatureLight, 0, len(ids))
	for _, id := range ids {
		resource := resources[id]
		if resource.Type != temperatureLightType {
			b.logger.Debug("skipping unsupported light type",
				"light", id,
				"type", resource.Type,
			)
			continue
		}

		light := newTemperatureLight(b, id, resource)
		light.recordState(resource.State, now)
		lights = append(lights, light)
	}

	b.logger.Info("hue lights discovered", "count", len(lights))
	return lights, nil
}

// Refresh re-reads the bridge state for the given lights and records
// any values, feeding the same event path as network reports.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - lights: Previously discovered lights to refresh
//
// Returns:
//   - error: If the bridge cannot be reached or answers garbage
func (b *Bridge) Refresh(ctx context.Context, lights []*TemperatureLight) error {
	body, err := b.get(ctx, "/lights")
	if err != nil {
		return err
	}

	var resources map[string]lightResource
	if err := json.Unmarshal(body, &resources); err != nil {
		return fmt.Errorf("hue: decoding lights response: %w", err)
	}

	now := time.Now()
	for _, light := range lights {
		resource, ok := resources[light.bridgeID]
		if !ok {
			b.logger.Warn("light missing from bridge", "light", light.bridgeID)
			continue
		}
		light.recordState(resource.State, now)
	}
	return nil
}

// Poll refreshes the lights at the given interval until ctx is
// cancelled. Refresh failures are logged and retried next tick.
func (b *Bridge) Poll(ctx context.Context, lights []*TemperatureLight, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.Refresh(ctx, lights); err != nil {
				b.logger.Warn("hue poll failed", "error", err)
			}
		}
	}
}

// get performs an authenticated GET against the bridge API.
func (b *Bridge) get(ctx context.Context, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s%s", b.baseURL, b.username, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("hue: building request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBridgeUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("hue: reading response: %w", err)
	}
	return body, nil
}

// setState PUTs a state change for one light. Called from the lights'
// fire-and-forget command methods; failures are logged, not returned.
func (b *Bridge) setState(bridgeID string, state map[string]any) {
	payload, err := json.Marshal(state)
	if err != nil {
		b.logger.Error("hue: encoding state change", "light", bridgeID, "error", err)
		return
	}

	url := fmt.Sprintf("%s/%s/lights/%s/state", b.baseURL, b.username, bridgeID)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		b.logger.Error("hue: building state request", "light", bridgeID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Warn("hue: state change failed", "light", bridgeID, "error", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		b.logger.Warn("hue: state change rejected",
			"light", bridgeID,
			"status", resp.StatusCode,
		)
	}
}
