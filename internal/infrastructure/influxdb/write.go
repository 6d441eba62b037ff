package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteObservation writes a single recorded characteristic value to InfluxDB.
//
// This is the primary method for exporting extension telemetry. The write
// is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - extensionID: The reporting extension's identifier
//   - characteristic: The characteristic name (e.g., "ambient_light")
//   - value: The numeric value to record
//   - recordedAt: When the extension observed the value
//
// Example:
//
//	client.WriteObservation(9184, "ambient_light", 412.5, time.Now())
func (c *Client) WriteObservation(extensionID uint64, characteristic string, value float64, recordedAt time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"observations",
		map[string]string{
			"extension_id":   strconv.FormatUint(extensionID, 10),
			"characteristic": characteristic,
		},
		map[string]interface{}{
			"value": value,
		},
		recordedAt,
	)

	c.writeAPI.WritePoint(point)
}

// WriteAutomationFired records an automation trigger.
//
// Used for auditing which automations ran and when.
//
// Parameters:
//   - label: The automation's label
//   - trigger: What fired it ("schedule", "event", "manual")
func (c *Client) WriteAutomationFired(label string, trigger string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"automation_fired",
		map[string]string{
			"label":   label,
			"trigger": trigger,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
