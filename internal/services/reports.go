package services

import (
	"fmt"
	"time"

	"github.com/hearthlabs/hearth-core/internal/device"
	"github.com/hearthlabs/hearth-core/internal/transport"
	"github.com/hearthlabs/hearth-core/internal/wire"
)

// Reports decodes inbound extension reports and records the observed
// values on the reporting extension.
//
// Every report payload starts with the reporting extension's 8-byte
// identifier, followed by the service-specific value. A report from an
// unknown identifier, or from an extension whose type cannot record the
// value, is logged and dropped.
type Reports struct {
	registry *device.Registry
	logger   Logger
}

// NewReports creates the report service over the extension registry.
func NewReports(registry *device.Registry) *Reports {
	return &Reports{
		registry: registry,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the report service.
func (r *Reports) SetLogger(logger Logger) {
	r.logger = logger
}

// Register installs the report handlers on the dispatcher.
func (r *Reports) Register(d *transport.Dispatcher) {
	d.Register(device.PackageLighting, device.ServiceLightStatusReport, r.handleLightStatus)
	d.Register(device.PackageLighting, device.ServiceLightBrightnessReport, r.handleLightBrightness)
	d.Register(device.PackageSensing, device.ServiceAmbientLightReport, r.handleAmbientLight)
	d.Register(device.PackageSwitch, device.ServiceSwitchStateReport, r.handleSwitchState)
}

// handleLightStatus records a light on/off report.
// Payload: identifier (8 bytes), status (1 byte).
func (r *Reports) handleLightStatus(payload []byte) error {
	ext, rest, err := r.sender(payload)
	if err != nil {
		return err
	}

	status, _, err := wire.ConsumeByte(rest)
	if err != nil {
		return fmt.Errorf("decoding light status: %w", err)
	}

	controller, ok := ext.(device.LightController)
	if !ok {
		return fmt.Errorf("extension %d cannot record light status", ext.Identifier())
	}

	controller.RecordLightStatus(device.LightStatus(status), time.Now())
	r.logger.Debug("light status recorded",
		"extension", uint64(ext.Identifier()),
		"status", device.LightStatus(status).String(),
	)
	return nil
}

// handleLightBrightness records a brightness report.
// Payload: identifier (8 bytes), brightness (8-byte float).
func (r *Reports) handleLightBrightness(payload []byte) error {
	ext, rest, err := r.sender(payload)
	if err != nil {
		return err
	}

	brightness, _, err := wire.ConsumeFloat64(rest)
	if err != nil {
		return fmt.Errorf("decoding brightness: %w", err)
	}

	controller, ok := ext.(device.LightBrightnessController)
	if !ok {
		return fmt.Errorf("extension %d cannot record brightness", ext.Identifier())
	}

	controller.RecordLightBrightness(device.Brightness(brightness), time.Now())
	r.logger.Debug("brightness recorded",
		"extension", uint64(ext.Identifier()),
		"brightness", brightness,
	)
	return nil
}

// handleAmbientLight records an ambient light sensor report.
// Payload: identifier (8 bytes), lux (8-byte float).
func (r *Reports) handleAmbientLight(payload []byte) error {
	ext, rest, err := r.sender(payload)
	if err != nil {
		return err
	}

	lux, _, err := wire.ConsumeFloat64(rest)
	if err != nil {
		return fmt.Errorf("decoding ambient light: %w", err)
	}

	sensor, ok := ext.(device.AmbientLightSensor)
	if !ok {
		return fmt.Errorf("extension %d cannot record ambient light", ext.Identifier())
	}

	sensor.RecordAmbientLightReading(device.AmbientLight(lux), time.Now())
	r.logger.Debug("ambient light recorded",
		"extension", uint64(ext.Identifier()),
		"lux", lux,
	)
	return nil
}

// handleSwitchState records a switch position report.
// Payload: identifier (8 bytes), state (1 byte).
func (r *Reports) handleSwitchState(payload []byte) error {
	ext, rest, err := r.sender(payload)
	if err != nil {
		return err
	}

	state, _, err := wire.ConsumeByte(rest)
	if err != nil {
		return fmt.Errorf("decoding switch state: %w", err)
	}

	controller, ok := ext.(device.SwitchController)
	if !ok {
		return fmt.Errorf("extension %d cannot record switch state", ext.Identifier())
	}

	controller.RecordSwitchState(device.SwitchState(state), time.Now())
	r.logger.Debug("switch state recorded",
		"extension", uint64(ext.Identifier()),
		"state", device.SwitchState(state).String(),
	)
	return nil
}

// sender decodes the leading identifier and resolves the reporting
// extension, returning the remaining payload.
func (r *Reports) sender(payload []byte) (device.Extension, []byte, error) {
	id, rest, err := wire.ConsumeUint64(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding report sender: %w", err)
	}

	ext, ok := r.registry.Find(device.Identifier(id))
	if !ok {
		return nil, nil, fmt.Errorf("report from unknown extension %d", id)
	}
	return ext, rest, nil
}
