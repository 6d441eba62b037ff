package hub

import (
	"sync"

	"github.com/hearthlabs/hearth-core/internal/device"
	"github.com/hearthlabs/hearth-core/internal/infrastructure/influxdb"
)

// CompositeSink fans one characteristic-change event out to several
// sinks in order, on the recording goroutine. Sinks may be added after
// construction; the API server attaches its WebSocket broadcast path
// once it starts.
type CompositeSink struct {
	mu    sync.RWMutex
	sinks []device.EventSink
}

// NewCompositeSink combines event sinks into one. Nil entries are
// skipped.
func NewCompositeSink(sinks ...device.EventSink) *CompositeSink {
	s := &CompositeSink{}
	for _, sink := range sinks {
		s.Add(sink)
	}
	return s
}

// Add appends a sink. Nil sinks are ignored.
func (s *CompositeSink) Add(sink device.EventSink) {
	if sink == nil {
		return
	}
	s.mu.Lock()
	s.sinks = append(s.sinks, sink)
	s.mu.Unlock()
}

// CharacteristicDidChange implements device.EventSink.
func (s *CompositeSink) CharacteristicDidChange(ext device.Extension, characteristic device.Characteristic) {
	s.mu.RLock()
	sinks := s.sinks
	s.mu.RUnlock()

	for _, sink := range sinks {
		sink.CharacteristicDidChange(ext, characteristic)
	}
}

// observationExporter ships recorded values to InfluxDB as they occur.
// Writes are batched and non-blocking, so exporting on the recording
// goroutine is safe.
type observationExporter struct {
	influx *influxdb.Client
}

// NewObservationExporter creates an event sink exporting observations
// to InfluxDB.
func NewObservationExporter(influx *influxdb.Client) device.EventSink {
	return &observationExporter{influx: influx}
}

// CharacteristicDidChange implements device.EventSink.
func (e *observationExporter) CharacteristicDidChange(ext device.Extension, characteristic device.Characteristic) {
	value, ok := ext.LatestValue(characteristic)
	if !ok {
		return
	}

	numeric, ok := numericValue(value.Value)
	if !ok {
		return
	}

	e.influx.WriteObservation(uint64(ext.Identifier()), string(characteristic), numeric, value.RecordedAt)
}

// numericValue flattens a typed characteristic value to a float64 for
// time-series export.
func numericValue(v any) (float64, bool) {
	switch value := v.(type) {
	case device.LightStatus:
		return float64(value), true
	case device.Brightness:
		return float64(value), true
	case device.Mireds:
		return float64(value), true
	case device.AmbientLight:
		return float64(value), true
	case device.SwitchState:
		return float64(value), true
	case float64:
		return value, true
	default:
		return 0, false
	}
}
