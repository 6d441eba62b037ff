package hub

import (
	"context"
	"fmt"

	"github.com/hearthlabs/hearth-core/internal/automation"
	"github.com/hearthlabs/hearth-core/internal/device"
	"github.com/hearthlabs/hearth-core/internal/infrastructure/influxdb"
	"github.com/hearthlabs/hearth-core/internal/room"
	"github.com/hearthlabs/hearth-core/internal/work"
)

// Logger defines the logging interface used by the hub package.
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

// Options configures a Hub.
type Options struct {
	// Pool runs asynchronous work: fired automations and registry
	// change notifications. Required.
	Pool *work.Pool

	// Messenger is the outbound command path handed to admitted
	// extensions. May be nil when running without a broker.
	Messenger device.Messenger

	// Influx, when non-nil, receives every recorded observation.
	Influx *influxdb.Client

	// Snapshots, when non-nil, persists room membership across
	// restarts.
	Snapshots *room.SQLiteSnapshotRepository

	// Logger for the hub and its registries. Nil disables logging.
	Logger Logger
}

// Hub is the assembled core: the extension, room and automation
// registries wired to each other and to the event path.
//
// Hub is plain dependency-injected state, constructed once in main and
// passed to the surfaces that need it. Nothing in here is global.
type Hub struct {
	Devices     *device.Registry
	Rooms       *room.Registry
	Automations *automation.Registry
	Router      *automation.Router

	messenger device.Messenger
	sink      *CompositeSink
	snapshots *room.SQLiteSnapshotRepository
	logger    Logger
}

// New assembles a hub from its parts.
//
// The wiring is fixed: registry change notifications run on the pool,
// room changes are mirrored to hub-interface extensions through the
// device registry, and every recorded value routes through the event
// router (plus the InfluxDB exporter when configured).
func New(opts Options) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	// A nil *work.Pool must stay a nil interface so the registries
	// fall back to inline dispatch.
	var deviceDispatcher device.Dispatcher
	var automationDispatcher automation.Dispatcher
	if opts.Pool != nil {
		deviceDispatcher = opts.Pool
		automationDispatcher = opts.Pool
	}

	devices := device.NewRegistry(deviceDispatcher)
	devices.SetLogger(logger)

	rooms := room.NewRegistry(devices)
	rooms.SetLogger(logger)

	automations := automation.NewRegistry(automationDispatcher)
	automations.SetLogger(logger)

	router := automation.NewRouter(automations, rooms)
	router.SetLogger(logger)

	sinks := []device.EventSink{router}
	if opts.Influx != nil {
		sinks = append(sinks, NewObservationExporter(opts.Influx))
		automations.SetFiredObserver(opts.Influx.WriteAutomationFired)
	}

	return &Hub{
		Devices:     devices,
		Rooms:       rooms,
		Automations: automations,
		Router:      router,
		messenger:   opts.Messenger,
		sink:        NewCompositeSink(sinks...),
		snapshots:   opts.Snapshots,
		logger:      logger,
	}
}

// EventSink returns the sink new extensions must be wired with so
// their recorded values reach event automations and the exporter.
func (h *Hub) EventSink() device.EventSink {
	return h.sink
}

// AddSink attaches another destination for characteristic-change
// events. Safe to call while events are flowing.
func (h *Hub) AddSink(sink device.EventSink) {
	h.sink.Add(sink)
}

// Messenger returns the outbound command path, or nil when running
// without a broker.
func (h *Hub) Messenger() device.Messenger {
	return h.messenger
}

// LoadRooms restores persisted room snapshots into the room registry.
// Corrupt snapshots were already skipped by the repository; rooms load
// in whatever state survived.
func (h *Hub) LoadRooms(ctx context.Context) error {
	if h.snapshots == nil {
		return nil
	}

	rooms, err := h.snapshots.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading room snapshots: %w", err)
	}

	for _, r := range rooms {
		h.Rooms.Add(r)
	}

	h.logger.Info("rooms restored", "count", len(rooms))
	return nil
}

// UpsertRoom replaces the named room's membership wholesale, persists
// the snapshot, and notifies hub interfaces.
func (h *Hub) UpsertRoom(ctx context.Context, name string, members []device.Identifier) error {
	r := room.New(name)
	for _, id := range members {
		r.AddMember(id)
	}

	h.Rooms.Add(r)

	if h.snapshots != nil {
		if err := h.snapshots.Save(ctx, r); err != nil {
			return fmt.Errorf("persisting room %q: %w", name, err)
		}
	}
	return nil
}

// RemoveRoom removes the named room and its persisted snapshot.
// Removing an unknown room is a no-op.
func (h *Hub) RemoveRoom(ctx context.Context, name string) error {
	h.Rooms.Remove(name)

	if h.snapshots != nil {
		if err := h.snapshots.Delete(ctx, name); err != nil {
			return fmt.Errorf("deleting room snapshot %q: %w", name, err)
		}
	}
	return nil
}
