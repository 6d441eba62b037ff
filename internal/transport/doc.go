// Package transport carries the extension protocol over MQTT.
//
// Outbound, the Outbox implements device.Messenger: commands are
// wrapped in expiring Messages and drained to per-extension command
// topics by a single sender goroutine, so callers never block on the
// broker. Inbound, the Dispatcher subscribes to the shared report
// topics and routes each payload to the handler registered for its
// (package, service) pair.
//
// Topic scheme:
//
//	hearth/command/{extension_id}/{package}/{service}  — core to extension
//	hearth/report/{package}/{service}                  — extension to core
package transport
