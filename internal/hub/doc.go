// Package hub assembles the hearth core: the extension, room and
// automation registries, the event path that connects them, and the
// optional persistence and export sides.
//
// The hub owns no behaviour of its own. It exists so main constructs
// the object graph in one place and every surface (MQTT services, the
// HTTP API, bridges) receives the same wired registries.
package hub
