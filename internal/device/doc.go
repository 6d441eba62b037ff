// Package device models the extensions the hub tracks: their
// identities, capability interfaces, recorded characteristic values
// and the thread-safe registry that owns them.
//
// # Extensions
//
// An Extension is a networked device. HubExtension is the standard
// implementation for handshake-negotiated devices; bridged devices
// (such as Hue lights) provide their own implementations. Extensions
// record observed values into a CharacteristicStore and surface them
// through LatestValue and History.
//
// # Capabilities
//
// Capabilities are queried through a hybrid rule: an extension matches
// a capability query when its type implements the capability interface
// and, if it implements DynamicCapabilities, its current tag set claims
// the capability. Static implementations are matched unconditionally.
//
// # Registry
//
// The Registry serializes mutations through one mutex and fans change
// notifications out to hub-interface extensions on a shared worker
// pool, so interfaces observe changes without ever blocking mutation.
package device
