// Package automation holds the hub's automation registry, the
// minute-sweep scheduler for time automations and the router that
// feeds characteristic changes to event automations.
//
// # Time automations
//
// Time automations declare a due offset into the day. The scheduler
// sweeps once a minute and fires every automation whose due offset
// fell inside the window since the previous sweep, so a due time is
// never missed even if a sweep runs late. Fired actions run on a
// shared worker pool; a slow action never delays the sweep.
//
// # Event automations
//
// Event automations trigger on a characteristic change from a scoped
// domain: any extension, one specific extension, or any extension in a
// named room. Routing is synchronous and in registration order on the
// goroutine that recorded the value.
//
// # Manual triggers
//
// Perform fires the first automation whose label matches, on the
// caller's goroutine.
package automation
