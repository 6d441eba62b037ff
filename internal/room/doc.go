// Package room groups extensions into named rooms and owns the
// thread-safe room registry.
//
// Rooms reference extensions by identifier only; no extension state is
// held in a room. Room names are unique, case-sensitive primary keys —
// adding a room under an existing name replaces the prior room
// wholesale. The registry notifies hub interfaces of room changes
// through the device registry.
//
// Rooms serialize to a length-prefixed binary snapshot for persistence
// (see MarshalBinary and Decode); SQLiteSnapshotRepository stores the
// snapshots so membership survives a hub restart.
package room
