// Package services implements the inbound half of the extension
// protocol: handshake announcements that admit extensions into the
// registry, and value reports that record observed state on them.
//
// Handlers register against (package, service) pairs on the transport
// dispatcher. Malformed payloads, unknown senders and capability
// mismatches fail the individual report; they never take the report
// path down.
package services
