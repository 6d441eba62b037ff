// Package hue bridges Philips Hue colour-temperature lights into the
// extension registry.
//
// The bridge client speaks the Hue REST API (v1) over plain HTTP on
// the local network. Discovery filters the bridge's lights collection
// to colour temperature models and surfaces each one as a
// TemperatureLight extension whose identifier is derived from the
// bridge's stable uniqueid. Because the bridge has no push channel,
// state is polled; each poll records fresh values through the same
// event path as network extension reports.
package hue
