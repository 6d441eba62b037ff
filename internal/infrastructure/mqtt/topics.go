package mqtt

import "fmt"

// Topic prefixes for the Hearth MQTT namespace.
//
// Extension traffic uses two flat schemes:
//
//	hearth/command/{extension_id}/{package}/{service}  — core to one extension
//	hearth/report/{package}/{service}                  — extensions to core
//
// Command topics are addressed: each extension subscribes to its own
// identifier subtree. Report topics are shared: the reporting
// extension's identifier travels in the payload.
const (
	// TopicPrefix is the base for all Hearth topics.
	TopicPrefix = "hearth"

	// TopicPrefixCommand is the base for per-extension command topics.
	TopicPrefixCommand = "hearth/command"

	// TopicPrefixReport is the base for report topics.
	TopicPrefixReport = "hearth/report"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "hearth/system"
)

// Topics provides builders for Hearth MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	cmdTopic := topics.ExtensionCommand(9184, 111, 1)
//	// Returns: "hearth/command/9184/111/1"
type Topics struct{}

// ExtensionCommand returns the topic for a command to one extension.
//
// Example: hearth/command/9184/111/1
func (Topics) ExtensionCommand(extensionID uint64, pkg, service uint8) string {
	return fmt.Sprintf("%s/%d/%d/%d", TopicPrefixCommand, extensionID, pkg, service)
}

// ExtensionReport returns the topic extensions publish a report on.
//
// Example: hearth/report/111/4
func (Topics) ExtensionReport(pkg, service uint8) string {
	return fmt.Sprintf("%s/%d/%d", TopicPrefixReport, pkg, service)
}

// SystemStatus returns the system status topic. Core's online/offline
// presence (including the LWT) is published here.
//
// Example: hearth/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemShutdown returns the shutdown signal topic.
//
// Example: hearth/system/shutdown
func (Topics) SystemShutdown() string {
	return fmt.Sprintf("%s/shutdown", TopicPrefixSystem)
}

// AllReports returns a pattern matching every report topic.
//
// Pattern: hearth/report/+/+
func (Topics) AllReports() string {
	return fmt.Sprintf("%s/+/+", TopicPrefixReport)
}

// AllCommands returns a pattern matching every command topic.
// Useful for diagnostics; core itself only publishes on these.
//
// Pattern: hearth/command/+/+/+
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/+/+/+", TopicPrefixCommand)
}

// AllTopics returns a pattern matching all Hearth topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: hearth/#
func (Topics) AllTopics() string {
	return "hearth/#"
}
