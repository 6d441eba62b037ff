// Package mqtt provides MQTT client connectivity for Hearth Core.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Hearth uses MQTT as the message bus between the core and networked
// extensions. The broker (Mosquitto) decouples the core from each
// extension's own firmware and lifecycle.
//
//	Hearth Core ↔ MQTT Broker ↔ Extensions
//
// Commands to an extension travel on hearth/command/{id}/{package}/{service};
// reports from extensions arrive on hearth/report/{package}/{service} with
// the sender's identifier leading the payload.
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all extension reports
//	err = client.Subscribe(mqtt.Topics{}.AllReports(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s (%d bytes)", topic, len(payload))
//	        return nil
//	    })
//
//	// Publish a command frame
//	topic := mqtt.Topics{}.ExtensionCommand(9184, 111, 1)
//	client.Publish(topic, payload, 1, false)
package mqtt
