// Package mqtt provides MQTT client connectivity for the aim controller.
//
// This package manages:
//   - Connection to the instrument broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions restored across reconnects
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MQTT is the only control surface the controller has. The GUI, the embedded
// laser subsystem and the calibration tool all talk to it through the broker;
// the controller never opens a listening socket of its own.
//
//	GUI / Embedded / Calibration ↔ MQTT Broker ↔ aim controller
//
// The topic scheme lives in the protocol package; this package moves opaque
// payloads.
//
// # Security Considerations
//
//   - TLS is available for brokers off the instrument (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is typical for the on-instrument broker
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, &mqtt.Will{
//	    Topic:   topics.Aim(),
//	    Payload: goodbye,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(topics.GUIAim(), 0,
//	    func(topic string, payload []byte) error {
//	        return dispatcher.Enqueue(payload)
//	    })
package mqtt
