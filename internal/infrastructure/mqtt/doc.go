// Package mqtt wraps the paho MQTT client for peripheral traffic.
//
// Barcode scanners publish scan events, peripherals announce presence on
// retained topics, and the core publishes receipt jobs for printers. The
// wrapper adds reconnect-safe subscription tracking, a Last Will on the
// system status topic, and panic-safe message handlers.
package mqtt
