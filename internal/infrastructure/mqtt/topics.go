package mqtt

import (
	"fmt"
	"strings"
)

// Topics builds peripheral topic names under a configurable prefix
// (peripherals.topic_prefix in config.yaml, default "tillfold").
//
// Topic scheme: {prefix}/peripheral/{device_id}/{channel}
//
//	topics := mqtt.NewTopics("tillfold")
//	topics.Scan("scanner-01")  // "tillfold/peripheral/scanner-01/scan"
type Topics struct {
	prefix string
}

// NewTopics creates a topic builder for the given prefix.
func NewTopics(prefix string) Topics {
	return Topics{prefix: prefix}
}

// Presence returns the retained presence topic for one peripheral.
// Payload: {"name": "...", "online": true|false}
func (t Topics) Presence(deviceID string) string {
	return fmt.Sprintf("%s/peripheral/%s/presence", t.prefix, deviceID)
}

// AllPresence returns the wildcard pattern matching every presence topic.
func (t Topics) AllPresence() string {
	return fmt.Sprintf("%s/peripheral/+/presence", t.prefix)
}

// Scan returns the scan event topic for one scanner.
// Payload: {"barcode": "..."}
func (t Topics) Scan(deviceID string) string {
	return fmt.Sprintf("%s/peripheral/%s/scan", t.prefix, deviceID)
}

// AllScans returns the wildcard pattern matching every scan topic.
func (t Topics) AllScans() string {
	return fmt.Sprintf("%s/peripheral/+/scan", t.prefix)
}

// Print returns the receipt job topic for one printer.
func (t Topics) Print(deviceID string) string {
	return fmt.Sprintf("%s/peripheral/%s/print", t.prefix, deviceID)
}

// PrintBroadcast returns the topic receipt jobs are published to when no
// specific printer is addressed.
func (t Topics) PrintBroadcast() string {
	return fmt.Sprintf("%s/peripheral/printer/print", t.prefix)
}

// Request returns the topic an access request for a device role is
// published to. Devices that accept respond on their presence topic;
// declining is silence.
func (t Topics) Request(role string) string {
	return fmt.Sprintf("%s/peripheral/%s/request", t.prefix, role)
}

// DeviceID extracts the device segment from a peripheral topic, or ""
// when the topic does not match the scheme.
func (t Topics) DeviceID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != t.prefix || parts[1] != "peripheral" {
		return ""
	}
	return parts[2]
}
