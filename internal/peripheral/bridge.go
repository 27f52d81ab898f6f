package peripheral

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tillfold/tillfold-core/internal/infrastructure/mqtt"
	"github.com/tillfold/tillfold-core/internal/sale"
)

// Broker is the slice of the MQTT client the bridge uses. Kept narrow so
// tests can feed synthetic events without a live broker.
type Broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	PublishJSON(topic string, payload []byte) error
}

// ScanHandler receives barcodes from connected scanners.
type ScanHandler func(barcode string)

// presenceMessage is the payload peripherals publish on their retained
// presence topic.
type presenceMessage struct {
	Name   string `json:"name"`
	Online bool   `json:"online"`
}

// scanMessage is the payload scanners publish per scan.
type scanMessage struct {
	Barcode string `json:"barcode"`
}

// accessRequest is published when the operator asks for a device role.
type accessRequest struct {
	Action string `json:"action"`
	Role   string `json:"role"`
}

// Bridge connects the peripheral MQTT topics to the tracker and the cart.
// Presence messages drive tracker state, scan messages feed the scan
// handler, and access requests go out on the role's request topic.
type Bridge struct {
	broker  Broker
	topics  mqtt.Topics
	tracker *Tracker
	scans   ScanHandler
	logger  Logger
}

// NewBridge wires a broker to the tracker. scans may be nil if nothing
// consumes barcodes yet.
func NewBridge(broker Broker, topics mqtt.Topics, tracker *Tracker, scans ScanHandler) *Bridge {
	return &Bridge{
		broker:  broker,
		topics:  topics,
		tracker: tracker,
		scans:   scans,
		logger:  noopLogger{},
	}
}

// SetLogger attaches a logger. Safe to call before Start.
func (b *Bridge) SetLogger(l Logger) {
	if l != nil {
		b.logger = l
	}
}

// SetScanHandler wires the barcode consumer. Must be called before Start.
func (b *Bridge) SetScanHandler(fn ScanHandler) {
	b.scans = fn
}

// Start subscribes to the presence and scan wildcards. QoS 1 so presence
// transitions survive a flaky link.
func (b *Bridge) Start() error {
	if err := b.broker.Subscribe(b.topics.AllPresence(), 1, b.handlePresence); err != nil {
		return fmt.Errorf("subscribing to presence: %w", err)
	}
	if err := b.broker.Subscribe(b.topics.AllScans(), 1, b.handleScan); err != nil {
		return fmt.Errorf("subscribing to scans: %w", err)
	}
	return nil
}

func (b *Bridge) handlePresence(topic string, payload []byte) error {
	deviceID := b.topics.DeviceID(topic)
	if deviceID == "" {
		return fmt.Errorf("presence on unrecognised topic %q", topic)
	}

	var msg presenceMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decoding presence from %s: %w", deviceID, err)
	}

	b.tracker.HandlePresence(deviceID, msg.Name, msg.Online)
	return nil
}

func (b *Bridge) handleScan(topic string, payload []byte) error {
	deviceID := b.topics.DeviceID(topic)
	if deviceID == "" {
		return fmt.Errorf("scan on unrecognised topic %q", topic)
	}

	var msg scanMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decoding scan from %s: %w", deviceID, err)
	}
	if msg.Barcode == "" {
		return fmt.Errorf("empty barcode in scan from %s", deviceID)
	}

	b.logger.Debug("scan received", "device_id", deviceID, "barcode", msg.Barcode)
	if b.scans != nil {
		b.scans(msg.Barcode)
	}
	return nil
}

// RequestAccess publishes an access request for the role. Granting shows up
// later as a presence message; a decline is silence, so this never reports
// ErrAccessDeclined itself.
func (b *Bridge) RequestAccess(_ context.Context, role Role) error {
	payload, err := json.Marshal(accessRequest{Action: "request_access", Role: string(role)})
	if err != nil {
		return fmt.Errorf("encoding access request: %w", err)
	}
	if err := b.broker.PublishJSON(b.topics.Request(string(role)), payload); err != nil {
		return fmt.Errorf("publishing access request: %w", err)
	}
	b.logger.Info("access requested", "role", string(role))
	return nil
}

// PrintSink returns a receipt sink that publishes rendered receipts to the
// broadcast print topic.
func (b *Bridge) PrintSink() sale.PrintSink {
	return &mqttPrintSink{broker: b.broker, topic: b.topics.PrintBroadcast()}
}

type mqttPrintSink struct {
	broker Broker
	topic  string
}

func (s *mqttPrintSink) Print(_ context.Context, r *sale.Receipt) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding receipt: %w", err)
	}
	if err := s.broker.PublishJSON(s.topic, payload); err != nil {
		return fmt.Errorf("publishing receipt: %w", err)
	}
	return nil
}
