package peripheral

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillfold/tillfold-core/internal/infrastructure/mqtt"
	"github.com/tillfold/tillfold-core/internal/sale"
)

// fakeBroker records subscriptions and publishes, and lets tests inject
// messages as if they arrived from the wire.
type fakeBroker struct {
	handlers  map[string]mqtt.MessageHandler
	published map[string][]byte
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		handlers:  make(map[string]mqtt.MessageHandler),
		published: make(map[string][]byte),
	}
}

func (f *fakeBroker) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	f.handlers[topic] = handler
	return nil
}

func (f *fakeBroker) PublishJSON(topic string, payload []byte) error {
	f.published[topic] = payload
	return nil
}

// deliver routes a message through the handler registered for the wildcard.
func (f *fakeBroker) deliver(t *testing.T, wildcard, topic string, payload any) error {
	t.Helper()

	handler, ok := f.handlers[wildcard]
	if !ok {
		t.Fatalf("no subscription for %s", wildcard)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return handler(topic, raw)
}

func newTestBridge(t *testing.T, scans ScanHandler) (*Bridge, *fakeBroker, *Tracker) {
	t.Helper()

	broker := newFakeBroker()
	tracker := NewTracker(nil)
	bridge := NewBridge(broker, mqtt.NewTopics("tillfold"), tracker, scans)
	if err := bridge.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return bridge, broker, tracker
}

func TestBridge_PresenceDrivesTracker(t *testing.T) {
	_, broker, tracker := newTestBridge(t, nil)

	err := broker.deliver(t, "tillfold/peripheral/+/presence",
		"tillfold/peripheral/scanner-01/presence",
		presenceMessage{Name: "USB Barcode Scanner", Online: true})
	if err != nil {
		t.Fatalf("presence handler error = %v", err)
	}

	if !tracker.Snapshot().ScannerConnected {
		t.Error("ScannerConnected = false after presence message")
	}

	err = broker.deliver(t, "tillfold/peripheral/+/presence",
		"tillfold/peripheral/scanner-01/presence",
		presenceMessage{Name: "USB Barcode Scanner", Online: false})
	if err != nil {
		t.Fatalf("presence handler error = %v", err)
	}

	if tracker.Snapshot().ScannerConnected {
		t.Error("ScannerConnected = true after offline presence")
	}
}

func TestBridge_ScanFeedsHandler(t *testing.T) {
	var scanned []string
	_, broker, _ := newTestBridge(t, func(barcode string) {
		scanned = append(scanned, barcode)
	})

	err := broker.deliver(t, "tillfold/peripheral/+/scan",
		"tillfold/peripheral/scanner-01/scan",
		scanMessage{Barcode: "012345678905"})
	if err != nil {
		t.Fatalf("scan handler error = %v", err)
	}

	if len(scanned) != 1 || scanned[0] != "012345678905" {
		t.Errorf("scanned = %v, want [012345678905]", scanned)
	}
}

func TestBridge_ScanRejectsEmptyBarcode(t *testing.T) {
	_, broker, _ := newTestBridge(t, func(string) {
		t.Error("handler called for empty barcode")
	})

	err := broker.deliver(t, "tillfold/peripheral/+/scan",
		"tillfold/peripheral/scanner-01/scan",
		scanMessage{})
	if err == nil {
		t.Error("handler error = nil, want error for empty barcode")
	}
}

func TestBridge_RequestAccess(t *testing.T) {
	bridge, broker, _ := newTestBridge(t, nil)

	if err := bridge.RequestAccess(context.Background(), RoleScanner); err != nil {
		t.Fatalf("RequestAccess() error = %v", err)
	}

	raw, ok := broker.published["tillfold/peripheral/scanner/request"]
	if !ok {
		t.Fatal("no request published")
	}
	var req accessRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		t.Fatalf("unmarshal request: %v", err)
	}
	if req.Role != "scanner" || req.Action != "request_access" {
		t.Errorf("request = %+v", req)
	}
}

func TestBridge_PrintSink(t *testing.T) {
	bridge, broker, _ := newTestBridge(t, nil)

	rec := &sale.SaleRecord{
		ID:   "sale-1",
		Date: time.Date(2026, 8, 15, 14, 30, 0, 0, time.UTC),
		Items: []sale.Line{
			{Barcode: "200", Name: "Oat Milk", Price: decimal.New(229, -2), Qty: 1},
		},
		Subtotal: decimal.New(229, -2),
		Tax:      decimal.New(16, -2),
		Total:    decimal.New(245, -2),
	}

	sink := bridge.PrintSink()
	if err := sink.Print(context.Background(), sale.BuildReceipt("till-001", rec)); err != nil {
		t.Fatalf("Print() error = %v", err)
	}

	raw, ok := broker.published["tillfold/peripheral/printer/print"]
	if !ok {
		t.Fatal("no receipt published")
	}
	var receipt sale.Receipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		t.Fatalf("unmarshal receipt: %v", err)
	}
	if receipt.SaleID != "sale-1" || receipt.Total != "2.45" {
		t.Errorf("receipt = %+v", receipt)
	}
	if receipt.StoreID != "till-001" {
		t.Errorf("receipt.StoreID = %q, want till-001", receipt.StoreID)
	}
}
