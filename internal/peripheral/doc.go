// Package peripheral tracks the till's scanner and printer.
//
// Devices announce themselves over MQTT presence topics and are classified
// into roles by name. The Tracker keeps per-role connection state and
// notifies subscribers of changes; the Bridge moves MQTT traffic in and out,
// including scan events into the cart and rendered receipts out to the
// printer.
package peripheral
