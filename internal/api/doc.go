// Package api implements the HTTP REST API and WebSocket server for Tillfold Core.
//
// This package provides:
//   - REST endpoints for catalog CRUD, cart operations, checkout, and sales export
//   - WebSocket hub for real-time cart and peripheral broadcasts
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// The API server sits between till front-ends and the domain engines: the
// catalog store, the sale session, the ledger, and the peripheral tracker.
// Barcode scans arrive either over MQTT (hardware scanners) or through
// POST /cart/scan (simulated scans); both feed the same session, and the
// resulting cart state is broadcast to WebSocket subscribers.
//
// # Graceful Degradation
//
// The server operates without MQTT and without InfluxDB. Receipts and sale
// metrics are skipped when their sinks are absent; checkout itself only
// depends on the ledger.
package api
