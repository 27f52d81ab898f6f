package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSaleMetric records a committed sale as a time-series point.
//
// Called once per checkout commit. The write is non-blocking; points are
// batched and sent asynchronously.
//
//	client.WriteSaleMetric("till-001", "9.57", "0.67", "10.24", 3)
func (c *Client) WriteSaleMetric(storeID, subtotal, tax, total string, itemCount int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sales",
		map[string]string{
			"store_id": storeID,
		},
		map[string]interface{}{
			"subtotal":   subtotal,
			"tax":        tax,
			"total":      total,
			"item_count": itemCount,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePeripheralStatus records a peripheral connectivity change.
// Useful for charting scanner/printer uptime alongside sales volume.
func (c *Client) WritePeripheralStatus(storeID, role string, connected bool) {
	if !c.IsConnected() {
		return
	}

	value := 0
	if connected {
		value = 1
	}

	point := write.NewPoint(
		"peripheral_status",
		map[string]string{
			"store_id": storeID,
			"role":     role,
		},
		map[string]interface{}{
			"connected": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
