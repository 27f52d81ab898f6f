package api

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tillfold/tillfold-core/internal/catalog"
	"github.com/tillfold/tillfold-core/internal/infrastructure/config"
	"github.com/tillfold/tillfold-core/internal/infrastructure/logging"
	"github.com/tillfold/tillfold-core/internal/peripheral"
	"github.com/tillfold/tillfold-core/internal/sale"
)

// memCatalogRepo is an in-memory catalog.Repository for handler tests.
type memCatalogRepo struct {
	products []catalog.Product
}

func (m *memCatalogRepo) GetByBarcode(_ context.Context, barcode string) (*catalog.Product, error) {
	for i := range m.products {
		if m.products[i].Barcode == barcode {
			p := m.products[i]
			return &p, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func (m *memCatalogRepo) List(_ context.Context) ([]catalog.Product, error) {
	out := make([]catalog.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *memCatalogRepo) Upsert(_ context.Context, product *catalog.Product) error {
	for i := range m.products {
		if m.products[i].Barcode == product.Barcode {
			m.products[i] = *product
			return nil
		}
	}
	m.products = append(m.products, *product)
	return nil
}

func (m *memCatalogRepo) Delete(_ context.Context, barcode string) error {
	for i := range m.products {
		if m.products[i].Barcode == barcode {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return catalog.ErrProductNotFound
}

// memLedger is an in-memory sale.Repository.
type memLedger struct {
	records []sale.SaleRecord
}

func (m *memLedger) Append(_ context.Context, rec *sale.SaleRecord) error {
	m.records = append(m.records, *rec)
	return nil
}

func (m *memLedger) List(_ context.Context) ([]sale.SaleRecord, error) {
	out := make([]sale.SaleRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *memLedger) All(_ context.Context) iter.Seq2[sale.SaleRecord, error] {
	return func(yield func(sale.SaleRecord, error) bool) {
		for _, rec := range m.records {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// declineProvider refuses every device access request.
type declineProvider struct{}

func (declineProvider) RequestAccess(context.Context, peripheral.Role) error {
	return peripheral.ErrAccessDeclined
}

type testServer struct {
	*httptest.Server
	api     *Server
	ledger  *memLedger
	tracker *peripheral.Tracker
	catalog *catalog.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := catalog.NewStore(&memCatalogRepo{})
	ledger := &memLedger{}
	session := sale.NewSession(catalog.NewResolver(store), ledger)
	tracker := peripheral.NewTracker(declineProvider{})

	srv, err := New(Deps{
		Store:   config.StoreConfig{ID: "till-001", Name: "Test Till"},
		Logger:  logging.Default(),
		Catalog: store,
		Session: session,
		Ledger:  ledger,
		Tracker: tracker,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	srv.hub = NewHub(config.WebSocketConfig{MaxMessageSize: 4096, PingInterval: 30, PongTimeout: 60}, srv.logger)

	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, api: srv, ledger: ledger, tracker: tracker, catalog: store}
}

func (ts *testServer) request(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodGet, "/api/v1/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]any
	decodeBody(t, resp, &body)
	if body["status"] != "ok" || body["store_id"] != "till-001" {
		t.Errorf("health body = %v", body)
	}
}

func TestProducts_CRUD(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodPost, "/api/v1/products", map[string]any{
		"barcode": "100", "name": "Coffee Beans", "price": "8.50",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}

	resp = ts.request(t, http.MethodGet, "/api/v1/products", nil)
	var list struct {
		Products []catalog.Product `json:"products"`
		Count    int               `json:"count"`
	}
	decodeBody(t, resp, &list)
	if list.Count != 1 || list.Products[0].Name != "Coffee Beans" {
		t.Errorf("list = %+v", list)
	}

	resp = ts.request(t, http.MethodDelete, "/api/v1/products/100", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	// Deleting again is still a 204; absence is not an error.
	resp = ts.request(t, http.MethodDelete, "/api/v1/products/100", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("repeat delete status = %d, want 204", resp.StatusCode)
	}
}

func TestProducts_RejectsInvalid(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing barcode", map[string]any{"name": "Thing", "price": "1.00"}},
		{"missing name", map[string]any{"barcode": "100", "price": "1.00"}},
		{"negative price", map[string]any{"barcode": "100", "name": "Thing", "price": "-1.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.request(t, http.MethodPost, "/api/v1/products", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestCart_ScanFlow(t *testing.T) {
	ts := newTestServer(t)

	ts.request(t, http.MethodPost, "/api/v1/products", map[string]any{
		"barcode": "200", "name": "Oat Milk", "price": "2.29",
	})
	ts.request(t, http.MethodPost, "/api/v1/products", map[string]any{
		"barcode": "201", "name": "Olive Oil", "price": "4.99",
	})

	ts.request(t, http.MethodPost, "/api/v1/cart/scan", map[string]any{"barcode": "200"})
	ts.request(t, http.MethodPost, "/api/v1/cart/scan", map[string]any{"barcode": "200"})
	resp := ts.request(t, http.MethodPost, "/api/v1/cart/scan", map[string]any{"barcode": "201"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("scan status = %d, want 200", resp.StatusCode)
	}

	var cart struct {
		Lines  []sale.Line `json:"lines"`
		Totals struct {
			Subtotal string `json:"subtotal"`
			Tax      string `json:"tax"`
			Total    string `json:"total"`
		} `json:"totals"`
	}
	decodeBody(t, resp, &cart)

	if len(cart.Lines) != 2 {
		t.Fatalf("cart has %d lines, want 2", len(cart.Lines))
	}
	if cart.Lines[0].Qty != 2 {
		t.Errorf("first line qty = %d, want 2", cart.Lines[0].Qty)
	}
	if cart.Totals.Subtotal != "9.57" || cart.Totals.Tax != "0.67" || cart.Totals.Total != "10.24" {
		t.Errorf("totals = %+v", cart.Totals)
	}
}

func TestCart_ScanRequiresBarcode(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodPost, "/api/v1/cart/scan", map[string]any{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCart_ItemOperations(t *testing.T) {
	ts := newTestServer(t)

	ts.request(t, http.MethodPost, "/api/v1/cart/scan", map[string]any{"barcode": "012345678905"})

	ts.request(t, http.MethodPost, "/api/v1/cart/items/012345678905/increment", nil)
	ts.request(t, http.MethodPost, "/api/v1/cart/items/012345678905/increment", nil)
	ts.request(t, http.MethodPost, "/api/v1/cart/items/012345678905/decrement", nil)

	resp := ts.request(t, http.MethodGet, "/api/v1/cart", nil)
	var cart struct {
		Lines []sale.Line `json:"lines"`
	}
	decodeBody(t, resp, &cart)
	if len(cart.Lines) != 1 || cart.Lines[0].Qty != 2 {
		t.Errorf("cart = %+v, want one line with qty 2", cart.Lines)
	}

	resp = ts.request(t, http.MethodDelete, "/api/v1/cart/items/012345678905", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove status = %d, want 200", resp.StatusCode)
	}

	resp = ts.request(t, http.MethodGet, "/api/v1/cart", nil)
	decodeBody(t, resp, &cart)
	if len(cart.Lines) != 0 {
		t.Errorf("cart has %d lines after remove, want 0", len(cart.Lines))
	}
}

func TestCart_Clear(t *testing.T) {
	ts := newTestServer(t)

	ts.request(t, http.MethodPost, "/api/v1/cart/scan", map[string]any{"barcode": "012345678905"})

	resp := ts.request(t, http.MethodDelete, "/api/v1/cart", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear status = %d, want 204", resp.StatusCode)
	}

	if got := len(ts.api.session.Lines()); got != 0 {
		t.Errorf("session has %d lines after clear, want 0", got)
	}
	if len(ts.ledger.records) != 0 {
		t.Errorf("clear committed %d sales", len(ts.ledger.records))
	}
}

func TestCheckout(t *testing.T) {
	ts := newTestServer(t)

	ts.request(t, http.MethodPost, "/api/v1/cart/scan", map[string]any{"barcode": "123456789012"})

	resp := ts.request(t, http.MethodPost, "/api/v1/checkout", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout status = %d, want 201", resp.StatusCode)
	}

	var body struct {
		Sale sale.SaleRecord `json:"sale"`
	}
	decodeBody(t, resp, &body)
	if body.Sale.ID == "" || len(body.Sale.Items) != 1 {
		t.Errorf("sale = %+v", body.Sale)
	}

	if len(ts.ledger.records) != 1 {
		t.Errorf("ledger has %d records, want 1", len(ts.ledger.records))
	}
	if got := len(ts.api.session.Lines()); got != 0 {
		t.Errorf("cart not cleared after checkout: %d lines", got)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodPost, "/api/v1/checkout", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestSales_ListAndExport(t *testing.T) {
	ts := newTestServer(t)

	ts.request(t, http.MethodPost, "/api/v1/cart/scan", map[string]any{"barcode": "123456789012"})
	ts.request(t, http.MethodPost, "/api/v1/checkout", nil)

	resp := ts.request(t, http.MethodGet, "/api/v1/sales", nil)
	var list struct {
		Sales []sale.SaleRecord `json:"sales"`
		Count int               `json:"count"`
	}
	decodeBody(t, resp, &list)
	if list.Count != 1 {
		t.Fatalf("sales count = %d, want 1", list.Count)
	}

	resp = ts.request(t, http.MethodGet, "/api/v1/sales/export", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "sales.csv") {
		t.Errorf("Content-Disposition = %q, want sales.csv attachment", cd)
	}

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.HasPrefix(buf.String(), `"Date","Items","Subtotal","Tax","Total"`) {
		t.Errorf("export starts with %q", buf.String()[:min(len(buf.String()), 60)])
	}
	if !strings.Contains(buf.String(), "Chocolate Bar x1") {
		t.Errorf("export missing item line: %q", buf.String())
	}
}

func TestDevices_List(t *testing.T) {
	ts := newTestServer(t)

	ts.tracker.HandlePresence("scanner-01", "USB Barcode Scanner", true)

	resp := ts.request(t, http.MethodGet, "/api/v1/devices", nil)
	var body struct {
		Devices []peripheral.Device `json:"devices"`
		Status  peripheral.Status   `json:"status"`
	}
	decodeBody(t, resp, &body)

	if len(body.Devices) != 1 {
		t.Fatalf("devices = %d, want 1", len(body.Devices))
	}
	if !body.Status.ScannerConnected || body.Status.PrinterConnected {
		t.Errorf("status = %+v", body.Status)
	}
}

func TestDevices_RequestDeclined(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodPost, "/api/v1/devices/request", map[string]any{"role": "scanner"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]any
	decodeBody(t, resp, &body)
	if granted, ok := body["granted"].(bool); !ok || granted {
		t.Errorf("body = %v, want granted=false", body)
	}

	// A decline leaves device state untouched.
	if status := ts.tracker.Snapshot(); status.ScannerConnected {
		t.Error("decline changed tracker state")
	}
}

func TestDevices_RequestUnknownRole(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodPost, "/api/v1/devices/request", map[string]any{"role": "toaster"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(t, http.MethodGet, "/api/v1/health", nil)
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("response missing X-Request-ID header")
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	deps := Deps{Logger: logging.Default()}
	if _, err := New(deps); err == nil {
		t.Error("New() with missing deps succeeded, want error")
	}

	if _, err := New(Deps{}); err == nil {
		t.Error("New() with no logger succeeded, want error")
	}
}
