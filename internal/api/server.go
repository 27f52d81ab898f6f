// Package api provides the HTTP REST API and WebSocket server for Tillfold Core.
//
// It exposes the product catalog, the live cart, checkout, sales history, and
// peripheral status to till front-ends, plus a WebSocket stream for real-time
// cart and device updates.
//
// The server follows the same lifecycle pattern as the other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tillfold/tillfold-core/internal/catalog"
	"github.com/tillfold/tillfold-core/internal/infrastructure/config"
	"github.com/tillfold/tillfold-core/internal/infrastructure/influxdb"
	"github.com/tillfold/tillfold-core/internal/infrastructure/logging"
	"github.com/tillfold/tillfold-core/internal/peripheral"
	"github.com/tillfold/tillfold-core/internal/sale"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// WebSocket event channels.
const (
	ChannelCartUpdated   = "cart.updated"
	ChannelSaleCommitted = "sale.committed"
	ChannelDeviceChanged = "device.state_changed"
)

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Store   config.StoreConfig
	Logger  *logging.Logger
	Catalog *catalog.Store
	Session *sale.Session
	Ledger  sale.Repository
	Tracker *peripheral.Tracker
	Printer sale.PrintSink   // optional: receipts are skipped when nil
	Metrics *influxdb.Client // optional: sale metrics are skipped when nil
	Version string
}

// Server is the HTTP API server for Tillfold Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg      config.APIConfig
	wsCfg    config.WebSocketConfig
	storeCfg config.StoreConfig
	logger   *logging.Logger
	catalog  *catalog.Store
	session  *sale.Session
	ledger   sale.Repository
	tracker  *peripheral.Tracker
	printer  sale.PrintSink
	metrics  *influxdb.Client
	version  string
	server   *http.Server
	hub      *Hub
	cancel   context.CancelFunc // cancels background goroutines on Close()
	untrack  func()             // unsubscribes from tracker events
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog store is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("sale session is required")
	}
	if deps.Ledger == nil {
		return nil, fmt.Errorf("sales ledger is required")
	}
	if deps.Tracker == nil {
		return nil, fmt.Errorf("peripheral tracker is required")
	}

	return &Server{
		cfg:      deps.Config,
		wsCfg:    deps.WS,
		storeCfg: deps.Store,
		logger:   deps.Logger,
		catalog:  deps.Catalog,
		session:  deps.Session,
		ledger:   deps.Ledger,
		tracker:  deps.Tracker,
		printer:  deps.Printer,
		metrics:  deps.Metrics,
		version:  deps.Version,
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the WebSocket hub, subscribes to peripheral
// events for real-time broadcast, and launches the HTTP listener in a
// background goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	// Relay peripheral connect/disconnect events to WebSocket clients.
	s.untrack = s.tracker.Subscribe(func(ev peripheral.Event) {
		s.hub.Broadcast(ChannelDeviceChanged, ev)
	})

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.untrack != nil {
		s.untrack()
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
