package peripheral

import (
	"context"
	"sync"
	"time"
)

// Device is one tracked peripheral.
type Device struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Connected bool      `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
}

// Event is a connect or disconnect notification delivered to subscribers.
type Event struct {
	Device    Device `json:"device"`
	Connected bool   `json:"connected"`
}

// Status is the per-role connection snapshot the till UI cares about.
type Status struct {
	ScannerConnected bool `json:"scanner_connected"`
	PrinterConnected bool `json:"printer_connected"`
}

// Provider delivers access requests to whatever transport reaches the
// devices. A declined request returns ErrAccessDeclined.
type Provider interface {
	RequestAccess(ctx context.Context, role Role) error
}

// Logger is the minimal logging surface the tracker needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Tracker maintains the connection state of the till's peripherals. Devices
// announce themselves by role-classifiable name; devices with no usable
// role are dropped. Subscribers receive an Event for every state change.
type Tracker struct {
	mu        sync.RWMutex
	devices   map[string]Device
	listeners map[int]func(Event)
	nextID    int
	provider  Provider
	logger    Logger
	now       func() time.Time
}

// NewTracker creates an empty tracker. Provider may be nil; access requests
// then fail with ErrNoProvider.
func NewTracker(provider Provider) *Tracker {
	return &Tracker{
		devices:   make(map[string]Device),
		listeners: make(map[int]func(Event)),
		provider:  provider,
		logger:    noopLogger{},
		now:       time.Now,
	}
}

// SetLogger attaches a logger. Safe to call before the tracker is shared.
func (t *Tracker) SetLogger(l Logger) {
	if l != nil {
		t.logger = l
	}
}

// SetProvider wires the access-request transport.
func (t *Tracker) SetProvider(p Provider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.provider = p
}

// HandlePresence records a device announcing itself or going away. Devices
// whose names classify to no role are ignored. Subscribers are notified
// only when the connected state actually changes.
func (t *Tracker) HandlePresence(id, name string, online bool) {
	role := ClassifyRole(name)
	if role == RoleNone {
		t.logger.Debug("ignoring device with no usable role", "device_id", id, "name", name)
		return
	}

	t.mu.Lock()
	prev, known := t.devices[id]
	dev := Device{
		ID:        id,
		Name:      name,
		Role:      role,
		Connected: online,
		LastSeen:  t.now().UTC(),
	}
	t.devices[id] = dev
	changed := !known || prev.Connected != online
	listeners := t.snapshotListeners()
	t.mu.Unlock()

	if !changed {
		return
	}

	if online {
		t.logger.Info("peripheral connected", "device_id", id, "name", name, "role", string(role))
	} else {
		t.logger.Info("peripheral disconnected", "device_id", id, "name", name, "role", string(role))
	}

	ev := Event{Device: dev, Connected: online}
	for _, fn := range listeners {
		fn(ev)
	}
}

// snapshotListeners copies the listener set. Caller must hold mu.
func (t *Tracker) snapshotListeners() []func(Event) {
	out := make([]func(Event), 0, len(t.listeners))
	for _, fn := range t.listeners {
		out = append(out, fn)
	}
	return out
}

// Subscribe registers a callback for connect/disconnect events and returns
// an unregister function. Callbacks run on the goroutine delivering the
// presence event and must not block.
func (t *Tracker) Subscribe(fn func(Event)) func() {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

// Snapshot reports whether each role currently has a connected device.
func (t *Tracker) Snapshot() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var s Status
	for _, d := range t.devices {
		if !d.Connected {
			continue
		}
		switch d.Role {
		case RoleScanner:
			s.ScannerConnected = true
		case RolePrinter:
			s.PrinterConnected = true
		}
	}
	return s
}

// Devices returns all known devices, connected or not.
func (t *Tracker) Devices() []Device {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Device, 0, len(t.devices))
	for _, d := range t.devices {
		out = append(out, d)
	}
	return out
}

// RequestAccess asks the provider to bring a device of the given role
// online. A decline is reported as ErrAccessDeclined and leaves tracker
// state untouched; the device simply never announces itself.
func (t *Tracker) RequestAccess(ctx context.Context, role Role) error {
	if role != RoleScanner && role != RolePrinter {
		return ErrUnknownRole
	}

	t.mu.RLock()
	provider := t.provider
	t.mu.RUnlock()

	if provider == nil {
		return ErrNoProvider
	}
	return provider.RequestAccess(ctx, role)
}
