package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Driver opens sessions against one kind of graph backend.
type Driver interface {
	Connect(ctx context.Context, cfg Config) (Session, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Driver)
)

// Register adds a driver factory to the registry.
// Called by driver implementations in their init() functions.
func Register(name string, factory func(*slog.Logger) Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a driver factory by name.
func Get(name string) (func(*slog.Logger) Driver, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// NewDriver creates a driver instance for the config's type.
// The logger is passed to the driver constructor (nil uses a discard logger).
func NewDriver(cfg Config, logger *slog.Logger) (Driver, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("graph driver type not specified")
	}

	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownDriverError{
			Type:      cfg.Type,
			Available: ListDrivers(),
		}
	}
	return factory(logger), nil
}

// Connect resolves the driver for cfg and opens a session with it.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (Session, error) {
	drv, err := NewDriver(cfg, logger)
	if err != nil {
		return nil, err
	}
	return drv.Connect(ctx, cfg)
}

// ListDrivers returns all registered driver names (sorted).
func ListDrivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a driver type is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownDriverError is returned when an unknown driver type is requested.
type UnknownDriverError struct {
	Type      string
	Available []string
}

func (e *UnknownDriverError) Error() string {
	return fmt.Sprintf("unknown graph driver %q\nAvailable drivers: %v\nHint: Check your graph.type in driftwatch.yaml", e.Type, e.Available)
}
