package graph

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopDriver struct{}

func (nopDriver) Connect(_ context.Context, _ Config) (Session, error) { return nil, nil }

func TestUnknownDriverError_Error(t *testing.T) {
	err := &UnknownDriverError{
		Type:      "fake_graph",
		Available: []string{"neo4j", "sqlite"},
	}

	msg := err.Error()

	assert.NotEmpty(t, msg, "error message should not be empty")

	// Should mention the type
	assert.Contains(t, msg, "fake_graph", "error should mention the unknown type 'fake_graph'")

	// Should hint about config
	assert.Contains(t, msg, "driftwatch.yaml", "error should mention config file")
}

func TestRegister(t *testing.T) {
	Register("test_driver_internal", func(_ *slog.Logger) Driver { return nopDriver{} })

	assert.True(t, IsRegistered("test_driver_internal"), "test_driver_internal should be registered after Register()")

	factory, ok := Get("test_driver_internal")
	assert.True(t, ok, "Get(test_driver_internal) should return true after Register()")
	assert.NotNil(t, factory, "Get(test_driver_internal) should return non-nil factory")
}

func TestNewDriver_EmptyType(t *testing.T) {
	cfg := Config{
		Type: "",
	}

	_, err := NewDriver(cfg, nil)
	require.Error(t, err, "NewDriver with empty type should fail")
	assert.Equal(t, "graph driver type not specified", err.Error(), "error message")
}

func TestNewDriver_Unknown(t *testing.T) {
	_, err := NewDriver(Config{Type: "no_such_backend"}, nil)
	require.Error(t, err)

	var unknown *UnknownDriverError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "no_such_backend", unknown.Type)
}

func TestRecord_Get(t *testing.T) {
	rec := &Record{
		Keys:   []string{"volume_id", "ports"},
		Values: []any{"vol-001", []any{"22", "443"}},
	}

	v, ok := rec.Get("volume_id")
	require.True(t, ok)
	assert.Equal(t, "vol-001", v)

	_, ok = rec.Get("missing")
	assert.False(t, ok)

	m := rec.AsMap()
	assert.Len(t, m, 2)
	assert.Equal(t, "vol-001", m["volume_id"])
}
