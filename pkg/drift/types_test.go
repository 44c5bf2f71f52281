package drift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeFromCode(t *testing.T) {
	typ, err := TypeFromCode(1)
	require.NoError(t, err)
	assert.Equal(t, TypeExposure, typ)

	_, err = TypeFromCode(0)
	assert.ErrorContains(t, err, "unknown detector type code 0")
	_, err = TypeFromCode(99)
	assert.ErrorContains(t, err, "unknown detector type code 99")
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "exposure", TypeExposure.String())
	assert.Equal(t, "unknown(42)", Type(42).String())
}

func TestType_Valid(t *testing.T) {
	assert.True(t, TypeExposure.Valid())
	assert.False(t, Type(0).Valid())
	assert.False(t, Type(2).Valid())
}

func TestTypes(t *testing.T) {
	types := Types()
	require.NotEmpty(t, types)
	assert.Contains(t, types, TypeExposure)
}

func TestErrorMessages(t *testing.T) {
	qerr := &QueryExecutionError{
		Detector: "expired-snapshots",
		Query:    "RETURN 1",
		Err:      assert.AnError,
	}
	assert.Contains(t, qerr.Error(), `detector "expired-snapshots": validation query failed`)
	assert.ErrorIs(t, qerr, assert.AnError)

	nerr := &NormalizationError{Detector: "expired-snapshots", Column: "tags", Value: map[string]any{}}
	assert.Contains(t, nerr.Error(), `detector "expired-snapshots"`)
	assert.Contains(t, nerr.Error(), `column "tags"`)
	assert.Contains(t, nerr.Error(), "map[string]interface {}")

	serr := &SchemaValidationError{Path: "detectors/x.json", Field: "name", Reason: "must not be empty"}
	assert.Contains(t, serr.Error(), "invalid detector document")
	assert.Contains(t, serr.Error(), "detectors/x.json")
	assert.Contains(t, serr.Error(), `field "name"`)
}
