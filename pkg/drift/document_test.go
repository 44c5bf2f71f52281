package drift

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() *Document {
	return &Document{
		SchemaVersion:   1,
		Name:            "expired-snapshots",
		ValidationQuery: "MATCH (s:EBSSnapshot) WHERE s.expired RETURN s.id AS snapshot_id, s.region AS region",
		Properties:      []string{"Snapshot ID", "Region"},
		DetectorType:    1,
		Expectations: [][]string{
			{"vol-001", "us-east-1"},
			{"vol-002", "us-west-2"},
		},
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		t.Run(ext, func(t *testing.T) {
			d, err := FromDocument(testDocument(), "")
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "expired-snapshots"+ext)
			require.NoError(t, SaveFile(d, path))

			loaded, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, d.Document(), loaded.Document())
			assert.Equal(t, testDocument().Expectations, loaded.Baseline().Rows())
		})
	}
}

func TestDocumentRoundTrip_KeepsDuplicatesAndOrder(t *testing.T) {
	doc := testDocument()
	doc.Expectations = [][]string{
		{"vol-002", "us-west-2"},
		{"vol-001", "us-east-1"},
		{"vol-002", "us-west-2"},
	}
	d, err := FromDocument(doc, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "d.json")
	require.NoError(t, SaveFile(d, path))
	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Expectations, loaded.Baseline().Rows())
}

func TestFromDocument_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
		field  string
		reason string
	}{
		{
			name:   "missing name",
			mutate: func(doc *Document) { doc.Name = "" },
			field:  "name",
			reason: "must not be empty",
		},
		{
			name:   "missing query",
			mutate: func(doc *Document) { doc.ValidationQuery = "" },
			field:  "validation_query",
			reason: "must not be empty",
		},
		{
			name:   "unknown type code",
			mutate: func(doc *Document) { doc.DetectorType = 7 },
			field:  "detector_type",
			reason: "unknown detector type code 7",
		},
		{
			name:   "unsupported schema version",
			mutate: func(doc *Document) { doc.SchemaVersion = 2 },
			field:  "schema_version",
			reason: "unsupported schema version 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testDocument()
			tt.mutate(doc)

			_, err := FromDocument(doc, "detectors/bad.json")
			var serr *SchemaValidationError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.field, serr.Field)
			assert.ErrorContains(t, err, tt.reason)
			assert.ErrorContains(t, err, "detectors/bad.json")
		})
	}
}

func TestFromDocument_SchemaVersionDefaults(t *testing.T) {
	doc := testDocument()
	doc.SchemaVersion = 0

	d, err := FromDocument(doc, "")
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, d.Document().SchemaVersion)
}

func TestFromDocument_EmptyExpectations(t *testing.T) {
	doc := testDocument()
	doc.Expectations = nil

	d, err := FromDocument(doc, "")
	require.NoError(t, err)
	assert.Equal(t, 0, d.Baseline().Len())
}

func TestDecodeDocument_RejectsUnknownFields(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format DocumentFormat
	}{
		{
			name:   "json",
			data:   `{"name":"x","validation_query":"RETURN 1","detector_type":1,"unexpected":true}`,
			format: FormatJSON,
		},
		{
			name:   "yaml",
			data:   "name: x\nvalidation_query: RETURN 1\ndetector_type: 1\nunexpected: true\n",
			format: FormatYAML,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDocument([]byte(tt.data), tt.format, "detectors/x."+tt.name)
			var serr *SchemaValidationError
			require.ErrorAs(t, err, &serr)
			assert.ErrorContains(t, err, "detectors/x."+tt.name)
		})
	}
}

func TestDecodeDocument_Malformed(t *testing.T) {
	_, err := DecodeDocument([]byte(`{"name": `), FormatJSON, "x.json")
	var serr *SchemaValidationError
	require.ErrorAs(t, err, &serr)

	_, err = DecodeDocument(nil, FormatJSON, "x.json")
	require.ErrorAs(t, err, &serr)
	assert.ErrorContains(t, err, "document is empty")

	_, err = DecodeDocument([]byte(`{"name":"x"} {"name":"y"}`), FormatJSON, "x.json")
	require.ErrorAs(t, err, &serr)
	assert.ErrorContains(t, err, "trailing content")

	_, err = DecodeDocument([]byte("name: x\n---\nname: y\n"), FormatYAML, "x.yaml")
	require.ErrorAs(t, err, &serr)
	assert.ErrorContains(t, err, "trailing content")
}

func TestFormatForPath(t *testing.T) {
	for path, want := range map[string]DocumentFormat{
		"d.json":            FormatJSON,
		"d.yaml":            FormatYAML,
		"d.yml":             FormatYAML,
		"dir/sub/D.JSON":    FormatJSON,
		"detectors/a.YAML":  FormatYAML,
		"detectors/b.state": 0,
	} {
		got, err := FormatForPath(path)
		if filepath.Ext(path) == ".state" {
			assert.ErrorContains(t, err, "unsupported detector document extension")
			continue
		}
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
}

func TestSaveFile_ReplacesExistingDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "d.json")
	require.NoError(t, os.WriteFile(path, []byte("not a document"), 0o644))

	d, err := FromDocument(testDocument(), "")
	require.NoError(t, err)
	require.NoError(t, SaveFile(d, path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "expired-snapshots", loaded.Name())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestSaveFile_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "d.yaml")

	d, err := FromDocument(testDocument(), "")
	require.NoError(t, err)
	require.NoError(t, SaveFile(d, path))

	_, err = LoadFile(path)
	assert.NoError(t, err)
}
