package drift

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the document schema this build reads and writes.
const SchemaVersion = 1

// Document is the persisted form of a detector. Expectations are stored in
// insertion order so saved files diff cleanly between runs.
type Document struct {
	SchemaVersion   int        `json:"schema_version,omitempty" yaml:"schema_version,omitempty"`
	Name            string     `json:"name" yaml:"name"`
	ValidationQuery string     `json:"validation_query" yaml:"validation_query"`
	Properties      []string   `json:"properties" yaml:"properties"`
	DetectorType    int        `json:"detector_type" yaml:"detector_type"`
	Expectations    [][]string `json:"expectations" yaml:"expectations"`
}

// DocumentFormat selects the on-disk encoding of a detector document.
type DocumentFormat int

const (
	FormatJSON DocumentFormat = iota
	FormatYAML
)

// FormatForPath derives the document format from the file extension.
func FormatForPath(path string) (DocumentFormat, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("unsupported detector document extension %q (want .json, .yaml, or .yml)", ext)
	}
}

// Document captures the detector's current state, baseline included, as a
// persistable document.
func (d *Detector) Document() *Document {
	return &Document{
		SchemaVersion:   SchemaVersion,
		Name:            d.name,
		ValidationQuery: d.query,
		Properties:      d.Properties(),
		DetectorType:    d.typ.Code(),
		Expectations:    d.baseline.Rows(),
	}
}

// FromDocument validates a decoded document and builds the detector it
// describes. Expectation rows enter the baseline in document order; rows the
// document repeats stay repeated so a load-save cycle reproduces the file.
// path is used only to annotate validation errors and may be empty.
func FromDocument(doc *Document, path string) (*Detector, error) {
	if doc.SchemaVersion != 0 && doc.SchemaVersion != SchemaVersion {
		return nil, &SchemaValidationError{
			Path:   path,
			Field:  "schema_version",
			Reason: fmt.Sprintf("unsupported schema version %d (want %d)", doc.SchemaVersion, SchemaVersion),
		}
	}
	if doc.Name == "" {
		return nil, &SchemaValidationError{Path: path, Field: "name", Reason: "must not be empty"}
	}
	if doc.ValidationQuery == "" {
		return nil, &SchemaValidationError{Path: path, Field: "validation_query", Reason: "must not be empty"}
	}
	typ, err := TypeFromCode(doc.DetectorType)
	if err != nil {
		return nil, &SchemaValidationError{Path: path, Field: "detector_type", Reason: err.Error()}
	}

	d, err := NewDetector(doc.Name, doc.ValidationQuery, doc.Properties, typ)
	if err != nil {
		return nil, err
	}
	d.baseline = NewBaseline(doc.Expectations)
	return d, nil
}

// DecodeDocument parses one detector document. Decoding is strict: unknown
// fields, mistyped values, and trailing content are all rejected. path is
// used only to annotate errors.
func DecodeDocument(data []byte, format DocumentFormat, path string) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, decodeError(path, err)
		}
		if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
			return nil, &SchemaValidationError{Path: path, Reason: "trailing content after document"}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, decodeError(path, err)
		}
		if err := dec.Decode(new(yaml.Node)); !errors.Is(err, io.EOF) {
			return nil, &SchemaValidationError{Path: path, Reason: "trailing content after document"}
		}
	default:
		return nil, fmt.Errorf("unknown document format %d", int(format))
	}
	return &doc, nil
}

func decodeError(path string, err error) error {
	if errors.Is(err, io.EOF) {
		return &SchemaValidationError{Path: path, Reason: "document is empty"}
	}
	return &SchemaValidationError{Path: path, Reason: err.Error()}
}

// EncodeDocument serializes the document in the given format.
func EncodeDocument(doc *Document, format DocumentFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode detector document: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode detector document: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown document format %d", int(format))
	}
}

// LoadFile reads, decodes, and validates the detector document at path. The
// format follows the file extension.
func LoadFile(path string) (*Detector, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read detector document: %w", err)
	}
	doc, err := DecodeDocument(data, format, path)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc, path)
}

// SaveFile writes the detector's current state to path in the format the
// extension selects. The document lands via a temp file in the same
// directory plus a rename, so readers see either the old document or the
// new one, never a partial write.
func SaveFile(d *Detector, path string) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	data, err := EncodeDocument(d.Document(), format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create detector directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write detector document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write detector document: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write detector document: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace detector document: %w", err)
	}
	return nil
}
