package drift

import (
	"fmt"
	"sort"
)

// Type tags a detector with the kind of drift it watches for. The tag is
// reporting/routing metadata carried on the detector and its documents:
// detection behaves identically for every kind, and any future kind-specific
// behavior belongs in its own component, not in a branch here.
type Type int

// TypeExposure watches for assets that became visible or reachable in ways
// the baseline has not accepted (e.g. newly internet-exposed resources).
const TypeExposure Type = 1

var typeNames = map[Type]string{
	TypeExposure: "exposure",
}

// Valid reports whether t is a known detector type.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// String returns the display name for known types.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

// Code returns the stable integer code used in persisted documents.
func (t Type) Code() int { return int(t) }

// TypeFromCode maps a persisted integer code to its detector type.
func TypeFromCode(code int) (Type, error) {
	t := Type(code)
	if !t.Valid() {
		return 0, fmt.Errorf("unknown detector type code %d", code)
	}
	return t, nil
}

// Types returns all known detector types, ordered by code.
func Types() []Type {
	out := make([]Type, 0, len(typeNames))
	for t := range typeNames {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
