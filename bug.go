package bzgate

import (
	"encoding/json"
	"fmt"
)

// RawBug is one tracker record as fetched. Extra holds the string-valued
// fields the struct does not name, keyed by wire name, so deployments with
// custom fields can still route them through the loose-version overlay.
type RawBug struct {
	ID            int      `json:"id"`
	Status        string   `json:"status"`
	Resolution    string   `json:"resolution"`
	Summary       string   `json:"summary"`
	FixedIn       string   `json:"fixed_in"`
	TargetRelease []string `json:"target_release"`

	Extra map[string]string `json:"-"`
}

var knownBugFields = map[string]bool{
	"id":             true,
	"status":         true,
	"resolution":     true,
	"summary":        true,
	"fixed_in":       true,
	"cf_fixed_in":    true,
	"target_release": true,
}

func (b *RawBug) UnmarshalJSON(data []byte) error {
	type alias RawBug
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*b = RawBug(a)

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	// Red Hat Bugzilla ships "Fixed In Version" as a custom field.
	if b.FixedIn == "" {
		if raw, ok := all["cf_fixed_in"]; ok {
			_ = json.Unmarshal(raw, &b.FixedIn)
		}
	}
	for name, raw := range all {
		if knownBugFields[name] {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if b.Extra == nil {
			b.Extra = make(map[string]string)
		}
		b.Extra[name] = s
	}
	return nil
}

// Field returns the raw string value of a named field, the lookup the
// loose-version overlay is configured against.
func (b *RawBug) Field(name string) string {
	switch name {
	case "status":
		return b.Status
	case "resolution":
		return b.Resolution
	case "summary":
		return b.Summary
	case "fixed_in":
		return b.FixedIn
	case "target_release":
		if len(b.TargetRelease) == 0 {
			return ""
		}
		return b.TargetRelease[0]
	default:
		return b.Extra[name]
	}
}

// Bug is a tracker record decorated with ordered-version derivations for the
// configured loose fields. The raw record is never mutated; derivations are
// resolved once, at construction, and any parse failure is stored and
// surfaced when the field is read.
type Bug struct {
	*RawBug

	loose map[string]looseField
}

type looseField struct {
	v   LooseVersion
	err error
}

func decorateBug(raw *RawBug, looseFields []string) *Bug {
	b := &Bug{RawBug: raw, loose: make(map[string]looseField, len(looseFields))}
	for _, name := range looseFields {
		value := raw.Field(name)
		if value == "" {
			b.loose[name] = looseField{err: fmt.Errorf("bug %d: field %q has no value", raw.ID, name)}
			continue
		}
		v, err := ParseLooseVersion(value)
		if err != nil {
			err = fmt.Errorf("bug %d: field %q: %w", raw.ID, name, err)
		}
		b.loose[name] = looseField{v: v, err: err}
	}
	return b
}

// LooseField returns the ordered-version derivation of a configured field.
// Asking for a field that was not configured as loose is an error, as is a
// raw value that did not parse.
func (b *Bug) LooseField(name string) (LooseVersion, error) {
	lf, ok := b.loose[name]
	if !ok {
		return LooseVersion{}, fmt.Errorf("bug %d: field %q is not configured as a loose-version field", b.ID, name)
	}
	return lf.v, lf.err
}
