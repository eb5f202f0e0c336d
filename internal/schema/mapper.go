package schema

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Mapping assigns a source column header to each canonical field.
// A field absent from the map, or mapped to "", is unset.
type Mapping map[FieldKey]string

// NormalizeHeader lowercases s and drops spaces and underscores so that
// "First Name", "first_name" and "FIRSTNAME" compare equal.
func NormalizeHeader(s string) string {
	s = norm.NFC.String(strings.ToLower(strings.TrimSpace(s)))
	return strings.NewReplacer(" ", "", "_", "").Replace(s)
}

// AutoMap builds the initial mapping for headers. For each field the
// canonical key is tried first, then the label, then each alias; the first
// header equal to a candidate after normalization wins.
func AutoMap(headers []string, fields []FieldDef) Mapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	mapping := make(Mapping, len(fields))
	for _, f := range fields {
		candidates := append([]string{string(f.Key), f.Label}, f.Aliases...)
	search:
		for _, c := range candidates {
			want := NormalizeHeader(c)
			if want == "" {
				continue
			}
			for i, h := range normalized {
				if h == want {
					mapping[f.Key] = headers[i]
					break search
				}
			}
		}
	}
	return mapping
}

// Set assigns header to key, overriding any automatic choice.
func (m Mapping) Set(key FieldKey, header string) {
	m[key] = header
}

// Clear unsets key.
func (m Mapping) Clear(key FieldKey) {
	delete(m, key)
}

// Has reports whether key is mapped to a non-empty header.
func (m Mapping) Has(key FieldKey) bool {
	return strings.TrimSpace(m[key]) != ""
}

// Value returns the trimmed cell mapped to key in row, or "" when unmapped.
func (m Mapping) Value(row map[string]string, key FieldKey) string {
	header, ok := m[key]
	if !ok || header == "" {
		return ""
	}
	return strings.TrimSpace(row[header])
}

// Legacy reports whether the mapping reads the legacy header set: separate
// City and Community columns and no unified Assignment column.
func (m Mapping) Legacy() bool {
	return !m.Has(FieldAssignmentName) && m.Has(FieldLegacyCommunity)
}

// Missing returns the required fields that have no mapped column.
func (m Mapping) Missing(fields []FieldDef) []FieldDef {
	var missing []FieldDef
	for _, f := range fields {
		if !f.Required || m.Has(f.Key) {
			continue
		}
		satisfied := false
		for _, alt := range f.SatisfiedBy {
			if m.Has(alt) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			missing = append(missing, f)
		}
	}
	return missing
}

// Check returns a *MissingError when required fields are unmapped and an
// error when a mapping names a header absent from headers.
func (m Mapping) Check(headers []string, fields []FieldDef) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	for key, header := range m {
		if header != "" && !present[header] {
			return fmt.Errorf("field '%s' is mapped to column '%s', which is not in the file", Label(key), header)
		}
	}

	if missing := m.Missing(fields); len(missing) > 0 {
		return &MissingError{Fields: missing}
	}
	return nil
}

// Clone returns a copy of m.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MissingError lists required fields with no mapped column.
type MissingError struct {
	Fields []FieldDef
}

func (e *MissingError) Error() string {
	return "missing required column mappings: " + strings.Join(e.Labels(), ", ")
}

// Labels returns the human labels of the missing fields.
func (e *MissingError) Labels() []string {
	labels := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		labels[i] = f.Label
	}
	return labels
}
