package manifest

import (
	"fmt"

	"apistub/internal/diagnostic"
	"apistub/internal/match"
	"apistub/internal/typedef"
)

// Manifest diagnostic codes.
const (
	CodeTypeNameMissing = "MANIFEST_TYPE_NAME_MISSING"
	CodeDuplicateType   = "MANIFEST_DUPLICATE_TYPE"
	CodeUnknownMarker   = "MANIFEST_UNKNOWN_MARKER"
	CodeUnknownPrivacy  = "MANIFEST_UNKNOWN_PRIVACY"
	CodeDuplicateMember = "MANIFEST_DUPLICATE_MEMBER"
	CodeValuesIgnored   = "MANIFEST_VALUES_IGNORED"
)

// Validate checks the manifest structure. Errors make Definitions fail;
// warnings describe content the builder will ignore.
func Validate(m *Manifest) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if m == nil {
		res.AddError("manifest_is_nil", "manifest is nil", "", "")
		return res
	}

	seenTypes := map[string]struct{}{}

	for i := range m.Types {
		t := &m.Types[i]
		if t.Name == "" {
			res.AddError(CodeTypeNameMissing, fmt.Sprintf("type #%d has no name", i+1), "", "")
			continue
		}

		id := qualified(t.Module, t.Name)
		if _, ok := seenTypes[id]; ok {
			res.AddError(CodeDuplicateType, fmt.Sprintf("duplicate type %q", id), id, "")
			continue
		}

		seenTypes[id] = struct{}{}

		if _, err := typedef.ParsePrivacy(t.Privacy); err != nil {
			res.AddError(CodeUnknownPrivacy, err.Error(), id, "")
		}

		var marks typedef.Marker

		for _, name := range t.Markers {
			mk, err := typedef.ParseMarker(name)
			if err != nil {
				msg := err.Error()
				if hint := match.Closest(name, typedef.MarkerNames(), match.DefaultThreshold, 1); len(hint) > 0 {
					msg += fmt.Sprintf(" (did you mean %q?)", hint[0].Name)
				}

				res.AddError(CodeUnknownMarker, msg, id, "")

				continue
			}

			marks |= mk
		}

		seenFields := map[string]struct{}{}

		for _, f := range t.Fields {
			if _, ok := seenFields[f.Name]; ok {
				res.AddWarning(CodeDuplicateMember, fmt.Sprintf("duplicate field %q, the last type applies at the first position", f.Name), id, f.Name)
			}

			seenFields[f.Name] = struct{}{}
		}

		if len(t.Values) > 0 && !marks.Has(typedef.MarkerEnumBase) {
			res.AddWarning(CodeValuesIgnored, "values are only used by enum types", id, "")
		}
	}

	return res
}

func qualified(module, name string) string {
	if module == "" {
		return name
	}

	return module + "." + name
}
