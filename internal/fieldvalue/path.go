package fieldvalue

import (
	"strings"

	"github.com/goliatone/go-sheet-import/pkg/interfaces"
)

// SplitPath splits a dot-delimited field path into its segments, dropping
// empty entries.
func SplitPath(path string) []string {
	parts := strings.Split(path, ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinPath is the inverse of SplitPath.
func JoinPath(parts []string) string {
	return strings.Join(parts, ".")
}

// Lookup walks root following parts and returns the value at the end of the
// path. Traversal stops with false as soon as a segment cannot be resolved.
func Lookup(root any, parts []string) (any, bool) {
	current := root
	for _, part := range parts {
		values, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = values[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// PickLocaleValue unwraps a localized map, preferring the requested locale
// and falling back to the first non-nil locale entry. Non-map values are
// returned as-is.
func PickLocaleValue(raw any, locale string) any {
	values, ok := raw.(map[string]any)
	if !ok {
		return raw
	}
	if locale != "" {
		if value, ok := values[locale]; ok && value != nil {
			return value
		}
	}
	for _, key := range sortedKeys(values) {
		if value := values[key]; value != nil {
			return value
		}
	}
	return nil
}

// Container is one instance of a repeatable content block, addressed by the
// path to its enclosing object inside the record's field-value tree.
type Container struct {
	Values map[string]any
	Path   []string
}

// Key returns the container path as a dot string.
func (c *Container) Key() string {
	return JoinPath(c.Path)
}

// ResolveContainer locates the block container enclosing the field the
// extension is attached to: the trailing locale segment (when present) and
// the field-key segment are stripped from the field path.
func ResolveContainer(host interfaces.HostContext) (*Container, bool) {
	if host == nil {
		return nil, false
	}
	root := host.FormValues()
	if root == nil {
		return nil, false
	}
	parts := SplitPath(host.FieldPath())
	if locale := host.Locale(); locale != "" && len(parts) > 0 && parts[len(parts)-1] == locale {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return nil, false
	}
	parts = parts[:len(parts)-1]
	raw, ok := Lookup(root, parts)
	if !ok {
		return nil, false
	}
	values, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	return &Container{Values: values, Path: parts}, true
}
