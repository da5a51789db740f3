package interfaces

import "context"

// HostContext is the bridge to the CMS editor session the extension runs in.
// Implementations wrap the host SDK's ctx object; every accessor returns a
// snapshot of the current state, the host does not push change events.
type HostContext interface {
	// FormValues returns the current record's nested field-value tree.
	FormValues() map[string]any
	// FieldPath is the dot-delimited path of the field the extension is
	// attached to, possibly ending in a locale segment.
	FieldPath() string
	// Locale is the locale the editor is currently scoped to, or empty.
	Locale() string
	// Fields maps field keys (ids or api keys) to their definitions.
	Fields() map[string]FieldDefinition
	// PluginParameters returns plugin-level configuration such as the
	// content-management API token.
	PluginParameters() map[string]any
	// Parameters returns the extension-instance parameters configured for
	// this field, when present.
	Parameters() map[string]any
	// FieldAppearanceParameters returns the appearance-level parameters used
	// as a fallback when Parameters is empty.
	FieldAppearanceParameters() map[string]any

	// SetFieldValue writes a value to a field path. A nil value clears the
	// field.
	SetFieldValue(ctx context.Context, path string, value any) error
	// Notice surfaces a user-visible informational toast.
	Notice(message string)
	// Alert surfaces a user-visible error toast.
	Alert(message string)
}

// FieldDefinition describes a field of the record schema as exposed by the
// host runtime.
type FieldDefinition struct {
	ID        string
	APIKey    string
	Localized bool
}
