package fieldvalue

import (
	"github.com/goliatone/go-sheet-import/pkg/interfaces"
)

// Sibling is a field resolved inside the same block container as the field
// the extension is attached to.
type Sibling struct {
	// FieldKey is the key under which the container stores the field,
	// either the numeric field id or the api key.
	FieldKey string
	// Path addresses the sibling value, including the locale segment when
	// the field is localized.
	Path string
	// Value is the raw field value after locale unwrapping.
	Value any
	// Ref is the normalized asset reference found in Value, nil when none.
	Ref *Reference
	// Blob is the first in-memory binary found in Value, nil when none.
	Blob *interfaces.AssetBlob
}

// DefinitionByAPIKey scans the host's field definitions for the given api key.
func DefinitionByAPIKey(fields map[string]interfaces.FieldDefinition, apiKey string) (interfaces.FieldDefinition, bool) {
	for _, def := range fields {
		if def.APIKey == apiKey {
			return def, true
		}
	}
	return interfaces.FieldDefinition{}, false
}

// SiblingWritePath builds the dot path used to write a value into a sibling
// field of the container: container path, field key (id preferred over api
// key), and the locale segment for localized fields.
func SiblingWritePath(host interfaces.HostContext, container *Container, apiKey string) string {
	key := apiKey
	localized := false
	if def, ok := DefinitionByAPIKey(host.Fields(), apiKey); ok {
		if def.ID != "" {
			key = def.ID
		}
		localized = def.Localized
	}
	parts := append(append([]string{}, container.Path...), key)
	if localized && host.Locale() != "" {
		parts = append(parts, host.Locale())
	}
	return JoinPath(parts)
}

// ResolveSibling locates the sibling field identified by apiKey inside the
// current block container. Lookup prefers the field-id key, then the api key
// itself; when neither key holds a usable value the whole container is
// scanned and an exact api-key match wins over the first reference found.
func ResolveSibling(host interfaces.HostContext, apiKey string) (*Sibling, bool) {
	container, ok := ResolveContainer(host)
	if !ok {
		return nil, false
	}
	fields := host.Fields()
	def, hasDef := DefinitionByAPIKey(fields, apiKey)

	candidateKeys := []string{}
	if hasDef && def.ID != "" {
		candidateKeys = append(candidateKeys, def.ID)
	}
	candidateKeys = append(candidateKeys, apiKey)

	for _, key := range candidateKeys {
		raw, present := container.Values[key]
		if !present {
			continue
		}
		if sibling := buildSibling(host, container, key, raw, hasDef && def.Localized); sibling.Ref != nil || sibling.Blob != nil {
			return sibling, true
		}
	}

	// Fallback scan across every field in the container.
	var fallback *Sibling
	for _, key := range sortedKeys(container.Values) {
		keyDef, keyHasDef := definitionByKey(fields, key)
		keyAPI := key
		localized := false
		if keyHasDef {
			keyAPI = keyDef.APIKey
			localized = keyDef.Localized
		}
		sibling := buildSibling(host, container, key, container.Values[key], localized)
		if sibling.Ref == nil && sibling.Blob == nil {
			continue
		}
		if keyAPI == apiKey {
			return sibling, true
		}
		if fallback == nil {
			fallback = sibling
		}
	}
	if fallback != nil {
		return fallback, true
	}
	return nil, false
}

func buildSibling(host interfaces.HostContext, container *Container, key string, raw any, localized bool) *Sibling {
	value := raw
	if localized {
		value = PickLocaleValue(raw, host.Locale())
	}
	sibling := &Sibling{
		FieldKey: key,
		Value:    value,
	}
	parts := append(append([]string{}, container.Path...), key)
	if localized && host.Locale() != "" {
		parts = append(parts, host.Locale())
	}
	sibling.Path = JoinPath(parts)

	if ref, ok := Normalize(value); ok {
		sibling.Ref = ref
	} else if ref, ok := FindDeep(value); ok {
		sibling.Ref = ref
	}
	if blob, ok := FindBlobDeep(value); ok {
		sibling.Blob = blob
	}
	return sibling
}

func definitionByKey(fields map[string]interfaces.FieldDefinition, key string) (interfaces.FieldDefinition, bool) {
	if def, ok := fields[key]; ok {
		return def, true
	}
	for _, def := range fields {
		if def.ID == key {
			return def, true
		}
	}
	return interfaces.FieldDefinition{}, false
}
