package testsupport

import (
	"context"
	"sync"

	"github.com/goliatone/go-sheet-import/pkg/interfaces"
)

// FakeHost is an in-memory HostContext implementation for tests. Writes are
// recorded in order and applied to the form-value tree so subsequent reads
// observe them.
type FakeHost struct {
	mu sync.Mutex

	Form       map[string]any
	Path       string
	CurrentLoc string
	FieldDefs  map[string]interfaces.FieldDefinition

	PluginParams     map[string]any
	FieldParams      map[string]any
	AppearanceParams map[string]any

	Writes  []Write
	Notices []string
	Alerts  []string
}

// Write records one SetFieldValue call.
type Write struct {
	Path  string
	Value any
}

var _ interfaces.HostContext = (*FakeHost)(nil)

// NewFakeHost builds a host rooted at the given form values and field path.
func NewFakeHost(form map[string]any, fieldPath string) *FakeHost {
	return &FakeHost{
		Form:      form,
		Path:      fieldPath,
		FieldDefs: map[string]interfaces.FieldDefinition{},
	}
}

func (h *FakeHost) FormValues() map[string]any { return h.Form }
func (h *FakeHost) FieldPath() string          { return h.Path }
func (h *FakeHost) Locale() string             { return h.CurrentLoc }

func (h *FakeHost) Fields() map[string]interfaces.FieldDefinition { return h.FieldDefs }

func (h *FakeHost) PluginParameters() map[string]any          { return h.PluginParams }
func (h *FakeHost) Parameters() map[string]any                { return h.FieldParams }
func (h *FakeHost) FieldAppearanceParameters() map[string]any { return h.AppearanceParams }

func (h *FakeHost) SetFieldValue(_ context.Context, path string, value any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Writes = append(h.Writes, Write{Path: path, Value: value})
	applyWrite(h.Form, path, value)
	return nil
}

func (h *FakeHost) Notice(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Notices = append(h.Notices, msg)
}

func (h *FakeHost) Alert(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Alerts = append(h.Alerts, msg)
}

// WritesTo returns the recorded values written to the given path, in order.
func (h *FakeHost) WritesTo(path string) []any {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := []any{}
	for _, w := range h.Writes {
		if w.Path == path {
			out = append(out, w.Value)
		}
	}
	return out
}

func applyWrite(root map[string]any, path string, value any) {
	parts := []string{}
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '.' {
			if i > start {
				parts = append(parts, path[start:i])
			}
			start = i + 1
		}
	}
	if len(parts) == 0 {
		return
	}
	current := root
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
