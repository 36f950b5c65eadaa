package tool

import (
	"fmt"

	"github.com/wintermute-agent/wintermute/model"
)

// Registry maps tool names to their definitions. It is built in one explicit
// step from an ordered list of definitions; registration order determines the
// order capabilities are advertised to the model but has no effect on
// dispatch. A Registry is immutable after construction and safe for
// concurrent reads.
type Registry struct {
	ordered []*Definition
	byName  map[string]*Definition
}

// NewRegistry builds a registry from the given definitions. Duplicate or
// empty names and nil handlers are construction errors, not runtime
// surprises.
func NewRegistry(defs ...*Definition) (*Registry, error) {
	r := &Registry{
		ordered: make([]*Definition, 0, len(defs)),
		byName:  make(map[string]*Definition, len(defs)),
	}
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if def.Handler == nil {
			return nil, fmt.Errorf("tool %q has no handler", def.Name)
		}
		if _, exists := r.byName[def.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", def.Name)
		}
		r.ordered = append(r.ordered, def)
		r.byName[def.Name] = def
	}
	return r, nil
}

// Get returns the definition for a name, or nil when unregistered.
func (r *Registry) Get(name string) *Definition {
	return r.byName[name]
}

// IsTerminal reports whether the named tool is the session-terminating
// capability.
func (r *Registry) IsTerminal(name string) bool {
	def := r.byName[name]
	return def != nil && def.Terminal
}

// ModelDefinitions returns the advertised tool schemas in registration order.
func (r *Registry) ModelDefinitions() []model.ToolDefinition {
	out := make([]model.ToolDefinition, 0, len(r.ordered))
	for _, def := range r.ordered {
		out = append(out, def.ModelDefinition())
	}
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.ordered))
	for _, def := range r.ordered {
		out = append(out, def.Name)
	}
	return out
}
