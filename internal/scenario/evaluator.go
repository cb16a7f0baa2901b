package scenario

import (
	"fmt"
	"sort"
	"sync"
)

// Evaluator derives an output snapshot from an input snapshot.
// Implementations must be pure: no I/O, no retained state between calls.
type Evaluator[I, O any] interface {
	// Name returns the human-readable tool name, used as the registry key.
	Name() string
	// Evaluate runs the tool's formulas against one input snapshot.
	Evaluate(in I) O
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc[I, O any] struct {
	ToolName string
	Fn       func(I) O
}

func (f EvaluatorFunc[I, O]) Name() string { return f.ToolName }

func (f EvaluatorFunc[I, O]) Evaluate(in I) O { return f.Fn(in) }

// Tool describes a registered evaluator for listing purposes.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry keeps the evaluators a process exposes, keyed by name.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
}

type registryEntry struct {
	tool      Tool
	evaluator any
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// Register adds an evaluator under its Name. It panics if the name is
// already taken, since two tools sharing a name cannot be told apart by
// callers.
func Register[I, O any](r *Registry, eval Evaluator[I, O], description string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := eval.Name()
	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("scenario: tool %q already registered", name))
	}
	r.entries[name] = registryEntry{
		tool:      Tool{Name: name, Description: description},
		evaluator: eval,
	}
}

// Lookup returns the evaluator registered under name. It fails when the name
// is unknown or was registered with different input or output types.
func Lookup[I, O any](r *Registry, name string) (Evaluator[I, O], error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("scenario: tool %q not registered", name)
	}
	eval, ok := entry.evaluator.(Evaluator[I, O])
	if !ok {
		return nil, fmt.Errorf("scenario: tool %q has type %T", name, entry.evaluator)
	}
	return eval, nil
}

// Tools returns the registered tools sorted by name.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Has reports whether a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}
