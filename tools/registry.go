package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"googlemaps.github.io/maps"

	"github.com/petasbytes/go-chatbot/memory"
)

// Registry maps tool names to definitions and keeps registration order for the catalog.
type Registry struct {
	mu     sync.RWMutex
	defs   []ToolDefinition
	byName map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register adds def. Names must be unique.
func (r *Registry) Register(def ToolDefinition) error {
	if def.Name == "" || def.Function == nil {
		return fmt.Errorf("%w: name=%q", ErrInvalidDefinition, def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, def.Name)
	}
	r.byName[def.Name] = len(r.defs)
	r.defs = append(r.defs, def)
	return nil
}

// MustRegister registers defs and panics on error. Use for static wiring at startup.
func (r *Registry) MustRegister(defs ...ToolDefinition) {
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			panic(fmt.Sprintf("failed to register tool %s: %v", d.Name, err))
		}
	}
}

// Resolve returns the definition registered under name.
func (r *Registry) Resolve(name string) (ToolDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byName[name]
	if !ok {
		return ToolDefinition{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return r.defs[i], nil
}

// Catalog returns all definitions in registration order.
func (r *Registry) Catalog() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ToolDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Invoke resolves name and runs its handler. Every failure is returned as *ToolError.
func (r *Registry) Invoke(ctx context.Context, name string, input json.RawMessage) (string, error) {
	def, err := r.Resolve(name)
	if err != nil {
		return "", &ToolError{Tool: name, Code: CodeUnknownTool, Message: "tool not found", Err: err}
	}

	out, err := def.Function(ctx, input)
	if err == nil {
		return out, nil
	}

	var te *ToolError
	if errors.As(err, &te) {
		return "", te
	}
	code := CodeExecution
	switch {
	case errors.Is(err, ErrInvalidArguments):
		code = CodeInvalidArguments
	case errors.Is(err, context.DeadlineExceeded):
		code = CodeTimeout
	}
	return "", &ToolError{Tool: name, Code: code, Message: err.Error(), Err: err}
}

// Deps carries what the built-in tools need from the process.
type Deps struct {
	Memory      *memory.Store
	MapsAPIKey  string
	MapsOptions []maps.ClientOption
}

// DefaultRegistry returns a registry with every built-in tool wired for the assistant.
func DefaultRegistry(d Deps) (*Registry, error) {
	if d.Memory == nil {
		return nil, fmt.Errorf("%w: memory tools need a store", ErrInvalidDefinition)
	}
	r := NewRegistry()
	defs := []ToolDefinition{
		WeatherDefinition,
		CalculatorDefinition,
		NewPlacesDefinition(d.MapsAPIKey, d.MapsOptions...),
	}
	defs = append(defs, MemoryDefinitions(d.Memory)...)
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}
