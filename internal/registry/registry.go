// Package registry provides a global registry for snake policies.
// Policies register themselves in init() functions, allowing the CLI
// and the batch runner to discover them by name.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/gridsnake/internal/sim"
)

// ErrUnknownPolicy is returned by Create for names that were never registered.
var ErrUnknownPolicy = errors.New("registry: unknown policy")

// PolicyInfo contains metadata about a registered policy.
type PolicyInfo struct {
	Name        string
	Description string
}

// Factory creates a new policy instance. Stochastic policies draw from seed.
type Factory func(seed int64) sim.Policy

type entry struct {
	factory     Factory
	description string
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds a policy factory to the registry.
// Panics if a policy with the same name is already registered.
func Register(name, description string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := entries[name]; exists {
		panic(fmt.Sprintf("registry: policy %q already registered", name))
	}
	entries[name] = entry{factory: f, description: description}
}

// List returns information about all registered policies, sorted by name.
func List() []PolicyInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]PolicyInfo, 0, len(entries))
	for name, e := range entries {
		result = append(result, PolicyInfo{Name: name, Description: e.description})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Create instantiates a policy by name.
func Create(name string, seed int64) (sim.Policy, error) {
	mu.RLock()
	e, ok := entries[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPolicy, name)
	}
	return e.factory(seed), nil
}

// Exists checks if a policy with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[name]
	return ok
}

// FactoryFor adapts a registered policy name to a sim.PolicyFactory.
func FactoryFor(name string) (sim.PolicyFactory, error) {
	if !Exists(name) {
		return nil, fmt.Errorf("%w %q", ErrUnknownPolicy, name)
	}
	return func(seed int64) (sim.Policy, error) {
		return Create(name, seed)
	}, nil
}
