package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	registry   = make(map[string]LayerDefinition)
	registryMu sync.RWMutex
)

// layerOrder fixes the display order of the built-in layers.
var layerOrder = map[Layer]int{LayerSPF: 0, LayerClosed: 1, LayerReopen: 2}

func layerKey(l Layer) string {
	return strings.ToLower(strings.TrimSpace(string(l)))
}

// RegisterLayer adds a layer definition to the registry.
// Panics if a layer with the same name is already registered.
func RegisterLayer(def LayerDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	key := layerKey(def.Layer)
	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("layer already registered: %s", def.Layer))
	}
	if def.Label == "" {
		def.Label = string(def.Layer)
	}

	cols := make([]string, len(def.Columns))
	copy(cols, def.Columns)
	def.Columns = cols

	registry[key] = def
}

// GetLayer returns a layer definition, matching the name case-insensitively.
func GetLayer(l Layer) (LayerDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[layerKey(l)]
	return def, ok
}

// ParseLayer resolves a user-supplied layer name to its canonical form.
func ParseLayer(s string) (Layer, error) {
	def, ok := GetLayer(Layer(s))
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLayer, s)
	}
	return def.Layer, nil
}

// Layers returns all registered layer definitions, built-in layers first
// in their conventional order, then the rest by name.
func Layers() []LayerDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]LayerDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		oi, iKnown := layerOrder[result[i].Layer]
		oj, jKnown := layerOrder[result[j].Layer]
		switch {
		case iKnown && jKnown:
			return oi < oj
		case iKnown != jKnown:
			return iKnown
		}
		return result[i].Layer < result[j].Layer
	})

	return result
}

// LayerCount returns the number of registered layers.
func LayerCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// unregisterLayer removes a layer. Used by tests that register their own.
func unregisterLayer(l Layer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, layerKey(l))
}
