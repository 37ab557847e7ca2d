// Package layers registers the built-in layer schemas with the core registry.
// Import this package to ensure all layers are registered.
package layers

// This file exists to provide a single import point.
// Each layer file uses init() to register its definition.
