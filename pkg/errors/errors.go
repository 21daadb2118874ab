// Package errors provides structured error handling for Cascade.
//
// Compilation is best-effort: node-level failures are collected into a
// diagnostics list rather than aborting the whole tree, so errors carry
// enough context (operation, node, key) to be useful after the fact.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for matching with errors.Is.
var (
	// ErrMissingClass reports a configuration node without a "class" key.
	ErrMissingClass = errors.New("missing class")

	// ErrUnknownStyle reports a style or component name with no registry entry.
	ErrUnknownStyle = errors.New("unknown style")

	// ErrInvalidShape reports a property value with the wrong arity or type,
	// such as a 3-element tuple where 2 or 4 are required.
	ErrInvalidShape = errors.New("invalid property shape")

	// ErrDuplicateKey reports a second registration under an existing name.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrUnknownComponent reports a component lookup with no registry entry.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrUnknownEnvRef reports a reactive binding whose string key matches
	// no registered environment value and has no fallback interpretation.
	ErrUnknownEnvRef = errors.New("unknown environment reference")
)

// ConfigError reports a problem in a configuration node: a missing class,
// an unresolvable style, or a malformed property value.
type ConfigError struct {
	// Op is the operation that failed (e.g. "compile.resolveStyle").
	Op string
	// Node identifies the configuration node, e.g. "root/Header".
	Node string
	// Key is the property key involved, if any.
	Key string
	// Err is the underlying sentinel or cause.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: node %q key %q: %v", e.Op, e.Node, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: node %q: %v", e.Op, e.Node, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// RegistryError reports a failed registry operation, such as registering a
// duplicate name or looking up a missing component.
type RegistryError struct {
	// Op is the operation that failed (e.g. "registry.AddEnv").
	Op string
	// Name is the registry key involved.
	Name string
	// Err is the underlying sentinel.
	Err error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("%s: %q: %v", e.Op, e.Name, e.Err)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// BindingError reports a failure to establish a reactive binding.
type BindingError struct {
	// Op is the operation that failed (e.g. "compile.bindReactive").
	Op string
	// Node identifies the configuration node.
	Node string
	// Key is the property key whose binding failed.
	Key string
	// Ref is the unresolved reference, if any.
	Ref string
	// Err is the underlying sentinel.
	Err error
}

func (e *BindingError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s: node %q key %q ref %q: %v", e.Op, e.Node, e.Key, e.Ref, e.Err)
	}
	return fmt.Sprintf("%s: node %q key %q: %v", e.Op, e.Node, e.Key, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}
