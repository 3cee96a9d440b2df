package vea

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrVariableExists   = errors.New("variable already exists")
	ErrVariableNotFound = errors.New("variable does not exist")
)

// BindingError names the variable involved in a failed lookup or definition.
type BindingError struct {
	Name string
	Err  error
}

func (e *BindingError) Error() string {
	switch e.Err {
	case ErrVariableExists:
		return fmt.Sprintf("variable `%s` already exists", e.Name)
	case ErrVariableNotFound:
		return fmt.Sprintf("variable `%s` does not exist", e.Name)
	default:
		return fmt.Sprintf("variable `%s`: %v", e.Name, e.Err)
	}
}

func (e *BindingError) Unwrap() error { return e.Err }

// Env is one lexical frame. Frames are created per block and per call;
// a call frame carries the function's name.
type Env struct {
	name   string
	parent *Env
	values map[string]*Cell
	retyet bool
}

func newEnv(parent *Env) *Env {
	return &Env{parent: parent, values: make(map[string]*Cell)}
}

func newCallEnv(name string, parent *Env) *Env {
	env := newEnv(parent)
	env.name = name
	return env
}

// Get returns the nearest cell bound to name.
func (e *Env) Get(name string) (*Cell, bool) {
	for env := e; env != nil; env = env.parent {
		if cell, ok := env.values[name]; ok {
			return cell, true
		}
	}
	return nil, false
}

func (e *Env) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Define binds name in this frame. Shadowing is not allowed: a name bound
// in this frame or any ancestor is an error.
func (e *Env) Define(name string, val Value) error {
	if e.Has(name) {
		return &BindingError{Name: name, Err: ErrVariableExists}
	}
	e.values[name] = NewCell(val)
	return nil
}

// SetLocal binds name in this frame unconditionally.
func (e *Env) SetLocal(name string, val Value) {
	e.values[name] = NewCell(val)
}

// Assign updates the nearest existing binding of name.
func (e *Env) Assign(name string, val Value) error {
	cell, ok := e.Get(name)
	if !ok {
		return &BindingError{Name: name, Err: ErrVariableNotFound}
	}
	cell.Value = val
	return nil
}

// Bindings lists every name visible from this frame, sorted.
func (e *Env) Bindings() []string {
	seen := make(map[string]struct{})
	for env := e; env != nil; env = env.parent {
		for name := range env.values {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Local returns a copy of the values bound directly in this frame.
func (e *Env) Local() map[string]Value {
	out := make(map[string]Value, len(e.values))
	for name, cell := range e.values {
		out[name] = cell.Value
	}
	return out
}
