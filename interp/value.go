package interp

import "fmt"

// Value is any host value flowing through the evaluator: nil, bool,
// int64, float64, string, *Closure, *Generator, *sched.Completion or a
// BuiltinFunc.
type Value = any

// BuiltinFunc is a host function installed via Interp.Builtin. A
// returned error is raised as a throw at the call site.
type BuiltinFunc func(args []Value) (Value, error)

// Closure pairs a function literal with its captured environment.
type Closure struct {
	fn  *Func
	env *Env
}

// ScriptError is a thrown script value surfaced as a Go error. Catch
// clauses unwrap it back to the original value.
type ScriptError struct {
	Value any
}

func (e *ScriptError) Error() string { return fmt.Sprintf("%v", e.Value) }

// throwValue converts a thrown script value into an error. Values that
// already are errors pass through so rethrown engine errors and failure
// chains keep their identity.
func throwValue(v Value) error {
	if err, ok := v.(error); ok {
		return err
	}
	return &ScriptError{Value: v}
}

// catchBinding is the value a catch clause binds for a given in-flight
// error, the inverse of throwValue.
func catchBinding(err error) Value {
	if se, ok := err.(*ScriptError); ok {
		return se.Value
	}
	return err
}

func truthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

// Env is a lexical binding scope.
type Env struct {
	parent *Env
	vars   map[string]Value
}

// NewEnv returns a scope nested in parent. A nil parent makes a root
// scope.
func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, vars: make(map[string]Value)}
}

// Define creates or shadows a binding in this scope.
func (e *Env) Define(name string, v Value) {
	e.vars[name] = v
}

// Get resolves a name through enclosing scopes.
func (e *Env) Get(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Set rebinds an existing name, reporting whether it was found.
func (e *Env) Set(name string, v Value) bool {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return true
		}
	}
	return false
}
