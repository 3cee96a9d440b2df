package vea

import "context"

// Session evaluates successive snippets against one persistent top-level
// environment, as a REPL does. A Session is not safe for concurrent use.
type Session struct {
	engine *Engine
	root   *Env
}

func (e *Engine) NewSession() *Session {
	return &Session{engine: e, root: newEnv(nil)}
}

// Eval compiles and runs source, keeping its top-level bindings for later
// calls. Bindings made before a runtime error are kept as well.
func (s *Session) Eval(ctx context.Context, source string) (string, error) {
	program, err := Compile(source)
	if err != nil {
		return "", err
	}
	return s.engine.interp(ctx, program, s.root)
}

func (s *Session) Engine() *Engine { return s.engine }

// Bindings returns the session's top-level variables.
func (s *Session) Bindings() map[string]Value {
	return s.root.Local()
}

// Names lists the visible variable names, sorted.
func (s *Session) Names() []string {
	return s.root.Bindings()
}

// Reset drops every binding.
func (s *Session) Reset() {
	s.root = newEnv(nil)
}
