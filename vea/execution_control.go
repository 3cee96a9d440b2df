package vea

// evalStatements runs stmts in env and reports the value of a `return`
// when one executed. A `return` directly in env marks the frame, and any
// statement left in it is an error. A `return` coming out of a nested
// block ends the list quietly.
func (exec *Execution) evalStatements(stmts []Statement, env *Env) (Value, bool, error) {
	result, returned := NewNone(), false
	for _, stmt := range stmts {
		if env.retyet {
			return NewNone(), false, exec.errorAt(stmt.Span(), "statement after `return` is never reached")
		}
		if err := exec.step(); err != nil {
			return NewNone(), false, exec.wrapError(err, stmt.Span())
		}
		val, ret, err := exec.evalStatement(stmt, env)
		if err != nil {
			return NewNone(), false, err
		}
		if !ret {
			continue
		}
		if !env.retyet {
			return val, true, nil
		}
		result, returned = val, true
	}
	return result, returned, nil
}

func (exec *Execution) evalStatement(stmt Statement, env *Env) (Value, bool, error) {
	switch s := stmt.(type) {
	case *LetStmt:
		return NewNone(), false, exec.evalLetStatement(s, env)
	case *FnStmt:
		fn := &Function{Name: s.Name.Name, Body: s.Body, Env: env, Span: s.span, source: exec.source}
		for _, param := range s.Params {
			fn.Params = append(fn.Params, param.Name)
		}
		if err := env.Define(fn.Name, NewFunction(fn)); err != nil {
			return NewNone(), false, exec.wrapError(err, s.Name.span)
		}
		return NewNone(), false, nil
	case *IfStmt:
		return exec.evalIfStatement(s, env)
	case *WhileStmt:
		return exec.evalWhileStatement(s, env)
	case *ReturnStmt:
		if len(exec.callStack) == 0 {
			return NewNone(), false, exec.errorAt(s.ReturnSpan, "used `return` statement outside of a `fn` block")
		}
		val, err := exec.evalExpression(s.Value, env)
		if err != nil {
			return NewNone(), false, err
		}
		env.retyet = true
		return val, true, nil
	case *PrintStmt:
		val, err := exec.evalExpression(s.Value, env)
		if err != nil {
			return NewNone(), false, err
		}
		text, err := exec.render(val)
		if err != nil {
			return NewNone(), false, exec.wrapError(err, s.span)
		}
		if err := exec.write(text); err != nil {
			return NewNone(), false, exec.wrapError(err, s.span)
		}
		return NewNone(), false, nil
	case *AssignStmt:
		return NewNone(), false, exec.evalAssignStatement(s, env)
	case *ExprStmt:
		_, err := exec.evalExpression(s.Expr, env)
		return NewNone(), false, err
	case *BlockStmt:
		return exec.evalBlock(s, env)
	default:
		return NewNone(), false, exec.errorAt(stmt.Span(), "unsupported statement")
	}
}

// evalBlock runs a block in a fresh child frame.
func (exec *Execution) evalBlock(block *BlockStmt, env *Env) (Value, bool, error) {
	return exec.evalStatements(block.Statements, newEnv(env))
}

func (exec *Execution) evalLetStatement(s *LetStmt, env *Env) error {
	if env.Has(s.Name.Name) {
		return exec.wrapError(&BindingError{Name: s.Name.Name, Err: ErrVariableExists}, s.Name.span)
	}
	val, err := exec.evalExpression(s.Value, env)
	if err != nil {
		return err
	}
	if err := env.Define(s.Name.Name, val); err != nil {
		return exec.wrapError(err, s.Name.span)
	}
	return nil
}

func (exec *Execution) evalCondition(keyword string, cond Expression, env *Env) (bool, error) {
	val, err := exec.evalExpression(cond, env)
	if err != nil {
		return false, err
	}
	if val.Kind() != KindBool {
		return false, exec.typeErrorAt(cond.Span(), "`%s` condition must be of type `bool`, found `%s`", keyword, val.Kind())
	}
	return val.Bool(), nil
}

func (exec *Execution) evalIfStatement(s *IfStmt, env *Env) (Value, bool, error) {
	ok, err := exec.evalCondition("if", s.Condition, env)
	if err != nil {
		return NewNone(), false, err
	}
	if ok {
		return exec.evalBlock(s.Consequent, env)
	}
	if s.Alternate == nil {
		return NewNone(), false, nil
	}
	return exec.evalStatement(s.Alternate, env)
}

func (exec *Execution) evalWhileStatement(s *WhileStmt, env *Env) (Value, bool, error) {
	for {
		ok, err := exec.evalCondition("while", s.Condition, env)
		if err != nil {
			return NewNone(), false, err
		}
		if !ok {
			return NewNone(), false, nil
		}
		val, returned, err := exec.evalBlock(s.Body, env)
		if err != nil {
			return NewNone(), false, err
		}
		if returned {
			return val, true, nil
		}
		if err := exec.step(); err != nil {
			return NewNone(), false, exec.wrapError(err, s.WhileSpan)
		}
	}
}
