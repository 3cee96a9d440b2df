package vea

// evalAssignStatement handles `=` and the compound operators. The target
// must already exist; the nearest binding (or the object field) is updated
// in place.
func (exec *Execution) evalAssignStatement(s *AssignStmt, env *Env) error {
	var cell *Cell
	switch target := s.Target.(type) {
	case *Identifier:
		found, ok := env.Get(target.Name)
		if !ok {
			return exec.undefinedError(target, env)
		}
		cell = found
	case *MemberExpr, *IndexExpr:
		found, err := exec.resolveField(target, env)
		if err != nil {
			return err
		}
		cell = found
	default:
		return exec.errorAt(s.Target.Span(), "cannot assign to `%s`", s.Target)
	}

	val, err := exec.evalExpression(s.Value, env)
	if err != nil {
		return err
	}

	if s.Operator != tokenAssign {
		op, ok := compoundOperators[s.Operator]
		if !ok {
			return exec.errorAt(s.OpSpan, "unsupported assignment operator `%s`", s.Operator)
		}
		val, err = applyBinary(op, cell.Value, val)
		if err != nil {
			return exec.wrapError(err, s.span)
		}
	}

	cell.Value = val
	return nil
}
