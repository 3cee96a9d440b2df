package vea

func (exec *Execution) evalStructLiteral(lit *StructLiteral, env *Env) (Value, error) {
	obj := newObject()
	for _, field := range lit.Fields {
		var (
			name *Identifier
			val  Value
		)
		switch f := field.(type) {
		case *LetStmt:
			v, err := exec.evalExpression(f.Value, env)
			if err != nil {
				return NewNone(), err
			}
			name, val = f.Name, v
		case *FnStmt:
			fn := &Function{Name: f.Name.Name, Body: f.Body, Env: env, Span: f.span, source: exec.source}
			for _, param := range f.Params {
				fn.Params = append(fn.Params, param.Name)
			}
			name, val = f.Name, NewFunction(fn)
		default:
			return NewNone(), exec.errorAt(field.Span(), "struct entries must be `let` or `fn` declarations")
		}
		if !obj.define(name.Name, val) {
			return NewNone(), exec.errorAt(name.span, "field `%s` is already defined in this struct", name.Name)
		}
	}
	return NewObject(obj), nil
}

func (exec *Execution) evalSetLiteral(lit *SetLiteral, env *Env) (Value, error) {
	set := &Set{}
	for _, elem := range lit.Elements {
		val, err := exec.evalExpression(elem, env)
		if err != nil {
			return NewNone(), err
		}
		if !set.Add(val) {
			return NewNone(), exec.errorAt(elem.Span(), "value %s is already in this set", val.Inspect())
		}
	}
	return NewSet(set), nil
}

// resolveField returns the cell behind a member or index chain, so reads
// and writes through the chain share the object's storage.
func (exec *Execution) resolveField(expr Expression, env *Env) (*Cell, error) {
	var object Expression
	switch e := expr.(type) {
	case *MemberExpr:
		object = e.Object
	case *IndexExpr:
		object = e.Object
	default:
		return nil, exec.errorAt(expr.Span(), "expression is not a field access")
	}

	parent, err := exec.evalExpression(object, env)
	if err != nil {
		return nil, err
	}
	if parent.Kind() != KindObject {
		return nil, exec.typeErrorAt(object.Span(), "cannot index into a value with type `%s`", parent.Kind())
	}

	var (
		key     string
		keySpan Span
	)
	switch e := expr.(type) {
	case *MemberExpr:
		key, keySpan = e.Property.Name, e.Property.span
	case *IndexExpr:
		keySpan = e.Index.Span()
		idx, err := exec.evalExpression(e.Index, env)
		if err != nil {
			return nil, err
		}
		if idx.Kind() != KindString {
			return nil, exec.typeErrorAt(keySpan, "cannot index with a value of type `%s`", idx.Kind())
		}
		key = idx.Str()
	}
	cell, ok := parent.Object().Field(key)
	if !ok {
		return nil, exec.errorAt(keySpan, "value does not have an index `%s`", key)
	}
	return cell, nil
}
