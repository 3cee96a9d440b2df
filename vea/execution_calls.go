package vea

import "fmt"

func (exec *Execution) evalCallExpr(call *CallExpr, env *Env) (Value, error) {
	callee, err := exec.evalExpression(call.Callee, env)
	if err != nil {
		return NewNone(), err
	}
	if callee.Kind() != KindFunction {
		return NewNone(), exec.typeErrorAt(call.Callee.Span(), "value of type `%s` is not a function", callee.Kind())
	}

	fn := callee.Function()
	if len(call.Args) != len(fn.Params) {
		return NewNone(), exec.typeErrorAt(call.span, "fn `%s` expected %d %s but got %d",
			fn.Name, len(fn.Params), pluralize(len(fn.Params), "argument"), len(call.Args))
	}

	args := make([]Value, len(call.Args))
	for i, arg := range call.Args {
		val, err := exec.evalExpression(arg, env)
		if err != nil {
			return NewNone(), err
		}
		args[i] = val
	}

	return exec.callFunction(fn, args, call.span)
}

// callFunction runs fn in a new frame parented on the frame fn closed over.
// The result comes straight back from the body, so recursive activations
// never share a return slot.
func (exec *Execution) callFunction(fn *Function, args []Value, callSpan Span) (Value, error) {
	if exec.recursionCap > 0 && len(exec.callStack) >= exec.recursionCap {
		exec.logger.Warn("recursion limit exceeded", "function", fn.Name, "limit", exec.recursionCap)
		return NewNone(), exec.wrapError(fmt.Errorf("%w (%d)", ErrRecursionLimit, exec.recursionCap), callSpan)
	}
	if err := exec.step(); err != nil {
		return NewNone(), exec.wrapError(err, callSpan)
	}

	val, returned, err := exec.invoke(fn, args, callSpan)
	if err != nil {
		return NewNone(), err
	}
	if !returned {
		return NewNone(), exec.errorAt(callSpan, "fn `%s` doesn't return anything", fn.Name)
	}
	return val, nil
}

func (exec *Execution) invoke(fn *Function, args []Value, callSpan Span) (Value, bool, error) {
	exec.callStack = append(exec.callStack, callFrame{Function: fn.Name, Span: callSpan, source: exec.source})
	callerSource := exec.source
	exec.source = fn.source
	defer func() {
		exec.callStack = exec.callStack[:len(exec.callStack)-1]
		exec.source = callerSource
	}()

	frame := newCallEnv(fn.Name, fn.Env)
	for i, param := range fn.Params {
		frame.SetLocal(param, args[i])
	}
	return exec.evalStatements(fn.Body.Statements, frame)
}

func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
