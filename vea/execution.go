package vea

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

type Execution struct {
	engine       *Engine
	ctx          context.Context
	source       string
	quota        int
	recursionCap int
	outputLimit  int
	steps        int
	callStack    []callFrame
	output       strings.Builder
	logger       *slog.Logger
}

// callFrame records a call site. source is the text the call site's span
// points into, which differs from the callee's when a REPL session calls a
// function defined by an earlier snippet.
type callFrame struct {
	Function string
	Span     Span
	source   string
}

type StackFrame struct {
	Function string
	Span     Span
	Pos      Position
}

// RuntimeError is a fatal evaluation error. Err holds the underlying cause
// when there is one, such as ErrDivisionByZero or ErrStepQuotaExceeded.
type RuntimeError struct {
	Type      string
	Message   string
	Span      Span
	CodeFrame string
	Frames    []StackFrame
	Hint      string
	Err       error
}

const (
	runtimeErrorTypeBase       = "RuntimeError"
	runtimeErrorTypeName       = "NameError"
	runtimeErrorTypeType       = "TypeError"
	runtimeErrorTypeArithmetic = "ArithmeticError"
	runtimeErrorTypeLimit      = "LimitError"
	runtimeErrorFrameHead      = 8
	runtimeErrorFrameTail      = 8
)

var (
	ErrStepQuotaExceeded = errors.New("step quota exceeded")
	ErrRecursionLimit    = errors.New("recursion limit exceeded")
	ErrOutputLimit       = errors.New("output limit exceeded")
)

func (re *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(re.Message)
	if re.Hint != "" {
		b.WriteString(" (")
		b.WriteString(re.Hint)
		b.WriteString(")")
	}
	if re.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(re.CodeFrame)
	}
	renderFrame := func(frame StackFrame) {
		if frame.Pos.Line > 0 {
			fmt.Fprintf(&b, "\n  at %s (%d:%d)", frame.Function, frame.Pos.Line, frame.Pos.Column)
		} else {
			fmt.Fprintf(&b, "\n  at %s", frame.Function)
		}
	}

	if len(re.Frames) <= runtimeErrorFrameHead+runtimeErrorFrameTail {
		for _, frame := range re.Frames {
			renderFrame(frame)
		}
		return b.String()
	}

	for _, frame := range re.Frames[:runtimeErrorFrameHead] {
		renderFrame(frame)
	}
	omitted := len(re.Frames) - (runtimeErrorFrameHead + runtimeErrorFrameTail)
	fmt.Fprintf(&b, "\n  ... %d frames omitted ...", omitted)
	for _, frame := range re.Frames[len(re.Frames)-runtimeErrorFrameTail:] {
		renderFrame(frame)
	}

	return b.String()
}

func (re *RuntimeError) Unwrap() error {
	return re.Err
}

func classifyRuntimeErrorType(err error) string {
	var (
		bindingErr  *BindingError
		operatorErr *OperatorError
	)
	switch {
	case err == nil:
		return runtimeErrorTypeBase
	case errors.As(err, &bindingErr):
		return runtimeErrorTypeName
	case errors.As(err, &operatorErr):
		return runtimeErrorTypeType
	case errors.Is(err, ErrDivisionByZero), errors.Is(err, ErrRemainderByZero),
		errors.Is(err, ErrIntegerOverflow), errors.Is(err, ErrShiftRange):
		return runtimeErrorTypeArithmetic
	case errors.Is(err, ErrStepQuotaExceeded), errors.Is(err, ErrRecursionLimit),
		errors.Is(err, ErrOutputLimit), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return runtimeErrorTypeLimit
	default:
		return runtimeErrorTypeBase
	}
}

func (exec *Execution) step() error {
	exec.steps++
	if exec.quota > 0 && exec.steps > exec.quota {
		exec.logger.Warn("step quota exceeded", "quota", exec.quota)
		return fmt.Errorf("%w (%d)", ErrStepQuotaExceeded, exec.quota)
	}
	if exec.ctx != nil {
		select {
		case <-exec.ctx.Done():
			return exec.ctx.Err()
		default:
		}
	}
	return nil
}

// render formats v for print. Each struct or set costs a step, and
// rendering stops once the text cannot fit in the remaining output.
func (exec *Execution) render(v Value) (string, error) {
	if v.Kind() == KindString {
		return v.Str(), nil
	}
	w := valueWriter{charge: exec.step}
	if exec.outputLimit > 0 {
		w.limit = max(exec.outputLimit-exec.output.Len(), 1)
	}
	if err := w.write(v); err != nil {
		return "", err
	}
	return w.text(), nil
}

func (exec *Execution) write(text string) error {
	if exec.outputLimit > 0 && exec.output.Len()+len(text) > exec.outputLimit {
		exec.logger.Warn("output limit exceeded", "limit", exec.outputLimit)
		return fmt.Errorf("%w (%d bytes)", ErrOutputLimit, exec.outputLimit)
	}
	exec.output.WriteString(text)
	return nil
}

func (exec *Execution) errorAt(span Span, format string, args ...any) error {
	return exec.newRuntimeError(runtimeErrorTypeBase, fmt.Sprintf(format, args...), span, nil)
}

func (exec *Execution) typeErrorAt(span Span, format string, args ...any) error {
	return exec.newRuntimeError(runtimeErrorTypeType, fmt.Sprintf(format, args...), span, nil)
}

func (exec *Execution) newRuntimeError(kind, message string, span Span, cause error) error {
	frames := make([]StackFrame, 0, len(exec.callStack)+1)
	frame := func(function string, span Span, source string) StackFrame {
		return StackFrame{Function: function, Span: span, Pos: LineColumn(source, span.Start)}
	}

	if len(exec.callStack) > 0 {
		// innermost frame points at the failure, the rest at call sites
		current := exec.callStack[len(exec.callStack)-1]
		frames = append(frames, frame(current.Function, span, exec.source))
		for i := len(exec.callStack) - 1; i >= 0; i-- {
			cf := exec.callStack[i]
			frames = append(frames, frame(cf.Function, cf.Span, cf.source))
		}
	} else {
		frames = append(frames, frame("<script>", span, exec.source))
	}

	return &RuntimeError{
		Type:      kind,
		Message:   message,
		Span:      span,
		CodeFrame: formatCodeFrame(exec.source, span),
		Frames:    frames,
		Err:       cause,
	}
}

func (exec *Execution) wrapError(err error, span Span) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*RuntimeError); ok {
		return err
	}
	return exec.newRuntimeError(classifyRuntimeErrorType(err), err.Error(), span, err)
}

// undefinedError reports a missing variable, suggesting a visible name
// when one is close.
func (exec *Execution) undefinedError(ident *Identifier, env *Env) error {
	err := exec.wrapError(&BindingError{Name: ident.Name, Err: ErrVariableNotFound}, ident.span)
	if suggestion := closestName(ident.Name, env.Bindings()); suggestion != "" {
		err.(*RuntimeError).Hint = fmt.Sprintf("did you mean `%s`?", suggestion)
	}
	return err
}

func (exec *Execution) evalExpression(expr Expression, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *Identifier:
		cell, ok := env.Get(e.Name)
		if !ok {
			return NewNone(), exec.undefinedError(e, env)
		}
		return cell.Value, nil
	case *IntegerLiteral:
		return NewInt(e.Value), nil
	case *StringLiteral:
		return NewString(e.Value), nil
	case *BoolLiteral:
		return NewBool(e.Value), nil
	case *NoneLiteral:
		return NewNone(), nil
	case *GroupExpr:
		return exec.evalExpression(e.Inner, env)
	case *UnaryExpr:
		return exec.evalUnaryExpr(e, env)
	case *BinaryExpr:
		return exec.evalBinaryExpr(e, env)
	case *CallExpr:
		return exec.evalCallExpr(e, env)
	case *StructLiteral:
		return exec.evalStructLiteral(e, env)
	case *SetLiteral:
		return exec.evalSetLiteral(e, env)
	case *MemberExpr, *IndexExpr:
		cell, err := exec.resolveField(e, env)
		if err != nil {
			return NewNone(), err
		}
		return cell.Value, nil
	case *ErrorExpr:
		return NewNone(), exec.errorAt(e.span, "cannot evaluate malformed code: %s", e.Message)
	default:
		return NewNone(), exec.errorAt(expr.Span(), "unsupported expression")
	}
}

func (exec *Execution) evalUnaryExpr(e *UnaryExpr, env *Env) (Value, error) {
	right, err := exec.evalExpression(e.Right, env)
	if err != nil {
		return NewNone(), err
	}
	var result Value
	switch e.Operator {
	case tokenMinus:
		result, err = right.Neg()
	case tokenBang:
		result, err = right.Not()
	default:
		return NewNone(), exec.errorAt(e.OpSpan, "unsupported unary operator `%s`", e.Operator)
	}
	if err != nil {
		return NewNone(), exec.wrapError(err, e.span)
	}
	return result, nil
}

func (exec *Execution) evalBinaryExpr(e *BinaryExpr, env *Env) (Value, error) {
	left, err := exec.evalExpression(e.Left, env)
	if err != nil {
		return NewNone(), err
	}
	right, err := exec.evalExpression(e.Right, env)
	if err != nil {
		return NewNone(), err
	}
	result, err := applyBinary(e.Operator, left, right)
	if err != nil {
		return NewNone(), exec.wrapError(err, e.span)
	}
	return result, nil
}
