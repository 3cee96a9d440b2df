package vea

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrDivisionByZero  = errors.New("division by zero")
	ErrRemainderByZero = errors.New("remainder by zero")
	ErrIntegerOverflow = errors.New("integer overflow")
	ErrShiftRange      = errors.New("shift amount out of range")
)

// OperatorError reports an operator applied to unsupported operand kinds.
// Right is ignored for unary operators.
type OperatorError struct {
	Op    string
	Left  ValueKind
	Right ValueKind
	Unary bool
}

func (e *OperatorError) Error() string {
	if e.Unary {
		return fmt.Sprintf("cannot apply `%s` to a value of type `%s`", e.Op, e.Left)
	}
	return fmt.Sprintf("cannot apply `%s` to values of type `%s` and `%s`", e.Op, e.Left, e.Right)
}

func binaryOpError(op string, left, right Value) error {
	return &OperatorError{Op: op, Left: left.kind, Right: right.kind}
}

func bothInt(left, right Value) bool {
	return left.kind == KindInt && right.kind == KindInt
}

func bothBool(left, right Value) bool {
	return left.kind == KindBool && right.kind == KindBool
}

func (v Value) Add(other Value) (Value, error) {
	switch {
	case bothInt(v, other):
		a, b := v.Int(), other.Int()
		result := a + b
		if (b > 0 && result < a) || (b < 0 && result > a) {
			return NewNone(), ErrIntegerOverflow
		}
		return NewInt(result), nil
	case v.kind == KindString && other.kind == KindString:
		return NewString(v.Str() + other.Str()), nil
	default:
		return NewNone(), binaryOpError("+", v, other)
	}
}

func (v Value) Sub(other Value) (Value, error) {
	if !bothInt(v, other) {
		return NewNone(), binaryOpError("-", v, other)
	}
	a, b := v.Int(), other.Int()
	result := a - b
	if (b > 0 && result > a) || (b < 0 && result < a) {
		return NewNone(), ErrIntegerOverflow
	}
	return NewInt(result), nil
}

func (v Value) Mul(other Value) (Value, error) {
	if !bothInt(v, other) {
		return NewNone(), binaryOpError("*", v, other)
	}
	a, b := v.Int(), other.Int()
	if a == 0 || b == 0 {
		return NewInt(0), nil
	}
	result := a * b
	if result/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return NewNone(), ErrIntegerOverflow
	}
	return NewInt(result), nil
}

func (v Value) Div(other Value) (Value, error) {
	if !bothInt(v, other) {
		return NewNone(), binaryOpError("/", v, other)
	}
	if other.Int() == 0 {
		return NewNone(), ErrDivisionByZero
	}
	if v.Int() == math.MinInt64 && other.Int() == -1 {
		return NewNone(), ErrIntegerOverflow
	}
	return NewInt(v.Int() / other.Int()), nil
}

func (v Value) Rem(other Value) (Value, error) {
	if !bothInt(v, other) {
		return NewNone(), binaryOpError("%", v, other)
	}
	if other.Int() == 0 {
		return NewNone(), ErrRemainderByZero
	}
	if other.Int() == -1 {
		return NewInt(0), nil
	}
	return NewInt(v.Int() % other.Int()), nil
}

func (v Value) BitAnd(other Value) (Value, error) {
	switch {
	case bothInt(v, other):
		return NewInt(v.Int() & other.Int()), nil
	case bothBool(v, other):
		return NewBool(v.Bool() && other.Bool()), nil
	default:
		return NewNone(), binaryOpError("&", v, other)
	}
}

func (v Value) BitOr(other Value) (Value, error) {
	switch {
	case bothInt(v, other):
		return NewInt(v.Int() | other.Int()), nil
	case bothBool(v, other):
		return NewBool(v.Bool() || other.Bool()), nil
	default:
		return NewNone(), binaryOpError("|", v, other)
	}
}

func (v Value) BitXor(other Value) (Value, error) {
	switch {
	case bothInt(v, other):
		return NewInt(v.Int() ^ other.Int()), nil
	case bothBool(v, other):
		return NewBool(v.Bool() != other.Bool()), nil
	default:
		return NewNone(), binaryOpError("^", v, other)
	}
}

func (v Value) Shl(other Value) (Value, error) {
	if !bothInt(v, other) {
		return NewNone(), binaryOpError("<<", v, other)
	}
	if other.Int() < 0 || other.Int() > 63 {
		return NewNone(), ErrShiftRange
	}
	return NewInt(v.Int() << uint(other.Int())), nil
}

func (v Value) Shr(other Value) (Value, error) {
	if !bothInt(v, other) {
		return NewNone(), binaryOpError(">>", v, other)
	}
	if other.Int() < 0 || other.Int() > 63 {
		return NewNone(), ErrShiftRange
	}
	return NewInt(v.Int() >> uint(other.Int())), nil
}

func (v Value) Eq(other Value) (Value, error) {
	return NewBool(v.Equal(other)), nil
}

func (v Value) Ne(other Value) (Value, error) {
	return NewBool(!v.Equal(other)), nil
}

// compare orders two ints or two strings.
func (v Value) compare(op string, other Value) (int, error) {
	switch {
	case bothInt(v, other):
		switch {
		case v.Int() < other.Int():
			return -1, nil
		case v.Int() > other.Int():
			return 1, nil
		}
		return 0, nil
	case v.kind == KindString && other.kind == KindString:
		switch {
		case v.Str() < other.Str():
			return -1, nil
		case v.Str() > other.Str():
			return 1, nil
		}
		return 0, nil
	default:
		return 0, binaryOpError(op, v, other)
	}
}

func (v Value) Lt(other Value) (Value, error) {
	c, err := v.compare("<", other)
	if err != nil {
		return NewNone(), err
	}
	return NewBool(c < 0), nil
}

func (v Value) Le(other Value) (Value, error) {
	c, err := v.compare("<=", other)
	if err != nil {
		return NewNone(), err
	}
	return NewBool(c <= 0), nil
}

func (v Value) Gt(other Value) (Value, error) {
	c, err := v.compare(">", other)
	if err != nil {
		return NewNone(), err
	}
	return NewBool(c > 0), nil
}

func (v Value) Ge(other Value) (Value, error) {
	c, err := v.compare(">=", other)
	if err != nil {
		return NewNone(), err
	}
	return NewBool(c >= 0), nil
}

func (v Value) Neg() (Value, error) {
	if v.kind != KindInt {
		return NewNone(), &OperatorError{Op: "-", Left: v.kind, Unary: true}
	}
	if v.Int() == math.MinInt64 {
		return NewNone(), ErrIntegerOverflow
	}
	return NewInt(-v.Int()), nil
}

// Not is logical negation for bools and bitwise complement for ints.
func (v Value) Not() (Value, error) {
	switch v.kind {
	case KindBool:
		return NewBool(!v.Bool()), nil
	case KindInt:
		return NewInt(^v.Int()), nil
	default:
		return NewNone(), &OperatorError{Op: "!", Left: v.kind, Unary: true}
	}
}

var binaryOperators = map[TokenType]func(Value, Value) (Value, error){
	tokenPlus:     Value.Add,
	tokenMinus:    Value.Sub,
	tokenAsterisk: Value.Mul,
	tokenSlash:    Value.Div,
	tokenPercent:  Value.Rem,
	tokenAmp:      Value.BitAnd,
	tokenPipe:     Value.BitOr,
	tokenCaret:    Value.BitXor,
	tokenShl:      Value.Shl,
	tokenShr:      Value.Shr,
	tokenEQ:       Value.Eq,
	tokenNotEQ:    Value.Ne,
	tokenLT:       Value.Lt,
	tokenLTE:      Value.Le,
	tokenGT:       Value.Gt,
	tokenGTE:      Value.Ge,
}

// applyBinary evaluates left op right.
func applyBinary(op TokenType, left, right Value) (Value, error) {
	fn, ok := binaryOperators[op]
	if !ok {
		return NewNone(), fmt.Errorf("unsupported operator `%s`", op)
	}
	return fn(left, right)
}
