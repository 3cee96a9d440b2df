package vea

type ValueKind int

const (
	KindNone ValueKind = iota
	KindBool
	KindInt
	KindString
	KindFunction
	KindObject
	KindSet
)

func (k ValueKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindFunction:
		return "fn"
	case KindObject:
		return "struct"
	case KindSet:
		return "set"
	default:
		return "unknown"
	}
}

// Value is a runtime value. The zero Value is none.
type Value struct {
	kind ValueKind
	data any
}

// Cell is a shared mutable slot. Bindings, object fields and set elements
// hold cells, so every reference to the same cell observes mutations.
type Cell struct {
	Value Value
}

func NewCell(v Value) *Cell { return &Cell{Value: v} }

// Function is a closure: the declaring environment is captured by pointer.
type Function struct {
	Name   string
	Params []string
	Body   *BlockStmt
	Env    *Env
	Span   Span
	source string
}

// Object is the runtime form of a struct literal. Field order follows
// declaration order.
type Object struct {
	keys   []string
	fields map[string]*Cell
}

func newObject() *Object {
	return &Object{fields: make(map[string]*Cell)}
}

func (o *Object) Field(name string) (*Cell, bool) {
	cell, ok := o.fields[name]
	return cell, ok
}

func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

func (o *Object) Len() int { return len(o.keys) }

func (o *Object) define(name string, v Value) bool {
	if _, exists := o.fields[name]; exists {
		return false
	}
	o.keys = append(o.keys, name)
	o.fields[name] = NewCell(v)
	return true
}

// Set keeps insertion order; elements are pairwise unequal.
type Set struct {
	elems []*Cell
}

func (s *Set) Len() int { return len(s.elems) }

func (s *Set) Contains(v Value) bool {
	for _, cell := range s.elems {
		if cell.Value.Equal(v) {
			return true
		}
	}
	return false
}

// Add inserts v unless an equal element is present.
func (s *Set) Add(v Value) bool {
	if s.Contains(v) {
		return false
	}
	s.elems = append(s.elems, NewCell(v))
	return true
}

func (s *Set) Elements() []Value {
	out := make([]Value, len(s.elems))
	for i, cell := range s.elems {
		out[i] = cell.Value
	}
	return out
}

func NewNone() Value                 { return Value{kind: KindNone} }
func NewBool(b bool) Value           { return Value{kind: KindBool, data: b} }
func NewInt(i int64) Value           { return Value{kind: KindInt, data: i} }
func NewString(s string) Value       { return Value{kind: KindString, data: s} }
func NewFunction(fn *Function) Value { return Value{kind: KindFunction, data: fn} }
func NewObject(obj *Object) Value    { return Value{kind: KindObject, data: obj} }
func NewSet(set *Set) Value          { return Value{kind: KindSet, data: set} }

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) Bool() bool {
	b, _ := v.data.(bool)
	return b
}

func (v Value) Int() int64 {
	i, _ := v.data.(int64)
	return i
}

// Str returns the payload of a string value.
func (v Value) Str() string {
	s, _ := v.data.(string)
	return s
}

func (v Value) Function() *Function {
	fn, _ := v.data.(*Function)
	return fn
}

func (v Value) Object() *Object {
	obj, _ := v.data.(*Object)
	return obj
}

func (v Value) Set() *Set {
	set, _ := v.data.(*Set)
	return set
}

// Equal compares values structurally; functions compare by identity and
// values of different kinds are never equal.
func (v Value) Equal(other Value) bool {
	return valuesEqual(v, other, 0)
}

const maxCompareDepth = 64

func valuesEqual(a, b Value, depth int) bool {
	if a.kind != b.kind {
		return false
	}
	if depth > maxCompareDepth {
		return false
	}
	switch a.kind {
	case KindNone:
		return true
	case KindBool:
		return a.Bool() == b.Bool()
	case KindInt:
		return a.Int() == b.Int()
	case KindString:
		return a.Str() == b.Str()
	case KindFunction:
		return a.Function() == b.Function()
	case KindObject:
		left, right := a.Object(), b.Object()
		if left == right {
			return true
		}
		if left.Len() != right.Len() {
			return false
		}
		for _, key := range left.keys {
			other, ok := right.fields[key]
			if !ok || !valuesEqual(left.fields[key].Value, other.Value, depth+1) {
				return false
			}
		}
		return true
	case KindSet:
		left, right := a.Set(), b.Set()
		if left == right {
			return true
		}
		if left.Len() != right.Len() {
			return false
		}
		for _, cell := range left.elems {
			found := false
			for _, candidate := range right.elems {
				if valuesEqual(cell.Value, candidate.Value, depth+1) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		return false
	}
}
