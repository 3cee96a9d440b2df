package vea

import (
	"strconv"
	"strings"
)

// maxInspectBytes caps Inspect output; longer renderings end in "...".
const maxInspectBytes = 64 << 10

// String renders the value the way print shows it. Strings print raw;
// strings nested inside structs and sets are quoted.
func (v Value) String() string {
	if v.kind == KindString {
		return v.Str()
	}
	return v.Inspect()
}

// Inspect renders the value as source-like text, quoting strings.
func (v Value) Inspect() string {
	w := valueWriter{limit: maxInspectBytes}
	_ = w.write(v)
	return w.text()
}

// valueWriter renders values with a guard against reference cycles.
// A struct or set reached again while it is still being rendered prints
// as `struct {...}` or `set {...}`.
type valueWriter struct {
	b      strings.Builder
	active map[any]bool
	// limit stops rendering once the text grows past it; zero means no cap.
	limit     int
	truncated bool
	// charge runs once per struct or set rendered.
	charge func() error
}

func (w *valueWriter) text() string {
	if w.truncated {
		return w.b.String() + "..."
	}
	return w.b.String()
}

func (w *valueWriter) full() bool {
	if w.limit > 0 && w.b.Len() > w.limit {
		w.truncated = true
	}
	return w.truncated
}

func (w *valueWriter) enter(ref any) (bool, error) {
	if w.active[ref] {
		return false, nil
	}
	if w.charge != nil {
		if err := w.charge(); err != nil {
			return false, err
		}
	}
	if w.active == nil {
		w.active = make(map[any]bool)
	}
	w.active[ref] = true
	return true, nil
}

func (w *valueWriter) write(v Value) error {
	if w.full() {
		return nil
	}
	switch v.kind {
	case KindNone:
		w.b.WriteByte('_')
	case KindBool:
		w.b.WriteString(strconv.FormatBool(v.Bool()))
	case KindInt:
		w.b.WriteString(strconv.FormatInt(v.Int(), 10))
	case KindString:
		w.b.WriteString(quoteString(v.Str()))
	case KindFunction:
		w.b.WriteString("fn ")
		w.b.WriteString(v.Function().Name)
	case KindObject:
		return w.writeObject(v.Object())
	case KindSet:
		return w.writeSet(v.Set())
	}
	return nil
}

func (w *valueWriter) writeObject(obj *Object) error {
	if obj.Len() == 0 {
		w.b.WriteString("struct {}")
		return nil
	}
	fresh, err := w.enter(obj)
	if err != nil {
		return err
	}
	if !fresh {
		w.b.WriteString("struct {...}")
		return nil
	}
	defer delete(w.active, obj)

	w.b.WriteString("struct {")
	for _, key := range obj.keys {
		field := obj.fields[key].Value
		w.b.WriteByte(' ')
		if field.kind != KindFunction || field.Function().Name != key {
			w.b.WriteString("let ")
			w.b.WriteString(key)
			w.b.WriteString(" = ")
		}
		if err := w.write(field); err != nil {
			return err
		}
		w.b.WriteByte(';')
		if w.full() {
			return nil
		}
	}
	w.b.WriteString(" }")
	return nil
}

func (w *valueWriter) writeSet(set *Set) error {
	if set.Len() == 0 {
		w.b.WriteString("set {}")
		return nil
	}
	fresh, err := w.enter(set)
	if err != nil {
		return err
	}
	if !fresh {
		w.b.WriteString("set {...}")
		return nil
	}
	defer delete(w.active, set)

	w.b.WriteString("set { ")
	for i, cell := range set.elems {
		if i > 0 {
			w.b.WriteString(", ")
		}
		if err := w.write(cell.Value); err != nil {
			return err
		}
		if w.full() {
			return nil
		}
	}
	w.b.WriteString(" }")
	return nil
}
