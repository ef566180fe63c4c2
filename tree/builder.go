// Package tree assembles a *value.Value from a reader's event stream, and
// drives a writer from the inverse post-order walk over an existing tree
// (§4.8). Builder uses move semantics throughout: every completed child is
// adopted directly into its parent container via value.NewMovedList,
// value.NewMovedProperty, and value.ObjectBuilder, never re-cloned, so
// assembling an n-node tree is O(n) total work regardless of nesting depth.
package tree

import (
	"github.com/dmrmodel/dmr/dmrerr"
	"github.com/dmrmodel/dmr/value"
)

type frameKind int

const (
	frameList frameKind = iota
	frameObject
	frameProperty
)

type frame struct {
	kind frameKind

	// frameList
	elems []*value.Value

	// frameObject
	obj         *value.ObjectBuilder
	pendKey     string
	havePendKey bool

	// frameProperty
	propKey     string
	havePropKey bool
}

// Builder assembles exactly one root Value from a sequence of structural
// events. It performs no grammar validation of its own — callers drive it
// in lockstep with a grammar.Machine, which rejects ill-formed sequences
// before they reach the builder.
type Builder struct {
	stack []frame
	root  *value.Value
	done  bool
}

// New starts an empty Builder.
func New() *Builder { return &Builder{} }

func (b *Builder) top() (*frame, bool) {
	if len(b.stack) == 0 {
		return nil, false
	}
	return &b.stack[len(b.stack)-1], true
}

func (b *Builder) pop() frame {
	f := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return f
}

// deliver adopts a completed value into whichever context is currently
// open: a LIST in progress, an OBJECT awaiting the value for its pending
// key, a PROPERTY awaiting its value, or the root slot.
func (b *Builder) deliver(v *value.Value) error {
	f, ok := b.top()
	if !ok {
		if b.done {
			return dmrerr.NewModelError("unexpected value after the root value is complete")
		}
		b.root = v
		b.done = true
		return nil
	}
	switch f.kind {
	case frameList:
		f.elems = append(f.elems, v)
		return nil
	case frameObject:
		if !f.havePendKey {
			return dmrerr.NewModelError("expecting a key before an object value")
		}
		f.obj.Put(f.pendKey, v)
		f.havePendKey = false
		f.pendKey = ""
		return nil
	case frameProperty:
		if !f.havePropKey {
			return dmrerr.NewModelError("expecting a property name before its value")
		}
		prop := value.NewMovedProperty(f.propKey, v)
		b.pop()
		return b.deliver(prop)
	default:
		return nil
	}
}

// Scalar delivers an already-constructed leaf Value (UNDEFINED, BOOLEAN,
// INT, LONG, DOUBLE, BIG_INTEGER, BIG_DECIMAL, STRING, BYTES, EXPRESSION,
// or TYPE) into whatever container is open.
func (b *Builder) Scalar(v *value.Value) error { return b.deliver(v) }

// ListStart begins a LIST.
func (b *Builder) ListStart() error {
	b.stack = append(b.stack, frame{kind: frameList})
	return nil
}

// ListEnd closes the innermost open LIST and delivers it.
func (b *Builder) ListEnd() error {
	f, ok := b.top()
	if !ok || f.kind != frameList {
		return dmrerr.NewModelError("unmatched list end")
	}
	closed := b.pop()
	return b.deliver(value.NewMovedList(closed.elems))
}

// ObjectStart begins an OBJECT.
func (b *Builder) ObjectStart() error {
	b.stack = append(b.stack, frame{kind: frameObject, obj: value.NewObjectBuilder()})
	return nil
}

// Key records the key for the next value delivered inside the innermost
// open OBJECT.
func (b *Builder) Key(key string) error {
	f, ok := b.top()
	if !ok || f.kind != frameObject {
		return dmrerr.NewModelError("key outside an object")
	}
	f.pendKey = key
	f.havePendKey = true
	return nil
}

// ObjectEnd closes the innermost open OBJECT and delivers it.
func (b *Builder) ObjectEnd() error {
	f, ok := b.top()
	if !ok || f.kind != frameObject {
		return dmrerr.NewModelError("unmatched object end")
	}
	closed := b.pop()
	return b.deliver(closed.obj.Build())
}

// PropertyStart begins a PROPERTY.
func (b *Builder) PropertyStart() error {
	b.stack = append(b.stack, frame{kind: frameProperty})
	return nil
}

// PropertyName records the PROPERTY's key, ahead of its single value.
func (b *Builder) PropertyName(name string) error {
	f, ok := b.top()
	if !ok || f.kind != frameProperty {
		return dmrerr.NewModelError("property name outside a property")
	}
	f.propKey = name
	f.havePropKey = true
	return nil
}

// PropertyEnd is a no-op: the property closes and delivers itself as soon
// as its value arrives, so there is nothing left open by the time the
// closing syntax is seen.
func (b *Builder) PropertyEnd() error { return nil }

// Value returns the completed root, or an error if the event stream never
// reached a single fully-closed value.
func (b *Builder) Value() (*value.Value, error) {
	if !b.done || len(b.stack) != 0 {
		return nil, dmrerr.NewModelError("incomplete value")
	}
	return b.root, nil
}
