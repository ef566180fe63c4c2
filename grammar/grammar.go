// Package grammar implements the pushdown automaton shared by the two
// textual dialects (§5): both the native DMR reader and the JSON reader
// tokenize their own surface syntax, then feed structural events
// (object-start, string, colon, number, ...) through this same state
// machine, which accepts or rejects the sequence independent of which
// dialect produced it.
//
// The event-driven shape — precondition check, state update, action — and
// an explicit context stack follow the pattern in the donor ecosystem's
// own hand-rolled JSON parser (a stack of "modes" governing what a ","
// or a close brace means next), generalized here to DMR's extra
// container kind (PROPERTY) and scalar kinds (EXPRESSION, BYTES, big
// integer/decimal, TYPE).
package grammar

import "github.com/dmrmodel/dmr/dmrerr"

// frame is one entry of the context stack.
type frame int8

const (
	frameList frame = iota
	frameObject
	frameObjectColon   // between an object key and its value
	framePropertyOpen  // just saw "(", awaiting the property name
	framePropertyColon // between a property name and its value
)

// Machine tracks well-formedness of a structural event stream. It knows
// nothing about bytes or tokens — callers translate their own syntax into
// Put* calls.
type Machine struct {
	stack         []frame
	commaExpected bool
	colonExpected bool
	afterComma    bool // just consumed "," in a LIST/OBJECT; a close here is a trailing comma
	finished      bool
	finishedError bool
	sawRootValue  bool
}

// New returns a Machine ready to accept exactly one top-level value.
func New() *Machine {
	return &Machine{stack: make([]frame, 0, 8)}
}

// Done reports whether the machine has accepted one complete, well-formed
// top-level value and nothing else is expected.
func (m *Machine) Done() bool {
	return m.finished && !m.finishedError
}

func (m *Machine) push(f frame) {
	m.stack = append(m.stack, f)
}

func (m *Machine) pop() {
	m.stack = m.stack[:len(m.stack)-1]
}

// top reports the innermost open frame. Once the machine has rejected input
// it reports no frame at all, so every event that consults the stack is
// rejected from then on.
func (m *Machine) top() (frame, bool) {
	if m.finishedError || len(m.stack) == 0 {
		return 0, false
	}
	return m.stack[len(m.stack)-1], true
}

func (m *Machine) reject(expecting string) error {
	m.finished = true
	m.finishedError = true
	return dmrerr.NewModelError("expecting %s", expecting)
}

// beforeValue validates that a scalar/container-opening event is legal at
// the current position: the root slot (stack empty, nothing accepted
// yet), right after "[", right after "," inside a LIST, or right after a
// colon frame (object entry or property value).
func (m *Machine) beforeValue() error {
	if m.finishedError {
		return dmrerr.NewModelError("parser already rejected input")
	}
	if len(m.stack) == 0 {
		if m.sawRootValue {
			return m.reject("end of input")
		}
		return nil
	}
	top, _ := m.top()
	switch top {
	case frameList:
		if m.commaExpected {
			return m.reject("',' or ']'")
		}
		m.afterComma = false
		return nil
	case frameObjectColon, framePropertyColon:
		if m.colonExpected {
			return m.reject("':' or '=>'")
		}
		return nil
	default:
		return m.reject("a value is not expected here")
	}
}

// afterValue runs once a scalar or a matching container-close event has
// been accepted, updating comma/colon expectations for the enclosing
// frame, popping colon frames as they are satisfied.
func (m *Machine) afterValue() error {
	if len(m.stack) == 0 {
		m.sawRootValue = true
		m.finished = true
		return nil
	}
	top, _ := m.top()
	switch top {
	case frameList:
		m.commaExpected = true
		return nil
	case frameObjectColon:
		m.pop()
		m.commaExpected = true
		return nil
	case framePropertyColon:
		m.pop()
		// The PROPERTY literal itself is now a completed value; bubble up
		// one level without consuming anything further from the stack.
		return m.afterValue()
	default:
		return m.reject("unexpected value")
	}
}

// PutObjectStart accepts a "{".
func (m *Machine) PutObjectStart() error {
	if err := m.beforeValue(); err != nil {
		return err
	}
	m.push(frameObject)
	m.commaExpected = false
	return nil
}

// PutObjectEnd accepts a "}".
func (m *Machine) PutObjectEnd() error {
	top, ok := m.top()
	if !ok || top != frameObject {
		return m.reject("'}'")
	}
	if m.afterComma {
		return m.reject("a key")
	}
	m.pop()
	return m.afterValue()
}

// PutKey accepts an object key string, the string that precedes a colon.
func (m *Machine) PutKey() error {
	top, ok := m.top()
	if !ok || top != frameObject {
		return m.reject("key string")
	}
	if m.commaExpected {
		return m.reject("',' or '}'")
	}
	m.afterComma = false
	m.push(frameObjectColon)
	m.colonExpected = true
	return nil
}

// PutColon accepts the ":" or "=>" separating a key (or property name)
// from its value.
func (m *Machine) PutColon() error {
	top, ok := m.top()
	if !ok || (top != frameObjectColon && top != framePropertyColon) || !m.colonExpected {
		return m.reject("':' or '=>'")
	}
	m.colonExpected = false
	return nil
}

// PutListStart accepts a "[".
func (m *Machine) PutListStart() error {
	if err := m.beforeValue(); err != nil {
		return err
	}
	m.push(frameList)
	m.commaExpected = false
	return nil
}

// PutListEnd accepts a "]".
func (m *Machine) PutListEnd() error {
	top, ok := m.top()
	if !ok || top != frameList {
		return m.reject("']'")
	}
	if m.afterComma {
		return m.reject("a value")
	}
	m.pop()
	return m.afterValue()
}

// PutComma accepts a "," separating LIST elements or OBJECT entries.
func (m *Machine) PutComma() error {
	top, ok := m.top()
	if !ok {
		return m.reject("',' not expected here")
	}
	switch top {
	case frameList:
		if !m.commaExpected {
			return m.reject("a value")
		}
	case frameObject:
		if !m.commaExpected {
			return m.reject("a key")
		}
	default:
		return m.reject("',' not expected here")
	}
	m.commaExpected = false
	m.afterComma = true
	return nil
}

// PutPropertyStart accepts a "(" opening a PROPERTY literal.
func (m *Machine) PutPropertyStart() error {
	if err := m.beforeValue(); err != nil {
		return err
	}
	m.push(framePropertyOpen)
	return nil
}

// PutPropertyName accepts the name string inside a PROPERTY literal.
func (m *Machine) PutPropertyName() error {
	top, ok := m.top()
	if !ok || top != framePropertyOpen {
		return m.reject("property name")
	}
	m.pop()
	m.push(framePropertyColon)
	m.colonExpected = true
	return nil
}

// PutPropertyEnd accepts the ")" closing a PROPERTY literal. By the time it
// arrives, the property's value has already popped its colon frame via
// afterValue, which also accounted for the completed PROPERTY in whatever
// frame now sits on top; this call performs no further check and always
// returns nil.
func (m *Machine) PutPropertyEnd() error {
	return nil
}

// PutScalar accepts any complete scalar token: STRING, INT, LONG, DOUBLE,
// BIG_INTEGER, BIG_DECIMAL, BYTES, EXPRESSION, TYPE, BOOLEAN, UNDEFINED.
func (m *Machine) PutScalar() error {
	if err := m.beforeValue(); err != nil {
		return err
	}
	return m.afterValue()
}
