package value

import (
	"fmt"
	"strconv"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/dmrmodel/dmr/dmrerr"
)

// Get returns the child named key, auto-vivifying as needed (§4.1):
//
//   - UNDEFINED promotes to OBJECT and inserts an UNDEFINED child at key.
//   - OBJECT inserts an UNDEFINED child at the end if key is absent.
//   - PROPERTY returns its sole child if key matches the property name.
//   - any other tag is an illegal access.
//
// Chaining Get("a","b","c") on a fresh root builds a three-level OBJECT
// chain ending in an UNDEFINED leaf — the mechanism for deep path
// construction described in §9. Callers wanting a pure query must call Has
// first.
func (v *Value) Get(key string) (*Value, error) {
	switch v.tag {
	case Undefined:
		if err := v.checkMutable("get"); err != nil {
			return nil, err
		}
		if err := v.SetEmptyObject(); err != nil {
			return nil, err
		}
		return v.Get(key)

	case Object:
		if child, ok := v.objVal.get(key); ok {
			return child, nil
		}
		if err := v.checkMutable("get"); err != nil {
			return nil, err
		}
		child := New()
		v.objVal.set(key, child)
		return child, nil

	case Property:
		if v.propKey == key {
			return v.propVal, nil
		}
		return nil, dmrerr.NewAccessError(v.tag.String(), fmt.Sprintf("get(%q)", key))

	default:
		return nil, dmrerr.NewAccessError(v.tag.String(), fmt.Sprintf("get(%q)", key))
	}
}

// GetPath walks successive Get calls over keys, the short-circuit chain
// described in §4.1.
func (v *Value) GetPath(keys ...string) (*Value, error) {
	cur := v
	for _, k := range keys {
		next, err := cur.Get(k)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// GetIndex returns the child at index, auto-vivifying an UNDEFINED root into
// a LIST (extended with UNDEFINED padding up to index) the same way Get
// vivifies an OBJECT.
func (v *Value) GetIndex(index int) (*Value, error) {
	switch v.tag {
	case Undefined:
		if err := v.checkMutable("get"); err != nil {
			return nil, err
		}
		if err := v.SetEmptyList(); err != nil {
			return nil, err
		}
		return v.GetIndex(index)

	case List:
		if index < 0 {
			return nil, dmrerr.NewAccessError(v.tag.String(), fmt.Sprintf("get(%d)", index))
		}
		if index < len(v.listVal) {
			return v.listVal[index], nil
		}
		if err := v.checkMutable("get"); err != nil {
			return nil, err
		}
		for len(v.listVal) <= index {
			v.listVal = append(v.listVal, New())
		}
		return v.listVal[index], nil

	case Property:
		if index == 0 {
			return v.propVal, nil
		}
		return nil, dmrerr.NewAccessError(v.tag.String(), fmt.Sprintf("get(%d)", index))

	default:
		return nil, dmrerr.NewAccessError(v.tag.String(), fmt.Sprintf("get(%d)", index))
	}
}

// Remove removes and returns the child named key from an OBJECT.
func (v *Value) Remove(key string) (*Value, error) {
	if v.tag != Object {
		return nil, dmrerr.NewAccessError(v.tag.String(), fmt.Sprintf("remove(%q)", key))
	}
	if err := v.checkMutable("remove"); err != nil {
		return nil, err
	}
	child, ok := v.objVal.remove(key)
	if !ok {
		return nil, notFound(key, -1, v)
	}
	return child, nil
}

// RemoveIndex removes and returns the child at index from a LIST.
func (v *Value) RemoveIndex(index int) (*Value, error) {
	if v.tag != List {
		return nil, dmrerr.NewAccessError(v.tag.String(), fmt.Sprintf("remove(%d)", index))
	}
	if index < 0 || index >= len(v.listVal) {
		return nil, notFound("", index, v)
	}
	if err := v.checkMutable("remove"); err != nil {
		return nil, err
	}
	child := v.listVal[index]
	v.listVal = append(v.listVal[:index], v.listVal[index+1:]...)
	return child, nil
}

// Has reports whether key exists without auto-vivifying.
func (v *Value) Has(key string) bool {
	switch v.tag {
	case Object:
		_, ok := v.objVal.get(key)
		return ok
	case Property:
		return v.propKey == key
	default:
		return false
	}
}

// HasIndex reports whether index exists without auto-vivifying.
func (v *Value) HasIndex(index int) bool {
	switch v.tag {
	case List:
		return index >= 0 && index < len(v.listVal)
	case Property:
		return index == 0
	default:
		return false
	}
}

// HasDefined reports Has(key) && the child's tag != UNDEFINED.
func (v *Value) HasDefined(key string) bool {
	if !v.Has(key) {
		return false
	}
	child, _ := v.Get(key)
	return child.IsDefined()
}

// HasPath is the short-circuit conjunction of Has over a sequence of keys.
func (v *Value) HasPath(keys ...string) bool {
	cur := v
	for _, k := range keys {
		if !cur.Has(k) {
			return false
		}
		child, _ := cur.Get(k)
		cur = child
	}
	return true
}

// Require returns the child named key, or ErrNoSuchElement if absent.
func (v *Value) Require(key string) (*Value, error) {
	if !v.Has(key) {
		return nil, notFound(key, -1, v)
	}
	return v.Get(key)
}

// RequireIndex returns the child at index, or ErrNoSuchElement if absent.
func (v *Value) RequireIndex(index int) (*Value, error) {
	if !v.HasIndex(index) {
		return nil, notFound("", index, v)
	}
	return v.GetIndex(index)
}

func notFound(key string, index int, container *Value) error {
	if index >= 0 {
		return &dmrerr.NotFoundError{Index: index, IsIndex: true}
	}
	suggestion := ""
	if container.tag == Object {
		best, bestScore := "", -1
		container.objVal.each(func(k string, _ *Value) {
			if score := fuzzy.RankMatch(key, k); score >= 0 && (bestScore < 0 || score < bestScore) {
				best, bestScore = k, score
			}
		})
		suggestion = best
	}
	return &dmrerr.NotFoundError{Key: key, Suggestion: suggestion}
}

// Add appends a new UNDEFINED child to a LIST and returns it.
func (v *Value) Add() (*Value, error) {
	if v.tag != List {
		return nil, dmrerr.NewAccessError(v.tag.String(), "add()")
	}
	if err := v.checkMutable("add"); err != nil {
		return nil, err
	}
	child := New()
	v.listVal = append(v.listVal, child)
	return child, nil
}

// Insert inserts a new UNDEFINED child into a LIST at i (0 <= i <= size)
// and returns it.
func (v *Value) Insert(i int) (*Value, error) {
	if v.tag != List {
		return nil, dmrerr.NewAccessError(v.tag.String(), "insert("+strconv.Itoa(i)+")")
	}
	if i < 0 || i > len(v.listVal) {
		return nil, dmrerr.NewAccessError(v.tag.String(), "insert("+strconv.Itoa(i)+")")
	}
	if err := v.checkMutable("insert"); err != nil {
		return nil, err
	}
	child := New()
	v.listVal = append(v.listVal, nil)
	copy(v.listVal[i+1:], v.listVal[i:])
	v.listVal[i] = child
	return child, nil
}

// Size returns len for LIST/OBJECT, 1 for PROPERTY, 0 otherwise.
func (v *Value) Size() int {
	switch v.tag {
	case List:
		return len(v.listVal)
	case Object:
		return v.objVal.len()
	case Property:
		return 1
	default:
		return 0
	}
}

// Keys returns the OBJECT's keys in insertion order. Returns nil for any
// other tag.
func (v *Value) Keys() []string {
	if v.tag != Object {
		return nil
	}
	out := make([]string, 0, v.objVal.len())
	v.objVal.each(func(k string, _ *Value) { out = append(out, k) })
	return out
}

// Elements returns a LIST's children in order. Returns nil for any other
// tag.
func (v *Value) Elements() []*Value {
	if v.tag != List {
		return nil
	}
	return append([]*Value(nil), v.listVal...)
}
