package value

import (
	"math/big"

	"github.com/dmrmodel/dmr/internal/assert"
	"github.com/dmrmodel/dmr/dmrerr"
)

// Value is one tagged cell of the DMR tree. The zero Value is UNDEFINED.
//
// A LIST owns its elements, an OBJECT owns its values, a PROPERTY owns its
// single child: every mutation through the public API deep-copies the
// incoming payload, so two Values never share mutable state.
type Value struct {
	tag       Tag
	protected bool

	boolVal   bool
	intVal    int32
	longVal   int64
	doubleVal float64
	bigInt    *big.Int
	bigDec    BigDecimal
	strVal    string
	bytesVal  []byte
	typeVal   Tag

	listVal []*Value
	objVal  *orderedObject

	propKey string
	propVal *Value
}

// Singletons (§9). These are process-wide constants: shareable and freely
// copyable by handle, never mutated in place.
var (
	trueValue  = &Value{tag: Boolean, boolVal: true, protected: true}
	falseValue = &Value{tag: Boolean, boolVal: false, protected: true}
)

// typeSingletons holds the fourteen interned TYPE values, one per Tag.
var typeSingletons [numTags]*Value

func init() {
	for t := Tag(0); t < numTags; t++ {
		typeSingletons[t] = &Value{tag: TypeTag, typeVal: t, protected: true}
	}
}

// New returns a fresh, unprotected UNDEFINED node.
func New() *Value {
	return &Value{}
}

// TypeValue returns the interned TYPE singleton for t.
func TypeValue(t Tag) *Value {
	return typeSingletons[t]
}

// BooleanValue returns the interned BOOLEAN singleton for b.
func BooleanValue(b bool) *Value {
	if b {
		return trueValue
	}
	return falseValue
}

// Tag reports the node's current variant.
func (v *Value) Tag() Tag { return v.tag }

// IsDefined reports tag != UNDEFINED.
func (v *Value) IsDefined() bool { return v.tag != Undefined }

// Protected reports whether the node rejects mutation.
func (v *Value) Protected() bool { return v.protected }

func (v *Value) checkMutable(op string) error {
	if v.protected {
		return dmrerr.NewProtectedError(op)
	}
	return nil
}

// Clear resets the node to UNDEFINED.
func (v *Value) Clear() error {
	if err := v.checkMutable("clear"); err != nil {
		return err
	}
	*v = Value{}
	return nil
}

// SetBoolean sets the BOOLEAN payload.
func (v *Value) SetBoolean(b bool) error {
	if err := v.checkMutable("setBoolean"); err != nil {
		return err
	}
	*v = Value{tag: Boolean, boolVal: b}
	return nil
}

// SetInt sets the INT payload.
func (v *Value) SetInt(i int32) error {
	if err := v.checkMutable("setInt"); err != nil {
		return err
	}
	*v = Value{tag: Int, intVal: i}
	return nil
}

// SetLong sets the LONG payload.
func (v *Value) SetLong(i int64) error {
	if err := v.checkMutable("setLong"); err != nil {
		return err
	}
	*v = Value{tag: Long, longVal: i}
	return nil
}

// SetDouble sets the DOUBLE payload.
func (v *Value) SetDouble(d float64) error {
	if err := v.checkMutable("setDouble"); err != nil {
		return err
	}
	*v = Value{tag: Double, doubleVal: d}
	return nil
}

// SetBigInteger sets the BIG_INTEGER payload, deep-copying i.
func (v *Value) SetBigInteger(i *big.Int) error {
	assert.NotNil(i, "i")
	if err := v.checkMutable("setBigInteger"); err != nil {
		return err
	}
	*v = Value{tag: BigInteger, bigInt: new(big.Int).Set(i)}
	return nil
}

// SetBigDecimal sets the BIG_DECIMAL payload.
func (v *Value) SetBigDecimal(d BigDecimal) error {
	if err := v.checkMutable("setBigDecimal"); err != nil {
		return err
	}
	unscaled := d.Unscaled
	if unscaled == nil {
		unscaled = new(big.Int)
	}
	*v = Value{tag: BigDecimal, bigDec: BigDecimal{Unscaled: new(big.Int).Set(unscaled), Scale: d.Scale}}
	return nil
}

// SetString sets the STRING payload.
func (v *Value) SetString(s string) error {
	if err := v.checkMutable("setString"); err != nil {
		return err
	}
	*v = Value{tag: String, strVal: s}
	return nil
}

// SetBytes sets the BYTES payload, deep-copying b.
func (v *Value) SetBytes(b []byte) error {
	if err := v.checkMutable("setBytes"); err != nil {
		return err
	}
	cp := append([]byte(nil), b...)
	*v = Value{tag: Bytes, bytesVal: cp}
	return nil
}

// SetExpression sets the EXPRESSION payload to the given template text.
func (v *Value) SetExpression(expr string) error {
	if err := v.checkMutable("setExpression"); err != nil {
		return err
	}
	*v = Value{tag: Expression, strVal: expr}
	return nil
}

// SetType sets the TYPE payload to t.
func (v *Value) SetType(t Tag) error {
	if err := v.checkMutable("setType"); err != nil {
		return err
	}
	*v = Value{tag: TypeTag, typeVal: t}
	return nil
}

// SetEmptyList resets the node to an empty LIST.
func (v *Value) SetEmptyList() error {
	if err := v.checkMutable("setEmptyList"); err != nil {
		return err
	}
	*v = Value{tag: List, listVal: []*Value{}}
	return nil
}

// SetEmptyObject resets the node to an empty OBJECT.
func (v *Value) SetEmptyObject() error {
	if err := v.checkMutable("setEmptyObject"); err != nil {
		return err
	}
	*v = Value{tag: Object, objVal: newOrderedObject()}
	return nil
}

// SetProperty resets the node to a PROPERTY association (name -> deep copy
// of child).
func (v *Value) SetProperty(name string, child *Value) error {
	assert.NotNil(child, "child")
	if err := v.checkMutable("setProperty"); err != nil {
		return err
	}
	*v = Value{tag: Property, propKey: name, propVal: child.Clone()}
	return nil
}

// SetList resets the node to a LIST containing deep copies of children, in
// order.
func (v *Value) SetList(children []*Value) error {
	if err := v.checkMutable("setList"); err != nil {
		return err
	}
	cp := make([]*Value, len(children))
	for i, c := range children {
		assert.NotNil(c, "children[i]")
		cp[i] = c.Clone()
	}
	*v = Value{tag: List, listVal: cp}
	return nil
}
