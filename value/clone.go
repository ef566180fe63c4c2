package value

import "math/big"

// Clone returns an independent, unprotected deep copy. Cloning resets the
// protected bit; callers who want immutability-on-copy must re-protect
// (§9).
func (v *Value) Clone() *Value {
	c := &Value{
		tag:       v.tag,
		protected: false,
		boolVal:   v.boolVal,
		intVal:    v.intVal,
		longVal:   v.longVal,
		doubleVal: v.doubleVal,
		strVal:    v.strVal,
		typeVal:   v.typeVal,
		propKey:   v.propKey,
	}
	if v.bigInt != nil {
		c.bigInt = new(big.Int).Set(v.bigInt)
	}
	if v.bigDec.Unscaled != nil {
		c.bigDec = BigDecimal{Unscaled: new(big.Int).Set(v.bigDec.Unscaled), Scale: v.bigDec.Scale}
	}
	if v.bytesVal != nil {
		c.bytesVal = append([]byte(nil), v.bytesVal...)
	}
	if v.listVal != nil {
		c.listVal = make([]*Value, len(v.listVal))
		for i, e := range v.listVal {
			c.listVal[i] = e.Clone()
		}
	}
	if v.objVal != nil {
		c.objVal = v.objVal.clone()
	}
	if v.propVal != nil {
		c.propVal = v.propVal.Clone()
	}
	return c
}
