package value

import "hash/fnv"

// Equal reports structural equality: tag plus payload, recursively. Two
// Values of different tags are never equal, even when both convert to the
// same scalar (§3).
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.tag != o.tag {
		return false
	}
	switch v.tag {
	case Undefined:
		return true
	case Boolean:
		return v.boolVal == o.boolVal
	case Int:
		return v.intVal == o.intVal
	case Long:
		return v.longVal == o.longVal
	case Double:
		return v.doubleVal == o.doubleVal
	case BigInteger:
		return v.bigInt.Cmp(o.bigInt) == 0
	case BigDecimal:
		return v.bigDec.Equal(o.bigDec)
	case String, Expression:
		return v.strVal == o.strVal
	case Bytes:
		return bytesEqual(v.bytesVal, o.bytesVal)
	case TypeTag:
		return v.typeVal == o.typeVal
	case List:
		if len(v.listVal) != len(o.listVal) {
			return false
		}
		for i := range v.listVal {
			if !v.listVal[i].Equal(o.listVal[i]) {
				return false
			}
		}
		return true
	case Object:
		if v.objVal.len() != o.objVal.len() {
			return false
		}
		// Entries compare pairwise in insertion order, as Hash does.
		oKeys := make([]string, 0, o.objVal.len())
		o.objVal.each(func(k string, _ *Value) { oKeys = append(oKeys, k) })
		equal, i := true, 0
		v.objVal.each(func(k string, c *Value) {
			oc, ok := o.objVal.get(k)
			if oKeys[i] != k || !ok || !c.Equal(oc) {
				equal = false
			}
			i++
		})
		return equal
	case Property:
		return v.propKey == o.propKey && v.propVal.Equal(o.propVal)
	default:
		return false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Hash returns a deterministic hash over tag + payload, stable across equal
// structures (§8): v.Equal(o) implies v.Hash() == o.Hash().
func (v *Value) Hash() uint64 {
	h := fnv.New64a()
	v.hashInto(h)
	return h.Sum64()
}

func (v *Value) hashInto(h interface{ Write([]byte) (int, error) }) {
	writeByte := func(b byte) { h.Write([]byte{b}) }
	writeStr := func(s string) { h.Write([]byte(s)) }

	writeByte(byte(v.tag))
	switch v.tag {
	case Undefined:
	case Boolean:
		if v.boolVal {
			writeByte(1)
		} else {
			writeByte(0)
		}
	case Int:
		writeInt64(h, int64(v.intVal))
	case Long:
		writeInt64(h, v.longVal)
	case Double:
		writeInt64(h, int64(v.doubleVal))
	case BigInteger:
		writeStr(v.bigInt.String())
	case BigDecimal:
		writeStr(v.bigDec.String())
	case String, Expression:
		writeStr(v.strVal)
	case Bytes:
		h.Write(v.bytesVal)
	case TypeTag:
		writeByte(byte(v.typeVal))
	case List:
		for _, c := range v.listVal {
			c.hashInto(h)
		}
	case Object:
		v.objVal.each(func(k string, c *Value) {
			writeStr(k)
			c.hashInto(h)
		})
	case Property:
		writeStr(v.propKey)
		v.propVal.hashInto(h)
	}
}

func writeInt64(h interface{ Write([]byte) (int, error) }, i int64) {
	var buf [8]byte
	u := uint64(i)
	for idx := 0; idx < 8; idx++ {
		buf[idx] = byte(u >> (56 - 8*idx))
	}
	h.Write(buf[:])
}
