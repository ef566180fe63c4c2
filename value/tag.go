// Package value implements the Dynamic Model Representation (DMR) value
// tree: a recursive tagged sum of scalars, a type token, a named property,
// an ordered list, and an insertion-order-preserving object.
//
// A *Value is a node handle: every mutating method first checks the
// protection guard, then replaces the payload slot matching the method's
// tag. Two independent Values never share mutable state — every setter
// that takes a child performs a deep copy unless it is one of the "move"
// constructors in move.go (NewMovedList, NewMovedProperty, ObjectBuilder),
// which reader-side assembly code in packages tree, jsontext and cbor uses.
package value

import "fmt"

// Tag identifies which payload slot of a Value is populated.
type Tag uint8

// The fourteen variants of the DMR value tree (§3).
const (
	Undefined Tag = iota
	Boolean
	Int
	Long
	Double
	BigInteger
	BigDecimal
	String
	Bytes
	Expression
	TypeTag // the TYPE variant: a Value whose payload is itself a Tag
	List
	Object
	Property
	numTags
)

var tagNames = [numTags]string{
	Undefined:  "undefined",
	Boolean:    "boolean",
	Int:        "int",
	Long:       "long",
	Double:     "double",
	BigInteger: "big integer",
	BigDecimal: "big decimal",
	String:     "string",
	Bytes:      "bytes",
	Expression: "expression",
	TypeTag:    "type",
	List:       "list",
	Object:     "object",
	Property:   "property",
}

// String returns the DMR reserved word or type name for the tag.
func (t Tag) String() string {
	if t < numTags {
		return tagNames[t]
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// byteCodes maps a Tag to its one-byte binary type char (§4.3). These are
// small, stable, and never renumbered across format versions — the binary
// codec's bijection depends on it.
var byteCodes = [numTags]byte{
	Undefined:  'U',
	Boolean:    'B',
	Int:        'I',
	Long:       'L',
	Double:     'D',
	BigInteger: 'G', // "biG integer"
	BigDecimal: 'C', // "deCimal"
	String:     'S',
	Bytes:      'Y', // b"Y"tes
	Expression: 'E',
	TypeTag:    'T',
	List:       'A', // "Array"
	Object:     'O',
	Property:   'P',
}

var codeToTag map[byte]Tag

func init() {
	codeToTag = make(map[byte]Tag, numTags)
	for t := Tag(0); t < numTags; t++ {
		codeToTag[byteCodes[t]] = t
	}
}

// ByteCode returns the tag's one-byte binary type char.
func (t Tag) ByteCode() byte { return byteCodes[t] }

// TagForByteCode inverts ByteCode, reporting ok=false for unknown chars.
func TagForByteCode(b byte) (Tag, bool) {
	t, ok := codeToTag[b]
	return t, ok
}

// TagByName parses a DMR/JSON type name back into a Tag (used by the STRING
// → TYPE conversion and by `parse tag name` in the native reader).
func TagByName(name string) (Tag, bool) {
	for t := Tag(0); t < numTags; t++ {
		if tagNames[t] == name {
			return t, true
		}
	}
	return 0, false
}
