// Package dmrtext implements the native DMR textual dialect (§4.6):
// `{ "key" => value, ... }` objects, `[ ... ]` lists, `( "key" => value )`
// properties, and reserved-word/quoted-literal scalars, built on the
// rendering helpers in package value and validated by package grammar.
package dmrtext

import "github.com/dmrmodel/dmr/value"

// Write renders v in the native dialect. Pretty mirrors value.ToDMR's
// pretty-print rule: containers with more than one element break across
// lines.
func Write(v *value.Value, pretty bool) string {
	return v.ToDMR(pretty)
}

// WriteCompact is Write(v, false).
func WriteCompact(v *value.Value) string {
	return v.ToDMR(false)
}

// WritePretty is Write(v, true).
func WritePretty(v *value.Value) string {
	return v.ToDMR(true)
}
