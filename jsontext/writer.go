// Package jsontext implements the JSON-compatible dialect (§4.7): standard
// JSON syntax, with DMR's non-JSON scalars (EXPRESSION, BYTES, TYPE) and
// PROPERTY encoded as single-key sentinel objects so the result remains
// valid JSON for any standard parser, built on the rendering helpers in
// package value and validated by package grammar.
package jsontext

import "github.com/dmrmodel/dmr/value"

// Write renders v as JSON text.
func Write(v *value.Value, pretty bool) string {
	return v.ToJSON(pretty)
}

// WriteCompact is Write(v, false).
func WriteCompact(v *value.Value) string {
	return v.ToJSON(false)
}

// WritePretty is Write(v, true).
func WritePretty(v *value.Value) string {
	return v.ToJSON(true)
}
