// Package b64 provides the text-safe transport wrapper for the binary
// codec (§4.3, §6): standard-alphabet base64 with "=" padding, soft-wrapped
// at 76 columns with CRLF line endings on encode, and a permissive decoder
// that skips whitespace and padding while rejecting any other out-of-
// alphabet byte.
package b64

import (
	"strings"

	"github.com/dmrmodel/dmr/dmrerr"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const lineWidth = 76

var decodeTable [256]int8

func init() {
	for i := range decodeTable {
		decodeTable[i] = -1
	}
	for i, c := range alphabet {
		decodeTable[c] = int8(i)
	}
}

// Encode returns the base64 text encoding of b, soft-wrapped every 76
// output columns with "\r\n" (§6).
func Encode(b []byte) string {
	var sb strings.Builder
	col := 0
	writeRune := func(c byte) {
		if col == lineWidth {
			sb.WriteString("\r\n")
			col = 0
		}
		sb.WriteByte(c)
		col++
	}

	for i := 0; i+3 <= len(b); i += 3 {
		encodeGroup3(writeRune, b[i], b[i+1], b[i+2])
	}
	rem := len(b) % 3
	if rem == 1 {
		encodeGroup1(writeRune, b[len(b)-1])
	} else if rem == 2 {
		encodeGroup2(writeRune, b[len(b)-2], b[len(b)-1])
	}
	return sb.String()
}

func encodeGroup3(emit func(byte), a, bb, c byte) {
	emit(alphabet[a>>2])
	emit(alphabet[(a&0x03)<<4|bb>>4])
	emit(alphabet[(bb&0x0F)<<2|c>>6])
	emit(alphabet[c&0x3F])
}

func encodeGroup2(emit func(byte), a, bb byte) {
	emit(alphabet[a>>2])
	emit(alphabet[(a&0x03)<<4|bb>>4])
	emit(alphabet[(bb&0x0F)<<2])
	emit('=')
}

func encodeGroup1(emit func(byte), a byte) {
	emit(alphabet[a>>2])
	emit(alphabet[(a&0x03)<<4])
	emit('=')
	emit('=')
}

// Decode reverses Encode. Whitespace and "=" padding are skipped wherever
// they appear; any other byte outside the alphabet is a malformed stream
// (§6).
func Decode(s string) ([]byte, error) {
	var sextets []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '=' {
			continue
		}
		v := decodeTable[c]
		if v < 0 {
			return nil, dmrerr.ErrMalformed
		}
		sextets = append(sextets, byte(v))
	}

	out := make([]byte, 0, len(sextets)*3/4+3)
	i := 0
	for ; i+4 <= len(sextets); i += 4 {
		out = append(out,
			sextets[i]<<2|sextets[i+1]>>4,
			sextets[i+1]<<4|sextets[i+2]>>2,
			sextets[i+2]<<6|sextets[i+3],
		)
	}
	switch len(sextets) - i {
	case 0:
		// exact multiple of 4, nothing left over
	case 2:
		out = append(out, sextets[i]<<2|sextets[i+1]>>4)
	case 3:
		out = append(out,
			sextets[i]<<2|sextets[i+1]>>4,
			sextets[i+1]<<4|sextets[i+2]>>2,
		)
	default:
		return nil, dmrerr.ErrMalformed
	}
	return out, nil
}
