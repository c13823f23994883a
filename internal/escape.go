package internal

import (
	"fmt"
	"strings"
)

// CEscape escapes the given bytes the way a C string literal would: the usual
// control characters and quotes get backslash escapes and any other byte that
// is not printable ASCII becomes a three-digit octal escape.
func CEscape(s []byte) string {
	var b strings.Builder
	b.Grow(len(s))
	// Loop over the bytes, not the runes.
	for _, c := range s {
		switch c {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '"':
			b.WriteString(`\"`)
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		default:
			if c >= 0x20 && c < 0x7f {
				b.WriteByte(c)
			} else {
				_, _ = fmt.Fprintf(&b, "\\%03o", c)
			}
		}
	}
	return b.String()
}

// BytesLiteral wraps escaped bytes in the runtime's byte-literal helper,
// using the given quote character.
func BytesLiteral(s []byte, quote byte) string {
	q := string(quote)
	return "_b(" + q + CEscape(s) + q + ")"
}
