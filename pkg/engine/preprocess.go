package engine

import "strings"

// kwPrefix marks keyword strings produced by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites model source before zygomys reads it:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords
//     never collide with user variables. := is left alone.
//  2. kebab-case identifiers become snake_case (def-shape -> def_shape);
//     zygomys reads a hyphen as subtraction.
//  3. ; line comments become // comments.
//
// String literals pass through untouched.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	b := source
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == '"':
			j := skipQuoted(b, i, '"', true)
			out.WriteString(b[i:j])
			i = j

		case c == '`':
			j := skipQuoted(b, i, '`', false)
			out.WriteString(b[i:j])
			i = j

		case c == ';':
			j := i
			for j < len(b) && b[j] == ';' {
				j++
			}
			k := strings.IndexByte(b[j:], '\n')
			if k < 0 {
				k = len(b) - j
			}
			out.WriteString("//")
			out.WriteString(b[j : j+k])
			i = j + k

		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out.WriteString(":=")
			i += 2

		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.WriteString(b[i+1 : j])
			out.WriteByte('"')
			i = j

		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// skipQuoted returns the index just past the literal opened at b[start].
// An unterminated literal runs to the end of input.
func skipQuoted(b string, start int, quote byte, escapes bool) int {
	i := start + 1
	for i < len(b) {
		switch {
		case escapes && b[i] == '\\' && i+1 < len(b):
			i += 2
		case b[i] == quote:
			return i + 1
		default:
			i++
		}
	}
	return len(b)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
