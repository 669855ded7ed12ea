package parser

import "strings"

// isLiteralPrefix reports whether name is one of the raw/bytes literal
// prefixes (§4.3): `r`, `R`, `b`, `B`, in any single or combined form, e.g.
// `rb`, `Rb`, `bR`.
func isLiteralPrefix(name string) bool {
	if len(name) == 0 || len(name) > 2 {
		return false
	}
	for _, ch := range name {
		if ch != 'r' && ch != 'R' && ch != 'b' && ch != 'B' {
			return false
		}
	}
	return true
}

func hasRawPrefix(name string) bool  { return strings.ContainsAny(name, "rR") }
func hasBytesPrefix(name string) bool { return strings.ContainsAny(name, "bB") }
