package models

import (
	"strings"
	"unicode"
)

// NormalizeEquipmentName maps an equipment name to a lowercase identifier
// where every run of whitespace and every period becomes a single '_'.
// Distinct raw names can collide ("Linea 1" and "linea.1"), so the result
// is only used for external naming, never as a storage key.
func NormalizeEquipmentName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	inSep := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsSpace(r) || r == '.' {
			if !inSep {
				b.WriteByte('_')
			}
			inSep = true
			continue
		}
		inSep = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
