package crypto

import (
	"strings"

	"courier/internal/domain"
)

// Fingerprint formats a thumbprint for comparing by eye: groups of four
// characters separated by spaces.
func Fingerprint(t domain.Thumbprint) string {
	var b strings.Builder
	for i, r := range t.String() {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
