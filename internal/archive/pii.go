package archive

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// HashPhone returns the hex-encoded SHA-256 of the digits in phone, so
// "(609) 555-1234" and "609-555-1234" hash the same.
func HashPhone(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return ""
	}
	h := sha256.Sum256([]byte(digits))
	return fmt.Sprintf("%x", h)
}
