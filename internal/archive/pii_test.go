package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPhone(t *testing.T) {
	h1 := HashPhone("(609) 555-1234")
	h2 := HashPhone("609-555-1234")
	h3 := HashPhone("215.555.0199")

	assert.Equal(t, h1, h2, "formatting should not change the hash")
	assert.NotEqual(t, h1, h3, "different input should produce different hash")
	assert.Len(t, h1, 64, "SHA-256 hex should be 64 chars")
	assert.Empty(t, HashPhone("n/a"))
}
