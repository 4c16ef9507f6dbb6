package leads

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NewQuoteNumber builds a display reference of the form Q{YYYY}{MM}{DD}-{NNN}.
// It is cosmetic: nothing persists it as a key, so collisions are tolerated.
// rnd returns a value in [0, n); nil uses math/rand/v2.
func NewQuoteNumber(now time.Time, rnd func(n int) int) string {
	if rnd == nil {
		rnd = rand.IntN
	}
	return fmt.Sprintf("Q%s-%03d", now.Format("20060102"), rnd(1000))
}
