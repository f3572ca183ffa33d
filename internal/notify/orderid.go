// internal/notify/orderid.go
package notify

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"

// Rand picks the order id suffix. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// NewOrderID returns "TZ" + base36(unix millis) + four random base36
// characters, upper-cased.
func NewOrderID(now time.Time, rnd Rand) string {
	if rnd == nil {
		rnd = globalRand{}
	}

	var b strings.Builder
	b.WriteString("TZ")
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	for i := 0; i < 4; i++ {
		b.WriteByte(base36Digits[rnd.IntN(len(base36Digits))])
	}
	return strings.ToUpper(b.String())
}
