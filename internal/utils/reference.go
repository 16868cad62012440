package utils

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewBookingReference builds a human-readable reference: a 3-letter prefix,
// the trailing 6 digits of the unix clock and a 4-char random base-36
// suffix. Uniqueness is probabilistic; the bookings.reference UNIQUE key
// plus retry-on-duplicate makes it a guarantee.
func NewBookingReference(prefix string) string {
	prefix = strings.ToUpper(TrimOrEmpty(prefix))
	if len(prefix) != 3 {
		prefix = "SAH"
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}

	var suffix strings.Builder
	for i := 0; i < 4; i++ {
		suffix.WriteByte(base36[rand.Intn(len(base36))])
	}

	return prefix + ts + suffix.String()
}
