package remoting

import (
	"math"
	"math/rand"
	"time"
)

// backoffMultiplier is the growth factor between lookup retries.
const backoffMultiplier = 2.0

// nextBackoff returns the delay before retry attempt (1-based), doubling
// from initial up to max, then scaled by a jitter factor in [0.5, 1.5).
func nextBackoff(initial, max time.Duration, attempt int, rng *rand.Rand) time.Duration {
	if initial <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(initial) * math.Pow(backoffMultiplier, float64(attempt-1))
	if max > 0 && delay > float64(max) {
		delay = float64(max)
	}

	f := 1.0
	if rng != nil {
		f = 0.5 + rng.Float64()
	}
	return time.Duration(delay * f)
}
