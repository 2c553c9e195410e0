package fortune

import "math"

// Choose picks one option uniformly using the next value of rng.
func Choose[T any](options []T, rng Stream) (T, error) {
	var zero T
	if len(options) == 0 {
		return zero, ErrInvalidInput
	}

	i := int(math.Floor(rng.Next() * float64(len(options))))
	// Next is below 1, but rounding in the product can still land on len.
	if i >= len(options) {
		i = len(options) - 1
	}
	if i < 0 {
		i = 0
	}
	return options[i], nil
}
