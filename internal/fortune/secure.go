package fortune

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
)

// SecureInRange returns an integer uniformly chosen from [lower, upper]
// using crypto/rand.
func SecureInRange(lower, upper int64) (int64, error) {
	n, err := SecureBigInRange(big.NewInt(lower), big.NewInt(upper))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// SecureBigInRange is SecureInRange for bounds of any size.
func SecureBigInRange(lower, upper *big.Int) (*big.Int, error) {
	if lower.Cmp(upper) > 0 {
		return nil, fmt.Errorf("lower bound %s exceeds upper bound %s", lower, upper)
	}

	span := new(big.Int).Sub(upper, lower)
	span.Add(span, big.NewInt(1))

	n, err := crand.Int(crand.Reader, span)
	if err != nil {
		return nil, fmt.Errorf("read secure random: %w", err)
	}
	return n.Add(n, lower), nil
}
