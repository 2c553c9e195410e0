package fortune

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"strconv"
	"time"
	"unicode/utf16"
)

// RandomSource yields independent 32-bit random values.
type RandomSource interface {
	Uint32() uint32
}

// cryptoSource reads from crypto/rand and degrades to math/rand/v2 when the
// system source is unavailable. It never fails.
type cryptoSource struct{}

func (cryptoSource) Uint32() uint32 {
	var buf [4]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return rand.Uint32()
	}
	return binary.BigEndian.Uint32(buf[:])
}

// DefaultSource returns the crypto-backed source used by NewCollector.
func DefaultSource() RandomSource {
	return cryptoSource{}
}

// Collector folds a random value and the request's own inputs into a Seed.
type Collector struct {
	Source RandomSource
	Now    func() time.Time
}

// NewCollector returns a Collector reading the system clock and DefaultSource.
func NewCollector() *Collector {
	return &Collector{
		Source: DefaultSource(),
		Now:    time.Now,
	}
}

// Collect derives the seed for one draw. The machine and message only make
// identical seeds between rapid identical requests less likely.
func (c *Collector) Collect(machine, message string) uint32 {
	src := c.Source
	if src == nil {
		src = DefaultSource()
	}
	now := c.Now
	if now == nil {
		now = time.Now
	}

	entropy := machine + "-" + message + "-" +
		strconv.FormatInt(now().UnixMilli(), 10) + "-" +
		strconv.FormatUint(uint64(src.Uint32()), 10)

	return FoldHash(entropy) ^ src.Uint32()
}

// FoldHash folds s into 32 bits with a base-31 rolling hash over its UTF-16
// code units.
func FoldHash(s string) uint32 {
	var h uint32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + uint32(unit)
	}
	return h
}
