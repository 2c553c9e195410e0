package fortune

// Stream is a source of values in [0, 1).
type Stream interface {
	Next() float64
}

const (
	lcgMultiplier uint32 = 1664525
	lcgIncrement  uint32 = 1013904223
	lcgModulus           = 1 << 32
)

// Sequence is a 32-bit linear congruential generator. It is deterministic in
// its seed and call count and is not safe for concurrent use; every draw
// constructs its own.
type Sequence struct {
	state uint32
}

// NewSequence returns a Sequence starting from seed.
func NewSequence(seed uint32) *Sequence {
	return &Sequence{state: seed}
}

// Next advances the state and returns it scaled into [0, 1).
func (s *Sequence) Next() float64 {
	s.state = lcgMultiplier*s.state + lcgIncrement
	return float64(s.state) / lcgModulus
}
