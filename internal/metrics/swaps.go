package metrics

import "github.com/san-kum/heartswarm/internal/dynamo"

// SwapRate is the mean number of target swaps per frame.
type SwapRate struct {
	name    string
	sum     int
	samples int
}

func NewSwapRate() *SwapRate {
	return &SwapRate{
		name: "swaps",
	}
}

func (s *SwapRate) Name() string {
	return s.name
}

func (s *SwapRate) Observe(f dynamo.Frame) {
	s.sum += f.Swaps
	s.samples++
}

func (s *SwapRate) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.sum) / float64(s.samples)
}

func (s *SwapRate) Reset() {
	s.sum = 0
	s.samples = 0
}
