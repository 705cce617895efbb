package flow

import "math"

// runningStats is a bounded-memory accumulator for mean, population
// variance, min, max and sum of a sample stream (Welford's online
// formulation). It replaces the raw per-packet sample buffers that
// grow without bound on long-lived flows.
type runningStats struct {
	n    uint64
	mean float64
	m2   float64
	min  float64
	max  float64
	sum  float64
}

func (s *runningStats) add(x float64) {
	s.n++
	if s.n == 1 {
		s.min = x
		s.max = x
	} else {
		if x < s.min {
			s.min = x
		}
		if x > s.max {
			s.max = x
		}
	}
	s.sum += x
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (x - s.mean)
}

func (s *runningStats) Count() uint64 { return s.n }

func (s *runningStats) Mean() float64 {
	if s.n == 0 {
		return 0
	}
	return s.mean
}

// Variance is the population variance, matching the classifier's
// training-time definition (numpy's default ddof=0).
func (s *runningStats) Variance() float64 {
	if s.n == 0 {
		return 0
	}
	return s.m2 / float64(s.n)
}

func (s *runningStats) Std() float64 {
	return math.Sqrt(s.Variance())
}

func (s *runningStats) Min() float64 {
	if s.n == 0 {
		return 0
	}
	return s.min
}

func (s *runningStats) Max() float64 {
	if s.n == 0 {
		return 0
	}
	return s.max
}

func (s *runningStats) Sum() float64 { return s.sum }
