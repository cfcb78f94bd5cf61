package proximity

import (
	"context"
)

type stubQuery struct {
	candidates []Candidate
	err        error
	calls      int
}

func (s *stubQuery) Nearby(_ context.Context, _ Request) ([]Candidate, error) {
	s.calls++
	return s.candidates, s.err
}
