package translate

import (
	"context"
	"sync"
)

// StubTranslator records inputs and answers with a fixed prefix, for
// tests.
type StubTranslator struct {
	mu     sync.Mutex
	Prefix string
	Err    error
	Inputs []string
}

func (s *StubTranslator) Translate(ctx context.Context, english string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Inputs = append(s.Inputs, english)
	if s.Err != nil {
		return "", s.Err
	}
	prefix := s.Prefix
	if prefix == "" {
		prefix = "ko:"
	}
	return prefix + english, nil
}

// Seen returns a copy of everything submitted so far.
func (s *StubTranslator) Seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Inputs))
	copy(out, s.Inputs)
	return out
}
