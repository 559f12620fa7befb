package assistant

import (
	"calendarbot/cmd/internal/integration/llm"
	"context"
	"fmt"
	"sync"
)

// scripted answers prompts in order and keeps every prompt it saw.
type scripted struct {
	mu      sync.Mutex
	answers []any
	prompts []*llm.Prompt
}

func script(answers ...any) *scripted {
	return &scripted{answers: answers}
}

func (s *scripted) Complete(_ context.Context, p *llm.Prompt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, p)
	if len(s.answers) == 0 {
		return "", fmt.Errorf("unexpected %s call", p.Stage)
	}
	next := s.answers[0]
	s.answers = s.answers[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	return next.(string), nil
}

func (s *scripted) stages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	for i, p := range s.prompts {
		out[i] = p.Stage
	}
	return out
}

func (s *scripted) system(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompts[i].Messages[0].Content
}
