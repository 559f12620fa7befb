package assistant

import (
	"calendarbot/cmd/internal/history"
	"calendarbot/cmd/internal/integration/llm"
	"calendarbot/cmd/internal/utils"
	"context"
	"fmt"
	"strings"
	"time"
)

type Responder struct {
	model llm.Completer
}

func NewResponder(model llm.Completer) *Responder {
	return &Responder{model: model}
}

// Respond turns the tool response into the final answer. The model output is
// returned as is, trimmed.
func (r *Responder) Respond(ctx context.Context, d *Dispatch, past []history.Turn, text string, today time.Time) (string, error) {
	out, err := r.model.Complete(ctx, respondPrompt(utils.DisplayDate(today), d, past, text))
	if err != nil {
		return "", fmt.Errorf("respond: %w", err)
	}
	return strings.TrimSpace(out), nil
}
