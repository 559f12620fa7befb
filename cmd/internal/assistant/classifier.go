package assistant

import (
	"calendarbot/cmd/internal/history"
	"calendarbot/cmd/internal/integration/llm"
	"calendarbot/cmd/internal/utils"
	"context"
	"fmt"
	"time"
)

type Classifier struct {
	model llm.Completer
}

func NewClassifier(model llm.Completer) *Classifier {
	return &Classifier{model: model}
}

// Classify asks the model for a one word label. A failed model call is
// returned to the caller, there is no fallback label.
func (c *Classifier) Classify(ctx context.Context, text string, past []history.Turn, today time.Time) (Intent, error) {
	out, err := c.model.Complete(ctx, classifyPrompt(utils.DisplayDate(today), past, text))
	if err != nil {
		return "", fmt.Errorf("classify intent: %w", err)
	}
	return ParseIntent(out), nil
}
