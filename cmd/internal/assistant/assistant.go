package assistant

import (
	"calendarbot/cmd/internal/history"
	"calendarbot/cmd/internal/integration/llm"
	"calendarbot/cmd/internal/tools"
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

// Recorder observes classified intents.
type Recorder interface {
	Intent(intent string)
}

type Options struct {
	SnapshotLimit int
	Now           func() time.Time
	Recorder      Recorder
}

type Reply struct {
	Text    string        `json:"output"`
	Intent  Intent        `json:"intent"`
	Outcome tools.Outcome `json:"outcome"`
}

// Assistant answers one chat message at a time per session:
// classify, dispatch, respond, then remember the exchange.
type Assistant struct {
	classifier *Classifier
	dispatcher *Dispatcher
	responder  *Responder
	history    *history.Manager
	now        func() time.Time
	recorder   Recorder
}

func New(model llm.Completer, toolbox *tools.Toolbox, hist *history.Manager, validate *validator.Validate, opts Options) *Assistant {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Assistant{
		classifier: NewClassifier(model),
		dispatcher: NewDispatcher(NewExtractor(model, validate, opts.SnapshotLimit), toolbox),
		responder:  NewResponder(model),
		history:    hist,
		now:        now,
		recorder:   opts.Recorder,
	}
}

// Reply runs the whole pipeline for text. Concurrent calls for the same
// session are serialized. On error nothing is added to the history.
func (a *Assistant) Reply(ctx context.Context, sessionID, text string) (*Reply, error) {
	var reply *Reply
	err := a.history.Turn(ctx, sessionID, func(past []history.Turn) ([]history.Turn, error) {
		today := a.now()

		intent, err := a.classifier.Classify(ctx, text, past, today)
		if err != nil {
			return nil, err
		}
		if a.recorder != nil {
			a.recorder.Intent(string(intent))
		}
		log.Debugf("session %s classified as %s", sessionID, intent)

		d, err := a.dispatcher.Dispatch(ctx, intent, text, past, today)
		if err != nil {
			return nil, err
		}

		out, err := a.responder.Respond(ctx, d, past, text, today)
		if err != nil {
			return nil, err
		}

		reply = &Reply{Text: out, Intent: d.Intent, Outcome: d.Outcome}
		return []history.Turn{history.Human(text), history.AI(out)}, nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

func (a *Assistant) History(ctx context.Context, sessionID string) ([]history.Turn, error) {
	return a.history.History(ctx, sessionID)
}

func (a *Assistant) Forget(ctx context.Context, sessionID string) error {
	return a.history.Clear(ctx, sessionID)
}
