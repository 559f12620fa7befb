package assistant

import (
	"calendarbot/cmd/internal/history"
	"calendarbot/cmd/internal/tools"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
)

// NoToolResponse is handed to the responder when no tool ran.
const NoToolResponse = "None"

// Dispatch is the outcome of routing one classified message.
type Dispatch struct {
	Intent       Intent
	Outcome      tools.Outcome
	ToolResponse string
}

type Dispatcher struct {
	extractor *Extractor
	tools     *tools.Toolbox
}

func NewDispatcher(extractor *Extractor, toolbox *tools.Toolbox) *Dispatcher {
	return &Dispatcher{extractor: extractor, tools: toolbox}
}

// Dispatch runs the pipeline behind intent. Only a failed model call is
// returned as an error; bad extractions and store trouble come back as text.
func (d *Dispatcher) Dispatch(ctx context.Context, intent Intent, text string, past []history.Turn, today time.Time) (*Dispatch, error) {
	switch intent {
	case IntentCreate:
		in := d.input(ctx, text, past, today)
		req, err := d.extractor.ExtractCreate(ctx, in)
		if err != nil {
			return invalid(intent, err)
		}
		res := d.tools.Create(ctx, req)
		return &Dispatch{Intent: intent, Outcome: res.Outcome, ToolResponse: res.Text()}, nil

	case IntentModify:
		in := d.input(ctx, text, past, today)
		req, err := d.extractor.ExtractAdjust(ctx, in)
		if err != nil {
			return invalid(intent, err)
		}
		res := d.tools.Adjust(ctx, req)
		return &Dispatch{Intent: intent, Outcome: res.Outcome, ToolResponse: res.Text()}, nil

	case IntentReturn:
		list := d.tools.List(ctx)
		return &Dispatch{Intent: intent, Outcome: list.Outcome(), ToolResponse: list.Text()}, nil
	}

	return &Dispatch{Intent: IntentOther, Outcome: tools.OutcomeNone, ToolResponse: NoToolResponse}, nil
}

// input reads the appointment snapshot once for the extraction.
func (d *Dispatcher) input(ctx context.Context, text string, past []history.Turn, today time.Time) ExtractInput {
	return ExtractInput{
		Text:     text,
		History:  past,
		Today:    today,
		Snapshot: d.tools.Snapshot(ctx),
	}
}

func invalid(intent Intent, err error) (*Dispatch, error) {
	var xerr *ExtractionError
	if !errors.As(err, &xerr) {
		return nil, err
	}

	log.Warnf("discarding %s extraction: %v (raw output: %q)", intent, xerr, xerr.Raw)
	msg := "The appointment request could not be understood"
	if len(xerr.Problems) > 0 {
		msg += ": " + strings.Join(xerr.Problems, "; ")
	}
	msg += ". Ask the user to restate the date, start time, end time and description."
	return &Dispatch{Intent: intent, Outcome: tools.OutcomeInvalid, ToolResponse: msg}, nil
}
