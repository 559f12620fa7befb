package tools

import (
	"calendarbot/cmd/internal/domain/entity"
	"context"
	"fmt"

	"github.com/labstack/gommon/log"
)

type OverlapPolicy string

const (
	// OverlapFromModel trusts the overlap flag of the request verbatim.
	OverlapFromModel OverlapPolicy = "model"
	// OverlapFromStore ignores the flag and asks the store.
	OverlapFromStore OverlapPolicy = "store"
	// OverlapFromEither rejects when the flag or the store reports an overlap.
	OverlapFromEither OverlapPolicy = "either"
)

func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch p := OverlapPolicy(s); p {
	case OverlapFromModel, OverlapFromStore, OverlapFromEither:
		return p, nil
	case "":
		return OverlapFromModel, nil
	}
	return "", fmt.Errorf("unknown overlap policy %q, must be one of: model, store, either", s)
}

func (p OverlapPolicy) trustsFlag() bool {
	return p == OverlapFromModel || p == OverlapFromEither
}

func (p OverlapPolicy) checksStore() bool {
	return p == OverlapFromStore || p == OverlapFromEither
}

type CreateRequest struct {
	Overlap     bool   `json:"overlap"`
	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
}

type AdjustRequest struct {
	Overlap     bool   `json:"overlap"`
	ID          int    `json:"id"`
	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
}

func (r AdjustRequest) fields() entity.AppointmentFields {
	return entity.AppointmentFields{Date: r.Date, Start: r.Start, End: r.End, Description: r.Description}
}

// Recorder observes tool outcomes.
type Recorder interface {
	ToolResult(tool string, outcome string)
}

type Toolbox struct {
	Store    Store
	Policy   OverlapPolicy
	Recorder Recorder
}

func NewToolbox(store Store, policy OverlapPolicy, recorder Recorder) *Toolbox {
	if policy == "" {
		policy = OverlapFromModel
	}
	return &Toolbox{Store: store, Policy: policy, Recorder: recorder}
}

// Create inserts a new appointment unless it overlaps. Store errors never
// escape; they come back as an OutcomeFailed result.
func (t *Toolbox) Create(ctx context.Context, req CreateRequest) (res Result) {
	defer func() { t.record(res.Tool, res.Outcome) }()
	defer t.recoverInto(&res, ToolCreate, MsgCreateFailed)

	if req.End < req.Start {
		return invalid(ToolCreate)
	}
	if t.Policy.trustsFlag() && req.Overlap {
		return rejected(ToolCreate, MsgCreateRejected)
	}

	err := t.Store.WithSession(ctx, func(store AppointmentStore) error {
		clash, err := t.storeOverlaps(ctx, store, req.Date, req.Start, req.End, 0)
		if err != nil {
			return err
		}
		if clash {
			res = rejected(ToolCreate, MsgCreateRejected)
			return nil
		}

		appt := &entity.Appointment{Date: req.Date, Start: req.Start, End: req.End, Description: req.Description}
		if _, err := store.Insert(ctx, appt); err != nil {
			return err
		}
		res = Result{
			Tool:        ToolCreate,
			Outcome:     OutcomeCreated,
			Message:     fmt.Sprintf("Appointment Created at %s %s", req.Date, req.Start),
			Appointment: appt,
		}
		return nil
	})
	if err != nil {
		log.Errorf("failed to create appointment on %s %s: %v", req.Date, req.Start, err)
		return failed(ToolCreate, MsgCreateFailed)
	}
	return res
}

// Adjust replaces every field of the appointment addressed by req.ID.
// Existence is checked first, then the interval, then the overlap flag.
func (t *Toolbox) Adjust(ctx context.Context, req AdjustRequest) (res Result) {
	defer func() { t.record(res.Tool, res.Outcome) }()
	defer t.recoverInto(&res, ToolAdjust, MsgAdjustFailed)

	err := t.Store.WithSession(ctx, func(store AppointmentStore) error {
		appt, err := store.Get(ctx, req.ID)
		if err != nil {
			return err
		}
		if appt == nil {
			res = Result{Tool: ToolAdjust, Outcome: OutcomeNotFound, Message: MsgAdjustNotFound}
			return nil
		}
		if req.End < req.Start {
			res = invalid(ToolAdjust)
			return nil
		}

		if t.Policy.trustsFlag() && req.Overlap {
			res = rejected(ToolAdjust, MsgAdjustRejected)
			return nil
		}
		clash, err := t.storeOverlaps(ctx, store, req.Date, req.Start, req.End, req.ID)
		if err != nil {
			return err
		}
		if clash {
			res = rejected(ToolAdjust, MsgAdjustRejected)
			return nil
		}

		ok, err := store.Update(ctx, req.ID, req.fields())
		if err != nil {
			return err
		}
		if !ok {
			res = Result{Tool: ToolAdjust, Outcome: OutcomeNotFound, Message: MsgAdjustNotFound}
			return nil
		}
		appt.Apply(req.fields())
		res = Result{Tool: ToolAdjust, Outcome: OutcomeAdjusted, Message: MsgAdjusted, Appointment: appt}
		return nil
	})
	if err != nil {
		log.Errorf("failed to adjust appointment %d: %v", req.ID, err)
		return failed(ToolAdjust, MsgAdjustFailed)
	}
	return res
}

func (t *Toolbox) List(ctx context.Context) (res ListResult) {
	defer func() { t.record(ToolList, res.Outcome()) }()
	return t.Snapshot(ctx)
}

// Snapshot reads every appointment like List without counting as a tool
// call. The extractor uses it to show the model the current calendar.
func (t *Toolbox) Snapshot(ctx context.Context) (res ListResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic while listing appointments: %v", r)
			res = ListResult{Status: ListFailed, Reason: fmt.Sprint(r)}
		}
	}()

	var appts []*entity.Appointment
	err := t.Store.WithSession(ctx, func(store AppointmentStore) error {
		var err error
		appts, err = store.ListAll(ctx)
		return err
	})
	if err != nil {
		log.Errorf("failed to list appointments: %v", err)
		return ListResult{Status: ListFailed, Reason: err.Error()}
	}
	if len(appts) == 0 {
		return ListResult{Status: ListEmpty}
	}
	return ListResult{Status: ListOK, Appointments: appts}
}

func (t *Toolbox) storeOverlaps(ctx context.Context, store AppointmentStore, date, start, end string, excludeID int) (bool, error) {
	if !t.Policy.checksStore() {
		return false, nil
	}
	clashes, err := store.FindOverlapping(ctx, date, start, end, excludeID)
	if err != nil {
		return false, fmt.Errorf("check overlap: %w", err)
	}
	return len(clashes) > 0, nil
}

func (t *Toolbox) recoverInto(res *Result, tool, msg string) {
	r := recover()
	if r == nil {
		return
	}
	log.Errorf("panic in %s: %v", tool, r)
	*res = failed(tool, msg)
}

func (t *Toolbox) record(tool string, outcome Outcome) {
	if t.Recorder == nil || tool == "" {
		return
	}
	t.Recorder.ToolResult(tool, string(outcome))
}

func rejected(tool, msg string) Result {
	return Result{Tool: tool, Outcome: OutcomeRejected, Message: msg}
}

// invalid reports a request whose interval ends before it starts. The store
// is never asked about it.
func invalid(tool string) Result {
	return Result{Tool: tool, Outcome: OutcomeInvalid, Message: MsgInvalidInterval}
}

func failed(tool, msg string) Result {
	return Result{Tool: tool, Outcome: OutcomeFailed, Message: msg}
}
