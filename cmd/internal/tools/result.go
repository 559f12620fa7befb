package tools

import (
	"calendarbot/cmd/internal/domain/entity"
	"encoding/json"
)

const (
	ToolCreate = "create_appointment"
	ToolAdjust = "adjust_appointment"
	ToolList   = "list_appointments"
)

type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeAdjusted Outcome = "adjusted"
	OutcomeListed   Outcome = "listed"
	OutcomeEmpty    Outcome = "empty"
	// OutcomeRejected is a business rule refusal, the store was left alone.
	OutcomeRejected Outcome = "rejected"
	OutcomeNotFound Outcome = "not_found"
	// OutcomeFailed means the store could not be reached or errored.
	OutcomeFailed  Outcome = "failed"
	OutcomeInvalid Outcome = "invalid_request"
	OutcomeNone    Outcome = "none"
)

const (
	MsgCreateRejected = "Unable to create appointment as the appointment overlaps with an existing appointment"
	MsgCreateFailed   = "Unable to create an appointment"
	MsgAdjustNotFound = "Appointment not found"
	MsgAdjustRejected = "Unable to adjust appointment as new date and time overlaps with an existing appointment"
	MsgAdjusted       = "Appointment has been modified"
	MsgAdjustFailed   = "Unable to modify appointment"
	MsgListEmpty      = "You do not have any appointments"
	MsgListFailed     = "Unable to retrieve appointments"

	MsgInvalidInterval = "Unable to schedule the appointment as it ends before it starts"
)

// Result is what a mutating tool reports back. Message is the text handed to
// the language model; Outcome lets callers tell a refusal from a failure.
type Result struct {
	Tool        string
	Outcome     Outcome
	Message     string
	Appointment *entity.Appointment
}

func (r Result) Text() string {
	return r.Message
}

type ListStatus string

const (
	ListOK     ListStatus = "ok"
	ListEmpty  ListStatus = "empty"
	ListFailed ListStatus = "failed"
)

// ListResult keeps the empty and failed states apart from the records.
type ListResult struct {
	Status       ListStatus
	Appointments []*entity.Appointment
	Reason       string
}

func (l ListResult) Outcome() Outcome {
	switch l.Status {
	case ListOK:
		return OutcomeListed
	case ListEmpty:
		return OutcomeEmpty
	default:
		return OutcomeFailed
	}
}

// Text renders the records as a JSON array, or the sentence that stands in
// for an empty calendar or a failed read.
func (l ListResult) Text() string {
	switch l.Status {
	case ListEmpty:
		return MsgListEmpty
	case ListFailed:
		return MsgListFailed
	}

	b, err := json.Marshal(l.Appointments)
	if err != nil {
		return MsgListFailed
	}
	return string(b)
}
