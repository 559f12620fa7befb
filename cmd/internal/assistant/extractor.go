package assistant

import (
	"calendarbot/cmd/internal/domain/entity"
	"calendarbot/cmd/internal/history"
	"calendarbot/cmd/internal/integration/llm"
	"calendarbot/cmd/internal/tools"
	"calendarbot/cmd/internal/utils"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ExtractionError is returned when the model answer does not decode into the
// requested schema. It carries the raw answer for logging.
type ExtractionError struct {
	Schema   string
	Raw      string
	Problems []string
	Err      error
}

func (e *ExtractionError) Error() string {
	if len(e.Problems) > 0 {
		return fmt.Sprintf("invalid %s: %s", e.Schema, strings.Join(e.Problems, "; "))
	}
	return fmt.Sprintf("invalid %s: %v", e.Schema, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ExtractInput is what an extraction sees besides the schema.
type ExtractInput struct {
	Text     string
	History  []history.Turn
	Today    time.Time
	Snapshot tools.ListResult
}

type createPayload struct {
	Overlap     *bool   `json:"overlap" validate:"required"`
	Date        *string `json:"date" validate:"required,isodate"`
	Start       *string `json:"start" validate:"required,clock"`
	End         *string `json:"end" validate:"required,clock"`
	Description *string `json:"description" validate:"required,notblank"`
}

type adjustPayload struct {
	Overlap     *bool   `json:"overlap" validate:"required"`
	ID          *int    `json:"id" validate:"required,gt=0"`
	Date        *string `json:"date" validate:"required,isodate"`
	Start       *string `json:"start" validate:"required,clock"`
	End         *string `json:"end" validate:"required,clock"`
	Description *string `json:"description" validate:"required,notblank"`
}

type Extractor struct {
	model         llm.Completer
	validate      *validator.Validate
	snapshotLimit int
}

// NewExtractor builds an extractor. validate must have the calendar rules
// registered (see validators.New). snapshotLimit caps how many appointments
// are inlined into the prompt; zero or less inlines all of them.
func NewExtractor(model llm.Completer, validate *validator.Validate, snapshotLimit int) *Extractor {
	return &Extractor{model: model, validate: validate, snapshotLimit: snapshotLimit}
}

func (e *Extractor) ExtractCreate(ctx context.Context, in ExtractInput) (tools.CreateRequest, error) {
	var p createPayload
	if err := e.Extract(ctx, in, CreateSchema, "create", &p); err != nil {
		return tools.CreateRequest{}, err
	}
	start, end := normalizeClocks(*p.Start, *p.End)
	return tools.CreateRequest{
		Overlap:     *p.Overlap,
		Date:        *p.Date,
		Start:       start,
		End:         end,
		Description: strings.TrimSpace(*p.Description),
	}, nil
}

func (e *Extractor) ExtractAdjust(ctx context.Context, in ExtractInput) (tools.AdjustRequest, error) {
	var p adjustPayload
	if err := e.Extract(ctx, in, AdjustSchema, "adjust", &p); err != nil {
		return tools.AdjustRequest{}, err
	}
	start, end := normalizeClocks(*p.Start, *p.End)
	return tools.AdjustRequest{
		Overlap:     *p.Overlap,
		ID:          *p.ID,
		Date:        *p.Date,
		Start:       start,
		End:         end,
		Description: strings.TrimSpace(*p.Description),
	}, nil
}

// Extract prompts the model and decodes its answer into out, a pointer to a
// payload struct whose validate tags mirror schema. Model failures are
// returned wrapped; a bad answer is an *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, in ExtractInput, schema *llm.Schema, verb string, out any) error {
	snapshot := e.snapshotText(in.Snapshot, in.Today)
	prompt := extractPrompt(utils.DisplayDate(in.Today), snapshot, verb, schema, in.History, in.Text)

	raw, err := e.model.Complete(ctx, prompt)
	if err != nil {
		return fmt.Errorf("extract %s: %w", schema.Name, err)
	}
	return e.decode(schema.Name, raw, out)
}

func (e *Extractor) decode(schemaName, raw string, out any) error {
	body := jsonObject(raw)
	if body == "" {
		return &ExtractionError{Schema: schemaName, Raw: raw, Err: errors.New("no JSON object in model output")}
	}

	if err := json.Unmarshal([]byte(body), out); err != nil {
		xerr := &ExtractionError{Schema: schemaName, Raw: raw, Err: err}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			xerr.Problems = []string{fmt.Sprintf("%s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)}
		}
		return xerr
	}

	if err := e.validate.Struct(out); err != nil {
		xerr := &ExtractionError{Schema: schemaName, Raw: raw, Err: err}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				xerr.Problems = append(xerr.Problems, describe(fe))
			}
		}
		return xerr
	}
	return nil
}

// snapshotText renders the appointments handed to the model. Upcoming
// appointments come first in date order, then past ones, newest first.
// Past the limit the rest is only counted.
func (e *Extractor) snapshotText(list tools.ListResult, today time.Time) string {
	if list.Status != tools.ListOK {
		return list.Text()
	}

	cutoff := utils.ISODate(today)
	var upcoming, past []*entity.Appointment
	for _, a := range list.Appointments {
		if a.Date >= cutoff {
			upcoming = append(upcoming, a)
		} else {
			past = append(past, a)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return before(upcoming[i], upcoming[j]) })
	sort.SliceStable(past, func(i, j int) bool { return before(past[j], past[i]) })

	picked := append(upcoming, past...)
	omitted := 0
	if e.snapshotLimit > 0 && len(picked) > e.snapshotLimit {
		omitted = len(picked) - e.snapshotLimit
		picked = picked[:e.snapshotLimit]
	}

	text := tools.ListResult{Status: tools.ListOK, Appointments: picked}.Text()
	if omitted > 0 {
		text += fmt.Sprintf(" (%d more appointments not shown)", omitted)
	}
	return text
}

func before(a, b *entity.Appointment) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.ID < b.ID
}

// jsonObject pulls the JSON object out of a model answer that may be wrapped
// in a Markdown code fence or surrounded by prose.
func jsonObject(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.Contains(rest[:nl], "{") {
			rest = rest[nl+1:]
		}
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		s = strings.TrimSpace(rest)
	}

	open := strings.IndexByte(s, '{')
	closing := strings.LastIndexByte(s, '}')
	if open < 0 || closing < open {
		return ""
	}
	return s[open : closing+1]
}

func normalizeClocks(start, end string) (string, string) {
	// both already passed the clock rule
	s, _ := utils.NormalizeClock(start)
	e, _ := utils.NormalizeClock(end)
	return s, e
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + ": missing"
	case "isodate":
		return fe.Field() + ": must be a real date formatted YYYY-MM-DD"
	case "clock":
		return fe.Field() + ": must be a time formatted HH:MM"
	case "notblank":
		return fe.Field() + ": must not be blank"
	case "gt":
		return fe.Field() + ": must be greater than " + fe.Param()
	}
	return fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag())
}
