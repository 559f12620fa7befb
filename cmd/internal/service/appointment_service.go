package service

import (
	"calendarbot/cmd/internal/domain/entity"
	"calendarbot/cmd/internal/tools"
	"calendarbot/cmd/internal/utils"
	"calendarbot/cmd/internal/utils/apierror"
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type CalendarRepository interface {
	FindMonthAppointments(ctx context.Context, monthStart, monthEnd string) ([]*entity.Appointment, error)
}

type AppointmentRequest struct {
	Date        string `json:"date" validate:"required,isodate"`
	Start       string `json:"start" validate:"required,clock"`
	End         string `json:"end" validate:"required,clock"`
	Description string `json:"description" validate:"required,notblank,max=512"`
}

type AppointmentResponse struct {
	ID          int    `json:"id"`
	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

type AppointmentListResponse struct {
	Status       tools.ListStatus       `json:"status"`
	Appointments []*AppointmentResponse `json:"appointments"`
	Message      string                 `json:"message,omitempty"`
}

type ScheduledDay struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type CalendarResponse struct {
	ScheduledDays []*ScheduledDay `json:"scheduled_days"`
}

// DefaultAppointmentService serves structured requests. Nobody states an
// overlap flag here, so its toolbox asks the store.
type DefaultAppointmentService struct {
	Tools        *tools.Toolbox
	CalendarRepo CalendarRepository
	Validate     *validator.Validate
}

func NewAppointmentService(store tools.Store, calendarRepo CalendarRepository, validate *validator.Validate, recorder tools.Recorder) *DefaultAppointmentService {
	return &DefaultAppointmentService{
		Tools:        tools.NewToolbox(store, tools.OverlapFromStore, recorder),
		CalendarRepo: calendarRepo,
		Validate:     validate,
	}
}

func (a *DefaultAppointmentService) GetAppointments(ctx context.Context) (*AppointmentListResponse, apierror.ErrorResponse) {
	list := a.Tools.List(ctx)
	if list.Status == tools.ListFailed {
		return nil, apierror.NewSimple(http.StatusInternalServerError, tools.MsgListFailed)
	}

	resp := &AppointmentListResponse{
		Status:       list.Status,
		Appointments: make([]*AppointmentResponse, len(list.Appointments)),
	}
	if list.Status == tools.ListEmpty {
		resp.Message = tools.MsgListEmpty
	}
	for i, appt := range list.Appointments {
		resp.Appointments[i] = toAppointmentResponse(appt)
	}
	return resp, nil
}

func (a *DefaultAppointmentService) CreateAppointment(ctx context.Context, req *AppointmentRequest) (*AppointmentResponse, apierror.ErrorResponse) {
	if apierr := a.check(req); apierr != nil {
		return nil, apierr
	}

	res := a.Tools.Create(ctx, tools.CreateRequest{
		Date:        req.Date,
		Start:       req.Start,
		End:         req.End,
		Description: req.Description,
	})
	return fromResult(res)
}

func (a *DefaultAppointmentService) AdjustAppointment(ctx context.Context, id int, req *AppointmentRequest) (*AppointmentResponse, apierror.ErrorResponse) {
	if apierr := a.check(req); apierr != nil {
		return nil, apierr
	}

	res := a.Tools.Adjust(ctx, tools.AdjustRequest{
		ID:          id,
		Date:        req.Date,
		Start:       req.Start,
		End:         req.End,
		Description: req.Description,
	})
	return fromResult(res)
}

func (a *DefaultAppointmentService) GetCalendar(ctx context.Context, monthStart, monthEnd string) (*CalendarResponse, apierror.ErrorResponse) {
	appts, err := a.CalendarRepo.FindMonthAppointments(ctx, monthStart, monthEnd)
	if err != nil {
		log.Errorf("failed to fetch appointments [%s - %s]: %v", monthStart, monthEnd, err)
		return nil, apierror.InternalServerError
	}

	schedDays := make([]*ScheduledDay, len(appts))
	for i, appt := range appts {
		schedDays[i] = &ScheduledDay{Date: appt.Date, Start: appt.Start, End: appt.End}
	}
	return &CalendarResponse{ScheduledDays: schedDays}, nil
}

// check validates req and normalizes its times to HH:MM.
func (a *DefaultAppointmentService) check(req *AppointmentRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if valerr := a.Validate.Struct(req); valerr != nil {
		return apierror.FromValidationError(valerr)
	}

	req.Start, _ = utils.NormalizeClock(req.Start)
	req.End, _ = utils.NormalizeClock(req.End)
	if req.End < req.Start {
		return apierror.NewSimple(http.StatusBadRequest, "End time must not be before start time")
	}
	return nil
}

func fromResult(res tools.Result) (*AppointmentResponse, apierror.ErrorResponse) {
	switch res.Outcome {
	case tools.OutcomeCreated, tools.OutcomeAdjusted:
		return toAppointmentResponse(res.Appointment), nil
	case tools.OutcomeRejected:
		return nil, apierror.OverlapError
	case tools.OutcomeNotFound:
		return nil, apierror.NotFoundError
	case tools.OutcomeInvalid:
		return nil, apierror.NewSimple(http.StatusBadRequest, res.Message)
	}
	return nil, apierror.NewSimple(http.StatusInternalServerError, res.Message)
}

func toAppointmentResponse(appt *entity.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:          appt.ID,
		Date:        appt.Date,
		Start:       appt.Start,
		End:         appt.End,
		Description: appt.Description,
	}
	if appt.CreatedAt > 0 {
		resp.CreatedAt = utils.FormatEpoch(appt.CreatedAt)
	}
	if appt.UpdatedAt > 0 {
		resp.UpdatedAt = utils.FormatEpoch(appt.UpdatedAt)
	}
	return resp
}
