package mcp

import (
	"calendarbot/cmd/internal/tools"
	"calendarbot/cmd/internal/utils"
	"context"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

type createArgs struct {
	Date        string `json:"date" validate:"required,isodate"`
	Start       string `json:"start" validate:"required,clock"`
	End         string `json:"end" validate:"required,clock"`
	Description string `json:"description" validate:"required,notblank"`
}

func (a *createArgs) normalize() {
	a.Start, _ = utils.NormalizeClock(a.Start)
	a.End, _ = utils.NormalizeClock(a.End)
}

type adjustArgs struct {
	ID int `json:"id" validate:"required,gt=0"`
	createArgs
}

// NewServer returns an MCP server exposing the calendar tools.
func NewServer(version string, toolbox *tools.Toolbox, validate *validator.Validate) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("calendarbot", version,
		mcpserver.WithToolCapabilities(true),
	)
	RegisterCalendarTools(s, toolbox, validate)
	return s
}

// RegisterCalendarTools registers create_appointment, adjust_appointment and
// list_appointments.
func RegisterCalendarTools(s *mcpserver.MCPServer, toolbox *tools.Toolbox, validate *validator.Validate) {
	h := &handlers{tools: toolbox, validate: validate}

	createTool := mcp.NewTool(tools.ToolCreate,
		mcp.WithDescription("Creates an appointment in the user's calendar on the specified date, starting and ending at the specified start and end respectively."),
		mcp.WithBoolean("overlap",
			mcp.Required(),
			mcp.Description("Does the new appointment overlap with existing appointments"),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date of the appointment in YYYY-MM-DD"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time of the appointment in HH:MM"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End of the appointment in HH:MM"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Description of the appointment"),
		),
	)
	s.AddTool(createTool, h.create)

	adjustTool := mcp.NewTool(tools.ToolAdjust,
		mcp.WithDescription("Given an appointment id, adjusts the appointment to the given date, start, end and description. Every field is replaced."),
		mcp.WithBoolean("overlap",
			mcp.Required(),
			mcp.Description("Does the new appointment time overlap with existing appointments"),
		),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("Id of the appointment you want to adjust (see list_appointments)"),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date of the appointment in YYYY-MM-DD"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time of the appointment in HH:MM"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End of the appointment in HH:MM"),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Description of the appointment"),
		),
	)
	s.AddTool(adjustTool, h.adjust)

	listTool := mcp.NewTool(tools.ToolList,
		mcp.WithDescription("Return all appointments in the user's calendar."),
	)
	s.AddTool(listTool, h.list)
}

type handlers struct {
	tools    *tools.Toolbox
	validate *validator.Validate
}

func (h *handlers) create(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	overlap, ok := args["overlap"].(bool)
	if !ok {
		return mcp.NewToolResultError("overlap must be a boolean"), nil
	}
	in := stringArgs(args)
	if errResult := h.check(&in); errResult != nil {
		return errResult, nil
	}

	res := h.tools.Create(ctx, tools.CreateRequest{
		Overlap:     overlap,
		Date:        in.Date,
		Start:       in.Start,
		End:         in.End,
		Description: in.Description,
	})
	return toolResult(res), nil
}

func (h *handlers) adjust(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	overlap, ok := args["overlap"].(bool)
	if !ok {
		return mcp.NewToolResultError("overlap must be a boolean"), nil
	}
	id, err := intArg(args, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := adjustArgs{ID: id, createArgs: stringArgs(args)}
	if err := h.validate.Struct(&in); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	in.normalize()

	res := h.tools.Adjust(ctx, tools.AdjustRequest{
		Overlap:     overlap,
		ID:          in.ID,
		Date:        in.Date,
		Start:       in.Start,
		End:         in.End,
		Description: in.Description,
	})
	return toolResult(res), nil
}

func (h *handlers) list(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := h.tools.List(ctx)
	if list.Status == tools.ListFailed {
		return mcp.NewToolResultError(list.Text()), nil
	}
	return mcp.NewToolResultText(list.Text()), nil
}

func (h *handlers) check(in *createArgs) *mcp.CallToolResult {
	if err := h.validate.Struct(in); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err))
	}
	in.normalize()
	return nil
}

func stringArgs(args map[string]any) createArgs {
	get := func(key string) string {
		s, _ := args[key].(string)
		return s
	}
	return createArgs{
		Date:        get("date"),
		Start:       get("start"),
		End:         get("end"),
		Description: get("description"),
	}
}

// intArg reads a whole number. JSON numbers arrive as float64.
func intArg(args map[string]any, key string) (int, error) {
	switch v := args[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}
		return int(v), nil
	case int:
		return v, nil
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	}
	return 0, fmt.Errorf("%s must be a number", key)
}

func toolResult(res tools.Result) *mcp.CallToolResult {
	if res.Outcome == tools.OutcomeFailed {
		return mcp.NewToolResultError(res.Text())
	}
	return mcp.NewToolResultText(res.Text())
}
