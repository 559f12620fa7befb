package routes

import (
	"calendarbot/cmd/internal/utils"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Router struct {
	Appointments *DefaultAppointmentRoute
	Chat         *DefaultChatRoute
	Signer       *utils.SessionSigner
	Metrics      http.Handler
}

// Register mounts every endpoint on e.
func (r *Router) Register(e *echo.Echo) {
	session := utils.SessionMiddleware(r.Signer, SessionError)

	// Chat, scoped by the caller's session token
	e.POST("/api/chat", r.Chat.Chat, session)
	e.GET("/api/chat/history", r.Chat.GetHistory, session)
	e.DELETE("/api/chat/history", r.Chat.ClearHistory, session)

	// Appointments
	e.GET("/api/appointments", r.Appointments.GetAppointments)
	e.POST("/api/appointments", r.Appointments.CreateAppointment)
	e.PUT("/api/appointments/:id", r.Appointments.AdjustAppointment)

	// Pseudo-entity "Calendar" listing the booked slots of a month
	e.GET("/api/calendar", r.Appointments.GetCalendar)

	if r.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(r.Metrics))
	}
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
}
