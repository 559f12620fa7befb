package tools

import (
	"calendarbot/cmd/internal/domain/entity"
	"context"
)

// AppointmentStore is the persistence the tools depend on.
type AppointmentStore interface {
	Insert(ctx context.Context, appt *entity.Appointment) (int, error)
	Get(ctx context.Context, id int) (*entity.Appointment, error)
	Update(ctx context.Context, id int, fields entity.AppointmentFields) (bool, error)
	ListAll(ctx context.Context) ([]*entity.Appointment, error)
	FindOverlapping(ctx context.Context, date, start, end string, excludeID int) ([]*entity.Appointment, error)
}

// Store is an AppointmentStore that can scope a unit of work to one
// acquired session. The session is released whether fn returns, fails or panics.
type Store interface {
	AppointmentStore
	WithSession(ctx context.Context, fn func(store AppointmentStore) error) error
}
