package memory

import (
	"calendarbot/cmd/internal/domain/entity"
	"calendarbot/cmd/internal/tools"
	"calendarbot/cmd/internal/utils"
	"context"
	"errors"
	"sort"
	"sync"
)

// AppointmentStore keeps appointments in process memory. Ids start at 1 and
// are never reused.
type AppointmentStore struct {
	mu     sync.Mutex
	nextID int
	appts  map[int]*entity.Appointment
}

func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{nextID: 1, appts: make(map[int]*entity.Appointment)}
}

// WithSession holds the store lock for the duration of fn.
func (s *AppointmentStore) WithSession(_ context.Context, fn func(store tools.AppointmentStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(locked{s})
}

func (s *AppointmentStore) Insert(ctx context.Context, appt *entity.Appointment) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return locked{s}.Insert(ctx, appt)
}

func (s *AppointmentStore) Get(ctx context.Context, id int) (*entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return locked{s}.Get(ctx, id)
}

func (s *AppointmentStore) Update(ctx context.Context, id int, fields entity.AppointmentFields) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return locked{s}.Update(ctx, id, fields)
}

func (s *AppointmentStore) ListAll(ctx context.Context) ([]*entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return locked{s}.ListAll(ctx)
}

func (s *AppointmentStore) FindOverlapping(ctx context.Context, date, start, end string, excludeID int) ([]*entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return locked{s}.FindOverlapping(ctx, date, start, end, excludeID)
}

func (s *AppointmentStore) FindMonthAppointments(_ context.Context, monthStart, monthEnd string) ([]*entity.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entity.Appointment
	for _, a := range s.sorted() {
		if a.Date >= monthStart && a.Date < monthEnd {
			out = append(out, a)
		}
	}
	return out, nil
}

// sorted returns copies ordered by date, start and id. Callers hold mu.
func (s *AppointmentStore) sorted() []*entity.Appointment {
	out := make([]*entity.Appointment, 0, len(s.appts))
	for _, a := range s.appts {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// locked implements tools.AppointmentStore for a caller that already holds mu.
type locked struct {
	s *AppointmentStore
}

func (l locked) Insert(_ context.Context, appt *entity.Appointment) (int, error) {
	now := utils.NowUTC()
	appt.ID = l.s.nextID
	appt.CreatedAt = now
	appt.UpdatedAt = now
	l.s.nextID++

	cp := *appt
	l.s.appts[cp.ID] = &cp
	return cp.ID, nil
}

func (l locked) Get(_ context.Context, id int) (*entity.Appointment, error) {
	a, ok := l.s.appts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (l locked) Update(_ context.Context, id int, fields entity.AppointmentFields) (bool, error) {
	a, ok := l.s.appts[id]
	if !ok {
		return false, nil
	}
	cp := *a
	cp.Apply(fields)
	cp.UpdatedAt = utils.NowUTC()
	l.s.appts[id] = &cp
	return true, nil
}

func (l locked) ListAll(_ context.Context) ([]*entity.Appointment, error) {
	return l.s.sorted(), nil
}

func (l locked) FindOverlapping(_ context.Context, date, start, end string, excludeID int) ([]*entity.Appointment, error) {
	if end < start {
		return nil, errors.New("start time must not be after end time")
	}
	var out []*entity.Appointment
	for _, a := range l.s.sorted() {
		if a.ID != excludeID && a.Overlaps(date, start, end) {
			out = append(out, a)
		}
	}
	return out, nil
}
