package repository

import (
	"calendarbot/cmd/internal/domain/entity"
	"calendarbot/cmd/internal/tools"
	"calendarbot/cmd/internal/utils"
	"context"
	"errors"

	"gorm.io/gorm"
)

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

// WithSession runs fn inside a transaction. The connection taken from the
// pool is returned on every exit path, panics included.
func (a *DefaultAppointmentRepository) WithSession(ctx context.Context, fn func(store tools.AppointmentStore) error) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DefaultAppointmentRepository{db: tx})
	})
}

func (a *DefaultAppointmentRepository) Insert(ctx context.Context, appt *entity.Appointment) (int, error) {
	now := utils.NowUTC()
	appt.ID = 0
	appt.CreatedAt = now
	appt.UpdatedAt = now

	err := a.db.WithContext(ctx).Create(appt).Error
	if err != nil {
		return 0, err
	}
	return appt.ID, nil
}

func (a *DefaultAppointmentRepository) Get(ctx context.Context, id int) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.WithContext(ctx).First(&appt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Update replaces all four mutable fields in a single statement.
func (a *DefaultAppointmentRepository) Update(ctx context.Context, id int, fields entity.AppointmentFields) (bool, error) {
	res := a.db.WithContext(ctx).
		Model(&entity.Appointment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"date":        fields.Date,
			"start_time":  fields.Start,
			"end_time":    fields.End,
			"description": fields.Description,
			"updated_at":  utils.NowUTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (a *DefaultAppointmentRepository) ListAll(ctx context.Context) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.WithContext(ctx).
		Order("date asc").
		Order("start_time asc").
		Order("id asc").
		Find(&appts).Error
	return appts, err
}

// FindOverlapping returns the appointments on date whose [start, end)
// interval intersects the given one. A zero length interval overlaps the
// appointments running at that instant. excludeID skips the record being
// moved; pass 0 to consider every record.
func (a *DefaultAppointmentRepository) FindOverlapping(ctx context.Context, date, start, end string, excludeID int) ([]*entity.Appointment, error) {
	if end < start {
		return nil, errors.New("start time must not be after end time")
	}

	q := a.db.WithContext(ctx).
		Where("date = ?", date).
		Where("id <> ?", excludeID)
	if start == end {
		q = q.Where("start_time <= ?", start).Where("end_time > ?", start)
	} else {
		q = q.Where("start_time < ?", end).Where("end_time > ?", start)
	}

	var appts []*entity.Appointment
	err := q.Order("start_time asc").Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

// FindMonthAppointments finds all appointments dated within [monthStart, monthEnd).
// Both bounds are YYYY-MM-DD strings.
func (a *DefaultAppointmentRepository) FindMonthAppointments(ctx context.Context, monthStart, monthEnd string) ([]*entity.Appointment, error) {
	var results []*entity.Appointment

	err := a.db.WithContext(ctx).
		Where("date >= ?", monthStart).
		Where("date < ?", monthEnd).
		Order("date asc").
		Order("start_time asc").
		Find(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}
