package entity

// Appointment is a calendar entry. Date is stored as YYYY-MM-DD, Start and
// End as zero padded HH:MM, so string comparison orders them correctly.
type Appointment struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Date        string `gorm:"not null;index" json:"date"`
	Start       string `gorm:"column:start_time;not null" json:"start"`
	End         string `gorm:"column:end_time;not null" json:"end"`
	Description string `gorm:"not null" json:"description"`
	CreatedAt   int64  `gorm:"not null" json:"-"`
	UpdatedAt   int64  `gorm:"not null" json:"-"`
}

// AppointmentFields are the mutable fields of an appointment.
// An adjust replaces all of them at once, never a subset.
type AppointmentFields struct {
	Date        string
	Start       string
	End         string
	Description string
}

func (a *Appointment) Fields() AppointmentFields {
	return AppointmentFields{Date: a.Date, Start: a.Start, End: a.End, Description: a.Description}
}

func (a *Appointment) Apply(f AppointmentFields) {
	a.Date = f.Date
	a.Start = f.Start
	a.End = f.End
	a.Description = f.Description
}

// Overlaps reports whether a shares time with [start, end) on date.
// A zero length interval overlaps the appointments running at that instant.
func (a *Appointment) Overlaps(date, start, end string) bool {
	if a.Date != date {
		return false
	}
	if start == end {
		return a.Start <= start && a.End > start
	}
	return a.Start < end && a.End > start
}
