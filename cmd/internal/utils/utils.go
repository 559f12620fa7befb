package utils

import (
	"reflect"
	"strings"
	"time"
)

const (
	DateLayout        = "2006-01-02"
	ClockLayout       = "15:04"
	MonthLayout       = "2006-01"
	DisplayDateLayout = "January 02, 2006"
)

func FormatEpoch(millis int64) string {
	return time.UnixMilli(millis).
		UTC().
		Format(time.RFC3339)
}

func NowUTC() int64 {
	return time.Now().
		UTC().
		UnixMilli()
}

// DisplayDate renders t the way prompts present today's date, e.g. "June 05, 2024".
func DisplayDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}

func ISODate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate accepts a real calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// NormalizeClock parses a 24h time of day and returns it zero padded,
// so "9:05" becomes "09:05".
func NormalizeClock(s string) (string, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return t.Format(ClockLayout), nil
}

// MonthBounds takes "YYYY-MM" (e.g., "2025-08") and returns the first day of
// that month and the first day of the next one as YYYY-MM-DD.
func MonthBounds(month string) (string, string, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return "", "", err
	}
	return ISODate(t), ISODate(t.AddDate(0, 1, 0)), nil
}

func Sanitize(o any) {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic("sanitize: expected pointer to struct")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		panic("sanitize: expected struct")
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		switch field.Kind() {
		case reflect.String:
			field.SetString(sanitizeString(field.String()))

		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.String {
				field.Elem().SetString(sanitizeString(field.Elem().String()))
			}

		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				for j := 0; j < field.Len(); j++ {
					field.Index(j).SetString(sanitizeString(field.Index(j).String()))
				}
			}
		}
	}
}

func sanitizeString(s string) string {
	return strings.TrimSpace(s)
}
