package validators

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Date        *string `json:"date" validate:"required,isodate"`
	Start       string  `json:"start" validate:"required,clock"`
	Description string  `json:"description" validate:"notblank"`
}

func ptr(s string) *string { return &s }

func TestValidators(t *testing.T) {
	validate := New()

	tests := []struct {
		name   string
		in     sample
		fields []string
	}{
		{name: "valid", in: sample{Date: ptr("2024-06-05"), Start: "9:00", Description: "dentist"}},
		{name: "bad date", in: sample{Date: ptr("2024-02-30"), Start: "09:00", Description: "x"}, fields: []string{"date"}},
		{name: "missing date", in: sample{Start: "09:00", Description: "x"}, fields: []string{"date"}},
		{name: "bad clock", in: sample{Date: ptr("2024-06-05"), Start: "25:00", Description: "x"}, fields: []string{"start"}},
		{name: "blank", in: sample{Date: ptr("2024-06-05"), Start: "10:00", Description: "   "}, fields: []string{"description"}},
		{name: "blank with separators", in: sample{Date: ptr("2024-06-05"), Start: "10:00", Description: "\t\x1c\n"}, fields: []string{"description"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.in)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			var got []string
			for _, fe := range verrs {
				got = append(got, fe.Field())
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}
