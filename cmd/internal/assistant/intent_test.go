package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		raw  string
		want Intent
	}{
		{raw: "create_appointment", want: IntentCreate},
		{raw: "  Modify_Appointment\n", want: IntentModify},
		{raw: "`return_appointment`", want: IntentReturn},
		{raw: "other", want: IntentOther},
		{raw: "\"other\".", want: IntentOther},
		{raw: "The intent is return_appointment", want: IntentReturn},
		{raw: "modify_appointment or create_appointment", want: IntentCreate},
		{raw: "return_appointment, modify_appointment", want: IntentModify},
		{raw: "create", want: IntentOther},
		{raw: "", want: IntentOther},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIntent(tt.raw))
		})
	}
}
