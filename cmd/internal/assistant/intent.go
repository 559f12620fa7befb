package assistant

import "strings"

type Intent string

const (
	IntentCreate Intent = "create_appointment"
	IntentModify Intent = "modify_appointment"
	IntentReturn Intent = "return_appointment"
	IntentOther  Intent = "other"
)

// routed lists the intents that lead to a tool, in the order they are tried.
var routed = []Intent{IntentCreate, IntentModify, IntentReturn}

var labels = []Intent{IntentCreate, IntentModify, IntentReturn, IntentOther}

// ParseIntent maps raw classifier output to an Intent. An exact label wins.
// Otherwise the first label contained in the output, in routed order,
// decides; anything else is IntentOther.
func ParseIntent(raw string) Intent {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.Trim(norm, "`'\".,:;!? \t\n")

	for _, in := range labels {
		if norm == string(in) {
			return in
		}
	}
	for _, in := range routed {
		if strings.Contains(norm, string(in)) {
			return in
		}
	}
	return IntentOther
}
