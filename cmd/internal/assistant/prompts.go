package assistant

import (
	"calendarbot/cmd/internal/history"
	"calendarbot/cmd/internal/integration/llm"
	"fmt"
)

const (
	stageClassify = "classify"
	stageExtract  = "extract"
	stageRespond  = "respond"
)

const classifySystem = "Today's Date is: %s\n\n" +
	"Given the user input, classify it as either being for `create_appointment`, `modify_appointment`, " +
	"`return_appointment`, or `other`. You're a helpful assistant.\n" +
	"Do not respond with more than one word."

const extractSystem = "Today's Date is: %s\nYou're a helpful assistant.\n\n" +
	"Given the existing appointments: %s.\n" +
	"Turn the following user input into a json request to %s an appointment on the user's calendar.\n\n" +
	"YOUR RESPONSE MUST BE A JSON OBJECT THAT FOLLOWS THIS FORMAT:\n%s."

const respondSystem = "Today's Date is: %s\n\n" +
	"You're a helpful and reliable assistant.\n\n" +
	"If provided, use the response from a calendar tool to provide a response to the human input: %s."

const outcomeHint = "\nThe calendar tool finished with outcome: %s."

// conversation lays out system, then history, then the new human message.
func conversation(system string, past []history.Turn, text string) []llm.Message {
	msgs := make([]llm.Message, 0, len(past)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, t := range past {
		role := llm.RoleUser
		if t.Role == history.RoleAI {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: text})
	return msgs
}

func classifyPrompt(today string, past []history.Turn, text string) *llm.Prompt {
	return &llm.Prompt{
		Stage:    stageClassify,
		Messages: conversation(fmt.Sprintf(classifySystem, today), past, text),
	}
}

func extractPrompt(today, snapshot, verb string, schema *llm.Schema, past []history.Turn, text string) *llm.Prompt {
	system := fmt.Sprintf(extractSystem, today, snapshot, verb, FormatInstructions(schema))
	return &llm.Prompt{
		Stage:    stageExtract,
		Messages: conversation(system, past, text),
		Schema:   schema,
	}
}

func respondPrompt(today string, d *Dispatch, past []history.Turn, text string) *llm.Prompt {
	system := fmt.Sprintf(respondSystem, today, d.ToolResponse)
	if d.Outcome != "" && d.Intent != IntentOther {
		system += fmt.Sprintf(outcomeHint, d.Outcome)
	}
	return &llm.Prompt{
		Stage:    stageRespond,
		Messages: conversation(system, past, text),
	}
}
