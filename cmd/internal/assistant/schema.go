package assistant

import (
	"calendarbot/cmd/internal/integration/llm"
	"encoding/json"
	"strings"
)

var CreateSchema = &llm.Schema{
	Name: "Appointment_create",
	Fields: []llm.SchemaField{
		{Name: "overlap", Type: "boolean", Description: "Does the new appointment overlap with existing appointments", Required: true},
		{Name: "date", Type: "string", Description: "Date of the appointment in YYYY-MM-DD", Required: true},
		{Name: "start", Type: "string", Description: "Start time of the appointment in HH:MM", Required: true},
		{Name: "end", Type: "string", Description: "End of the appointment in HH:MM", Required: true},
		{Name: "description", Type: "string", Description: "Description of the appointment", Required: true},
	},
}

var AdjustSchema = &llm.Schema{
	Name: "Appointment_adjust",
	Fields: []llm.SchemaField{
		{Name: "overlap", Type: "boolean", Description: "Does the new appointment time overlap with existing appointments", Required: true},
		{Name: "id", Type: "integer", Description: "Id of the appointment you want to adjust.", Required: true},
		{Name: "date", Type: "string", Description: "Date of the appointment in YYYY-MM-DD", Required: true},
		{Name: "start", Type: "string", Description: "Start time of the appointment in HH:MM", Required: true},
		{Name: "end", Type: "string", Description: "End of the appointment in HH:MM", Required: true},
		{Name: "description", Type: "string", Description: "Description of the appointment", Required: true},
	},
}

// FormatInstructions renders schema as a JSON schema document the model is
// told to conform to. Properties keep their declared order.
func FormatInstructions(schema *llm.Schema) string {
	var props strings.Builder
	var required []string
	props.WriteString("{")
	for i, f := range schema.Fields {
		if i > 0 {
			props.WriteString(", ")
		}
		name, _ := json.Marshal(f.Name)
		body, _ := json.Marshal(map[string]string{"description": f.Description, "type": f.Type})
		props.Write(name)
		props.WriteString(": ")
		props.Write(body)
		if f.Required {
			required = append(required, f.Name)
		}
	}
	props.WriteString("}")

	req, _ := json.Marshal(required)
	return "The output should be formatted as a JSON instance that conforms to the JSON schema below.\n\n" +
		`{"title": "` + schema.Name + `", "type": "object", "properties": ` + props.String() +
		`, "required": ` + string(req) + `}`
}
