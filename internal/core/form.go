package core

// InputKind categorizes a form control as observed on the live page. The
// mapper uses it as a hard compatibility gate: a file input never receives a
// plain string attribute, and vice versa.
type InputKind string

const (
	InputText     InputKind = "text"
	InputEmail    InputKind = "email"
	InputPhone    InputKind = "phone"
	InputURL      InputKind = "url"
	InputSelect   InputKind = "select"
	InputCheckbox InputKind = "checkbox"
	InputTextarea InputKind = "textarea"
	InputFile     InputKind = "file"
	InputDate     InputKind = "date"
)

// FormFieldDescriptor describes one field of a discovered application form.
// Descriptors are ephemeral; they exist only within a single task execution.
type FormFieldDescriptor struct {
	FieldID         string    `json:"field_id"`
	Label           string    `json:"label"`
	InputKind       InputKind `json:"input_kind"`
	IsRequired      bool      `json:"is_required"`
	CandidateValues []string  `json:"candidate_values,omitempty"`
}

// FieldAssignment binds a profile attribute value to a form field with the
// mapper's confidence in that binding.
type FieldAssignment struct {
	FieldID         string  `json:"field_id"`
	AssignedValue   string  `json:"assigned_value"`
	Confidence      float64 `json:"confidence"`
	SourceAttribute string  `json:"source_attribute"`
}
