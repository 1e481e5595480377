package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oks-citadel/applyflow/internal/core"
)

func testProfile() *core.CandidateProfile {
	return &core.CandidateProfile{
		Ref:               "profile-1",
		FirstName:         "Ada",
		LastName:          "Lovelace",
		FullName:          "Ada Lovelace",
		Email:             "ada@example.com",
		Phone:             "+44 20 7946 0958",
		Location:          "London",
		LinkedInURL:       "https://linkedin.com/in/ada",
		ResumeFileRef:     "files/ada-resume.pdf",
		YearsExperience:   "12",
		WorkAuthorization: "UK citizen",
	}
}

func TestMapperMapAssignments(t *testing.T) {
	m := New(DefaultFloor)
	profile := testProfile()

	tests := []struct {
		name           string
		descriptor     core.FormFieldDescriptor
		wantAttribute  string
		wantValue      string
		wantConfidence float64
	}{
		{
			name:           "Exact attribute name",
			descriptor:     core.FormFieldDescriptor{FieldID: "f1", Label: "First Name", InputKind: core.InputText},
			wantAttribute:  "first_name",
			wantValue:      "Ada",
			wantConfidence: scoreExact,
		},
		{
			name:           "Synonym table match",
			descriptor:     core.FormFieldDescriptor{FieldID: "f2", Label: "E-mail Address:*", InputKind: core.InputEmail},
			wantAttribute:  "email",
			wantValue:      "ada@example.com",
			wantConfidence: scoreSynonym,
		},
		{
			name:           "Phone synonym",
			descriptor:     core.FormFieldDescriptor{FieldID: "f3", Label: "Mobile Number", InputKind: core.InputPhone},
			wantAttribute:  "phone",
			wantValue:      "+44 20 7946 0958",
			wantConfidence: scoreSynonym,
		},
		{
			name:           "File input binds resume",
			descriptor:     core.FormFieldDescriptor{FieldID: "f4", Label: "Upload Resume", InputKind: core.InputFile},
			wantAttribute:  "resume_file",
			wantValue:      "files/ada-resume.pdf",
			wantConfidence: scoreSynonym,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assignments, err := m.Map([]core.FormFieldDescriptor{tc.descriptor}, profile)
			require.NoError(t, err)
			require.Len(t, assignments, 1)
			got := assignments[0]
			assert.Equal(t, tc.descriptor.FieldID, got.FieldID)
			assert.Equal(t, tc.wantAttribute, got.SourceAttribute)
			assert.Equal(t, tc.wantValue, got.AssignedValue)
			assert.InDelta(t, tc.wantConfidence, got.Confidence, 1e-9)
		})
	}
}

func TestMapperRequiredFieldBelowFloorAborts(t *testing.T) {
	m := New(DefaultFloor)
	profile := testProfile()

	// "experience level" only partially overlaps the attribute tokens, so the
	// best score lands below the floor.
	descriptors := []core.FormFieldDescriptor{
		{FieldID: "f1", Label: "First Name", InputKind: core.InputText, IsRequired: true},
		{FieldID: "f2", Label: "Desired compensation experience", InputKind: core.InputText, IsRequired: true},
	}

	assignments, err := m.Map(descriptors, profile)
	assert.Nil(t, assignments)

	var mapErr *core.MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, "f2", mapErr.FieldID)
	assert.False(t, mapErr.AttributeMissing, "a weak match is retryable, not a missing attribute")
}

func TestMapperRequiredFieldMissingAttributeIsTerminal(t *testing.T) {
	m := New(DefaultFloor)
	profile := testProfile()
	profile.CoverLetterRef = ""

	descriptors := []core.FormFieldDescriptor{
		{FieldID: "f1", Label: "Cover Letter", InputKind: core.InputFile, IsRequired: true},
	}

	_, err := m.Map(descriptors, profile)
	var mapErr *core.MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.True(t, mapErr.AttributeMissing)
	assert.False(t, core.Retryable(err), "a genuinely missing attribute must not burn retries")
}

func TestMapperOptionalFieldBelowFloorIsSkipped(t *testing.T) {
	m := New(DefaultFloor)
	profile := testProfile()

	descriptors := []core.FormFieldDescriptor{
		{FieldID: "f1", Label: "First Name", InputKind: core.InputText, IsRequired: true},
		{FieldID: "f2", Label: "Favourite colour", InputKind: core.InputText},
	}

	assignments, err := m.Map(descriptors, profile)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "f1", assignments[0].FieldID)
}

func TestMapperKindGates(t *testing.T) {
	m := New(DefaultFloor)
	profile := testProfile()

	tests := []struct {
		name       string
		descriptor core.FormFieldDescriptor
	}{
		{
			// A text field labeled "resume" must never receive the file ref.
			name:       "Text field cannot take a file attribute",
			descriptor: core.FormFieldDescriptor{FieldID: "f1", Label: "Resume", InputKind: core.InputText},
		},
		{
			// A file field labeled like a name has no compatible attribute.
			name:       "File field cannot take a plain string",
			descriptor: core.FormFieldDescriptor{FieldID: "f2", Label: "First Name", InputKind: core.InputFile},
		},
		{
			name:       "Email field only binds the email attribute",
			descriptor: core.FormFieldDescriptor{FieldID: "f3", Label: "First Name", InputKind: core.InputEmail},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assignments, err := m.Map([]core.FormFieldDescriptor{tc.descriptor}, profile)
			require.NoError(t, err)
			assert.Empty(t, assignments)
		})
	}
}

func TestMapperAmbiguousTieFailsRequiredField(t *testing.T) {
	m := New(DefaultFloor)
	profile := &core.CandidateProfile{
		Ref: "profile-1",
		Extra: map[string]string{
			"reference one": "a",
			"reference two": "b",
		},
	}

	// Both extras overlap the label equally, so the top score is a tie
	// between two distinct attributes.
	descriptors := []core.FormFieldDescriptor{
		{FieldID: "f1", Label: "reference one two", InputKind: core.InputText, IsRequired: true},
	}

	_, err := m.Map(descriptors, profile)
	var mapErr *core.MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.False(t, mapErr.AttributeMissing)
}

func TestMapperSelectOptionsDampenMismatches(t *testing.T) {
	m := New(DefaultFloor)
	profile := testProfile()

	descriptors := []core.FormFieldDescriptor{
		{
			FieldID:         "f1",
			Label:           "Work Authorization",
			InputKind:       core.InputSelect,
			IsRequired:      true,
			CandidateValues: []string{"Yes", "No"},
		},
	}

	// The profile value "UK citizen" matches no option, halving the score
	// below the floor, so the required field aborts the mapping.
	_, err := m.Map(descriptors, profile)
	var mapErr *core.MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.False(t, mapErr.AttributeMissing)
}

func TestMapperStrictRaisesFloor(t *testing.T) {
	m := New(DefaultFloor)
	strict := m.Strict()

	assert.InDelta(t, DefaultFloor+0.15, strict.Floor(), 1e-9)
	assert.InDelta(t, DefaultFloor, m.Floor(), 1e-9, "Strict must not mutate the original")

	// A synonym match at 0.9 passes the default floor but fails a 0.95 one.
	nearlyCertain := New(0.94).Strict()
	profile := testProfile()
	descriptors := []core.FormFieldDescriptor{
		{FieldID: "f1", Label: "Mobile Number", InputKind: core.InputPhone, IsRequired: true},
	}

	_, err := nearlyCertain.Map(descriptors, profile)
	var mapErr *core.MappingError
	require.ErrorAs(t, err, &mapErr)

	assignments, err := m.Map(descriptors, profile)
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
}

func TestNewClampsFloor(t *testing.T) {
	assert.InDelta(t, DefaultFloor, New(0).Floor(), 1e-9)
	assert.InDelta(t, DefaultFloor, New(1.5).Floor(), 1e-9)
	assert.InDelta(t, 0.5, New(0.5).Floor(), 1e-9)
}
