// Package mapper assigns candidate profile attributes to discovered form
// fields with a confidence score per assignment. It is pure: no I/O, no
// driver, so its behavior is exhaustively testable against fixture tables.
package mapper

import (
	"strings"

	"github.com/oks-citadel/applyflow/internal/core"
)

const (
	// DefaultFloor is the minimum confidence a required field's assignment
	// needs before submission is permitted.
	DefaultFloor = 0.7

	scoreExact   = 1.0
	scoreSynonym = 0.9
	scoreOverlap = 0.6
)

// Mapper scores field-to-attribute bindings against a confidence floor.
type Mapper struct {
	floor float64
}

// New creates a mapper with the given confidence floor. Out-of-range floors
// fall back to DefaultFloor.
func New(floor float64) *Mapper {
	if floor <= 0 || floor >= 1 {
		floor = DefaultFloor
	}
	return &Mapper{floor: floor}
}

// Floor returns the configured confidence floor.
func (m *Mapper) Floor() float64 { return m.floor }

// Strict returns a mapper with a raised floor, used for low-confidence
// strategies that warrant stricter validation before submission.
func (m *Mapper) Strict() *Mapper {
	f := m.floor + 0.15
	if f > 0.95 {
		f = 0.95
	}
	return &Mapper{floor: f}
}

// Map produces one assignment per mappable descriptor. A required field whose
// best binding sits below the floor aborts the mapping: the floor is never
// bypassed. The returned error is a *core.MappingError distinguishing an
// attribute the profile genuinely lacks (terminal) from an ambiguous or weak
// match (retryable). Optional fields below the floor are
// skipped silently; several fields may bind the same attribute.
func (m *Mapper) Map(descriptors []core.FormFieldDescriptor, profile *core.CandidateProfile) ([]core.FieldAssignment, error) {
	attrs := profile.Attributes()

	assignments := make([]core.FieldAssignment, 0, len(descriptors))
	for _, d := range descriptors {
		best, ambiguous := m.scoreField(d, attrs)

		switch {
		case best.Confidence >= m.floor && !ambiguous:
			assignments = append(assignments, best)
		case d.IsRequired && best.Confidence == 0:
			return nil, &core.MappingError{FieldID: d.FieldID, Label: d.Label, AttributeMissing: true}
		case d.IsRequired:
			return nil, &core.MappingError{FieldID: d.FieldID, Label: d.Label}
		}
	}
	return assignments, nil
}

// scoreField returns the highest-confidence assignment for one descriptor and
// whether two distinct attributes tied for the top score. A tie is an
// ambiguity; the same attribute winning for several fields is not.
func (m *Mapper) scoreField(d core.FormFieldDescriptor, attrs map[string]string) (core.FieldAssignment, bool) {
	label := normalize(d.Label)

	best := core.FieldAssignment{FieldID: d.FieldID}
	ambiguous := false
	for name, value := range attrs {
		if !kindCompatible(d.InputKind, name) {
			continue
		}
		score := scoreLabel(label, name)
		if score == 0 {
			continue
		}
		if len(d.CandidateValues) > 0 && !optionMatches(d.CandidateValues, value) {
			score /= 2
		}
		switch {
		case score > best.Confidence:
			best.AssignedValue = value
			best.Confidence = score
			best.SourceAttribute = name
			ambiguous = false
		case score == best.Confidence && name != best.SourceAttribute:
			ambiguous = true
		}
	}
	return best, ambiguous
}

// scoreLabel rates how well a normalized label names an attribute: exact
// attribute-name match, then the synonym table, then token overlap.
func scoreLabel(label, attribute string) float64 {
	attrWords := strings.ReplaceAll(attribute, "_", " ")
	if label == attrWords || label == attribute {
		return scoreExact
	}
	if synonyms[label] == attribute {
		return scoreSynonym
	}
	return overlapScore(label, attrWords)
}

// overlapScore rates partial matches by shared tokens, scaled under the
// synonym score so explicit table entries always win.
func overlapScore(label, attrWords string) float64 {
	labelTokens := strings.Fields(label)
	attrTokens := strings.Fields(attrWords)
	if len(labelTokens) == 0 || len(attrTokens) == 0 {
		return 0
	}
	shared := 0
	for _, at := range attrTokens {
		for _, lt := range labelTokens {
			if at == lt {
				shared++
				break
			}
		}
	}
	if shared == 0 {
		return 0
	}
	denom := len(attrTokens)
	if len(labelTokens) > denom {
		denom = len(labelTokens)
	}
	return scoreOverlap * float64(shared) / float64(denom)
}

// kindCompatible gates assignments by input kind: a file input never receives
// a plain string, an email input only ever receives the email attribute.
func kindCompatible(kind core.InputKind, attribute string) bool {
	switch kind {
	case core.InputFile:
		return attribute == "resume_file" || attribute == "cover_letter_file"
	case core.InputEmail:
		return attribute == "email"
	case core.InputPhone:
		return attribute == "phone"
	case core.InputURL:
		return attribute == "linkedin_url" || attribute == "website_url"
	default:
		return attribute != "resume_file" && attribute != "cover_letter_file"
	}
}

// optionMatches reports whether any select option plausibly carries the value.
func optionMatches(options []string, value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, o := range options {
		opt := strings.ToLower(strings.TrimSpace(o))
		if opt == v || strings.Contains(opt, v) || strings.Contains(v, opt) {
			return true
		}
	}
	return false
}

// normalize lowercases a label and strips punctuation so "E-mail Address:*"
// compares equal to "e mail address".
func normalize(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
