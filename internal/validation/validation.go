// Package validation decides whether a candidate answer may be committed. All
// functions are pure: they never touch sessions or storage.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dharsanguruparan/CreativeBrief/internal/catalog"
	"github.com/dharsanguruparan/CreativeBrief/internal/session"
)

// Error is a user-actionable rejection. Reason is shown to the respondent
// verbatim.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func reject(format string, args ...any) error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// RequiredReason is returned when a required question is left empty.
const RequiredReason = "This question is required. Please provide an answer."

// Validate checks answer against the question's rule. It returns nil when the
// answer may be committed and an *Error otherwise.
//
// The required check always runs first, then empty optional answers pass,
// and only then are modality specific rules applied.
func Validate(q catalog.Question, answer session.Answer) error {
	rule := q.Rule
	if answer.IsEmpty() {
		if rule.Required {
			return &Error{Reason: RequiredReason}
		}
		return nil
	}
	switch q.Modality {
	case catalog.SingleChoice:
		return singleChoice(q, answer)
	case catalog.MultiChoice:
		return multiChoice(q, answer)
	case catalog.ShortText:
		return textLength(answer, rule, "short answer")
	case catalog.LongText:
		return textLength(answer, rule, "paragraph")
	case catalog.FileUpload:
		// Count, size and type need byte sizes, so they are enforced by
		// CheckBatch at upload time. Presence was checked above.
		return nil
	}
	return reject("Unsupported question type %q.", q.Modality)
}

func singleChoice(q catalog.Question, answer session.Answer) error {
	if answer.Kind() != session.KindText {
		return reject("Please select one option.")
	}
	if !q.HasOption(answer.Text()) {
		return reject("Invalid selection. Please choose from the available options.")
	}
	return nil
}

func multiChoice(q catalog.Question, answer session.Answer) error {
	if answer.Kind() != session.KindList {
		return reject("Please select at least one option.")
	}
	selected := answer.List()
	rule := q.Rule
	if rule.MinSelections > 0 && len(selected) < rule.MinSelections {
		return reject("Please select at least %d option(s).", rule.MinSelections)
	}
	if rule.MaxSelections > 0 && len(selected) > rule.MaxSelections {
		return reject("Please select at most %d option(s).", rule.MaxSelections)
	}
	seen := make(map[string]bool, len(selected))
	for _, v := range selected {
		if !q.HasOption(v) {
			return reject("Invalid selection: '%s'", v)
		}
		if seen[v] {
			return reject("Duplicate selection: '%s'", v)
		}
		seen[v] = true
	}
	return nil
}

func textLength(answer session.Answer, rule catalog.ValidationRule, field string) error {
	if answer.Kind() != session.KindText {
		return reject("Please provide text for this %s.", field)
	}
	n := utf8.RuneCountInString(strings.TrimSpace(answer.Text()))
	if rule.MinLength > 0 && n < rule.MinLength {
		return reject("Please provide at least %d characters. Current length: %d characters.", rule.MinLength, n)
	}
	if rule.MaxLength > 0 && n > rule.MaxLength {
		return reject("Please keep your answer under %d characters. Current length: %d characters.", rule.MaxLength, n)
	}
	return nil
}
