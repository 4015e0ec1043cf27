package navigation

import (
	"github.com/dharsanguruparan/CreativeBrief/internal/catalog"
	"github.com/dharsanguruparan/CreativeBrief/internal/session"
)

// StepKind names what the respondent is looking at.
type StepKind string

const (
	StepQuestion StepKind = "question"
	StepEmail    StepKind = "email"
	StepComplete StepKind = "complete"
)

// Step is everything a front end needs to render the current position.
type Step struct {
	Position int
	Total    int
	Kind     StepKind
	// Question is set only for StepQuestion.
	Question *catalog.Question
	// Prefill is the committed answer for a revisited question.
	Prefill  session.Answer
	Answered int
	Problems []string
}

// Step describes the session's current position.
func (c *Controller) Step(s *session.FormSession) Step {
	st := Step{
		Position: s.Cursor,
		Total:    c.catalog.Len(),
		Answered: s.Answered(),
		Problems: append([]string(nil), s.Problems...),
	}
	switch {
	case s.Completed || s.Cursor > c.EmailPosition():
		st.Kind = StepComplete
	case s.Cursor == c.EmailPosition():
		st.Kind = StepEmail
	default:
		q := c.catalog.At(s.Cursor)
		st.Kind = StepQuestion
		st.Question = &q
		if r := s.Response(q.ID); r != nil {
			st.Prefill = r.Answer
		}
	}
	return st
}
