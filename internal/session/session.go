// Package session models one respondent's progress through the questionnaire.
// A FormSession is plain in-memory state: it performs no I/O and no
// validation, leaving both to the navigation controller.
package session

import (
	"time"

	"github.com/google/uuid"
)

// folderLayout formats started_at inside the storage folder name.
const folderLayout = "20060102_150405"

// Response is one committed answer. Only validated answers are ever stored,
// so ValidationStatus is always true for responses held by a session.
type Response struct {
	QuestionID       string
	Answer           Answer
	Timestamp        time.Time
	ValidationStatus bool
}

// FileReferences returns the uploads attached to the response, if any.
func (r *Response) FileReferences() []FileReference {
	return r.Answer.Files()
}

// FormSession is the aggregate root for one respondent.
type FormSession struct {
	ID              string
	Cursor          int
	Responses       map[string]*Response
	Completed       bool
	RespondentEmail string
	StartedAt       time.Time
	CompletedAt     *time.Time
	StorageFolder   string
	// Problems holds the validation error currently shown to the respondent.
	Problems []string
}

// New starts a session with a random id at the current time.
func New() *FormSession {
	return NewAt(uuid.NewString(), time.Now().UTC())
}

// NewAt starts a session with an explicit id and start time.
func NewAt(id string, startedAt time.Time) *FormSession {
	return &FormSession{
		ID:            id,
		Responses:     make(map[string]*Response),
		StartedAt:     startedAt,
		StorageFolder: id + "/" + startedAt.Format(folderLayout),
	}
}

// Response returns the committed response for questionID, or nil.
func (s *FormSession) Response(questionID string) *Response {
	return s.Responses[questionID]
}

// Put stores r under questionID, replacing any earlier answer.
func (s *FormSession) Put(questionID string, r *Response) {
	if s.Responses == nil {
		s.Responses = make(map[string]*Response)
	}
	s.Responses[questionID] = r
}

// Answered returns how many questions have a committed response.
func (s *FormSession) Answered() int { return len(s.Responses) }

// Advance moves the cursor forward by one. Bounds are the caller's concern.
func (s *FormSession) Advance() { s.Cursor++ }

// Retreat moves the cursor back by one, stopping at zero.
func (s *FormSession) Retreat() {
	if s.Cursor > 0 {
		s.Cursor--
	}
}

// Complete marks the session finished. The email must already be validated.
func (s *FormSession) Complete(email string, at time.Time) {
	s.Completed = true
	s.RespondentEmail = email
	s.CompletedAt = &at
}

// Clone returns a copy that shares no mutable state with s.
func (s *FormSession) Clone() *FormSession {
	c := *s
	c.Responses = make(map[string]*Response, len(s.Responses))
	for id, r := range s.Responses {
		cp := *r
		c.Responses[id] = &cp
	}
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		c.CompletedAt = &at
	}
	c.Problems = append([]string(nil), s.Problems...)
	return &c
}

// ElapsedMinutes reports the time from start to completion in minutes. The
// boolean is false while the session is still in progress.
func (s *FormSession) ElapsedMinutes() (float64, bool) {
	if s.CompletedAt == nil {
		return 0, false
	}
	return s.CompletedAt.Sub(s.StartedAt).Minutes(), true
}
