// Package catalog holds the ordered, read-only question definitions. A Catalog
// is built once at startup and shared by every session; nothing mutates it
// afterwards so concurrent readers need no locking.
package catalog

import (
	"errors"
	"fmt"
)

// Modality describes the input shape of a question. The string values are the
// ones emitted as question_type in exported documents.
type Modality string

const (
	SingleChoice Modality = "multiple_choice"
	MultiChoice  Modality = "checkboxes"
	ShortText    Modality = "short_answer"
	LongText     Modality = "paragraph"
	FileUpload   Modality = "file_upload"
)

// ErrUnknownQuestion is returned when a question id has no catalog entry.
var ErrUnknownQuestion = errors.New("unknown question")

// Valid reports whether m is one of the supported modalities.
func (m Modality) Valid() bool {
	switch m {
	case SingleChoice, MultiChoice, ShortText, LongText, FileUpload:
		return true
	}
	return false
}

// HasOptions reports whether questions of this modality carry an option list.
func (m Modality) HasOptions() bool {
	return m == SingleChoice || m == MultiChoice
}

// ValidationRule configures how answers to one question are checked. Numeric
// bounds left at zero are not enforced. Fields that do not apply to the
// owning question's modality are ignored.
type ValidationRule struct {
	Required          bool
	MinLength         int
	MaxLength         int
	MinSelections     int
	MaxSelections     int
	AllowedFileTypes  []string
	MaxFileSizeBytes  int64
	MaxTotalSizeBytes int64
	MinFiles          int
	MaxFiles          int
}

// Question is a single catalog entry.
type Question struct {
	ID          string
	Text        string
	Modality    Modality
	Description string
	Options     []string
	Rule        ValidationRule
}

// HasOption reports whether value is one of the question's options.
func (q Question) HasOption(value string) bool {
	for _, opt := range q.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// Catalog is an ordered list of questions with id lookup.
type Catalog struct {
	questions []Question
	index     map[string]int
}

// New validates the questions and builds a Catalog preserving their order.
func New(questions ...Question) (*Catalog, error) {
	c := &Catalog{
		questions: make([]Question, 0, len(questions)),
		index:     make(map[string]int, len(questions)),
	}
	for _, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question %d: missing id", len(c.questions)+1)
		}
		if _, dup := c.index[q.ID]; dup {
			return nil, fmt.Errorf("question %s: duplicate id", q.ID)
		}
		if !q.Modality.Valid() {
			return nil, fmt.Errorf("question %s: unsupported modality %q", q.ID, q.Modality)
		}
		if q.Modality.HasOptions() && len(q.Options) == 0 {
			return nil, fmt.Errorf("question %s: %s requires options", q.ID, q.Modality)
		}
		if !q.Modality.HasOptions() && len(q.Options) > 0 {
			return nil, fmt.Errorf("question %s: %s does not take options", q.ID, q.Modality)
		}
		q.Options = append([]string(nil), q.Options...)
		q.Rule.AllowedFileTypes = append([]string(nil), q.Rule.AllowedFileTypes...)
		c.index[q.ID] = len(c.questions)
		c.questions = append(c.questions, q)
	}
	return c, nil
}

// MustNew is like New but panics on malformed input. It is meant for catalogs
// compiled into the binary.
func MustNew(questions ...Question) *Catalog {
	c, err := New(questions...)
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

// Len returns the number of questions.
func (c *Catalog) Len() int { return len(c.questions) }

// At returns the question at position i in catalog order.
func (c *Catalog) At(i int) Question { return c.questions[i] }

// Lookup finds a question by id.
func (c *Catalog) Lookup(id string) (Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// Index returns the catalog position of id, or -1.
func (c *Catalog) Index(id string) int {
	if i, ok := c.index[id]; ok {
		return i
	}
	return -1
}

// Questions returns a copy of the ordered question list.
func (c *Catalog) Questions() []Question {
	out := make([]Question, len(c.questions))
	copy(out, c.questions)
	return out
}
