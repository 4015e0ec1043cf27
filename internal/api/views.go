package api

import (
	"github.com/dharsanguruparan/CreativeBrief/internal/catalog"
	"github.com/dharsanguruparan/CreativeBrief/internal/navigation"
	"github.com/dharsanguruparan/CreativeBrief/internal/session"
)

type ruleView struct {
	Required          bool     `json:"required"`
	MinLength         int      `json:"min_length,omitempty"`
	MaxLength         int      `json:"max_length,omitempty"`
	MinSelections     int      `json:"min_selections,omitempty"`
	MaxSelections     int      `json:"max_selections,omitempty"`
	AllowedFileTypes  []string `json:"allowed_file_types,omitempty"`
	MaxFileSizeBytes  int64    `json:"max_file_size_bytes,omitempty"`
	MaxTotalSizeBytes int64    `json:"max_total_size_bytes,omitempty"`
	MinFiles          int      `json:"min_files,omitempty"`
	MaxFiles          int      `json:"max_files,omitempty"`
}

type questionView struct {
	ID          string           `json:"id"`
	Text        string           `json:"text"`
	Type        catalog.Modality `json:"type"`
	Description string           `json:"description,omitempty"`
	Options     []string         `json:"options,omitempty"`
	Validation  ruleView         `json:"validation"`
}

func newQuestionView(q catalog.Question) questionView {
	r := q.Rule
	return questionView{
		ID:          q.ID,
		Text:        q.Text,
		Type:        q.Modality,
		Description: q.Description,
		Options:     q.Options,
		Validation: ruleView{
			Required:          r.Required,
			MinLength:         r.MinLength,
			MaxLength:         r.MaxLength,
			MinSelections:     r.MinSelections,
			MaxSelections:     r.MaxSelections,
			AllowedFileTypes:  r.AllowedFileTypes,
			MaxFileSizeBytes:  r.MaxFileSizeBytes,
			MaxTotalSizeBytes: r.MaxTotalSizeBytes,
			MinFiles:          r.MinFiles,
			MaxFiles:          r.MaxFiles,
		},
	}
}

type stepView struct {
	SessionID string                  `json:"session_id"`
	Step      navigation.StepKind     `json:"step"`
	Position  int                     `json:"position"`
	Total     int                     `json:"total"`
	Answered  int                     `json:"answered"`
	Question  *questionView           `json:"question,omitempty"`
	Prefill   *session.Answer         `json:"prefill,omitempty"`
	Files     []session.FileReference `json:"prefill_files,omitempty"`
	Errors    []string                `json:"errors,omitempty"`
}

func newStepView(id string, st navigation.Step) stepView {
	v := stepView{
		SessionID: id,
		Step:      st.Kind,
		Position:  st.Position,
		Total:     st.Total,
		Answered:  st.Answered,
		Errors:    st.Problems,
	}
	if st.Question != nil {
		q := newQuestionView(*st.Question)
		v.Question = &q
	}
	switch st.Prefill.Kind() {
	case session.KindText, session.KindList:
		p := st.Prefill
		v.Prefill = &p
	case session.KindFiles:
		v.Files = st.Prefill.Files()
	}
	return v
}
