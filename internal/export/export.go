// Package export renders a session into the versioned JSON document that is
// emailed to the respondent and offered for download.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/dharsanguruparan/CreativeBrief/internal/catalog"
	"github.com/dharsanguruparan/CreativeBrief/internal/session"
)

// Version is the schema version written to every document.
const Version = "1.0.0"

// Document is the top-level export structure. Field order and names are a
// compatibility contract with downstream consumers.
type Document struct {
	QuestionnaireVersion string     `json:"questionnaire_version"`
	Metadata             Metadata   `json:"submission_metadata"`
	Responses            []Response `json:"responses"`
	Storage              Storage    `json:"r2_storage"`
}

// Metadata describes the submission as a whole.
type Metadata struct {
	SessionID             string     `json:"session_id"`
	SubmittedAt           *time.Time `json:"submitted_at"`
	UserEmail             *string    `json:"user_email"`
	CompletionTimeMinutes *float64   `json:"completion_time_minutes"`
	StartedAt             time.Time  `json:"started_at"`
}

// Response is one answered question with its catalog text resolved.
type Response struct {
	QuestionID       string                  `json:"question_id"`
	AnswerValue      session.Answer          `json:"answer_value"`
	Timestamp        time.Time               `json:"timestamp"`
	ValidationStatus bool                    `json:"validation_status"`
	FileReferences   []session.FileReference `json:"file_references"`
	QuestionText     string                  `json:"question_text"`
	QuestionType     catalog.Modality        `json:"question_type"`
}

// Storage points at the bucket folder holding the session's uploads.
type Storage struct {
	BucketName    string `json:"bucket_name"`
	SessionFolder string `json:"session_folder"`
}

// Build assembles the document for s. It reads nothing but s and cat, so the
// same inputs always produce the same document. Responses follow catalog
// order. A response whose question is missing from cat is an invariant
// violation and yields an error wrapping catalog.ErrUnknownQuestion.
func Build(s *session.FormSession, cat *catalog.Catalog, bucket string) (*Document, error) {
	ids := make([]string, 0, len(s.Responses))
	for id := range s.Responses {
		if _, ok := cat.Lookup(id); !ok {
			return nil, fmt.Errorf("export session %s: question %q: %w", s.ID, id, catalog.ErrUnknownQuestion)
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return cat.Index(ids[i]) < cat.Index(ids[j]) })

	responses := make([]Response, 0, len(ids))
	for _, id := range ids {
		r := s.Responses[id]
		q, _ := cat.Lookup(id)
		refs := r.FileReferences()
		if refs == nil {
			refs = []session.FileReference{}
		}
		responses = append(responses, Response{
			QuestionID:       id,
			AnswerValue:      r.Answer,
			Timestamp:        r.Timestamp,
			ValidationStatus: r.ValidationStatus,
			FileReferences:   refs,
			QuestionText:     q.Text,
			QuestionType:     q.Modality,
		})
	}

	meta := Metadata{
		SessionID:   s.ID,
		SubmittedAt: s.CompletedAt,
		StartedAt:   s.StartedAt,
	}
	if s.RespondentEmail != "" {
		email := s.RespondentEmail
		meta.UserEmail = &email
	}
	if mins, ok := s.ElapsedMinutes(); ok {
		meta.CompletionTimeMinutes = &mins
	}
	return &Document{
		QuestionnaireVersion: Version,
		Metadata:             meta,
		Responses:            responses,
		Storage: Storage{
			BucketName:    bucket,
			SessionFolder: s.StorageFolder,
		},
	}, nil
}

// Encode renders doc as indented JSON without HTML escaping.
func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename is the download name offered to the respondent.
func Filename(sessionID string) string {
	return fmt.Sprintf("questionnaire_%s.json", sessionID)
}

// AttachmentName is the filename used for the emailed copy.
func AttachmentName(sessionID string) string {
	return fmt.Sprintf("questionnaire_submission_%s.json", sessionID)
}
