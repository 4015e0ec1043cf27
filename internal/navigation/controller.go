// Package navigation drives a FormSession through the questionnaire. Positions
// 0..N-1 are the catalog questions, N collects the respondent's email and
// N+1 is the terminal completion page.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dharsanguruparan/CreativeBrief/internal/catalog"
	"github.com/dharsanguruparan/CreativeBrief/internal/export"
	"github.com/dharsanguruparan/CreativeBrief/internal/notify"
	"github.com/dharsanguruparan/CreativeBrief/internal/s3storage"
	"github.com/dharsanguruparan/CreativeBrief/internal/session"
	"github.com/dharsanguruparan/CreativeBrief/internal/validation"
)

var (
	// ErrTerminal is returned for any transition attempted after completion
	// other than a reset.
	ErrTerminal = errors.New("questionnaire already completed")
	// ErrNotAtQuestion is returned when an answer arrives while the cursor is
	// on the email step.
	ErrNotAtQuestion = errors.New("current step is not a question")
	// ErrNotAtEmail is returned when an email arrives before the last question.
	ErrNotAtEmail = errors.New("current step is not the email step")
	// ErrWrongModality is returned when text or choices are sent to a file
	// question or files to any other question.
	ErrWrongModality = errors.New("answer does not match the question type")
	// ErrStorageUnavailable hides storage faults from respondents.
	ErrStorageUnavailable = errors.New("File upload is temporarily unavailable. Please try again later.")
)

// ValidationError carries every user-facing reason a transition was refused.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string { return strings.Join(e.Reasons, "\n") }

// Storage uploads a validated batch of files.
type Storage interface {
	UploadBatch(ctx context.Context, files []s3storage.File, prefix string, rule catalog.ValidationRule) ([]s3storage.Object, []string, error)
}

// Notifier hands the completion email to a transport.
type Notifier interface {
	Deliver(ctx context.Context, msg notify.Message) error
}

// Archiver keeps a durable copy of each completed export. It runs before
// delivery so the copy exists by the time any queued email is processed.
type Archiver interface {
	Archive(ctx context.Context, doc *export.Document, data []byte) error
}

// Completion is the outcome of a successful email submission.
type Completion struct {
	Document *export.Document
	JSON     []byte
	// Delivered is false when the email could not be sent. The export is
	// still valid and should be offered for download.
	Delivered   bool
	DeliveryErr error
}

// Controller applies transitions to sessions. It holds no per-session state,
// so one Controller serves every respondent.
type Controller struct {
	catalog  *catalog.Catalog
	storage  Storage
	notifier Notifier
	archiver Archiver
	bucket   string
	now      func() time.Time
}

// NewController wires the collaborators. storage and notifier may be nil when
// the corresponding service is not configured.
func NewController(cat *catalog.Catalog, storage Storage, notifier Notifier, bucket string) *Controller {
	return &Controller{
		catalog:  cat,
		storage:  storage,
		notifier: notifier,
		bucket:   bucket,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithArchiver enables archiving of completed exports.
func (c *Controller) WithArchiver(a Archiver) *Controller {
	c.archiver = a
	return c
}

// Catalog returns the question catalog the controller walks.
func (c *Controller) Catalog() *catalog.Catalog { return c.catalog }

// EmailPosition is the cursor value of the email step.
func (c *Controller) EmailPosition() int { return c.catalog.Len() }

// TerminalPosition is the cursor value of the completion page.
func (c *Controller) TerminalPosition() int { return c.catalog.Len() + 1 }

func (c *Controller) currentQuestion(s *session.FormSession) (catalog.Question, error) {
	if s.Completed || s.Cursor > c.EmailPosition() {
		return catalog.Question{}, ErrTerminal
	}
	if s.Cursor == c.EmailPosition() {
		return catalog.Question{}, ErrNotAtQuestion
	}
	return c.catalog.At(s.Cursor), nil
}

// Answer validates a text or choice answer for the current question and, on
// success, commits it and advances.
func (c *Controller) Answer(ctx context.Context, s *session.FormSession, answer session.Answer) error {
	q, err := c.currentQuestion(s)
	if err != nil {
		return err
	}
	if q.Modality == catalog.FileUpload {
		return ErrWrongModality
	}
	if err := validation.Validate(q, answer); err != nil {
		return c.refuse(s, err)
	}
	c.commit(s, q, answer)
	return nil
}

// Upload validates and stores files for the current file question. An empty
// batch re-validates the previously committed upload when there is one, which
// lets a respondent step back and forward without uploading again.
func (c *Controller) Upload(ctx context.Context, s *session.FormSession, files []s3storage.File) error {
	q, err := c.currentQuestion(s)
	if err != nil {
		return err
	}
	if q.Modality != catalog.FileUpload {
		return ErrWrongModality
	}
	if len(files) == 0 {
		var prior session.Answer
		if r := s.Response(q.ID); r != nil {
			prior = r.Answer
		}
		if err := validation.Validate(q, prior); err != nil {
			return c.refuse(s, err)
		}
		c.commit(s, q, prior)
		return nil
	}
	if c.storage == nil {
		log.Printf("session %s: upload for %s refused: storage not configured", s.ID, q.ID)
		return ErrStorageUnavailable
	}
	objects, problems, err := c.storage.UploadBatch(ctx, files, s.StorageFolder, q.Rule)
	if err != nil {
		log.Printf("session %s: upload for %s failed after %d object(s): %v", s.ID, q.ID, len(objects), err)
		return ErrStorageUnavailable
	}
	if len(problems) > 0 {
		s.Problems = problems
		return &ValidationError{Reasons: problems}
	}
	at := c.now()
	refs := make([]session.FileReference, len(objects))
	for i, o := range objects {
		refs[i] = session.FileReference{
			OriginalFilename: o.Name,
			StorageKey:       o.Key,
			PublicURL:        o.URL,
			SizeBytes:        o.Size,
			MIMEType:         o.MIMEType,
			UploadedAt:       at,
		}
	}
	c.commit(s, q, session.Files(refs...))
	return nil
}

// RejectOversized refuses an upload whose request body went past the server
// cap after read bytes. Only the total-size report can be given, since the
// remaining parts were never read.
func (c *Controller) RejectOversized(s *session.FormSession, read int64) error {
	q, err := c.currentQuestion(s)
	if err != nil {
		return err
	}
	if q.Modality != catalog.FileUpload {
		return ErrWrongModality
	}
	s.Problems = []string{validation.OversizedBatch(q.Rule, read)}
	return &ValidationError{Reasons: s.Problems}
}

// SubmitEmail completes the session. The export is built before anything on
// s changes, so a failure leaves the session exactly as it was. Delivery is
// best effort: its failure is reported on the Completion, never as an error.
func (c *Controller) SubmitEmail(ctx context.Context, s *session.FormSession, email string) (*Completion, error) {
	if s.Completed || s.Cursor > c.EmailPosition() {
		return nil, ErrTerminal
	}
	if s.Cursor != c.EmailPosition() {
		return nil, ErrNotAtEmail
	}
	addr, err := validation.Email(email)
	if err != nil {
		return nil, c.refuse(s, err)
	}

	done := s.Clone()
	done.Complete(addr, c.now())
	doc, data, err := c.Export(done)
	if err != nil {
		return nil, err
	}
	done.Problems = nil
	done.Advance()
	*s = *done

	if c.archiver != nil {
		if err := c.archiver.Archive(ctx, doc, data); err != nil {
			log.Printf("session %s: archive failed: %v", s.ID, err)
		}
	}
	out := &Completion{Document: doc, JSON: data}
	out.DeliveryErr = c.deliver(ctx, addr, s.ID, data)
	out.Delivered = out.DeliveryErr == nil
	if out.DeliveryErr != nil {
		log.Printf("session %s: completion email to %s not delivered: %v", s.ID, addr, out.DeliveryErr)
	}
	return out, nil
}

// Export renders the document for s in its current state.
func (c *Controller) Export(s *session.FormSession) (*export.Document, []byte, error) {
	doc, err := export.Build(s, c.catalog, c.bucket)
	if err != nil {
		return nil, nil, err
	}
	data, err := export.Encode(doc)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}

func (c *Controller) deliver(ctx context.Context, to, sessionID string, attachment []byte) error {
	if c.notifier == nil {
		return notify.ErrNoTransport
	}
	msg, err := notify.CompletionMessage(to, sessionID, attachment)
	if err != nil {
		return fmt.Errorf("render completion message: %w", err)
	}
	return c.notifier.Deliver(ctx, msg)
}

// Retreat steps back one position and clears the shown problem. It is a
// no-op at the first question and refused on the completion page.
func (c *Controller) Retreat(s *session.FormSession) error {
	if s.Completed || s.Cursor > c.EmailPosition() {
		return ErrTerminal
	}
	s.Retreat()
	s.Problems = nil
	return nil
}

// Reset discards the old session and starts a fresh one at position 0.
func (c *Controller) Reset() *session.FormSession {
	return session.NewAt(uuid.NewString(), c.now())
}

func (c *Controller) refuse(s *session.FormSession, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		s.Problems = []string{verr.Reason}
		return &ValidationError{Reasons: s.Problems}
	}
	return err
}

func (c *Controller) commit(s *session.FormSession, q catalog.Question, answer session.Answer) {
	s.Put(q.ID, &session.Response{
		QuestionID:       q.ID,
		Answer:           answer,
		Timestamp:        c.now(),
		ValidationStatus: true,
	})
	s.Problems = nil
	s.Advance()
}
