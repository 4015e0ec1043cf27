package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dharsanguruparan/CreativeBrief/internal/export"
)

// ErrNotFound is returned when no submission exists for a session id.
var ErrNotFound = errors.New("submission not found")

// DeliveryStatus tracks the completion email for an archived submission.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// Submission represents a row in the submissions table.
type Submission struct {
	SessionID       string          `json:"sessionId"`
	RespondentEmail string          `json:"respondentEmail"`
	Bucket          string          `json:"bucket"`
	SessionFolder   string          `json:"sessionFolder"`
	Document        json.RawMessage `json:"document"`
	DeliveryStatus  DeliveryStatus  `json:"deliveryStatus"`
	DeliveryError   *string         `json:"deliveryError,omitempty"`
	SubmittedAt     time.Time       `json:"submittedAt"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// FromExport builds a pending submission row from a completed export.
func FromExport(doc *export.Document, data []byte) *Submission {
	sub := &Submission{
		SessionID:      doc.Metadata.SessionID,
		Bucket:         doc.Storage.BucketName,
		SessionFolder:  doc.Storage.SessionFolder,
		Document:       json.RawMessage(data),
		DeliveryStatus: DeliveryPending,
	}
	if doc.Metadata.UserEmail != nil {
		sub.RespondentEmail = *doc.Metadata.UserEmail
	}
	if doc.Metadata.SubmittedAt != nil {
		sub.SubmittedAt = *doc.Metadata.SubmittedAt
	}
	return sub
}

// SubmissionRepository wraps all SQL used by the API, the worker and the CLI.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository constructs a repository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Save inserts the submission or replaces the stored copy for the same
// session.
func (r *SubmissionRepository) Save(ctx context.Context, sub *Submission) error {
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO submissions (session_id, respondent_email, bucket, session_folder, document, delivery_status, delivery_error, submitted_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (session_id) DO UPDATE SET
			respondent_email = EXCLUDED.respondent_email,
			document = EXCLUDED.document,
			delivery_status = EXCLUDED.delivery_status,
			delivery_error = EXCLUDED.delivery_error,
			submitted_at = EXCLUDED.submitted_at,
			updated_at = EXCLUDED.updated_at
	`, sub.SessionID, sub.RespondentEmail, sub.Bucket, sub.SessionFolder, string(sub.Document),
		sub.DeliveryStatus, sub.DeliveryError, sub.SubmittedAt, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	return nil
}

// Archive stores a completed export with a pending delivery status.
func (r *SubmissionRepository) Archive(ctx context.Context, doc *export.Document, data []byte) error {
	return r.Save(ctx, FromExport(doc, data))
}

// Get returns the archived submission for a session id.
func (r *SubmissionRepository) Get(ctx context.Context, sessionID string) (*Submission, error) {
	var (
		sub      Submission
		document string
		errorMsg sql.NullString
	)
	row := r.pool.QueryRow(ctx, `
		SELECT session_id, respondent_email, bucket, session_folder, document::text, delivery_status, delivery_error, submitted_at, created_at, updated_at
		FROM submissions WHERE session_id=$1
	`, sessionID)
	if err := row.Scan(&sub.SessionID, &sub.RespondentEmail, &sub.Bucket, &sub.SessionFolder, &document,
		&sub.DeliveryStatus, &errorMsg, &sub.SubmittedAt, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select submission: %w", err)
	}
	sub.Document = json.RawMessage(document)
	if errorMsg.Valid {
		msg := errorMsg.String
		sub.DeliveryError = &msg
	}
	return &sub, nil
}

// MarkSent records a successful delivery.
func (r *SubmissionRepository) MarkSent(ctx context.Context, sessionID string) error {
	return r.updateDelivery(ctx, sessionID, DeliverySent, nil)
}

// MarkFailed records the last delivery error.
func (r *SubmissionRepository) MarkFailed(ctx context.Context, sessionID, msg string) error {
	return r.updateDelivery(ctx, sessionID, DeliveryFailed, &msg)
}

func (r *SubmissionRepository) updateDelivery(ctx context.Context, sessionID string, status DeliveryStatus, errorMsg *string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE submissions
		SET delivery_status=$1, delivery_error=$2, updated_at=$3
		WHERE session_id=$4
	`, status, errorMsg, time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
