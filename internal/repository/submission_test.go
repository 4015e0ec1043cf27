package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dharsanguruparan/CreativeBrief/internal/export"
)

func TestFromExport(t *testing.T) {
	submitted := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	email := "jane@example.com"
	doc := &export.Document{
		QuestionnaireVersion: export.Version,
		Metadata: export.Metadata{
			SessionID:   "sess-1",
			SubmittedAt: &submitted,
			UserEmail:   &email,
		},
		Storage: export.Storage{BucketName: "bucket", SessionFolder: "sess-1/20250501_090000"},
	}
	data, err := export.Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	sub := FromExport(doc, data)
	if sub.SessionID != "sess-1" || sub.RespondentEmail != email || !sub.SubmittedAt.Equal(submitted) {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if sub.DeliveryStatus != DeliveryPending || sub.Bucket != "bucket" || sub.SessionFolder != doc.Storage.SessionFolder {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if !json.Valid(sub.Document) {
		t.Fatalf("expected raw export JSON")
	}
}
