package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/dharsanguruparan/CreativeBrief/internal/catalog"
	"github.com/dharsanguruparan/CreativeBrief/internal/session"
)

var started = time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

func completedSession() *session.FormSession {
	s := session.NewAt("sess-1", started)
	s.Put("Q2", &session.Response{
		QuestionID: "Q2", Answer: session.List("Comedy (entertaining through jokes, skits, characters, punchlines)"),
		Timestamp: started.Add(2 * time.Minute), ValidationStatus: true,
	})
	s.Put("Q1", &session.Response{
		QuestionID: "Q1", Answer: session.Text("Sage (wise, knowledgeable, expert)"),
		Timestamp: started.Add(time.Minute), ValidationStatus: true,
	})
	refs := []session.FileReference{
		{OriginalFilename: "a.jpg", StorageKey: "sess-1/x/a.jpg", PublicURL: "https://pub.example/a.jpg", SizeBytes: 100, MIMEType: "image/jpeg", UploadedAt: started.Add(3 * time.Minute)},
		{OriginalFilename: "b.png", StorageKey: "sess-1/x/b.png", PublicURL: "https://pub.example/b.png", SizeBytes: 200, MIMEType: "image/png", UploadedAt: started.Add(3 * time.Minute)},
	}
	s.Put("Q45", &session.Response{
		QuestionID: "Q45", Answer: session.Files(refs...),
		Timestamp: started.Add(3 * time.Minute), ValidationStatus: true,
	})
	s.Complete("user@example.com", started.Add(12*time.Minute+45*time.Second))
	return s
}

func TestBuildResolvesCatalog(t *testing.T) {
	cat := catalog.Default()
	doc, err := Build(completedSession(), cat, "creative-direction-decks")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if doc.QuestionnaireVersion != "1.0.0" {
		t.Fatalf("unexpected version %q", doc.QuestionnaireVersion)
	}
	if len(doc.Responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(doc.Responses))
	}
	wantOrder := []string{"Q1", "Q2", "Q45"}
	for i, r := range doc.Responses {
		if r.QuestionID != wantOrder[i] {
			t.Fatalf("response %d: got %s, want %s", i, r.QuestionID, wantOrder[i])
		}
		q, _ := cat.Lookup(r.QuestionID)
		if r.QuestionText != q.Text || r.QuestionType != q.Modality {
			t.Fatalf("response %s: catalog data not resolved: %+v", r.QuestionID, r)
		}
	}
	if got := len(doc.Responses[2].FileReferences); got != 2 {
		t.Fatalf("expected 2 file references, got %d", got)
	}
	if doc.Responses[0].FileReferences == nil {
		t.Fatalf("expected empty, non-nil file references for text answers")
	}
	mins := doc.Metadata.CompletionTimeMinutes
	if mins == nil || math.Abs(*mins-12.75) > 1e-9 {
		t.Fatalf("expected 12.75 minutes, got %v", mins)
	}
	if doc.Metadata.UserEmail == nil || *doc.Metadata.UserEmail != "user@example.com" {
		t.Fatalf("unexpected email %v", doc.Metadata.UserEmail)
	}
	if doc.Storage.SessionFolder != "sess-1/20250901_120000" || doc.Storage.BucketName != "creative-direction-decks" {
		t.Fatalf("unexpected storage block %+v", doc.Storage)
	}
}

func TestEncodeShape(t *testing.T) {
	doc, err := Build(completedSession(), catalog.Default(), "bucket")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	data, err := Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"questionnaire_version", "submission_metadata", "responses", "r2_storage"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("missing top-level key %q", key)
		}
	}
	responses := raw["responses"].([]any)
	upload := responses[2].(map[string]any)
	if upload["answer_value"] != "2 files uploaded" {
		t.Fatalf("unexpected upload answer %v", upload["answer_value"])
	}
	ref := upload["file_references"].([]any)[0].(map[string]any)
	for _, key := range []string{"original_filename", "r2_key", "r2_url", "file_size_bytes", "mime_type", "upload_timestamp"} {
		if _, ok := ref[key]; !ok {
			t.Fatalf("missing file reference key %q", key)
		}
	}
	if _, ok := responses[1].(map[string]any)["answer_value"].([]any); !ok {
		t.Fatalf("expected multi-choice answer to encode as an array")
	}
	if bytes.Contains(data, []byte(`&`)) {
		t.Fatalf("expected HTML escaping disabled")
	}
	again, _ := Encode(doc)
	if !bytes.Equal(data, again) {
		t.Fatalf("expected deterministic encoding")
	}
}

func TestBuildInProgressSession(t *testing.T) {
	s := session.NewAt("open", started)
	doc, err := Build(s, catalog.Default(), "bucket")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	data, _ := Encode(doc)
	var raw struct {
		Metadata map[string]any `json:"submission_metadata"`
		Responses []any         `json:"responses"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"submitted_at", "user_email", "completion_time_minutes"} {
		v, ok := raw.Metadata[key]
		if !ok || v != nil {
			t.Fatalf("expected %s to be null, got %v (present %v)", key, v, ok)
		}
	}
	if raw.Responses == nil || len(raw.Responses) != 0 {
		t.Fatalf("expected empty responses array, got %v", raw.Responses)
	}
}

func TestBuildUnknownQuestion(t *testing.T) {
	s := session.NewAt("bad", started)
	s.Put("Q999", &session.Response{QuestionID: "Q999", Answer: session.Text("x"), ValidationStatus: true})
	_, err := Build(s, catalog.Default(), "bucket")
	if !errors.Is(err, catalog.ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
}

func TestFilenames(t *testing.T) {
	if Filename("abc") != "questionnaire_abc.json" {
		t.Fatalf("unexpected download name %q", Filename("abc"))
	}
	if AttachmentName("abc") != "questionnaire_submission_abc.json" {
		t.Fatalf("unexpected attachment name %q", AttachmentName("abc"))
	}
}
