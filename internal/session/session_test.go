package session

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewSession(t *testing.T) {
	started := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	s := NewAt("abc", started)
	if s.Cursor != 0 || s.Completed || s.CompletedAt != nil {
		t.Fatalf("unexpected initial state: %+v", s)
	}
	if s.StorageFolder != "abc/20250304_050607" {
		t.Fatalf("unexpected storage folder %q", s.StorageFolder)
	}
	a, b := New(), New()
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected unique ids, got %q and %q", a.ID, b.ID)
	}
	if !strings.HasPrefix(a.StorageFolder, a.ID+"/") {
		t.Fatalf("storage folder %q does not start with id", a.StorageFolder)
	}
}

func TestRetreatClampsAtZero(t *testing.T) {
	s := NewAt("x", time.Now())
	s.Retreat()
	if s.Cursor != 0 {
		t.Fatalf("expected cursor 0, got %d", s.Cursor)
	}
	s.Advance()
	s.Advance()
	s.Retreat()
	if s.Cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", s.Cursor)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := NewAt("x", time.Now())
	s.Put("Q1", &Response{QuestionID: "Q1", Answer: Text("first"), ValidationStatus: true})
	s.Put("Q1", &Response{QuestionID: "Q1", Answer: Text("second"), ValidationStatus: true})
	if s.Answered() != 1 {
		t.Fatalf("expected one response, got %d", s.Answered())
	}
	if got := s.Response("Q1").Answer.Text(); got != "second" {
		t.Fatalf("expected second answer, got %q", got)
	}
	if s.Response("Q2") != nil {
		t.Fatalf("expected no response for unanswered question")
	}
}

func TestCompleteAndElapsed(t *testing.T) {
	started := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	s := NewAt("x", started)
	if _, ok := s.ElapsedMinutes(); ok {
		t.Fatalf("expected no elapsed time before completion")
	}
	s.Complete("user@example.com", started.Add(15*time.Minute+30*time.Second))
	if !s.Completed || s.RespondentEmail != "user@example.com" || s.CompletedAt == nil {
		t.Fatalf("unexpected completion state: %+v", s)
	}
	mins, ok := s.ElapsedMinutes()
	if !ok || math.Abs(mins-15.5) > 1e-9 {
		t.Fatalf("expected 15.5 minutes, got %v (%v)", mins, ok)
	}
}

func TestAnswerShapes(t *testing.T) {
	cases := []struct {
		name  string
		a     Answer
		empty bool
		kind  Kind
		json  string
	}{
		{"zero", Answer{}, true, KindNone, "null"},
		{"text", Text("hello"), false, KindText, `"hello"`},
		{"blank text", Text("   \n"), true, KindText, `"   \n"`},
		{"list", List("a", "b"), false, KindList, `["a","b"]`},
		{"empty list", List(), true, KindList, `[]`},
		{"files", Files(FileReference{OriginalFilename: "a.jpg"}, FileReference{OriginalFilename: "b.jpg"}), false, KindFiles, `"2 files uploaded"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.a.IsEmpty() != tc.empty {
				t.Fatalf("IsEmpty = %v, want %v", tc.a.IsEmpty(), tc.empty)
			}
			if tc.a.Kind() != tc.kind {
				t.Fatalf("Kind = %s, want %s", tc.a.Kind(), tc.kind)
			}
			data, err := json.Marshal(tc.a)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tc.json {
				t.Fatalf("json = %s, want %s", data, tc.json)
			}
		})
	}
}

func TestAnswerDecode(t *testing.T) {
	var a Answer
	if err := json.Unmarshal([]byte(`"Creator"`), &a); err != nil {
		t.Fatalf("decode string: %v", err)
	}
	if !a.Equal(Text("Creator")) {
		t.Fatalf("unexpected answer %+v", a)
	}
	if err := json.Unmarshal([]byte(`["x","y"]`), &a); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if !a.Equal(List("x", "y")) {
		t.Fatalf("unexpected answer %+v", a)
	}
	if err := json.Unmarshal([]byte(`42`), &a); err == nil {
		t.Fatalf("expected error for numeric answer")
	}
}

func TestStore(t *testing.T) {
	store := NewStore()
	s := NewAt("s1", time.Now())
	store.Save(s)
	if store.Len() != 1 {
		t.Fatalf("expected one session")
	}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update("s1", func(s *FormSession) error {
				s.Advance()
				return nil
			})
		}()
	}
	wg.Wait()
	var cursor int
	if err := store.View("s1", func(s *FormSession) { cursor = s.Cursor }); err != nil {
		t.Fatalf("view: %v", err)
	}
	if cursor != 20 {
		t.Fatalf("expected serialized updates to reach 20, got %d", cursor)
	}
	wantErr := errors.New("boom")
	if err := store.Update("s1", func(*FormSession) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected callback error, got %v", err)
	}
	store.Delete("s1")
	if err := store.Update("s1", func(*FormSession) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreGetReturnsSnapshot(t *testing.T) {
	store := NewStore()
	s := NewAt("s2", time.Now())
	s.Put("Q1", &Response{QuestionID: "Q1", Answer: Text("Sage"), ValidationStatus: true})
	store.Save(s)

	snap, err := store.Get("s2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	snap.Advance()
	snap.Put("Q2", &Response{QuestionID: "Q2"})
	snap.Responses["Q1"].Answer = Text("Hero")

	_ = store.View("s2", func(live *FormSession) {
		if live.Cursor != 0 || live.Answered() != 1 || live.Response("Q1").Answer.Text() != "Sage" {
			t.Fatalf("snapshot mutation leaked into the store: %+v", live)
		}
	})
	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
