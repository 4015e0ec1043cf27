package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the shape held by an Answer.
type Kind int

const (
	// KindNone is the zero Answer: nothing was provided.
	KindNone Kind = iota
	// KindText is a single string (single-choice, short and long text).
	KindText
	// KindList is an ordered list of strings (multi-choice).
	KindList
	// KindFiles is a list of stored uploads (file-upload).
	KindFiles
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindFiles:
		return "files"
	}
	return "none"
}

// FileReference records one upload that the storage backend confirmed.
type FileReference struct {
	OriginalFilename string    `json:"original_filename"`
	StorageKey       string    `json:"r2_key"`
	PublicURL        string    `json:"r2_url"`
	SizeBytes        int64     `json:"file_size_bytes"`
	MIMEType         string    `json:"mime_type"`
	UploadedAt       time.Time `json:"upload_timestamp"`
}

// Answer is a tagged value whose shape follows the question's modality. The
// zero value is an empty answer.
type Answer struct {
	kind  Kind
	text  string
	list  []string
	files []FileReference
}

// Text builds a single-string answer.
func Text(s string) Answer { return Answer{kind: KindText, text: s} }

// List builds an ordered selection answer.
func List(values ...string) Answer {
	return Answer{kind: KindList, list: append([]string{}, values...)}
}

// Files builds an upload answer.
func Files(refs ...FileReference) Answer {
	return Answer{kind: KindFiles, files: append([]FileReference{}, refs...)}
}

// Kind reports the answer's shape.
func (a Answer) Kind() Kind { return a.kind }

// Text returns the string value; empty unless Kind is KindText.
func (a Answer) Text() string { return a.text }

// List returns a copy of the selected values.
func (a Answer) List() []string { return append([]string(nil), a.list...) }

// Files returns a copy of the file references.
func (a Answer) Files() []FileReference { return append([]FileReference(nil), a.files...) }

// IsEmpty reports whether the answer carries nothing. Whitespace-only text
// counts as empty.
func (a Answer) IsEmpty() bool {
	switch a.kind {
	case KindText:
		return strings.TrimSpace(a.text) == ""
	case KindList:
		return len(a.list) == 0
	case KindFiles:
		return len(a.files) == 0
	}
	return true
}

// Equal compares two answers by kind and value.
func (a Answer) Equal(b Answer) bool {
	if a.kind != b.kind || a.text != b.text || len(a.list) != len(b.list) || len(a.files) != len(b.files) {
		return false
	}
	for i := range a.list {
		if a.list[i] != b.list[i] {
			return false
		}
	}
	for i := range a.files {
		if a.files[i] != b.files[i] {
			return false
		}
	}
	return true
}

// MarshalJSON emits the exported answer_value: a string for text answers, an
// array for selections and an "N files uploaded" summary for uploads.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case KindList:
		return json.Marshal(a.List())
	case KindFiles:
		return json.Marshal(fmt.Sprintf("%d files uploaded", len(a.files)))
	case KindText:
		return json.Marshal(a.text)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a JSON string or an array of strings, which is how
// clients submit pending answers. Upload answers never arrive as JSON.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Answer{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode answer: %w", err)
		}
		*a = Text(s)
		return nil
	case '[':
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("decode answer: %w", err)
		}
		*a = List(values...)
		return nil
	}
	return errors.New("decode answer: expected a string or an array of strings")
}
