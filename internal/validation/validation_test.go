package validation

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dharsanguruparan/CreativeBrief/internal/catalog"
	"github.com/dharsanguruparan/CreativeBrief/internal/session"
)

var (
	single = catalog.Question{
		ID: "S", Modality: catalog.SingleChoice,
		Options: []string{"Sage", "Hero"},
		Rule:    catalog.ValidationRule{Required: true},
	}
	multi = catalog.Question{
		ID: "M", Modality: catalog.MultiChoice,
		Options: []string{"a", "b", "c", "d"},
		Rule:    catalog.ValidationRule{Required: true, MinSelections: 1, MaxSelections: 2},
	}
	paragraph = catalog.Question{
		ID: "P", Modality: catalog.LongText,
		Rule: catalog.ValidationRule{Required: true, MinLength: 10, MaxLength: 20},
	}
	upload = catalog.Question{
		ID: "F", Modality: catalog.FileUpload,
		Rule: catalog.ValidationRule{Required: true},
	}
)

func reason(t *testing.T, err error) string {
	t.Helper()
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	return verr.Reason
}

func TestRequiredBeforeTypeChecks(t *testing.T) {
	empties := []session.Answer{{}, session.Text(""), session.Text("   "), session.List()}
	for _, q := range []catalog.Question{single, multi, paragraph, upload} {
		for _, a := range empties {
			err := Validate(q, a)
			if err == nil || !strings.Contains(reason(t, err), "required") {
				t.Fatalf("%s with %s answer: expected required rejection, got %v", q.ID, a.Kind(), err)
			}
			optional := q
			optional.Rule.Required = false
			if err := Validate(optional, a); err != nil {
				t.Fatalf("%s optional with empty answer: expected accept, got %v", q.ID, err)
			}
		}
	}
}

func TestSingleChoice(t *testing.T) {
	if err := Validate(single, session.Text("Sage")); err != nil {
		t.Fatalf("expected accept, got %v", err)
	}
	for _, v := range []string{"sage", "Sage ", "Villain", "Hero, Sage"} {
		if err := Validate(single, session.Text(v)); err == nil {
			t.Fatalf("expected %q to be rejected", v)
		}
	}
	if err := Validate(single, session.List("Sage")); err == nil {
		t.Fatalf("expected list answer to be rejected for single choice")
	}
}

func TestMultiChoiceBounds(t *testing.T) {
	cases := []struct {
		values []string
		ok     bool
		want   string
	}{
		{nil, false, "required"},
		{[]string{"a"}, true, ""},
		{[]string{"a", "b"}, true, ""},
		{[]string{"a", "b", "c"}, false, "at most 2"},
		{[]string{"a", "z"}, false, "Invalid selection: 'z'"},
		{[]string{"a", "a"}, false, "Duplicate selection: 'a'"},
	}
	for _, tc := range cases {
		err := Validate(multi, session.List(tc.values...))
		if tc.ok {
			if err != nil {
				t.Fatalf("%v: expected accept, got %v", tc.values, err)
			}
			continue
		}
		if err == nil || !strings.Contains(reason(t, err), tc.want) {
			t.Fatalf("%v: expected rejection containing %q, got %v", tc.values, tc.want, err)
		}
	}
	if err := Validate(multi, session.Text("a")); err == nil {
		t.Fatalf("expected text answer to be rejected for multi choice")
	}
}

func TestMultiChoiceMinCheckedBeforeMax(t *testing.T) {
	q := multi
	q.Rule = catalog.ValidationRule{Required: false, MinSelections: 3, MaxSelections: 1}
	err := Validate(q, session.List("a", "b"))
	if err == nil || !strings.Contains(reason(t, err), "at least 3") {
		t.Fatalf("expected min rejection first, got %v", err)
	}
}

func TestTextLengthBoundaries(t *testing.T) {
	cases := []struct {
		input string
		ok    bool
		want  string
	}{
		{strings.Repeat("x", 10), true, ""},
		{"   " + strings.Repeat("x", 10) + "\n", true, ""},
		{strings.Repeat("x", 9), false, "at least 10 characters. Current length: 9 characters."},
		{"  " + strings.Repeat("x", 9) + "  ", false, "Current length: 9 characters."},
		{strings.Repeat("é", 9), false, "Current length: 9 characters."},
		{strings.Repeat("x", 20), true, ""},
		{strings.Repeat("x", 21), false, "under 20 characters. Current length: 21"},
	}
	for _, tc := range cases {
		err := Validate(paragraph, session.Text(tc.input))
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: expected accept, got %v", tc.input, err)
			}
			continue
		}
		if err == nil || !strings.Contains(reason(t, err), tc.want) {
			t.Fatalf("%q: expected rejection containing %q, got %v", tc.input, tc.want, err)
		}
	}
}

func TestTextWithoutMaxIsUnbounded(t *testing.T) {
	q := catalog.Question{ID: "T", Modality: catalog.ShortText, Rule: catalog.ValidationRule{Required: true, MinLength: 5}}
	if err := Validate(q, session.Text(strings.Repeat("x", 10000))); err != nil {
		t.Fatalf("expected accept, got %v", err)
	}
	if err := Validate(q, session.List("hello")); err == nil {
		t.Fatalf("expected list rejected for text question")
	}
}

func TestFileUploadOnlyChecksPresence(t *testing.T) {
	if err := Validate(upload, session.Files(session.FileReference{OriginalFilename: "a.jpg", SizeBytes: 1})); err != nil {
		t.Fatalf("expected accept, got %v", err)
	}
}

func TestEmail(t *testing.T) {
	valid := []string{"user@example.com", "a@b.co", "  first.last+tag@sub.example.org  "}
	for _, v := range valid {
		got, err := Email(v)
		if err != nil {
			t.Fatalf("%q: expected valid, got %v", v, err)
		}
		if got != strings.TrimSpace(v) {
			t.Fatalf("%q: expected trimmed address, got %q", v, got)
		}
	}
	invalid := []string{"", "   ", "no-at-sign", "two@@at.com", "trailing@dot.", "user@example.c", "user@exa mple.com", "@example.com", "user@.c0m"}
	for _, v := range invalid {
		if _, err := Email(v); err == nil {
			t.Fatalf("%q: expected invalid", v)
		}
	}
}

func images(n int, size int64) []FileInfo {
	out := make([]FileInfo, n)
	for i := range out {
		out[i] = FileInfo{Name: fmt.Sprintf("ref-%02d.jpg", i+1), Size: size}
	}
	return out
}

func contains(problems []string, sub string) bool {
	for _, p := range problems {
		if strings.Contains(p, sub) {
			return true
		}
	}
	return false
}

func TestCheckBatch(t *testing.T) {
	rule, _ := catalog.Default().Lookup("Q45")
	r := rule.Rule

	if problems := CheckBatch(images(5, 2*catalog.MB), r); len(problems) != 0 {
		t.Fatalf("expected valid batch, got %v", problems)
	}
	if problems := CheckBatch(images(3, catalog.MB), r); !contains(problems, "at least 5") {
		t.Fatalf("expected minimum count problem, got %v", problems)
	}
	if problems := CheckBatch(images(18, catalog.MB), r); !contains(problems, "at most 15") {
		t.Fatalf("expected maximum count problem, got %v", problems)
	}

	big := []FileInfo{{Name: "huge.jpg", Size: 25 * catalog.MB}}
	problems := CheckBatch(big, r)
	found := false
	for _, p := range problems {
		if strings.Contains(p, "huge.jpg") && strings.Contains(p, "20MB") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected per-file size problem naming file and 20MB, got %v", problems)
	}

	if problems := CheckBatch(images(15, 15*catalog.MB), r); !contains(problems, "200MB") {
		t.Fatalf("expected total size problem, got %v", problems)
	}
}

func TestCheckBatchReportsEveryFailure(t *testing.T) {
	rule, _ := catalog.Default().Lookup("Q45")
	files := []FileInfo{
		{Name: "ok.png", Size: catalog.MB},
		{Name: "huge.webp", Size: 25 * catalog.MB},
		{Name: "notes.pdf", Size: catalog.MB},
		{Name: "README", Size: 10},
	}
	problems := CheckBatch(files, rule.Rule)
	for _, want := range []string{"at least 5", "huge.webp", "'application/pdf' not allowed", "Could not determine file type for 'README'"} {
		if !contains(problems, want) {
			t.Fatalf("expected a problem containing %q, got %v", want, problems)
		}
	}
	seen := map[string]bool{}
	for _, p := range problems {
		seen[p] = true
	}
	if len(seen) < 2 || len(seen) != len(problems) {
		t.Fatalf("expected distinct problems, got %v", problems)
	}
}

func TestCheckBatchEmptyFile(t *testing.T) {
	problems := CheckBatch([]FileInfo{{Name: "blank.png", Size: 0}}, catalog.ValidationRule{})
	if !contains(problems, "blank.png' is empty") {
		t.Fatalf("expected empty file problem, got %v", problems)
	}
}

func TestMIMEType(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":   "image/jpeg",
		"PHOTO.JPEG":  "image/jpeg",
		"pic.png":     "image/png",
		"art.webp":    "image/webp",
		"doc.pdf":     "application/pdf",
		"noextension": "",
		"weird.zzzq":  "",
	}
	for name, want := range cases {
		if got := MIMEType(name); got != want {
			t.Fatalf("MIMEType(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestFormatMB(t *testing.T) {
	if got := FormatMB(20 * catalog.MB); got != "20MB" {
		t.Fatalf("got %q", got)
	}
	if got := FormatMB(catalog.MB + catalog.MB/2); got != "1.50MB" {
		t.Fatalf("got %q", got)
	}
}

func TestOversizedBatch(t *testing.T) {
	rule := catalog.ValidationRule{MaxTotalSizeBytes: 200 * catalog.MB}
	got := OversizedBatch(rule, 220*catalog.MB)
	want := "Total upload size exceeds 200MB limit. Current total: more than 220.00MB"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	got = OversizedBatch(catalog.ValidationRule{}, 10*catalog.MB)
	if !strings.HasPrefix(got, "Total upload size exceeds 10MB limit.") {
		t.Fatalf("expected body cap as limit without a rule, got %q", got)
	}
}
