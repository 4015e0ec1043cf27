package validation

import (
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/dharsanguruparan/CreativeBrief/internal/catalog"
)

// FileInfo is the metadata CheckBatch needs about one candidate upload.
type FileInfo struct {
	Name string
	Size int64
}

// CheckBatch validates a set of uploads against rule. Checks run in order:
// file count, combined size, then size and type of every file. Nothing
// short-circuits, so the returned slice lists every problem found. An empty
// result means the batch may be uploaded.
func CheckBatch(files []FileInfo, rule catalog.ValidationRule) []string {
	var problems []string
	n := len(files)
	if rule.MinFiles > 0 && n < rule.MinFiles {
		problems = append(problems, fmt.Sprintf("Please upload at least %d file(s). Currently: %d file(s).", rule.MinFiles, n))
	}
	if rule.MaxFiles > 0 && n > rule.MaxFiles {
		problems = append(problems, fmt.Sprintf("Please upload at most %d file(s). Currently: %d file(s).", rule.MaxFiles, n))
	}

	var total int64
	for _, f := range files {
		total += f.Size
	}
	if rule.MaxTotalSizeBytes > 0 && total > rule.MaxTotalSizeBytes {
		problems = append(problems, fmt.Sprintf("Total upload size exceeds %s limit. Current total: %.2fMB",
			FormatMB(rule.MaxTotalSizeBytes), float64(total)/catalog.MB))
	}

	for _, f := range files {
		if f.Size <= 0 {
			problems = append(problems, fmt.Sprintf("File '%s' is empty.", f.Name))
		} else if rule.MaxFileSizeBytes > 0 && f.Size > rule.MaxFileSizeBytes {
			problems = append(problems, fmt.Sprintf("File '%s' exceeds %s limit.", f.Name, FormatMB(rule.MaxFileSizeBytes)))
		}
		if len(rule.AllowedFileTypes) == 0 {
			continue
		}
		mimeType := MIMEType(f.Name)
		switch {
		case mimeType == "":
			problems = append(problems, fmt.Sprintf("Could not determine file type for '%s'.", f.Name))
		case !allowed(mimeType, rule.AllowedFileTypes):
			problems = append(problems, fmt.Sprintf("File type '%s' not allowed for '%s'. Allowed types: %s",
				mimeType, f.Name, strings.Join(rule.AllowedFileTypes, ", ")))
		}
	}
	return problems
}

// OversizedBatch reports a batch that was cut off after read bytes, before
// every file could be measured. limit is the smaller of the rule's total and
// read when the rule sets one, and read otherwise.
func OversizedBatch(rule catalog.ValidationRule, read int64) string {
	limit := read
	if rule.MaxTotalSizeBytes > 0 && rule.MaxTotalSizeBytes < read {
		limit = rule.MaxTotalSizeBytes
	}
	return fmt.Sprintf("Total upload size exceeds %s limit. Current total: more than %.2fMB",
		FormatMB(limit), float64(read)/catalog.MB)
}

// extensionTypes pins the types that matter for uploads so results do not
// depend on the host's mime tables.
var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".jpe":  "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".heic": "image/heic",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".mp4":  "video/mp4",
	".mp3":  "audio/mpeg",
	".js":   "text/javascript",
	".json": "application/json",
}

// MIMEType derives a media type from the filename extension alone. File
// contents are not inspected. It returns "" when the extension is unknown.
func MIMEType(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		return ""
	}
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	t := mime.TypeByExtension(ext)
	if t == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(t); err == nil {
		return mediaType
	}
	return t
}

// FormatMB renders a byte count as a whole "NMB" label when it is an exact
// multiple of a megabyte and with two decimals otherwise.
func FormatMB(n int64) string {
	if n%catalog.MB == 0 {
		return fmt.Sprintf("%dMB", n/catalog.MB)
	}
	return fmt.Sprintf("%.2fMB", float64(n)/catalog.MB)
}

func allowed(mimeType string, types []string) bool {
	for _, t := range types {
		if strings.EqualFold(t, mimeType) {
			return true
		}
	}
	return false
}
