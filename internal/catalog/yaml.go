package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// document mirrors the on-disk catalog layout. Sizes are given in megabytes
// and required defaults to true, so a minimal entry only needs id, text and
// type.
type document struct {
	Questions []struct {
		ID          string   `yaml:"id"`
		Text        string   `yaml:"text"`
		Type        Modality `yaml:"type"`
		Description string   `yaml:"description"`
		Options     []string `yaml:"options"`
		Validation  struct {
			Required         *bool    `yaml:"required"`
			MinLength        int      `yaml:"min_length"`
			MaxLength        int      `yaml:"max_length"`
			MinSelections    int      `yaml:"min_selections"`
			MaxSelections    int      `yaml:"max_selections"`
			AllowedFileTypes []string `yaml:"allowed_file_types"`
			MaxFileSizeMB    int64    `yaml:"max_file_size_mb"`
			MaxTotalSizeMB   int64    `yaml:"max_total_size_mb"`
			MinFiles         int      `yaml:"min_files"`
			MaxFiles         int      `yaml:"max_files"`
		} `yaml:"validation"`
	} `yaml:"questions"`
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("decode catalog: no questions")
	}
	questions := make([]Question, 0, len(doc.Questions))
	for _, q := range doc.Questions {
		v := q.Validation
		rule := ValidationRule{
			Required:          v.Required == nil || *v.Required,
			MinLength:         v.MinLength,
			MaxLength:         v.MaxLength,
			MinSelections:     v.MinSelections,
			MaxSelections:     v.MaxSelections,
			AllowedFileTypes:  v.AllowedFileTypes,
			MaxFileSizeBytes:  v.MaxFileSizeMB * MB,
			MaxTotalSizeBytes: v.MaxTotalSizeMB * MB,
			MinFiles:          v.MinFiles,
			MaxFiles:          v.MaxFiles,
		}
		questions = append(questions, Question{
			ID:          q.ID,
			Text:        q.Text,
			Modality:    q.Type,
			Description: q.Description,
			Options:     q.Options,
			Rule:        rule,
		})
	}
	return New(questions...)
}

// Load reads and parses a YAML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault reads path, or returns the built-in catalog when path is empty.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
