package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"birthday_reminder/internal/domain/birthday"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// document is the structured (YAML or TOML) birthday file layout:
//
//	birthdays:
//	  - name: Ada
//	    date: "1990-12-10"
type document struct {
	Birthdays []record `yaml:"birthdays" toml:"birthdays"`
}

type record struct {
	Name string `yaml:"name" toml:"name"`
	Date string `yaml:"date" toml:"date"`
}

// File reads birthdays from a file. The format follows the extension:
// .yaml/.yml and .toml are structured, anything else uses the line format.
type File struct {
	Path string
}

func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) Load(ctx context.Context) ([]birthday.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read birthday file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".yaml", ".yml":
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML birthday file %s: %w", f.Path, err)
		}
		return fromRecords(doc.Birthdays, f.Path)
	case ".toml":
		var doc document
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse TOML birthday file %s: %w", f.Path, err)
		}
		return fromRecords(doc.Birthdays, f.Path)
	default:
		return parseLines(bytes.NewReader(data), f.Path)
	}
}

// fromRecords converts structured records; the record index stands in for a line number.
func fromRecords(records []record, origin string) ([]birthday.Entry, error) {
	entries := make([]birthday.Entry, 0, len(records))
	var problems []error
	for i, rec := range records {
		entry, err := NewEntry(rec.Date, rec.Name)
		if err != nil {
			problems = append(problems, &birthday.RecordError{Origin: origin, Line: i + 1, Err: err})
			continue
		}
		entries = append(entries, entry)
	}
	return entries, errors.Join(problems...)
}

var _ birthday.Source = (*File)(nil)
