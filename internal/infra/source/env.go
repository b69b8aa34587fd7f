package source

import (
	"context"
	"strings"

	"birthday_reminder/internal/domain/birthday"
)

// Env reads birthdays in the line format from a string, typically the
// BIRTHDAYS environment variable. Entries are separated by newlines or ';'.
type Env struct {
	Name  string // variable name, used in error messages
	Value string
}

func NewEnv(name, value string) *Env {
	return &Env{Name: name, Value: value}
}

func (e *Env) Load(ctx context.Context) ([]birthday.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	normalized := strings.ReplaceAll(e.Value, ";", "\n")
	return parseLines(strings.NewReader(normalized), e.Name)
}

var _ birthday.Source = (*Env)(nil)
