package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"codearena/internal/cli/app"
)

// FieldType describes input type.
type FieldType int

const (
	FieldString FieldType = iota
	FieldFile
)

// Field defines a CLI input field.
type Field struct {
	Name     string
	Aliases  []string
	Prompt   string
	Type     FieldType
	Required bool
	// FileField names a FieldFile whose contents can stand in for this field.
	FileField string
}

// Handler runs a command against the app.
type Handler func(ctx context.Context, a *app.App, p Params) error

// Command defines a CLI command binding.
type Command struct {
	Service string
	Action  string
	Usage   string
	Fields  []Field
	Run     Handler
}

// Key is the "service action" registry key.
func (c Command) Key() string {
	return c.Service + " " + c.Action
}

// Missing lists required fields that have no value yet.
func (c Command) Missing(p Params) []Field {
	var missing []Field
	for _, field := range c.Fields {
		if !field.Required || strings.TrimSpace(p.Get(field.Name)) != "" {
			continue
		}
		if field.FileField != "" && strings.TrimSpace(p.Get(field.FileField)) != "" {
			continue
		}
		missing = append(missing, field)
	}
	return missing
}

// Params holds parsed input params.
type Params map[string]string

func (p Params) Get(key string) string {
	return p[strings.ToLower(key)]
}

func (p Params) Set(key, value string) {
	p[strings.ToLower(key)] = value
}

func (p Params) Has(key string) bool {
	_, ok := p[strings.ToLower(key)]
	return ok
}

func (p Params) Canonicalize(fields []Field) {
	for _, field := range fields {
		for _, alias := range field.Aliases {
			aliasKey := strings.ToLower(alias)
			if value, ok := p[aliasKey]; ok {
				p[strings.ToLower(field.Name)] = value
				delete(p, aliasKey)
			}
		}
	}
}

// Text returns the field value, reading its FileField when that is set instead.
func (p Params) Text(field Field) (string, error) {
	if field.FileField != "" {
		if path := p.Get(field.FileField); path != "" {
			return ReadFile(path)
		}
	}
	return p.Get(field.Name), nil
}

// ParseArgs turns "key=value" tokens into params. A single bare token fills the
// command's first field.
func ParseArgs(cmd Command, tokens []string) (Params, error) {
	params := Params{}
	positional := false
	for _, token := range tokens {
		parts := strings.SplitN(token, "=", 2)
		if len(parts) == 2 {
			params.Set(parts[0], parts[1])
			continue
		}
		if positional || len(cmd.Fields) == 0 {
			return nil, fmt.Errorf("invalid param: %s", token)
		}
		params.Set(cmd.Fields[0].Name, token)
		positional = true
	}
	params.Canonicalize(cmd.Fields)
	for key := range params {
		if !cmd.hasField(key) {
			return nil, fmt.Errorf("unknown param %q for %s", key, cmd.Key())
		}
	}
	return params, nil
}

func (c Command) hasField(name string) bool {
	for _, field := range c.Fields {
		if strings.EqualFold(field.Name, name) {
			return true
		}
	}
	return false
}

func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file failed: %w", err)
	}
	return string(data), nil
}
