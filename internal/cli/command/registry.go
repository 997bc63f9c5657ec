package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"codearena/internal/cli/app"
	"codearena/internal/model"
)

var (
	conceptField    = Field{Name: "concept", Aliases: []string{"c", "topic"}, Prompt: "concept", Type: FieldString}
	languageField   = Field{Name: "language", Aliases: []string{"lang", "l"}, Prompt: "language", Type: FieldString}
	codeFileField   = Field{Name: "file", Aliases: []string{"code_file", "source_file"}, Prompt: "file", Type: FieldFile}
	complexityField = Field{Name: "complexity", Aliases: []string{"level"}, Prompt: "complexity (EASY, MEDIUM, HARD)", Type: FieldString}
)

// Registry returns all CLI commands keyed by "service action".
func Registry() map[string]Command {
	commands := []Command{
		{
			Service: "problem",
			Action:  "new",
			Usage:   "Generate a problem for a concept and cache it",
			Fields: []Field{
				required(conceptField),
				complexityField,
			},
			Run: func(ctx context.Context, a *app.App, p Params) error {
				_, err := a.NewProblem(ctx, p.Get("concept"), p.Get("complexity"))
				return err
			},
		},
		{
			Service: "problem",
			Action:  "show",
			Usage:   "Print the cached problem for a concept",
			Fields:  []Field{conceptField},
			Run: func(ctx context.Context, a *app.App, p Params) error {
				return a.ShowProblem(ctx, p.Get("concept"))
			},
		},
		{
			Service: "problem",
			Action:  "list",
			Usage:   "List concepts with a cached problem",
			Run: func(ctx context.Context, a *app.App, _ Params) error {
				categories := a.Categories(ctx)
				if len(categories) == 0 {
					fmt.Fprintln(a.Out(), "no cached problems")
					return nil
				}
				sort.Strings(categories)
				for _, c := range categories {
					if name := model.CategoryDisplayName(c); name != c {
						fmt.Fprintf(a.Out(), "%s (%s)\n", name, c)
						continue
					}
					fmt.Fprintln(a.Out(), c)
				}
				return nil
			},
		},
		{
			Service: "problem",
			Action:  "categories",
			Usage:   "List the practice catalog",
			Run: func(_ context.Context, a *app.App, _ Params) error {
				for _, c := range model.Categories {
					fmt.Fprintf(a.Out(), "%-34s %s\n", c.Name, c.Value)
				}
				return nil
			},
		},
		{
			Service: "problem",
			Action:  "clear",
			Usage:   "Drop the cached problem for a concept, or all of them",
			Fields:  []Field{conceptField},
			Run: func(ctx context.Context, a *app.App, p Params) error {
				a.ClearProblems(ctx, p.Get("concept"))
				return nil
			},
		},
		{
			Service: "problem",
			Action:  "boilerplate",
			Usage:   "Print or save the starter code of the cached problem",
			Fields: []Field{
				conceptField,
				languageField,
				{Name: "out", Aliases: []string{"o"}, Prompt: "output path", Type: FieldFile},
			},
			Run: func(ctx context.Context, a *app.App, p Params) error {
				code, err := a.Boilerplate(ctx, p.Get("concept"), p.Get("language"))
				if err != nil {
					return err
				}
				if path := p.Get("out"); path != "" {
					if err := os.WriteFile(path, []byte(code), 0644); err != nil {
						return fmt.Errorf("write boilerplate failed: %w", err)
					}
					fmt.Fprintf(a.Out(), "wrote %s\n", path)
					return nil
				}
				fmt.Fprint(a.Out(), code)
				return nil
			},
		},
		{
			Service: "submit",
			Action:  "run",
			Usage:   "Judge a solution against the cached problem",
			Fields: []Field{
				{Name: "code", Aliases: []string{"source", "source_code"}, Prompt: "code", Type: FieldString, Required: true, FileField: "file"},
				codeFileField,
				conceptField,
				languageField,
			},
			Run: func(ctx context.Context, a *app.App, p Params) error {
				code, err := p.Text(Field{Name: "code", FileField: "file"})
				if err != nil {
					return err
				}
				_, err = a.Submit(ctx, p.Get("concept"), code, p.Get("language"))
				return err
			},
		},
		{
			Service: "chat",
			Action:  "send",
			Usage:   "Ask the coding assistant about the cached problem",
			Fields: []Field{
				{Name: "message", Aliases: []string{"m", "msg"}, Prompt: "message", Type: FieldString, Required: true},
				conceptField,
				{Name: "code", Aliases: []string{"source"}, Prompt: "code", Type: FieldString, FileField: "file"},
				codeFileField,
			},
			Run: func(ctx context.Context, a *app.App, p Params) error {
				code, err := p.Text(Field{Name: "code", FileField: "file"})
				if err != nil {
					return err
				}
				return a.Chat(ctx, p.Get("concept"), p.Get("message"), code)
			},
		},
		{
			Service: "chat",
			Action:  "history",
			Usage:   "Print this session's chat transcript",
			Run: func(_ context.Context, a *app.App, _ Params) error {
				for _, msg := range a.History() {
					fmt.Fprintf(a.Out(), "%s: %s\n", msg.Role, strings.TrimSpace(msg.Content))
				}
				return nil
			},
		},
		{
			Service: "chat",
			Action:  "reset",
			Usage:   "Clear this session's chat transcript",
			Run: func(_ context.Context, a *app.App, _ Params) error {
				a.ResetChat()
				fmt.Fprintln(a.Out(), "chat history cleared")
				return nil
			},
		},
	}

	registry := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		registry[cmd.Key()] = cmd
	}
	return registry
}

// Sorted returns the registry's commands ordered by key.
func Sorted(registry map[string]Command) []Command {
	keys := make([]string, 0, len(registry))
	for key := range registry {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	result := make([]Command, 0, len(keys))
	for _, key := range keys {
		result = append(result, registry[key])
	}
	return result
}

// IsTestFailure reports a judged run with failing tests, which is not a command error.
func IsTestFailure(err error) bool {
	return errors.Is(err, app.ErrTestsFailed)
}

func required(f Field) Field {
	f.Required = true
	return f
}
