package render

import (
	"fmt"
	"strings"

	"codearena/internal/model"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const defaultWordWrap = 100

// Renderer formats problems and judge results for the terminal.
type Renderer struct {
	md *glamour.TermRenderer

	title  lipgloss.Style
	muted  lipgloss.Style
	passed lipgloss.Style
	failed lipgloss.Style
	code   lipgloss.Style
}

// New builds a renderer. With markdown off, statements are printed as-is.
func New(markdown bool, style string) (*Renderer, error) {
	r := &Renderer{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),
		passed: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		failed: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		code:   lipgloss.NewStyle().PaddingLeft(4),
	}
	if !markdown {
		return r, nil
	}

	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	md, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(defaultWordWrap))
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer failed: %w", err)
	}
	r.md = md
	return r, nil
}

// Markdown renders text, falling back to the raw text on failure.
func (r *Renderer) Markdown(text string) string {
	if r.md == nil {
		return text
	}
	out, err := r.md.Render(text)
	if err != nil {
		return text
	}
	return out
}

// Problem formats a generated problem with its sample test cases.
func (r *Renderer) Problem(p model.Problem) string {
	var b strings.Builder
	b.WriteString(r.title.Render(p.ProblemTitle))
	b.WriteString("\n")

	meta := []string{}
	if p.Difficulty != "" {
		meta = append(meta, p.Difficulty)
	}
	if p.Concept != "" {
		meta = append(meta, model.CategoryDisplayName(p.Concept))
	}
	if len(p.Tags) > 0 {
		meta = append(meta, "tags: "+strings.Join(p.Tags, ", "))
	}
	if len(meta) > 0 {
		b.WriteString(r.muted.Render(strings.Join(meta, " · ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(r.Markdown(p.ProblemStatement), "\n"))
	b.WriteString("\n")

	for i, tc := range p.TestCases {
		inputs := make([]string, 0, len(tc.Input))
		for _, in := range tc.Input {
			inputs = append(inputs, string(in))
		}
		fmt.Fprintf(&b, "\nExample %d\n", i+1)
		b.WriteString(r.code.Render("input:  " + strings.Join(inputs, ", ")))
		b.WriteString("\n")
		b.WriteString(r.code.Render("output: " + string(tc.Output)))
		b.WriteString("\n")
	}
	return b.String()
}

// Results formats a completed batch, one line per test case plus details for failures.
func (r *Renderer) Results(res model.BatchResult) string {
	var b strings.Builder
	failed := res.Failed()
	if res.Passed {
		b.WriteString(r.passed.Render(fmt.Sprintf("All %d tests passed", len(res.Results))))
	} else {
		b.WriteString(r.failed.Render(fmt.Sprintf("%d of %d tests failed", len(failed), len(res.Results))))
	}
	b.WriteString("\n")

	for _, tc := range res.Results {
		mark := r.passed.Render("PASS")
		if !tc.Passed {
			mark = r.failed.Render("FAIL")
		}
		fmt.Fprintf(&b, "%s  Test %d  %s\n", mark, tc.TestCaseIndex+1, tc.Status.Description)
		if tc.Passed {
			continue
		}
		if tc.ExpectedOutput != nil {
			b.WriteString(r.code.Render("expected: " + *tc.ExpectedOutput))
			b.WriteString("\n")
		}
		if tc.Stdout != nil {
			b.WriteString(r.code.Render("actual:   " + strings.TrimRight(*tc.Stdout, "\n")))
			b.WriteString("\n")
		}
		for _, extra := range []*string{tc.CompileOutput, tc.Stderr} {
			if extra != nil && strings.TrimSpace(*extra) != "" {
				b.WriteString(r.code.Render(strings.TrimRight(*extra, "\n")))
				b.WriteString("\n")
			}
		}
		if tc.Error != "" && tc.CompileOutput == nil {
			b.WriteString(r.code.Render("error: " + tc.Error))
			b.WriteString("\n")
		}
	}
	return b.String()
}
