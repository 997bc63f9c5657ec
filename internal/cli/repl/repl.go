package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"codearena/internal/cli/app"
	"codearena/internal/cli/command"
	pkgerrors "codearena/pkg/errors"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
)

const prompt = "arena> "

// PromptFunc asks the user for a missing value.
type PromptFunc func(label string) (string, error)

// Session holds REPL state.
type Session struct {
	app      *app.App
	commands map[string]command.Command
	out      io.Writer
	prompt   PromptFunc
	rl       *readline.Instance
}

// Option customises a Session.
type Option func(*Session)

// WithPrompter replaces the readline prompt used for missing fields.
func WithPrompter(p PromptFunc) Option {
	return func(s *Session) {
		s.prompt = p
	}
}

func New(a *app.App, commands map[string]command.Command, opts ...Option) *Session {
	s := &Session{
		app:      a,
		commands: commands,
		out:      a.Out(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads commands until exit, EOF or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     filepath.Join(filepath.Dir(s.app.Config().StatePath), "history"),
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline failed: %w", err)
	}
	defer rl.Close()
	s.rl = rl
	if s.prompt == nil {
		s.prompt = s.readlinePrompt
	}

	s.printLine("type \"help\" for commands")
	for ctx.Err() == nil {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input failed: %w", err)
		}

		exit, err := s.Execute(ctx, line)
		if err != nil {
			s.printLine("error: %v", err)
		}
		if exit {
			return nil
		}
	}
	return nil
}

// Execute runs one input line. exit is true when the user asked to leave.
func (s *Session) Execute(ctx context.Context, line string) (exit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if handled, exit := s.handleSystemCommand(line); handled {
		return exit, nil
	}
	return false, s.handleCommand(ctx, line)
}

func (s *Session) handleSystemCommand(line string) (handled, exit bool) {
	switch line {
	case "exit", "quit":
		s.printLine("bye")
		return true, true
	case "help":
		s.printHelp()
		return true, false
	}
	if strings.HasPrefix(line, "set ") {
		s.handleSet(strings.TrimSpace(strings.TrimPrefix(line, "set ")))
		return true, false
	}
	if strings.HasPrefix(line, "show ") {
		s.handleShow(strings.TrimSpace(strings.TrimPrefix(line, "show ")))
		return true, false
	}
	return false, false
}

func (s *Session) handleSet(args string) {
	parts := strings.Fields(args)
	if len(parts) == 0 {
		s.printLine("usage: set base|timeout|language")
		return
	}
	switch parts[0] {
	case "base":
		if len(parts) < 2 {
			s.printLine("usage: set base http://localhost:8000/api")
			return
		}
		s.app.Client().SetBaseURL(parts[1])
		s.printLine("base set to %s", parts[1])
	case "timeout":
		if len(parts) < 2 {
			s.printLine("usage: set timeout 10s")
			return
		}
		dur, err := time.ParseDuration(parts[1])
		if err != nil {
			s.printLine("invalid duration: %v", err)
			return
		}
		s.app.Client().SetTimeout(dur)
		s.printLine("timeout set to %s", dur)
	case "language", "lang":
		if len(parts) < 2 {
			s.printLine("usage: set language java|python")
			return
		}
		lang, err := s.app.SetLanguage(parts[1])
		if err != nil {
			s.printLine("%v", err)
			return
		}
		s.printLine("language set to %s", lang.DisplayName)
	default:
		s.printLine("unknown set command")
	}
}

func (s *Session) handleShow(args string) {
	switch args {
	case "config":
		cfg := s.app.Config()
		s.printLine("base: %s", s.app.Client().BaseURL())
		s.printLine("timeout: %s", s.app.Client().Timeout())
		s.printLine("poll: every %s, at most %d attempts", cfg.Poll.Interval, cfg.Poll.MaxAttempts)
		s.printLine("cache: %s (ttl %s)", cfg.Cache.Backend, cfg.Cache.TTL)
		s.printLine("statePath: %s", cfg.StatePath)
	case "state":
		st := s.app.State()
		s.printLine("user: %s", st.UserID)
		s.printLine("language: %s", s.app.Language().DisplayName)
		if st.LastConcept == "" {
			s.printLine("concept: <none>")
			return
		}
		s.printLine("concept: %s (%s)", st.LastConcept, st.LastComplexity)
	default:
		s.printLine("usage: show config|state")
	}
}

func (s *Session) handleCommand(ctx context.Context, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) < 2 {
		return fmt.Errorf("invalid command, use: <service> <action> key=value ...")
	}
	key := fmt.Sprintf("%s %s", tokens[0], tokens[1])
	cmd, ok := s.commands[key]
	if !ok {
		return fmt.Errorf("unknown command: %s", key)
	}
	params, err := command.ParseArgs(cmd, tokens[2:])
	if err != nil {
		return err
	}
	if err := s.promptMissing(cmd, params); err != nil {
		return err
	}

	err = cmd.Run(ctx, s.app, params)
	if command.IsTestFailure(err) {
		return nil
	}
	return err
}

func (s *Session) promptMissing(cmd command.Command, params command.Params) error {
	for _, field := range cmd.Missing(params) {
		if s.prompt == nil {
			return pkgerrors.Newf(pkgerrors.RequiredFieldEmpty, "%s is required", field.Name)
		}
		value, err := s.prompt(field.Prompt)
		if err != nil {
			return err
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return pkgerrors.Newf(pkgerrors.RequiredFieldEmpty, "%s is required", field.Name)
		}
		params.Set(field.Name, value)
	}
	return nil
}

func (s *Session) readlinePrompt(label string) (string, error) {
	s.rl.SetPrompt(label + ": ")
	defer s.rl.SetPrompt(prompt)
	line, err := s.rl.Readline()
	if err != nil {
		return "", fmt.Errorf("read input failed: %w", err)
	}
	return line, nil
}

func (s *Session) completer() *readline.PrefixCompleter {
	services := map[string][]readline.PrefixCompleterInterface{}
	var order []string
	for _, cmd := range command.Sorted(s.commands) {
		if _, ok := services[cmd.Service]; !ok {
			order = append(order, cmd.Service)
		}
		services[cmd.Service] = append(services[cmd.Service], readline.PcItem(cmd.Action))
	}
	items := make([]readline.PrefixCompleterInterface, 0, len(order)+5)
	for _, service := range order {
		items = append(items, readline.PcItem(service, services[service]...))
	}
	items = append(items,
		readline.PcItem("set", readline.PcItem("base"), readline.PcItem("timeout"), readline.PcItem("language")),
		readline.PcItem("show", readline.PcItem("config"), readline.PcItem("state")),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
	return readline.NewPrefixCompleter(items...)
}

func (s *Session) printHelp() {
	s.printLine("usage: <service> <action> [value] key=value ...")
	for _, cmd := range command.Sorted(s.commands) {
		s.printLine("  %-20s %s", cmd.Key(), cmd.Usage)
	}
	s.printLine("system: help | exit | set base|timeout|language | show config|state")
	s.printLine("examples:")
	s.printLine("  problem new arrays complexity=EASY")
	s.printLine("  submit run file=./Solution.java language=java")
	s.printLine("  chat send \"why does test 2 fail?\" file=./Solution.java")
}

func (s *Session) printLine(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.out, format+"\n", args...)
}
