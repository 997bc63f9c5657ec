package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"codearena/internal/chat"
	"codearena/internal/cli/config"
	"codearena/internal/cli/render"
	"codearena/internal/cli/state"
	"codearena/internal/common/cache"
	"codearena/internal/common/httpclient"
	"codearena/internal/model"
	"codearena/internal/problem"
	"codearena/internal/submission"
	pkgerrors "codearena/pkg/errors"
	"codearena/pkg/utils/logger"

	"go.uber.org/zap"
)

// ErrTestsFailed is returned by Submit when the judge finished but at least one test failed.
var ErrTestsFailed = stderrors.New("some tests failed")

// App wires the platform clients to terminal output. Both the one-shot
// commands and the REPL drive it.
type App struct {
	cfg      config.Config
	out      io.Writer
	client   *httpclient.Client
	store    cache.Store
	problems *problem.Cache
	gen      *problem.Generator
	chat     *chat.Client
	conv     *chat.Conversation
	renderer *render.Renderer
	rng      *rand.Rand

	mu      sync.Mutex
	state   state.SessionState
	results map[string]model.BatchResult
}

// Option customises an App.
type Option func(*App)

// WithRand fixes the source used to pick complexities.
func WithRand(rng *rand.Rand) Option {
	return func(a *App) {
		a.rng = rng
	}
}

func New(cfg config.Config, out io.Writer, opts ...Option) (*App, error) {
	a := &App{
		cfg:     cfg,
		out:     out,
		client:  httpclient.New(cfg.BaseURL, cfg.Timeout),
		results: make(map[string]model.BatchResult),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	store, err := cache.Open(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("open problem cache failed: %w", err)
	}
	a.store = store

	problems, err := problem.NewCache(a.store, problem.WithExpiry(cfg.Cache.TTL))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("create problem cache failed: %w", err)
	}
	renderer, err := render.New(cfg.Render.MarkdownEnabled(), cfg.Render.Style)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	st, err := state.Load(cfg.StatePath)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if st.UserID == "" {
		st.UserID = cfg.UserID
	}
	if st.Language == "" {
		st.Language = cfg.Language
	}

	a.problems = problems
	a.gen = problem.NewGenerator(a.client)
	a.chat = chat.NewClient(a.client)
	a.conv = chat.NewConversation(a.chat)
	a.renderer = renderer
	a.state = st
	return a, nil
}

// Close releases the cache backend.
func (a *App) Close() error {
	return a.store.Close()
}

// Out is where command output goes.
func (a *App) Out() io.Writer {
	return a.out
}

func (a *App) Client() *httpclient.Client {
	return a.client
}

func (a *App) Config() config.Config {
	return a.cfg
}

// State returns a copy of the session state.
func (a *App) State() state.SessionState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Language is the session's current submission language.
func (a *App) Language() model.Language {
	lang, ok := model.LookupLanguage(a.State().Language)
	if !ok {
		return model.LanguageJava
	}
	return lang
}

// SetLanguage changes and persists the session language.
func (a *App) SetLanguage(value string) (model.Language, error) {
	lang, ok := model.LookupLanguage(value)
	if !ok {
		return model.Language{}, pkgerrors.Newf(pkgerrors.LanguageNotSupported, "unsupported language %q (use java or python)", value)
	}
	a.mu.Lock()
	a.state.Language = lang.Name
	a.state.UpdatedAt = time.Now()
	a.mu.Unlock()
	a.saveState()
	return lang, nil
}

// NewProblem generates a problem, caches it under concept and prints it.
// An empty complexity picks one at random.
func (a *App) NewProblem(ctx context.Context, concept, complexity string) (model.Problem, error) {
	concept, err := a.resolveConcept(concept)
	if err != nil {
		return model.Problem{}, err
	}
	if strings.TrimSpace(complexity) == "" {
		complexity = problem.PickComplexity(concept, a.rng)
	}

	p, err := a.gen.Generate(ctx, concept, complexity)
	if err != nil {
		return model.Problem{}, err
	}
	a.problems.Set(ctx, concept, p)
	normalized, _ := model.NormalizeComplexity(complexity)

	a.mu.Lock()
	a.state.Touch(concept, normalized)
	delete(a.results, concept)
	a.mu.Unlock()
	a.saveState()

	fmt.Fprintln(a.out, a.renderer.Problem(p))
	return p, nil
}

// ShowProblem prints the cached problem for concept.
func (a *App) ShowProblem(ctx context.Context, concept string) error {
	cached, err := a.cached(ctx, concept)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.renderer.Problem(cached.Problem))
	fmt.Fprintf(a.out, "cached %s\n", cached.CachedAt().Format(time.RFC822))
	return nil
}

// ClearProblems drops the cached problem for concept, or all of them when concept is empty.
func (a *App) ClearProblems(ctx context.Context, concept string) {
	concept = model.CanonicalConcept(concept)
	a.problems.Clear(ctx, concept)
	a.mu.Lock()
	if concept == "" {
		a.results = make(map[string]model.BatchResult)
	} else {
		delete(a.results, concept)
	}
	a.mu.Unlock()
	if concept == "" {
		fmt.Fprintln(a.out, "cleared all cached problems")
		return
	}
	fmt.Fprintf(a.out, "cleared cached problem for %s\n", concept)
}

// Categories lists the concepts with a cached problem.
func (a *App) Categories(ctx context.Context) []string {
	return a.problems.Categories(ctx)
}

// Boilerplate returns the starter code of the cached problem.
func (a *App) Boilerplate(ctx context.Context, concept, language string) (string, error) {
	cached, err := a.cached(ctx, concept)
	if err != nil {
		return "", err
	}
	lang, err := a.language(language)
	if err != nil {
		return "", err
	}
	code := cached.Boilerplate(lang)
	if code == "" {
		return "", pkgerrors.Newf(pkgerrors.NotFound, "no %s boilerplate for %q", lang.DisplayName, cached.ProblemTitle)
	}
	return code, nil
}

// Submit judges code against the cached problem and prints the results.
// It returns ErrTestsFailed when the judge completed but not every test passed.
func (a *App) Submit(ctx context.Context, concept, code, language string) (model.BatchResult, error) {
	cached, err := a.cached(ctx, concept)
	if err != nil {
		return model.BatchResult{}, err
	}
	lang, err := a.language(language)
	if err != nil {
		return model.BatchResult{}, err
	}
	complexity := a.complexityFor(cached)
	req, err := submission.BuildRequest(cached.Problem, lang, code, cached.Category, complexity)
	if err != nil {
		return model.BatchResult{}, err
	}

	poller := submission.NewPoller(a.client, submission.PollOptions{
		Interval:    a.cfg.Poll.Interval,
		MaxAttempts: a.cfg.Poll.MaxAttempts,
		Timeout:     a.cfg.Poll.Timeout,
		Observer: func(attempt int, _ model.BatchResult) {
			logger.Debug(ctx, "judge still running", zap.Int("attempt", attempt))
		},
	})
	svc := submission.NewService(submission.NewSubmitter(a.client), poller)

	fmt.Fprintf(a.out, "Judging %s solution for %q...\n", lang.DisplayName, cached.ProblemTitle)
	result, err := svc.Run(ctx, req)
	if err != nil {
		return model.BatchResult{}, err
	}

	a.mu.Lock()
	a.results[cached.Category] = result
	a.mu.Unlock()

	fmt.Fprint(a.out, a.renderer.Results(result))
	if !result.Passed {
		return result, ErrTestsFailed
	}
	return result, nil
}

// Chat streams the assistant's reply about the cached problem to the output.
// A failed exchange prints the apology and returns the error.
func (a *App) Chat(ctx context.Context, concept, message, code string) error {
	pctx := model.ProblemContext{UserID: a.State().UserID}
	if cached, err := a.cached(ctx, concept); err == nil {
		var last *model.BatchResult
		a.mu.Lock()
		if r, ok := a.results[cached.Category]; ok {
			last = &r
		}
		a.mu.Unlock()
		pctx = model.NewProblemContext(a.State().UserID, a.complexityFor(cached), cached.Problem, a.Language(), code, last)
	} else if strings.TrimSpace(concept) != "" {
		pctx.Concept = concept
		pctx.CurrentCode = code
	}

	streamed := false
	_, err := a.conv.Ask(ctx, message, pctx, func(chunk string) {
		streamed = true
		fmt.Fprint(a.out, chunk)
	})
	if pkgerrors.Is(err, pkgerrors.ChatMessageEmpty) {
		return err
	}
	if err != nil {
		if streamed {
			fmt.Fprintln(a.out)
		}
		fmt.Fprintln(a.out, chat.ApologyMessage)
		return err
	}
	fmt.Fprintln(a.out)
	return nil
}

// History returns the chat transcript of this session.
func (a *App) History() []model.ChatMessage {
	return a.conv.Messages()
}

// ResetChat clears the chat transcript.
func (a *App) ResetChat() {
	a.conv.Reset()
}

func (a *App) cached(ctx context.Context, concept string) (problem.CachedProblem, error) {
	concept, err := a.resolveConcept(concept)
	if err != nil {
		return problem.CachedProblem{}, err
	}
	cached, ok := a.problems.Get(ctx, concept)
	if !ok {
		return problem.CachedProblem{}, pkgerrors.Newf(pkgerrors.ProblemNotFound,
			"no cached problem for %q, run \"problem new %s\" first", concept, concept)
	}
	return cached, nil
}

func (a *App) resolveConcept(concept string) (string, error) {
	concept = model.CanonicalConcept(concept)
	if concept != "" {
		return concept, nil
	}
	if last := a.State().LastConcept; last != "" {
		return last, nil
	}
	return "", pkgerrors.ValidationError("concept", "required").WithMessage("concept is required")
}

func (a *App) language(value string) (model.Language, error) {
	if strings.TrimSpace(value) == "" {
		return a.Language(), nil
	}
	lang, ok := model.LookupLanguage(value)
	if !ok {
		return model.Language{}, pkgerrors.Newf(pkgerrors.LanguageNotSupported, "unsupported language %q (use java or python)", value)
	}
	return lang, nil
}

func (a *App) complexityFor(cached problem.CachedProblem) string {
	st := a.State()
	if st.LastConcept == cached.Category && st.LastComplexity != "" {
		return st.LastComplexity
	}
	if c, ok := model.NormalizeComplexity(cached.Difficulty); ok {
		return c
	}
	return ""
}

func (a *App) saveState() {
	st := a.State()
	if err := state.Save(a.cfg.StatePath, st); err != nil {
		logger.Warn(context.Background(), "save session state failed", zap.Error(err))
	}
}
