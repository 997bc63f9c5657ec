package mockserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"codearena/internal/model"
	pkgerrors "codearena/pkg/errors"
	"codearena/pkg/utils/logger"
	"codearena/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type handler struct {
	cfg   Config
	store *store
}

func (h *handler) generate(c *gin.Context) {
	var req model.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	concept := strings.TrimSpace(req.Concept)
	if concept == "" {
		response.Error(c, pkgerrors.ValidationError("concept", "required").WithMessage("concept is required"))
		return
	}
	complexity, ok := model.NormalizeComplexity(req.Complexity)
	if !ok {
		response.Error(c, pkgerrors.ValidationError("complexity", "unknown").
			WithMessage(fmt.Sprintf("unknown complexity %q", req.Complexity)))
		return
	}
	logger.Info(c.Request.Context(), "generating canned problem", zap.String("concept", concept), zap.String("complexity", complexity))
	response.Success(c, cannedProblem(concept, complexity))
}

func (h *handler) submit(c *gin.Context) {
	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if _, ok := model.LookupLanguage(req.LanguageID); !ok {
		response.Error(c, pkgerrors.Newf(pkgerrors.LanguageNotSupported, "unsupported language_id %q", req.LanguageID))
		return
	}
	if len(req.TestCases) == 0 {
		response.Error(c, pkgerrors.ValidationError("test_cases", "required").WithMessage("test_cases must not be empty"))
		return
	}
	if !json.Valid([]byte(req.Structure)) {
		response.Error(c, pkgerrors.New(pkgerrors.InvalidFormat).WithMessage("structure must be a JSON string"))
		return
	}

	ctx := c.Request.Context()
	emptySource := strings.TrimSpace(req.SourceCode) == ""
	tokens := make([]model.SubmissionToken, 0, len(req.TestCases))
	for i, tc := range req.TestCases {
		token := uuid.NewString()
		rec := submissionRecord{
			Index:       i,
			Expected:    tc.Output,
			LanguageID:  req.LanguageID,
			EmptySource: emptySource,
			SubmittedAt: time.Now(),
		}
		if err := h.store.saveSubmission(ctx, token, rec); err != nil {
			response.Error(c, err)
			return
		}
		tokens = append(tokens, model.SubmissionToken{Token: token})
	}
	logger.Info(ctx, "submission accepted", zap.String("language_id", req.LanguageID), zap.Int("tokens", len(tokens)))
	response.Success(c, tokens)
}

func (h *handler) status(c *gin.Context) {
	var req model.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if len(req.Tokens) == 0 {
		response.Error(c, pkgerrors.New(pkgerrors.NoSubmissionTokens))
		return
	}

	ctx := c.Request.Context()
	polls, err := h.store.countPoll(ctx, req.Tokens)
	if err != nil {
		response.Error(c, err)
		return
	}
	if int(polls) <= h.cfg.Judge.PendingPolls {
		logger.Debug(ctx, "submission still running", zap.Int64("poll", polls))
		response.Success(c, pendingBatch(req.Tokens, polls))
		return
	}

	batch := model.BatchResult{Completed: true, Passed: true, Results: make([]model.TestCaseResult, 0, len(req.Tokens))}
	for i, token := range req.Tokens {
		rec, found, err := h.store.loadSubmission(ctx, token)
		if err != nil {
			response.Error(c, err)
			return
		}
		if !found {
			rec = submissionRecord{Index: i}
		}
		result := h.judge(token, rec)
		batch.Passed = batch.Passed && result.Passed
		batch.Results = append(batch.Results, result)
	}
	logger.Info(ctx, "submission finished", zap.Bool("passed", batch.Passed), zap.Int("results", len(batch.Results)))
	response.Success(c, batch)
}

func pendingBatch(tokens []string, polls int64) model.BatchResult {
	statusID := model.StatusProcessing
	if polls == 1 {
		statusID = model.StatusInQueue
	}
	batch := model.BatchResult{Results: make([]model.TestCaseResult, 0, len(tokens))}
	for i, token := range tokens {
		batch.Results = append(batch.Results, model.TestCaseResult{
			TestCaseIndex: i,
			Token:         token,
			Status:        model.NewJudgeStatus(statusID),
		})
	}
	return batch
}

func (h *handler) judge(token string, rec submissionRecord) model.TestCaseResult {
	result := model.TestCaseResult{TestCaseIndex: rec.Index, Token: token}
	expected := strings.TrimSpace(string(rec.Expected))
	if expected != "" {
		result.ExpectedOutput = &expected
	}

	switch {
	case rec.EmptySource:
		out := "error: source code is empty"
		result.Status = model.NewJudgeStatus(model.StatusCompilationError)
		result.CompileOutput = &out
		result.Error = out
	case h.failing(rec.Index):
		wrong := "0"
		result.Status = model.NewJudgeStatus(model.StatusWrongAnswer)
		result.Stdout = &wrong
	default:
		stdout := expected
		result.Status = model.NewJudgeStatus(model.StatusAccepted)
		result.Stdout = &stdout
		result.Passed = true
	}
	return result
}

func (h *handler) failing(index int) bool {
	for _, i := range h.cfg.Judge.FailingIndices {
		if i == index {
			return true
		}
	}
	return false
}

func (h *handler) chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		response.Error(c, pkgerrors.New(pkgerrors.ChatMessageEmpty))
		return
	}

	ctx := c.Request.Context()
	reply := h.reply(req)
	logger.Info(ctx, "streaming chat reply", zap.String("user_id", req.Context.UserID), zap.Int("length", len(reply)))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	for _, chunk := range strings.SplitAfter(reply, " ") {
		if chunk == "" {
			continue
		}
		if _, err := c.Writer.WriteString(chunk); err != nil {
			logger.Warn(ctx, "chat client went away", zap.Error(err))
			return
		}
		c.Writer.Flush()
		if h.cfg.Chat.ChunkDelay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(h.cfg.Chat.ChunkDelay):
		}
	}
}

func (h *handler) reply(req model.ChatRequest) string {
	if h.cfg.Chat.Reply != "" {
		return h.cfg.Chat.Reply
	}
	var b strings.Builder
	if req.Context.ProblemTitle != "" {
		fmt.Fprintf(&b, "Let's work through %q together. ", req.Context.ProblemTitle)
	}
	if r := req.Context.SubmissionResults; r != nil && r.Completed && !r.Passed {
		b.WriteString("Your last submission missed some test cases, so compare your output with the expected values first. ")
	}
	if req.Context.ProgrammingLanguage != "" {
		fmt.Fprintf(&b, "In %s, ", req.Context.ProgrammingLanguage)
	}
	b.WriteString("start from the smallest input and trace your code by hand before optimising.")
	return b.String()
}
