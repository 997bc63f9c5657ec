package mockserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codearena/internal/chat"
	"codearena/internal/common/cache"
	"codearena/internal/common/httpclient"
	"codearena/internal/mockserver"
	"codearena/internal/model"
	"codearena/internal/problem"
	"codearena/internal/submission"
	"codearena/internal/testutil"
	pkgerrors "codearena/pkg/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
)

func startMock(t *testing.T, cfg mockserver.Config) (*httpclient.Client, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	redisSrv := miniredis.RunT(t)
	backend, err := cache.NewRedisCache(redisSrv.Addr())
	testutil.MustNoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	srv := httptest.NewServer(mockserver.New(cfg, backend).Handler())
	t.Cleanup(srv.Close)
	return httpclient.New(srv.URL+"/api", 2*time.Second), redisSrv
}

func fastPoller(client *httpclient.Client) *submission.Poller {
	return submission.NewPoller(client, submission.PollOptions{Interval: 10 * time.Millisecond, MaxAttempts: 20})
}

func TestGenerateSubmitAndPoll(t *testing.T) {
	client, _ := startMock(t, mockserver.Config{
		Judge: mockserver.JudgeConfig{PendingPolls: 2, FailingIndices: []int{1}},
	})
	ctx := context.Background()

	p, err := problem.NewGenerator(client).Generate(ctx, "arrays", "EASY")
	testutil.MustNoError(t, err)
	testutil.AssertEqual(t, p.Concept, "arrays")
	testutil.AssertEqual(t, p.Difficulty, "Easy")
	testutil.AssertTrue(t, len(p.TestCases) == 3, "canned problem has three test cases")

	req, err := submission.BuildRequest(p, model.LanguagePython, "class Solution: ...", "arrays", "EASY")
	testutil.MustNoError(t, err)

	var attempts []int
	poller := submission.NewPoller(client, submission.PollOptions{
		Interval:    10 * time.Millisecond,
		MaxAttempts: 20,
		Observer: func(attempt int, _ model.BatchResult) {
			attempts = append(attempts, attempt)
		},
	})
	result, err := submission.NewService(submission.NewSubmitter(client), poller).Run(ctx, req)
	testutil.MustNoError(t, err)

	testutil.AssertTrue(t, result.Completed, "final snapshot is completed")
	testutil.AssertFalse(t, result.Passed, "one test case fails")
	testutil.AssertEqual(t, len(result.Results), 3)
	testutil.AssertEqual(t, len(attempts), 2)
	for _, r := range result.Results {
		testutil.AssertEqual(t, r.Passed, r.TestCaseIndex != 1)
	}
	testutil.AssertEqual(t, result.Results[1].Status.ID, model.StatusWrongAnswer)
	testutil.AssertEqual(t, *result.Results[0].ExpectedOutput, string(p.TestCases[0].Output))
}

func TestPollUnknownTokensScenario(t *testing.T) {
	client, _ := startMock(t, mockserver.Config{
		Judge: mockserver.JudgeConfig{PendingPolls: 1, FailingIndices: []int{1}},
	})

	result, err := fastPoller(client).Poll(context.Background(), []string{"a", "b"}, "arrays", "EASY")
	testutil.MustNoError(t, err)
	testutil.AssertFalse(t, result.Passed, "batch fails")
	testutil.AssertEqual(t, len(result.Results), 2)
	testutil.AssertTrue(t, result.Results[0].Passed, "index 0 passes")
	testutil.AssertFalse(t, result.Results[1].Passed, "index 1 fails")
	testutil.AssertEqual(t, len(result.Failed()), 1)
}

func TestEmptySourceIsCompilationError(t *testing.T) {
	client, _ := startMock(t, mockserver.Config{})
	p := testutil.SampleProblem()
	req, err := submission.BuildRequest(p, model.LanguageJava, "   ", "", "")
	testutil.MustNoError(t, err)

	result, err := submission.NewService(submission.NewSubmitter(client), fastPoller(client)).Run(context.Background(), req)
	testutil.MustNoError(t, err)
	testutil.AssertFalse(t, result.Passed, "nothing passes")
	testutil.AssertEqual(t, result.Results[0].Status.ID, model.StatusCompilationError)
	testutil.AssertTrue(t, result.Results[0].CompileOutput != nil, "compile output reported")
}

func TestSubmitValidation(t *testing.T) {
	client, _ := startMock(t, mockserver.Config{})
	submitter := submission.NewSubmitter(client)
	p := testutil.SampleProblem()

	req, err := submission.BuildRequest(p, model.LanguageJava, "class Solution {}", "", "")
	testutil.MustNoError(t, err)
	req.LanguageID = "4"
	_, err = submitter.Submit(context.Background(), req)
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.UpstreamRequestFailed), "unsupported language is rejected")
	testutil.AssertContains(t, err.Error(), "Submission failed")
	testutil.AssertContains(t, err.Error(), "unsupported language_id")
	testutil.AssertEqual(t, pkgerrors.GetError(err).Details["status"], http.StatusBadRequest)
}

func TestStatusRequiresTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	redisSrv := miniredis.RunT(t)
	backend, err := cache.NewRedisCache(redisSrv.Addr())
	testutil.MustNoError(t, err)
	defer backend.Close()
	handler := mockserver.New(mockserver.Config{}, backend).Handler()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/problem-submission/submissions-status", bytes.NewBufferString(`{"tokens":[]}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	testutil.AssertEqual(t, w.Code, http.StatusBadRequest)
	var body map[string]string
	testutil.MustNoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	testutil.AssertEqual(t, body["detail"], "No submission tokens provided")
}

func TestChatStreamsConfiguredReply(t *testing.T) {
	reply := "Try a running total and return it at the end."
	client, _ := startMock(t, mockserver.Config{
		Chat: mockserver.ChatConfig{Reply: reply, ChunkDelay: 5 * time.Millisecond, RateLimit: 3},
	})

	var chunks []string
	err := chat.NewClient(client).Send(context.Background(), "hint", model.ProblemContext{}, func(s string) {
		chunks = append(chunks, s)
	})
	testutil.MustNoError(t, err)
	testutil.AssertEqual(t, strings.Join(chunks, ""), reply)
	testutil.AssertTrue(t, len(chunks) > 1, "reply arrives in several chunks")
}

func TestChatDefaultReplyUsesContext(t *testing.T) {
	client, _ := startMock(t, mockserver.Config{Chat: mockserver.ChatConfig{RateLimit: 3}})

	var b strings.Builder
	pctx := model.ProblemContext{ProblemTitle: "Sum of Array", ProgrammingLanguage: "Java"}
	err := chat.NewClient(client).Send(context.Background(), "hint", pctx, func(s string) { b.WriteString(s) })
	testutil.MustNoError(t, err)
	testutil.AssertContains(t, b.String(), `"Sum of Array"`)
	testutil.AssertContains(t, b.String(), "In Java")
}

func TestChatRateLimit(t *testing.T) {
	client, redisSrv := startMock(t, mockserver.Config{
		Chat: mockserver.ChatConfig{Reply: "ok", RateLimit: 3, RateWindow: time.Minute},
	})
	chatClient := chat.NewClient(client)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		testutil.MustNoError(t, chatClient.Send(ctx, "hint", model.ProblemContext{}, nil))
	}
	err := chatClient.Send(ctx, "hint", model.ProblemContext{}, nil)
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.ChatRateLimited), "fourth message in a minute is limited")
	testutil.AssertContains(t, err.Error(), "Rate limit exceeded: 3 per 1 minute")

	redisSrv.FastForward(time.Minute + time.Second)
	testutil.MustNoError(t, chatClient.Send(ctx, "hint", model.ProblemContext{}, nil))
}

func TestChatRateLimitHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	redisSrv := miniredis.RunT(t)
	backend, err := cache.NewRedisCache(redisSrv.Addr())
	testutil.MustNoError(t, err)
	defer backend.Close()
	handler := mockserver.New(mockserver.Config{Chat: mockserver.ChatConfig{Reply: "ok", RateLimit: 3}}, backend).Handler()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/codeassist/chat", bytes.NewBufferString(`{"message":"hi","context":{"userId":"guest"}}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	testutil.AssertEqual(t, w.Code, http.StatusOK)
	testutil.AssertEqual(t, w.Header().Get("X-RateLimit-Limit"), "3")
	testutil.AssertEqual(t, w.Header().Get("X-RateLimit-Remaining"), "2")
	testutil.AssertEqual(t, w.Body.String(), "ok")
}

func TestBrowserPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	redisSrv := miniredis.RunT(t)
	backend, err := cache.NewRedisCache(redisSrv.Addr())
	testutil.MustNoError(t, err)
	defer backend.Close()
	handler := mockserver.New(mockserver.Config{}, backend).Handler()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/problem-submission/submit", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	handler.ServeHTTP(w, req)

	testutil.AssertEqual(t, w.Code, http.StatusNoContent)
	testutil.AssertEqual(t, w.Header().Get("Access-Control-Allow-Origin"), "http://localhost:3000")
	testutil.AssertContains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-RateLimit-Remaining")
}
