package submission_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"codearena/internal/common/httpclient"
	"codearena/internal/model"
	"codearena/internal/submission"
	"codearena/internal/testutil"
	pkgerrors "codearena/pkg/errors"
)

type judgeBackend struct {
	submitStatus int
	submitBody   string
	statusBody   string
	submitted    atomic.Value
	statusCalls  atomic.Int32
}

func (b *judgeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api"+submission.SubmitPath, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		var req model.SubmitRequest
		testutil.MustUnmarshalJSON(t, data, &req)
		b.submitted.Store(req)
		w.WriteHeader(b.submitStatus)
		_, _ = w.Write([]byte(b.submitBody))
	})
	mux.HandleFunc("/api"+submission.StatusPath, func(w http.ResponseWriter, r *http.Request) {
		b.statusCalls.Add(1)
		_, _ = w.Write([]byte(b.statusBody))
	})
	return mux
}

func newService(t *testing.T, backend *judgeBackend) *submission.Service {
	t.Helper()
	srv := httptest.NewServer(backend.handler(t))
	t.Cleanup(srv.Close)
	client := httpclient.New(srv.URL+"/api", time.Second)
	return submission.NewService(
		submission.NewSubmitter(client),
		submission.NewPoller(client, submission.PollOptions{Interval: 5 * time.Millisecond}),
	)
}

func TestBuildRequest(t *testing.T) {
	problem := testutil.SampleProblem()
	req, err := submission.BuildRequest(problem, model.LanguageJava, "class Solution {}", "", model.ComplexityEasy)
	testutil.MustNoError(t, err)

	testutil.AssertEqual(t, req.LanguageID, "62")
	testutil.AssertEqual(t, req.ProblemID, model.DefaultProblemID)
	testutil.AssertEqual(t, req.Concept, "arrays")
	testutil.AssertEqual(t, len(req.TestCases), 2)

	var structure model.Structure
	testutil.MustUnmarshalJSON(t, []byte(req.Structure), &structure)
	testutil.AssertEqual(t, structure.FunctionName, "sumArray")
}

func TestServiceRunPollsAllTokens(t *testing.T) {
	backend := &judgeBackend{
		submitStatus: http.StatusOK,
		submitBody:   `[{"token":"a"},{"token":"b"}]`,
		statusBody:   `{"completed":true,"passed":true,"results":[{"test_case_index":0,"passed":true,"status":{"id":3,"description":"Accepted"}},{"test_case_index":1,"passed":true,"status":{"id":3,"description":"Accepted"}}]}`,
	}
	svc := newService(t, backend)

	req, err := submission.BuildRequest(testutil.SampleProblem(), model.LanguagePython, "print(6)", "arrays", "EASY")
	testutil.MustNoError(t, err)
	result, err := svc.Run(context.Background(), req)
	testutil.MustNoError(t, err)

	testutil.AssertTrue(t, result.Passed, "all tests pass")
	testutil.AssertEqual(t, len(result.Results), 2)
	testutil.AssertEqual(t, backend.statusCalls.Load(), int32(1))

	sent := backend.submitted.Load().(model.SubmitRequest)
	testutil.AssertEqual(t, sent.LanguageID, "71")
	testutil.AssertEqual(t, sent.SourceCode, "print(6)")

	raw := testutil.MustMarshalJSON(t, sent)
	var wire map[string]json.RawMessage
	testutil.MustUnmarshalJSON(t, raw, &wire)
	var structure string
	testutil.MustUnmarshalJSON(t, wire["structure"], &structure)
	testutil.AssertContains(t, structure, "sumArray")
}

func TestServiceRunSubmitRejected(t *testing.T) {
	backend := &judgeBackend{
		submitStatus: http.StatusInternalServerError,
		submitBody:   `{"detail":"language 99 unknown"}`,
	}
	svc := newService(t, backend)

	req, _ := submission.BuildRequest(testutil.SampleProblem(), model.LanguageJava, "x", "", "")
	_, err := svc.Run(context.Background(), req)
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.UpstreamRequestFailed), "expected transport error")
	testutil.AssertContains(t, err.Error(), "Submission failed")
	testutil.AssertContains(t, err.Error(), "language 99 unknown")
	testutil.AssertEqual(t, backend.statusCalls.Load(), int32(0))
}

func TestServiceRunEmptyTokenList(t *testing.T) {
	backend := &judgeBackend{submitStatus: http.StatusOK, submitBody: `[]`}
	svc := newService(t, backend)

	req, _ := submission.BuildRequest(testutil.SampleProblem(), model.LanguageJava, "x", "", "")
	_, err := svc.Run(context.Background(), req)
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.DecodeFailed), "expected decode error")
	testutil.AssertEqual(t, backend.statusCalls.Load(), int32(0))
}

func TestSubmitValidatesArguments(t *testing.T) {
	submitter := submission.NewSubmitter(httpclient.New("http://unused", time.Second))

	_, err := submitter.Submit(context.Background(), model.SubmitRequest{SourceCode: "x"})
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.ValidationFailed), "missing language must fail")

	_, err = submitter.Submit(context.Background(), model.SubmitRequest{LanguageID: "62", SourceCode: "x"})
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.ValidationFailed), "missing test cases must fail")
}
