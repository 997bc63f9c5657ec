package submission_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"codearena/internal/common/httpclient"
	"codearena/internal/model"
	"codearena/internal/submission"
	"codearena/internal/testutil"
	pkgerrors "codearena/pkg/errors"

	"go.uber.org/goleak"
)

type scriptedReply struct {
	status int
	body   string
}

// statusBackend replays replies in order; the last reply repeats.
type statusBackend struct {
	mu      sync.Mutex
	replies []scriptedReply
	bodies  []model.StatusRequest
	times   []time.Time
	paths   []string
}

func (b *statusBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	var req model.StatusRequest
	_ = json.Unmarshal(data, &req)
	b.bodies = append(b.bodies, req)
	b.times = append(b.times, time.Now())
	b.paths = append(b.paths, r.URL.Path)
	idx := len(b.bodies) - 1
	if idx >= len(b.replies) {
		idx = len(b.replies) - 1
	}
	reply := b.replies[idx]
	b.mu.Unlock()

	w.WriteHeader(reply.status)
	_, _ = w.Write([]byte(reply.body))
}

func (b *statusBackend) recorded() ([]model.StatusRequest, []time.Time, []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.StatusRequest(nil), b.bodies...), append([]time.Time(nil), b.times...), append([]string(nil), b.paths...)
}

func (b *statusBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bodies)
}

func newPoller(t *testing.T, backend *statusBackend, opts submission.PollOptions) *submission.Poller {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	return submission.NewPoller(httpclient.New(srv.URL, time.Second), opts)
}

const pendingBody = `{"completed":false,"passed":false,"results":[]}`

func TestPollEmptyTokensFailsWithoutRequest(t *testing.T) {
	backend := &statusBackend{replies: []scriptedReply{{200, pendingBody}}}
	poller := newPoller(t, backend, submission.PollOptions{Interval: 10 * time.Millisecond})

	_, err := poller.Poll(context.Background(), nil, "", "")
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.NoSubmissionTokens), "expected NoSubmissionTokens")
	testutil.AssertEqual(t, backend.calls(), 0)
}

func TestPollReturnsOnlyCompletedSnapshot(t *testing.T) {
	backend := &statusBackend{replies: []scriptedReply{
		{200, pendingBody},
		{200, `{"completed":false,"passed":false,"results":[{"test_case_index":0,"passed":false,"status":{"id":2,"description":"Processing"}}]}`},
		{200, `{"completed":true,"passed":true,"results":[{"test_case_index":0,"passed":true,"status":{"id":3,"description":"Accepted"}}]}`},
	}}
	poller := newPoller(t, backend, submission.PollOptions{Interval: 10 * time.Millisecond})

	result, err := poller.Poll(context.Background(), []string{"t1"}, "arrays", "EASY")
	testutil.MustNoError(t, err)
	testutil.AssertTrue(t, result.Completed, "result must be completed")
	testutil.AssertTrue(t, result.Passed, "result must pass")
	testutil.AssertEqual(t, result.Results[0].Status.ID, model.StatusAccepted)
	bodies, _, paths := backend.recorded()
	testutil.AssertEqual(t, len(bodies), 3)
	testutil.AssertEqual(t, paths[0], submission.StatusPath)
	testutil.AssertEqual(t, bodies[0].Concept, "arrays")
	testutil.AssertEqual(t, bodies[0].Complexity, "EASY")
}

func TestPollWaitsIntervalBetweenRequests(t *testing.T) {
	interval := 100 * time.Millisecond
	backend := &statusBackend{replies: []scriptedReply{
		{200, `{"completed":false}`},
		{200, `{"completed":true,"passed":true,"results":[{"test_case_index":0,"passed":true,"stdout":"second","status":{"id":3,"description":"Accepted"}}]}`},
	}}
	poller := newPoller(t, backend, submission.PollOptions{Interval: interval})

	result, err := poller.Poll(context.Background(), []string{"t1"}, "", "")
	testutil.MustNoError(t, err)
	testutil.AssertEqual(t, backend.calls(), 2)
	testutil.AssertEqual(t, *result.Results[0].Stdout, "second")

	_, times, _ := backend.recorded()
	gap := times[1].Sub(times[0])
	testutil.AssertTrue(t, gap >= interval, "second poll must wait for the interval")
}

func TestPollNon2xxFailsWithBody(t *testing.T) {
	backend := &statusBackend{replies: []scriptedReply{
		{http.StatusBadGateway, "judge unreachable"},
		{200, `{"completed":true,"passed":true,"results":[]}`},
	}}
	poller := newPoller(t, backend, submission.PollOptions{Interval: 10 * time.Millisecond})

	_, err := poller.Poll(context.Background(), []string{"t1"}, "", "")
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.UpstreamRequestFailed), "expected transport error")
	testutil.AssertContains(t, err.Error(), "judge unreachable")
	testutil.AssertEqual(t, backend.calls(), 1)
}

func TestPollDecodeFailure(t *testing.T) {
	backend := &statusBackend{replies: []scriptedReply{{200, `{"detail":"unexpected"}`}}}
	poller := newPoller(t, backend, submission.PollOptions{Interval: 10 * time.Millisecond})

	_, err := poller.Poll(context.Background(), []string{"t1"}, "", "")
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.DecodeFailed), "expected decode error")
	testutil.AssertEqual(t, backend.calls(), 1)
}

func TestPollBatchScenario(t *testing.T) {
	backend := &statusBackend{replies: []scriptedReply{
		{200, `{"completed":false}`},
		{200, `{"completed":true,"passed":false,"results":[
			{"test_case_index":0,"token":"a","passed":true,"stdout":"6","expected_output":"6","status":{"id":3,"description":"Accepted"}},
			{"test_case_index":1,"token":"b","passed":false,"stdout":"1","expected_output":"0","status":{"id":4,"description":"Wrong Answer"}}
		]}`},
	}}
	poller := newPoller(t, backend, submission.PollOptions{Interval: 10 * time.Millisecond})

	result, err := poller.Poll(context.Background(), []string{"a", "b"}, "", "")
	testutil.MustNoError(t, err)
	bodies, _, _ := backend.recorded()
	testutil.AssertEqual(t, len(bodies), 2)
	testutil.AssertEqual(t, len(bodies[1].Tokens), 2)
	testutil.AssertEqual(t, bodies[1].Tokens[0], "a")
	testutil.AssertFalse(t, result.Passed, "batch must fail")
	testutil.AssertEqual(t, len(result.Results), 2)
	testutil.AssertEqual(t, result.Results[1].TestCaseIndex, 1)
	testutil.AssertFalse(t, result.Results[1].Passed, "index 1 must be failed")
	testutil.AssertTrue(t, result.Results[0].Passed, "index 0 must pass")
}

func TestPollGivesUpAfterMaxAttempts(t *testing.T) {
	backend := &statusBackend{replies: []scriptedReply{{200, pendingBody}}}
	var observed []int
	poller := newPoller(t, backend, submission.PollOptions{
		Interval:    5 * time.Millisecond,
		MaxAttempts: 3,
		Observer: func(attempt int, snapshot model.BatchResult) {
			observed = append(observed, attempt)
		},
	})

	_, err := poller.Poll(context.Background(), []string{"t1"}, "", "")
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.PollTimedOut), "expected PollTimedOut")
	testutil.AssertEqual(t, backend.calls(), 3)
	testutil.AssertEqual(t, len(observed), 3)
	testutil.AssertEqual(t, pkgerrors.GetError(err).Details["attempts"], 3)
}

func TestPollDeadline(t *testing.T) {
	backend := &statusBackend{replies: []scriptedReply{{200, pendingBody}}}
	poller := newPoller(t, backend, submission.PollOptions{
		Interval:    20 * time.Millisecond,
		MaxAttempts: -1,
		Timeout:     100 * time.Millisecond,
	})

	start := time.Now()
	_, err := poller.Poll(context.Background(), []string{"t1"}, "", "")
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.PollTimedOut), "expected PollTimedOut")
	testutil.AssertTrue(t, time.Since(start) < time.Second, "deadline must stop the loop")
	testutil.AssertTrue(t, backend.calls() >= 2, "several polls before the deadline")
}

func TestPollCancelledByCaller(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	backend := &statusBackend{replies: []scriptedReply{{200, pendingBody}}}
	srv := httptest.NewServer(backend)
	transport := &http.Transport{}
	defer func() {
		srv.Close()
		transport.CloseIdleConnections()
	}()
	poller := submission.NewPoller(
		httpclient.New(srv.URL, time.Second, httpclient.WithTransport(transport)),
		submission.PollOptions{Interval: time.Hour, MaxAttempts: -1},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := poller.Poll(ctx, []string{"t1"}, "", "")
		done <- err
	}()

	for backend.calls() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.RequestCancelled), "expected RequestCancelled")
	case <-time.After(2 * time.Second):
		t.Fatal("poll did not stop after cancel")
	}
	testutil.AssertEqual(t, backend.calls(), 1)
}

func TestPollerDefaults(t *testing.T) {
	poller := submission.NewPoller(httpclient.New("http://unused", time.Second), submission.PollOptions{})
	opts := poller.Options()
	testutil.AssertEqual(t, opts.Interval, 2000*time.Millisecond)
	testutil.AssertEqual(t, opts.MaxAttempts, submission.DefaultMaxAttempts)
	testutil.AssertEqual(t, opts.Timeout, time.Duration(0))
}
