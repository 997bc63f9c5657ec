package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Judge status ids as reported by the judging backend.
const (
	StatusInQueue            = 1
	StatusProcessing         = 2
	StatusAccepted           = 3
	StatusWrongAnswer        = 4
	StatusTimeLimitExceeded  = 5
	StatusCompilationError   = 6
	StatusRuntimeErrorSIGSEG = 7
	StatusRuntimeErrorSIGXFS = 8
	StatusRuntimeErrorSIGFPE = 9
	StatusRuntimeErrorSIGABR = 10
	StatusRuntimeErrorNZEC   = 11
	StatusRuntimeErrorOther  = 12
	StatusInternalError      = 13
	StatusExecFormatError    = 14
)

// JudgeStatus is the per-test-case status descriptor.
type JudgeStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

var statusDescriptions = map[int]string{
	StatusInQueue:            "In Queue",
	StatusProcessing:         "Processing",
	StatusAccepted:           "Accepted",
	StatusWrongAnswer:        "Wrong Answer",
	StatusTimeLimitExceeded:  "Time Limit Exceeded",
	StatusCompilationError:   "Compilation Error",
	StatusRuntimeErrorSIGSEG: "Runtime Error (SIGSEGV)",
	StatusRuntimeErrorSIGXFS: "Runtime Error (SIGXFSZ)",
	StatusRuntimeErrorSIGFPE: "Runtime Error (SIGFPE)",
	StatusRuntimeErrorSIGABR: "Runtime Error (SIGABRT)",
	StatusRuntimeErrorNZEC:   "Runtime Error (NZEC)",
	StatusRuntimeErrorOther:  "Runtime Error (Other)",
	StatusInternalError:      "Internal Error",
	StatusExecFormatError:    "Exec Format Error",
}

// NewJudgeStatus returns the status with its standard description.
func NewJudgeStatus(id int) JudgeStatus {
	desc, ok := statusDescriptions[id]
	if !ok {
		desc = "Unknown"
	}
	return JudgeStatus{ID: id, Description: desc}
}

// Pending reports whether the judge is still working on the test case.
func (s JudgeStatus) Pending() bool {
	return s.ID == StatusInQueue || s.ID == StatusProcessing
}

// SubmitRequest is the body of the submit call.
type SubmitRequest struct {
	LanguageID string     `json:"language_id"`
	SourceCode string     `json:"source_code"`
	ProblemID  string     `json:"problem_id"`
	Structure  string     `json:"structure"`
	TestCases  []TestCase `json:"test_cases"`
	Concept    string     `json:"concept,omitempty"`
	Complexity string     `json:"complexity,omitempty"`
}

// DefaultProblemID is sent for generated problems, which have no server-side id.
const DefaultProblemID = "123"

// SubmissionToken correlates one test case's judge job.
type SubmissionToken struct {
	Token string `json:"token"`
}

// StatusRequest is the body of the submissions-status call.
type StatusRequest struct {
	Tokens     []string `json:"tokens"`
	Concept    string   `json:"concept,omitempty"`
	Complexity string   `json:"complexity,omitempty"`
}

// TestCaseResult is the judge's snapshot for one test case.
type TestCaseResult struct {
	TestCaseIndex  int         `json:"test_case_index"`
	Token          string      `json:"token,omitempty"`
	Status         JudgeStatus `json:"status"`
	CompileOutput  *string     `json:"compile_output,omitempty"`
	Stdout         *string     `json:"stdout,omitempty"`
	Stderr         *string     `json:"stderr,omitempty"`
	ExpectedOutput *string     `json:"expected_output,omitempty"`
	Passed         bool        `json:"passed"`
	Error          string      `json:"error,omitempty"`
}

// BatchResult aggregates the status of every test case of one submission.
// Passed is only meaningful once Completed is true.
type BatchResult struct {
	Completed bool             `json:"completed"`
	Passed    bool             `json:"passed"`
	Results   []TestCaseResult `json:"results"`
}

// Failed returns the results that did not pass.
func (b BatchResult) Failed() []TestCaseResult {
	var failed []TestCaseResult
	for _, r := range b.Results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

type batchResultWire struct {
	Completed *bool             `json:"completed"`
	Passed    *bool             `json:"passed"`
	Results   []json.RawMessage `json:"results"`
}

type testCaseResultWire struct {
	TestCaseIndex *int `json:"test_case_index"`
	TestCaseResult
}

// DecodeBatchResult parses and validates a submissions-status body.
// "completed" is required; a completed batch must carry "passed" and "results".
func DecodeBatchResult(data []byte) (BatchResult, error) {
	var wire batchResultWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return BatchResult{}, err
	}
	if wire.Completed == nil {
		return BatchResult{}, fmt.Errorf("missing field completed")
	}
	result := BatchResult{Completed: *wire.Completed}
	if !result.Completed {
		return result, nil
	}
	if wire.Passed == nil {
		return BatchResult{}, fmt.Errorf("missing field passed")
	}
	if wire.Results == nil {
		return BatchResult{}, fmt.Errorf("missing field results")
	}
	result.Passed = *wire.Passed
	result.Results = make([]TestCaseResult, 0, len(wire.Results))
	for i, raw := range wire.Results {
		var item testCaseResultWire
		if err := json.Unmarshal(raw, &item); err != nil {
			return BatchResult{}, fmt.Errorf("results[%d]: %w", i, err)
		}
		if item.TestCaseIndex == nil {
			return BatchResult{}, fmt.Errorf("results[%d]: missing field test_case_index", i)
		}
		item.TestCaseResult.TestCaseIndex = *item.TestCaseIndex
		result.Results = append(result.Results, item.TestCaseResult)
	}
	return result, nil
}

// DecodeTokens parses and validates a submit body: a non-empty list of non-empty tokens.
func DecodeTokens(data []byte) ([]string, error) {
	var items []SubmissionToken
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("invalid response from judge: no submissions")
	}
	tokens := make([]string, 0, len(items))
	for i, item := range items {
		token := strings.TrimSpace(item.Token)
		if token == "" {
			return nil, fmt.Errorf("no submission token received from judge at index %d", i)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}
