package submission

import (
	"context"
	"strings"

	"codearena/internal/common/httpclient"
	"codearena/internal/model"
	pkgerrors "codearena/pkg/errors"
	"codearena/pkg/utils/logger"

	"go.uber.org/zap"
)

// SubmitPath is the code submission endpoint, relative to the API base.
const SubmitPath = "/problem-submission/submit"

// Submitter sends source code to the judge.
type Submitter struct {
	client *httpclient.Client
}

func NewSubmitter(client *httpclient.Client) *Submitter {
	return &Submitter{client: client}
}

// Submit posts the code and returns one token per test case.
func (s *Submitter) Submit(ctx context.Context, req model.SubmitRequest) ([]string, error) {
	if strings.TrimSpace(req.LanguageID) == "" {
		return nil, pkgerrors.ValidationError("language_id", "required")
	}
	if len(req.TestCases) == 0 {
		return nil, pkgerrors.ValidationError("test_cases", "at least one test case is required")
	}
	if req.ProblemID == "" {
		req.ProblemID = model.DefaultProblemID
	}

	logger.Debug(ctx, "submitting code",
		zap.String("language_id", req.LanguageID),
		zap.Int("code_length", len(req.SourceCode)),
		zap.Int("test_cases", len(req.TestCases)),
	)
	resp, err := s.client.PostJSON(ctx, SubmitPath, req)
	if err != nil {
		return nil, httpclient.RequestError("Submission failed", err)
	}
	if !resp.OK() {
		logger.Warn(ctx, "submission rejected", zap.Int("status", resp.StatusCode))
		return nil, httpclient.StatusError("Submission failed", resp.StatusCode, resp.Body)
	}
	tokens, err := model.DecodeTokens(resp.Body)
	if err != nil {
		return nil, pkgerrors.DecodeError(err)
	}
	return tokens, nil
}
