package submission

import (
	"context"

	"codearena/internal/model"
	pkgerrors "codearena/pkg/errors"
	"codearena/pkg/utils/logger"

	"go.uber.org/zap"
)

// Service submits code and waits for its verdict.
type Service struct {
	submitter *Submitter
	poller    *Poller
}

func NewService(submitter *Submitter, poller *Poller) *Service {
	return &Service{submitter: submitter, poller: poller}
}

// BuildRequest assembles a submit request for a generated problem.
func BuildRequest(problem model.Problem, lang model.Language, code, concept, complexity string) (model.SubmitRequest, error) {
	structure, err := problem.StructureJSON()
	if err != nil {
		return model.SubmitRequest{}, pkgerrors.Wrapf(err, pkgerrors.InvalidFormat, "encode problem structure failed")
	}
	if concept == "" {
		concept = problem.Concept
	}
	return model.SubmitRequest{
		LanguageID: lang.LanguageID(),
		SourceCode: code,
		ProblemID:  model.DefaultProblemID,
		Structure:  structure,
		TestCases:  problem.TestCases,
		Concept:    concept,
		Complexity: complexity,
	}, nil
}

// Run submits the code and polls every returned token until the batch completes.
func (s *Service) Run(ctx context.Context, req model.SubmitRequest) (model.BatchResult, error) {
	tokens, err := s.submitter.Submit(ctx, req)
	if err != nil {
		return model.BatchResult{}, err
	}
	logger.Debug(ctx, "submission accepted", zap.Strings("tokens", tokens))

	result, err := s.poller.Poll(ctx, tokens, req.Concept, req.Complexity)
	if err != nil {
		return model.BatchResult{}, err
	}
	logger.Info(ctx, "submission judged",
		zap.Bool("passed", result.Passed),
		zap.Int("results", len(result.Results)),
	)
	return result, nil
}
