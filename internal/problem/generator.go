package problem

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"

	"codearena/internal/common/httpclient"
	"codearena/internal/model"
	pkgerrors "codearena/pkg/errors"
	"codearena/pkg/utils/logger"

	"go.uber.org/zap"
)

// GeneratePath is the problem generation endpoint, relative to the API base.
const GeneratePath = "/problem-generator/generate"

// Generator asks the backend for a fresh problem.
type Generator struct {
	client *httpclient.Client
}

func NewGenerator(client *httpclient.Client) *Generator {
	return &Generator{client: client}
}

// Generate returns a validated problem for the concept at the given complexity.
func (g *Generator) Generate(ctx context.Context, concept, complexity string) (model.Problem, error) {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return model.Problem{}, pkgerrors.ValidationError("concept", "required")
	}
	normalized, ok := model.NormalizeComplexity(complexity)
	if !ok {
		return model.Problem{}, pkgerrors.ValidationError("complexity", "must be one of EASY, MEDIUM, HARD")
	}

	logger.Debug(ctx, "generating problem", zap.String("concept", concept), zap.String("complexity", normalized))
	resp, err := g.client.PostJSON(ctx, GeneratePath, model.GenerateRequest{Concept: concept, Complexity: normalized})
	if err != nil {
		return model.Problem{}, httpclient.RequestError("Failed to generate problem", err)
	}
	if !resp.OK() {
		logger.Warn(ctx, "problem generation rejected", zap.Int("status", resp.StatusCode))
		return model.Problem{}, httpclient.StatusError("Failed to generate problem", resp.StatusCode, resp.Body)
	}

	var p model.Problem
	if err := json.Unmarshal(resp.Body, &p); err != nil {
		return model.Problem{}, pkgerrors.DecodeError(err)
	}
	if err := p.Validate(); err != nil {
		return model.Problem{}, pkgerrors.DecodeError(err)
	}
	if p.Concept == "" {
		p.Concept = concept
	}
	logger.Info(ctx, "problem generated", zap.String("concept", concept), zap.String("title", p.ProblemTitle))
	return p, nil
}

// PickComplexity chooses a random complexity, except for the beginner
// category which is always EASY.
func PickComplexity(concept string, rng *rand.Rand) string {
	if concept == model.BeginnerConcept {
		return model.ComplexityEasy
	}
	if rng == nil {
		return model.Complexities[rand.Intn(len(model.Complexities))]
	}
	return model.Complexities[rng.Intn(len(model.Complexities))]
}
