package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/openai"
)

// Analyzer asks the text-generation service for a structured research
// verdict on a candidate. A nil client marks the integration as
// unconfigured; every analysis then yields the unconfigured error
// object instead of a call.
type Analyzer struct {
	client          openai.Client
	model           string
	maxTokens       int
	profile         Profile
	categoryPrompts map[string]string
}

// NewAnalyzer wires an analyzer. modelName and maxTokens fall back to
// the client defaults when zero.
func NewAnalyzer(client openai.Client, modelName string, maxTokens int, profile Profile, categoryPrompts map[string]string) *Analyzer {
	return &Analyzer{
		client:          client,
		model:           modelName,
		maxTokens:       maxTokens,
		profile:         profile,
		categoryPrompts: categoryPrompts,
	}
}

// Analyze produces the insight for one candidate. The result is always
// one of three shapes: a structured verdict when the response parses,
// the raw text when it does not, or a typed error object when the call
// itself cannot be made or fails.
func (a *Analyzer) Analyze(ctx context.Context, facts Facts, promptOverride string) model.Insight {
	if a == nil || a.client == nil {
		return model.Insight{Err: &model.InsightError{
			Error:  "analysis service not configured",
			Status: "Unconfigured",
		}}
	}

	prompt := buildPrompt(facts, a.profile, a.categoryPrompts, promptOverride)

	resp, err := a.client.ChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.Message{
			{Role: "system", Content: analysisSystemMessage},
			{Role: "user", Content: prompt},
		},
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		zap.L().Warn("insight: completion failed", zap.String("business", facts.Name), zap.Error(err))
		return model.Insight{Err: callError(err)}
	}
	if len(resp.Choices) == 0 {
		return model.Insight{Err: &model.InsightError{
			Error:  "analysis service returned no choices",
			Status: "Empty",
		}}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = stripCodeFence(content)

	var data model.InsightData
	if jerr := json.Unmarshal([]byte(content), &data); jerr != nil {
		zap.L().Debug("insight: response not structured", zap.String("business", facts.Name), zap.Error(jerr))
		return model.Insight{Raw: content}
	}
	return model.Insight{Structured: &data}
}

// callError shapes a transport or API failure into the insight error
// object, preserving the upstream HTTP status when one exists.
func callError(err error) *model.InsightError {
	var se *openai.StatusError
	if errors.As(err, &se) {
		return &model.InsightError{
			Error:   "analysis service error",
			Status:  strconv.Itoa(se.StatusCode),
			Details: se.Body,
		}
	}
	return &model.InsightError{
		Error:   "analysis service error",
		Status:  "Unknown",
		Details: err.Error(),
	}
}

// stripCodeFence unwraps a response the model wrapped in a markdown
// code fence, with or without a language tag.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
