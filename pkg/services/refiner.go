package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/llm"
)

// DefaultRefineTemperature is used when no temperature is configured.
const DefaultRefineTemperature = 0.3

const refineSystemMessage = "You write concise, factual project status summaries for business leadership."

const refinePromptTemplate = `Create a concise project status summary (maximum 200 words) based on the following status notes, focusing on key updates and action items:

%s

Key Requirements:
1. Begin with the current project phase and status (without percentage)
2. Highlight the most critical updates from the last 2 weeks
3. Identify any overdue items or items marked as "In Progress - Behind"
4. Include upcoming key milestones or scheduled meetings
5. Note any blockers or dependencies that need leadership attention
6. Mention specific stakeholders only when relevant to leadership

Additional Rules:
- Keep the summary under 200 words
- Use professional, business-focused language
- Include specific dates only when they appear in the source
- Don't add speculative information or assumptions
- If discussing delays, include current mitigation plans
- Highlight items marked as "Leadership Attention" or "Blocker/Challenge"

Format Structure:
**Current Status:** Brief status and phase description
**Key Progress:**
* 2-3 bullet points of recent key developments
**Challenges:** [Only if present]
* Current blockers or delays
**Next Steps:**
* Confirmed upcoming actions
**Leadership Attention:** [Only if needed]
* Critical items requiring leadership intervention`

// Refiner rewrites a digest with a generative model. It never fails: a nil
// client, a model error or an empty completion all yield the digest unchanged.
type Refiner struct {
	client      llm.LLMClient
	temperature float64
	logger      *zap.Logger
}

// NewRefiner creates a Refiner. client may be nil.
func NewRefiner(client llm.LLMClient, temperature float64, logger *zap.Logger) *Refiner {
	if temperature <= 0 {
		temperature = DefaultRefineTemperature
	}
	return &Refiner{
		client:      client,
		temperature: temperature,
		logger:      logger.Named("refiner"),
	}
}

// BuildRefinePrompt embeds digest in the instruction template.
func BuildRefinePrompt(digest string) string {
	return fmt.Sprintf(refinePromptTemplate, digest)
}

// Refine returns the model's trimmed rewrite of digest, or digest itself.
func (r *Refiner) Refine(ctx context.Context, digest string) string {
	if r.client == nil {
		return digest
	}

	result, err := r.client.GenerateResponse(ctx, BuildRefinePrompt(digest), refineSystemMessage, r.temperature)
	if err != nil {
		llmErr := llm.ClassifyError(err)
		r.logger.Warn("Summary refinement failed, using digest",
			zap.String("run_id", llm.RunIDFromContext(ctx)),
			zap.String("model", r.client.GetModel()),
			zap.String("error_type", string(llmErr.Type)),
			zap.Error(llmErr))
		return digest
	}

	refined := strings.TrimSpace(result.Content)
	if refined == "" {
		r.logger.Warn("Model returned an empty summary, using digest",
			zap.String("run_id", llm.RunIDFromContext(ctx)),
			zap.String("model", r.client.GetModel()))
		return digest
	}

	r.logger.Debug("Summary refined",
		zap.String("run_id", llm.RunIDFromContext(ctx)),
		zap.Int("total_tokens", result.TotalTokens))
	return refined
}
