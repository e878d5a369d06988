package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Ezzyro/Airtable-Test/pkg/llm"
)

const sampleDigest = "Status Summary (as of Jan 17)\n\nRecent Updates:\n* Jan 17: Shipped v2\n"

func TestRefine_NilClientPassesThrough(t *testing.T) {
	r := NewRefiner(nil, 0, zap.NewNop())

	assert.Equal(t, sampleDigest, r.Refine(context.Background(), sampleDigest))
}

func TestRefine_ReturnsTrimmedModelOutput(t *testing.T) {
	client := llm.NewStubClient("  **Current Status:** On track\n")
	r := NewRefiner(client, 0.5, zap.NewNop())

	assert.Equal(t, "**Current Status:** On track", r.Refine(context.Background(), sampleDigest))
	require.Len(t, client.Calls(), 1)
	call := client.LastCall()
	assert.Equal(t, 0.5, call.Temperature)
	assert.NotEmpty(t, call.SystemMessage)
	assert.Contains(t, call.Prompt, sampleDigest)
	assert.Contains(t, call.Prompt, "maximum 200 words")
	for _, heading := range []string{"Current Status", "Key Progress", "Challenges", "Next Steps", "Leadership Attention"} {
		assert.Contains(t, call.Prompt, heading)
	}
}

func TestRefine_FallsBackOnError(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	client := llm.FailingStubClient(errors.New("status code: 401, API key not valid"))
	r := NewRefiner(client, 0, zap.New(core))

	assert.Equal(t, sampleDigest, r.Refine(context.Background(), sampleDigest))

	entries := logs.FilterMessage("Summary refinement failed, using digest").All()
	require.Len(t, entries, 1)
	assert.Equal(t, string(llm.ErrorTypeAuth), entries[0].ContextMap()["error_type"])
}

func TestRefine_FallsBackOnEmptyOutput(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	client := llm.NewStubClient(" \n ")
	r := NewRefiner(client, 0, zap.New(core))

	assert.Equal(t, sampleDigest, r.Refine(context.Background(), sampleDigest))
	assert.Equal(t, 1, logs.FilterMessage("Model returned an empty summary, using digest").Len())
}
