package webhook

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReviewCard(t *testing.T) {
	generated := time.Date(2024, time.January, 17, 9, 30, 0, 0, time.UTC)
	msg := NewReviewCard("DATA COE - 10035", "Status Summary (as of Jan 17)", generated)

	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "message", msg.Type)
	assert.Equal(t, AdaptiveCardContentType, msg.Attachments[0].ContentType)

	card := msg.Attachments[0].Content
	require.Len(t, card.Body, 4)
	assert.Equal(t, ReviewCardTitle, card.Body[0].Text)
	assert.Equal(t, "Intake ID: DATA COE - 10035", card.Body[1].Text)
	assert.Equal(t, "Status Summary (as of Jan 17)", card.Body[2].Text)
	assert.Equal(t, []Fact{{"Status", "Pending Review"}, {"Generated On", "1/17/2024"}}, card.Body[3].Facts)

	require.Len(t, card.Actions, 3)
	approve, reject, modify := card.Actions[0], card.Actions[1], card.Actions[2]

	assert.Equal(t, "approve", approve.Data.ActionID)
	assert.Equal(t, "DATA COE - 10035", approve.Data.IntakeID)
	assert.Equal(t, "Status Summary (as of Jan 17)", approve.Data.Summary)

	assert.Equal(t, "reject", reject.Data.ActionID)
	assert.Empty(t, reject.Data.Summary)

	assert.Equal(t, "Action.ShowCard", modify.Type)
	require.NotNil(t, modify.Card)
	assert.Equal(t, ModifiedTextInputID, modify.Card.Body[0].ID)
	assert.True(t, modify.Card.Body[0].IsMultiline)
	assert.Equal(t, "modify", modify.Card.Actions[0].Data.ActionID)
}

func TestReviewCard_WireShape(t *testing.T) {
	raw, err := json.Marshal(NewReviewCard("I-1", "s", time.Now()))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	attachments := decoded["attachments"].([]any)
	content := attachments[0].(map[string]any)["content"].(map[string]any)
	actions := content["actions"].([]any)
	rejectData := actions[1].(map[string]any)["data"].(map[string]any)

	assert.Equal(t, map[string]any{
		"msteams":  map[string]any{"type": "messageBack", "text": "rejected"},
		"actionId": "reject",
		"intakeId": "I-1",
	}, rejectData, "reject submits no summary")
}

func TestNewTestMessage(t *testing.T) {
	msg := NewTestMessage(time.Date(2024, time.January, 17, 15, 4, 5, 0, time.UTC))
	card := msg.Attachments[0].Content
	assert.Equal(t, "Test Connection", card.Body[0].Text)
	assert.Equal(t, "Test message sent at: 1/17/2024, 3:04:05 PM", card.Body[1].Text)
	assert.Empty(t, card.Actions)
}
