package webhook

import (
	"time"
)

// Message is the body the relay forwards to the chat channel: either plain
// text or a list of card attachments.
type Message struct {
	Type        string       `json:"type"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// AdaptiveCardContentType identifies an Adaptive Card attachment.
const AdaptiveCardContentType = "application/vnd.microsoft.card.adaptive"

// Attachment wraps one card.
type Attachment struct {
	ContentType string `json:"contentType"`
	Content     *Card  `json:"content"`
}

// Card is an Adaptive Card. Only the elements the review flow uses are modeled.
type Card struct {
	Type    string    `json:"type"`
	Version string    `json:"version,omitempty"`
	Body    []Element `json:"body"`
	Actions []Action  `json:"actions,omitempty"`
}

// Element is a body element: TextBlock, FactSet or Input.Text.
type Element struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	Size        string `json:"size,omitempty"`
	Weight      string `json:"weight,omitempty"`
	Wrap        bool   `json:"wrap,omitempty"`
	Facts       []Fact `json:"facts,omitempty"`
	ID          string `json:"id,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	IsMultiline bool   `json:"isMultiline,omitempty"`
	Value       string `json:"value,omitempty"`
}

// Fact is one FactSet row.
type Fact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Action is Action.Submit (Data) or Action.ShowCard (Card).
type Action struct {
	Type  string      `json:"type"`
	Title string      `json:"title"`
	Data  *ActionData `json:"data,omitempty"`
	Card  *Card       `json:"card,omitempty"`
}

// ActionData is what the chat platform posts back when a reviewer acts.
// Input values (modifiedText) are merged in by the platform.
type ActionData struct {
	MSTeams  *MessageBack `json:"msteams,omitempty"`
	ActionID string       `json:"actionId"`
	IntakeID string       `json:"intakeId"`
	Summary  string       `json:"summary,omitempty"`
}

// MessageBack echoes a short text into the conversation when the action fires.
type MessageBack struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Review card constants.
const (
	ReviewCardTitle     = "Status Summary Review Required"
	ModifiedTextInputID = "modifiedText"
)

// NewReviewCard builds the approve/reject/modify card for one intake summary.
// generatedOn is rendered as a calendar date.
func NewReviewCard(intakeID, summary string, generatedOn time.Time) *Message {
	card := &Card{
		Type:    "AdaptiveCard",
		Version: "1.0",
		Body: []Element{
			{Type: "TextBlock", Size: "Medium", Weight: "Bolder", Text: ReviewCardTitle},
			{Type: "TextBlock", Text: "Intake ID: " + intakeID, Wrap: true},
			{Type: "TextBlock", Text: summary, Wrap: true},
			{Type: "FactSet", Facts: []Fact{
				{Title: "Status", Value: "Pending Review"},
				{Title: "Generated On", Value: generatedOn.Format("1/2/2006")},
			}},
		},
		Actions: []Action{
			{
				Type:  "Action.Submit",
				Title: "Approve",
				Data: &ActionData{
					MSTeams:  &MessageBack{Type: "messageBack", Text: "approved"},
					ActionID: "approve",
					IntakeID: intakeID,
					Summary:  summary,
				},
			},
			{
				Type:  "Action.Submit",
				Title: "Reject",
				Data: &ActionData{
					MSTeams:  &MessageBack{Type: "messageBack", Text: "rejected"},
					ActionID: "reject",
					IntakeID: intakeID,
				},
			},
			{
				Type:  "Action.ShowCard",
				Title: "Modify",
				Card: &Card{
					Type: "AdaptiveCard",
					Body: []Element{{
						Type:        "Input.Text",
						ID:          ModifiedTextInputID,
						Placeholder: "Enter modified summary...",
						IsMultiline: true,
						Value:       summary,
					}},
					Actions: []Action{{
						Type:  "Action.Submit",
						Title: "Submit Modified",
						Data: &ActionData{
							MSTeams:  &MessageBack{Type: "messageBack", Text: "modified"},
							ActionID: "modify",
							IntakeID: intakeID,
						},
					}},
				},
			},
		},
	}
	return cardMessage(card)
}

// NewTextMessage builds a plain text message, used for review confirmations.
func NewTextMessage(text string) *Message {
	return &Message{Type: "message", Text: text}
}

// NewTestMessage builds the connectivity probe card sent by ping-webhook.
func NewTestMessage(sentAt time.Time) *Message {
	return cardMessage(&Card{
		Type:    "AdaptiveCard",
		Version: "1.0",
		Body: []Element{
			{Type: "TextBlock", Text: "Test Connection", Weight: "Bolder"},
			{Type: "TextBlock", Text: "Test message sent at: " + sentAt.Format("1/2/2006, 3:04:05 PM")},
		},
	})
}

func cardMessage(card *Card) *Message {
	return &Message{
		Type:        "message",
		Attachments: []Attachment{{ContentType: AdaptiveCardContentType, Content: card}},
	}
}
