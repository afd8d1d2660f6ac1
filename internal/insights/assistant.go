package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/givin-app/givin/internal/metrics"
)

var (
	ErrEmptyQuestion     = errors.New("question is required")
	ErrAssistantDisabled = errors.New("assistant is not configured")
)

const (
	maxQuestionLength     = 2000
	maxHistoryMessages    = 10
	assistantInstructions = `You are Givin, an assistant for a nonprofit fundraising team.
Answer questions about the organization's donors and donations using only the dashboard
figures provided. Be concise. If the figures do not answer the question, say so.`
)

// ChatMessage is one turn of a conversation. Role is "user" or "assistant".
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Assistant answers free-form questions with the dashboard as context.
type Assistant struct {
	llm ContentGenerator
}

func NewAssistant(llm ContentGenerator) *Assistant {
	return &Assistant{llm: llm}
}

func (a *Assistant) Enabled() bool {
	return a != nil && a.llm != nil
}

// Ask returns the model's answer to question. Only the latest history
// messages are replayed.
func (a *Assistant) Ask(ctx context.Context, question string, snapshot metrics.Snapshot, history []ChatMessage) (string, error) {
	if !a.Enabled() {
		return "", ErrAssistantDisabled
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if len(question) > maxQuestionLength {
		question = question[:maxQuestionLength]
	}

	figures, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to encode dashboard: %w", err)
	}

	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}

	var b strings.Builder
	b.WriteString("Dashboard figures (JSON):\n")
	b.Write(figures)
	b.WriteString("\n\n")
	for _, m := range history {
		role := "User"
		if m.Role == "assistant" {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, strings.TrimSpace(m.Text))
	}
	fmt.Fprintf(&b, "User: %s\nAssistant:", question)

	return a.llm.Generate(ctx, assistantInstructions, b.String(), false)
}
