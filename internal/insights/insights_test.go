package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/metrics"
)

type fakeLLM struct {
	reply       string
	returnError error
	system      string
	prompt      string
	jsonOutput  bool
}

func (f *fakeLLM) Generate(_ context.Context, system, prompt string, jsonOutput bool) (string, error) {
	f.system = system
	f.prompt = prompt
	f.jsonOutput = jsonOutput
	return f.reply, f.returnError
}

func (f *fakeLLM) Model() string { return "fake-model" }

func donation(amount, date, campaign, donor string) entities.DonationRecord {
	d, _ := time.Parse("2006-01-02", date)
	return entities.DonationRecord{
		Amount:   decimal.RequireFromString(amount),
		Date:     d,
		Campaign: campaign,
		DonorID:  donor,
	}
}

func sampleDonations() []entities.DonationRecord {
	return []entities.DonationRecord{
		donation("100", "2024-01-10", "Spring", "D1"),
		donation("50", "2024-01-20", "Gala", "D2"),
		donation("200", "2024-02-05", "Spring", "D1"),
		donation("25", "2024-02-07", "Books", "D3"),
		donation("10", "2024-02-09", "Zoo", "D4"),
	}
}

func TestSummarize(t *testing.T) {
	m := Summarize(sampleDonations())

	assert.Equal(t, 5, m.TotalDonations)
	assert.Equal(t, "385", m.TotalAmount.String())
	assert.Equal(t, "77", m.AverageDonation.String())

	require.Len(t, m.TopCampaigns, 3)
	assert.Equal(t, "Spring", m.TopCampaigns[0].Campaign)
	assert.Equal(t, 2, m.TopCampaigns[0].Count)
	assert.Equal(t, "Gala", m.TopCampaigns[1].Campaign)
	assert.Equal(t, "Books", m.TopCampaigns[2].Campaign)

	require.Len(t, m.DonationTrends, 2)
	assert.Equal(t, "2024-01", m.DonationTrends[0].Month)
	assert.Equal(t, "150", m.DonationTrends[0].Amount.String())
	assert.Equal(t, "235", m.DonationTrends[1].Amount.String())

	assert.InDelta(t, 56.67, m.GrowthRate, 0.001)
	assert.InDelta(t, 25.0, m.DonorRetentionRate, 0.001)
}

func TestSummarize_Empty(t *testing.T) {
	m := Summarize(nil)

	assert.Zero(t, m.TotalDonations)
	assert.True(t, m.AverageDonation.IsZero())
	assert.Empty(t, m.TopCampaigns)
	assert.Zero(t, m.GrowthRate)
}

func TestGenerator_GenerateMetrics(t *testing.T) {
	llm := &fakeLLM{reply: "```json\n{\"insights\": [\"Spring leads\", \" \", \"February grew\"]}\n```"}
	g := NewGenerator(llm)
	g.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

	m, err := g.GenerateMetrics(context.Background(), sampleDonations())

	require.NoError(t, err)
	assert.Equal(t, []string{"Spring leads", "February grew"}, m.Insights)
	assert.Equal(t, "fake-model", m.Model)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), m.GeneratedAt)
	assert.True(t, llm.jsonOutput)
	assert.Contains(t, llm.prompt, `"campaign":"Spring"`)
	assert.Contains(t, llm.system, "nonprofit")
}

func TestGenerator_Errors(t *testing.T) {
	t.Run("no donations", func(t *testing.T) {
		_, err := NewGenerator(&fakeLLM{}).GenerateMetrics(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNoDonations)
	})

	t.Run("model failure", func(t *testing.T) {
		failure := errors.New("quota exceeded")
		_, err := NewGenerator(&fakeLLM{returnError: failure}).GenerateMetrics(context.Background(), sampleDonations())
		assert.ErrorIs(t, err, failure)
	})

	t.Run("malformed reply", func(t *testing.T) {
		_, err := NewGenerator(&fakeLLM{reply: "sure, here you go"}).GenerateMetrics(context.Background(), sampleDonations())
		assert.Error(t, err)
	})
}

func TestGenerator_WithoutModel(t *testing.T) {
	m, err := NewGenerator(nil).GenerateMetrics(context.Background(), sampleDonations())

	require.NoError(t, err)
	assert.Empty(t, m.Insights)
	assert.Empty(t, m.Model)
	assert.Equal(t, 5, m.TotalDonations)
}

func TestParseInsights_Limit(t *testing.T) {
	got, err := parseInsights(`{"insights": ["1","2","3","4","5","6","7"]}`)

	require.NoError(t, err)
	assert.Len(t, got, maxInsights)
}

func TestAssistant_Ask(t *testing.T) {
	llm := &fakeLLM{reply: "You raised $125.50 this month."}
	a := NewAssistant(llm)
	snap := metrics.Snapshot{TotalDonationsMTD: decimal.RequireFromString("125.5")}

	history := make([]ChatMessage, 0, 12)
	for i := 0; i < 12; i++ {
		history = append(history, ChatMessage{Role: "user", Text: "old"})
	}
	history[11] = ChatMessage{Role: "assistant", Text: "latest answer"}

	answer, err := a.Ask(context.Background(), "  How much this month?  ", snap, history)

	require.NoError(t, err)
	assert.Equal(t, "You raised $125.50 this month.", answer)
	assert.False(t, llm.jsonOutput)
	assert.Contains(t, llm.prompt, `"total_donations_mtd":"125.5"`)
	assert.Contains(t, llm.prompt, "Assistant: latest answer")
	assert.Contains(t, llm.prompt, "User: How much this month?\nAssistant:")
}

func TestAssistant_Errors(t *testing.T) {
	_, err := NewAssistant(nil).Ask(context.Background(), "hi", metrics.Snapshot{}, nil)
	assert.ErrorIs(t, err, ErrAssistantDisabled)

	_, err = NewAssistant(&fakeLLM{}).Ask(context.Background(), "   ", metrics.Snapshot{}, nil)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}
