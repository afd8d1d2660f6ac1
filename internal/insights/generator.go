package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/givin-app/givin/internal/entities"
)

const (
	topCampaignLimit = 3
	maxInsights      = 5
	// promptRowLimit caps how many donations are sent to the model verbatim.
	promptRowLimit = 500
)

var ErrNoDonations = errors.New("no donation data provided")

const analystInstruction = `You are an expert data analyst for nonprofit organizations.
Analyze the donation data provided and extract meaningful insights.
Respond with a JSON object of the form {"insights": [string, ...]} holding 3 to 5 key
observations about the donation data. Refer to amounts in the currency given.`

// Generator builds DonationMetrics. Figures are computed locally; the model
// only writes the narrative. A nil ContentGenerator yields figures only.
type Generator struct {
	llm ContentGenerator
	now func() time.Time
}

func NewGenerator(llm ContentGenerator) *Generator {
	return &Generator{llm: llm, now: time.Now}
}

// GenerateMetrics implements importers.MetricsGenerator.
func (g *Generator) GenerateMetrics(ctx context.Context, records []entities.DonationRecord) (*entities.DonationMetrics, error) {
	if len(records) == 0 {
		return nil, ErrNoDonations
	}

	m := Summarize(records)
	m.GeneratedAt = g.now().UTC()

	if g.llm == nil {
		return m, nil
	}

	narrative, err := g.narrate(ctx, m, records)
	if err != nil {
		return nil, err
	}
	m.Insights = narrative
	m.Model = g.llm.Model()

	log.Printf("Insights: generated %d observations for %d donations", len(m.Insights), m.TotalDonations)
	return m, nil
}

func (g *Generator) narrate(ctx context.Context, m *entities.DonationMetrics, records []entities.DonationRecord) ([]string, error) {
	prompt, err := buildPrompt(m, records)
	if err != nil {
		return nil, err
	}

	text, err := g.llm.Generate(ctx, analystInstruction, prompt, true)
	if err != nil {
		return nil, err
	}

	return parseInsights(text)
}

type promptRow struct {
	Amount   string `json:"amount"`
	Date     string `json:"date"`
	Campaign string `json:"campaign"`
	DonorID  string `json:"donor_id"`
}

func buildPrompt(m *entities.DonationMetrics, records []entities.DonationRecord) (string, error) {
	rows := make([]promptRow, 0, min(len(records), promptRowLimit))
	for i, r := range records {
		if i == promptRowLimit {
			break
		}
		rows = append(rows, promptRow{
			Amount:   r.Amount.StringFixed(2),
			Date:     r.Date.Format("2006-01-02"),
			Campaign: r.Campaign,
			DonorID:  r.DonorID,
		})
	}

	payload := struct {
		Currency  string                    `json:"currency"`
		Summary   *entities.DonationMetrics `json:"summary"`
		Donations []promptRow               `json:"donations"`
		Truncated bool                      `json:"truncated"`
	}{
		Currency:  "USD",
		Summary:   m,
		Donations: rows,
		Truncated: len(records) > promptRowLimit,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode donation data: %w", err)
	}
	return "Here is my nonprofit's donation data: " + string(data), nil
}

func parseInsights(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var reply struct {
		Insights []string `json:"insights"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &reply); err != nil {
		return nil, fmt.Errorf("failed to parse model reply: %w", err)
	}

	insights := make([]string, 0, len(reply.Insights))
	for _, s := range reply.Insights {
		if s = strings.TrimSpace(s); s != "" {
			insights = append(insights, s)
		}
	}
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights, nil
}

// Summarize computes the numeric part of a report.
func Summarize(records []entities.DonationRecord) *entities.DonationMetrics {
	m := &entities.DonationMetrics{
		TotalDonations:  len(records),
		TotalAmount:     decimal.Zero,
		AverageDonation: decimal.Zero,
		TopCampaigns:    []entities.CampaignTotal{},
		DonationTrends:  []entities.TrendPoint{},
		Insights:        []string{},
	}
	if len(records) == 0 {
		return m
	}

	campaigns := make(map[string]*entities.CampaignTotal)
	months := make(map[string]*entities.TrendPoint)
	giftsPerDonor := make(map[string]int)

	for _, r := range records {
		m.TotalAmount = m.TotalAmount.Add(r.Amount)

		c, ok := campaigns[r.Campaign]
		if !ok {
			c = &entities.CampaignTotal{Campaign: r.Campaign, Amount: decimal.Zero}
			campaigns[r.Campaign] = c
		}
		c.Amount = c.Amount.Add(r.Amount)
		c.Count++

		key := r.Date.Format("2006-01")
		p, ok := months[key]
		if !ok {
			p = &entities.TrendPoint{Month: key, Amount: decimal.Zero}
			months[key] = p
		}
		p.Amount = p.Amount.Add(r.Amount)
		p.Count++

		giftsPerDonor[r.DonorID]++
	}

	m.AverageDonation = m.TotalAmount.Div(decimal.NewFromInt(int64(len(records)))).Round(2)

	for _, c := range campaigns {
		m.TopCampaigns = append(m.TopCampaigns, *c)
	}
	sort.Slice(m.TopCampaigns, func(i, j int) bool {
		if c := m.TopCampaigns[i].Amount.Cmp(m.TopCampaigns[j].Amount); c != 0 {
			return c > 0
		}
		return m.TopCampaigns[i].Campaign < m.TopCampaigns[j].Campaign
	})
	if len(m.TopCampaigns) > topCampaignLimit {
		m.TopCampaigns = m.TopCampaigns[:topCampaignLimit]
	}

	for _, p := range months {
		m.DonationTrends = append(m.DonationTrends, *p)
	}
	sort.Slice(m.DonationTrends, func(i, j int) bool {
		return m.DonationTrends[i].Month < m.DonationTrends[j].Month
	})

	m.GrowthRate = growthRate(m.DonationTrends)
	m.DonorRetentionRate = retentionRate(giftsPerDonor)

	return m
}

// growthRate compares the two latest months, in percent.
func growthRate(trends []entities.TrendPoint) float64 {
	if len(trends) < 2 {
		return 0
	}
	prev := trends[len(trends)-2].Amount
	last := trends[len(trends)-1].Amount
	if prev.IsZero() {
		return 0
	}
	rate, _ := last.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return rate
}

// retentionRate is the share of donors with more than one gift, in percent.
func retentionRate(giftsPerDonor map[string]int) float64 {
	if len(giftsPerDonor) == 0 {
		return 0
	}
	repeat := 0
	for _, n := range giftsPerDonor {
		if n > 1 {
			repeat++
		}
	}
	rate, _ := decimal.NewFromInt(int64(repeat)).
		Div(decimal.NewFromInt(int64(len(giftsPerDonor)))).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		Float64()
	return rate
}
