package metrics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givin-app/givin/internal/entities"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func gift(donorID, amount string, date *time.Time) entities.Gift {
	return entities.Gift{DonorID: donorID, Amount: decimal.RequireFromString(amount), GiftDate: date}
}

func on(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
	return &t
}

func TestCompute_Empty(t *testing.T) {
	snap := Compute(nil, nil, now, DefaultOptions())

	assert.True(t, snap.TotalDonationsMTD.IsZero())
	assert.True(t, snap.AverageDonationAmount.IsZero())
	assert.Zero(t, snap.TotalDonorPool)
	assert.Len(t, snap.MonthlyDonations, 6)
	assert.Empty(t, snap.TopDonors)
	assert.Empty(t, snap.LybuntDonors)
	assert.Empty(t, snap.SybuntDonors)
	assert.Equal(t, now, snap.GeneratedAt)
}

func TestCompute_MonthToDate(t *testing.T) {
	gifts := []entities.Gift{
		gift("A", "100", on(2024, 6, 1)),
		gift("B", "25.50", on(2024, 6, 14)),
		gift("C", "40", on(2024, 5, 31)),
		gift("D", "999", on(2023, 6, 10)),
		gift("E", "60", nil),
	}

	snap := Compute(gifts, nil, now, DefaultOptions())

	assert.Equal(t, "125.5", snap.TotalDonationsMTD.String())
	// undated gifts still count towards the average
	assert.Equal(t, "244.9", snap.AverageDonationAmount.String())
}

func TestCompute_Recurring(t *testing.T) {
	g1 := gift("A", "10", on(2024, 6, 1))
	g1.IsRecurring = true
	g2 := gift("A", "10", on(2024, 5, 1))
	g2.IsRecurring = true
	g3 := gift("B", "10", on(2024, 5, 2))

	snap := Compute([]entities.Gift{g1, g2, g3}, nil, now, DefaultOptions())

	assert.Equal(t, 2, snap.RecurringDonations)
	last := snap.MonthlyRecurring[len(snap.MonthlyRecurring)-1]
	assert.Equal(t, "2024-06", last.Month)
	assert.Equal(t, "1", last.Value.String())
}

func TestCompute_MonthlySeries(t *testing.T) {
	gifts := []entities.Gift{
		gift("A", "10", on(2024, 1, 5)),
		gift("A", "30", on(2024, 1, 20)),
		gift("B", "20", on(2024, 1, 21)),
		gift("C", "50", on(2023, 12, 31)),
		gift("D", "70", nil),
	}

	snap := Compute(gifts, nil, now, DefaultOptions())

	require.Len(t, snap.MonthlyDonations, 6)
	months := make([]string, 0, 6)
	for _, p := range snap.MonthlyDonations {
		months = append(months, p.Month)
	}
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06"}, months)
	assert.Equal(t, "Jan 2024", snap.MonthlyDonations[0].Label)

	assert.Equal(t, "60", snap.MonthlyDonations[0].Value.String())
	assert.Equal(t, "2", snap.MonthlyDonors[0].Value.String())
	assert.Equal(t, "20", snap.MonthlyAverage[0].Value.String())
	assert.True(t, snap.MonthlyDonations[1].Value.IsZero())
}

func TestCompute_MonthlySeriesCrossesYear(t *testing.T) {
	jan := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)

	snap := Compute([]entities.Gift{gift("A", "5", on(2023, 11, 30))}, nil, jan, Options{Months: 3})

	require.Len(t, snap.MonthlyDonations, 3)
	assert.Equal(t, "2023-11", snap.MonthlyDonations[0].Month)
	assert.Equal(t, "5", snap.MonthlyDonations[0].Value.String())
	assert.Equal(t, "2024-01", snap.MonthlyDonations[2].Month)
}

func TestCompute_TopDonors(t *testing.T) {
	donors := []entities.Donor{
		{ID: "A", FirstName: "Ada", LastName: "Lovelace"},
		{ID: "B", FirstName: "Grace", LastName: "Hopper"},
	}
	gifts := []entities.Gift{
		gift("A", "100", on(2024, 1, 1)),
		gift("A", "50", nil),
		gift("B", "150", on(2020, 1, 1)),
		gift("Z", "10", on(2024, 2, 1)),
	}

	snap := Compute(gifts, donors, now, DefaultOptions())

	require.Len(t, snap.TopDonors, 3)
	// equal totals fall back to donor id order
	assert.Equal(t, "A", snap.TopDonors[0].DonorID)
	assert.Equal(t, "Ada Lovelace", snap.TopDonors[0].Name)
	assert.Equal(t, "150", snap.TopDonors[0].Amount.String())
	assert.Equal(t, "B", snap.TopDonors[1].DonorID)
	assert.Equal(t, UnknownDonorName, snap.TopDonors[2].Name)
	assert.Equal(t, 2, snap.TotalDonorPool)
}

func TestCompute_TopDonorsLimit(t *testing.T) {
	var gifts []entities.Gift
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		gifts = append(gifts, gift(id, "1", on(2024, 1, 1)))
	}

	snap := Compute(gifts, nil, now, DefaultOptions())

	assert.Len(t, snap.TopDonors, 10)
	assert.Equal(t, "a", snap.TopDonors[0].DonorID)
}

func TestCompute_Lybunt(t *testing.T) {
	donors := []entities.Donor{{ID: "A", FirstName: "Ada"}, {ID: "B", FirstName: "Bo"}}
	gifts := []entities.Gift{
		gift("A", "100", on(2023, 3, 1)),
		gift("A", "50", on(2023, 11, 1)),
		gift("B", "30", on(2023, 5, 1)),
		gift("B", "500", on(2021, 5, 1)),
		// gave again this year, so not lapsed
		gift("C", "900", on(2023, 5, 1)),
		gift("C", "1", on(2024, 2, 1)),
		// undated gifts never place a donor in a year
		gift("D", "400", nil),
	}

	snap := Compute(gifts, donors, now, DefaultOptions())

	require.Len(t, snap.LybuntDonors, 2)
	assert.Equal(t, "A", snap.LybuntDonors[0].DonorID)
	assert.Equal(t, "Ada", snap.LybuntDonors[0].Name)
	assert.Equal(t, "150", snap.LybuntDonors[0].Amount.String())
	assert.Equal(t, "B", snap.LybuntDonors[1].DonorID)
	assert.Equal(t, "30", snap.LybuntDonors[1].Amount.String())
	assert.Empty(t, snap.SybuntDonors)
}

func TestCompute_Sybunt(t *testing.T) {
	gifts := []entities.Gift{
		gift("A", "20", on(2020, 1, 1)),
		gift("A", "20", on(2020, 6, 1)),
		gift("A", "35", on(2021, 1, 1)),
		gift("B", "60", on(2019, 1, 1)),
		gift("C", "5", on(2022, 12, 31)),
	}

	snap := Compute(gifts, nil, now, DefaultOptions())

	require.Len(t, snap.SybuntDonors, 3)
	assert.Equal(t, "B", snap.SybuntDonors[0].DonorID)
	assert.Equal(t, "A", snap.SybuntDonors[1].DonorID)
	assert.Equal(t, "40", snap.SybuntDonors[1].Amount.String(), "best single year")
	assert.Equal(t, "C", snap.SybuntDonors[2].DonorID)
	assert.Empty(t, snap.LybuntDonors)
}

func TestCompute_LapsedLimit(t *testing.T) {
	var gifts []entities.Gift
	for i, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		gifts = append(gifts, gift(id, decimal.NewFromInt(int64(10+i)).String(), on(2023, 1, 1)))
	}

	snap := Compute(gifts, nil, now, DefaultOptions())

	require.Len(t, snap.LybuntDonors, 5)
	assert.Equal(t, "g", snap.LybuntDonors[0].DonorID)
}

func TestCompute_Deterministic(t *testing.T) {
	gifts := []entities.Gift{
		gift("B", "10", on(2023, 1, 1)),
		gift("A", "10", on(2023, 1, 1)),
		gift("C", "10", on(2023, 1, 1)),
	}

	first := Compute(gifts, nil, now, DefaultOptions())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Compute(gifts, nil, now, DefaultOptions()))
	}
	assert.Equal(t, "A", first.LybuntDonors[0].DonorID)
}
