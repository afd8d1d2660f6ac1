// Package metrics computes the dashboard figures from gift and donor lists.
//
// Compute is a pure function: "now" is a parameter and nothing is cached, so
// identical inputs always produce identical snapshots.
package metrics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/givin-app/givin/internal/entities"
)

const UnknownDonorName = "Unknown Donor"

// Options bound the series length and ranking sizes.
type Options struct {
	Months      int
	TopLimit    int
	LybuntLimit int
	SybuntLimit int
}

// DefaultOptions returns six months of history, ten top donors and five
// LYBUNT and SYBUNT donors.
func DefaultOptions() Options {
	return Options{Months: 6, TopLimit: 10, LybuntLimit: 5, SybuntLimit: 5}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Months <= 0 {
		o.Months = d.Months
	}
	if o.TopLimit <= 0 {
		o.TopLimit = d.TopLimit
	}
	if o.LybuntLimit <= 0 {
		o.LybuntLimit = d.LybuntLimit
	}
	if o.SybuntLimit <= 0 {
		o.SybuntLimit = d.SybuntLimit
	}
	return o
}

// MonthlyPoint is one month of a series. Month is formatted "2006-01".
type MonthlyPoint struct {
	Month string          `json:"month"`
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// RankedDonor is one entry of a donor ranking. The JSON names follow the
// dashboard list widget, which shows a primary and a secondary line.
type RankedDonor struct {
	DonorID string          `json:"donor_id"`
	Name    string          `json:"primary"`
	Amount  decimal.Decimal `json:"secondary"`
}

// Snapshot holds every dashboard figure.
type Snapshot struct {
	TotalDonationsMTD     decimal.Decimal `json:"total_donations_mtd"`
	TotalDonorPool        int             `json:"total_donor_pool"`
	AverageDonationAmount decimal.Decimal `json:"average_donation_amount"`
	RecurringDonations    int             `json:"recurring_donations"`

	MonthlyDonations []MonthlyPoint `json:"monthly_donations"`
	MonthlyDonors    []MonthlyPoint `json:"monthly_donors"`
	MonthlyAverage   []MonthlyPoint `json:"monthly_average"`
	MonthlyRecurring []MonthlyPoint `json:"monthly_recurring"`

	TopDonors    []RankedDonor `json:"top_donors"`
	LybuntDonors []RankedDonor `json:"lybunt_donors"`
	SybuntDonors []RankedDonor `json:"sybunt_donors"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Compute builds a snapshot. Gifts without a date count towards the average,
// the recurring count and lifetime totals but not towards any month or year.
func Compute(gifts []entities.Gift, donors []entities.Donor, now time.Time, opts Options) Snapshot {
	opts = opts.withDefaults()

	names := make(map[string]string, len(donors))
	for _, d := range donors {
		names[d.ID] = d.DisplayName()
	}

	snap := Snapshot{
		TotalDonationsMTD:     decimal.Zero,
		TotalDonorPool:        len(donors),
		AverageDonationAmount: decimal.Zero,
		GeneratedAt:           now,
	}

	total := decimal.Zero
	for _, g := range gifts {
		total = total.Add(g.Amount)
		if g.IsRecurring {
			snap.RecurringDonations++
		}
		if d, ok := giftDate(g, now.Location()); ok && sameMonth(d, now) {
			snap.TotalDonationsMTD = snap.TotalDonationsMTD.Add(g.Amount)
		}
	}
	if len(gifts) > 0 {
		snap.AverageDonationAmount = total.Div(decimal.NewFromInt(int64(len(gifts)))).Round(2)
	}

	snap.MonthlyDonations, snap.MonthlyDonors, snap.MonthlyAverage, snap.MonthlyRecurring = monthlySeries(gifts, now, opts.Months)

	snap.TopDonors = topDonors(gifts, names, opts.TopLimit)
	snap.LybuntDonors, snap.SybuntDonors = lapsedDonors(gifts, names, now, opts.LybuntLimit, opts.SybuntLimit)

	return snap
}

func giftDate(g entities.Gift, loc *time.Location) (time.Time, bool) {
	if g.GiftDate == nil || g.GiftDate.IsZero() {
		return time.Time{}, false
	}
	return g.GiftDate.In(loc), true
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// monthlySeries returns the trailing months oldest first, the current month last.
func monthlySeries(gifts []entities.Gift, now time.Time, months int) (sums, donors, averages, recurring []MonthlyPoint) {
	type bucket struct {
		sum       decimal.Decimal
		count     int
		donors    map[string]bool
		recurring int
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	keys := make([]time.Time, months)
	buckets := make(map[string]*bucket, months)
	for i := 0; i < months; i++ {
		m := start.AddDate(0, i-(months-1), 0)
		keys[i] = m
		buckets[m.Format("2006-01")] = &bucket{sum: decimal.Zero, donors: map[string]bool{}}
	}

	for _, g := range gifts {
		d, ok := giftDate(g, now.Location())
		if !ok {
			continue
		}
		b, ok := buckets[d.Format("2006-01")]
		if !ok {
			continue
		}
		b.sum = b.sum.Add(g.Amount)
		b.count++
		b.donors[g.DonorID] = true
		if g.IsRecurring {
			b.recurring++
		}
	}

	for _, m := range keys {
		key := m.Format("2006-01")
		label := m.Format("Jan 2006")
		b := buckets[key]

		avg := decimal.Zero
		if b.count > 0 {
			avg = b.sum.Div(decimal.NewFromInt(int64(b.count))).Round(2)
		}

		sums = append(sums, MonthlyPoint{Month: key, Label: label, Value: b.sum})
		donors = append(donors, MonthlyPoint{Month: key, Label: label, Value: decimal.NewFromInt(int64(len(b.donors)))})
		averages = append(averages, MonthlyPoint{Month: key, Label: label, Value: avg})
		recurring = append(recurring, MonthlyPoint{Month: key, Label: label, Value: decimal.NewFromInt(int64(b.recurring))})
	}

	return sums, donors, averages, recurring
}

func topDonors(gifts []entities.Gift, names map[string]string, limit int) []RankedDonor {
	totals := make(map[string]decimal.Decimal)
	for _, g := range gifts {
		totals[g.DonorID] = totals[g.DonorID].Add(g.Amount)
	}
	return rank(totals, names, limit)
}

// lapsedDonors classifies donors by the calendar years they gave in.
// LYBUNT: gave last year but not this year, ranked by last year's total.
// SYBUNT: gave only before last year, ranked by their best year's total.
func lapsedDonors(gifts []entities.Gift, names map[string]string, now time.Time, lybuntLimit, sybuntLimit int) (lybunt, sybunt []RankedDonor) {
	thisYear := now.Year()
	lastYear := thisYear - 1

	byDonor := make(map[string]map[int]decimal.Decimal)
	for _, g := range gifts {
		d, ok := giftDate(g, now.Location())
		if !ok {
			continue
		}
		years, ok := byDonor[g.DonorID]
		if !ok {
			years = make(map[int]decimal.Decimal)
			byDonor[g.DonorID] = years
		}
		years[d.Year()] = years[d.Year()].Add(g.Amount)
	}

	lybuntTotals := make(map[string]decimal.Decimal)
	sybuntTotals := make(map[string]decimal.Decimal)

	for donorID, years := range byDonor {
		_, gaveThisYear := years[thisYear]
		lastYearTotal, gaveLastYear := years[lastYear]

		switch {
		case gaveThisYear:
		case gaveLastYear:
			lybuntTotals[donorID] = lastYearTotal
		default:
			best := decimal.Zero
			for _, amount := range years {
				if amount.GreaterThan(best) {
					best = amount
				}
			}
			sybuntTotals[donorID] = best
		}
	}

	return rank(lybuntTotals, names, lybuntLimit), rank(sybuntTotals, names, sybuntLimit)
}

// rank sorts by amount descending, then donor id ascending, and truncates.
func rank(totals map[string]decimal.Decimal, names map[string]string, limit int) []RankedDonor {
	ranked := make([]RankedDonor, 0, len(totals))
	for donorID, amount := range totals {
		ranked = append(ranked, RankedDonor{
			DonorID: donorID,
			Name:    donorName(names, donorID),
			Amount:  amount,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].Amount.Cmp(ranked[j].Amount); c != 0 {
			return c > 0
		}
		return ranked[i].DonorID < ranked[j].DonorID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func donorName(names map[string]string, donorID string) string {
	if name := names[donorID]; name != "" {
		return name
	}
	return UnknownDonorName
}
