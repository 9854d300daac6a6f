package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/lib/pq"

	"github.com/GTDGit/gtd_revenue/internal/models"
)

const (
	// DefaultCycleDays is assumed when a product has fewer than two distinct orders.
	DefaultCycleDays = 30.0
	// PrimarySKUCount is how many of a store's products are marked primary.
	PrimarySKUCount = 5

	restockLow  = 0.8
	restockHigh = 1.2
)

// ProductHistory is one product's order cadence within a store.
type ProductHistory struct {
	ProductID  string
	LastOrder  time.Time
	TotalQty   int
	OrderCount int
	OrderTimes []time.Time
}

// ExpectedQuantity is the mean quantity per order line.
func (h ProductHistory) ExpectedQuantity() float64 {
	if h.OrderCount == 0 {
		return 0
	}
	return float64(h.TotalQty) / float64(h.OrderCount)
}

// GroupByProduct reconstructs per-product histories from a store's lines and
// returns them ranked by total quantity, highest first. Ties break on product
// id so the ranking is stable between runs.
func GroupByProduct(lines []models.OrderLine) []ProductHistory {
	byProduct := make(map[string]*ProductHistory)
	order := make([]string, 0)

	for _, l := range lines {
		h, ok := byProduct[l.ProductID]
		if !ok {
			h = &ProductHistory{ProductID: l.ProductID}
			byProduct[l.ProductID] = h
			order = append(order, l.ProductID)
		}
		if l.OrderedAt.After(h.LastOrder) {
			h.LastOrder = l.OrderedAt
		}
		h.TotalQty += l.Quantity
		h.OrderCount++
		h.OrderTimes = append(h.OrderTimes, l.OrderedAt)
	}

	out := make([]ProductHistory, 0, len(order))
	for _, id := range order {
		out = append(out, *byProduct[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalQty != out[j].TotalQty {
			return out[i].TotalQty > out[j].TotalQty
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// AverageCycleDays is the mean gap in days between consecutive distinct
// order timestamps, or DefaultCycleDays with fewer than two of them.
func AverageCycleDays(times []time.Time) float64 {
	distinct := make([]time.Time, 0, len(times))
	seen := make(map[int64]struct{}, len(times))
	for _, t := range times {
		k := t.UnixNano()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		distinct = append(distinct, t)
	}
	if len(distinct) < 2 {
		return DefaultCycleDays
	}

	sort.Slice(distinct, func(i, j int) bool { return distinct[i].Before(distinct[j]) })

	var total time.Duration
	for i := 1; i < len(distinct); i++ {
		total += distinct[i].Sub(distinct[i-1])
	}
	return total.Hours() / 24 / float64(len(distinct)-1)
}

// DaysSince is the whole number of days from last to now, never negative.
func DaysSince(last, now time.Time) int {
	if !now.After(last) {
		return 0
	}
	return int(math.Floor(now.Sub(last).Hours() / 24))
}

// BuyProbability7d scores the chance of a reorder within a week. The base is
// 30, plus 30 once 80% of the cycle has elapsed, plus 20 once the full cycle
// has elapsed, shifted by the store's heat score around its neutral 50.
func BuyProbability7d(daysSince int, cycleDays, heatScore float64) float64 {
	d := float64(daysSince)
	p := 30.0
	if d >= restockLow*cycleDays {
		p += 30
	}
	if d >= cycleDays {
		p += 20
	}
	p += (heatScore - models.DefaultHeatScore) * 0.3
	return Clamp(p, 0, 100)
}

// BuyProbability30d widens the 7 day probability to a month.
func BuyProbability30d(prob7d float64) float64 {
	return Clamp(prob7d+20, 0, 100)
}

// PredictionTags returns restock when the elapsed time sits inside the reorder
// window and primary for top-ranked products. The result is never nil.
func PredictionTags(daysSince int, cycleDays float64, primary bool) []string {
	tags := make([]string, 0, 2)
	d := float64(daysSince)
	if d >= restockLow*cycleDays && d <= restockHigh*cycleDays {
		tags = append(tags, models.TagRestock)
	}
	if primary {
		tags = append(tags, models.TagPrimary)
	}
	return tags
}

// BuildStorePredictions produces one prediction per product the store ordered,
// in rank order. A store without lines yields no predictions.
func BuildStorePredictions(storeID string, lines []models.OrderLine, heatScore float64, now, snapshotDate time.Time) []models.StoreProductPrediction {
	histories := GroupByProduct(lines)
	out := make([]models.StoreProductPrediction, 0, len(histories))

	for rank, h := range histories {
		primary := rank < PrimarySKUCount
		days := DaysSince(h.LastOrder, now)
		cycle := AverageCycleDays(h.OrderTimes)
		p7 := BuyProbability7d(days, cycle, heatScore)

		out = append(out, models.StoreProductPrediction{
			StoreID:            storeID,
			ProductID:          h.ProductID,
			SnapshotDate:       snapshotDate,
			BuyProb7d:          p7,
			BuyProb30d:         BuyProbability30d(p7),
			LastOrderAt:        h.LastOrder,
			DaysSinceLastOrder: days,
			AvgCycleDays:       cycle,
			ExpectedQuantity:   h.ExpectedQuantity(),
			IsPrimarySKU:       primary,
			IsExperiment:       false,
			Tags:               pq.StringArray(PredictionTags(days, cycle, primary)),
			ComputedAt:         now,
		})
	}
	return out
}
