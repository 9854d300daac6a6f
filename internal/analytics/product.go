// Package analytics holds the pure scoring rules of the revenue pipeline.
// Every function here is deterministic and free of I/O so each weight and
// threshold can be tested on its own.
package analytics

import (
	"math"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_revenue/internal/models"
)

const day = 24 * time.Hour

// Trailing windows, measured back from the run's "now".
const (
	Window30d = 30 * day
	Window60d = 60 * day
	Window90d = 90 * day
)

// Tag thresholds.
const (
	HeroTagThreshold  = 70.0
	GhostTagThreshold = 70.0
	RisingTrend       = 20.0
	DecliningTrend    = -20.0
)

// ProductSales is the windowed aggregate of one product's order lines.
// UnitsPrev30d covers the window 60 to 30 days ago and only feeds the trend.
type ProductSales struct {
	UnitsSold30d    int
	UnitsSold90d    int
	UnitsPrev30d    int
	Revenue30d      decimal.Decimal
	Revenue90d      decimal.Decimal
	UniqueStores30d int
	UniqueStores90d int
	OrderLines90d   int
}

// AggregateProductSales folds order lines into 30/90 day windows ending at now.
// Lines newer than now or older than 90 days are ignored.
func AggregateProductSales(lines []models.OrderLine, now time.Time) ProductSales {
	var (
		s        = ProductSales{Revenue30d: decimal.Zero, Revenue90d: decimal.Zero}
		since30  = now.Add(-Window30d)
		since60  = now.Add(-Window60d)
		since90  = now.Add(-Window90d)
		stores30 = make(map[string]struct{})
		stores90 = make(map[string]struct{})
	)

	for _, l := range lines {
		at := l.OrderedAt
		if at.After(now) || at.Before(since90) {
			continue
		}
		total := l.LineTotal()

		s.UnitsSold90d += l.Quantity
		s.Revenue90d = s.Revenue90d.Add(total)
		s.OrderLines90d++
		stores90[l.StoreID] = struct{}{}

		switch {
		case !at.Before(since30):
			s.UnitsSold30d += l.Quantity
			s.Revenue30d = s.Revenue30d.Add(total)
			stores30[l.StoreID] = struct{}{}
		case !at.Before(since60):
			s.UnitsPrev30d += l.Quantity
		}
	}

	s.UniqueStores30d = len(stores30)
	s.UniqueStores90d = len(stores90)
	return s
}

// AvgOrderQuantity is units sold over order lines in the 90 day window.
func (s ProductSales) AvgOrderQuantity() float64 {
	if s.OrderLines90d == 0 {
		return 0
	}
	return float64(s.UnitsSold90d) / float64(s.OrderLines90d)
}

// Trend is the percent change of current against previous. With no previous
// volume it is 100 when anything sold now and 0 otherwise. Not clamped.
func Trend(current, previous int) float64 {
	if previous > 0 {
		return float64(current-previous) / float64(previous) * 100
	}
	if current > 0 {
		return 100
	}
	return 0
}

// Clamp bounds v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// HeroScore measures current commercial strength on a 0..100 scale:
// revenue (max 30), reach (max 30), growth (max 20) and volume (max 20).
func HeroScore(s ProductSales, trend30d float64) float64 {
	revenue := s.Revenue30d.InexactFloat64()

	score := math.Min(30, revenue/100)
	score += math.Min(30, float64(s.UniqueStores30d)*3)
	if trend30d > 0 {
		score += math.Min(20, trend30d/5)
	}
	score += math.Min(20, float64(s.UnitsSold30d)/10)

	return Clamp(score, 0, 100)
}

// GhostScore measures stagnation on a 0..100 scale.
func GhostScore(s ProductSales, trend30d float64) float64 {
	var score float64
	if s.UnitsSold90d < 10 {
		score += 30
	}
	if s.UniqueStores90d < 3 {
		score += 30
	}
	if trend30d < -10 {
		score += math.Min(20, math.Abs(trend30d)/2)
	}
	if s.Revenue90d.LessThan(decimal.NewFromInt(100)) {
		score += 20
	}
	return Clamp(score, 0, 100)
}

// ProductTags derives the independent product tags. The result is never nil.
func ProductTags(s ProductSales, trend30d, hero, ghost float64) []string {
	tags := make([]string, 0, 3)
	if hero >= HeroTagThreshold {
		tags = append(tags, models.TagHero)
	}
	if ghost >= GhostTagThreshold {
		tags = append(tags, models.TagGhost)
	}
	if trend30d > RisingTrend {
		tags = append(tags, models.TagRising)
	}
	if trend30d < DecliningTrend {
		tags = append(tags, models.TagDeclining)
	}
	if s.UnitsSold90d < 5 && s.UniqueStores90d < 2 {
		tags = append(tags, models.TagSlowMover)
	}
	return tags
}

// BuildProductMetric computes a full snapshot row for productID.
func BuildProductMetric(productID string, lines []models.OrderLine, now, snapshotDate time.Time) models.ProductRevenueMetric {
	s := AggregateProductSales(lines, now)
	trend := Trend(s.UnitsSold30d, s.UnitsPrev30d)
	hero := HeroScore(s, trend)
	ghost := GhostScore(s, trend)

	return models.ProductRevenueMetric{
		ProductID:        productID,
		SnapshotDate:     snapshotDate,
		Revenue30d:       s.Revenue30d,
		Revenue90d:       s.Revenue90d,
		UnitsSold30d:     s.UnitsSold30d,
		UnitsSold90d:     s.UnitsSold90d,
		AvgOrderQuantity: s.AvgOrderQuantity(),
		UniqueStores30d:  s.UniqueStores30d,
		UniqueStores90d:  s.UniqueStores90d,
		Trend30d:         trend,
		// TODO: compute trend_90d once a 180 day history window is available.
		Trend90d:   0,
		HeroScore:  hero,
		GhostScore: ghost,
		Tags:       pq.StringArray(ProductTags(s, trend, hero, ghost)),
		ComputedAt: now,
	}
}

// SnapshotDate truncates now to midnight in loc. A run computes it once and
// keys every row it writes with the result.
func SnapshotDate(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := now.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
