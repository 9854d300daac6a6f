package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_revenue/internal/models"
)

// Deal rule thresholds.
const (
	BundleHeroThreshold    = 70.0
	DiscountGhostThreshold = 60.0
	DeepDiscountGhostScore = 80.0
	IntroMaxStores         = 10
	BundleMinQty           = 3
	DeepDiscountPct        = 15
	StandardDiscountPct    = 10
	IntroDiscountPct       = 5
	BundleValidity         = 14 * day
	DiscountValidity       = 7 * day
	IntroValidity          = 14 * day
)

// Listing floors and caps used by the dashboard queries.
const (
	HeroListFloor        = 60.0
	GhostListFloor       = 50.0
	HeroGhostListLimit   = 5
	StorePredictionLimit = 10
)

func trendDirection(trend float64) string {
	switch {
	case trend > 0:
		return "upward"
	case trend < 0:
		return "downward"
	default:
		return "flat"
	}
}

func pct(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

// RecommendDeals evaluates the bundle, discount and intro rules against one
// metric row. Rules are independent, so zero to three drafts come back. IDs
// and creation times are left for the caller to assign.
func RecommendDeals(m models.ProductMetricView, now time.Time) []models.DealRecommendation {
	base := models.DealRecommendation{
		ProductID:    m.ProductID,
		BusinessID:   m.BusinessID,
		VerticalID:   m.VerticalID,
		SnapshotDate: m.SnapshotDate,
	}
	deals := make([]models.DealRecommendation, 0, 3)

	if m.HeroScore >= BundleHeroThreshold {
		d := base
		qty := BundleMinQty
		d.DealType = models.DealTypeBundle
		d.TargetSegment = models.SegmentHighValue
		d.SuggestedMinQty = &qty
		d.ExpiresAt = now.Add(BundleValidity)
		d.Rationale = fmt.Sprintf(
			"%d units sold in the last 30 days with %s trend (%+.1f%%); bundle at %d+ units for high-value stores",
			m.UnitsSold30d, trendDirection(m.Trend30d), m.Trend30d, BundleMinQty,
		)
		deals = append(deals, d)
	}

	if m.GhostScore >= DiscountGhostThreshold || m.HasTag(models.TagSlowMover) {
		d := base
		discount := int64(StandardDiscountPct)
		if m.GhostScore >= DeepDiscountGhostScore {
			discount = DeepDiscountPct
		}
		d.DealType = models.DealTypeDiscount
		d.TargetSegment = models.SegmentAllStores
		d.SuggestedDiscountPct = pct(discount)
		d.ExpiresAt = now.Add(DiscountValidity)
		d.Rationale = fmt.Sprintf(
			"only %d units sold in the last 90 days; %d%% discount to move stock",
			m.UnitsSold90d, discount,
		)
		deals = append(deals, d)
	}

	if m.HasTag(models.TagRising) && m.UniqueStores30d < IntroMaxStores {
		d := base
		d.DealType = models.DealTypeIntro
		d.TargetSegment = models.SegmentNewStores
		d.SuggestedDiscountPct = pct(IntroDiscountPct)
		d.ExpiresAt = now.Add(IntroValidity)
		d.Rationale = fmt.Sprintf(
			"growing %+.1f%% over 30 days but carried by only %d stores; intro offer for new stores",
			m.Trend30d, m.UniqueStores30d,
		)
		deals = append(deals, d)
	}

	return deals
}
