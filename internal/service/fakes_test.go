package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/GTDGit/gtd_revenue/internal/config"
	"github.com/GTDGit/gtd_revenue/internal/models"
)

var (
	testNow  = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	testDate = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	errDB    = errors.New("connection refused")
)

func testConfig(concurrency int) config.PipelineConfig {
	return config.PipelineConfig{
		Concurrency:   concurrency,
		Location:      time.UTC,
		FailureSample: 20,
		DealsMode:     config.DealsModeSupersede,
	}
}

func fixedClock() clock {
	return clock{now: func() time.Time { return testNow }, loc: time.UTC}
}

func day(key time.Time) string { return key.Format("2006-01-02") }

type fakeCatalog struct {
	products []models.Product
	stores   []models.Store
	err      error
}

func (f *fakeCatalog) ListProducts(_ context.Context, scope models.Scope) ([]models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Product, 0)
	for _, p := range f.products {
		if scope.ProductID == "" || scope.ProductID == p.ID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ListActiveStores(_ context.Context, scope models.Scope) ([]models.Store, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Store, 0)
	for _, s := range f.stores {
		if scope.StoreID == "" || scope.StoreID == s.ID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeOrders struct {
	byProduct map[string][]models.OrderLine
	byStore   map[string][]models.OrderLine
	fail      map[string]bool
}

func (f *fakeOrders) ProductLines(_ context.Context, productID string, _, _ time.Time) ([]models.OrderLine, error) {
	if f.fail[productID] {
		return nil, errDB
	}
	return f.byProduct[productID], nil
}

func (f *fakeOrders) StoreLines(_ context.Context, storeID string, _, _ time.Time) ([]models.OrderLine, error) {
	if f.fail[storeID] {
		return nil, errDB
	}
	return f.byStore[storeID], nil
}

type fakeScores struct {
	scores map[string]float64
	fail   map[string]bool
}

func (f *fakeScores) Latest(_ context.Context, storeID string) (*models.StoreRevenueScore, error) {
	if f.fail[storeID] {
		return nil, errDB
	}
	heat, ok := f.scores[storeID]
	if !ok {
		return nil, nil
	}
	return &models.StoreRevenueScore{StoreID: storeID, HeatScore: heat}, nil
}

type fakeMetricStore struct {
	mu      sync.Mutex
	rows    map[string]models.ProductRevenueMetric
	upserts int
	err     error
}

func newFakeMetricStore() *fakeMetricStore {
	return &fakeMetricStore{rows: make(map[string]models.ProductRevenueMetric)}
}

func (f *fakeMetricStore) Upsert(_ context.Context, m *models.ProductRevenueMetric) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.upserts++
	f.rows[m.ProductID+"|"+day(m.SnapshotDate)] = *m
	return nil
}

func (f *fakeMetricStore) views(scope models.Scope, date time.Time) []models.ProductMetricView {
	out := make([]models.ProductMetricView, 0)
	for _, m := range f.rows {
		if day(m.SnapshotDate) != day(date) {
			continue
		}
		if scope.ProductID != "" && scope.ProductID != m.ProductID {
			continue
		}
		out = append(out, models.ProductMetricView{ProductRevenueMetric: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func (f *fakeMetricStore) ListForDate(_ context.Context, scope models.Scope, date time.Time) ([]models.ProductMetricView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.views(scope, date), nil
}

func (f *fakeMetricStore) TopHeroes(_ context.Context, scope models.Scope, date time.Time, floor float64, limit int) ([]models.ProductMetricView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.ProductMetricView, 0)
	for _, v := range f.views(scope, date) {
		if v.HeroScore >= floor {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].HeroScore > out[j].HeroScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMetricStore) TopGhosts(_ context.Context, scope models.Scope, date time.Time, floor float64, limit int) ([]models.ProductMetricView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.ProductMetricView, 0)
	for _, v := range f.views(scope, date) {
		if v.GhostScore >= floor || v.HasTag(models.TagSlowMover) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GhostScore > out[j].GhostScore })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakePredictionStore struct {
	mu   sync.Mutex
	rows map[string]models.StoreProductPrediction
	fail map[string]bool
	err  error
}

func newFakePredictionStore() *fakePredictionStore {
	return &fakePredictionStore{rows: make(map[string]models.StoreProductPrediction)}
}

func (f *fakePredictionStore) Upsert(_ context.Context, p *models.StoreProductPrediction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[p.ProductID] {
		return errDB
	}
	f.rows[p.StoreID+"|"+p.ProductID+"|"+day(p.SnapshotDate)] = *p
	return nil
}

func (f *fakePredictionStore) ListForStore(_ context.Context, storeID string, date time.Time, limit int) ([]models.StorePredictionView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.StorePredictionView, 0)
	for _, p := range f.rows {
		if p.StoreID == storeID && day(p.SnapshotDate) == day(date) {
			out = append(out, models.StorePredictionView{StoreProductPrediction: p})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BuyProb7d > out[j].BuyProb7d })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeDealStore struct {
	mu   sync.Mutex
	rows []models.DealRecommendation
	err  error
}

func (f *fakeDealStore) Insert(_ context.Context, d *models.DealRecommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, *d)
	return nil
}

func (f *fakeDealStore) Supersede(_ context.Context, d *models.DealRecommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.ProductID == d.ProductID && r.DealType == d.DealType && day(r.SnapshotDate) == day(d.SnapshotDate) {
			continue
		}
		kept = append(kept, r)
	}
	f.rows = append(kept, *d)
	return nil
}

func (f *fakeDealStore) ListActive(_ context.Context, _ models.Scope, date, now time.Time, limit int) ([]models.DealRecommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.DealRecommendation, 0)
	for _, r := range f.rows {
		if day(r.SnapshotDate) == day(date) && r.ExpiresAt.After(now) {
			out = append(out, r)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeRunLog struct {
	mu   sync.Mutex
	runs []models.PipelineRun
	err  error
}

func (f *fakeRunLog) Create(_ context.Context, run *models.PipelineRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeRunLog) ListRecent(_ context.Context, action string, limit int) ([]models.PipelineRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PipelineRun, 0)
	for i := len(f.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if action == "" || f.runs[i].Action == action {
			out = append(out, f.runs[i])
		}
	}
	return out, nil
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Load(_ context.Context, key string, dest interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) Store(_ context.Context, key string, value interface{}, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeCache) InvalidateDate(_ context.Context, date time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, date)
	f.entries = make(map[string][]byte)
	return nil
}

type observed struct {
	action            string
	processed, failed int
	err               error
}

type fakeObserver struct {
	mu   sync.Mutex
	runs []observed
}

func (f *fakeObserver) ObserveRun(action string, processed, failed int, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, observed{action, processed, failed, err})
}
