package syncuc_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	dm "github.com/papercircuit/elektronVersion/internal/domain/listing"
	"github.com/papercircuit/elektronVersion/internal/pkg/money"
	uc "github.com/papercircuit/elektronVersion/internal/usecase/sync"
)

type fakeSource struct {
	batch []dm.Listing
	err   error
}

func (f fakeSource) Name() string { return "fake" }
func (f fakeSource) FetchBatch(ctx context.Context, pageSize int) ([]dm.Listing, error) {
	return f.batch, f.err
}

// fakeRepo is an in-memory store with the repo's conflict semantics:
// on re-upsert only price, average_price and current_vs_average change.
type fakeRepo struct {
	rows    map[string]dm.Listing
	order   []string
	failIDs map[string]struct{} // Upsert fails for these
	allErr  error
	winErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[string]dm.Listing{}, failIDs: map[string]struct{}{}}
}

func (r *fakeRepo) Upsert(ctx context.Context, l dm.Listing) error {
	if _, bad := r.failIDs[l.ID]; bad {
		return errors.New("boom")
	}
	if old, ok := r.rows[l.ID]; ok {
		old.Price = l.Price
		old.AveragePrice = l.AveragePrice
		old.CurrentVsAverage = l.CurrentVsAverage
		r.rows[l.ID] = old
		return nil
	}
	r.rows[l.ID] = l
	r.order = append(r.order, l.ID)
	return nil
}

func (r *fakeRepo) WindowPrices(ctx context.Context, make, model string, since time.Time) ([]float64, error) {
	if r.winErr != nil {
		return nil, r.winErr
	}
	var out []float64
	for _, id := range r.order {
		l := r.rows[id]
		if l.Make == make && l.Model == model && !l.CreatedAt.Before(since) {
			out = append(out, l.Price.Amount)
		}
	}
	return out, nil
}

func (r *fakeRepo) All(ctx context.Context) (dm.Set, error) {
	if r.allErr != nil {
		return nil, r.allErr
	}
	out := make(dm.Set, 0, len(r.rows))
	for _, id := range r.order {
		out = append(out, r.rows[id])
	}
	return out, nil
}

func usd(id, mk, md string, price float64, created time.Time) dm.Listing {
	return dm.Listing{
		ID:        id,
		Make:      mk,
		Model:     md,
		Price:     money.Money{Amount: price, Currency: "USD"},
		Currency:  "USD",
		CreatedAt: created,
	}
}

func newEngine(src dm.Source, repo dm.Repo) *uc.Engine {
	return &uc.Engine{Source: src, Repo: repo, Timeout: 2 * time.Second}
}

func TestRunCycle_WindowMath(t *testing.T) {
	now := time.Now()
	repo := newFakeRepo()
	for i, p := range []float64{100, 200, 300} {
		l := usd("h"+string(rune('1'+i)), "Fender", "Jazzmaster", p, now.Add(-time.Duration(i+1)*24*time.Hour))
		if err := repo.Upsert(context.Background(), l); err != nil {
			t.Fatal(err)
		}
	}

	src := fakeSource{batch: []dm.Listing{usd("new1", "Fender", "Jazzmaster", 250, now)}}
	out, err := newEngine(src, repo).RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	got := repo.rows["new1"]
	if got.AveragePrice != 200 {
		t.Fatalf("averagePrice = %v, want 200", got.AveragePrice)
	}
	if got.CurrentVsAverage != 25.0 {
		t.Fatalf("currentVsAverage = %v, want 25", got.CurrentVsAverage)
	}
	if len(out) != 4 {
		t.Fatalf("merged len = %d, want 4", len(out))
	}
}

func TestRunCycle_EmptyWindowDefaults(t *testing.T) {
	repo := newFakeRepo()
	src := fakeSource{batch: []dm.Listing{usd("n1", "Gibson", "SG", 999, time.Now())}}

	if _, err := newEngine(src, repo).RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	got := repo.rows["n1"]
	if got.AveragePrice != 999 || got.CurrentVsAverage != 0 {
		t.Fatalf("defaults wrong: avg=%v vs=%v", got.AveragePrice, got.CurrentVsAverage)
	}
}

func TestRunCycle_CurrencyFilter(t *testing.T) {
	repo := newFakeRepo()
	eur := usd("e1", "Hofner", "500/1", 2000, time.Now())
	eur.Currency = "EUR"
	eur.Price.Currency = "EUR"
	src := fakeSource{batch: []dm.Listing{eur, usd("u1", "Fender", "Precision", 800, time.Now())}}

	out, err := newEngine(src, repo).RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if _, ok := repo.rows["e1"]; ok {
		t.Fatal("non-USD listing persisted")
	}
	for _, l := range out {
		if l.ID == "e1" {
			t.Fatal("non-USD listing in output set")
		}
	}
	if _, ok := repo.rows["u1"]; !ok {
		t.Fatal("USD listing missing from store")
	}
}

func TestRunCycle_IdempotentUpsert(t *testing.T) {
	now := time.Now()
	repo := newFakeRepo()
	src := fakeSource{batch: []dm.Listing{usd("x1", "Martin", "D-28", 3000, now)}}
	eng := newEngine(src, repo)

	if _, err := eng.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	first := repo.rows["x1"]

	if _, err := eng.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(repo.rows))
	}
	second := repo.rows["x1"]
	if second.Price != first.Price || second.AveragePrice != first.AveragePrice || second.CurrentVsAverage != first.CurrentVsAverage {
		t.Fatalf("re-ingest changed values: %+v -> %+v", first, second)
	}
}

func TestRunCycle_DedupMerge_FreshWins(t *testing.T) {
	now := time.Now()
	repo := newFakeRepo()
	for _, id := range []string{"1", "2", "3"} {
		if err := repo.Upsert(context.Background(), usd(id, "Fender", "Telecaster", 1000, now.Add(-time.Hour))); err != nil {
			t.Fatal(err)
		}
	}

	fresh2 := usd("2", "Fender", "Telecaster", 1234, now)
	fresh4 := usd("4", "Fender", "Telecaster", 900, now)
	src := fakeSource{batch: []dm.Listing{fresh2, fresh4}}

	out, err := newEngine(src, repo).RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	got := map[string]dm.Listing{}
	for _, l := range out {
		if _, dup := got[l.ID]; dup {
			t.Fatalf("duplicate id %s in output", l.ID)
		}
		got[l.ID] = l
	}
	for _, id := range []string{"1", "2", "3", "4"} {
		if _, ok := got[id]; !ok {
			t.Fatalf("id %s missing from merged set", id)
		}
	}
	if len(got) != 4 {
		t.Fatalf("merged size = %d, want 4", len(got))
	}
	if got["2"].Price.Amount != 1234 {
		t.Fatalf("stale version won for id 2: %v", got["2"].Price.Amount)
	}
}

func TestRunCycle_PartialFailureIsolation(t *testing.T) {
	now := time.Now()
	repo := newFakeRepo()
	repo.failIDs["3"] = struct{}{}

	var batch []dm.Listing
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		batch = append(batch, usd(id, "Gretsch", "6120", 2500, now))
	}
	out, err := newEngine(fakeSource{batch: batch}, repo).RunCycle(context.Background())
	if err != nil {
		t.Fatalf("cycle must survive a bad record: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("output = %d listings, want 4", len(out))
	}
	for _, id := range []string{"1", "2", "4", "5"} {
		if _, ok := repo.rows[id]; !ok {
			t.Fatalf("id %s not persisted", id)
		}
	}
	if _, ok := repo.rows["3"]; ok {
		t.Fatal("failed record persisted")
	}
}

func TestRunCycle_SourceUnavailable(t *testing.T) {
	repo := newFakeRepo()
	src := fakeSource{err: errors.New("dial tcp: refused")}
	sub := &captureSub{}
	eng := newEngine(src, repo)
	eng.Subs = uc.NewRegistry()
	eng.Subs.Add(sub)

	_, err := eng.RunCycle(context.Background())
	if !errors.Is(err, uc.ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
	if sub.calls != 0 {
		t.Fatal("notification fired on aborted cycle")
	}
	if len(repo.rows) != 0 {
		t.Fatal("store mutated on aborted cycle")
	}
}

func TestRunCycle_StoreUnavailable(t *testing.T) {
	repo := newFakeRepo()
	repo.allErr = errors.New("connection reset")
	src := fakeSource{batch: []dm.Listing{usd("a", "Fender", "Mustang", 700, time.Now())}}
	sub := &captureSub{}
	eng := newEngine(src, repo)
	eng.Subs = uc.NewRegistry()
	eng.Subs.Add(sub)

	_, err := eng.RunCycle(context.Background())
	if !errors.Is(err, uc.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	if sub.calls != 0 {
		t.Fatal("partial notification fired")
	}
}

func TestRunCycle_OrderByCreatedAtDesc(t *testing.T) {
	now := time.Now()
	repo := newFakeRepo()
	if err := repo.Upsert(context.Background(), usd("old", "Fender", "Strat", 1000, now.Add(-48*time.Hour))); err != nil {
		t.Fatal(err)
	}
	src := fakeSource{batch: []dm.Listing{
		usd("mid", "Fender", "Strat", 1100, now.Add(-24*time.Hour)),
		usd("new", "Fender", "Strat", 1200, now),
	}}
	out, err := newEngine(src, repo).RunCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, l := range out {
		ids = append(ids, l.ID)
	}
	if strings.Join(ids, ",") != "new,mid,old" {
		t.Fatalf("order = %v", ids)
	}
}
