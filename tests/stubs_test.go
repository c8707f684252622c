package tests

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"bakepos/internal/apierror"
	"bakepos/internal/model"
	"bakepos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubLedgerRepo is an in-memory LedgerRepository mirroring the Postgres
// implementation: a global seq counter, (occurred_at, seq) ordering and the
// conditional append check.
type stubLedgerRepo struct {
	mu      sync.Mutex
	seq     int64
	entries []model.LedgerEntry
	events  []model.ProductionEvent

	// products backs the Preload("Product") of EntriesBetween.
	products map[uuid.UUID]*model.Product
}

func newStubLedgerRepo() *stubLedgerRepo {
	return &stubLedgerRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubLedgerRepo) CreateProductionEvent(_ context.Context, _ *gorm.DB, ev *model.ProductionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	r.events = append(r.events, *ev)
	return nil
}

// latest returns the newest entry for the product among those matching keep,
// newest meaning greatest (occurred_at, seq).
func (r *stubLedgerRepo) latest(productID uuid.UUID, keep func(*model.LedgerEntry) bool) *model.LedgerEntry {
	var best *model.LedgerEntry
	for i := range r.entries {
		e := &r.entries[i]
		if e.ProductID != productID || !keep(e) {
			continue
		}
		if best == nil ||
			e.OccurredAt.After(best.OccurredAt) ||
			(e.OccurredAt.Equal(best.OccurredAt) && e.Seq > best.Seq) {
			best = e
		}
	}
	return best
}

func (r *stubLedgerRepo) CarryForward(_ context.Context, _ *gorm.DB, productID uuid.UUID, before time.Time) (int, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.latest(productID, func(e *model.LedgerEntry) bool { return e.OccurredAt.Before(before) })
	if e == nil {
		return 0, 0, nil
	}
	return e.Balance, e.Seq, nil
}

func (r *stubLedgerRepo) BasisAt(_ context.Context, _ *gorm.DB, productID uuid.UUID, at time.Time) (int, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.latest(productID, func(e *model.LedgerEntry) bool { return !e.OccurredAt.After(at) })
	if e == nil {
		return 0, 0, nil
	}
	return e.Balance, e.Seq, nil
}

func (r *stubLedgerRepo) LatestBasis(_ context.Context, _ *gorm.DB, productID uuid.UUID) (int, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.latest(productID, func(*model.LedgerEntry) bool { return true })
	if e == nil {
		return 0, 0, nil
	}
	return e.Balance, e.Seq, nil
}

func (r *stubLedgerRepo) AppendEntry(_ context.Context, _ *gorm.DB, e *model.LedgerEntry, basisSeq int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		x := &r.entries[i]
		if x.ProductID == e.ProductID && !x.OccurredAt.After(e.OccurredAt) && x.Seq > basisSeq {
			return apierror.ErrConflict
		}
	}
	r.seq++
	e.Seq = r.seq
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubLedgerRepo) EntriesBetween(_ context.Context, _ *gorm.DB, from, to time.Time) ([]model.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.LedgerEntry
	for _, e := range r.entries {
		if e.OccurredAt.Before(from) || !e.OccurredAt.Before(to) {
			continue
		}
		e.Product = r.products[e.ProductID]
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ProductID != b.ProductID {
			return a.ProductID.String() < b.ProductID.String()
		}
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt)
		}
		return a.Seq < b.Seq
	})
	return out, nil
}

func (r *stubLedgerRepo) DB() *gorm.DB { return nil }

var _ repository.LedgerRepository = (*stubLedgerRepo)(nil)

// stubProductRepo is an in-memory ProductRepository.
type stubProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubProductRepo) List(_ context.Context, includeInactive bool) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if p.Active || includeInactive {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return errors.New("not found")
	}
	p.Active = false
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// stubUserRepo is an in-memory UserRepository.
type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// stubSaleRepo captures created sales.
type stubSaleRepo struct {
	mu    sync.Mutex
	sales map[uuid.UUID]*model.Sale
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	stored := *s
	r.sales[s.ID] = &stored
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── Seed helpers ──────────────────────────────────────────────────────────────

func seedProduct(products *stubProductRepo, ledger *stubLedgerRepo, name string, price float64) *model.Product {
	p := &model.Product{
		ID:     uuid.New(),
		Name:   name,
		Price:  decimal.NewFromFloat(price),
		Active: true,
	}
	products.products[p.ID] = p
	if ledger != nil {
		ledger.products[p.ID] = p
	}
	return p
}

func seedOperator(users *stubUserRepo, username, role string) *model.User {
	u := &model.User{
		ID:       uuid.New(),
		Username: username,
		Name:     username,
		Role:     role,
		Active:   true,
	}
	users.users[u.ID] = u
	return u
}
