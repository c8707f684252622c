package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"time"

	"bakepos/internal/dto"
	"bakepos/internal/repository"
	"bakepos/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dayFormat = "2006-01-02"

// ReportService is the period aggregator: it folds ledger entries over a
// date window into per-product stock snapshots and chart series.
type ReportService interface {
	// Snapshot aggregates the window ending at date. windowDays == 0 means
	// the single day; windowDays == N means the trailing window
	// [date−N days, date], both ends inclusive.
	Snapshot(ctx context.Context, date time.Time, windowDays int) ([]dto.ProductSnapshot, error)

	// TodayStock is the cashier view: today's snapshot, served from the
	// Redis cache when fresh.
	TodayStock(ctx context.Context) ([]dto.ProductSnapshot, error)

	ChartData(ctx context.Context, date time.Time, windowDays int) ([]dto.ProductSeries, error)

	// Alerts lists the products the stock-check worker currently flags as
	// low on stock.
	Alerts(ctx context.Context) ([]dto.StockAlert, error)
}

type reportService struct {
	ledger repository.LedgerRepository
	cache  *StockCache
	rdb    *redis.Client
	loc    *time.Location
	now    func() time.Time
}

func NewReportService(ledger repository.LedgerRepository, cache *StockCache, rdb *redis.Client, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{
		ledger: ledger,
		cache:  cache,
		rdb:    rdb,
		loc:    loc,
		now:    func() time.Time { return time.Now().In(loc) },
	}
}

// window converts (date, windowDays) to the [start, end) instants bounding
// the calendar-day window in the configured zone.
func (s *reportService) window(date time.Time, windowDays int) (time.Time, time.Time) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc)
	start := day
	if windowDays > 0 {
		start = day.AddDate(0, 0, -windowDays)
	}
	end := day.AddDate(0, 0, 1)
	return start, end
}

// readTx runs fn inside a repeatable-read read-only transaction so the
// window scan and the per-product carry-forward lookups observe one
// snapshot. With no database (unit tests) fn runs directly.
func (s *reportService) readTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := s.ledger.DB()
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
}

func (s *reportService) Snapshot(ctx context.Context, date time.Time, windowDays int) ([]dto.ProductSnapshot, error) {
	start, end := s.window(date, windowDays)

	var rows []dto.ProductSnapshot
	err := s.readTx(ctx, func(tx *gorm.DB) error {
		entries, err := s.ledger.EntriesBetween(ctx, tx, start, end)
		if err != nil {
			return err
		}

		// Fold entries per product. Sold quantities come from the
		// sale-triggered entries themselves; the production-triggered rows
		// always carry sold=0.
		type acc struct {
			id       uuid.UUID
			name     string
			produced int
			sold     int
			money    decimal.Decimal
		}
		sums := make(map[string]*acc)
		order := make([]string, 0)

		for _, e := range entries {
			pid := e.ProductID.String()
			a, ok := sums[pid]
			if !ok {
				a = &acc{id: e.ProductID, money: decimal.Zero}
				if e.Product != nil {
					a.name = e.Product.Name
				}
				sums[pid] = a
				order = append(order, pid)
			}
			a.produced += e.Produced
			a.sold += e.Sold
			a.money = a.money.Add(e.MoneyIn)
		}
		// Products with no entries in the window are omitted, not zero-filled.
		sort.Strings(order)

		rows = make([]dto.ProductSnapshot, 0, len(order))
		for _, pid := range order {
			a := sums[pid]
			opening, _, err := s.ledger.CarryForward(ctx, tx, a.id, start)
			if err != nil {
				return err
			}
			rows = append(rows, dto.ProductSnapshot{
				ProductID: pid,
				Name:      a.name,
				Produced:  a.produced,
				Sold:      a.sold,
				Stock:     opening + a.produced - a.sold,
				MoneyIn:   a.money,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *reportService) TodayStock(ctx context.Context) ([]dto.ProductSnapshot, error) {
	if rows, ok := s.cache.Get(ctx); ok {
		return rows, nil
	}
	rows, err := s.Snapshot(ctx, s.now(), 0)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, rows)
	return rows, nil
}

func (s *reportService) ChartData(ctx context.Context, date time.Time, windowDays int) ([]dto.ProductSeries, error) {
	start, end := s.window(date, windowDays)
	entries, err := s.ledger.EntriesBetween(ctx, nil, start, end)
	if err != nil {
		return nil, err
	}

	type series struct {
		name  string
		sold  map[string]int
		money map[string]decimal.Decimal
	}
	grouped := make(map[string]*series)
	order := make([]string, 0)

	for _, e := range entries {
		pid := e.ProductID.String()
		g, ok := grouped[pid]
		if !ok {
			g = &series{sold: make(map[string]int), money: make(map[string]decimal.Decimal)}
			if e.Product != nil {
				g.name = e.Product.Name
			}
			grouped[pid] = g
			order = append(order, pid)
		}
		day := e.OccurredAt.In(s.loc).Format(dayFormat)
		g.sold[day] += e.Sold
		if m, ok := g.money[day]; ok {
			g.money[day] = m.Add(e.MoneyIn)
		} else {
			g.money[day] = e.MoneyIn
		}
	}
	sort.Strings(order)

	out := make([]dto.ProductSeries, 0, len(order))
	for _, pid := range order {
		g := grouped[pid]
		days := make([]string, 0, len(g.sold))
		for day := range g.sold {
			days = append(days, day)
		}
		sort.Strings(days)

		ps := dto.ProductSeries{ProductID: pid, Name: g.name}
		for _, day := range days {
			ps.Sold = append(ps.Sold, dto.SoldPoint{Date: day, QuantitySold: g.sold[day]})
			ps.MoneyIn = append(ps.MoneyIn, dto.MoneyPoint{Date: day, MoneyIn: g.money[day]})
		}
		out = append(out, ps)
	}
	return out, nil
}

func (s *reportService) Alerts(ctx context.Context) ([]dto.StockAlert, error) {
	if s.rdb == nil {
		return []dto.StockAlert{}, nil
	}
	raw, err := s.rdb.HGetAll(ctx, worker.AlertKey).Result()
	if err != nil {
		return nil, err
	}
	alerts := make([]dto.StockAlert, 0, len(raw))
	for _, v := range raw {
		var a dto.StockAlert
		if err := json.Unmarshal([]byte(v), &a); err != nil {
			continue
		}
		alerts = append(alerts, a)
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].Name < alerts[j].Name })
	return alerts, nil
}
