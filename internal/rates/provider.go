// Package rates owns the process-wide exchange-rate table. The table
// is replaced wholesale on refresh and handed out as copies, so one
// derivation pass always works against a single consistent table.
package rates

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/shopspring/decimal"
)

type Api interface {
	GetRates(ctx context.Context) (model.RateTable, error)
}

type Provider struct {
	api   Api
	mu    sync.RWMutex
	table model.RateTable
}

func NewProvider(api Api) *Provider {
	return &Provider{api: api}
}

// Refresh fetches a new table and swaps it in. A single attempt per
// call; on failure the previous table stays untouched and conversions
// keep degrading per valuation.Convert. Overlapping calls are safe,
// last write wins.
func (p *Provider) Refresh(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "rates.Provider.Refresh"

	table, err := p.api.GetRates(ctx)
	if err != nil {
		slog.Warn("rates refresh failed, keeping previous table", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	p.mu.Lock()
	p.table = table
	p.mu.Unlock()

	slog.Debug("rates table replaced", slog.String("rqID", rqID), slog.String("op", op), slog.Int("rates", len(table.Rates)))

	return nil
}

// Snapshot returns a copy of the current table. Callers read the copy
// for the whole derivation pass instead of re-reading mid-fold.
func (p *Provider) Snapshot() model.RateTable {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.table.IsEmpty() {
		return model.RateTable{}
	}

	snapshot := model.RateTable{
		Base:  p.table.Base,
		Rates: make(map[string]decimal.Decimal, len(p.table.Rates)),
	}
	for code, rate := range p.table.Rates {
		snapshot.Rates[code] = rate
	}

	return snapshot
}
