package rates

import (
	"context"
	"errors"
	"testing"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApi struct {
	table model.RateTable
	err   error
	calls int
}

func (f *fakeApi) GetRates(ctx context.Context) (model.RateTable, error) {
	f.calls++
	if f.err != nil {
		return model.RateTable{}, f.err
	}
	return f.table, nil
}

func usdTable(krw float64) model.RateTable {
	return model.RateTable{
		Base: "USD",
		Rates: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"KRW": decimal.NewFromFloat(krw),
		},
	}
}

func TestProvider(t *testing.T) {
	t.Run("refresh replaces the table wholesale", func(t *testing.T) {
		api := &fakeApi{table: usdTable(1344.5)}
		p := NewProvider(api)

		require.NoError(t, p.Refresh(context.Background()))

		got := p.Snapshot()
		assert.Equal(t, "USD", got.Base)
		assert.True(t, decimal.NewFromFloat(1344.5).Equal(got.Rates["KRW"]))

		api.table = usdTable(1400)
		require.NoError(t, p.Refresh(context.Background()))
		assert.True(t, decimal.NewFromFloat(1400).Equal(p.Snapshot().Rates["KRW"]))
	})

	t.Run("failed refresh keeps the previous table", func(t *testing.T) {
		api := &fakeApi{table: usdTable(1344.5)}
		p := NewProvider(api)
		require.NoError(t, p.Refresh(context.Background()))

		api.err = errors.New("rates service down")
		err := p.Refresh(context.Background())

		require.Error(t, err)
		got := p.Snapshot()
		assert.True(t, decimal.NewFromFloat(1344.5).Equal(got.Rates["KRW"]))
	})

	t.Run("empty provider snapshot", func(t *testing.T) {
		p := NewProvider(&fakeApi{err: errors.New("down")})

		got := p.Snapshot()

		assert.True(t, got.IsEmpty())
	})

	t.Run("snapshot is detached from later refreshes", func(t *testing.T) {
		api := &fakeApi{table: usdTable(1344.5)}
		p := NewProvider(api)
		require.NoError(t, p.Refresh(context.Background()))

		snapshot := p.Snapshot()
		api.table = usdTable(9999)
		require.NoError(t, p.Refresh(context.Background()))

		assert.True(t, decimal.NewFromFloat(1344.5).Equal(snapshot.Rates["KRW"]))
	})
}
