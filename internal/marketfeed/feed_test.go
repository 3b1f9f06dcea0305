package marketfeed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuoteApi struct {
	mu     sync.Mutex
	quotes map[string]model.MarketQuote
	errs   map[string]error
	calls  []string
}

func (f *fakeQuoteApi) GetQuote(ctx context.Context, ticker string) (model.MarketQuote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, ticker)
	if err, ok := f.errs[ticker]; ok {
		return model.MarketQuote{}, err
	}
	return f.quotes[ticker], nil
}

func (f *fakeQuoteApi) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeStream struct {
	mu     sync.Mutex
	events []string
	trades chan []model.Trade
	closed bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{trades: make(chan []model.Trade)}
}

func (s *fakeStream) record(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *fakeStream) Subscribe(symbol string) error {
	s.record("subscribe:" + symbol)
	return nil
}

func (s *fakeStream) Unsubscribe(symbol string) error {
	s.record("unsubscribe:" + symbol)
	return nil
}

func (s *fakeStream) ReadTrades() ([]model.Trade, error) {
	trades, ok := <-s.trades
	if !ok {
		return nil, errors.New("stream closed")
	}
	return trades, nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.events = append(s.events, "close")
		close(s.trades)
	}
	return nil
}

func (s *fakeStream) eventLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

type fakeDialer struct {
	mu      sync.Mutex
	err     error
	streams []*fakeStream
}

func (d *fakeDialer) Dial(ctx context.Context) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.err != nil {
		return nil, d.err
	}
	s := newFakeStream()
	d.streams = append(d.streams, s)
	return s, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.streams)
}

func (d *fakeDialer) setErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

func quote(ticker string, current, previous float64) model.MarketQuote {
	return model.MarketQuote{
		Ticker:        ticker,
		CurrentPrice:  decimal.NewFromFloat(current),
		PreviousClose: decimal.NewFromFloat(previous),
	}
}

func TestFeed(t *testing.T) {
	ctx := context.Background()

	t.Run("bulk fetch tolerates a failing ticker", func(t *testing.T) {
		api := &fakeQuoteApi{
			quotes: map[string]model.MarketQuote{"AAPL": quote("AAPL", 242.84, 240)},
			errs:   map[string]error{"TSLA": errors.New("quote service timeout")},
		}
		dialer := &fakeDialer{}
		feed := New(api, dialer)
		defer feed.Close(ctx)

		feed.SetTickers(ctx, []string{"AAPL", "TSLA", "AAPL"})

		snapshot := feed.Snapshot()
		require.Contains(t, snapshot, "AAPL")
		assert.NotContains(t, snapshot, "TSLA")
		assert.Equal(t, 2, api.callCount(), "one request per distinct ticker")
		assert.Equal(t, StateLive, feed.State())
	})

	t.Run("trade overwrites only current price", func(t *testing.T) {
		q := quote("AAPL", 242.84, 240)
		q.DividendPerShare = decimal.NewFromFloat(0.25)
		api := &fakeQuoteApi{quotes: map[string]model.MarketQuote{"AAPL": q}}
		dialer := &fakeDialer{}
		feed := New(api, dialer)
		defer feed.Close(ctx)

		feed.SetTickers(ctx, []string{"AAPL"})
		dialer.streams[0].trades <- []model.Trade{{Symbol: "AAPL", Price: decimal.NewFromFloat(250)}}

		require.Eventually(t, func() bool {
			got, ok := feed.Snapshot()["AAPL"]
			return ok && got.CurrentPrice.Equal(decimal.NewFromFloat(250))
		}, time.Second, 5*time.Millisecond)

		got := feed.Snapshot()["AAPL"]
		assert.True(t, decimal.NewFromFloat(240).Equal(got.PreviousClose), "previous close preserved")
		assert.True(t, decimal.NewFromFloat(0.25).Equal(got.DividendPerShare), "dividend preserved")
	})

	t.Run("trade for unknown symbol seeds a quote", func(t *testing.T) {
		api := &fakeQuoteApi{quotes: map[string]model.MarketQuote{"AAPL": quote("AAPL", 1, 1)}}
		dialer := &fakeDialer{}
		feed := New(api, dialer)
		defer feed.Close(ctx)

		feed.SetTickers(ctx, []string{"AAPL"})
		dialer.streams[0].trades <- []model.Trade{{Symbol: "NVDA", Price: decimal.NewFromFloat(500)}}

		require.Eventually(t, func() bool {
			_, ok := feed.Snapshot()["NVDA"]
			return ok
		}, time.Second, 5*time.Millisecond)

		got := feed.Snapshot()["NVDA"]
		assert.True(t, got.CurrentPrice.Equal(got.PreviousClose))
		assert.True(t, decimal.NewFromFloat(500).Equal(got.CurrentPrice))
	})

	t.Run("teardown unsubscribes the captured set then closes", func(t *testing.T) {
		api := &fakeQuoteApi{quotes: map[string]model.MarketQuote{
			"AAPL": quote("AAPL", 1, 1),
			"TSLA": quote("TSLA", 2, 2),
		}}
		dialer := &fakeDialer{}
		feed := New(api, dialer)

		tickers := []string{"AAPL", "TSLA"}
		feed.SetTickers(ctx, tickers)
		// the caller clearing its own list must not shrink the
		// unsubscribe set: teardown uses what the feed captured
		tickers[0] = ""
		tickers[1] = ""

		feed.Close(ctx)

		events := dialer.streams[0].eventLog()
		require.NotEmpty(t, events)
		assert.Equal(t, "close", events[len(events)-1])

		var unsubs []string
		for _, e := range events {
			if strings.HasPrefix(e, "unsubscribe:") {
				unsubs = append(unsubs, strings.TrimPrefix(e, "unsubscribe:"))
			}
		}
		assert.ElementsMatch(t, []string{"AAPL", "TSLA"}, unsubs)
		assert.Equal(t, StateIdle, feed.State())
	})

	t.Run("empty set parks the feed idle without dialing", func(t *testing.T) {
		dialer := &fakeDialer{}
		feed := New(&fakeQuoteApi{}, dialer)

		feed.SetTickers(ctx, nil)

		assert.Equal(t, StateIdle, feed.State())
		assert.Zero(t, dialer.dialCount())
	})

	t.Run("retune closes the old cycle and starts a new one", func(t *testing.T) {
		api := &fakeQuoteApi{quotes: map[string]model.MarketQuote{
			"AAPL": quote("AAPL", 1, 1),
			"TSLA": quote("TSLA", 2, 2),
		}}
		dialer := &fakeDialer{}
		feed := New(api, dialer)
		defer feed.Close(ctx)

		feed.SetTickers(ctx, []string{"AAPL"})
		feed.SetTickers(ctx, []string{"TSLA"})

		require.Equal(t, 2, dialer.dialCount())
		assert.Contains(t, dialer.streams[0].eventLog(), "unsubscribe:AAPL")
		assert.Contains(t, dialer.streams[0].eventLog(), "close")
		assert.Contains(t, dialer.streams[1].eventLog(), "subscribe:TSLA")
		assert.Equal(t, StateLive, feed.State())
	})

	t.Run("same live set is a no-op", func(t *testing.T) {
		api := &fakeQuoteApi{quotes: map[string]model.MarketQuote{"AAPL": quote("AAPL", 1, 1)}}
		dialer := &fakeDialer{}
		feed := New(api, dialer)
		defer feed.Close(ctx)

		feed.SetTickers(ctx, []string{"AAPL"})
		feed.SetTickers(ctx, []string{"AAPL"})

		assert.Equal(t, 1, dialer.dialCount())
		assert.Equal(t, 1, api.callCount())
	})

	t.Run("dial failure keeps bootstrapped quotes, next retune retries", func(t *testing.T) {
		api := &fakeQuoteApi{quotes: map[string]model.MarketQuote{"AAPL": quote("AAPL", 242.84, 240)}}
		dialer := &fakeDialer{}
		dialer.setErr(errors.New("stream unavailable"))
		feed := New(api, dialer)
		defer feed.Close(ctx)

		feed.SetTickers(ctx, []string{"AAPL"})

		require.Contains(t, feed.Snapshot(), "AAPL")
		assert.Equal(t, StateBootstrapping, feed.State())

		dialer.setErr(nil)
		feed.SetTickers(ctx, []string{"AAPL"})

		assert.Equal(t, 1, dialer.dialCount())
		assert.Equal(t, StateLive, feed.State())
	})
}
