// Package marketfeed maintains the latest market quote per tracked
// ticker: an initial bulk fetch per ticker, then live updates over one
// streaming connection. The feed moves between Idle (no tickers),
// Bootstrapping (bulk fetch in flight, no stream) and Live (stream
// open), and retunes to a new ticker set by tearing the old cycle down
// and starting a fresh one.
package marketfeed

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
)

type QuoteApi interface {
	GetQuote(ctx context.Context, ticker string) (model.MarketQuote, error)
}

// Stream is one open connection to the market-data push service.
type Stream interface {
	Subscribe(symbol string) error
	Unsubscribe(symbol string) error
	ReadTrades() ([]model.Trade, error)
	Close() error
}

type Dialer interface {
	Dial(ctx context.Context) (Stream, error)
}

// DialerFunc adapts a dial function to the Dialer interface.
type DialerFunc func(ctx context.Context) (Stream, error)

func (f DialerFunc) Dial(ctx context.Context) (Stream, error) { return f(ctx) }

type State int

const (
	StateIdle State = iota
	StateBootstrapping
	StateLive
)

type Feed struct {
	api    QuoteApi
	dialer Dialer

	// retuneMu serializes SetTickers/Close cycles end to end.
	retuneMu sync.Mutex

	mu       sync.RWMutex
	state    State
	tickers  []string
	quotes   map[string]model.MarketQuote
	stream   Stream
	readDone chan struct{}
}

func New(api QuoteApi, dialer Dialer) *Feed {
	return &Feed{
		api:    api,
		dialer: dialer,
		quotes: make(map[string]model.MarketQuote),
	}
}

// SetTickers retunes the feed to a new ticker set: teardown of the
// previous cycle (unsubscribe per captured ticker, close), then a new
// bootstrap + live cycle for the new set. A no-op when the set is
// unchanged and the current cycle is intact. An empty set parks the
// feed in Idle. All failures inside the cycle are non-fatal and
// logged; the feed serves whatever quotes it has.
func (f *Feed) SetTickers(ctx context.Context, tickers []string) {
	f.retuneMu.Lock()
	defer f.retuneMu.Unlock()

	set := normalize(tickers)

	f.mu.RLock()
	same := slices.Equal(f.tickers, set)
	intact := f.stream != nil
	f.mu.RUnlock()

	if same && (len(set) == 0 || intact) {
		return
	}

	f.teardown(ctx)

	f.mu.Lock()
	f.tickers = set
	if len(set) == 0 {
		f.state = StateIdle
		f.mu.Unlock()
		return
	}
	f.state = StateBootstrapping
	f.mu.Unlock()

	f.bootstrap(ctx, set)
	f.goLive(ctx, set)
}

// Close tears the current cycle down and parks the feed in Idle.
func (f *Feed) Close(ctx context.Context) {
	f.retuneMu.Lock()
	defer f.retuneMu.Unlock()

	f.teardown(ctx)

	f.mu.Lock()
	f.tickers = nil
	f.state = StateIdle
	f.mu.Unlock()
}

// Snapshot returns a copy of the quote map. Callers use one snapshot
// for a whole derivation pass.
func (f *Feed) Snapshot() map[string]model.MarketQuote {
	f.mu.RLock()
	defer f.mu.RUnlock()

	snapshot := make(map[string]model.MarketQuote, len(f.quotes))
	for ticker, quote := range f.quotes {
		snapshot[ticker] = quote
	}
	return snapshot
}

func (f *Feed) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// teardown captures the subscribed ticker set under lock and only then
// unsubscribes and closes; the caller's ticker list may already have
// moved on.
func (f *Feed) teardown(ctx context.Context) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Feed.teardown"

	f.mu.Lock()
	stream := f.stream
	captured := slices.Clone(f.tickers)
	done := f.readDone
	f.stream = nil
	f.readDone = nil
	f.mu.Unlock()

	if stream == nil {
		return
	}

	for _, ticker := range captured {
		if err := stream.Unsubscribe(ticker); err != nil {
			slog.Warn("unsubscribe failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
		}
	}

	if err := stream.Close(); err != nil {
		slog.Warn("stream close failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	if done != nil {
		<-done
	}
}

// bootstrap fan-outs one quote request per ticker and collects what
// settled. One ticker's failure never blocks the others.
func (f *Feed) bootstrap(ctx context.Context, tickers []string) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Feed.bootstrap"

	var wg sync.WaitGroup
	for _, ticker := range tickers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			quote, err := f.api.GetQuote(ctx, ticker)
			if err != nil {
				slog.Warn("bootstrap quote fetch failed, continuing with partial data", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
				return
			}

			f.mu.Lock()
			f.quotes[ticker] = quote
			f.mu.Unlock()
		}()
	}
	wg.Wait()
}

func (f *Feed) goLive(ctx context.Context, tickers []string) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Feed.goLive"

	stream, err := f.dialer.Dial(ctx)
	if err != nil {
		// non-fatal: the feed keeps serving bootstrapped quotes; the
		// next retune attempts a fresh connection
		slog.Warn("stream dial failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return
	}

	for _, ticker := range tickers {
		if err := stream.Subscribe(ticker); err != nil {
			slog.Warn("subscribe failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
		}
	}

	done := make(chan struct{})

	f.mu.Lock()
	f.stream = stream
	f.readDone = done
	f.state = StateLive
	f.mu.Unlock()

	go f.readLoop(stream, done)
}

// readLoop applies incoming trade batches until the stream errors or
// is closed by teardown. No automatic reconnect: a lost stream drops
// the feed back to the pre-live stage until the next retune.
func (f *Feed) readLoop(stream Stream, done chan struct{}) {
	defer close(done)

	for {
		trades, err := stream.ReadTrades()
		if err != nil {
			f.mu.Lock()
			if f.stream == stream {
				f.stream = nil
				f.state = StateBootstrapping
				slog.Warn("market data stream lost", slog.String("op", "Feed.readLoop"), slog.String("err", err.Error()))
			}
			f.mu.Unlock()
			return
		}

		f.applyTrades(trades)
	}
}

// applyTrades merges one trade batch into the quote map: only
// currentPrice is overwritten, previousClose and dividendPerShare
// survive. A trade for an unknown symbol seeds a quote whose current
// price and previous close are both the trade price.
func (f *Feed) applyTrades(trades []model.Trade) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, trade := range trades {
		quote, ok := f.quotes[trade.Symbol]
		if ok {
			quote.CurrentPrice = trade.Price
			f.quotes[trade.Symbol] = quote
			continue
		}

		f.quotes[trade.Symbol] = model.MarketQuote{
			Ticker:        trade.Symbol,
			CurrentPrice:  trade.Price,
			PreviousClose: trade.Price,
		}
	}
}

func normalize(tickers []string) []string {
	set := slices.Clone(tickers)
	slices.Sort(set)
	return slices.Compact(set)
}
