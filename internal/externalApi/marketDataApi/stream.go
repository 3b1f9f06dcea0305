package marketDataApi

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

type controlMessage struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

type streamEvent struct {
	Type string `json:"type"`
	Data []struct {
		Symbol string  `json:"s"`
		Price  float64 `json:"p"`
		Time   int64   `json:"t"`
		Volume float64 `json:"v"`
	} `json:"data"`
}

// TradeStream is one open websocket connection to the market-data push
// service. One goroutine reads, one writes control messages; gorilla
// supports exactly that split.
type TradeStream struct {
	conn *websocket.Conn
}

// DialStream opens the streaming connection. Subscriptions are sent by
// the caller per ticker after the dial succeeds.
func (a *MarketDataApi) DialStream(ctx context.Context) (*TradeStream, error) {
	op := "MarketDataApi.DialStream"
	url := fmt.Sprintf("%s?token=%s", a.cfg.API.MarketDataApi.StreamUrl, a.cfg.API.MarketDataApi.Token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		slog.Error("error while dialing market data stream", slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	slog.Info("market data stream connected", slog.String("op", op))

	return &TradeStream{conn: conn}, nil
}

func (s *TradeStream) Subscribe(symbol string) error {
	return s.conn.WriteJSON(controlMessage{Type: "subscribe", Symbol: symbol})
}

func (s *TradeStream) Unsubscribe(symbol string) error {
	return s.conn.WriteJSON(controlMessage{Type: "unsubscribe", Symbol: symbol})
}

// ReadTrades blocks until the next batch of trade events arrives.
// Non-trade frames (pings and acks) are skipped. A closed or broken
// connection surfaces as the read error.
func (s *TradeStream) ReadTrades() ([]model.Trade, error) {
	for {
		ev := streamEvent{}
		if err := s.conn.ReadJSON(&ev); err != nil {
			return nil, err
		}

		if ev.Type != "trade" || len(ev.Data) == 0 {
			continue
		}

		trades := make([]model.Trade, 0, len(ev.Data))
		for _, d := range ev.Data {
			trades = append(trades, model.Trade{
				Symbol: d.Symbol,
				Price:  decimal.NewFromFloat(d.Price),
			})
		}

		return trades, nil
	}
}

func (s *TradeStream) Close() error {
	return s.conn.Close()
}
