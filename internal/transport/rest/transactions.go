package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/shopspring/decimal"
)

type transactionRequest struct {
	Ticker   string          `json:"ticker"`
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// CreateTransaction handles POST /portfolios/{portfolioID}/transactions
func (c *Controller) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))

	txType := model.TransactionType(strings.ToUpper(req.Type))
	if txType != model.TransactionBuy && txType != model.TransactionSell {
		respondError(w, http.StatusBadRequest, "type must be BUY or SELL")
		return
	}
	if req.Ticker == "" || req.Currency == "" {
		respondError(w, http.StatusBadRequest, "ticker and currency are required")
		return
	}
	if !req.Quantity.IsPositive() {
		respondError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}
	if req.Price.IsNegative() {
		respondError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	transaction, err := c.service.CreateTransaction(r.Context(), userID, model.Transaction{
		PortfolioID: portfolioID,
		Ticker:      req.Ticker,
		Type:        txType,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Currency:    req.Currency,
	}, req.Name)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, transaction)
}

// GetTransactions handles GET /portfolios/{portfolioID}/transactions
func (c *Controller) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	page, err := c.service.GetTransactions(r.Context(), userID, portfolioID, queryPage(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// DeleteTransaction handles DELETE /transactions/{transactionID}
func (c *Controller) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	transactionID, err := pathID(r, "transactionID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := c.service.DeleteTransaction(r.Context(), userID, transactionID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
