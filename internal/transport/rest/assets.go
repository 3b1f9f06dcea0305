package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// GetPortfolioAssets handles GET /portfolios/{portfolioID}/assets
func (c *Controller) GetPortfolioAssets(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	mode, ok := queryMode(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid mode")
		return
	}

	assets, err := c.service.GetPortfolioAssets(r.Context(), userID, portfolioID, queryPage(r), mode)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, assets)
}

// DeleteHolding handles DELETE /portfolios/{portfolioID}/holdings/{ticker}
func (c *Controller) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	if ticker == "" {
		respondError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	if err := c.service.DeleteHolding(r.Context(), userID, portfolioID, ticker); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TransferHolding handles POST /portfolios/{portfolioID}/transfer
func (c *Controller) TransferHolding(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	fromPortfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	var req struct {
		ToPortfolioID int64  `json:"toPortfolioId"`
		Ticker        string `json:"ticker"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	if req.Ticker == "" || req.ToPortfolioID == 0 {
		respondError(w, http.StatusBadRequest, "ticker and toPortfolioId are required")
		return
	}
	if req.ToPortfolioID == fromPortfolioID {
		respondError(w, http.StatusBadRequest, "target portfolio must differ from source")
		return
	}

	if err := c.service.TransferHolding(r.Context(), userID, fromPortfolioID, req.ToPortfolioID, req.Ticker); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GeneratePortfolioReport handles POST /portfolios/{portfolioID}/report
func (c *Controller) GeneratePortfolioReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	mode, ok := queryMode(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid mode")
		return
	}

	downloadLink, err := c.service.GeneratePortfolioReport(r.Context(), userID, portfolioID, mode)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"downloadLink": downloadLink})
}
