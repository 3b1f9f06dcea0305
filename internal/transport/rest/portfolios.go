package rest

import (
	"encoding/json"
	"net/http"
	"strings"
)

type portfolioRequest struct {
	Name            *string `json:"name"`
	DisplayCurrency *string `json:"displayCurrency"`
}

// CreatePortfolio handles POST /portfolios
func (c *Controller) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.DisplayCurrency == nil || *req.DisplayCurrency == "" {
		respondError(w, http.StatusBadRequest, "displayCurrency is required")
		return
	}

	portfolio, err := c.service.CreatePortfolio(r.Context(), userID, strings.TrimSpace(*req.Name), strings.ToUpper(*req.DisplayCurrency))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, portfolio)
}

// GetPortfolios handles GET /portfolios
func (c *Controller) GetPortfolios(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	page, err := c.service.GetPortfolios(r.Context(), userID, queryPage(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// GetPortfolio handles GET /portfolios/{portfolioID}
func (c *Controller) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	portfolio, err := c.service.GetPortfolio(r.Context(), userID, portfolioID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, portfolio)
}

// UpdatePortfolio handles PATCH /portfolios/{portfolioID}
func (c *Controller) UpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	var req portfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == nil && req.DisplayCurrency == nil {
		respondError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if req.DisplayCurrency != nil {
		upper := strings.ToUpper(*req.DisplayCurrency)
		req.DisplayCurrency = &upper
	}

	portfolio, err := c.service.UpdatePortfolio(r.Context(), userID, portfolioID, req.Name, req.DisplayCurrency)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, portfolio)
}

// DeletePortfolio handles DELETE /portfolios/{portfolioID}
func (c *Controller) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(w, r)
	if !ok {
		return
	}

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid portfolio id")
		return
	}

	if err := c.service.DeletePortfolio(r.Context(), userID, portfolioID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
