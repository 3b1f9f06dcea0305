package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/service"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/gorilla/mux"
)

type Service interface {
	Register(ctx context.Context, email, password string) (token string, user model.User, err error)
	Login(ctx context.Context, email, password string) (token string, user model.User, err error)
	Logout(ctx context.Context, token string) error
	CreatePortfolio(ctx context.Context, userID int64, name, displayCurrency string) (model.Portfolio, error)
	GetPortfolio(ctx context.Context, userID, portfolioID int64) (model.Portfolio, error)
	GetPortfolios(ctx context.Context, userID int64, page int) (model.PortfoliosPage, error)
	UpdatePortfolio(ctx context.Context, userID, portfolioID int64, name, displayCurrency *string) (model.Portfolio, error)
	DeletePortfolio(ctx context.Context, userID, portfolioID int64) error
	GetPortfolioAssets(ctx context.Context, userID, portfolioID int64, page int, mode model.DisplayMode) (model.HoldingsPage, error)
	DeleteHolding(ctx context.Context, userID, portfolioID int64, ticker string) error
	CreateTransaction(ctx context.Context, userID int64, transaction model.Transaction, name string) (model.Transaction, error)
	GetTransactions(ctx context.Context, userID, portfolioID int64, page int) (model.TransactionsPage, error)
	DeleteTransaction(ctx context.Context, userID, transactionID int64) error
	TransferHolding(ctx context.Context, userID, fromPortfolioID, toPortfolioID int64, ticker string) error
	GeneratePortfolioReport(ctx context.Context, userID, portfolioID int64, mode model.DisplayMode) (downloadLink string, err error)
}

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondServiceError maps service sentinel errors to HTTP statuses.
// Anything unrecognized becomes a 500 without leaking the message.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	rqID := utils.GetRequestIDFromCtx(r.Context())

	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrAccessDenied):
		respondError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, service.ErrEmailTaken):
		respondError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrInsufficientQuantity):
		respondError(w, http.StatusUnprocessableEntity, "insufficient holding quantity")
	case errors.Is(err, service.ErrCurrencyMismatch):
		respondError(w, http.StatusUnprocessableEntity, "transaction currency differs from holding currency")
	default:
		slog.Error("internal error", slog.String("rqID", rqID), slog.String("err", err.Error()))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func userIDFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := utils.GetUserIDFromCtx(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return userID, true
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func queryMode(r *http.Request) (model.DisplayMode, bool) {
	switch mode := r.URL.Query().Get("mode"); mode {
	case "", string(model.DisplayOriginal):
		return model.DisplayOriginal, true
	case string(model.DisplayConverted):
		return model.DisplayConverted, true
	default:
		return "", false
	}
}
