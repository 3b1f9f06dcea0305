package rest

import (
	"github.com/KotFed0t/portfolio_tracker/internal/transport/rest/middleware"
	"github.com/gorilla/mux"
)

// SetupRoutes wires all HTTP routes. Everything under /api/v1 except
// registration and login requires a valid session token.
func SetupRoutes(controller *Controller, auth middleware.Authenticator) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Logging)

	r.HandleFunc("/health", controller.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/register", controller.Register).Methods("POST")
	api.HandleFunc("/auth/login", controller.Login).Methods("POST")

	private := api.NewRoute().Subrouter()
	private.Use(middleware.Auth(auth))

	private.HandleFunc("/auth/logout", controller.Logout).Methods("POST")

	private.HandleFunc("/portfolios", controller.CreatePortfolio).Methods("POST")
	private.HandleFunc("/portfolios", controller.GetPortfolios).Methods("GET")
	private.HandleFunc("/portfolios/{portfolioID}", controller.GetPortfolio).Methods("GET")
	private.HandleFunc("/portfolios/{portfolioID}", controller.UpdatePortfolio).Methods("PATCH")
	private.HandleFunc("/portfolios/{portfolioID}", controller.DeletePortfolio).Methods("DELETE")

	private.HandleFunc("/portfolios/{portfolioID}/assets", controller.GetPortfolioAssets).Methods("GET")
	private.HandleFunc("/portfolios/{portfolioID}/holdings/{ticker}", controller.DeleteHolding).Methods("DELETE")
	private.HandleFunc("/portfolios/{portfolioID}/transfer", controller.TransferHolding).Methods("POST")
	private.HandleFunc("/portfolios/{portfolioID}/report", controller.GeneratePortfolioReport).Methods("POST")

	private.HandleFunc("/portfolios/{portfolioID}/transactions", controller.CreateTransaction).Methods("POST")
	private.HandleFunc("/portfolios/{portfolioID}/transactions", controller.GetTransactions).Methods("GET")
	private.HandleFunc("/transactions/{transactionID}", controller.DeleteTransaction).Methods("DELETE")

	return r
}
