package dbConverter

import (
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
)

func ConvertUser(dbUser dbModel.User) model.User {
	return model.User{
		UserID:    dbUser.UserID,
		Email:     dbUser.Email,
		CreatedAt: dbUser.CreatedAt,
	}
}

func ConvertPortfolio(dbPortfolio dbModel.Portfolio) model.Portfolio {
	return model.Portfolio{
		PortfolioID:     dbPortfolio.PortfolioID,
		UserID:          dbPortfolio.UserID,
		Name:            dbPortfolio.Name,
		DisplayCurrency: dbPortfolio.DisplayCurrency,
	}
}

func ConvertHolding(dbHolding dbModel.Holding) model.Holding {
	return model.Holding{
		HoldingID:        dbHolding.HoldingID,
		PortfolioID:      dbHolding.PortfolioID,
		Ticker:           dbHolding.Ticker,
		Name:             dbHolding.Name,
		Quantity:         dbHolding.Quantity,
		PurchasePrice:    dbHolding.PurchasePrice,
		PurchaseCurrency: dbHolding.PurchaseCurrency,
	}
}

func ConvertTransaction(dbTransaction dbModel.Transaction) model.Transaction {
	return model.Transaction{
		TransactionID: dbTransaction.TransactionID,
		PortfolioID:   dbTransaction.PortfolioID,
		Ticker:        dbTransaction.Ticker,
		Type:          model.TransactionType(dbTransaction.Type),
		Quantity:      dbTransaction.Quantity,
		Price:         dbTransaction.Price,
		Currency:      dbTransaction.Currency,
		CreatedAt:     dbTransaction.CreatedAt,
	}
}
