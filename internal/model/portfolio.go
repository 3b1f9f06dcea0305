package model

type Portfolio struct {
	PortfolioID     int64
	UserID          int64
	Name            string
	DisplayCurrency string
}

type PortfoliosPage struct {
	Portfolios  []Portfolio
	CurPage     int
	HasNextPage bool
}
