package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"github.com/xuri/excelize/v2"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate renders one portfolio's projected holdings and its
// transaction history into a spreadsheet.
func (g *XLSXGenerator) Generate(ctx context.Context, assets model.HoldingsPage, transactions []model.Transaction) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if assets.PortfolioName == "" {
		return nil, "", errors.New("empty portfolio")
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	sheetName := assets.PortfolioName
	_, err = f.NewSheet(sheetName)
	if err != nil {
		slog.Error("got error while creating NewSheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := g.fillHoldings(f, sheetName, assets); err != nil {
		return nil, "", err
	}

	if err := g.fillTransactions(f, sheetName, len(assets.Rows), transactions); err != nil {
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) sectionStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
}

func (g *XLSXGenerator) fillHoldings(f *excelize.File, sheetName string, assets model.HoldingsPage) error {
	err := f.MergeCell(sheetName, "A1", "J1")
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Holdings (%s)", assets.Mode)
	f.SetCellValue(sheetName, "A1", title)

	styleID, err := g.sectionStyle(f, "#cfe2f3")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "A1", styleID); err != nil {
		return err
	}

	_ = f.SetCellStr(sheetName, "A2", "ticker")
	_ = f.SetCellStr(sheetName, "B2", "name")
	_ = f.SetCellStr(sheetName, "C2", "quantity")
	_ = f.SetCellStr(sheetName, "D2", "purchase price")
	_ = f.SetCellStr(sheetName, "E2", "current price")
	_ = f.SetCellStr(sheetName, "F2", "current value")
	_ = f.SetCellStr(sheetName, "G2", "total profit")
	_ = f.SetCellStr(sheetName, "H2", "daily profit")
	_ = f.SetCellStr(sheetName, "I2", "dividend yield %")
	_ = f.SetCellStr(sheetName, "J2", "currency")

	for i, row := range assets.Rows {
		rowNum := i + 3
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), row.Ticker)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", rowNum), row.Name)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), row.Quantity.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), row.PurchasePrice.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), row.CurrentPrice.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowNum), row.CurrentValue.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowNum), row.TotalProfit.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowNum), row.DailyProfit.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", rowNum), row.DividendYield.InexactFloat64())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("J%d", rowNum), row.Currency)
	}

	totalsRow := len(assets.Rows) + 3
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", totalsRow), "TOTAL")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", totalsRow), assets.Totals.Quantity.InexactFloat64())
	if assets.Totals.Applicable {
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", totalsRow), assets.Totals.CurrentValue.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", totalsRow), assets.Totals.TotalProfit.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", totalsRow), assets.Totals.DailyProfit.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", totalsRow), assets.Totals.DividendYield.InexactFloat64())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("J%d", totalsRow), assets.Totals.Currency)
	} else {
		_ = f.SetCellStr(sheetName, fmt.Sprintf("F%d", totalsRow), "N/A")
	}

	return nil
}

func (g *XLSXGenerator) fillTransactions(f *excelize.File, sheetName string, holdingsCount int, transactions []model.Transaction) error {
	rowNum := holdingsCount + 6

	err := f.MergeCell(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("F%d", rowNum))
	if err != nil {
		return err
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), "Transaction history")

	styleID, err := g.sectionStyle(f, "#d9ead3")
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", rowNum), fmt.Sprintf("A%d", rowNum), styleID); err != nil {
		return err
	}

	rowNum++
	_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), "ticker")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", rowNum), "type")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("C%d", rowNum), "quantity")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("D%d", rowNum), "price")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("E%d", rowNum), "currency")
	_ = f.SetCellStr(sheetName, fmt.Sprintf("F%d", rowNum), "date")

	for _, transaction := range transactions {
		rowNum++
		_ = f.SetCellStr(sheetName, fmt.Sprintf("A%d", rowNum), transaction.Ticker)
		_ = f.SetCellStr(sheetName, fmt.Sprintf("B%d", rowNum), string(transaction.Type))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), transaction.Quantity.InexactFloat64())
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), transaction.Price.InexactFloat64())
		_ = f.SetCellStr(sheetName, fmt.Sprintf("E%d", rowNum), transaction.Currency)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowNum), transaction.CreatedAt)
	}

	return nil
}
