package services

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const historySheet = "History"

// XLSXContentType - MIME тип выгрузки
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var historyHeaders = []interface{}{
	"Updated at", "Old quantity", "New quantity", "Old min quantity", "New min quantity", "Note", "Updated by",
}

// HistoryExporter выгружает журнал остатков ингредиента в Excel
type HistoryExporter struct {
	ledger *LedgerService
}

// NewHistoryExporter создает новый экспортер журнала
func NewHistoryExporter(ledger *LedgerService) *HistoryExporter {
	return &HistoryExporter{ledger: ledger}
}

// ExportHistoryXLSX пишет в w книгу с одним листом: заголовок и по строке на запись журнала
func (e *HistoryExporter) ExportHistoryXLSX(ingredientID uint, w io.Writer) error {
	ingredient, err := e.ledger.GetIngredient(ingredientID)
	if err != nil {
		return err
	}
	history, err := e.ledger.History(ingredientID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(historySheet, "A1", &historyHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, h := range history {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			h.UpdatedAt.Format("2006-01-02 15:04:05"),
			h.OldQuantity.InexactFloat64(),
			h.NewQuantity.InexactFloat64(),
			h.OldMinQuantity.InexactFloat64(),
			h.NewMinQuantity.InexactFloat64(),
			h.Note,
			h.UpdatedBy,
		}
		if err := f.SetSheetRow(historySheet, cell, &row); err != nil {
			return fmt.Errorf("write history row %d: %w", i+1, err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("Stock history: %s (%s)", ingredient.Name, ingredient.Unit),
		Creator: "bakery-backend",
	}); err != nil {
		return fmt.Errorf("set document properties: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// HistoryFileName возвращает имя файла выгрузки для ингредиента
func HistoryFileName(ingredientID uint) string {
	return fmt.Sprintf("ingredient-%d-history.xlsx", ingredientID)
}
