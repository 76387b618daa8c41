package utils

import (
	"time"

	"api/config"
	"api/models"

	"github.com/xuri/excelize/v2"
)

const orderReportSheet = "Orders"

// BuildOrderReport renders a user's order history as an XLSX workbook with
// one row per order and its profit contribution, using the same payout
// formula as the profit fold.
func BuildOrderReport(orders []models.Order, cfg *config.GameConfig) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(orderReportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"Order ID", "Problem", "Status", "Received", "Resolved", "Investment", "Fixed Revenue", "Variable Revenue", "Profit"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(orderReportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	limit := float64(cfg.TimeLimit.Milliseconds())
	for row, order := range orders {
		profit := 0.0
		if order.ReceivedDatetime != nil {
			if order.Investment != nil {
				profit -= *order.Investment
			}
			if order.ClearedDatetime != nil {
				elapsed := float64(*order.ClearedDatetime - *order.ReceivedDatetime)
				profit += order.FixedRevenue + order.VariableRevenue*0.001*(limit-elapsed)
			}
		}

		problem := order.ProblemID
		if order.Problem != nil {
			problem = order.Problem.Title
		}
		values := []interface{}{
			order.ID,
			problem,
			order.Status(),
			formatMilli(order.ReceivedDatetime),
			formatMilli(order.ResolvedDatetime),
			deref(order.Investment),
			order.FixedRevenue,
			order.VariableRevenue,
			profit,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(orderReportSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

func formatMilli(ms *int64) string {
	if ms == nil {
		return ""
	}
	return time.UnixMilli(*ms).UTC().Format(time.RFC3339)
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
